package lexicon

import (
	"impostor-server/enginerr"
	"impostor-server/game"
	"impostor-server/random"
)

// ArchitectRetries bounds the attempts to offer two different words.
const ArchitectRetries = 10

// Choice is a category together with the word pair drawn from it.
type Choice struct {
	Category string   `json:"category"`
	Pair     WordPair `json:"pair"`
}

// CategoryPool applies the category policy: a single selection is used
// alone; none or all of the bank ("omniscient") excludes the recent
// categories unless that empties the pool; any other subset is used as is.
// Names unknown to the bank are ignored.
func CategoryPool(bank Bank, selected []string, lastCategories []string) []string {
	all := bank.Categories()
	known := make([]string, 0, len(selected))
	seen := make(map[string]bool, len(selected))
	for _, name := range selected {
		if seen[name] || len(bank.Words(name)) == 0 {
			continue
		}
		seen[name] = true
		known = append(known, name)
	}

	switch {
	case len(known) == 1:
		return known
	case len(known) == 0 || len(known) == len(all):
		recent := toSet(lastCategories)
		pool := make([]string, 0, len(all))
		for _, name := range all {
			if !recent[name] {
				pool = append(pool, name)
			}
		}
		if len(pool) == 0 {
			return all
		}
		return pool
	default:
		return known
	}
}

// Select picks the round's category and word. Recently used words are
// avoided when possible and each candidate is weighted by
// 1/(globalUsage+1) so rarely used words come up more often.
func Select(bank Bank, selected []string, history game.GameHistory, src random.Source) (Choice, error) {
	pool := CategoryPool(bank, selected, history.LastCategories)
	if len(pool) == 0 {
		return Choice{}, enginerr.ErrEmptyBank
	}
	category := pool[src.Intn(len(pool))]
	words := bank.Words(category)

	recent := toSet(history.LastWords)
	candidates := make([]WordPair, 0, len(words))
	for _, w := range words {
		if !recent[w.Word] {
			candidates = append(candidates, w)
		}
	}
	if len(candidates) == 0 {
		candidates = words
	}

	weights := make([]float64, len(candidates))
	for i, w := range candidates {
		weights[i] = 1 / float64(history.GlobalWordUsage[w.Word]+1)
	}
	idx, _ := random.Pick(src, weights)
	return Choice{Category: category, Pair: candidates[idx]}, nil
}

// ArchitectOptions draws two independent options for the Architect,
// retrying so the two words differ. History is deliberately ignored.
func ArchitectOptions(bank Bank, selected []string, src random.Source) ([2]Choice, error) {
	var out [2]Choice
	pool := CategoryPool(bank, selected, nil)
	if len(pool) == 0 {
		return out, enginerr.ErrEmptyBank
	}
	out[0] = randomChoice(bank, pool, src)
	out[1] = randomChoice(bank, pool, src)
	for i := 0; i < ArchitectRetries && out[1].Pair.Word == out[0].Pair.Word; i++ {
		out[1] = randomChoice(bank, pool, src)
	}
	return out, nil
}

// RandomPair draws any word from the bank other than exclude, used for
// troll noise hints. ok is false when no other word exists.
func RandomPair(bank Bank, exclude string, src random.Source) (Choice, bool) {
	var all []Choice
	for _, c := range bank.Categories() {
		for _, w := range bank.Words(c) {
			if w.Word != exclude {
				all = append(all, Choice{Category: c, Pair: w})
			}
		}
	}
	if len(all) == 0 {
		return Choice{}, false
	}
	return all[src.Intn(len(all))], true
}

func randomChoice(bank Bank, pool []string, src random.Source) Choice {
	category := pool[src.Intn(len(pool))]
	words := bank.Words(category)
	return Choice{Category: category, Pair: words[src.Intn(len(words))]}
}

func toSet(list []string) map[string]bool {
	set := make(map[string]bool, len(list))
	for _, s := range list {
		set[s] = true
	}
	return set
}
