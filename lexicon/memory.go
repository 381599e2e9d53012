package lexicon

import "impostor-server/random"

// Memory-mode difficulty levels.
const (
	DifficultyEasy   = "easy"
	DifficultyNormal = "normal"
	DifficultyHard   = "hard"
)

// MemoryConfig configures memory mode, where each player briefly sees a
// set of words instead of a single one.
type MemoryConfig struct {
	Enabled        bool   `json:"enabled"`
	Difficulty     string `json:"difficulty"`
	WordCount      int    `json:"wordCount"`
	DisplaySeconds int    `json:"displaySeconds"`
}

const (
	defaultMemoryWordCount = 5
	defaultMemorySeconds   = 10
)

// Normalize fills unset fields with defaults.
func (c MemoryConfig) Normalize() MemoryConfig {
	if c.WordCount < 2 {
		c.WordCount = defaultMemoryWordCount
	}
	if c.DisplaySeconds <= 0 {
		c.DisplaySeconds = defaultMemorySeconds
	}
	switch c.Difficulty {
	case DifficultyEasy, DifficultyNormal, DifficultyHard:
	default:
		c.Difficulty = DifficultyNormal
	}
	return c
}

// MemoryWords builds the word set shown to one player. Civils get the
// secret word hidden among decoys; impostors get decoys only. Easy mode
// draws decoys from other categories, hard mode from the same category
// and normal mode alternates between the two.
func MemoryWords(bank Bank, category, secret string, cfg MemoryConfig, impostor bool, src random.Source) []string {
	cfg = cfg.Normalize()
	decoyCount := cfg.WordCount
	if !impostor {
		decoyCount--
	}

	same, other := decoyPools(bank, category, secret)
	used := map[string]bool{secret: true}
	words := make([]string, 0, cfg.WordCount)
	for i := 0; len(words) < decoyCount; i++ {
		pool := other
		switch cfg.Difficulty {
		case DifficultyHard:
			pool = same
		case DifficultyNormal:
			if i%2 == 0 {
				pool = same
			}
		}
		w, ok := drawUnused(pool, used, src)
		if !ok {
			// Preferred pool exhausted; try the other one before giving up.
			if w, ok = drawUnused(append(append([]string{}, same...), other...), used, src); !ok {
				break
			}
		}
		used[w] = true
		words = append(words, w)
	}

	if !impostor {
		pos := src.Intn(len(words) + 1)
		words = append(words, "")
		copy(words[pos+1:], words[pos:])
		words[pos] = secret
	}
	return words
}

func decoyPools(bank Bank, category, secret string) (same, other []string) {
	for _, c := range bank.Categories() {
		for _, w := range bank.Words(c) {
			if w.Word == secret {
				continue
			}
			if c == category {
				same = append(same, w.Word)
			} else {
				other = append(other, w.Word)
			}
		}
	}
	return same, other
}

func drawUnused(pool []string, used map[string]bool, src random.Source) (string, bool) {
	free := make([]string, 0, len(pool))
	for _, w := range pool {
		if !used[w] {
			free = append(free, w)
		}
	}
	if len(free) == 0 {
		return "", false
	}
	return free[src.Intn(len(free))], true
}
