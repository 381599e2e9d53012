// Package paranoia scores how predictable recent impostor selections
// look and picks the break protocol used to disrupt a visible pattern.
package paranoia

import "impostor-server/game"

const (
	minSamples      = 4
	adjacencyWindow = 5
	frequencyWindow = 5
	creepFromRound  = 8
)

// Result is the outcome of one paranoia evaluation.
type Result struct {
	Score float64 `json:"score"`
	// Linear is true when the last four impostors advanced around the
	// roster by a constant offset.
	Linear bool `json:"linear"`
}

// Score rates pastImpostorIDs (newest first) against the current roster
// on a 0..100 scale. Fewer than four samples always score zero.
func Score(pastImpostorIDs []string, roster []game.Player, round int) Result {
	n := len(roster)
	if len(pastImpostorIDs) < minSamples || n == 0 {
		return Result{}
	}
	index := make(map[string]int, n)
	for i, p := range roster {
		index[p.ID] = i
	}

	res := Result{Linear: isLinear(pastImpostorIDs[:minSamples], index, n)}

	threshold := 2
	if n <= 4 {
		threshold = 3
	}
	adjacent := countAdjacent(window(pastImpostorIDs, adjacencyWindow), index, n)
	if adjacent >= threshold {
		res.Score += 50
	}
	// Deliberately stacks on the branch above.
	if adjacent > threshold {
		res.Score += 50
	}

	recent := window(pastImpostorIDs, frequencyWindow)
	counts := make(map[string]int, len(recent))
	maxFreq := 0
	for _, id := range recent {
		counts[id]++
		if counts[id] > maxFreq {
			maxFreq = counts[id]
		}
	}
	expected := float64(frequencyWindow) / float64(n)
	switch skew := float64(maxFreq) / expected; {
	case skew >= 2.5:
		res.Score += 60
	case skew >= 1.8:
		res.Score += 20
	}

	if round > creepFromRound {
		res.Score += float64(round%5) * 2
	}

	if res.Score > 100 {
		res.Score = 100
	}
	if res.Score < 0 {
		res.Score = 0
	}
	return res
}

// isLinear maps ids to roster positions and checks that every circular
// step between consecutive entries is the same. Ids missing from the
// roster break the pattern.
func isLinear(ids []string, index map[string]int, n int) bool {
	pos := make([]int, len(ids))
	for i, id := range ids {
		p, ok := index[id]
		if !ok {
			return false
		}
		pos[i] = p
	}
	first := ((pos[1]-pos[0])%n + n) % n
	for i := 2; i < len(pos); i++ {
		if ((pos[i]-pos[i-1])%n+n)%n != first {
			return false
		}
	}
	return true
}

// countAdjacent counts consecutive pairs that sit next to each other on
// the roster circle. A repeat of the same player counts as adjacent.
func countAdjacent(ids []string, index map[string]int, n int) int {
	count := 0
	for i := 1; i < len(ids); i++ {
		a, okA := index[ids[i-1]]
		b, okB := index[ids[i]]
		if !okA || !okB {
			continue
		}
		d := a - b
		if d < 0 {
			d = -d
		}
		if n-d < d {
			d = n - d
		}
		if d <= 1 {
			count++
		}
	}
	return count
}

func window(ids []string, size int) []string {
	if len(ids) > size {
		return ids[:size]
	}
	return ids
}
