package paranoia

import (
	"fmt"
	"testing"

	"impostor-server/game"
)

func roster(n int) []game.Player {
	players := make([]game.Player, n)
	for i := range players {
		players[i] = game.Player{ID: fmt.Sprintf("p%d", i), Name: fmt.Sprintf("Player %d", i)}
	}
	return players
}

func TestScoreNeedsFourSamples(t *testing.T) {
	got := Score([]string{"p0", "p1", "p2"}, roster(5), 20)
	if got.Score != 0 || got.Linear {
		t.Errorf("expected zero result with three samples, got %+v", got)
	}
}

func TestScorePeriodOne(t *testing.T) {
	for _, n := range []int{3, 4, 6, 10} {
		past := []string{"p1", "p1", "p1", "p1", "p1"}
		got := Score(past, roster(n), 5)
		if got.Score < 80 {
			t.Errorf("n=%d: expected score >= 80 for a repeated impostor, got %.0f", n, got.Score)
		}
	}
}

func TestScoreDetectsLinearPattern(t *testing.T) {
	// Newest first: 6, 4, 2, 0 is a constant step of -2 (mod 8).
	got := Score([]string{"p6", "p4", "p2", "p0"}, roster(8), 1)
	if !got.Linear {
		t.Error("expected a linear pattern")
	}
	got = Score([]string{"p6", "p4", "p3", "p0"}, roster(8), 1)
	if got.Linear {
		t.Error("did not expect a linear pattern")
	}
}

func TestScoreWrapsAroundRoster(t *testing.T) {
	// 0 -> 5 -> 4 -> 3 on a six-seat circle is adjacent every step.
	got := Score([]string{"p3", "p4", "p5", "p0"}, roster(6), 1)
	if !got.Linear {
		t.Error("expected a wrapped linear pattern")
	}
	if got.Score < 100 {
		t.Errorf("three adjacent steps over threshold 2 should add 100, got %.0f", got.Score)
	}
}

func TestScoreAdjacencyThreshold(t *testing.T) {
	// One adjacent pair in a group of 8 stays under the threshold and the
	// spread keeps the frequency skew low.
	got := Score([]string{"p0", "p1", "p4", "p7", "p3"}, roster(8), 1)
	if got.Score != 0 {
		t.Errorf("expected 0, got %.0f", got.Score)
	}
	// Exactly two adjacent pairs adds a single +50.
	got = Score([]string{"p0", "p1", "p5", "p6", "p3"}, roster(8), 1)
	if got.Score != 50 {
		t.Errorf("expected 50, got %.0f", got.Score)
	}
}

func TestScoreRoundCreep(t *testing.T) {
	past := []string{"p0", "p4", "p8", "p2", "p6"}
	base := Score(past, roster(10), 8).Score
	later := Score(past, roster(10), 12).Score
	if later != base+4 {
		t.Errorf("expected creep of 4 at round 12, got base=%.0f later=%.0f", base, later)
	}
}

func TestScoreIgnoresUnknownIDs(t *testing.T) {
	got := Score([]string{"x", "y", "z", "w", "v"}, roster(5), 1)
	if got.Linear {
		t.Error("unknown ids must not form a pattern")
	}
}
