package game

import (
	"fmt"
	"testing"
)

func TestPrependTruncates(t *testing.T) {
	list := []string{"c", "d"}
	got := Prepend(list, 3, "a", "b")
	want := []string{"a", "b", "c"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if list[0] != "c" {
		t.Error("Prepend must not modify its input")
	}
}

func TestAppendMatchLogCap(t *testing.T) {
	h := NewHistory()
	for i := 1; i <= MatchLogsCap+10; i++ {
		h.AppendMatchLog(MatchLog{Round: i})
	}
	if len(h.MatchLogs) != MatchLogsCap {
		t.Fatalf("expected %d logs, got %d", MatchLogsCap, len(h.MatchLogs))
	}
	if h.MatchLogs[0].Round != 11 {
		t.Errorf("expected oldest kept round 11, got %d", h.MatchLogs[0].Round)
	}
	last, ok := h.LastMatchLog()
	if !ok || last.Round != MatchLogsCap+10 {
		t.Errorf("unexpected last log %+v", last)
	}
}

func TestHistoryCloneIsDeep(t *testing.T) {
	h := NewHistory()
	h.LastWords = []string{"apple"}
	h.GlobalWordUsage["apple"] = 1
	v := NewVault()
	v.Metrics.CivilStreak = 3
	h.PlayerStats["bob"] = v
	h.AppendMatchLog(MatchLog{Impostors: []string{"Bob"}})

	c := h.Clone()
	c.LastWords[0] = "pear"
	c.GlobalWordUsage["apple"] = 9
	cv := c.PlayerStats["bob"]
	cv.Metrics.CivilStreak = 0
	c.PlayerStats["bob"] = cv
	c.MatchLogs[0].Impostors[0] = "Eve"

	if h.LastWords[0] != "apple" || h.GlobalWordUsage["apple"] != 1 {
		t.Error("clone shares word state with the original")
	}
	if h.PlayerStats["bob"].Metrics.CivilStreak != 3 {
		t.Error("clone shares vaults with the original")
	}
	if h.MatchLogs[0].Impostors[0] != "Bob" {
		t.Error("clone shares match logs with the original")
	}
}
