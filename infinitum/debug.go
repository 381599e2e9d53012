package infinitum

import (
	"sort"

	"impostor-server/game"
)

// DebugStat is one row of the debug overlay table.
type DebugStat struct {
	PlayerID      string  `json:"playerId"`
	Name          string  `json:"name"`
	Weight        float64 `json:"weight"`
	Probability   float64 `json:"probability"`
	CivilStreak   int     `json:"civilStreak"`
	ImpostorRatio float64 `json:"impostorRatio"`
	Quarantine    int     `json:"quarantine"`
	Sessions      int     `json:"sessions"`
}

// DebugStats returns noise-free weights and first-slot probabilities for
// every player, heaviest first. Quarantined players show their nominal
// 0.01 weight even though the draw would skip them.
func DebugStats(players []game.Player, h game.GameHistory) []DebugStat {
	cooling := CoolingFor(h)
	category := ""
	if len(h.LastCategories) > 0 {
		category = h.LastCategories[0]
	}

	rows := make([]DebugStat, len(players))
	var total float64
	for i, p := range players {
		v := game.GetVault(p.Name, h.PlayerStats)
		w := Weight(v, category, cooling, 0, 0, nil)
		total += w
		rows[i] = DebugStat{
			PlayerID:      p.ID,
			Name:          p.Name,
			Weight:        w,
			CivilStreak:   v.Metrics.CivilStreak,
			ImpostorRatio: v.Metrics.ImpostorRatio,
			Quarantine:    v.Metrics.QuarantineRounds,
			Sessions:      v.Metrics.TotalSessions,
		}
	}
	if total > 0 {
		for i := range rows {
			rows[i].Probability = rows[i].Weight / total
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Weight > rows[j].Weight })
	return rows
}
