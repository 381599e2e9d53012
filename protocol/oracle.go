package protocol

import (
	"impostor-server/game"
	"impostor-server/lexicon"
	"impostor-server/random"
)

// OracleHintCount is how many hints the Oracle chooses from.
const OracleHintCount = 3

// OracleSetup is the Oracle's pending hint choice.
type OracleSetup struct {
	OracleID   string   `json:"oracleId"`
	OracleName string   `json:"oracleName"`
	Options    []string `json:"options"`
}

// OracleResolver lets a civil revealed before the first impostor choose
// the hint impostors receive.
type OracleResolver struct{}

func (OracleResolver) ID() string { return "oracle" }

func (OracleResolver) Resolve(r *Round) error {
	if !r.Modes.Hint || !r.Modes.Oracle || len(r.Players) <= 2 || len(r.Choice.Pair.Hints) == 0 {
		return nil
	}
	var pool []int
	for i, p := range r.Players {
		if p.IsImpostor() {
			break
		}
		if p.IsArchitect || p.IsAlcalde {
			continue
		}
		pool = append(pool, i)
	}
	if len(pool) == 0 {
		return nil
	}
	weights := make([]float64, len(pool))
	for i, idx := range pool {
		streak := float64(r.vault(r.Players[idx].Name).Metrics.CivilStreak)
		weights[i] = max(1, streak)
	}
	pick, _ := random.Pick(r.Src, weights)
	oracle := &r.Players[pool[pick]]
	oracle.IsOracle = true
	r.Oracle = &OracleSetup{
		OracleID:   oracle.ID,
		OracleName: oracle.Name,
		Options:    OracleOptions(r.Choice, r.Src),
	}
	return nil
}

// OracleOptions draws up to OracleHintCount hints of c in random order.
func OracleOptions(c lexicon.Choice, src random.Source) []string {
	return shuffledHints(c.Pair.Hints, OracleHintCount, src)
}

func shuffledHints(hints []string, n int, src random.Source) []string {
	out := make([]string, len(hints))
	copy(out, hints)
	for i := len(out) - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// ApplyOracleChoice makes hint the impostor hint on a copy of players.
func ApplyOracleChoice(players []game.GamePlayer, c lexicon.Choice, hint string, m Modes, starterID string) []game.GamePlayer {
	out := game.ClonePlayers(players)
	RefreshTeam(out, m, c, hint, starterID)
	return out
}
