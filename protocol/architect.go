package protocol

import (
	"time"

	"impostor-server/game"
	"impostor-server/lexicon"
	"impostor-server/random"
)

// ArchitectRegenerations is how many times the Architect may reroll.
const ArchitectRegenerations = 3

// ArchitectSetup is the Architect's pending word choice.
type ArchitectSetup struct {
	ArchitectID       string            `json:"architectId"`
	ArchitectName     string            `json:"architectName"`
	Options           [2]lexicon.Choice `json:"options"`
	RegenerationsLeft int               `json:"regenerationsLeft"`
}

// RoundsSinceArchitect reports how many rounds ago an Architect last
// chose the word, relative to round. ok is false when none is on record.
func RoundsSinceArchitect(logs []game.MatchLog, round int) (int, bool) {
	for i := len(logs) - 1; i >= 0; i-- {
		if logs[i].Architect != "" {
			return round - logs[i].Round, true
		}
	}
	return 0, false
}

// ArchitectProbability is the trigger chance for a candidate in round.
func ArchitectProbability(v game.InfinityVault, logs []game.MatchLog, round int, now time.Time) float64 {
	p := 0.15
	since, seen := RoundsSinceArchitect(logs, round)
	switch {
	case seen && since >= 2 && since <= 5:
		p = 0.05
	case seen && since > 10, !seen && round > 10:
		p = 0.25
	}
	if round > 10 {
		p += 0.05
	}
	if v.Metrics.CivilStreak > 8 {
		p += 0.10
	}
	if h := now.Hour(); h >= 0 && h < 3 {
		p *= 2
	}
	if p > 0.9 {
		p = 0.9
	}
	return p
}

// ArchitectResolver lets the first-listed civil pick between two words.
type ArchitectResolver struct{}

func (ArchitectResolver) ID() string { return "architect" }

func (ArchitectResolver) Resolve(r *Round) error {
	if !r.Modes.Architect && !r.Modes.ForceArchitect {
		return nil
	}
	if len(r.Players) == 0 || r.Players[0].IsImpostor() {
		return nil
	}
	first := &r.Players[0]
	if !r.Modes.ForceArchitect {
		p := ArchitectProbability(r.vault(first.Name), r.History.MatchLogs, r.Number, r.Now)
		if !random.Chance(r.Src, p) {
			return nil
		}
	}
	opts, err := lexicon.ArchitectOptions(r.Bank, r.Selected, r.Src)
	if err != nil {
		return err
	}
	first.IsArchitect = true
	r.Architect = &ArchitectSetup{
		ArchitectID:       first.ID,
		ArchitectName:     first.Name,
		Options:           opts,
		RegenerationsLeft: ArchitectRegenerations,
	}
	r.log().Debug("architect triggered", "tag", "protocol", "player", first.Name)
	return nil
}
