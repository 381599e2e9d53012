package protocol

import (
	"impostor-server/game"
	"impostor-server/random"
	"impostor-server/vocalis"
)

// MagistradoMinPlayers is the smallest roster that gets an Alcalde.
const MagistradoMinPlayers = 6

// MagistradoData names the round's Alcalde.
type MagistradoData struct {
	AlcaldeID   string `json:"alcaldeId"`
	AlcaldeName string `json:"alcaldeName"`
}

// SelectAlcalde draws one civil, skipping the Architect and Oracle, and
// favours players who have held the role less often.
func SelectAlcalde(players []game.GamePlayer, stats map[string]game.InfinityVault, src random.Source) (game.GamePlayer, bool) {
	var pool []game.GamePlayer
	var weights []float64
	for _, p := range players {
		if p.IsImpostor() || p.IsArchitect || p.IsOracle {
			continue
		}
		times := game.GetVault(p.Name, stats).Metrics.TimesAsAlcalde
		pool = append(pool, p)
		weights = append(weights, max(10, 100/float64(times+1)))
	}
	if len(pool) == 0 {
		return game.GamePlayer{}, false
	}
	idx, _ := random.Pick(src, weights)
	return pool[idx], true
}

// MagistradoResolver appoints an Alcalde in larger groups.
type MagistradoResolver struct{}

func (MagistradoResolver) ID() string { return "magistrado" }

func (MagistradoResolver) Resolve(r *Round) error {
	if !r.Modes.Magistrado || len(r.Players) < MagistradoMinPlayers {
		return nil
	}
	chosen, ok := SelectAlcalde(r.Players, r.History.PlayerStats, r.Src)
	if !ok {
		return nil
	}
	for i := range r.Players {
		if r.Players[i].ID == chosen.ID {
			r.Players[i].IsAlcalde = true
		}
	}
	r.Magistrado = &MagistradoData{AlcaldeID: chosen.ID, AlcaldeName: chosen.Name}
	return nil
}

// BartenderResolver picks the party-mode bartender.
type BartenderResolver struct{}

func (BartenderResolver) ID() string { return "bartender" }

func (BartenderResolver) Resolve(r *Round) error {
	if !r.Modes.Party || len(r.Roster) == 0 {
		return nil
	}
	b := vocalis.SelectBartender(r.Roster, r.History, r.Src)
	for i := range r.Players {
		if r.Players[i].ID == b.ID {
			r.Players[i].IsBartender = true
		}
	}
	r.BartenderID = b.ID
	return nil
}

// StarterResolver picks the starting speaker once the Architect is known.
// A starter already set on the round is kept.
type StarterResolver struct{}

func (StarterResolver) ID() string { return "starter" }

func (StarterResolver) Resolve(r *Round) error {
	if r.Starter.ID != "" {
		return nil
	}
	architectID := ""
	if r.Architect != nil {
		architectID = r.Architect.ArchitectID
	}
	r.Starter = vocalis.SelectStarter(r.Roster, r.History, r.Modes.Party, architectID, r.Src)
	return nil
}
