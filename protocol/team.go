package protocol

import (
	"strings"

	"impostor-server/game"
	"impostor-server/lexicon"
)

// VanguardiaResolver gives an impostor who speaks first a second hint.
type VanguardiaResolver struct{}

func (VanguardiaResolver) ID() string { return "vanguardia" }

func (VanguardiaResolver) Resolve(r *Round) error {
	if !r.Modes.Hint || !r.Modes.Vanguardia {
		return nil
	}
	applyVanguardia(r.Players, r.Choice, r.ImpostorHint, r.Starter.ID)
	return nil
}

func applyVanguardia(players []game.GamePlayer, c lexicon.Choice, hint, starterID string) {
	for i := range players {
		p := &players[i]
		p.IsVanguardia = false
		if p.ID != starterID || !p.IsImpostor() {
			continue
		}
		second := ""
		for _, h := range c.Pair.Hints {
			if h != hint {
				second = h
				break
			}
		}
		p.IsVanguardia = true
		p.Hints = []string{hint}
		if second != "" {
			p.Hints = append(p.Hints, second)
		}
		p.DisplayText = strings.Join(p.Hints, " / ")
	}
}

// NexusResolver tells each impostor who the other impostors are.
type NexusResolver struct{}

func (NexusResolver) ID() string { return "nexus" }

func (NexusResolver) Resolve(r *Round) error {
	if !r.Modes.Nexus || r.impostorCount() < 2 {
		return nil
	}
	applyNexus(r.Players)
	return nil
}

func applyNexus(players []game.GamePlayer) {
	var team []game.Player
	for _, p := range players {
		if p.IsImpostor() {
			team = append(team, p.Player)
		}
	}
	for i := range players {
		p := &players[i]
		p.NexusPartners = nil
		if !p.IsImpostor() || len(team) < 2 {
			continue
		}
		for _, mate := range team {
			if mate.ID != p.ID {
				p.NexusPartners = append(p.NexusPartners, mate.Name)
			}
		}
	}
}
