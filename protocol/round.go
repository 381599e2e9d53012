// Package protocol holds the optional layers resolved on top of a base
// impostor assignment, run in a fixed order through a Registry.
package protocol

import (
	"log/slog"
	"time"

	"impostor-server/game"
	"impostor-server/lexicon"
	"impostor-server/random"
)

// ImpostorMessage is shown to impostors when hint mode is off.
const ImpostorMessage = "You are the impostor"

// Modes are the per-round protocol toggles and debug overrides.
type Modes struct {
	Hint       bool `json:"hint"`
	Troll      bool `json:"troll"`
	Architect  bool `json:"architect"`
	Oracle     bool `json:"oracle"`
	Vanguardia bool `json:"vanguardia"`
	Nexus      bool `json:"nexus"`
	Renuncia   bool `json:"renuncia"`
	Magistrado bool `json:"magistrado"`
	Party      bool `json:"party"`

	ForceTroll     string `json:"forceTroll,omitempty"`
	ForceArchitect bool   `json:"forceArchitect,omitempty"`
	ForceRenuncia  bool   `json:"forceRenuncia,omitempty"`
}

// Round is the context threaded through every resolver. Resolvers read
// History as an immutable snapshot and write only Players and their own
// output fields.
type Round struct {
	Number        int
	Roster        []game.Player
	Players       []game.GamePlayer
	History       game.GameHistory
	Modes         Modes
	ImpostorCount int
	Selected      []string
	Choice        lexicon.Choice
	ImpostorHint  string
	Starter       game.Player
	Now           time.Time

	Bank   lexicon.Bank
	Src    random.Source
	Logger *slog.Logger

	Architect   *ArchitectSetup
	Oracle      *OracleSetup
	Renuncia    *RenunciaData
	Magistrado  *MagistradoData
	BartenderID string
}

func (r *Round) vault(name string) game.InfinityVault {
	return game.GetVault(name, r.History.PlayerStats)
}

func (r *Round) impostorCount() int {
	n := 0
	for _, p := range r.Players {
		if p.IsImpostor() {
			n++
		}
	}
	return n
}

func (r *Round) log() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

// MakeCivil turns p into a civil who sees the secret word.
func MakeCivil(p *game.GamePlayer, c lexicon.Choice) {
	p.Role = game.RoleCivil
	p.DisplayText = c.Pair.Word
	p.RealWord = c.Pair.Word
	p.Category = c.Category
	p.Hints = nil
	p.NexusPartners = nil
	p.IsVanguardia = false
}

// MakeImpostor turns p into an impostor who sees hint in hint mode and the
// generic impostor message otherwise.
func MakeImpostor(p *game.GamePlayer, c lexicon.Choice, hint string, hintMode bool) {
	p.Role = game.RoleImpostor
	p.RealWord = c.Pair.Word
	p.Category = c.Category
	p.DisplayText = ImpostorMessage
	p.Hints = nil
	if hintMode && hint != "" {
		p.DisplayText = hint
		p.Hints = []string{hint}
	}
}

// PickHint draws one impostor hint for the pair, falling back to the
// category name when the pair has none.
func PickHint(c lexicon.Choice, src random.Source) string {
	if len(c.Pair.Hints) == 0 {
		return c.Category
	}
	return c.Pair.Hints[src.Intn(len(c.Pair.Hints))]
}

// RefreshTeam recomputes the impostor-side annotations after any change
// to who the impostors are: Nexus partner lists and the Vanguardia double
// hint for an impostor who speaks first.
func RefreshTeam(players []game.GamePlayer, m Modes, c lexicon.Choice, hint, starterID string) {
	for i := range players {
		if players[i].IsImpostor() {
			MakeImpostor(&players[i], c, hint, m.Hint)
		}
	}
	if m.Nexus {
		applyNexus(players)
	}
	if m.Hint && m.Vanguardia {
		applyVanguardia(players, c, hint, starterID)
	}
}
