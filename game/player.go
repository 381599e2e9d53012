package game

import "github.com/google/uuid"

// Role is the hidden role a player holds for one round.
type Role string

const (
	RoleCivil    Role = "civil"
	RoleImpostor Role = "impostor"
)

// Player is a roster entry. The engine never mutates it.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NewPlayer creates a roster entry with a fresh id.
func NewPlayer(name string) Player {
	return Player{ID: uuid.NewString(), Name: name}
}

// GamePlayer is a Player augmented with everything it needs for one round.
// A fresh slice is built on every generation call.
type GamePlayer struct {
	Player

	Role        Role   `json:"role"`
	DisplayText string `json:"displayText"`
	RealWord    string `json:"realWord"`
	Category    string `json:"category"`

	// SelectionWeight and SelectionProbability are telemetry for the debug overlay.
	SelectionWeight      float64 `json:"selectionWeight"`
	SelectionProbability float64 `json:"selectionProbability"`

	IsArchitect  bool `json:"isArchitect,omitempty"`
	IsOracle     bool `json:"isOracle,omitempty"`
	IsVanguardia bool `json:"isVanguardia,omitempty"`
	IsAlcalde    bool `json:"isAlcalde,omitempty"`
	IsBartender  bool `json:"isBartender,omitempty"`
	// IsWitness marks a former candidate who handed the impostor role on.
	IsWitness bool `json:"isWitness,omitempty"`

	Hints         []string `json:"hints,omitempty"`
	NexusPartners []string `json:"nexusPartners,omitempty"`
	MemoryWords   []string `json:"memoryWords,omitempty"`
}

// IsImpostor reports whether the player holds the impostor role.
func (p GamePlayer) IsImpostor() bool {
	return p.Role == RoleImpostor
}

// ClonePlayers deep copies a round's player slice.
func ClonePlayers(players []GamePlayer) []GamePlayer {
	out := make([]GamePlayer, len(players))
	for i, p := range players {
		p.Hints = cloneStrings(p.Hints)
		p.NexusPartners = cloneStrings(p.NexusPartners)
		p.MemoryWords = cloneStrings(p.MemoryWords)
		out[i] = p
	}
	return out
}

// ImpostorIDs returns the ids of impostors in roster order.
func ImpostorIDs(players []GamePlayer) []string {
	var ids []string
	for _, p := range players {
		if p.IsImpostor() {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
