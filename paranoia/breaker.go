package paranoia

import (
	"impostor-server/game"
	"impostor-server/random"
)

// TriggerScore is the paranoia score above which a break protocol fires.
const TriggerScore = 70

// Break describes the corrective protocol chosen for a round.
type Break struct {
	Protocol   game.BreakProtocol `json:"protocol"`
	LeteoGrade int                `json:"leteoGrade,omitempty"`
	Entropy    float64            `json:"entropy"`
	Cooldown   int                `json:"cooldown"`
}

// Fired reports whether any protocol was chosen.
func (b Break) Fired() bool {
	return b.Protocol != game.BreakNone
}

// LeteoEntropy maps a Leteo grade to the history/random blend factor.
func LeteoEntropy(grade int) float64 {
	switch grade {
	case 1:
		return 0.3
	case 2:
		return 0.6
	case 3:
		return 1.0
	default:
		return 0
	}
}

// LeteoGrade grades the severity of a memory wipe.
func LeteoGrade(res Result) int {
	switch {
	case res.Score > 90:
		return 3
	case res.Linear:
		return 2
	default:
		return 1
	}
}

// SelectBreak decides whether a break protocol fires this round and which
// one. Nothing fires during a troll event, at or below TriggerScore, or
// while a previous protocol is cooling down. Pandora is only reachable
// with troll mode enabled; its slice goes to Mirror otherwise.
func SelectBreak(res Result, coolingDownRounds int, trollActive, trollEnabled bool, src random.Source) Break {
	if trollActive || res.Score <= TriggerScore || coolingDownRounds > 0 {
		return Break{}
	}

	b := Break{Cooldown: 3 + src.Intn(2)}
	switch u := src.Float64(); {
	case u < 0.40:
		b.Protocol = game.BreakLeteo
		b.LeteoGrade = LeteoGrade(res)
		b.Entropy = LeteoEntropy(b.LeteoGrade)
	case u < 0.65 && trollEnabled:
		b.Protocol = game.BreakPandora
	case u < 0.90:
		b.Protocol = game.BreakMirror
	default:
		b.Protocol = game.BreakBlind
	}
	return b
}
