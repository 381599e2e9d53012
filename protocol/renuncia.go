package protocol

import (
	"fmt"

	"impostor-server/enginerr"
	"impostor-server/game"
	"impostor-server/lexicon"
	"impostor-server/random"
)

// Decision is the Renuncia candidate's answer.
type Decision string

const (
	DecisionAccept   Decision = "accept"
	DecisionReject   Decision = "reject"
	DecisionTransfer Decision = "transfer"
)

// Renuncia outcomes recorded on the match log.
const (
	OutcomeAccepted         = "accepted"
	OutcomeRejected         = "rejected"
	OutcomeRejectedReplaced = "rejected_replaced"
	OutcomeTransferred      = "transferred"
	OutcomeTransferFallback = "transfer_fallback"
)

const (
	renunciaBase = 0.15
	renunciaMin  = 0.05
	renunciaMax  = 0.70
)

// RenunciaData is the pending offer made to an impostor.
type RenunciaData struct {
	CandidateID   string     `json:"candidateId"`
	CandidateName string     `json:"candidateName"`
	Probability   float64    `json:"probability"`
	RevealIndex   int        `json:"revealIndex"`
	Options       []Decision `json:"options"`
}

// RenunciaProbability computes the offer chance for a candidate.
func RenunciaProbability(v game.InfinityVault, round int, logs []game.MatchLog) float64 {
	p := renunciaBase
	switch streak := v.Metrics.CivilStreak; {
	case streak <= 1:
		p += 0.20
	case streak >= 8:
		p -= 0.15
	default:
		p += 0.05
	}
	p += 0.05 * float64(round/3)
	if civiliansWonLast(logs, 3) {
		p += 0.15
	}
	return min(renunciaMax, max(renunciaMin, p))
}

// civiliansWonLast reports whether the last n decided non-troll rounds
// were all won by the civilians.
func civiliansWonLast(logs []game.MatchLog, n int) bool {
	seen := 0
	for i := len(logs) - 1; i >= 0 && seen < n; i-- {
		l := logs[i]
		if l.IsTrollEvent || l.Outcome == game.OutcomePending {
			continue
		}
		if l.Outcome != game.OutcomeCivilians {
			return false
		}
		seen++
	}
	return seen == n
}

// RenunciaResolver may offer one impostor the chance to give up the role.
type RenunciaResolver struct{}

func (RenunciaResolver) ID() string { return "renuncia" }

func (RenunciaResolver) Resolve(r *Round) error {
	if !r.Modes.Renuncia && !r.Modes.ForceRenuncia {
		return nil
	}
	if r.ImpostorCount < 2 || len(r.Players) < 4 || r.impostorCount() < 2 {
		return nil
	}
	var pool []int
	civils := 0
	for i, p := range r.Players {
		if !p.IsImpostor() {
			civils++
			continue
		}
		if civils >= 2 {
			pool = append(pool, i)
		}
	}
	if len(pool) == 0 {
		return nil
	}
	idx := pool[r.Src.Intn(len(pool))]
	cand := r.Players[idx]
	p := RenunciaProbability(r.vault(cand.Name), r.Number, r.History.MatchLogs)
	if !r.Modes.ForceRenuncia && !random.Chance(r.Src, p) {
		return nil
	}
	r.Renuncia = &RenunciaData{
		CandidateID:   cand.ID,
		CandidateName: cand.Name,
		Probability:   p,
		RevealIndex:   idx,
		Options:       []Decision{DecisionAccept, DecisionReject, DecisionTransfer},
	}
	return nil
}

// DecisionInput carries what ApplyDecision needs beyond the players.
type DecisionInput struct {
	Data        RenunciaData
	Decision    Decision
	RevealIndex int
	Stats       map[string]game.InfinityVault
	Choice      lexicon.Choice
	Hint        string
	Modes       Modes
	StarterID   string
}

// ApplyDecision resolves a Renuncia answer on a copy of players and
// returns the new assignment plus the recorded outcome.
func ApplyDecision(players []game.GamePlayer, in DecisionInput, src random.Source) ([]game.GamePlayer, string, error) {
	out := game.ClonePlayers(players)
	cand := -1
	for i, p := range out {
		if p.ID == in.Data.CandidateID {
			cand = i
			break
		}
	}
	if cand < 0 || !out[cand].IsImpostor() {
		return nil, "", fmt.Errorf("candidate %q: %w", in.Data.CandidateName, enginerr.ErrNoRenuncia)
	}

	var outcome string
	switch in.Decision {
	case DecisionAccept:
		return out, OutcomeAccepted, nil
	case DecisionReject:
		outcome = reject(out, cand, in, src)
	case DecisionTransfer:
		outcome = transfer(out, cand, in, src)
	default:
		return nil, "", fmt.Errorf("decision %q: %w", in.Decision, enginerr.ErrUnknownDecision)
	}
	RefreshTeam(out, in.Modes, in.Choice, in.Hint, in.StarterID)
	return out, outcome, nil
}

func reject(players []game.GamePlayer, cand int, in DecisionInput, src random.Source) string {
	MakeCivil(&players[cand], in.Choice)
	if len(game.ImpostorIDs(players)) > 0 {
		return OutcomeRejected
	}
	var pool []int
	for i, p := range players {
		if i == cand || p.IsArchitect || p.IsOracle || p.IsAlcalde {
			continue
		}
		pool = append(pool, i)
	}
	if len(pool) == 0 {
		// Nobody can take the role, so the candidate keeps it.
		MakeImpostor(&players[cand], in.Choice, in.Hint, in.Modes.Hint)
		return OutcomeAccepted
	}
	MakeImpostor(&players[pool[src.Intn(len(pool))]], in.Choice, in.Hint, in.Modes.Hint)
	return OutcomeRejectedReplaced
}

func transfer(players []game.GamePlayer, cand int, in DecisionInput, src random.Source) string {
	after := in.RevealIndex
	if after < 0 || after >= len(players) {
		after = cand
	}
	target, best := -1, -1
	for i := after + 1; i < len(players); i++ {
		p := players[i]
		if p.IsImpostor() || p.IsArchitect || p.IsOracle || p.IsAlcalde {
			continue
		}
		streak := game.GetVault(p.Name, in.Stats).Metrics.CivilStreak
		if streak > best {
			target, best = i, streak
		}
	}
	if target < 0 {
		reject(players, cand, in, src)
		return OutcomeTransferFallback
	}
	MakeCivil(&players[cand], in.Choice)
	players[cand].IsWitness = true
	MakeImpostor(&players[target], in.Choice, in.Hint, in.Modes.Hint)
	return OutcomeTransferred
}
