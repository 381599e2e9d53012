package engine

import (
	"fmt"

	"impostor-server/enginerr"
	"impostor-server/game"
	"impostor-server/infinitum"
	"impostor-server/lexicon"
	"impostor-server/protocol"
)

// ArchitectOptions draws two word options for the given categories.
func (e *Engine) ArchitectOptions(categories []string) ([2]lexicon.Choice, error) {
	return lexicon.ArchitectOptions(e.bank, categories, e.src)
}

// RegenerateArchitectOptions rerolls the pending Architect options. The
// history is unchanged because no word has been locked in yet.
func (e *Engine) RegenerateArchitectOptions(res RoundResult) (RoundResult, error) {
	if res.ArchitectSetup == nil {
		return res, enginerr.ErrNoArchitect
	}
	if res.ArchitectSetup.RegenerationsLeft <= 0 {
		return res, enginerr.ErrRegenerationsExhausted
	}
	opts, err := e.ArchitectOptions(res.Categories)
	if err != nil {
		return res, err
	}
	setup := *res.ArchitectSetup
	setup.Options = opts
	setup.RegenerationsLeft--
	res.ArchitectSetup = &setup
	return res, nil
}

// ApplyArchitectChoice locks in option index of the pending Architect
// setup and re-commits the round on top of prior.
func (e *Engine) ApplyArchitectChoice(prior game.GameHistory, res RoundResult, index int) (RoundResult, error) {
	if res.ArchitectSetup == nil {
		return res, enginerr.ErrNoArchitect
	}
	if index < 0 || index >= len(res.ArchitectSetup.Options) {
		return res, fmt.Errorf("architect option %d: %w", index, enginerr.ErrInvalidOption)
	}
	c := res.ArchitectSetup.Options[index]
	res.Category = c.Category
	res.WordPair = c.Pair
	res.ImpostorHint = protocol.PickHint(c, e.src)
	res.ArchitectSetup = nil

	players := game.ClonePlayers(res.Players)
	for i := range players {
		if !players[i].IsImpostor() {
			protocol.MakeCivil(&players[i], c)
		}
	}
	protocol.RefreshTeam(players, res.Modes, c, res.ImpostorHint, res.DesignatedStarter.ID)
	res.Players = players

	if res.OracleSetup != nil {
		setup := *res.OracleSetup
		setup.Options = protocol.OracleOptions(c, e.src)
		res.OracleSetup = &setup
	}
	e.assignMemory(&res)
	res.NewHistory = commit(prior, res)
	return res, nil
}

// ApplyOracleChoice makes option index the impostor hint and re-commits.
func (e *Engine) ApplyOracleChoice(prior game.GameHistory, res RoundResult, index int) (RoundResult, error) {
	if res.OracleSetup == nil {
		return res, enginerr.ErrNoOracle
	}
	if index < 0 || index >= len(res.OracleSetup.Options) {
		return res, fmt.Errorf("oracle option %d: %w", index, enginerr.ErrInvalidOption)
	}
	res.ImpostorHint = res.OracleSetup.Options[index]
	res.Players = protocol.ApplyOracleChoice(res.Players, res.choice(), res.ImpostorHint, res.Modes, res.DesignatedStarter.ID)
	res.OracleSetup = nil
	res.NewHistory = commit(prior, res)
	return res, nil
}

// ApplyRenunciaDecision resolves the pending Renuncia offer. revealIndex
// is the position of the player currently looking at their card; a
// transfer goes to a civil revealed after it.
func (e *Engine) ApplyRenunciaDecision(prior game.GameHistory, res RoundResult, decision protocol.Decision, revealIndex int) (RoundResult, error) {
	if res.RenunciaData == nil {
		return res, enginerr.ErrNoRenuncia
	}
	players, outcome, err := protocol.ApplyDecision(res.Players, protocol.DecisionInput{
		Data:        *res.RenunciaData,
		Decision:    decision,
		RevealIndex: revealIndex,
		Stats:       prior.PlayerStats,
		Choice:      res.choice(),
		Hint:        res.ImpostorHint,
		Modes:       res.Modes,
		StarterID:   res.DesignatedStarter.ID,
	}, e.src)
	if err != nil {
		return res, err
	}
	e.logger.Info("renuncia resolved", "tag", "engine", "candidate", res.RenunciaData.CandidateName, "outcome", outcome)
	res.Players = players
	res.RenunciaOutcome = outcome
	res.RenunciaData = nil
	e.assignMemory(&res)
	res.NewHistory = commit(prior, res)
	return res, nil
}

// CalculateRenunciaProbability is the offer chance name would have in
// the round following h.
func (e *Engine) CalculateRenunciaProbability(name string, h game.GameHistory) float64 {
	return protocol.RenunciaProbability(game.GetVault(name, h.PlayerStats), h.RoundCounter+1, h.MatchLogs)
}

// SelectAlcalde draws an Alcalde among the civils of players.
func (e *Engine) SelectAlcalde(players []game.GamePlayer, h game.GameHistory) (game.GamePlayer, bool) {
	return protocol.SelectAlcalde(players, h.PlayerStats, e.src)
}

// DebugPlayerStats returns the noise-free weights of the next round.
func (e *Engine) DebugPlayerStats(players []game.Player, h game.GameHistory) []infinitum.DebugStat {
	return infinitum.DebugStats(players, h)
}

// RecordOutcome stores the winner of the most recent round. Impostor wins
// of non-troll rounds are credited to the impostors' vaults once.
func (e *Engine) RecordOutcome(h game.GameHistory, outcome game.Outcome) (game.GameHistory, error) {
	if outcome != game.OutcomeImpostors && outcome != game.OutcomeCivilians {
		return h, fmt.Errorf("outcome %q: %w", outcome, enginerr.ErrInvalidOutcome)
	}
	last, ok := h.LastMatchLog()
	if !ok {
		return h, enginerr.ErrNoRound
	}
	out := h.Clone()
	previous := last.Outcome
	last = last.Clone()
	last.Outcome = outcome
	out.MatchLogs[len(out.MatchLogs)-1] = last

	if !last.IsTrollEvent && previous != outcome {
		for _, name := range last.Impostors {
			key := game.VaultKey(name)
			v, ok := out.PlayerStats[key]
			if !ok {
				continue
			}
			switch {
			case outcome == game.OutcomeImpostors:
				v.Metrics.TotalImpostorWins++
			case previous == game.OutcomeImpostors:
				v.Metrics.TotalImpostorWins--
			}
			out.PlayerStats[key] = v
		}
	}
	return out, nil
}
