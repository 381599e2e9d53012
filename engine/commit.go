package engine

import (
	"impostor-server/game"
)

// commit folds res into a copy of prior. prior is never mutated, so a
// secondary operation can re-commit the same round after changing it.
func commit(prior game.GameHistory, res RoundResult) game.GameHistory {
	h := prior.Clone()
	h.RoundCounter = res.Round
	h.LastWords = game.Prepend(h.LastWords, game.LastWordsCap, res.WordPair.Word)
	h.LastCategories = game.Prepend(h.LastCategories, game.LastCategoriesCap, res.Category)
	h.GlobalWordUsage[res.WordPair.Word]++

	if !res.IsTrollEvent {
		updateVaults(&h, prior, res)
		h.PastImpostorIDs = game.Prepend(h.PastImpostorIDs, game.PastImpostorIDsCap, game.ImpostorIDs(res.Players)...)
	}

	if res.DesignatedStarter.ID != "" {
		h.LastStartingPlayers = game.Prepend(h.LastStartingPlayers, game.LastStartingPlayersCap, res.DesignatedStarter.ID)
	}
	if res.BartenderID != "" {
		h.LastBartenders = game.Prepend(h.LastBartenders, game.LastBartendersCap, res.BartenderID)
	}

	if res.Break.Fired() {
		h.ParanoiaLevel = 0
		h.CoolingDownRounds = res.Break.Cooldown
		h.LastBreakProtocol = res.Break.Protocol
	} else {
		h.ParanoiaLevel = res.ParanoiaScore
		if h.CoolingDownRounds > 0 {
			h.CoolingDownRounds--
		}
	}

	h.AppendMatchLog(matchLog(res))
	return h
}

func updateVaults(h *game.GameHistory, prior game.GameHistory, res RoundResult) {
	ids := game.ImpostorIDs(res.Players)
	ts := res.Timestamp.UnixMilli()
	for _, p := range res.Players {
		v := game.GetVault(p.Name, prior.PlayerStats)
		m := &v.Metrics
		m.TotalSessions++
		if p.IsImpostor() {
			m.ImpostorSessions++
			sa := &v.SequenceAnalytics
			n := float64(m.ImpostorSessions)
			sa.AverageWaitTime = (sa.AverageWaitTime*(n-1) + float64(m.CivilStreak)) / n
			m.CivilStreak = 0
			m.QuarantineRounds = 1
			sa.LastImpostorPartners = partners(ids, p.ID)

			dna := v.CategoryDNA[res.Category]
			dna.TimesAsImpostor++
			dna.LastTimeAsImpostor = ts
			dna.AffinityScore = float64(dna.TimesAsImpostor) / float64(m.TotalSessions)
			v.CategoryDNA[res.Category] = dna
		} else if m.QuarantineRounds > 0 {
			m.QuarantineRounds--
		} else {
			m.CivilStreak++
		}
		m.ImpostorRatio = float64(m.ImpostorSessions) / float64(m.TotalSessions)
		v.PushRole(p.IsImpostor())
		if p.IsAlcalde {
			m.TimesAsAlcalde++
		}
		h.PlayerStats[game.VaultKey(p.Name)] = v
	}
}

func partners(ids []string, self string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != self {
			out = append(out, id)
		}
	}
	return out
}

func matchLog(res RoundResult) game.MatchLog {
	l := game.MatchLog{
		ID:               res.MatchID,
		Round:            res.Round,
		Timestamp:        res.Timestamp.UnixMilli(),
		Category:         res.Category,
		Word:             res.WordPair.Word,
		Impostors:        []string{},
		Civilians:        []string{},
		IsTrollEvent:     res.IsTrollEvent,
		TrollScenario:    res.TrollScenario,
		AffectsInfinitum: !res.IsTrollEvent,
		ParanoiaLevel:    res.ParanoiaScore,
		BreakProtocol:    res.Break.Protocol,
		LeteoGrade:       res.Break.LeteoGrade,
		Starter:          res.DesignatedStarter.Name,
		Telemetry:        res.Telemetry,
		RenunciaOutcome:  res.RenunciaOutcome,
	}
	for _, p := range res.Players {
		if p.IsImpostor() {
			l.Impostors = append(l.Impostors, p.Name)
		} else {
			l.Civilians = append(l.Civilians, p.Name)
		}
		switch {
		case p.IsArchitect:
			l.Architect = p.Name
		case p.IsOracle:
			l.Oracle = p.Name
		}
		if p.IsAlcalde {
			l.Magistrado = p.Name
		}
	}
	return l.Clone()
}
