package protocol

import (
	"impostor-server/game"
	"impostor-server/lexicon"
	"impostor-server/random"
)

// Troll scenarios.
const (
	ScenarioEspejoTotal    = "espejo_total"
	ScenarioCivilSolitario = "civil_solitario"
	ScenarioFalsaAlarma    = "falsa_alarma"
)

// TrollChance is the per-round troll roll when troll mode is on.
const TrollChance = 0.05

// RollScenario picks a troll scenario: espejo_total 70%, civil_solitario
// 20%, falsa_alarma 10%.
func RollScenario(src random.Source) string {
	switch u := src.Float64(); {
	case u < 0.70:
		return ScenarioEspejoTotal
	case u < 0.90:
		return ScenarioCivilSolitario
	default:
		return ScenarioFalsaAlarma
	}
}

// ValidScenario reports whether s names a troll scenario.
func ValidScenario(s string) bool {
	switch s {
	case ScenarioEspejoTotal, ScenarioCivilSolitario, ScenarioFalsaAlarma:
		return true
	}
	return false
}

// BuildTroll assigns roles for a troll round. Unknown scenarios fall back
// to espejo_total.
func BuildTroll(roster []game.Player, scenario string, c lexicon.Choice, bank lexicon.Bank, hintMode bool, src random.Source) []game.GamePlayer {
	players := make([]game.GamePlayer, len(roster))
	for i, p := range roster {
		players[i].Player = p
	}
	if len(players) == 0 {
		return players
	}
	switch scenario {
	case ScenarioFalsaAlarma:
		for i := range players {
			MakeCivil(&players[i], c)
		}
	case ScenarioCivilSolitario:
		lone := src.Intn(len(players))
		for i := range players {
			if i == lone {
				MakeCivil(&players[i], c)
				continue
			}
			MakeImpostor(&players[i], c, PickHint(c, src), hintMode)
		}
	default:
		for i := range players {
			MakeImpostor(&players[i], c, PickHint(c, src), true)
		}
		odd := src.Intn(len(players))
		if noise, ok := lexicon.RandomPair(bank, c.Pair.Word, src); ok {
			h := PickHint(noise, src)
			players[odd].DisplayText = h
			players[odd].Hints = []string{h}
		}
	}
	return players
}
