package infinitum

import (
	"math"
	"math/rand"
	"testing"

	"impostor-server/game"
)

func vault(sessions, streak int, ratio float64, roles ...bool) game.InfinityVault {
	v := game.NewVault()
	v.Metrics.TotalSessions = sessions
	v.Metrics.CivilStreak = streak
	v.Metrics.ImpostorRatio = ratio
	for i := len(roles) - 1; i >= 0; i-- {
		v.PushRole(roles[i])
	}
	return v
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestWeightNewPlayerBaseline(t *testing.T) {
	if w := Weight(game.NewVault(), "Food", 1, 500, 0, rand.New(rand.NewSource(1))); w != NewPlayerWeight {
		t.Errorf("expected new player weight %v, got %v", NewPlayerWeight, w)
	}
}

func TestWeightQuarantine(t *testing.T) {
	v := vault(5, 0, 0.2)
	v.Metrics.QuarantineRounds = 1
	if w := Weight(v, "", 1, 0, 0, nil); w != QuarantineWeight {
		t.Errorf("expected %v, got %v", QuarantineWeight, w)
	}
}

func TestWeightKarma(t *testing.T) {
	v := vault(8, 3, 0.25)
	want := 100 * math.Log(5) / 0.25
	if w := Weight(v, "", 1, 0, 0, nil); !approx(w, want) {
		t.Errorf("expected %.4f, got %.4f", want, w)
	}
	// Cooling halves the streak contribution.
	want = 100 * math.Log(3.5) / 0.25
	if w := Weight(v, "", CoolingFactor, 0, 0, nil); !approx(w, want) {
		t.Errorf("expected cooled %.4f, got %.4f", want, w)
	}
	// Ratio floors at 0.01.
	zero := vault(3, 0, 0)
	if w := Weight(zero, "", 1, 0, 0, nil); !approx(w, 100*math.Log(2)/0.01) {
		t.Errorf("unexpected weight for zero ratio: %v", w)
	}
}

func TestWeightRecencySteps(t *testing.T) {
	plain := Weight(vault(6, 0, 0.5, false, false, false), "", 1, 0, 0, nil)
	tests := []struct {
		name  string
		roles []bool
		mult  float64
	}{
		{"last round", []bool{true, false, false}, 0.05},
		{"two rounds ago", []bool{false, true, false}, 0.30},
		{"three rounds ago", []bool{false, false, true}, 0.60},
		{"four rounds ago", []bool{false, false, false, true}, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Weight(vault(6, 0, 0.5, tt.roles...), "", 1, 0, 0, nil)
			if !approx(w, plain*tt.mult) {
				t.Errorf("expected %.4f, got %.4f", plain*tt.mult, w)
			}
		})
	}
}

func TestWeightCategoryAffinity(t *testing.T) {
	v := vault(6, 2, 0.3)
	plain := Weight(v, "Food", 1, 0, 0, nil)
	v.CategoryDNA["Food"] = game.CategoryStat{TimesAsImpostor: 1}
	if w := Weight(v, "Food", 1, 0, 0, nil); !approx(w, plain*0.8) {
		t.Errorf("expected affinity penalty, got %.4f vs %.4f", w, plain)
	}
	if w := Weight(v, "Sports", 1, 0, 0, nil); !approx(w, plain) {
		t.Error("affinity must only apply to the matching category")
	}
}

func TestWeightEntropyBlend(t *testing.T) {
	v := vault(6, 9, 0.1, true)
	if w := Weight(v, "", 1, 0, 1.0, nil); !approx(w, 100) {
		t.Errorf("full entropy should ignore history, got %v", w)
	}
	raw := Weight(v, "", 1, 0, 0, nil)
	if w := Weight(v, "", 1, 0, 0.3, nil); !approx(w, raw*0.7+30) {
		t.Errorf("expected partial blend %.4f, got %.4f", raw*0.7+30, w)
	}
}

func TestWeightNoiseBounds(t *testing.T) {
	v := vault(4, 1, 0.25)
	base := Weight(v, "", 1, 0, 0, nil)
	src := rand.New(rand.NewSource(3))
	for i := 0; i < 1000; i++ {
		f := Breakdown(v, "", 1, 200, 0, src)
		if f.Noise < 0 || f.Noise >= 60 {
			t.Fatalf("noise %.3f outside [0, 60)", f.Noise)
		}
		if !approx(f.Final, base+f.Noise) {
			t.Fatalf("final %.3f != base %.3f + noise %.3f", f.Final, base, f.Noise)
		}
	}
}

func TestSynergyPenalty(t *testing.T) {
	if got := SynergyPenalty(2); !approx(got, 0.8) {
		t.Errorf("expected 0.8, got %v", got)
	}
	if got := SynergyPenalty(12); !approx(got, 0.1) {
		t.Errorf("expected floor 0.1, got %v", got)
	}
}
