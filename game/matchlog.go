package game

// Outcome is the side that won a finished round.
type Outcome string

const (
	OutcomePending   Outcome = ""
	OutcomeImpostors Outcome = "impostors"
	OutcomeCivilians Outcome = "civilians"
)

// SelectionTelemetry is the weight breakdown of one impostor candidate.
type SelectionTelemetry struct {
	PlayerID     string  `json:"playerId"`
	Name         string  `json:"name"`
	BaseWeight   float64 `json:"baseWeight"`
	RecencyMult  float64 `json:"recencyMult"`
	AffinityMult float64 `json:"affinityMult"`
	Entropy      float64 `json:"entropy"`
	Noise        float64 `json:"noise"`
	FinalWeight  float64 `json:"finalWeight"`
	Probability  float64 `json:"probability"`
	Quarantined  bool    `json:"quarantined,omitempty"`
	Selected     bool    `json:"selected,omitempty"`
}

// MatchLog is the audit record of one generated round.
type MatchLog struct {
	ID               string               `json:"id"`
	Round            int                  `json:"round"`
	Timestamp        int64                `json:"timestamp"` // unix ms
	Category         string               `json:"category"`
	Word             string               `json:"word"`
	Impostors        []string             `json:"impostors"`
	Civilians        []string             `json:"civilians"`
	IsTrollEvent     bool                 `json:"isTrollEvent"`
	TrollScenario    string               `json:"trollScenario,omitempty"`
	AffectsInfinitum bool                 `json:"affectsInfinitum"`
	ParanoiaLevel    float64              `json:"paranoiaLevel"`
	BreakProtocol    BreakProtocol        `json:"breakProtocol,omitempty"`
	LeteoGrade       int                  `json:"leteoGrade,omitempty"`
	Architect        string               `json:"architect,omitempty"`
	Oracle           string               `json:"oracle,omitempty"`
	Magistrado       string               `json:"magistrado,omitempty"`
	Starter          string               `json:"starter,omitempty"`
	Telemetry        []SelectionTelemetry `json:"telemetry,omitempty"`
	RenunciaOutcome  string               `json:"renunciaOutcome,omitempty"`
	Outcome          Outcome              `json:"outcome,omitempty"`
}

// Clone returns a deep copy.
func (l MatchLog) Clone() MatchLog {
	out := l
	out.Impostors = cloneStrings(l.Impostors)
	out.Civilians = cloneStrings(l.Civilians)
	if l.Telemetry != nil {
		out.Telemetry = make([]SelectionTelemetry, len(l.Telemetry))
		copy(out.Telemetry, l.Telemetry)
	}
	return out
}
