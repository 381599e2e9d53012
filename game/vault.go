package game

import "strings"

// RoleSequenceCap bounds SequenceAnalytics.RoleSequence.
const RoleSequenceCap = 20

// Metrics are the running counters of an InfinityVault.
type Metrics struct {
	TotalSessions     int     `json:"totalSessions"`
	ImpostorRatio     float64 `json:"impostorRatio"`
	CivilStreak       int     `json:"civilStreak"`
	TotalImpostorWins int     `json:"totalImpostorWins"`
	QuarantineRounds  int     `json:"quarantineRounds"`
	TimesAsAlcalde    int     `json:"timesAsAlcalde"`
	ImpostorSessions  int     `json:"impostorSessions"`
}

// CategoryStat tracks how often a player was impostor for one category.
type CategoryStat struct {
	TimesAsImpostor    int     `json:"timesAsImpostor"`
	LastTimeAsImpostor int64   `json:"lastTimeAsImpostor"` // unix ms
	AffinityScore      float64 `json:"affinityScore"`
}

// SequenceAnalytics holds ordering-sensitive history.
type SequenceAnalytics struct {
	LastImpostorPartners []string `json:"lastImpostorPartners"`
	// RoleSequence is newest first; true means the player was impostor.
	RoleSequence    []bool  `json:"roleSequence"`
	AverageWaitTime float64 `json:"averageWaitTime"`
}

// InfinityVault is the persistent fairness ledger of one player name.
type InfinityVault struct {
	Metrics           Metrics                 `json:"metrics"`
	CategoryDNA       map[string]CategoryStat `json:"categoryDNA"`
	SequenceAnalytics SequenceAnalytics       `json:"sequenceAnalytics"`
}

// VaultKey normalizes a display name into its vault key.
func VaultKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NewVault returns the baseline vault of a player never seen before.
func NewVault() InfinityVault {
	return InfinityVault{
		CategoryDNA: make(map[string]CategoryStat),
		SequenceAnalytics: SequenceAnalytics{
			LastImpostorPartners: []string{},
			RoleSequence:         []bool{},
		},
	}
}

// GetVault returns a copy of the vault stored for name, or a fresh
// baseline vault when none exists. stats is never modified.
func GetVault(name string, stats map[string]InfinityVault) InfinityVault {
	if v, ok := stats[VaultKey(name)]; ok {
		return v.Clone()
	}
	return NewVault()
}

// IsNew reports whether the vault has never been part of a round.
func (v InfinityVault) IsNew() bool {
	return v.Metrics.TotalSessions == 0
}

// Clone returns a deep copy.
func (v InfinityVault) Clone() InfinityVault {
	out := v
	out.CategoryDNA = make(map[string]CategoryStat, len(v.CategoryDNA))
	for k, s := range v.CategoryDNA {
		out.CategoryDNA[k] = s
	}
	out.SequenceAnalytics.LastImpostorPartners = make([]string, len(v.SequenceAnalytics.LastImpostorPartners))
	copy(out.SequenceAnalytics.LastImpostorPartners, v.SequenceAnalytics.LastImpostorPartners)
	out.SequenceAnalytics.RoleSequence = make([]bool, len(v.SequenceAnalytics.RoleSequence))
	copy(out.SequenceAnalytics.RoleSequence, v.SequenceAnalytics.RoleSequence)
	return out
}

// WasImpostorAgo reports whether the player was impostor n rounds ago,
// with n=1 being the previous round.
func (v InfinityVault) WasImpostorAgo(n int) bool {
	seq := v.SequenceAnalytics.RoleSequence
	return n >= 1 && n <= len(seq) && seq[n-1]
}

// PushRole prepends a role outcome, keeping RoleSequenceCap entries.
func (v *InfinityVault) PushRole(impostor bool) {
	v.SequenceAnalytics.RoleSequence = PrependBool(v.SequenceAnalytics.RoleSequence, impostor, RoleSequenceCap)
}

// CloneStats deep copies a vault map.
func CloneStats(stats map[string]InfinityVault) map[string]InfinityVault {
	out := make(map[string]InfinityVault, len(stats))
	for k, v := range stats {
		out[k] = v.Clone()
	}
	return out
}
