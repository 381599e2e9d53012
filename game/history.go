package game

// Caps of the bounded lists kept in GameHistory.
const (
	LastWordsCap           = 15
	LastCategoriesCap      = 3
	PastImpostorIDsCap     = 20
	LastStartingPlayersCap = 10
	LastBartendersCap      = 10
	MatchLogsCap           = 100
)

// BreakProtocol names a corrective pattern-breaking mechanism.
type BreakProtocol string

const (
	BreakNone    BreakProtocol = ""
	BreakLeteo   BreakProtocol = "leteo"
	BreakMirror  BreakProtocol = "mirror"
	BreakBlind   BreakProtocol = "blind"
	BreakPandora BreakProtocol = "pandora"
)

// GameHistory is the session-wide state carried from round to round.
// Callers treat it as an immutable snapshot: the engine always returns a
// new value and commits nothing in place.
type GameHistory struct {
	RoundCounter        int                      `json:"roundCounter"`
	LastWords           []string                 `json:"lastWords"`
	LastCategories      []string                 `json:"lastCategories"`
	GlobalWordUsage     map[string]int           `json:"globalWordUsage"`
	PlayerStats         map[string]InfinityVault `json:"playerStats"`
	PastImpostorIDs     []string                 `json:"pastImpostorIds"`
	ParanoiaLevel       float64                  `json:"paranoiaLevel"`
	CoolingDownRounds   int                      `json:"coolingDownRounds"`
	LastBreakProtocol   BreakProtocol            `json:"lastBreakProtocol"`
	LastStartingPlayers []string                 `json:"lastStartingPlayers"`
	LastBartenders      []string                 `json:"lastBartenders"`
	MatchLogs           []MatchLog               `json:"matchLogs"`
}

// NewHistory returns an empty session history.
func NewHistory() GameHistory {
	return GameHistory{
		LastWords:           []string{},
		LastCategories:      []string{},
		GlobalWordUsage:     make(map[string]int),
		PlayerStats:         make(map[string]InfinityVault),
		PastImpostorIDs:     []string{},
		LastStartingPlayers: []string{},
		LastBartenders:      []string{},
		MatchLogs:           []MatchLog{},
	}
}

// Clone returns a deep copy so the result can be mutated freely.
func (h GameHistory) Clone() GameHistory {
	out := h
	out.LastWords = cloneStrings(h.LastWords)
	out.LastCategories = cloneStrings(h.LastCategories)
	out.PastImpostorIDs = cloneStrings(h.PastImpostorIDs)
	out.LastStartingPlayers = cloneStrings(h.LastStartingPlayers)
	out.LastBartenders = cloneStrings(h.LastBartenders)
	out.GlobalWordUsage = make(map[string]int, len(h.GlobalWordUsage))
	for k, v := range h.GlobalWordUsage {
		out.GlobalWordUsage[k] = v
	}
	out.PlayerStats = CloneStats(h.PlayerStats)
	out.MatchLogs = make([]MatchLog, len(h.MatchLogs))
	for i, l := range h.MatchLogs {
		out.MatchLogs[i] = l.Clone()
	}
	return out
}

// LastMatchLog returns the most recent match log, if any.
func (h GameHistory) LastMatchLog() (MatchLog, bool) {
	if len(h.MatchLogs) == 0 {
		return MatchLog{}, false
	}
	return h.MatchLogs[len(h.MatchLogs)-1], true
}

// AppendMatchLog appends a log, dropping the oldest entries beyond MatchLogsCap.
func (h *GameHistory) AppendMatchLog(l MatchLog) {
	h.MatchLogs = append(h.MatchLogs, l)
	if over := len(h.MatchLogs) - MatchLogsCap; over > 0 {
		h.MatchLogs = append([]MatchLog(nil), h.MatchLogs[over:]...)
	}
}

// Prepend returns a new slice with items in front of list, truncated to limit.
func Prepend(list []string, limit int, items ...string) []string {
	out := make([]string, 0, len(items)+len(list))
	out = append(out, items...)
	out = append(out, list...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// PrependBool is Prepend for role sequences.
func PrependBool(list []bool, item bool, limit int) []bool {
	out := make([]bool, 0, len(list)+1)
	out = append(out, item)
	out = append(out, list...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
