// Package engine generates rounds: it chains the paranoia check, troll
// events, break protocols, word and impostor selection and the optional
// protocols, then commits the outcome into a new session history.
package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"impostor-server/enginerr"
	"impostor-server/game"
	"impostor-server/infinitum"
	"impostor-server/lexicon"
	"impostor-server/paranoia"
	"impostor-server/protocol"
	"impostor-server/random"
	"impostor-server/vocalis"
)

// Engine is not safe for concurrent use; give each session its own.
type Engine struct {
	src      random.Source
	now      func() time.Time
	logger   *slog.Logger
	bank     lexicon.Bank
	registry *protocol.Registry
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand sets the random source. Tests pass a seeded source.
func WithRand(src random.Source) Option {
	return func(e *Engine) { e.src = src }
}

// WithClock sets the clock used for timestamps and the late-night check.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithBank sets the word bank.
func WithBank(b lexicon.Bank) Option {
	return func(e *Engine) { e.bank = b }
}

// WithRegistry replaces the protocol pipeline.
func WithRegistry(g *protocol.Registry) Option {
	return func(e *Engine) { e.registry = g }
}

// New creates an Engine with the embedded word bank, every protocol and a
// crypto-seeded random source unless overridden.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, o := range opts {
		o(e)
	}
	if e.src == nil {
		e.src = random.New()
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.bank == nil {
		e.bank = lexicon.DefaultBank()
	}
	if e.registry == nil {
		e.registry = protocol.DefaultRegistry()
	}
	return e
}

// Bank returns the engine's word bank.
func (e *Engine) Bank() lexicon.Bank { return e.bank }

// RoundConfig is everything GenerateRound needs for one round.
type RoundConfig struct {
	Players       []game.Player        `json:"players"`
	ImpostorCount int                  `json:"impostorCount"`
	Categories    []string             `json:"categories"`
	History       game.GameHistory     `json:"history"`
	Modes         protocol.Modes       `json:"modes"`
	Memory        lexicon.MemoryConfig `json:"memory"`
}

// RoundResult is a generated round. NewHistory already includes it.
type RoundResult struct {
	MatchID   string    `json:"matchId"`
	Round     int       `json:"round"`
	Timestamp time.Time `json:"timestamp"`

	Players           []game.GamePlayer `json:"players"`
	Category          string            `json:"category"`
	WordPair          lexicon.WordPair  `json:"wordPair"`
	ImpostorHint      string            `json:"impostorHint,omitempty"`
	DesignatedStarter game.Player       `json:"designatedStarter"`
	BartenderID       string            `json:"bartenderId,omitempty"`

	IsTrollEvent  bool   `json:"isTrollEvent"`
	TrollScenario string `json:"trollScenario,omitempty"`

	ParanoiaScore float64                   `json:"paranoiaScore"`
	Break         paranoia.Break            `json:"break"`
	Telemetry     []game.SelectionTelemetry `json:"telemetry,omitempty"`

	IsArchitectTriggered bool                     `json:"isArchitectTriggered"`
	ArchitectSetup       *protocol.ArchitectSetup `json:"architectSetup,omitempty"`
	OracleSetup          *protocol.OracleSetup    `json:"oracleSetup,omitempty"`
	RenunciaData         *protocol.RenunciaData   `json:"renunciaData,omitempty"`
	MagistradoData       *protocol.MagistradoData `json:"magistradoData,omitempty"`
	RenunciaOutcome      string                   `json:"renunciaOutcome,omitempty"`

	ImpostorCount int                  `json:"impostorCount"`
	Categories    []string             `json:"categories,omitempty"`
	Modes         protocol.Modes       `json:"modes"`
	Memory        lexicon.MemoryConfig `json:"memory"`

	NewHistory game.GameHistory `json:"-"`
}

func (r RoundResult) choice() lexicon.Choice {
	return lexicon.Choice{Category: r.Category, Pair: r.WordPair}
}

// clampCount bounds the impostor count to [1, len(players)-1], or 1 for a
// single player.
func clampCount(requested, players int) int {
	n := requested
	if n > players-1 {
		n = players - 1
	}
	if n < 1 {
		n = 1
	}
	return n
}

// GenerateRound builds the next round from cfg. cfg.History is not modified.
func (e *Engine) GenerateRound(cfg RoundConfig) (RoundResult, error) {
	if len(cfg.Players) == 0 {
		return RoundResult{}, enginerr.ErrEmptyRoster
	}
	prior := cfg.History.Clone()
	now := e.now()
	res := RoundResult{
		MatchID:       uuid.NewString(),
		Round:         prior.RoundCounter + 1,
		Timestamp:     now,
		ImpostorCount: clampCount(cfg.ImpostorCount, len(cfg.Players)),
		Categories:    cfg.Categories,
		Modes:         cfg.Modes,
		Memory:        cfg.Memory.Normalize(),
	}

	score := paranoia.Score(prior.PastImpostorIDs, cfg.Players, res.Round)
	res.ParanoiaScore = score.Score

	scenario := ""
	switch {
	case protocol.ValidScenario(cfg.Modes.ForceTroll):
		scenario = cfg.Modes.ForceTroll
	case cfg.Modes.Troll && random.Chance(e.src, protocol.TrollChance):
		scenario = protocol.RollScenario(e.src)
	}

	res.Break = paranoia.SelectBreak(score, prior.CoolingDownRounds, scenario != "", cfg.Modes.Troll, e.src)
	if res.Break.Protocol == game.BreakPandora {
		scenario = protocol.RollScenario(e.src)
	}
	if res.Break.Fired() {
		e.logger.Info("break protocol fired", "tag", "engine", "protocol", res.Break.Protocol, "score", score.Score, "grade", res.Break.LeteoGrade)
	}

	choice, err := lexicon.Select(e.bank, cfg.Categories, prior, e.src)
	if err != nil {
		return RoundResult{}, fmt.Errorf("select word: %w", err)
	}
	res.Category = choice.Category
	res.WordPair = choice.Pair

	if scenario != "" {
		e.trollRound(&res, cfg, prior, scenario)
	} else if err := e.standardRound(&res, cfg, prior); err != nil {
		return RoundResult{}, err
	}

	e.assignMemory(&res)
	res.NewHistory = commit(prior, res)
	e.logger.Debug("round generated", "tag", "engine", "round", res.Round, "category", res.Category, "troll", res.IsTrollEvent)
	return res, nil
}

func (e *Engine) trollRound(res *RoundResult, cfg RoundConfig, prior game.GameHistory, scenario string) {
	res.IsTrollEvent = true
	res.TrollScenario = scenario
	res.Players = protocol.BuildTroll(cfg.Players, scenario, res.choice(), e.bank, cfg.Modes.Hint, e.src)
	res.DesignatedStarter = vocalis.SelectStarter(cfg.Players, prior, cfg.Modes.Party, "", e.src)
	e.logger.Info("troll event", "tag", "engine", "scenario", scenario, "round", res.Round)
}

func (e *Engine) standardRound(res *RoundResult, cfg RoundConfig, prior game.GameHistory) error {
	sel := infinitum.SelectImpostors(cfg.Players, prior.PlayerStats, infinitum.Params{
		Category:      res.Category,
		Count:         res.ImpostorCount,
		CoolingFactor: infinitum.CoolingFor(prior),
		Break:         res.Break,
		Logger:        e.logger,
	}, e.src)
	res.Telemetry = sel.Telemetry

	impostors := make(map[string]bool, len(sel.IDs))
	for _, id := range sel.IDs {
		impostors[id] = true
	}
	weights := make(map[string]game.SelectionTelemetry, len(sel.Telemetry))
	for _, t := range sel.Telemetry {
		weights[t.PlayerID] = t
	}

	res.ImpostorHint = protocol.PickHint(res.choice(), e.src)
	players := make([]game.GamePlayer, len(cfg.Players))
	for i, p := range cfg.Players {
		players[i].Player = p
		if t, ok := weights[p.ID]; ok {
			players[i].SelectionWeight = t.FinalWeight
			players[i].SelectionProbability = t.Probability
		}
		if impostors[p.ID] {
			protocol.MakeImpostor(&players[i], res.choice(), res.ImpostorHint, cfg.Modes.Hint)
		} else {
			protocol.MakeCivil(&players[i], res.choice())
		}
	}

	r := &protocol.Round{
		Number:        res.Round,
		Roster:        cfg.Players,
		Players:       players,
		History:       prior,
		Modes:         cfg.Modes,
		ImpostorCount: res.ImpostorCount,
		Selected:      cfg.Categories,
		Choice:        res.choice(),
		ImpostorHint:  res.ImpostorHint,
		Now:           res.Timestamp,
		Bank:          e.bank,
		Src:           e.src,
		Logger:        e.logger,
	}
	if err := e.registry.Run(r); err != nil {
		return fmt.Errorf("resolve protocols: %w", err)
	}

	res.Players = r.Players
	res.DesignatedStarter = r.Starter
	res.BartenderID = r.BartenderID
	res.ArchitectSetup = r.Architect
	res.IsArchitectTriggered = r.Architect != nil
	res.OracleSetup = r.Oracle
	res.RenunciaData = r.Renuncia
	res.MagistradoData = r.Magistrado
	return nil
}

func (e *Engine) assignMemory(res *RoundResult) {
	for i := range res.Players {
		res.Players[i].MemoryWords = nil
		if !res.Memory.Enabled {
			continue
		}
		p := &res.Players[i]
		p.MemoryWords = lexicon.MemoryWords(e.bank, res.Category, res.WordPair.Word, res.Memory, p.IsImpostor(), e.src)
	}
}
