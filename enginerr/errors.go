package enginerr

import "errors"

// Sentinel errors returned by the engine and its secondary entry points.
// Kept in a leaf package so engine, ws and api can share them without
// import cycles.
var (
	ErrEmptyRoster            = errors.New("roster is empty")
	ErrEmptyBank              = errors.New("word bank has no words")
	ErrUnknownDecision        = errors.New("unknown renuncia decision")
	ErrNoRenuncia             = errors.New("no renuncia pending for this round")
	ErrNoArchitect            = errors.New("no architect pending for this round")
	ErrNoOracle               = errors.New("no oracle pending for this round")
	ErrRegenerationsExhausted = errors.New("architect has no regenerations left")
	ErrInvalidOption          = errors.New("option index out of range")
	ErrSessionNotFound        = errors.New("session not found")
	ErrNoRound                = errors.New("no round has been played")
	ErrInvalidOutcome         = errors.New("invalid round outcome")
)
