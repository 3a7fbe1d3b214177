package engine

import "errors"

// Engine errors are plain values so callers can branch with errors.Is.
// Configuration errors surface before any graph is built; state-transition
// errors indicate a race or a caller logic error and are never retried.
var (
	// Configuration errors.
	ErrInsufficientEntrants = errors.New("not enough entrants for this format")
	ErrInvalidFormatOptions = errors.New("invalid format options")
	ErrUnknownFormat        = errors.New("unknown tournament format")

	// State-transition errors.
	ErrBracketAlreadyStarted = errors.New("bracket already started, regeneration rejected")
	ErrNodeAlreadyResolved   = errors.New("node already resolved")
	ErrSlotAlreadyFilled     = errors.New("target slot already filled")
	ErrTournamentCancelled   = errors.New("tournament cancelled, no further transitions accepted")
	ErrInvalidTransition     = errors.New("illegal node status transition")
	ErrNodeNotFound          = errors.New("bracket node not found")

	// Result-validity errors.
	ErrInvalidResult = errors.New("invalid match result")

	// Pairing errors.
	ErrUnresolvablePairing = errors.New("no valid pairing exists for this round")

	// Correction errors.
	ErrCascadingReopen = errors.New("downstream node already resolved, reopen top-down")

	// Completion errors.
	ErrNotReady = errors.New("tournament not ready for final ranking")
)
