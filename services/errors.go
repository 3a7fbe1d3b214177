package services

import "errors"

// Errors shared across services and the HTTP error mapping.
var (
	ErrNotFound         = errors.New("requested resource not found")
	ErrValidationFailed = errors.New("validation failed")

	// Business-rule errors.
	ErrRegistrationNotOpen     = errors.New("tournament registration is not open")
	ErrTournamentFull          = errors.New("tournament registration is full")
	ErrTournamentNotEditable   = errors.New("tournament can no longer be edited")
	ErrEntrantNotWithdrawable  = errors.New("entrant cannot withdraw after the bracket is generated")
	ErrSeedsNotContiguous      = errors.New("seeds must cover 1..N with no gaps or duplicates")
	ErrBracketNotGenerated     = errors.New("bracket has not been generated for this tournament")
	ErrTournamentWrongStatus   = errors.New("operation not allowed in the current tournament status")
	ErrInvalidStatusTransition = errors.New("invalid tournament status transition")
	ErrForbiddenOperation      = errors.New("operation not allowed for the current user")
	ErrTournamentNotDeletable  = errors.New("only draft or cancelled tournaments can be deleted")
	ErrTournamentInvalidRange  = errors.New("tournament min teams must not exceed max teams")
	ErrTournamentNameRequired  = errors.New("tournament name is required")
	ErrTournamentInvalidStatus = errors.New("invalid tournament status provided")
	ErrTournamentInvalidCap    = errors.New("tournament team limits must be positive")
	ErrDisplayNameRequired     = errors.New("entrant display name is required")
	ErrSwissRoundManualAdvance = errors.New("swiss round can only be advanced for swiss tournaments")
	ErrStandingsNotApplicable  = errors.New("standings are not defined for this format")
	ErrScheduleDetailsRequired = errors.New("venue and scheduled time are required")
	ErrResultScoresRequired    = errors.New("both scores are required to report a result")
)
