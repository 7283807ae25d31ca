package round

import "errors"

var (
	// ErrUnknownDifficulty is returned for any difficulty name outside the table.
	ErrUnknownDifficulty = errors.New("unknown difficulty")

	// ErrAlreadyRunning is returned when a round is started while another is in progress.
	ErrAlreadyRunning = errors.New("round already running")

	// ErrInvalidTransition is returned for calls that are not valid in the current phase.
	ErrInvalidTransition = errors.New("invalid transition")
)
