package engine

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid match status transition")
	ErrTotalMismatch     = errors.New("score total does not match tournament setting")

	ErrNameRequired     = fmt.Errorf("%w: last name and first name are required", ErrValidation)
	ErrNotEnoughPlayers = fmt.Errorf("%w: at least 2 players are required to generate matches", ErrValidation)
	ErrNoMatches        = fmt.Errorf("%w: there are no matches to schedule", ErrValidation)
	ErrDuplicatePairing = fmt.Errorf("%w: a match between these players already exists", ErrValidation)
	ErrSamePlayer       = fmt.Errorf("%w: select two different players", ErrValidation)
	ErrInvalidScore     = fmt.Errorf("%w: scores must be non-negative integers", ErrValidation)
	ErrInvalidCourt     = fmt.Errorf("%w: court is out of range", ErrValidation)
	ErrInvalidRound     = fmt.Errorf("%w: round must be at least 1", ErrValidation)
	ErrInvalidSettings  = fmt.Errorf("%w: invalid settings", ErrValidation)

	ErrPlayerNotFound = fmt.Errorf("player %w", ErrNotFound)
	ErrMatchNotFound  = fmt.Errorf("match %w", ErrNotFound)
)

// TotalMismatchError is returned by SubmitResult when the entered scores do not add
// up to the configured total and the caller has not confirmed the entry.
type TotalMismatchError struct {
	Got  int
	Want int
}

func (e *TotalMismatchError) Error() string {
	return fmt.Sprintf("score total %d does not equal %d", e.Got, e.Want)
}

func (e *TotalMismatchError) Unwrap() error {
	return ErrTotalMismatch
}
