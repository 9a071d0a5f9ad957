package progression

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAuthenticated is returned before any store access when no user id is present.
	ErrNotAuthenticated = errors.New("not authenticated")

	ErrUnknownMission = errors.New("unknown mission")
	ErrUnknownLevel   = errors.New("unknown level")
	ErrLevelLocked    = errors.New("level is locked")
	ErrMissionLocked  = errors.New("mission is locked")
	ErrBossLocked     = errors.New("boss is locked")
	ErrInvalidStars   = errors.New("stars must be between 0 and 3")
	ErrInvalidInput   = errors.New("invalid input")
)

// StoreError wraps a failure reported by the progress store. Its message is
// the store's message, unchanged.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return e.Err.Error() }

func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidInput}, args...)...)
}
