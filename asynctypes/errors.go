package asynctypes

import (
	"context"
	"errors"
	"fmt"
)

// Input validation errors (spec §7.1), raised synchronously, never retried.
var (
	ErrToRequired  = errors.New("to address is required")
	ErrGasTooLarge = errors.New("gas larger than max allowed")
)

// Backend-unavailability errors (spec §7.2). These are the richer taxonomy
// SPEC_FULL.md decision 3 asks for; Error() text for the ones exposed to
// callers still renders as the source's flattened strings via
// UnavailableError.Error().
var (
	ErrAccountUnavailable = errors.New("account")
	ErrSlotUnavailable    = errors.New("slot")
	ErrCodeUnavailable    = errors.New("code")
)

// UnavailableError is returned when the backend cannot supply a piece of
// state the Prefetch Loop needs, whether due to a transport error or an
// authoritative failure to resolve the query. Its Error() text matches
// spec §6/§7 exactly: "Unable to get account|slot|code".
type UnavailableError struct {
	Kind error // one of ErrAccountUnavailable, ErrSlotUnavailable, ErrCodeUnavailable
	Err  error // the underlying cause, if any
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("Unable to get %s", e.Kind)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// EVMExecutionError surfaces an EVM interpreter failure that is not an
// ordinary application-level revert (spec §7.3), e.g. an out-of-gas
// condition encountered by the explicit gas estimator.
type EVMExecutionError struct {
	Code error
}

func (e *EVMExecutionError) Error() string {
	return fmt.Sprintf("EVM execution failed: %s", e.Code)
}

func (e *EVMExecutionError) Unwrap() error { return e.Code }

// IsCancelled reports whether err stems from context cancellation, per
// spec §5/§7.4: such errors propagate to the caller rather than being
// mapped to UnavailableError.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
