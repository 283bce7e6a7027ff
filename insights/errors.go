package insights

import (
	"context"
	"errors"
	"fmt"

	"github.com/spektr-org/bizlens/store"
)

var (
	// ErrValidation is wrapped by every *ValidationError.
	ErrValidation = errors.New("invalid parameters")

	// ErrNoData signals that a view computed correctly but produced no
	// rows for the given parameters.
	ErrNoData = errors.New("no data for these parameters")

	// ErrStoreUnavailable wraps failures of the entity store.
	ErrStoreUnavailable = errors.New("entity store unavailable")
)

// ValidationError reports a missing or malformed parameter. Computation
// never starts when one is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// storeError wraps a reader failure. Context errors pass through so
// callers can tell timeouts from store outages.
func storeError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, store.ErrNotFound) {
		return ErrNoData
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
