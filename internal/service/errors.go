package service

import (
	"database/sql"
	"errors"
	"fmt"
)

var (
	// ErrValidation marks input rejected before any state was touched.
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	// ErrInvariant marks a request the current state does not allow, e.g.
	// resolving a decided match. Ticks treat it as a no-op.
	ErrInvariant = errors.New("invariant violated")
)

// notFound maps sql.ErrNoRows to ErrNotFound and wraps anything else.
func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}
