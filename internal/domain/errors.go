package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports an id absent from the store.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized reports a failed owner-or-admin check.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConflict reports persisted state that changed underneath a pending edit.
	ErrConflict = errors.New("concurrency conflict")

	// ErrInvariantViolation reports a mutation that would break the tree's
	// structural invariants. It is rejected before anything is applied.
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrBusy reports a mutation against a subtree that already has a
	// persist in flight.
	ErrBusy = fmt.Errorf("subtree has a pending mutation: %w", ErrConflict)
)
