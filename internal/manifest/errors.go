// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package manifest

import "fmt"

// Sentinel errors surfaced by catalog operations. Callers match with
// errors.Is; operations wrap them with the offending id for context.
var (
	// ErrDuplicateID means an add would violate id uniqueness.
	ErrDuplicateID = fmt.Errorf("duplicate id")

	// ErrNotFound means the referenced id does not exist.
	ErrNotFound = fmt.Errorf("not found")

	// ErrInvalidCatalog means the on-disk document is structurally broken
	// even after migration. Automatic repair already ran once, so this is
	// fatal for the read and never retried.
	ErrInvalidCatalog = fmt.Errorf("invalid catalog document")

	// ErrLockTimeout means exclusive access could not be obtained within
	// the retry budget. Transient; the caller may retry the operation.
	ErrLockTimeout = fmt.Errorf("catalog lock timeout")
)

// ValidationError reports caller-supplied data that violates a structural
// requirement. Always recoverable by the caller, never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}
