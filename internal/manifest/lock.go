// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package manifest

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
)

const (
	// lockMaxAttempts caps acquisition retries before ErrLockTimeout.
	lockMaxAttempts = 50

	// lockRetryStep is multiplied by the attempt number, so the wait
	// between retries grows linearly.
	lockRetryStep = 10 * time.Millisecond

	// lockStaleAfter is how old a marker file may be before a new
	// acquirer treats its holder as crashed and removes it. A merely
	// slow holder can have its lock stolen past this point; acceptable
	// for a single low-contention document on one host.
	lockStaleAfter = 5 * time.Second
)

// Locker provides advisory, filesystem-based mutual exclusion for the
// catalog file. The lock is a sentinel marker file next to the catalog,
// holding the owner's process identity as its body. It is cooperative:
// only code that checks the marker respects it. Not safe for multi-host
// deployments sharing the data directory.
type Locker struct {
	path        string // marker file path, sibling of the catalog file
	maxAttempts int
	retryStep   time.Duration
	staleAfter  time.Duration
}

// NewLocker returns a Locker for the marker file at path with the default
// retry schedule.
func NewLocker(path string) *Locker {
	return &Locker{
		path:        path,
		maxAttempts: lockMaxAttempts,
		retryStep:   lockRetryStep,
		staleAfter:  lockStaleAfter,
	}
}

// Lease represents a held lock. Release is safe on a nil lease and may be
// called more than once, so callers can defer it unconditionally.
type Lease struct {
	path     string
	released bool
}

// Acquire blocks until the marker file is created exclusively, retrying
// with linearly increasing backoff. Stale markers (older than
// lockStaleAfter) are removed and acquisition retried immediately.
// Returns ErrLockTimeout once the attempt budget is spent.
func (l *Locker) Acquire() (*Lease, error) {
	holder := fmt.Sprintf("%d:%s", os.Getpid(), uuid.NewString())

	for attempt := 1; attempt <= l.maxAttempts; attempt++ {
		f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			_, werr := f.WriteString(holder)
			cerr := f.Close()
			if werr != nil || cerr != nil {
				os.Remove(l.path)
				return nil, fmt.Errorf("write lock marker: %w", errFirst(werr, cerr))
			}
			return &Lease{path: l.path}, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("create lock marker: %w", err)
		}

		// Held by someone else. Steal it if the holder looks dead.
		if info, statErr := os.Stat(l.path); statErr == nil && time.Since(info.ModTime()) > l.staleAfter {
			slog.Warn("removing stale catalog lock",
				"path", l.path,
				"age", time.Since(info.ModTime()).String(),
			)
			os.Remove(l.path)
			continue
		}

		time.Sleep(time.Duration(attempt) * l.retryStep)
	}

	return nil, fmt.Errorf("%w after %d attempts", ErrLockTimeout, l.maxAttempts)
}

// Release removes the marker file. No-op when the lease was never
// acquired or already released.
func (le *Lease) Release() {
	if le == nil || le.released {
		return
	}
	le.released = true
	if err := os.Remove(le.path); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to remove catalog lock", "path", le.path, "error", err)
	}
}

// errFirst returns the first non-nil error.
func errFirst(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
