// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// testLocker returns a locker with a short retry schedule so contention
// tests finish quickly.
func testLocker(t *testing.T) *Locker {
	t.Helper()
	l := NewLocker(filepath.Join(t.TempDir(), "manifest.json.lock"))
	l.maxAttempts = 5
	l.retryStep = time.Millisecond
	return l
}

func TestLockerAcquireRelease(t *testing.T) {
	l := testLocker(t)

	lease, err := l.Acquire()
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	// Marker exists and carries the holder's pid.
	body, err := os.ReadFile(l.path)
	if err != nil {
		t.Fatalf("read marker: %v", err)
	}
	if !strings.Contains(string(body), ":") {
		t.Errorf("marker body %q missing holder identity", body)
	}

	lease.Release()
	if _, err := os.Stat(l.path); !os.IsNotExist(err) {
		t.Error("marker still present after Release")
	}
}

func TestLockerReleaseIsIdempotent(t *testing.T) {
	l := testLocker(t)

	lease, err := l.Acquire()
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	lease.Release()
	lease.Release() // second release is a no-op

	var nilLease *Lease
	nilLease.Release() // nil-safe
}

func TestLockerTimeout(t *testing.T) {
	l := testLocker(t)

	held, err := l.Acquire()
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer held.Release()

	// A second acquirer against a fresh (non-stale) marker must give up
	// after the attempt budget.
	if _, err := l.Acquire(); !errors.Is(err, ErrLockTimeout) {
		t.Errorf("second Acquire error = %v, want ErrLockTimeout", err)
	}
}

func TestLockerStealsStaleLock(t *testing.T) {
	l := testLocker(t)

	// Simulate a crashed holder: a marker older than the stale threshold.
	if err := os.WriteFile(l.path, []byte("999999:dead"), 0o644); err != nil {
		t.Fatalf("write stale marker: %v", err)
	}
	old := time.Now().Add(-l.staleAfter - time.Second)
	if err := os.Chtimes(l.path, old, old); err != nil {
		t.Fatalf("backdate marker: %v", err)
	}

	lease, err := l.Acquire()
	if err != nil {
		t.Fatalf("Acquire should steal a stale lock, got: %v", err)
	}
	defer lease.Release()

	body, _ := os.ReadFile(l.path)
	if string(body) == "999999:dead" {
		t.Error("marker was not replaced by the new holder")
	}
}

func TestLockerSerializesHolders(t *testing.T) {
	l := NewLocker(filepath.Join(t.TempDir(), "manifest.json.lock"))

	const workers = 10
	var mu sync.Mutex
	var active, maxActive int
	done := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			lease, err := l.Acquire()
			if err != nil {
				done <- err
				return
			}

			mu.Lock()
			active++
			if active > maxActive {
				maxActive = active
			}
			mu.Unlock()

			time.Sleep(2 * time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()

			lease.Release()
			done <- nil
		}()
	}

	for i := 0; i < workers; i++ {
		if err := <-done; err != nil {
			t.Fatalf("worker acquire: %v", err)
		}
	}
	if maxActive != 1 {
		t.Errorf("observed %d concurrent holders, want 1", maxActive)
	}
}
