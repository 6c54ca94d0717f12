// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package manifest

import (
	"testing"
	"time"
)

func TestSnapshotCacheHitAndMiss(t *testing.T) {
	sc := newSnapshotCache(time.Minute)

	if _, ok := sc.Get(); ok {
		t.Error("expected miss on empty cache")
	}

	sc.Set(defaultCatalog())

	c, ok := sc.Get()
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if len(c.Categories) != 6 {
		t.Errorf("categories = %d, want 6", len(c.Categories))
	}
}

func TestSnapshotCacheExpiry(t *testing.T) {
	sc := newSnapshotCache(10 * time.Millisecond)
	sc.Set(defaultCatalog())

	time.Sleep(20 * time.Millisecond)

	if _, ok := sc.Get(); ok {
		t.Error("expected miss after TTL expiry")
	}
}

func TestSnapshotCacheInvalidate(t *testing.T) {
	sc := newSnapshotCache(time.Minute)
	sc.Set(defaultCatalog())
	sc.Invalidate()

	if _, ok := sc.Get(); ok {
		t.Error("expected miss after Invalidate")
	}
}

// TestSnapshotCacheReturnsCopies guards against callers mutating the cached
// document through a returned reference.
func TestSnapshotCacheReturnsCopies(t *testing.T) {
	sc := newSnapshotCache(time.Minute)
	sc.Set(defaultCatalog())

	first, _ := sc.Get()
	first.Categories[0].Name = "mutated"
	first.Icons = append(first.Icons, Icon{ID: "rogue"})

	second, _ := sc.Get()
	if second.Categories[0].Name == "mutated" {
		t.Error("mutation leaked into the cached document")
	}
	if len(second.Icons) != 0 {
		t.Error("appended icon leaked into the cached document")
	}
}

func TestSnapshotCacheDefaultTTL(t *testing.T) {
	sc := newSnapshotCache(0)
	if sc.ttl != DefaultCacheTTL {
		t.Errorf("ttl = %v, want DefaultCacheTTL (%v)", sc.ttl, DefaultCacheTTL)
	}
}
