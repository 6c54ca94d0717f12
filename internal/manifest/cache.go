// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package manifest

import (
	"sync"
	"time"
)

// DefaultCacheTTL is how long a read snapshot stays valid before the next
// read goes back to disk.
const DefaultCacheTTL = 5 * time.Second

// snapshotCache holds at most one catalog document plus its capture time.
// It is populated only by a completed read path (after migration and
// validation); write paths invalidate instead of repopulating, so the next
// read reloads and re-validates from disk.
type snapshotCache struct {
	mu      sync.Mutex
	doc     *Catalog
	takenAt time.Time
	ttl     time.Duration
}

func newSnapshotCache(ttl time.Duration) *snapshotCache {
	if ttl == 0 {
		ttl = DefaultCacheTTL
	}
	return &snapshotCache{ttl: ttl}
}

// Get returns a copy of the cached document if it is younger than the TTL.
func (sc *snapshotCache) Get() (*Catalog, bool) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.doc == nil || time.Since(sc.takenAt) > sc.ttl {
		return nil, false
	}
	return sc.doc.Clone(), true
}

// Set stores a copy of the document and stamps the capture time.
func (sc *snapshotCache) Set(c *Catalog) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.doc = c.Clone()
	sc.takenAt = time.Now()
}

// Invalidate clears the cache unconditionally.
func (sc *snapshotCache) Invalidate() {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.doc = nil
}
