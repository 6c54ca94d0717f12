// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package manifest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"stampcard/internal/slug"
)

// Store exposes CRUD over the catalog document. One long-lived instance is
// constructed at startup and shared by all request handlers; writes from
// other processes on the same host are coordinated through the marker-file
// lock.
type Store struct {
	path      string
	assetsDir string
	locker    *Locker
	migrator  *Migrator
	cache     *snapshotCache
}

// NewStore creates the store rooted at dataDir, creating the data and
// assets directories if needed. The catalog file itself is created lazily
// on the first read.
func NewStore(dataDir string) (*Store, error) {
	assetsDir := filepath.Join(dataDir, "assets")
	if err := os.MkdirAll(assetsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	path := filepath.Join(dataDir, CatalogFileName)
	return &Store{
		path:      path,
		assetsDir: assetsDir,
		locker:    NewLocker(path + ".lock"),
		migrator:  NewMigrator(assetsDir),
		cache:     newSnapshotCache(DefaultCacheTTL),
	}, nil
}

// Path returns the canonical catalog file path.
func (s *Store) Path() string { return s.path }

// AssetsDir returns the directory icon SVG/PNG assets live in. The upload
// handlers write there; this store only probes it for stroke variants.
func (s *Store) AssetsDir() string { return s.assetsDir }

// ReadCatalog returns the current document. A fresh snapshot (younger than
// the cache TTL) short-circuits; otherwise the file is read, migrated and
// validated, and a repaired document is persisted best-effort before the
// snapshot is cached.
func (s *Store) ReadCatalog() (*Catalog, error) {
	if c, ok := s.cache.Get(); ok {
		return c, nil
	}

	c, migrated, err := s.load()
	if err != nil {
		return nil, err
	}
	if migrated {
		s.writeBackNormalized(c)
	}
	s.cache.Set(c)
	return c, nil
}

// AddIcon validates and appends a new icon, deriving file defaults and
// stamping timestamps, then persists under lock. Returns the full catalog.
func (s *Store) AddIcon(ic Icon) (*Catalog, error) {
	if err := requireSlug("id", ic.ID); err != nil {
		return nil, err
	}
	if ic.Name == "" {
		return nil, &ValidationError{Field: "name", Reason: "is required"}
	}
	if ic.Category == "" {
		return nil, &ValidationError{Field: "category", Reason: "is required"}
	}

	return s.mutate(func(c *Catalog) error {
		if c.findIcon(ic.ID) >= 0 {
			return fmt.Errorf("icon %q: %w", ic.ID, ErrDuplicateID)
		}
		if c.findCategory(ic.Category) < 0 {
			return &ValidationError{Field: "category", Reason: fmt.Sprintf("%q does not exist", ic.Category)}
		}

		if ic.FilledFile == "" {
			ic.FilledFile = DefaultFilledFile(ic.ID)
		}
		if ic.StrokeFile == "" {
			if stroke := DefaultStrokeFile(ic.ID); s.migrator.assetExists(stroke) {
				ic.StrokeFile = stroke
			} else {
				ic.StrokeFile = ic.FilledFile
			}
		}
		if ic.PreviewFile == "" {
			ic.PreviewFile = DefaultPreviewFile(ic.ID)
		}
		if ic.Variants == nil {
			ic.Variants = []string{}
		}

		now := time.Now().UTC()
		ic.CreatedAt = now
		ic.UpdatedAt = now

		c.Icons = append(c.Icons, ic)
		return nil
	})
}

// UpdateIcon merges the non-nil patch fields over the icon with the given
// id, stamps updatedAt, persists under lock and returns the updated icon.
// The id itself is immutable.
func (s *Store) UpdateIcon(id string, patch IconPatch) (*Icon, error) {
	var updated Icon

	_, err := s.mutate(func(c *Catalog) error {
		i := c.findIcon(id)
		if i < 0 {
			return fmt.Errorf("icon %q: %w", id, ErrNotFound)
		}
		ic := &c.Icons[i]

		if patch.Category != nil {
			if c.findCategory(*patch.Category) < 0 {
				return &ValidationError{Field: "category", Reason: fmt.Sprintf("%q does not exist", *patch.Category)}
			}
			ic.Category = *patch.Category
		}
		if patch.Name != nil {
			ic.Name = *patch.Name
		}
		if patch.Description != nil {
			ic.Description = *patch.Description
		}
		if patch.Variants != nil {
			ic.Variants = append([]string(nil), patch.Variants...)
		}
		if patch.FilledFile != nil {
			ic.FilledFile = *patch.FilledFile
		}
		if patch.StrokeFile != nil {
			ic.StrokeFile = *patch.StrokeFile
		}
		if patch.PreviewFile != nil {
			ic.PreviewFile = *patch.PreviewFile
		}
		ic.UpdatedAt = time.Now().UTC()

		updated = *ic
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteIcon removes the icon with the given id, persists under lock and
// returns the deleted record.
func (s *Store) DeleteIcon(id string) (*Icon, error) {
	var deleted Icon

	_, err := s.mutate(func(c *Catalog) error {
		i := c.findIcon(id)
		if i < 0 {
			return fmt.Errorf("icon %q: %w", id, ErrNotFound)
		}
		deleted = c.Icons[i]
		c.Icons = append(c.Icons[:i], c.Icons[i+1:]...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}

// AddCategory validates and appends a new category, backfilling a missing
// order as max(existing)+1, re-sorts by order ascending and persists under
// lock. Returns the full catalog.
func (s *Store) AddCategory(nc NewCategory) (*Catalog, error) {
	if err := requireSlug("id", nc.ID); err != nil {
		return nil, err
	}
	if nc.Name == "" {
		return nil, &ValidationError{Field: "name", Reason: "is required"}
	}

	return s.mutate(func(c *Catalog) error {
		if c.findCategory(nc.ID) >= 0 {
			return fmt.Errorf("category %q: %w", nc.ID, ErrDuplicateID)
		}

		order := 0
		if nc.Order != nil {
			order = *nc.Order
		} else {
			for _, cat := range c.Categories {
				if cat.Order >= order {
					order = cat.Order + 1
				}
			}
		}

		c.Categories = append(c.Categories, Category{ID: nc.ID, Name: nc.Name, Order: order})
		sort.SliceStable(c.Categories, func(i, j int) bool {
			return c.Categories[i].Order < c.Categories[j].Order
		})
		return nil
	})
}

// ListCategoriesWithCounts returns the categories in display order with the
// number of icons assigned to each. Pure read.
func (s *Store) ListCategoriesWithCounts() ([]CategoryCount, error) {
	c, err := s.ReadCatalog()
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(c.Categories))
	for _, ic := range c.Icons {
		counts[ic.Category]++
	}

	out := make([]CategoryCount, 0, len(c.Categories))
	for _, cat := range c.Categories {
		out = append(out, CategoryCount{Category: cat, IconCount: counts[cat.ID]})
	}
	return out, nil
}

// mutate runs the canonical write protocol: acquire the lock, re-read the
// current document from disk (never a cached snapshot — that would admit
// lost updates between two writers), apply the single mutation, bump the
// schema version, stamp lastUpdated, write atomically, release, invalidate
// the cache.
func (s *Store) mutate(fn func(c *Catalog) error) (*Catalog, error) {
	lease, err := s.locker.Acquire()
	if err != nil {
		return nil, err
	}
	defer lease.Release()

	// Migration write-back is skipped here: the mutation itself persists
	// the normalized form, and writing back mid-mutation would re-enter
	// the write path we are already on.
	c, _, err := s.load()
	if err != nil {
		return nil, err
	}

	if err := fn(c); err != nil {
		return nil, err
	}

	c.SchemaVersion++
	c.LastUpdated = time.Now().UTC()

	if err := writeAtomic(s.path, c); err != nil {
		return nil, err
	}
	s.cache.Invalidate()
	return c, nil
}

// load reads the raw document from disk and normalizes it. A missing file
// yields the default document (reported as migrated so the read path
// persists it). Structural problems surface as ErrInvalidCatalog.
func (s *Store) load() (*Catalog, bool, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return defaultCatalog(), true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read catalog: %w", err)
	}

	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	migrated := s.migrator.Normalize(&c)

	if err := validate(&c); err != nil {
		return nil, false, err
	}
	return &c, migrated, nil
}

// writeBackNormalized persists a repaired document after a read-path
// migration. Best-effort by design: lock contention or I/O failure is
// logged and swallowed so the read can still return the normalized
// in-memory document — availability of reads wins over persistence of the
// repair. The next read simply migrates again.
func (s *Store) writeBackNormalized(c *Catalog) {
	lease, err := s.locker.Acquire()
	if err != nil {
		slog.Warn("catalog migration write-back skipped", "error", err)
		return
	}
	defer lease.Release()

	c.LastUpdated = time.Now().UTC()
	if err := writeAtomic(s.path, c); err != nil {
		slog.Warn("catalog migration write-back failed", "path", s.path, "error", err)
		return
	}
	slog.Info("catalog migrated", "path", s.path, "schema_version", c.SchemaVersion)
}

// validate checks structural soundness after migration: every icon and
// category carries an id and a name, and ids are unique within their
// collection. Failures are data corruption, not caller mistakes.
func validate(c *Catalog) error {
	seenCat := make(map[string]bool, len(c.Categories))
	for _, cat := range c.Categories {
		if cat.ID == "" || cat.Name == "" {
			return fmt.Errorf("%w: category missing id or name", ErrInvalidCatalog)
		}
		if seenCat[cat.ID] {
			return fmt.Errorf("%w: duplicate category id %q", ErrInvalidCatalog, cat.ID)
		}
		seenCat[cat.ID] = true
	}

	seenIcon := make(map[string]bool, len(c.Icons))
	for _, ic := range c.Icons {
		if ic.ID == "" || ic.Name == "" {
			return fmt.Errorf("%w: icon missing id or name", ErrInvalidCatalog)
		}
		if seenIcon[ic.ID] {
			return fmt.Errorf("%w: duplicate icon id %q", ErrInvalidCatalog, ic.ID)
		}
		seenIcon[ic.ID] = true
	}
	return nil
}

// requireSlug validates a caller-supplied identifier.
func requireSlug(field, value string) error {
	if value == "" {
		return &ValidationError{Field: field, Reason: "is required"}
	}
	if !slug.Valid(value) {
		return &ValidationError{Field: field, Reason: "must contain only lowercase letters, digits and hyphens"}
	}
	return nil
}
