// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package manifest

import (
	"os"
	"path/filepath"
	"strings"
)

// Migrator normalizes legacy or partial catalog documents into the current
// schema. Normalization is idempotent: running it on an already-normalized
// document changes nothing and reports no migration.
//
// The only non-pure step is the stroke-asset existence probe, injected so
// tests can run without touching the filesystem.
type Migrator struct {
	assetExists func(name string) bool
}

// NewMigrator returns a Migrator that probes for stroke assets inside
// assetsDir.
func NewMigrator(assetsDir string) *Migrator {
	return &Migrator{
		assetExists: func(name string) bool {
			_, err := os.Stat(filepath.Join(assetsDir, name))
			return err == nil
		},
	}
}

// Normalize repairs c in place and reports whether anything changed.
// Each step applies independently:
//
//  1. missing schemaVersion defaults to 1
//  2. missing categories default to an empty list
//  3. empty categories with non-empty icons are synthesized from the
//     category ids the icons reference, in first-seen order
//  4. missing icons default to an empty list
//  5. a missing filledFile is taken from the legacy fileName field if
//     present, else derived from the id
//  6. a missing strokeFile uses the derived stroke asset when it exists on
//     disk, else falls back to filledFile
//  7. a missing previewFile is derived from the id
func (m *Migrator) Normalize(c *Catalog) bool {
	migrated := false

	if c.SchemaVersion == 0 {
		c.SchemaVersion = 1
		migrated = true
	}

	if c.Categories == nil {
		c.Categories = []Category{}
		migrated = true
	}

	if len(c.Categories) == 0 && len(c.Icons) > 0 {
		c.Categories = synthesizeCategories(c.Icons)
		migrated = true
	}

	if c.Icons == nil {
		c.Icons = []Icon{}
		migrated = true
	}

	for i := range c.Icons {
		ic := &c.Icons[i]

		if ic.FilledFile == "" {
			if ic.FileName != "" {
				ic.FilledFile = ic.FileName
			} else {
				ic.FilledFile = DefaultFilledFile(ic.ID)
			}
			migrated = true
		}
		if ic.FileName != "" {
			ic.FileName = ""
			migrated = true
		}

		if ic.StrokeFile == "" {
			if stroke := DefaultStrokeFile(ic.ID); m.assetExists(stroke) {
				ic.StrokeFile = stroke
			} else {
				// Rendering code always gets a valid file reference,
				// even if it shows the filled asset in place of a
				// stroke variant.
				ic.StrokeFile = ic.FilledFile
			}
			migrated = true
		}

		if ic.PreviewFile == "" {
			ic.PreviewFile = DefaultPreviewFile(ic.ID)
			migrated = true
		}
	}

	return migrated
}

// synthesizeCategories builds one category per distinct category id the
// icons reference, in first-seen order, with sequential order starting at 1.
func synthesizeCategories(icons []Icon) []Category {
	seen := map[string]bool{}
	var cats []Category
	for _, ic := range icons {
		if ic.Category == "" || seen[ic.Category] {
			continue
		}
		seen[ic.Category] = true
		cats = append(cats, Category{
			ID:    ic.Category,
			Name:  displayName(ic.Category),
			Order: len(cats) + 1,
		})
	}
	if cats == nil {
		cats = []Category{}
	}
	return cats
}

// displayName turns a slug into a display string: hyphens become spaces
// and each word is capitalized ("food-beverage" → "Food Beverage").
func displayName(slug string) string {
	words := strings.Split(slug, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
