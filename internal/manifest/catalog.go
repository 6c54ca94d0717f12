// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package manifest implements the durable stamp-icon catalog shared by all
// tenants. The catalog is a single pretty-printed JSON document on the local
// filesystem, updated atomically (write-temp-then-rename) under an advisory
// marker-file lock, with a short-TTL in-memory snapshot cache and in-place
// schema migration on read.
package manifest

import (
	"time"
)

// CatalogFileName is the canonical catalog file inside the data directory.
const CatalogFileName = "manifest.json"

// Catalog is the root persisted document: every stamp icon and every
// category, plus bookkeeping fields.
type Catalog struct {
	// SchemaVersion only ever increases; it is bumped on every
	// successful write.
	SchemaVersion int        `json:"schemaVersion"`
	LastUpdated   time.Time  `json:"lastUpdated"`
	Categories    []Category `json:"categories"`
	Icons         []Icon     `json:"icons"`
}

// Category groups icons for display. The ID is a slug and immutable once
// created.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Order int    `json:"order"`
}

// Icon is a single stamp icon entry. File fields are derived from the ID
// when not supplied: "<id>-filled.svg", "<id>.png", and the stroke file
// falls back to the filled file when no stroke asset exists on disk.
type Icon struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category"`
	Variants    []string  `json:"variants"`
	FilledFile  string    `json:"filledFile,omitempty"`
	StrokeFile  string    `json:"strokeFile,omitempty"`
	PreviewFile string    `json:"previewFile,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero"`

	// FileName is the pre-variant legacy field. The migrator moves it
	// into FilledFile; current documents never carry it.
	FileName string `json:"fileName,omitempty"`
}

// NewCategory is the caller-supplied payload for AddCategory. Order is a
// pointer so an omitted order can be backfilled as max(existing)+1.
type NewCategory struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Order *int   `json:"order"`
}

// IconPatch is a partial update for an existing icon. Nil fields are left
// untouched; the icon ID itself is immutable and has no patch field.
type IconPatch struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Variants    []string `json:"variants"`
	FilledFile  *string  `json:"filledFile"`
	StrokeFile  *string  `json:"strokeFile"`
	PreviewFile *string  `json:"previewFile"`
}

// CategoryCount pairs a category with the number of icons assigned to it.
// Counts are computed per read and never persisted.
type CategoryCount struct {
	Category
	IconCount int `json:"iconCount"`
}

// DefaultFilledFile returns the derived filled-variant filename for an icon id.
func DefaultFilledFile(id string) string { return id + "-filled.svg" }

// DefaultStrokeFile returns the derived stroke-variant filename for an icon id.
func DefaultStrokeFile(id string) string { return id + "-stroke.svg" }

// DefaultPreviewFile returns the derived preview filename for an icon id.
func DefaultPreviewFile(id string) string { return id + ".png" }

// defaultCatalog returns a fresh document with the seed categories and no
// icons. It is created implicitly on the first read of a missing file.
func defaultCatalog() *Catalog {
	return &Catalog{
		SchemaVersion: 1,
		Categories: []Category{
			{ID: "food-beverage", Name: "Food & Beverage", Order: 0},
			{ID: "retail", Name: "Retail", Order: 1},
			{ID: "services", Name: "Services", Order: 2},
			{ID: "entertainment", Name: "Entertainment", Order: 3},
			{ID: "health", Name: "Health", Order: 4},
			{ID: "other", Name: "Other", Order: 5},
		},
		Icons: []Icon{},
	}
}

// Clone returns a deep copy of the catalog so cached documents cannot be
// mutated through a returned reference.
func (c *Catalog) Clone() *Catalog {
	out := *c
	out.Categories = append([]Category(nil), c.Categories...)
	out.Icons = append([]Icon(nil), c.Icons...)
	for i := range out.Icons {
		if c.Icons[i].Variants != nil {
			out.Icons[i].Variants = append([]string(nil), c.Icons[i].Variants...)
		}
	}
	return &out
}

// findIcon returns the index of the icon with the given id, or -1.
func (c *Catalog) findIcon(id string) int {
	for i := range c.Icons {
		if c.Icons[i].ID == id {
			return i
		}
	}
	return -1
}

// findCategory returns the index of the category with the given id, or -1.
func (c *Catalog) findCategory(id string) int {
	for i := range c.Categories {
		if c.Categories[i].ID == id {
			return i
		}
	}
	return -1
}
