// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteAtomicCommits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	c := defaultCatalog()

	if err := writeAtomic(path, c); err != nil {
		t.Fatalf("writeAtomic: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}

	// Pretty-printed for human diffability.
	if !strings.Contains(string(data), "\n  \"schemaVersion\": 1") {
		t.Errorf("document is not pretty-printed:\n%s", data)
	}

	var got Catalog
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal written document: %v", err)
	}
	if len(got.Categories) != 6 {
		t.Errorf("categories = %d, want 6", len(got.Categories))
	}
}

func TestWriteAtomicLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")

	if err := writeAtomic(path, defaultCatalog()); err != nil {
		t.Fatalf("writeAtomic: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file %q left after successful write", e.Name())
		}
	}
}

// TestWriteAtomicFailureLeavesCanonicalUntouched simulates a write failure
// (missing parent directory) and checks the canonical file is unaffected.
func TestWriteAtomicFailureLeavesCanonicalUntouched(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "manifest.json")

	if err := writeAtomic(path, defaultCatalog()); err == nil {
		t.Fatal("expected error writing into a missing directory")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("canonical file appeared despite failed write")
	}
}

// TestWriteAtomicToleratesStrayTempFiles mimics a writer that crashed after
// staging but before rename: the canonical file is unchanged on restart and
// later writers are not disturbed by the leftover temp file.
func TestWriteAtomicToleratesStrayTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")

	if err := writeAtomic(path, defaultCatalog()); err != nil {
		t.Fatalf("writeAtomic: %v", err)
	}
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	// Crashed writer's refuse.
	stray := path + ".deadbeef.tmp"
	if err := os.WriteFile(stray, []byte("{ partial"), 0o644); err != nil {
		t.Fatal(err)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Error("canonical file changed without a rename")
	}

	// The next writer stages under its own name and succeeds.
	c := defaultCatalog()
	c.SchemaVersion = 2
	if err := writeAtomic(path, c); err != nil {
		t.Fatalf("writeAtomic with stray temp present: %v", err)
	}
}

// TestRoundTrip verifies no field is lost across write → read → write:
// re-serializing a freshly read document is byte-identical.
func TestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")

	c := defaultCatalog()
	c.Icons = []Icon{{
		ID: "coffee-cup", Name: "Coffee Cup", Description: "A cup of coffee",
		Category: "food-beverage", Variants: []string{"filled", "stroke"},
		FilledFile: "coffee-cup-filled.svg", StrokeFile: "coffee-cup-stroke.svg",
		PreviewFile: "coffee-cup.png",
	}}
	if err := writeAtomic(path, c); err != nil {
		t.Fatalf("writeAtomic: %v", err)
	}

	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var read Catalog
	if err := json.Unmarshal(first, &read); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	second := filepath.Join(dir, "copy.json")
	if err := writeAtomic(second, &read); err != nil {
		t.Fatalf("writeAtomic copy: %v", err)
	}

	got, err := os.ReadFile(second)
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(got) {
		t.Errorf("round trip not byte-identical:\nfirst:\n%s\nsecond:\n%s", first, got)
	}
}
