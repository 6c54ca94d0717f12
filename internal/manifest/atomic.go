// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package manifest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
)

// writeAtomic serializes the catalog to pretty-printed JSON and commits it
// to path durably: the document is staged in a freshly named sibling .tmp
// file, fsynced, then renamed over the canonical path. The rename is the
// atomicity boundary — readers observe either the old or the new document,
// never a torn one. On any failure the canonical file is left untouched;
// stray temp files from crashed writers are harmless refuse because every
// writer stages under its own name.
func writeAtomic(path string, c *Catalog) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	data = append(data, '\n')

	tmp := fmt.Sprintf("%s.%s.tmp", path, uuid.NewString())
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create temp catalog: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write temp catalog: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("sync temp catalog: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close temp catalog: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("commit catalog: %w", err)
	}
	return nil
}
