// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"stampcard/internal/cache"
	"stampcard/internal/imaging"
	"stampcard/internal/manifest"
	"stampcard/internal/slug"
)

const (
	// maxUploadSize caps a full icon upload request (all variants).
	maxUploadSize = 5 << 20

	// maxAssetSize caps a single uploaded asset file.
	maxAssetSize = 1 << 20
)

// Icons serves the catalog read endpoints and the admin icon and category
// mutations. Reads go through the Valkey response cache when one is
// configured; every mutation clears it.
type Icons struct {
	manifest *manifest.Store
	catalog  *cache.CatalogCache
}

// NewIcons creates the Icons handler group. catalog may be nil when
// Valkey is not configured; reads then serve straight from the store.
func NewIcons(ms *manifest.Store, catalog *cache.CatalogCache) *Icons {
	return &Icons{manifest: ms, catalog: catalog}
}

// GetCatalog returns the full catalog document.
func (h *Icons) GetCatalog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.catalog != nil {
		if body, ok := h.catalog.Get(ctx, cache.FullKey()); ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write(body)
			return
		}
	}

	c, err := h.manifest.ReadCatalog()
	if err != nil {
		catalogError(w, err)
		return
	}

	body, err := json.Marshal(c)
	if err != nil {
		slog.Error("catalog encode failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if h.catalog != nil {
		h.catalog.Set(ctx, cache.FullKey(), body)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

// ListCategories returns every category with its icon count.
func (h *Icons) ListCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.catalog != nil {
		if body, ok := h.catalog.Get(ctx, cache.CategoriesKey()); ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write(body)
			return
		}
	}

	counts, err := h.manifest.ListCategoriesWithCounts()
	if err != nil {
		catalogError(w, err)
		return
	}

	body, err := json.Marshal(map[string]any{"categories": counts})
	if err != nil {
		slog.Error("categories encode failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if h.catalog != nil {
		h.catalog.Set(ctx, cache.CategoriesKey(), body)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

// CreateCategory adds a category from a JSON body. Returns the full
// catalog after the write.
func (h *Icons) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var nc manifest.NewCategory
	if err := decodeJSON(r, &nc); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.manifest.AddCategory(nc)
	if err != nil {
		catalogError(w, err)
		return
	}

	h.invalidate(r)
	writeJSON(w, http.StatusCreated, c)
}

// CreateIcon accepts a multipart upload: text fields id, name, category
// and optional description, plus a required "filled" SVG, an optional
// "stroke" SVG, and an optional "preview" image. Assets are written to the
// assets directory under id-derived names before the catalog write; if
// the write fails, the assets are removed again.
func (h *Icons) CreateIcon(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1024)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
		return
	}

	id := strings.TrimSpace(r.FormValue("id"))
	if !slug.Valid(id) {
		writeError(w, http.StatusBadRequest, "id must be a lowercase slug")
		return
	}

	// Reject a taken id before any asset write: asset names derive from
	// the id, and a rollback after the catalog write rejects the upload
	// would otherwise remove the existing icon's files.
	if c, err := h.manifest.ReadCatalog(); err == nil {
		for i := range c.Icons {
			if c.Icons[i].ID == id {
				writeError(w, http.StatusConflict, fmt.Sprintf("icon %q: %s", id, manifest.ErrDuplicateID))
				return
			}
		}
	}

	filled, err := formSVG(r, "filled", true)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	stroke, err := formSVG(r, "stroke", false)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	preview, err := formPreviewPNG(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Write assets first so the stroke fallback probe in the catalog
	// write sees them. Roll back on any failure past this point.
	var saved []string
	cleanup := func() {
		for _, name := range saved {
			if err := os.Remove(filepath.Join(h.manifest.AssetsDir(), name)); err != nil && !os.IsNotExist(err) {
				slog.Warn("asset rollback failed", "file", name, "error", err)
			}
		}
	}

	save := func(name string, data []byte) bool {
		if err := os.WriteFile(filepath.Join(h.manifest.AssetsDir(), name), data, 0o644); err != nil {
			slog.Error("asset write failed", "file", name, "error", err)
			cleanup()
			writeError(w, http.StatusInternalServerError, "failed to store asset")
			return false
		}
		saved = append(saved, name)
		return true
	}

	if !save(manifest.DefaultFilledFile(id), filled) {
		return
	}
	if stroke != nil && !save(manifest.DefaultStrokeFile(id), stroke) {
		return
	}
	if preview != nil && !save(manifest.DefaultPreviewFile(id), preview) {
		return
	}

	c, err := h.manifest.AddIcon(manifest.Icon{
		ID:          id,
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Category:    strings.TrimSpace(r.FormValue("category")),
	})
	if err != nil {
		cleanup()
		catalogError(w, err)
		return
	}

	h.invalidate(r)

	for i := range c.Icons {
		if c.Icons[i].ID == id {
			writeJSON(w, http.StatusCreated, c.Icons[i])
			return
		}
	}
	// Unreachable: AddIcon succeeded, the icon is in the catalog.
	writeJSON(w, http.StatusCreated, c)
}

// UpdateIcon applies a partial JSON update to an icon.
func (h *Icons) UpdateIcon(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var patch manifest.IconPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ic, err := h.manifest.UpdateIcon(id, patch)
	if err != nil {
		catalogError(w, err)
		return
	}

	h.invalidate(r)
	writeJSON(w, http.StatusOK, ic)
}

// DeleteIcon removes an icon and, best-effort, its asset files.
func (h *Icons) DeleteIcon(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	deleted, err := h.manifest.DeleteIcon(id)
	if err != nil {
		catalogError(w, err)
		return
	}

	h.invalidate(r)

	// Asset removal is best-effort. The stroke file may alias the filled
	// file, so deduplicate before removing.
	files := map[string]bool{}
	for _, name := range []string{deleted.FilledFile, deleted.StrokeFile, deleted.PreviewFile} {
		if name != "" {
			files[name] = true
		}
	}
	for name := range files {
		if err := os.Remove(filepath.Join(h.manifest.AssetsDir(), name)); err != nil && !os.IsNotExist(err) {
			slog.Warn("asset delete failed", "file", name, "error", err)
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// invalidate clears the Valkey response cache after a mutation.
func (h *Icons) invalidate(r *http.Request) {
	if h.catalog != nil {
		h.catalog.Invalidate(r.Context())
	}
}

// decodeJSON reads a small JSON body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxAssetSize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// formSVG reads and validates an SVG form file. Returns nil when the
// field is absent and not required.
func formSVG(r *http.Request, field string, required bool) ([]byte, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) && !required {
			return nil, nil
		}
		return nil, fmt.Errorf("%s SVG file is required", field)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAssetSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s file: %w", field, err)
	}
	if len(data) > maxAssetSize {
		return nil, fmt.Errorf("%s file exceeds 1 MB", field)
	}

	// DetectContentType reports SVGs as XML or plain text; anything else
	// is not an SVG. The <svg element check catches arbitrary XML.
	ct := http.DetectContentType(data)
	if !strings.Contains(ct, "xml") && !strings.Contains(ct, "text/plain") {
		return nil, fmt.Errorf("%s file is not an SVG (detected %s)", field, ct)
	}
	if !bytes.Contains(data, []byte("<svg")) {
		return nil, fmt.Errorf("%s file is not an SVG", field)
	}
	return data, nil
}

// formPreviewPNG reads the optional preview file and normalizes it to a
// bounded-width PNG. PNG and WebP uploads are accepted.
func formPreviewPNG(r *http.Request) ([]byte, error) {
	file, _, err := r.FormFile("preview")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("read preview file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAssetSize+1))
	if err != nil {
		return nil, fmt.Errorf("read preview file: %w", err)
	}
	if len(data) > maxAssetSize {
		return nil, fmt.Errorf("preview file exceeds 1 MB")
	}

	return imaging.NormalizePreview(data)
}
