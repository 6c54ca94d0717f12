// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"

	"stampcard/internal/manifest"
	"stampcard/internal/models"
	"stampcard/internal/slug"
	"stampcard/internal/store"
)

// Businesses serves the business management endpoints. The store is nil
// when PostgreSQL is not configured; every endpoint then reports the
// feature as unavailable.
type Businesses struct {
	businesses *store.BusinessStore
	manifest   *manifest.Store
	publicURL  string
}

// NewBusinesses creates the Businesses handler group.
func NewBusinesses(businesses *store.BusinessStore, ms *manifest.Store, publicURL string) *Businesses {
	return &Businesses{businesses: businesses, manifest: ms, publicURL: publicURL}
}

// available guards DB-backed endpoints when PostgreSQL is absent.
func (h *Businesses) available(w http.ResponseWriter) bool {
	if h.businesses == nil {
		writeError(w, http.StatusServiceUnavailable, "business storage is not configured")
		return false
	}
	return true
}

// businessPayload is the JSON body for create and update.
type businessPayload struct {
	Name           string `json:"name"`
	Slug           string `json:"slug"`
	StampIcon      string `json:"stampIcon"`
	StampsRequired int    `json:"stampsRequired"`
}

func (p *businessPayload) validate() string {
	if strings.TrimSpace(p.Name) == "" {
		return "name is required"
	}
	if !slug.Valid(p.Slug) {
		return "slug must be lowercase letters, digits and hyphens"
	}
	if p.StampsRequired < 1 || p.StampsRequired > 50 {
		return "stampsRequired must be between 1 and 50"
	}
	return ""
}

// checkStampIcon verifies the chosen stamp icon exists in the catalog.
// An unreadable catalog does not block business writes.
func (h *Businesses) checkStampIcon(id string) string {
	if id == "" {
		return ""
	}
	c, err := h.manifest.ReadCatalog()
	if err != nil {
		slog.Warn("catalog read failed during icon check", "error", err)
		return ""
	}
	for i := range c.Icons {
		if c.Icons[i].ID == id {
			return ""
		}
	}
	return fmt.Sprintf("stamp icon %q does not exist", id)
}

// List returns all businesses.
func (h *Businesses) List(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}
	all, err := h.businesses.List()
	if err != nil {
		slog.Error("business list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"businesses": all})
}

// Get returns one business by id.
func (h *Businesses) Get(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}
	b, ok := h.find(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// Create registers a new business.
func (h *Businesses) Create(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}

	var p businessPayload
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := p.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if msg := h.checkStampIcon(p.StampIcon); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if existing, err := h.businesses.FindBySlug(p.Slug); err == nil && existing != nil {
		writeError(w, http.StatusConflict, "slug already in use")
		return
	}

	created, err := h.businesses.Create(&models.Business{
		Name:           strings.TrimSpace(p.Name),
		Slug:           p.Slug,
		StampIcon:      p.StampIcon,
		StampsRequired: p.StampsRequired,
	})
	if err != nil {
		slog.Error("business create failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Update replaces the mutable fields of a business.
func (h *Businesses) Update(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}
	b, ok := h.find(w, r)
	if !ok {
		return
	}

	var p businessPayload
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := p.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if msg := h.checkStampIcon(p.StampIcon); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	b.Name = strings.TrimSpace(p.Name)
	b.Slug = p.Slug
	b.StampIcon = p.StampIcon
	b.StampsRequired = p.StampsRequired
	if err := h.businesses.Update(b); err != nil {
		slog.Error("business update failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// Delete removes a business and, via the schema cascade, its cards.
func (h *Businesses) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}
	b, ok := h.find(w, r)
	if !ok {
		return
	}
	if err := h.businesses.Delete(b.ID); err != nil {
		slog.Error("business delete failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// QR returns a PNG QR code pointing at the business enrollment URL.
// Customers scan it to get a loyalty card.
func (h *Businesses) QR(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}
	b, ok := h.find(w, r)
	if !ok {
		return
	}

	target := fmt.Sprintf("%s/join/%s", strings.TrimRight(h.publicURL, "/"), b.Slug)
	img, err := qrcode.Encode(target, qrcode.Medium, 256)
	if err != nil {
		slog.Error("qr encode failed", "error", err, "business", b.Slug)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(img)
}

// find resolves the {id} URL parameter to a business, writing the error
// response itself when the id is malformed or unknown.
func (h *Businesses) find(w http.ResponseWriter, r *http.Request) (*models.Business, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid business id")
		return nil, false
	}
	b, err := h.businesses.FindByID(id)
	if err != nil {
		slog.Error("business lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return nil, false
	}
	if b == nil {
		writeError(w, http.StatusNotFound, "business not found")
		return nil, false
	}
	return b, true
}
