// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"stampcard/internal/models"
	"stampcard/internal/store"
)

// Cards serves the loyalty-card endpoints. Like Businesses, all
// endpoints degrade to 503 when PostgreSQL is not configured.
type Cards struct {
	cards      *store.CardStore
	businesses *store.BusinessStore
}

// NewCards creates the Cards handler group.
func NewCards(cards *store.CardStore, businesses *store.BusinessStore) *Cards {
	return &Cards{cards: cards, businesses: businesses}
}

func (h *Cards) available(w http.ResponseWriter) bool {
	if h.cards == nil {
		writeError(w, http.StatusServiceUnavailable, "card storage is not configured")
		return false
	}
	return true
}

// cardView decorates a card with its completion state, which depends on
// the business threshold and is never stored.
type cardView struct {
	models.LoyaltyCard
	Complete bool `json:"complete"`
}

func viewOf(c *models.LoyaltyCard, b *models.Business) cardView {
	return cardView{LoyaltyCard: *c, Complete: c.Complete(b.StampsRequired)}
}

// ListByBusiness returns every card issued by a business.
func (h *Cards) ListByBusiness(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}
	b, ok := h.findBusiness(w, r)
	if !ok {
		return
	}

	cards, err := h.cards.ListByBusiness(b.ID)
	if err != nil {
		slog.Error("card list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	views := make([]cardView, 0, len(cards))
	for i := range cards {
		views = append(views, viewOf(&cards[i], b))
	}
	writeJSON(w, http.StatusOK, map[string]any{"cards": views})
}

// Create issues a loyalty card for a customer at a business. The same
// customer cannot hold two cards at one business; the unique constraint
// surfaces that as a conflict.
func (h *Cards) Create(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}
	b, ok := h.findBusiness(w, r)
	if !ok {
		return
	}

	var p struct {
		CustomerEmail string `json:"customerEmail"`
	}
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	email := strings.ToLower(strings.TrimSpace(p.CustomerEmail))
	if _, err := mail.ParseAddress(email); err != nil {
		writeError(w, http.StatusBadRequest, "customerEmail is not a valid address")
		return
	}

	card, err := h.cards.Create(b.ID, email)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			writeError(w, http.StatusConflict, "customer already has a card here")
			return
		}
		slog.Error("card create failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, viewOf(card, b))
}

// AddStamp adds one stamp to a card.
func (h *Cards) AddStamp(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}
	card, b, ok := h.findCard(w, r)
	if !ok {
		return
	}
	if card.Redeemed {
		writeError(w, http.StatusConflict, "card already redeemed")
		return
	}
	if card.Complete(b.StampsRequired) {
		writeError(w, http.StatusConflict, "card is full, redeem it first")
		return
	}

	stamped, err := h.cards.AddStamp(card.ID)
	if err != nil {
		slog.Error("add stamp failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, viewOf(stamped, b))
}

// Redeem marks a full card as redeemed and resets its stamps.
func (h *Cards) Redeem(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}
	card, b, ok := h.findCard(w, r)
	if !ok {
		return
	}
	if card.Redeemed {
		writeError(w, http.StatusConflict, "card already redeemed")
		return
	}
	if !card.Complete(b.StampsRequired) {
		writeError(w, http.StatusConflict, "card is not full yet")
		return
	}

	redeemed, err := h.cards.Redeem(card.ID)
	if err != nil {
		slog.Error("redeem failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, viewOf(redeemed, b))
}

// findBusiness resolves the {id} URL parameter to a business.
func (h *Cards) findBusiness(w http.ResponseWriter, r *http.Request) (*models.Business, bool) {
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

// findCard resolves the {cardID} URL parameter to a card plus its business.
func (h *Cards) findCard(w http.ResponseWriter, r *http.Request) (*models.LoyaltyCard, *models.Business, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "cardID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid card id")
		return nil, nil, false
	}
	card, err := h.cards.FindByID(id)
	if err != nil {
		slog.Error("card lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return nil, nil, false
	}
	if card == nil {
		writeError(w, http.StatusNotFound, "card not found")
		return nil, nil, false
	}

	b, err := h.businesses.FindByID(card.BusinessID)
	if err != nil || b == nil {
		slog.Error("card business lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return nil, nil, false
	}
	return card, b, true
}
