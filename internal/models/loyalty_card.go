// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// LoyaltyCard tracks one customer's stamps at one business.
type LoyaltyCard struct {
	ID            uuid.UUID `json:"id"`
	BusinessID    uuid.UUID `json:"business_id"`
	CustomerEmail string    `json:"customer_email"`
	Stamps        int       `json:"stamps"`
	Redeemed      bool      `json:"redeemed"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Complete reports whether the card has collected enough stamps for the
// business's reward threshold.
func (c *LoyaltyCard) Complete(required int) bool {
	return required > 0 && c.Stamps >= required
}
