// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Business represents a merchant running a loyalty program. The stamp icon
// is a reference into the shared icon catalog, not a foreign key — the
// catalog lives on the filesystem, not in PostgreSQL.
type Business struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	StampIcon      string    `json:"stamp_icon"`
	StampsRequired int       `json:"stamps_required"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
