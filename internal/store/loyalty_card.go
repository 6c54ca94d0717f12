// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"stampcard/internal/models"
)

// CardStore manages loyalty cards in the database.
type CardStore struct {
	db *sql.DB
}

// NewCardStore returns a new CardStore.
func NewCardStore(db *sql.DB) *CardStore {
	return &CardStore{db: db}
}

const cardColumns = `id, business_id, customer_email, stamps, redeemed, created_at, updated_at`

// scanCard scans a row into a LoyaltyCard struct.
func scanCard(scanner interface{ Scan(...any) error }) (*models.LoyaltyCard, error) {
	var c models.LoyaltyCard
	err := scanner.Scan(
		&c.ID, &c.BusinessID, &c.CustomerEmail,
		&c.Stamps, &c.Redeemed, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindByID retrieves a card by ID. Returns nil if not found.
func (s *CardStore) FindByID(id uuid.UUID) (*models.LoyaltyCard, error) {
	row := s.db.QueryRow(`SELECT `+cardColumns+` FROM loyalty_cards WHERE id = $1`, id)
	c, err := scanCard(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find card by id: %w", err)
	}
	return c, nil
}

// ListByBusiness returns all cards for one business, newest first.
func (s *CardStore) ListByBusiness(businessID uuid.UUID) ([]models.LoyaltyCard, error) {
	rows, err := s.db.Query(`
		SELECT `+cardColumns+` FROM loyalty_cards
		WHERE business_id = $1
		ORDER BY created_at DESC
	`, businessID)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	var items []models.LoyaltyCard
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// Create inserts a new card with zero stamps and returns it.
func (s *CardStore) Create(businessID uuid.UUID, customerEmail string) (*models.LoyaltyCard, error) {
	row := s.db.QueryRow(`
		INSERT INTO loyalty_cards (business_id, customer_email)
		VALUES ($1, $2)
		RETURNING `+cardColumns,
		businessID, customerEmail,
	)
	c, err := scanCard(row)
	if err != nil {
		return nil, fmt.Errorf("create card: %w", err)
	}
	return c, nil
}

// AddStamp increments the stamp count atomically and returns the updated
// card. Returns nil if the card does not exist.
func (s *CardStore) AddStamp(id uuid.UUID) (*models.LoyaltyCard, error) {
	row := s.db.QueryRow(`
		UPDATE loyalty_cards SET stamps = stamps + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING `+cardColumns,
		id,
	)
	c, err := scanCard(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("add stamp: %w", err)
	}
	return c, nil
}

// Redeem marks a card as redeemed and resets its stamps. Returns nil if
// the card does not exist.
func (s *CardStore) Redeem(id uuid.UUID) (*models.LoyaltyCard, error) {
	row := s.db.QueryRow(`
		UPDATE loyalty_cards SET redeemed = TRUE, stamps = 0, updated_at = NOW()
		WHERE id = $1
		RETURNING `+cardColumns,
		id,
	)
	c, err := scanCard(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redeem card: %w", err)
	}
	return c, nil
}
