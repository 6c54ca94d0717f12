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

// BusinessStore manages merchant records in the database.
type BusinessStore struct {
	db *sql.DB
}

// NewBusinessStore returns a new BusinessStore.
func NewBusinessStore(db *sql.DB) *BusinessStore {
	return &BusinessStore{db: db}
}

const businessColumns = `id, name, slug, stamp_icon, stamps_required, created_at, updated_at`

// scanBusiness scans a row into a Business struct.
func scanBusiness(scanner interface{ Scan(...any) error }) (*models.Business, error) {
	var b models.Business
	err := scanner.Scan(
		&b.ID, &b.Name, &b.Slug, &b.StampIcon,
		&b.StampsRequired, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// List returns all businesses ordered by name.
func (s *BusinessStore) List() ([]models.Business, error) {
	rows, err := s.db.Query(`SELECT ` + businessColumns + ` FROM businesses ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list businesses: %w", err)
	}
	defer rows.Close()

	var items []models.Business
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, fmt.Errorf("scan business: %w", err)
		}
		items = append(items, *b)
	}
	return items, rows.Err()
}

// FindByID retrieves a business by ID. Returns nil if not found.
func (s *BusinessStore) FindByID(id uuid.UUID) (*models.Business, error) {
	row := s.db.QueryRow(`SELECT `+businessColumns+` FROM businesses WHERE id = $1`, id)
	b, err := scanBusiness(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find business by id: %w", err)
	}
	return b, nil
}

// FindBySlug retrieves a business by slug. Returns nil if not found.
func (s *BusinessStore) FindBySlug(slug string) (*models.Business, error) {
	row := s.db.QueryRow(`SELECT `+businessColumns+` FROM businesses WHERE slug = $1`, slug)
	b, err := scanBusiness(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find business by slug: %w", err)
	}
	return b, nil
}

// Create inserts a new business and returns it.
func (s *BusinessStore) Create(b *models.Business) (*models.Business, error) {
	row := s.db.QueryRow(`
		INSERT INTO businesses (name, slug, stamp_icon, stamps_required)
		VALUES ($1, $2, $3, $4)
		RETURNING `+businessColumns,
		b.Name, b.Slug, b.StampIcon, b.StampsRequired,
	)
	result, err := scanBusiness(row)
	if err != nil {
		return nil, fmt.Errorf("create business: %w", err)
	}
	return result, nil
}

// Update modifies an existing business.
func (s *BusinessStore) Update(b *models.Business) error {
	_, err := s.db.Exec(`
		UPDATE businesses SET
			name = $1, stamp_icon = $2, stamps_required = $3, updated_at = NOW()
		WHERE id = $4
	`, b.Name, b.StampIcon, b.StampsRequired, b.ID)
	if err != nil {
		return fmt.Errorf("update business: %w", err)
	}
	return nil
}

// Delete removes a business by ID. Loyalty cards cascade.
func (s *BusinessStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM businesses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete business: %w", err)
	}
	return nil
}
