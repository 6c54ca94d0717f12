package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// Seed populates the database with initial development data.
// It creates a demo business if none exists so the dashboard and
// enrollment flows have something to show.
func Seed(db *sql.DB) error {
	// Check if any businesses exist already.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM businesses").Scan(&count); err != nil {
		return fmt.Errorf("seed check businesses: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	_, err := db.Exec(`
		INSERT INTO businesses (name, slug, stamp_icon, stamps_required)
		VALUES ($1, $2, $3, $4)
	`, "Demo Coffee", "demo-coffee", "coffee-cup", 10)
	if err != nil {
		return fmt.Errorf("seed insert business: %w", err)
	}

	slog.Info("database seeded with demo business", "slug", "demo-coffee")
	return nil
}
