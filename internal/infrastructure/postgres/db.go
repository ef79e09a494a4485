package postgres

import (
	"database/sql"
	"fmt"

	"github.com/craftline/backoffice/internal/config"

	_ "github.com/lib/pq"
)

// Open connects to postgres and verifies the connection.
func Open(cfg config.Database) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return db, nil
}
