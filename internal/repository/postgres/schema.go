// Package postgres implements the persistence interfaces against
// PostgreSQL using database/sql and lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS catches (
	id         TEXT PRIMARY KEY,
	fish_type  TEXT NOT NULL,
	pounds     DOUBLE PRECISION NOT NULL,
	owner_name TEXT NOT NULL DEFAULT '',
	logged_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS buyers (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	phone          TEXT NOT NULL,
	carrier        TEXT NOT NULL,
	preferred_fish TEXT[] NOT NULL DEFAULT '{}',
	created_at     TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS price_quotes (
	fish_type    TEXT NOT NULL,
	quote_day    DATE NOT NULL,
	price_per_lb DOUBLE PRECISION NOT NULL,
	source       TEXT NOT NULL,
	cannery_name TEXT NOT NULL,
	fetched_at   TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (fish_type, quote_day)
);

CREATE TABLE IF NOT EXISTS message_drafts (
	id           TEXT PRIMARY KEY,
	catch_id     TEXT NOT NULL REFERENCES catches(id),
	buyer_id     TEXT NOT NULL REFERENCES buyers(id),
	buyer_name   TEXT NOT NULL,
	fish_type    TEXT NOT NULL,
	pounds       DOUBLE PRECISION NOT NULL,
	price_per_lb DOUBLE PRECISION NOT NULL,
	message_text TEXT NOT NULL,
	status       TEXT NOT NULL,
	violations   JSONB NOT NULL DEFAULT '[]',
	created_at   TIMESTAMPTZ NOT NULL,
	sent_at      TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_drafts_catch ON message_drafts(catch_id);
CREATE INDEX IF NOT EXISTS idx_drafts_status ON message_drafts(status);
`

// Open connects to Postgres and verifies the connection.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the tables if they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}
