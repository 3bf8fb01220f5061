package database

import (
	"context"
	"fmt"
)

// schema is applied in order by Migrate. Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id            UUID PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		metadata      JSONB,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS profiles (
		id         UUID PRIMARY KEY,
		user_id    UUID NOT NULL UNIQUE REFERENCES accounts(id) ON DELETE CASCADE,
		first_name TEXT NOT NULL DEFAULT '',
		last_name  TEXT NOT NULL DEFAULT '',
		email      TEXT NOT NULL DEFAULT '',
		phone      TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS user_roles (
		id      UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
		role    TEXT NOT NULL CHECK (role IN ('renter', 'owner')),
		UNIQUE (user_id, role)
	)`,
	`CREATE TABLE IF NOT EXISTS properties (
		id                           UUID PRIMARY KEY,
		owner_id                     UUID NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
		title                        TEXT NOT NULL,
		property_type                TEXT NOT NULL,
		bedrooms                     INTEGER NOT NULL DEFAULT 1,
		bathrooms                    INTEGER NOT NULL DEFAULT 1,
		max_guests                   INTEGER NOT NULL DEFAULT 2,
		price_per_night              NUMERIC(12, 2) NOT NULL,
		currency                     TEXT NOT NULL DEFAULT 'USD',
		address                      TEXT NOT NULL,
		city                         TEXT NOT NULL,
		state                        TEXT,
		country                      TEXT NOT NULL,
		zipcode                      TEXT,
		description                  TEXT NOT NULL DEFAULT '',
		amenities                    TEXT[] NOT NULL DEFAULT '{}',
		nearby_shul                  TEXT,
		nearby_shul_distance         TEXT,
		nearby_kosher_shops          TEXT,
		nearby_kosher_shops_distance TEXT,
		nearby_mikva                 TEXT,
		nearby_mikva_distance        TEXT,
		kosher_kitchen               BOOLEAN NOT NULL DEFAULT FALSE,
		shabbos_friendly             BOOLEAN NOT NULL DEFAULT FALSE,
		status                       TEXT NOT NULL DEFAULT 'pending',
		created_at                   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at                   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_properties_status ON properties(status)`,
	`CREATE INDEX IF NOT EXISTS idx_properties_owner ON properties(owner_id)`,
	// is_main is deliberately not unique per property
	`CREATE TABLE IF NOT EXISTS property_images (
		id            UUID PRIMARY KEY,
		property_id   UUID NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
		image_url     TEXT NOT NULL,
		is_main       BOOLEAN NOT NULL DEFAULT FALSE,
		display_order INTEGER NOT NULL DEFAULT 0,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_property_images_property ON property_images(property_id, display_order)`,
	`CREATE TABLE IF NOT EXISTS admin_users (
		id            UUID PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		full_name     TEXT NOT NULL DEFAULT '',
		role          TEXT NOT NULL DEFAULT 'admin',
		activated     BOOLEAN NOT NULL DEFAULT FALSE,
		last_login_at TIMESTAMPTZ,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate creates any missing tables and indexes
func Migrate(ctx context.Context, db DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement %d: %w", i, err)
		}
	}
	return nil
}
