package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema is the idempotent DDL for the applications table.
const Schema = `
CREATE TABLE IF NOT EXISTS rti_applications (
	id                      UUID PRIMARY KEY,
	owner_id                UUID NOT NULL,
	applicant_name          TEXT NOT NULL,
	applicant_email         TEXT NOT NULL,
	applicant_phone         TEXT NOT NULL,
	applicant_address       TEXT NOT NULL,
	department              TEXT NOT NULL,
	pio_name                TEXT NOT NULL,
	pio_designation         TEXT NOT NULL,
	subject                 TEXT NOT NULL,
	content                 TEXT NOT NULL,
	language                TEXT NOT NULL DEFAULT 'English',
	status                  TEXT NOT NULL DEFAULT 'draft',
	submission_date         TIMESTAMPTZ,
	response_date           TIMESTAMPTZ,
	response                TEXT,
	appeal_status           TEXT,
	appeal_reason           TEXT,
	appeal_submission_date  TIMESTAMPTZ,
	created_at              TIMESTAMPTZ NOT NULL,
	updated_at              TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_rti_applications_owner_created
	ON rti_applications (owner_id, created_at DESC);
`

// Migrate applies Schema.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply rti schema: %w", err)
	}
	return nil
}
