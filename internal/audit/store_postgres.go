package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "rtidesk/pkg/domain"
	txcontext "rtidesk/pkg/platform/tx"
)

// Schema creates the append-only lifecycle event table.
const Schema = `
CREATE TABLE IF NOT EXISTS rti_audit_events (
	id             UUID PRIMARY KEY,
	user_id        UUID NOT NULL,
	application_id UUID NOT NULL,
	action         TEXT NOT NULL,
	status         TEXT NOT NULL DEFAULT '',
	detail         TEXT NOT NULL DEFAULT '',
	request_id     TEXT NOT NULL DEFAULT '',
	actor_id       TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_rti_audit_events_user_created
	ON rti_audit_events (user_id, created_at);
`

// Migrate applies Schema.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply audit schema: %w", err)
	}
	return nil
}

// PostgresStore keeps lifecycle events in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Writes join the caller's transaction when ctx carries one.
func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO rti_audit_events (id, user_id, application_id, action, status, detail, request_id, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		uuid.New(),
		uuid.UUID(event.UserID),
		uuid.UUID(event.ApplicationID),
		string(event.Action),
		event.Status,
		event.Detail,
		event.RequestID,
		event.ActorID,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByUser returns the user's events oldest first.
func (s *PostgresStore) ListByUser(ctx context.Context, userID id.UserID) ([]Event, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT user_id, application_id, action, status, detail, request_id, actor_id, created_at
		FROM rti_audit_events
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC
	`, uuid.UUID(userID))
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var (
			e         Event
			user, app uuid.UUID
			action    string
		)
		if err := rows.Scan(&user, &app, &action, &e.Status, &e.Detail, &e.RequestID, &e.ActorID, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.UserID = id.UserID(user)
		e.ApplicationID = id.ApplicationID(app)
		e.Action = Action(action)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
