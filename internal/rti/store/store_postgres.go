package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"rtidesk/internal/rti/models"
	id "rtidesk/pkg/domain"
	"rtidesk/pkg/platform/sentinel"
	txcontext "rtidesk/pkg/platform/tx"
)

// PostgresStore persists applications in PostgreSQL. Transitions lock the row
// with SELECT ... FOR UPDATE and write back with a status guard.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// executor uses the transaction carried in ctx when one is present.
func (s *PostgresStore) executor(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const selectColumns = `id, owner_id, applicant_name, applicant_email, applicant_phone, applicant_address,
	department, pio_name, pio_designation, subject, content, language, status,
	submission_date, response_date, response, appeal_status, appeal_reason, appeal_submission_date,
	created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, app *models.Application) error {
	_, err := s.executor(ctx).ExecContext(ctx, `
		INSERT INTO rti_applications (`+selectColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`, insertArgs(app)...)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert rti application: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, owner id.UserID) ([]*models.Application, error) {
	rows, err := s.executor(ctx).QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM rti_applications
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
	`, uuid.UUID(owner))
	if err != nil {
		return nil, fmt.Errorf("list rti applications: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Application, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rti applications: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) FindByIDAndOwner(ctx context.Context, appID id.ApplicationID, owner id.UserID) (*models.Application, error) {
	row := s.executor(ctx).QueryRowContext(ctx, `
		SELECT `+selectColumns+`
		FROM rti_applications
		WHERE id = $1 AND owner_id = $2
	`, uuid.UUID(appID), uuid.UUID(owner))
	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return app, nil
}

// Execute locks the owner's row, runs validate and mutate, and writes the
// result back in the same transaction.
func (s *PostgresStore) Execute(ctx context.Context, appID id.ApplicationID, owner id.UserID, validate func(*models.Application) error, mutate func(*models.Application) error) (*models.Application, error) {
	return s.execute(ctx, `
		SELECT `+selectColumns+`
		FROM rti_applications
		WHERE id = $1 AND owner_id = $2
		FOR UPDATE
	`, []any{uuid.UUID(appID), uuid.UUID(owner)}, validate, mutate)
}

// ExecuteAny is Execute without the owner predicate.
func (s *PostgresStore) ExecuteAny(ctx context.Context, appID id.ApplicationID, validate func(*models.Application) error, mutate func(*models.Application) error) (*models.Application, error) {
	return s.execute(ctx, `
		SELECT `+selectColumns+`
		FROM rti_applications
		WHERE id = $1
		FOR UPDATE
	`, []any{uuid.UUID(appID)}, validate, mutate)
}

func (s *PostgresStore) execute(ctx context.Context, query string, args []any, validate func(*models.Application) error, mutate func(*models.Application) error) (*models.Application, error) {
	var result *models.Application
	err := s.RunInTx(ctx, func(ctx context.Context) error {
		exec := s.executor(ctx)
		app, err := scanApplication(exec.QueryRowContext(ctx, query, args...))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinel.ErrNotFound
			}
			return err
		}
		previous := app.Status
		if err := validate(app); err != nil {
			return err
		}
		if err := mutate(app); err != nil {
			return err
		}
		if err := s.update(ctx, app, previous); err != nil {
			return err
		}
		result = app
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *PostgresStore) update(ctx context.Context, app *models.Application, previous models.Status) error {
	appealStatus, appealReason, appealDate := appealColumns(app.AppealDetails)
	res, err := s.executor(ctx).ExecContext(ctx, `
		UPDATE rti_applications SET
			department = $3, pio_name = $4, pio_designation = $5,
			subject = $6, content = $7, language = $8, status = $9,
			submission_date = $10, response_date = $11, response = $12,
			appeal_status = $13, appeal_reason = $14, appeal_submission_date = $15,
			updated_at = $16
		WHERE id = $1 AND status = $2
	`, uuid.UUID(app.ID), string(previous),
		app.Department, app.PIO.Name, app.PIO.Designation,
		app.Subject, app.Content, string(app.Language), string(app.Status),
		nullTime(app.SubmissionDate), nullTime(app.ResponseDate), nullString(app.Response),
		appealStatus, appealReason, appealDate,
		app.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update rti application: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update rti application: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrInvalidState
	}
	return nil
}

// DeleteDraft issues a single guarded delete and, when nothing matched,
// checks whether the row exists to tell not-found from invalid state.
func (s *PostgresStore) DeleteDraft(ctx context.Context, appID id.ApplicationID, owner id.UserID) error {
	exec := s.executor(ctx)
	res, err := exec.ExecContext(ctx, `
		DELETE FROM rti_applications
		WHERE id = $1 AND owner_id = $2 AND status = ANY($3)
	`, uuid.UUID(appID), uuid.UUID(owner), pq.Array(statusesFor(models.OpDelete)))
	if err != nil {
		return fmt.Errorf("delete rti application: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete rti application: %w", err)
	}
	if affected == 1 {
		return nil
	}
	var exists bool
	err = exec.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM rti_applications WHERE id = $1 AND owner_id = $2)
	`, uuid.UUID(appID), uuid.UUID(owner)).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check rti application: %w", err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	return sentinel.ErrInvalidState
}

// RunInTx runs fn inside a transaction, reusing one already in ctx.
func (s *PostgresStore) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txcontext.From(ctx); ok {
		return fn(ctx)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (*models.Application, error) {
	var (
		app                                     models.Application
		appID, owner                            uuid.UUID
		language, status                        string
		submissionDate, responseDate, appealsAt sql.NullTime
		response, appealStatus, appealReason    sql.NullString
	)
	err := row.Scan(
		&appID, &owner,
		&app.Applicant.Name, &app.Applicant.Email, &app.Applicant.Phone, &app.Applicant.Address,
		&app.Department, &app.PIO.Name, &app.PIO.Designation,
		&app.Subject, &app.Content, &language, &status,
		&submissionDate, &responseDate, &response,
		&appealStatus, &appealReason, &appealsAt,
		&app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan rti application: %w", err)
	}
	app.ID = id.ApplicationID(appID)
	app.Owner = id.UserID(owner)
	app.Language = id.Language(language)
	app.Status = models.Status(status)
	if !app.Status.IsValid() {
		return nil, fmt.Errorf("scan rti application %s: unknown status %q", appID, status)
	}
	app.SubmissionDate = timePtr(submissionDate)
	app.ResponseDate = timePtr(responseDate)
	if response.Valid {
		r := response.String
		app.Response = &r
	}
	if appealStatus.Valid {
		app.AppealDetails = &models.AppealDetails{
			Status:         models.AppealStatus(appealStatus.String),
			Reason:         appealReason.String,
			SubmissionDate: timePtr(appealsAt),
		}
	}
	return &app, nil
}

func insertArgs(app *models.Application) []any {
	appealStatus, appealReason, appealDate := appealColumns(app.AppealDetails)
	return []any{
		uuid.UUID(app.ID), uuid.UUID(app.Owner),
		app.Applicant.Name, app.Applicant.Email, app.Applicant.Phone, app.Applicant.Address,
		app.Department, app.PIO.Name, app.PIO.Designation,
		app.Subject, app.Content, string(app.Language), string(app.Status),
		nullTime(app.SubmissionDate), nullTime(app.ResponseDate), nullString(app.Response),
		appealStatus, appealReason, appealDate,
		app.CreatedAt, app.UpdatedAt,
	}
}

func appealColumns(d *models.AppealDetails) (sql.NullString, sql.NullString, sql.NullTime) {
	if d == nil {
		return sql.NullString{}, sql.NullString{}, sql.NullTime{}
	}
	return sql.NullString{String: string(d.Status), Valid: true},
		sql.NullString{String: d.Reason, Valid: true},
		nullTime(d.SubmissionDate)
}
