//go:build integration

package store_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"rtidesk/internal/rti/models"
	"rtidesk/internal/rti/store"
	id "rtidesk/pkg/domain"
	dErrors "rtidesk/pkg/domain-errors"
	"rtidesk/pkg/platform/sentinel"
	"rtidesk/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
	owner    id.UserID
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.Require().NoError(store.Migrate(context.Background(), s.postgres.DB))
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "rti_applications"))
	s.owner = id.UserID(uuid.New())
}

func (s *PostgresStoreSuite) newDraft(owner id.UserID, createdAt time.Time) *models.Application {
	app, err := models.NewApplication(id.NewApplicationID(), owner, models.Fields{
		Applicant:  models.Applicant{Name: "Asha", Email: "asha@example.com", Phone: "9999999999", Address: "Pune"},
		Department: "Public Works",
		PIO:        models.PIO{Name: "R. Kumar", Designation: "PIO"},
		Subject:    "Road repair expenditure",
		Content:    "Please provide the expenditure details.",
		Language:   id.LanguageHindi,
	}, createdAt.UTC().Truncate(time.Microsecond))
	s.Require().NoError(err)
	return app
}

func submit(a *models.Application) error {
	a.ApplySubmit(time.Now().UTC().Truncate(time.Microsecond))
	return nil
}

func canSubmit(a *models.Application) error { return a.CanApply(models.OpSubmit) }

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	app := s.newDraft(s.owner, time.Now())
	s.Require().NoError(s.store.Create(ctx, app))

	found, err := s.store.FindByIDAndOwner(ctx, app.ID, s.owner)
	s.Require().NoError(err)
	s.Equal(app.ID, found.ID)
	s.Equal(app.Applicant, found.Applicant)
	s.Equal(id.LanguageHindi, found.Language)
	s.Equal(models.StatusDraft, found.Status)
	s.Nil(found.SubmissionDate)
	s.Nil(found.AppealDetails)

	_, err = s.store.FindByIDAndOwner(ctx, app.ID, id.UserID(uuid.New()))
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.ErrorIs(s.store.Create(ctx, app), sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestListNewestFirst() {
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)
	older := s.newDraft(s.owner, base)
	newer := s.newDraft(s.owner, base.Add(time.Minute))
	s.Require().NoError(s.store.Create(ctx, older))
	s.Require().NoError(s.store.Create(ctx, newer))
	s.Require().NoError(s.store.Create(ctx, s.newDraft(id.UserID(uuid.New()), base)))

	list, err := s.store.ListByOwner(ctx, s.owner)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(newer.ID, list[0].ID)
	s.Equal(older.ID, list[1].ID)
}

func (s *PostgresStoreSuite) TestAppealRoundTrip() {
	ctx := context.Background()
	app := s.newDraft(s.owner, time.Now())
	s.Require().NoError(s.store.Create(ctx, app))
	_, err := s.store.Execute(ctx, app.ID, s.owner, canSubmit, submit)
	s.Require().NoError(err)

	_, err = s.store.ExecuteAny(ctx, app.ID, func(*models.Application) error { return nil }, func(a *models.Application) error {
		return a.ApplyOutcome(models.OpReject, "Information exempt", time.Now())
	})
	s.Require().NoError(err)

	appealed, err := s.store.Execute(ctx, app.ID, s.owner,
		func(a *models.Application) error { return a.CanApply(models.OpAppeal) },
		func(a *models.Application) error {
			a.ApplyAppeal("Exemption does not apply", time.Now())
			return nil
		})
	s.Require().NoError(err)
	s.Equal(models.StatusAppealed, appealed.Status)

	found, err := s.store.FindByIDAndOwner(ctx, app.ID, s.owner)
	s.Require().NoError(err)
	s.Require().NotNil(found.AppealDetails)
	s.Equal(models.AppealStatusPending, found.AppealDetails.Status)
	s.Equal("Exemption does not apply", found.AppealDetails.Reason)
	s.Require().NotNil(found.Response)
	s.Equal("Information exempt", *found.Response)
	s.NotNil(found.ResponseDate)
}

func (s *PostgresStoreSuite) TestDeleteDraft() {
	ctx := context.Background()
	draft := s.newDraft(s.owner, time.Now())
	submitted := s.newDraft(s.owner, time.Now())
	s.Require().NoError(s.store.Create(ctx, draft))
	s.Require().NoError(s.store.Create(ctx, submitted))
	_, err := s.store.Execute(ctx, submitted.ID, s.owner, canSubmit, submit)
	s.Require().NoError(err)

	s.ErrorIs(s.store.DeleteDraft(ctx, submitted.ID, s.owner), sentinel.ErrInvalidState)
	s.ErrorIs(s.store.DeleteDraft(ctx, draft.ID, id.UserID(uuid.New())), sentinel.ErrNotFound)
	s.Require().NoError(s.store.DeleteDraft(ctx, draft.ID, s.owner))
	s.ErrorIs(s.store.DeleteDraft(ctx, draft.ID, s.owner), sentinel.ErrNotFound)
}

// TestConcurrentSubmit verifies row locking lets exactly one submit win.
func (s *PostgresStoreSuite) TestConcurrentSubmit() {
	ctx := context.Background()
	app := s.newDraft(s.owner, time.Now())
	s.Require().NoError(s.store.Create(ctx, app))

	const goroutines = 20
	var wg sync.WaitGroup
	var wins, losses atomic.Int32
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.Execute(ctx, app.ID, s.owner, canSubmit, submit)
			if err == nil {
				wins.Add(1)
			} else if dErrors.HasCode(err, dErrors.CodeInvalidState) {
				losses.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), wins.Load())
	s.Equal(int32(goroutines-1), losses.Load())
}
