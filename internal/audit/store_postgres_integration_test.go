//go:build integration

package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"rtidesk/internal/audit"
	id "rtidesk/pkg/domain"
	"rtidesk/pkg/testutil/containers"
)

type PostgresAuditSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *audit.PostgresStore
}

func TestPostgresAuditSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresAuditSuite))
}

func (s *PostgresAuditSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.Require().NoError(audit.Migrate(context.Background(), s.postgres.DB))
	s.store = audit.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresAuditSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "rti_audit_events"))
}

func (s *PostgresAuditSuite) TestAppendAndListByUser() {
	ctx := context.Background()
	owner := id.UserID(uuid.New())
	other := id.UserID(uuid.New())
	appID := id.NewApplicationID()
	base := time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)

	s.Require().NoError(s.store.Append(ctx, audit.Event{
		Timestamp: base, UserID: owner, ApplicationID: appID, Action: audit.ActionCreated, Status: "draft", RequestID: "req-1",
	}))
	s.Require().NoError(s.store.Append(ctx, audit.Event{
		Timestamp: base.Add(time.Minute), UserID: owner, ApplicationID: appID, Action: audit.ActionOutcomeRecorded, Status: "rejected", ActorID: "admin:10.0.0.1",
	}))
	s.Require().NoError(s.store.Append(ctx, audit.Event{
		Timestamp: base, UserID: other, ApplicationID: id.NewApplicationID(), Action: audit.ActionCreated,
	}))

	events, err := s.store.ListByUser(ctx, owner)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(audit.ActionCreated, events[0].Action)
	s.Equal("req-1", events[0].RequestID)
	s.Equal(appID, events[0].ApplicationID)
	s.True(base.Equal(events[0].Timestamp))
	s.Equal(audit.ActionOutcomeRecorded, events[1].Action)
	s.Equal("admin:10.0.0.1", events[1].ActorID)

	none, err := s.store.ListByUser(ctx, id.UserID(uuid.New()))
	s.Require().NoError(err)
	s.Empty(none)
}
