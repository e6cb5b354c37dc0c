package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"rtidesk/internal/audit"
	"rtidesk/internal/rti/metrics"
	"rtidesk/internal/rti/models"
	id "rtidesk/pkg/domain"
	dErrors "rtidesk/pkg/domain-errors"
	"rtidesk/pkg/platform/sentinel"
	"rtidesk/pkg/requestcontext"
)

// Store is the system of record for applications. Execute and ExecuteAny
// must run validate and mutate atomically with respect to other writers.
type Store interface {
	Create(ctx context.Context, app *models.Application) error
	ListByOwner(ctx context.Context, owner id.UserID) ([]*models.Application, error)
	FindByIDAndOwner(ctx context.Context, appID id.ApplicationID, owner id.UserID) (*models.Application, error)
	Execute(ctx context.Context, appID id.ApplicationID, owner id.UserID, validate func(*models.Application) error, mutate func(*models.Application) error) (*models.Application, error)
	ExecuteAny(ctx context.Context, appID id.ApplicationID, validate func(*models.Application) error, mutate func(*models.Application) error) (*models.Application, error)
	DeleteDraft(ctx context.Context, appID id.ApplicationID, owner id.UserID) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns the application lifecycle. Every owner-facing operation is
// scoped to the caller; records of other owners are reported as not found.
type Service struct {
	store          Store
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates the request and stores a new draft owned by owner.
func (s *Service) Create(ctx context.Context, owner id.UserID, req models.CreateRequest) (*models.Application, error) {
	defer s.observe("create", time.Now())
	if owner.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}

	fields, err := req.Fields()
	if err != nil {
		return nil, s.fail(ctx, "create", id.ApplicationID{}, err)
	}
	app, err := models.NewApplication(id.NewApplicationID(), owner, fields, requestcontext.Now(ctx))
	if err != nil {
		return nil, s.fail(ctx, "create", id.ApplicationID{}, err)
	}
	if err := s.store.Create(ctx, app); err != nil {
		return nil, s.fail(ctx, "create", app.ID, dErrors.Wrap(err, dErrors.CodeInternal, "Error creating RTI application"))
	}

	if s.metrics != nil {
		s.metrics.IncrementCreated()
	}
	s.emit(ctx, audit.Event{UserID: owner, ApplicationID: app.ID, Action: audit.ActionCreated, Status: string(app.Status)})
	return app, nil
}

// List returns the owner's applications, newest first. Each call re-queries the store.
func (s *Service) List(ctx context.Context, owner id.UserID) ([]*models.Application, error) {
	defer s.observe("list", time.Now())
	if owner.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	apps, err := s.store.ListByOwner(ctx, owner)
	if err != nil {
		return nil, s.fail(ctx, "list", id.ApplicationID{}, dErrors.Wrap(err, dErrors.CodeInternal, "Error fetching RTI applications"))
	}
	return apps, nil
}

func (s *Service) Get(ctx context.Context, appID id.ApplicationID, owner id.UserID) (*models.Application, error) {
	defer s.observe("get", time.Now())
	if owner.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	app, err := s.store.FindByIDAndOwner(ctx, appID, owner)
	if err != nil {
		return nil, s.fail(ctx, "get", appID, translate(err, "RTI application not found", "Error fetching RTI application"))
	}
	return app, nil
}

// Update applies patch while the application is a draft. The patch type only
// carries allow-listed fields; callers decode untrusted input with
// models.DecodePatch.
func (s *Service) Update(ctx context.Context, appID id.ApplicationID, owner id.UserID, patch models.Patch) (*models.Application, error) {
	if err := patch.Validate(); err != nil {
		return nil, s.fail(ctx, string(models.OpEdit), appID, err)
	}
	now := requestcontext.Now(ctx)
	app, err := s.transition(ctx, models.OpEdit, appID, owner, "RTI application not found or cannot be updated",
		func(a *models.Application) error {
			a.ApplyPatch(patch, now)
			return nil
		})
	if err != nil {
		return nil, err
	}
	s.emit(ctx, audit.Event{UserID: owner, ApplicationID: appID, Action: audit.ActionUpdated, Status: string(app.Status), Detail: joinKeys(patch.Keys())})
	return app, nil
}

// Submit moves a draft to submitted and stamps the submission date.
func (s *Service) Submit(ctx context.Context, appID id.ApplicationID, owner id.UserID) (*models.Application, error) {
	now := requestcontext.Now(ctx)
	app, err := s.transition(ctx, models.OpSubmit, appID, owner, "RTI application not found or cannot be submitted",
		func(a *models.Application) error {
			a.ApplySubmit(now)
			return nil
		})
	if err != nil {
		return nil, err
	}
	s.emit(ctx, audit.Event{UserID: owner, ApplicationID: appID, Action: audit.ActionSubmitted, Status: string(app.Status)})
	return app, nil
}

// FileAppeal appeals a responded or rejected application.
func (s *Service) FileAppeal(ctx context.Context, appID id.ApplicationID, owner id.UserID, reason string) (*models.Application, error) {
	req := models.AppealRequest{Reason: reason}
	if err := req.Validate(); err != nil {
		return nil, s.fail(ctx, string(models.OpAppeal), appID, err)
	}
	now := requestcontext.Now(ctx)
	app, err := s.transition(ctx, models.OpAppeal, appID, owner, "RTI application not found or cannot be appealed",
		func(a *models.Application) error {
			a.ApplyAppeal(req.Reason, now)
			return nil
		})
	if err != nil {
		return nil, err
	}
	s.emit(ctx, audit.Event{UserID: owner, ApplicationID: appID, Action: audit.ActionAppealed, Status: string(app.Status), Detail: req.Reason})
	return app, nil
}

// Delete removes a draft.
func (s *Service) Delete(ctx context.Context, appID id.ApplicationID, owner id.UserID) error {
	op := string(models.OpDelete)
	defer s.observe(op, time.Now())
	if owner.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if err := s.store.DeleteDraft(ctx, appID, owner); err != nil {
		err = translate(err, "RTI application not found or cannot be deleted", "Error deleting RTI application")
		s.recordTransition(op, err)
		return s.fail(ctx, op, appID, err)
	}
	s.recordTransition(op, nil)
	s.emit(ctx, audit.Event{UserID: owner, ApplicationID: appID, Action: audit.ActionDeleted})
	return nil
}

// RecordOutcome is the administrative path that moves a submitted application
// into review or records the authority's reply. It is not owner-scoped.
func (s *Service) RecordOutcome(ctx context.Context, appID id.ApplicationID, outcome models.Outcome, actor string) (*models.Application, error) {
	outcome = outcome.Normalize()
	op, err := outcome.Operation()
	if err != nil {
		return nil, s.fail(ctx, "record_outcome", appID, err)
	}
	defer s.observe(string(op), time.Now())

	now := requestcontext.Now(ctx)
	app, err := s.store.ExecuteAny(ctx, appID,
		func(a *models.Application) error { return a.CanApply(op) },
		func(a *models.Application) error { return a.ApplyOutcome(op, outcome.Response, now) })
	if err != nil {
		err = translate(err, "RTI application not found or cannot be moved to "+string(outcome.Status), "Error recording RTI outcome")
	}
	s.recordTransition(string(op), err)
	if err != nil {
		return nil, s.fail(ctx, string(op), appID, err)
	}
	s.emit(ctx, audit.Event{UserID: app.Owner, ApplicationID: appID, Action: audit.ActionOutcomeRecorded, Status: string(app.Status), ActorID: actor})
	return app, nil
}

// transition runs an owner-scoped, table-checked change through Store.Execute.
func (s *Service) transition(ctx context.Context, op models.Operation, appID id.ApplicationID, owner id.UserID, failMessage string, mutate func(*models.Application) error) (*models.Application, error) {
	defer s.observe(string(op), time.Now())
	if owner.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	app, err := s.store.Execute(ctx, appID, owner,
		func(a *models.Application) error { return a.CanApply(op) },
		mutate)
	if err != nil {
		err = translate(err, failMessage, "Error updating RTI application")
	}
	s.recordTransition(string(op), err)
	if err != nil {
		return nil, s.fail(ctx, string(op), appID, err)
	}
	return app, nil
}

// translate maps store sentinels and table rejections onto domain errors.
// Not-found and invalid-state keep distinct codes but share one message.
func translate(err error, notFoundMessage, internalMessage string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, notFoundMessage)
	case errors.Is(err, sentinel.ErrInvalidState), dErrors.HasCode(err, dErrors.CodeInvalidState):
		return dErrors.Wrap(err, dErrors.CodeInvalidState, notFoundMessage)
	case dErrors.HasCode(err, dErrors.CodeValidation):
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, internalMessage)
	}
}
