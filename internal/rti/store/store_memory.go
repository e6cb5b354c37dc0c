package store

import (
	"context"
	"sort"
	"sync"

	"rtidesk/internal/rti/models"
	id "rtidesk/pkg/domain"
	"rtidesk/pkg/platform/sentinel"
)

// InMemoryStore keeps applications in a map guarded by a single mutex. Execute
// holds the write lock across validate and mutate, so transitions are atomic.
type InMemoryStore struct {
	mu   sync.RWMutex
	apps map[id.ApplicationID]*models.Application
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{apps: make(map[id.ApplicationID]*models.Application)}
}

func (s *InMemoryStore) Create(_ context.Context, app *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.apps[app.ID]; exists {
		return sentinel.ErrConflict
	}
	s.apps[app.ID] = app.Clone()
	return nil
}

func (s *InMemoryStore) ListByOwner(_ context.Context, owner id.UserID) ([]*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Application, 0)
	for _, app := range s.apps {
		if app.Owner == owner {
			out = append(out, app.Clone())
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *InMemoryStore) FindByIDAndOwner(_ context.Context, appID id.ApplicationID, owner id.UserID) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.apps[appID]
	if !ok || app.Owner != owner {
		return nil, sentinel.ErrNotFound
	}
	return app.Clone(), nil
}

// Execute runs validate then mutate on a copy of the owner's record and stores
// the result only when both succeed.
func (s *InMemoryStore) Execute(_ context.Context, appID id.ApplicationID, owner id.UserID, validate func(*models.Application) error, mutate func(*models.Application) error) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[appID]
	if !ok || app.Owner != owner {
		return nil, sentinel.ErrNotFound
	}
	return s.apply(app, validate, mutate)
}

// ExecuteAny is Execute without the owner predicate, for administrative use.
func (s *InMemoryStore) ExecuteAny(_ context.Context, appID id.ApplicationID, validate func(*models.Application) error, mutate func(*models.Application) error) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[appID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.apply(app, validate, mutate)
}

func (s *InMemoryStore) apply(app *models.Application, validate func(*models.Application) error, mutate func(*models.Application) error) (*models.Application, error) {
	working := app.Clone()
	if err := validate(working); err != nil {
		return nil, err
	}
	if err := mutate(working); err != nil {
		return nil, err
	}
	s.apps[working.ID] = working
	return working.Clone(), nil
}

// DeleteDraft removes the owner's record only while it is a draft.
func (s *InMemoryStore) DeleteDraft(_ context.Context, appID id.ApplicationID, owner id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[appID]
	if !ok || app.Owner != owner {
		return sentinel.ErrNotFound
	}
	if !models.Allows(app.Status, models.OpDelete) {
		return sentinel.ErrInvalidState
	}
	delete(s.apps, appID)
	return nil
}

func sortNewestFirst(apps []*models.Application) {
	sort.SliceStable(apps, func(i, j int) bool {
		if apps[i].CreatedAt.Equal(apps[j].CreatedAt) {
			return apps[i].ID.String() > apps[j].ID.String()
		}
		return apps[i].CreatedAt.After(apps[j].CreatedAt)
	})
}
