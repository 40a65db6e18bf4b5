package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ecclesia-app/admin-gateway/internal/cache"
	"github.com/ecclesia-app/admin-gateway/internal/collection"
	"github.com/ecclesia-app/admin-gateway/internal/form"
	"github.com/ecclesia-app/admin-gateway/internal/models"
	"github.com/ecclesia-app/admin-gateway/internal/upstream"
	"github.com/ecclesia-app/admin-gateway/pkg/config"
)

// churchStore is the upstream surface the church service depends on.
type churchStore interface {
	ListByMission(ctx context.Context, missionID int64) ([]models.Church, error)
	Get(ctx context.Context, id int64) (*models.Church, error)
	Create(ctx context.Context, form *upstream.Form) (*models.Church, error)
	Update(ctx context.Context, id int64, form *upstream.Form) (*models.Church, error)
	Delete(ctx context.Context, id int64) error
}

// ChurchService drives the church pages. Churches list per mission rather
// than per church, so their snapshots are mission-scoped.
type ChurchService struct {
	churches churchStore
	cache    snapshotCache
	lists    config.ListConfig
	logger   *zap.Logger
}

// NewChurchService creates a church service.
func NewChurchService(churches churchStore, cache snapshotCache, lists config.ListConfig, logger *zap.Logger) *ChurchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChurchService{
		churches: churches,
		cache:    cache,
		lists:    lists,
		logger:   logger,
	}
}

// ChurchInput carries the fields of the church create/edit form.
type ChurchInput struct {
	Name    string
	City    string
	Address string
	Pastor  string
}

func (s *ChurchService) descriptor() collection.Descriptor[models.Church] {
	return collection.Descriptor[models.Church]{
		SearchFields: []func(models.Church) string{
			func(c models.Church) string { return c.Name },
			func(c models.Church) string { return c.City },
			func(c models.Church) string { return c.Pastor },
		},
		Filters: map[string]func(models.Church, string) bool{
			"city": func(c models.Church, v string) bool {
				return strings.EqualFold(c.City, v)
			},
		},
		Sorters: map[string]func(a, b models.Church) bool{
			"name": func(a, b models.Church) bool { return a.Name < b.Name },
			"city": func(a, b models.Church) bool { return a.City < b.City },
		},
		DefaultSort:     "name",
		DefaultPageSize: s.lists.DefaultPageSize,
		MaxPageSize:     s.lists.MaxPageSize,
	}
}

func (s *ChurchService) rules() []form.Rule {
	return []form.Rule{
		form.Required("name", "le nom de l'église est requis"),
		form.Required("city", "la ville est requise"),
		form.Required("pastor", "le pasteur est requis"),
	}
}

// List returns one page of a mission's churches.
func (s *ChurchService) List(ctx context.Context, missionID int64, q collection.Query, refresh bool) (collection.View[models.Church], error) {
	items, err := s.snapshot(ctx, missionID, refresh)
	if err != nil {
		return collection.View[models.Church]{}, err
	}
	return collection.Build(items, q, s.descriptor()), nil
}

// Filtered returns the full filtered church list for export.
func (s *ChurchService) Filtered(ctx context.Context, missionID int64, q collection.Query) ([]models.Church, error) {
	items, err := s.snapshot(ctx, missionID, false)
	if err != nil {
		return nil, err
	}
	return collection.Filter(items, q, s.descriptor()), nil
}

func (s *ChurchService) snapshot(ctx context.Context, missionID int64, refresh bool) ([]models.Church, error) {
	key := cache.MissionScopedKey("churches", missionID)
	return listSnapshot(ctx, s.cache, key, refresh, func(ctx context.Context) ([]models.Church, error) {
		return s.churches.ListByMission(ctx, missionID)
	})
}

// Get fetches one church.
func (s *ChurchService) Get(ctx context.Context, id int64) (*models.Church, error) {
	return s.churches.Get(ctx, id)
}

// Create validates the draft and performs the single upstream write.
func (s *ChurchService) Create(ctx context.Context, missionID int64, in ChurchInput) (*models.Church, error) {
	session := form.NewSession(form.ModeCreate, 0, s.rules(), 0)
	s.fill(session, missionID, in)

	var created *models.Church
	err := session.Submit(ctx, func(ctx context.Context, f *upstream.Form) error {
		church, err := s.churches.Create(ctx, f)
		if err != nil {
			return err
		}
		created = church
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, missionID)
	s.logger.Info("church created", zap.Int64("church_id", created.ID), zap.Int64("mission_id", missionID))
	return created, nil
}

// Update edits an existing church.
func (s *ChurchService) Update(ctx context.Context, id, missionID int64, in ChurchInput) (*models.Church, error) {
	session := form.NewSession(form.ModeEdit, id, s.rules(), 0)
	s.fill(session, missionID, in)

	var updated *models.Church
	err := session.Submit(ctx, func(ctx context.Context, f *upstream.Form) error {
		church, err := s.churches.Update(ctx, id, f)
		if err != nil {
			return err
		}
		updated = church
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, missionID)
	return updated, nil
}

func (s *ChurchService) fill(session *form.Session, missionID int64, in ChurchInput) {
	session.SetField("name", in.Name)
	session.SetField("city", in.City)
	session.SetField("address", in.Address)
	session.SetField("pastor", in.Pastor)
	session.SetField("mission_id", formatID(missionID))
}

// Delete removes a church.
func (s *ChurchService) Delete(ctx context.Context, id, missionID int64) error {
	if err := s.churches.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, missionID)
	return nil
}

func (s *ChurchService) invalidate(ctx context.Context, missionID int64) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, cache.MissionScopedKey("churches", missionID))
	}
}
