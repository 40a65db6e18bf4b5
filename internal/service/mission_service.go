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

// missionStore is the upstream surface the mission service depends on.
type missionStore interface {
	List(ctx context.Context) ([]models.Mission, error)
	Get(ctx context.Context, id int64) (*models.Mission, error)
	Create(ctx context.Context, form *upstream.Form) (*models.Mission, error)
	Update(ctx context.Context, id int64, form *upstream.Form) (*models.Mission, error)
	Delete(ctx context.Context, id int64) error
}

// MissionService drives the mission pages. Missions are the one unscoped
// list; a single snapshot serves every dashboard user.
type MissionService struct {
	missions missionStore
	cache    snapshotCache
	lists    config.ListConfig
	logger   *zap.Logger
}

// NewMissionService creates a mission service.
func NewMissionService(missions missionStore, cache snapshotCache, lists config.ListConfig, logger *zap.Logger) *MissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MissionService{
		missions: missions,
		cache:    cache,
		lists:    lists,
		logger:   logger,
	}
}

// MissionInput carries the fields of the mission create/edit form.
type MissionInput struct {
	Name      string
	President string
	Region    string
}

func (s *MissionService) descriptor() collection.Descriptor[models.Mission] {
	return collection.Descriptor[models.Mission]{
		SearchFields: []func(models.Mission) string{
			func(m models.Mission) string { return m.Name },
			func(m models.Mission) string { return m.President },
			func(m models.Mission) string { return m.Region },
		},
		Filters: map[string]func(models.Mission, string) bool{
			"region": func(m models.Mission, v string) bool {
				return strings.EqualFold(m.Region, v)
			},
		},
		Sorters: map[string]func(a, b models.Mission) bool{
			"name":   func(a, b models.Mission) bool { return a.Name < b.Name },
			"region": func(a, b models.Mission) bool { return a.Region < b.Region },
		},
		DefaultSort:     "name",
		DefaultPageSize: s.lists.DefaultPageSize,
		MaxPageSize:     s.lists.MaxPageSize,
	}
}

func (s *MissionService) rules() []form.Rule {
	return []form.Rule{
		form.Required("name", "le nom de la mission est requis"),
		form.Required("president", "le président est requis"),
	}
}

// List returns one page of the mission directory.
func (s *MissionService) List(ctx context.Context, q collection.Query, refresh bool) (collection.View[models.Mission], error) {
	items, err := s.snapshot(ctx, refresh)
	if err != nil {
		return collection.View[models.Mission]{}, err
	}
	return collection.Build(items, q, s.descriptor()), nil
}

// Filtered returns the full filtered directory for export.
func (s *MissionService) Filtered(ctx context.Context, q collection.Query) ([]models.Mission, error) {
	items, err := s.snapshot(ctx, false)
	if err != nil {
		return nil, err
	}
	return collection.Filter(items, q, s.descriptor()), nil
}

func (s *MissionService) snapshot(ctx context.Context, refresh bool) ([]models.Mission, error) {
	key := cache.AllKey("missions")
	return listSnapshot(ctx, s.cache, key, refresh, func(ctx context.Context) ([]models.Mission, error) {
		return s.missions.List(ctx)
	})
}

// Get fetches one mission.
func (s *MissionService) Get(ctx context.Context, id int64) (*models.Mission, error) {
	return s.missions.Get(ctx, id)
}

// Create validates the draft and performs the single upstream write.
func (s *MissionService) Create(ctx context.Context, in MissionInput) (*models.Mission, error) {
	session := form.NewSession(form.ModeCreate, 0, s.rules(), 0)
	s.fill(session, in)

	var created *models.Mission
	err := session.Submit(ctx, func(ctx context.Context, f *upstream.Form) error {
		mission, err := s.missions.Create(ctx, f)
		if err != nil {
			return err
		}
		created = mission
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return created, nil
}

// Update edits an existing mission.
func (s *MissionService) Update(ctx context.Context, id int64, in MissionInput) (*models.Mission, error) {
	session := form.NewSession(form.ModeEdit, id, s.rules(), 0)
	s.fill(session, in)

	var updated *models.Mission
	err := session.Submit(ctx, func(ctx context.Context, f *upstream.Form) error {
		mission, err := s.missions.Update(ctx, id, f)
		if err != nil {
			return err
		}
		updated = mission
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return updated, nil
}

func (s *MissionService) fill(session *form.Session, in MissionInput) {
	session.SetField("name", in.Name)
	session.SetField("president", in.President)
	session.SetField("region", in.Region)
}

// Delete removes a mission.
func (s *MissionService) Delete(ctx context.Context, id int64) error {
	if err := s.missions.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *MissionService) invalidate(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, cache.AllKey("missions"))
	}
}
