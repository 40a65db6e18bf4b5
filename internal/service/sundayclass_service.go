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

// sundayClassStore is the upstream surface the Sunday-school service depends on.
type sundayClassStore interface {
	ListByChurch(ctx context.Context, churchID int64) ([]models.SundayClass, error)
	Get(ctx context.Context, id int64) (*models.SundayClass, error)
	Create(ctx context.Context, form *upstream.Form) (*models.SundayClass, error)
	Update(ctx context.Context, id int64, form *upstream.Form) (*models.SundayClass, error)
	Delete(ctx context.Context, id int64) error
}

// SundayClassService drives the Sunday-school pages.
type SundayClassService struct {
	classes sundayClassStore
	cache   snapshotCache
	lists   config.ListConfig
	logger  *zap.Logger
}

// NewSundayClassService creates a Sunday-school service.
func NewSundayClassService(classes sundayClassStore, cache snapshotCache, lists config.ListConfig, logger *zap.Logger) *SundayClassService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SundayClassService{
		classes: classes,
		cache:   cache,
		lists:   lists,
		logger:  logger,
	}
}

// SundayClassInput carries the fields of the class create/edit form.
type SundayClassInput struct {
	Name     string
	Teacher  string
	AgeGroup string
	Room     string
	Schedule string
}

func (s *SundayClassService) descriptor() collection.Descriptor[models.SundayClass] {
	return collection.Descriptor[models.SundayClass]{
		SearchFields: []func(models.SundayClass) string{
			func(c models.SundayClass) string { return c.Name },
			func(c models.SundayClass) string { return c.Teacher },
			func(c models.SundayClass) string { return c.Room },
		},
		Filters: map[string]func(models.SundayClass, string) bool{
			"age_group": func(c models.SundayClass, v string) bool {
				return strings.EqualFold(string(c.AgeGroup), v)
			},
		},
		Sorters: map[string]func(a, b models.SundayClass) bool{
			"name":    func(a, b models.SundayClass) bool { return a.Name < b.Name },
			"teacher": func(a, b models.SundayClass) bool { return a.Teacher < b.Teacher },
		},
		DefaultSort:     "name",
		DefaultPageSize: s.lists.DefaultPageSize,
		MaxPageSize:     s.lists.MaxPageSize,
	}
}

func (s *SundayClassService) rules() []form.Rule {
	return []form.Rule{
		form.Required("name", "le nom de la classe est requis"),
		form.Required("teacher", "le moniteur est requis"),
		form.Required("age_group", "la tranche d'âge est requise"),
		form.OneOf("age_group", []string{
			string(models.AgeGroupChild),
			string(models.AgeGroupAdolescent),
			string(models.AgeGroupYouth),
			string(models.AgeGroupAdult),
		}, "tranche d'âge inconnue"),
	}
}

// List returns one page of the church's Sunday classes.
func (s *SundayClassService) List(ctx context.Context, churchID int64, q collection.Query, refresh bool) (collection.View[models.SundayClass], error) {
	items, err := s.snapshot(ctx, churchID, refresh)
	if err != nil {
		return collection.View[models.SundayClass]{}, err
	}
	return collection.Build(items, q, s.descriptor()), nil
}

// Filtered returns the full filtered class list for export.
func (s *SundayClassService) Filtered(ctx context.Context, churchID int64, q collection.Query) ([]models.SundayClass, error) {
	items, err := s.snapshot(ctx, churchID, false)
	if err != nil {
		return nil, err
	}
	return collection.Filter(items, q, s.descriptor()), nil
}

func (s *SundayClassService) snapshot(ctx context.Context, churchID int64, refresh bool) ([]models.SundayClass, error) {
	key := cache.ListKey("sunday-classes", churchID)
	return listSnapshot(ctx, s.cache, key, refresh, func(ctx context.Context) ([]models.SundayClass, error) {
		return s.classes.ListByChurch(ctx, churchID)
	})
}

// Get fetches one Sunday class.
func (s *SundayClassService) Get(ctx context.Context, id int64) (*models.SundayClass, error) {
	return s.classes.Get(ctx, id)
}

// Create validates the draft and performs the single upstream write.
func (s *SundayClassService) Create(ctx context.Context, churchID int64, in SundayClassInput) (*models.SundayClass, error) {
	session := form.NewSession(form.ModeCreate, 0, s.rules(), 0)
	s.fill(session, churchID, in)

	var created *models.SundayClass
	err := session.Submit(ctx, func(ctx context.Context, f *upstream.Form) error {
		class, err := s.classes.Create(ctx, f)
		if err != nil {
			return err
		}
		created = class
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, churchID)
	return created, nil
}

// Update edits an existing class.
func (s *SundayClassService) Update(ctx context.Context, id, churchID int64, in SundayClassInput) (*models.SundayClass, error) {
	session := form.NewSession(form.ModeEdit, id, s.rules(), 0)
	s.fill(session, churchID, in)

	var updated *models.SundayClass
	err := session.Submit(ctx, func(ctx context.Context, f *upstream.Form) error {
		class, err := s.classes.Update(ctx, id, f)
		if err != nil {
			return err
		}
		updated = class
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, churchID)
	return updated, nil
}

func (s *SundayClassService) fill(session *form.Session, churchID int64, in SundayClassInput) {
	session.SetField("name", in.Name)
	session.SetField("teacher", in.Teacher)
	session.SetField("age_group", in.AgeGroup)
	session.SetField("room", in.Room)
	session.SetField("schedule", in.Schedule)
	session.SetField("church_id", formatID(churchID))
}

// Delete removes a Sunday class.
func (s *SundayClassService) Delete(ctx context.Context, id, churchID int64) error {
	if err := s.classes.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, churchID)
	return nil
}

func (s *SundayClassService) invalidate(ctx context.Context, churchID int64) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, cache.ListKey("sunday-classes", churchID))
	}
}
