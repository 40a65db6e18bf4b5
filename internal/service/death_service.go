package service

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/ecclesia-app/admin-gateway/internal/cache"
	"github.com/ecclesia-app/admin-gateway/internal/collection"
	"github.com/ecclesia-app/admin-gateway/internal/form"
	"github.com/ecclesia-app/admin-gateway/internal/models"
	"github.com/ecclesia-app/admin-gateway/internal/upstream"
	"github.com/ecclesia-app/admin-gateway/pkg/config"
	appErrors "github.com/ecclesia-app/admin-gateway/pkg/errors"
)

// deathStore is the upstream surface the death registry service depends on.
type deathStore interface {
	ListByChurch(ctx context.Context, churchID int64) ([]models.Death, error)
	Get(ctx context.Context, id int64) (*models.Death, error)
	Create(ctx context.Context, form *upstream.Form) (*models.Death, error)
	Update(ctx context.Context, id int64, form *upstream.Form) (*models.Death, error)
	Delete(ctx context.Context, id int64) error
}

// DeathService drives the death registry pages.
type DeathService struct {
	deaths  deathStore
	members memberReader
	cache   snapshotCache
	lists   config.ListConfig
	logger  *zap.Logger
}

// NewDeathService creates a death registry service.
func NewDeathService(deaths deathStore, members memberReader, cache snapshotCache, lists config.ListConfig, logger *zap.Logger) *DeathService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeathService{
		deaths:  deaths,
		members: members,
		cache:   cache,
		lists:   lists,
		logger:  logger,
	}
}

// DeathInput carries the fields of the death record form.
type DeathInput struct {
	MemberID int64
	Date     string
	Note     string
}

func (s *DeathService) descriptor() collection.Descriptor[models.Death] {
	return collection.Descriptor[models.Death]{
		SearchFields: []func(models.Death) string{
			func(d models.Death) string { return d.MemberName },
			func(d models.Death) string { return d.Note },
		},
		Filters: map[string]func(models.Death, string) bool{
			"year": func(d models.Death, v string) bool {
				year, err := strconv.Atoi(v)
				if err != nil {
					return false
				}
				return d.Date.Year() == year
			},
		},
		Sorters: map[string]func(a, b models.Death) bool{
			"date":   func(a, b models.Death) bool { return a.Date.Before(b.Date.Time) },
			"member": func(a, b models.Death) bool { return a.MemberName < b.MemberName },
		},
		DefaultSort:     "date",
		DefaultPageSize: s.lists.DefaultPageSize,
		MaxPageSize:     s.lists.MaxPageSize,
	}
}

func (s *DeathService) rules() []form.Rule {
	return []form.Rule{
		form.Required("member_id", "le membre est requis"),
		form.PositiveInt("member_id", "membre invalide"),
		form.Required("date", "la date est requise"),
		form.ValidDate("date", "date invalide"),
	}
}

// List returns one page of the church's death registry.
func (s *DeathService) List(ctx context.Context, churchID int64, q collection.Query, refresh bool) (collection.View[models.Death], error) {
	items, err := s.snapshot(ctx, churchID, refresh)
	if err != nil {
		return collection.View[models.Death]{}, err
	}
	return collection.Build(items, q, s.descriptor()), nil
}

// Filtered returns the full filtered registry for export.
func (s *DeathService) Filtered(ctx context.Context, churchID int64, q collection.Query) ([]models.Death, error) {
	items, err := s.snapshot(ctx, churchID, false)
	if err != nil {
		return nil, err
	}
	return collection.Filter(items, q, s.descriptor()), nil
}

func (s *DeathService) snapshot(ctx context.Context, churchID int64, refresh bool) ([]models.Death, error) {
	key := cache.ListKey("deaths", churchID)
	return listSnapshot(ctx, s.cache, key, refresh, func(ctx context.Context) ([]models.Death, error) {
		return s.deaths.ListByChurch(ctx, churchID)
	})
}

// Get fetches one death record.
func (s *DeathService) Get(ctx context.Context, id int64) (*models.Death, error) {
	return s.deaths.Get(ctx, id)
}

// Create validates the draft, checks the member against fresh upstream state
// and performs the single write.
func (s *DeathService) Create(ctx context.Context, churchID int64, in DeathInput) (*models.Death, error) {
	session := form.NewSession(form.ModeCreate, 0, s.rules(), 0)
	s.fill(session, churchID, in)

	var created *models.Death
	err := session.Submit(ctx, func(ctx context.Context, f *upstream.Form) error {
		member, err := s.members.Get(ctx, in.MemberID)
		if err != nil {
			return err
		}
		if member.ChurchID != churchID {
			return appErrors.Precondition("member does not belong to the church")
		}
		death, err := s.deaths.Create(ctx, f)
		if err != nil {
			return err
		}
		created = death
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, churchID)
	return created, nil
}

// Update edits an existing death record.
func (s *DeathService) Update(ctx context.Context, id, churchID int64, in DeathInput) (*models.Death, error) {
	session := form.NewSession(form.ModeEdit, id, s.rules(), 0)
	s.fill(session, churchID, in)

	var updated *models.Death
	err := session.Submit(ctx, func(ctx context.Context, f *upstream.Form) error {
		death, err := s.deaths.Update(ctx, id, f)
		if err != nil {
			return err
		}
		updated = death
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, churchID)
	return updated, nil
}

func (s *DeathService) fill(session *form.Session, churchID int64, in DeathInput) {
	session.SetField("member_id", formatID(in.MemberID))
	session.SetField("date", in.Date)
	session.SetField("note", in.Note)
	session.SetField("church_id", formatID(churchID))
}

// Delete removes a death record.
func (s *DeathService) Delete(ctx context.Context, id, churchID int64) error {
	if err := s.deaths.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, churchID)
	return nil
}

// invalidate drops the registry snapshot and the roster snapshot, since a
// death record changes the member's roster standing.
func (s *DeathService) invalidate(ctx context.Context, churchID int64) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, cache.ListKey("deaths", churchID))
		_ = s.cache.Invalidate(ctx, cache.ListKey("members", churchID))
	}
}
