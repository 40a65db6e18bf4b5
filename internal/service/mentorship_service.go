package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ecclesia-app/admin-gateway/internal/cache"
	"github.com/ecclesia-app/admin-gateway/internal/collection"
	"github.com/ecclesia-app/admin-gateway/internal/models"
	"github.com/ecclesia-app/admin-gateway/pkg/config"
	appErrors "github.com/ecclesia-app/admin-gateway/pkg/errors"
)

// mentorshipStore is the upstream surface the mentorship service depends on.
type mentorshipStore interface {
	ListByChurch(ctx context.Context, churchID int64) ([]models.Mentorship, error)
	Get(ctx context.Context, id int64) (*models.Mentorship, error)
	Pair(ctx context.Context, churchID, mentorID, menteeID int64) (*models.Mentorship, error)
	Unpair(ctx context.Context, id int64) error
}

// MentorshipService drives the Timothée/Tite pages: the pairing list and the
// pair/unpair operations with their preconditions.
type MentorshipService struct {
	mentorships mentorshipStore
	members     memberReader
	cache       snapshotCache
	lists       config.ListConfig
	logger      *zap.Logger
}

// NewMentorshipService creates a mentorship service.
func NewMentorshipService(mentorships mentorshipStore, members memberReader, cache snapshotCache, lists config.ListConfig, logger *zap.Logger) *MentorshipService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MentorshipService{
		mentorships: mentorships,
		members:     members,
		cache:       cache,
		lists:       lists,
		logger:      logger,
	}
}

// PairInput identifies a mentorship to establish.
type PairInput struct {
	ChurchID int64
	MentorID int64
	MenteeID int64
}

func (s *MentorshipService) descriptor() collection.Descriptor[models.Mentorship] {
	return collection.Descriptor[models.Mentorship]{
		SearchFields: []func(models.Mentorship) string{
			func(m models.Mentorship) string { return m.MentorName },
			func(m models.Mentorship) string { return m.MenteeName },
		},
		Filters: map[string]func(models.Mentorship, string) bool{
			"mentor": func(m models.Mentorship, v string) bool {
				return strings.Contains(strings.ToLower(m.MentorName), strings.ToLower(v))
			},
		},
		Sorters: map[string]func(a, b models.Mentorship) bool{
			"mentor": func(a, b models.Mentorship) bool { return a.MentorName < b.MentorName },
			"since":  func(a, b models.Mentorship) bool { return a.Since.Before(b.Since.Time) },
		},
		DefaultSort:     "mentor",
		DefaultPageSize: s.lists.DefaultPageSize,
		MaxPageSize:     s.lists.MaxPageSize,
	}
}

// List returns one page of the church's pairings.
func (s *MentorshipService) List(ctx context.Context, churchID int64, q collection.Query, refresh bool) (collection.View[models.Mentorship], error) {
	items, err := s.snapshot(ctx, churchID, refresh)
	if err != nil {
		return collection.View[models.Mentorship]{}, err
	}
	return collection.Build(items, q, s.descriptor()), nil
}

// Filtered returns the full filtered pairing list for export.
func (s *MentorshipService) Filtered(ctx context.Context, churchID int64, q collection.Query) ([]models.Mentorship, error) {
	items, err := s.snapshot(ctx, churchID, false)
	if err != nil {
		return nil, err
	}
	return collection.Filter(items, q, s.descriptor()), nil
}

func (s *MentorshipService) snapshot(ctx context.Context, churchID int64, refresh bool) ([]models.Mentorship, error) {
	key := cache.ListKey("mentorships", churchID)
	return listSnapshot(ctx, s.cache, key, refresh, func(ctx context.Context) ([]models.Mentorship, error) {
		return s.mentorships.ListByChurch(ctx, churchID)
	})
}

// Pair establishes a mentorship. Preconditions are checked against fresh
// member details: a member mentors someone else, never themselves; both
// parties belong to the church; and a mentee holds at most one mentor, so an
// existing pairing must be dissolved first.
func (s *MentorshipService) Pair(ctx context.Context, in PairInput) (*models.Mentorship, error) {
	if in.MentorID == in.MenteeID {
		return nil, appErrors.Precondition("a member cannot mentor themselves")
	}

	mentor, err := s.members.Get(ctx, in.MentorID)
	if err != nil {
		return nil, err
	}
	mentee, err := s.members.Get(ctx, in.MenteeID)
	if err != nil {
		return nil, err
	}
	if mentor.ChurchID != in.ChurchID || mentee.ChurchID != in.ChurchID {
		return nil, appErrors.Precondition("both members must belong to the church")
	}
	if mentee.HasMentor() {
		return nil, appErrors.Precondition("member already has a mentor")
	}

	pairing, err := s.mentorships.Pair(ctx, in.ChurchID, in.MentorID, in.MenteeID)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, in.ChurchID)
	s.logger.Info("mentorship paired",
		zap.Int64("mentor_id", in.MentorID),
		zap.Int64("mentee_id", in.MenteeID),
		zap.Int64("church_id", in.ChurchID))
	return pairing, nil
}

// Unpair dissolves a mentorship.
func (s *MentorshipService) Unpair(ctx context.Context, id, churchID int64) error {
	if err := s.mentorships.Unpair(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, churchID)
	return nil
}

// invalidate drops the pairing snapshot and the roster snapshot, since the
// mentee's mentor link shows on the roster too.
func (s *MentorshipService) invalidate(ctx context.Context, churchID int64) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, cache.ListKey("mentorships", churchID))
		_ = s.cache.Invalidate(ctx, cache.ListKey("members", churchID))
	}
}
