package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ecclesia-app/admin-gateway/internal/cache"
	"github.com/ecclesia-app/admin-gateway/internal/collection"
	"github.com/ecclesia-app/admin-gateway/internal/form"
	"github.com/ecclesia-app/admin-gateway/internal/models"
	"github.com/ecclesia-app/admin-gateway/internal/upstream"
	"github.com/ecclesia-app/admin-gateway/pkg/config"
)

// memberStore is the upstream surface the member service depends on.
type memberStore interface {
	ListByChurch(ctx context.Context, churchID int64) ([]models.Member, error)
	ListByGroup(ctx context.Context, groupID int64) ([]models.Member, error)
	Get(ctx context.Context, id int64) (*models.MemberDetail, error)
	Create(ctx context.Context, form *upstream.Form) (*models.Member, error)
	Update(ctx context.Context, id int64, form *upstream.Form) (*models.Member, error)
	Delete(ctx context.Context, id int64) error
}

// MemberService drives the roster pages: cached church-scoped lists with
// search over names and contact fields, and the photo-carrying member form.
type MemberService struct {
	members   memberStore
	cache     snapshotCache
	lists     config.ListConfig
	assetHost string
	logger    *zap.Logger
	now       func() time.Time
}

// NewMemberService creates a member service. assetHost prefixes the relative
// photo paths the backend stores.
func NewMemberService(members memberStore, cache snapshotCache, lists config.ListConfig, assetHost string, logger *zap.Logger) *MemberService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemberService{
		members:   members,
		cache:     cache,
		lists:     lists,
		assetHost: strings.TrimRight(assetHost, "/"),
		logger:    logger,
		now:       time.Now,
	}
}

// MemberInput carries the fields of the member create/edit form.
type MemberInput struct {
	FirstName string
	LastName  string
	Gender    string
	BirthDate string
	Phone     string
	Email     string
	Address   string
	Photo     *upstream.FilePart
}

func (s *MemberService) descriptor() collection.Descriptor[models.Member] {
	now := s.now().UTC()
	return collection.Descriptor[models.Member]{
		SearchFields: []func(models.Member) string{
			func(m models.Member) string { return m.FullName() },
			func(m models.Member) string { return m.Email },
			func(m models.Member) string { return m.Phone },
		},
		Filters: map[string]func(models.Member, string) bool{
			"gender": func(m models.Member, v string) bool {
				return strings.EqualFold(m.Gender, v)
			},
			"active": func(m models.Member, v string) bool {
				return m.Active == strings.EqualFold(v, "true")
			},
			"has_mentor": func(m models.Member, v string) bool {
				return m.HasMentor() == strings.EqualFold(v, "true")
			},
			"adult": func(m models.Member, v string) bool {
				adult := m.BirthDate.YearsSince(now) >= 18
				return adult == strings.EqualFold(v, "true")
			},
		},
		Sorters: map[string]func(a, b models.Member) bool{
			"name": func(a, b models.Member) bool {
				if a.LastName != b.LastName {
					return a.LastName < b.LastName
				}
				return a.FirstName < b.FirstName
			},
			"birth_date": func(a, b models.Member) bool { return a.BirthDate.Before(b.BirthDate.Time) },
			"created_at": func(a, b models.Member) bool { return a.CreatedAt.Before(b.CreatedAt) },
		},
		DefaultSort:     "name",
		DefaultPageSize: s.lists.DefaultPageSize,
		MaxPageSize:     s.lists.MaxPageSize,
	}
}

func (s *MemberService) rules() []form.Rule {
	return []form.Rule{
		form.Required("first_name", "le prénom est requis"),
		form.Required("last_name", "le nom est requis"),
		form.OneOf("gender", []string{"M", "F"}, "genre inconnu"),
		form.ValidDate("birth_date", "date de naissance invalide"),
		form.Email("email", "adresse e-mail invalide"),
		form.FileType("photo", []string{"image/jpeg", "image/png"}, "la photo doit être au format JPEG ou PNG"),
		form.FileMaxSize("photo", 5<<20, "la photo ne doit pas dépasser 5 Mo"),
	}
}

// List returns one page of the church roster.
func (s *MemberService) List(ctx context.Context, churchID int64, q collection.Query, refresh bool) (collection.View[models.Member], error) {
	items, err := s.snapshot(ctx, churchID, refresh)
	if err != nil {
		return collection.View[models.Member]{}, err
	}
	return collection.Build(items, q, s.descriptor()), nil
}

// Filtered returns the full filtered roster for export.
func (s *MemberService) Filtered(ctx context.Context, churchID int64, q collection.Query) ([]models.Member, error) {
	items, err := s.snapshot(ctx, churchID, false)
	if err != nil {
		return nil, err
	}
	return collection.Filter(items, q, s.descriptor()), nil
}

func (s *MemberService) snapshot(ctx context.Context, churchID int64, refresh bool) ([]models.Member, error) {
	key := cache.ListKey("members", churchID)
	return listSnapshot(ctx, s.cache, key, refresh, func(ctx context.Context) ([]models.Member, error) {
		return s.members.ListByChurch(ctx, churchID)
	})
}

// ListByGroup returns the members of one group, paged the same way as the
// roster. Group membership views are not snapshotted; they ride the group
// detail fetch.
func (s *MemberService) ListByGroup(ctx context.Context, groupID int64, q collection.Query) (collection.View[models.Member], error) {
	items, err := s.members.ListByGroup(ctx, groupID)
	if err != nil {
		return collection.View[models.Member]{}, err
	}
	return collection.Build(items, q, s.descriptor()), nil
}

// Get fetches the full member record including group membership.
func (s *MemberService) Get(ctx context.Context, id int64) (*models.MemberDetail, error) {
	return s.members.Get(ctx, id)
}

// Create validates the draft and performs the single upstream write. A draft
// with a photo goes out as multipart form data.
func (s *MemberService) Create(ctx context.Context, churchID int64, in MemberInput) (*models.Member, error) {
	session := form.NewSession(form.ModeCreate, 0, s.rules(), 0)
	s.fill(session, churchID, in)

	var created *models.Member
	err := session.Submit(ctx, func(ctx context.Context, f *upstream.Form) error {
		member, err := s.members.Create(ctx, f)
		if err != nil {
			return err
		}
		created = member
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, churchID)
	s.logger.Info("member created", zap.Int64("member_id", created.ID), zap.Int64("church_id", churchID))
	return created, nil
}

// Update edits an existing member through the same validated form flow.
func (s *MemberService) Update(ctx context.Context, id, churchID int64, in MemberInput) (*models.Member, error) {
	session := form.NewSession(form.ModeEdit, id, s.rules(), 0)
	s.fill(session, churchID, in)

	var updated *models.Member
	err := session.Submit(ctx, func(ctx context.Context, f *upstream.Form) error {
		member, err := s.members.Update(ctx, id, f)
		if err != nil {
			return err
		}
		updated = member
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, churchID)
	return updated, nil
}

func (s *MemberService) fill(session *form.Session, churchID int64, in MemberInput) {
	session.SetField("first_name", in.FirstName)
	session.SetField("last_name", in.LastName)
	session.SetField("gender", in.Gender)
	session.SetField("birth_date", in.BirthDate)
	session.SetField("phone", in.Phone)
	session.SetField("email", in.Email)
	session.SetField("address", in.Address)
	session.SetField("church_id", formatID(churchID))
	if in.Photo != nil {
		session.SetFile("photo", *in.Photo)
	}
}

// Delete removes a member record.
func (s *MemberService) Delete(ctx context.Context, id, churchID int64) error {
	if err := s.members.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, churchID)
	return nil
}

// AssetURL resolves the stored photo path against the asset host. Empty
// paths resolve to empty so the dashboard can fall back to its placeholder.
func (s *MemberService) AssetURL(path string) string {
	if path == "" || s.assetHost == "" {
		return ""
	}
	return s.assetHost + "/" + strings.TrimLeft(path, "/")
}

func (s *MemberService) invalidate(ctx context.Context, churchID int64) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, cache.ListKey("members", churchID))
	}
}
