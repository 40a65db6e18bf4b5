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
	appErrors "github.com/ecclesia-app/admin-gateway/pkg/errors"
)

// groupStore is the upstream surface the group service depends on.
type groupStore interface {
	ListByChurch(ctx context.Context, churchID int64) ([]models.Group, error)
	Get(ctx context.Context, id int64) (*models.GroupDetail, error)
	Create(ctx context.Context, form *upstream.Form) (*models.Group, error)
	Update(ctx context.Context, id int64, form *upstream.Form) (*models.Group, error)
	Delete(ctx context.Context, id int64) error
	AddMember(ctx context.Context, groupID, memberID int64) error
	RemoveMember(ctx context.Context, groupID, memberID int64) error
	TransferMember(ctx context.Context, memberID, fromGroupID, toGroupID int64) error
}

// memberReader fetches fresh member details for precondition checks.
type memberReader interface {
	Get(ctx context.Context, id int64) (*models.MemberDetail, error)
}

// GroupService drives the group pages: cached church-scoped lists, modal
// create/edit, and the membership moves with their preconditions.
type GroupService struct {
	groups  groupStore
	members memberReader
	cache   snapshotCache
	lists   config.ListConfig
	logger  *zap.Logger
}

// NewGroupService creates a group service.
func NewGroupService(groups groupStore, members memberReader, cache snapshotCache, lists config.ListConfig, logger *zap.Logger) *GroupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GroupService{
		groups:  groups,
		members: members,
		cache:   cache,
		lists:   lists,
		logger:  logger,
	}
}

// GroupInput carries the fields of the group create/edit form.
type GroupInput struct {
	Name        string
	Description string
	AgeGroup    string
	Minister    string
	Image       *upstream.FilePart
}

// TransferInput identifies a member move between two groups.
type TransferInput struct {
	ChurchID    int64
	MemberID    int64
	FromGroupID int64
	ToGroupID   int64
}

func (s *GroupService) descriptor() collection.Descriptor[models.Group] {
	return collection.Descriptor[models.Group]{
		SearchFields: []func(models.Group) string{
			func(g models.Group) string { return g.Name },
			func(g models.Group) string { return g.Description },
			func(g models.Group) string { return g.Minister },
		},
		Filters: map[string]func(models.Group, string) bool{
			"age_group": func(g models.Group, v string) bool {
				return strings.EqualFold(string(g.AgeGroup), v)
			},
			"minister": func(g models.Group, v string) bool {
				return strings.Contains(strings.ToLower(g.Minister), strings.ToLower(v))
			},
			// Adult-track groups are the "large" classification on the dashboard.
			"adult": func(g models.Group, v string) bool {
				return g.AgeGroup.IsAdult() == (v == "true")
			},
		},
		Sorters: map[string]func(a, b models.Group) bool{
			"name": func(a, b models.Group) bool { return a.Name < b.Name },
			"members": func(a, b models.Group) bool {
				return a.MemberCount < b.MemberCount
			},
			"created_at": func(a, b models.Group) bool { return a.CreatedAt.Before(b.CreatedAt) },
		},
		DefaultSort:     "name",
		DefaultPageSize: s.lists.DefaultPageSize,
		MaxPageSize:     s.lists.MaxPageSize,
	}
}

func (s *GroupService) rules() []form.Rule {
	return []form.Rule{
		form.Required("name", "le nom du groupe est requis"),
		form.MinLen("name", 2, "le nom doit compter au moins 2 caractères"),
		form.Required("age_group", "la tranche d'âge est requise"),
		form.OneOf("age_group", []string{
			string(models.AgeGroupChild),
			string(models.AgeGroupAdolescent),
			string(models.AgeGroupYouth),
			string(models.AgeGroupAdult),
		}, "tranche d'âge inconnue"),
		form.Required("minister", "le responsable est requis"),
		form.FileType("image", []string{"image/jpeg", "image/png"}, "l'image doit être au format JPEG ou PNG"),
		form.FileMaxSize("image", 5<<20, "l'image ne doit pas dépasser 5 Mo"),
	}
}

// List returns one page of the church's groups after search, filters and
// sort. refresh bypasses the snapshot cache.
func (s *GroupService) List(ctx context.Context, churchID int64, q collection.Query, refresh bool) (collection.View[models.Group], error) {
	items, err := s.snapshot(ctx, churchID, refresh)
	if err != nil {
		return collection.View[models.Group]{}, err
	}
	return collection.Build(items, q, s.descriptor()), nil
}

// Filtered returns the full filtered collection, without a page window. The
// export endpoints render exactly this subset.
func (s *GroupService) Filtered(ctx context.Context, churchID int64, q collection.Query) ([]models.Group, error) {
	items, err := s.snapshot(ctx, churchID, false)
	if err != nil {
		return nil, err
	}
	return collection.Filter(items, q, s.descriptor()), nil
}

func (s *GroupService) snapshot(ctx context.Context, churchID int64, refresh bool) ([]models.Group, error) {
	key := cache.ListKey("groups", churchID)
	return listSnapshot(ctx, s.cache, key, refresh, func(ctx context.Context) ([]models.Group, error) {
		return s.groups.ListByChurch(ctx, churchID)
	})
}

// Get fetches the full group record including its current members.
func (s *GroupService) Get(ctx context.Context, id int64) (*models.GroupDetail, error) {
	return s.groups.Get(ctx, id)
}

// Create validates the draft and performs the single upstream write, then
// invalidates the church's group snapshot.
func (s *GroupService) Create(ctx context.Context, churchID int64, in GroupInput) (*models.Group, error) {
	session := form.NewSession(form.ModeCreate, 0, s.rules(), 0)
	s.fill(session, churchID, in)

	var created *models.Group
	err := session.Submit(ctx, func(ctx context.Context, f *upstream.Form) error {
		group, err := s.groups.Create(ctx, f)
		if err != nil {
			return err
		}
		created = group
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, churchID)
	s.logger.Info("group created", zap.Int64("group_id", created.ID), zap.Int64("church_id", churchID))
	return created, nil
}

// Update edits an existing group through the same validated form flow.
func (s *GroupService) Update(ctx context.Context, id, churchID int64, in GroupInput) (*models.Group, error) {
	session := form.NewSession(form.ModeEdit, id, s.rules(), 0)
	s.fill(session, churchID, in)

	var updated *models.Group
	err := session.Submit(ctx, func(ctx context.Context, f *upstream.Form) error {
		group, err := s.groups.Update(ctx, id, f)
		if err != nil {
			return err
		}
		updated = group
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, churchID)
	return updated, nil
}

func (s *GroupService) fill(session *form.Session, churchID int64, in GroupInput) {
	session.SetField("name", in.Name)
	session.SetField("description", in.Description)
	session.SetField("age_group", in.AgeGroup)
	session.SetField("minister", in.Minister)
	session.SetField("church_id", formatID(churchID))
	if in.Image != nil {
		session.SetFile("image", *in.Image)
	}
}

// Delete removes a group and drops the church's group snapshot.
func (s *GroupService) Delete(ctx context.Context, id, churchID int64) error {
	if err := s.groups.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, churchID)
	return nil
}

// AddMember enrolls a member into a group, rejecting duplicates against a
// fresh detail fetch rather than a cached snapshot.
func (s *GroupService) AddMember(ctx context.Context, churchID, groupID, memberID int64) error {
	group, err := s.groups.Get(ctx, groupID)
	if err != nil {
		return err
	}
	if group.HasMember(memberID) {
		return appErrors.Precondition("member already belongs to the group")
	}
	if err := s.groups.AddMember(ctx, groupID, memberID); err != nil {
		return err
	}
	s.invalidate(ctx, churchID)
	s.invalidateMembers(ctx, churchID)
	return nil
}

// RemoveMember removes a member from a group.
func (s *GroupService) RemoveMember(ctx context.Context, churchID, groupID, memberID int64) error {
	group, err := s.groups.Get(ctx, groupID)
	if err != nil {
		return err
	}
	if !group.HasMember(memberID) {
		return appErrors.Precondition("member does not belong to the group")
	}
	if err := s.groups.RemoveMember(ctx, groupID, memberID); err != nil {
		return err
	}
	s.invalidate(ctx, churchID)
	s.invalidateMembers(ctx, churchID)
	return nil
}

// Transfer moves a member between groups. Preconditions are checked against
// fresh upstream state: distinct groups in the same church, with the member
// currently in the source and absent from the target. A violated precondition
// aborts before any upstream write.
func (s *GroupService) Transfer(ctx context.Context, in TransferInput) error {
	if in.FromGroupID == in.ToGroupID {
		return appErrors.Precondition("source and target groups must differ")
	}

	from, err := s.groups.Get(ctx, in.FromGroupID)
	if err != nil {
		return err
	}
	to, err := s.groups.Get(ctx, in.ToGroupID)
	if err != nil {
		return err
	}
	if from.ChurchID != to.ChurchID {
		return appErrors.Precondition("groups belong to different churches")
	}
	if !from.HasMember(in.MemberID) {
		return appErrors.Precondition("member does not belong to the source group")
	}
	if to.HasMember(in.MemberID) {
		return appErrors.Precondition("member already belongs to the target group")
	}

	if err := s.groups.TransferMember(ctx, in.MemberID, in.FromGroupID, in.ToGroupID); err != nil {
		return err
	}

	s.invalidate(ctx, in.ChurchID)
	s.invalidateMembers(ctx, in.ChurchID)
	s.logger.Info("member transferred",
		zap.Int64("member_id", in.MemberID),
		zap.Int64("from_group_id", in.FromGroupID),
		zap.Int64("to_group_id", in.ToGroupID))
	return nil
}

func (s *GroupService) invalidate(ctx context.Context, churchID int64) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, cache.ListKey("groups", churchID))
	}
}

func (s *GroupService) invalidateMembers(ctx context.Context, churchID int64) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, cache.ListKey("members", churchID))
	}
}
