package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecclesia-app/admin-gateway/internal/collection"
	"github.com/ecclesia-app/admin-gateway/internal/models"
	"github.com/ecclesia-app/admin-gateway/internal/upstream"
	"github.com/ecclesia-app/admin-gateway/pkg/config"
	appErrors "github.com/ecclesia-app/admin-gateway/pkg/errors"
)

type stubGroupStore struct {
	listFn     func(ctx context.Context, churchID int64) ([]models.Group, error)
	getFn      func(ctx context.Context, id int64) (*models.GroupDetail, error)
	createFn   func(ctx context.Context, form *upstream.Form) (*models.Group, error)
	updateFn   func(ctx context.Context, id int64, form *upstream.Form) (*models.Group, error)
	deleteFn   func(ctx context.Context, id int64) error
	addFn      func(ctx context.Context, groupID, memberID int64) error
	removeFn   func(ctx context.Context, groupID, memberID int64) error
	transferFn func(ctx context.Context, memberID, fromGroupID, toGroupID int64) error

	listCalls     int
	createCalls   int
	transferCalls int
}

func (s *stubGroupStore) ListByChurch(ctx context.Context, churchID int64) ([]models.Group, error) {
	s.listCalls++
	if s.listFn != nil {
		return s.listFn(ctx, churchID)
	}
	return nil, nil
}

func (s *stubGroupStore) Get(ctx context.Context, id int64) (*models.GroupDetail, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return nil, appErrors.ErrNotFound
}

func (s *stubGroupStore) Create(ctx context.Context, form *upstream.Form) (*models.Group, error) {
	s.createCalls++
	if s.createFn != nil {
		return s.createFn(ctx, form)
	}
	return &models.Group{ID: 1}, nil
}

func (s *stubGroupStore) Update(ctx context.Context, id int64, form *upstream.Form) (*models.Group, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, id, form)
	}
	return &models.Group{ID: id}, nil
}

func (s *stubGroupStore) Delete(ctx context.Context, id int64) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return nil
}

func (s *stubGroupStore) AddMember(ctx context.Context, groupID, memberID int64) error {
	if s.addFn != nil {
		return s.addFn(ctx, groupID, memberID)
	}
	return nil
}

func (s *stubGroupStore) RemoveMember(ctx context.Context, groupID, memberID int64) error {
	if s.removeFn != nil {
		return s.removeFn(ctx, groupID, memberID)
	}
	return nil
}

func (s *stubGroupStore) TransferMember(ctx context.Context, memberID, fromGroupID, toGroupID int64) error {
	s.transferCalls++
	if s.transferFn != nil {
		return s.transferFn(ctx, memberID, fromGroupID, toGroupID)
	}
	return nil
}

type stubMemberReader struct {
	getFn func(ctx context.Context, id int64) (*models.MemberDetail, error)
}

func (s *stubMemberReader) Get(ctx context.Context, id int64) (*models.MemberDetail, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return nil, appErrors.ErrNotFound
}

// stubCache keeps snapshots as JSON so it mirrors the real stores.
type stubCache struct {
	entries     map[string][]byte
	invalidated []string
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[string][]byte)}
}

func (s *stubCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	payload, ok := s.entries[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (s *stubCache) Set(ctx context.Context, key string, value interface{}, tags ...string) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.entries[key] = payload
	return nil
}

func (s *stubCache) Invalidate(ctx context.Context, tag string) error {
	s.invalidated = append(s.invalidated, tag)
	delete(s.entries, tag)
	return nil
}

func testListConfig() config.ListConfig {
	return config.ListConfig{DefaultPageSize: 10, MaxPageSize: 100}
}

func TestGroupCreateWritesOnceAndInvalidates(t *testing.T) {
	store := &stubGroupStore{
		createFn: func(_ context.Context, f *upstream.Form) (*models.Group, error) {
			assert.Equal(t, "Chorale", f.Field("name"))
			assert.Equal(t, "42", f.Field("church_id"))
			return &models.Group{ID: 5, Name: "Chorale", AgeGroup: models.AgeGroupAdult, ChurchID: 42}, nil
		},
	}
	cache := newStubCache()
	svc := NewGroupService(store, &stubMemberReader{}, cache, testListConfig(), nil)

	group, err := svc.Create(context.Background(), 42, GroupInput{
		Name:     "Chorale",
		AgeGroup: "adulte",
		Minister: "Fr. Kabasele",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(5), group.ID)
	assert.Equal(t, 1, store.createCalls)
	assert.Contains(t, cache.invalidated, "groups:church:42")
}

func TestGroupCreateBlocksOnValidation(t *testing.T) {
	store := &stubGroupStore{}
	svc := NewGroupService(store, &stubMemberReader{}, newStubCache(), testListConfig(), nil)

	_, err := svc.Create(context.Background(), 42, GroupInput{AgeGroup: "adulte"})

	require.Error(t, err)
	assert.Equal(t, 0, store.createCalls)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, "le nom du groupe est requis", appErr.Fields["name"])
	assert.Equal(t, "le responsable est requis", appErr.Fields["minister"])
}

func TestGroupCreateRejectsUnknownAgeGroup(t *testing.T) {
	store := &stubGroupStore{}
	svc := NewGroupService(store, &stubMemberReader{}, newStubCache(), testListConfig(), nil)

	_, err := svc.Create(context.Background(), 42, GroupInput{
		Name:     "Chorale",
		AgeGroup: "senior",
		Minister: "Fr. Kabasele",
	})

	require.Error(t, err)
	assert.Equal(t, "tranche d'âge inconnue", appErrors.FromError(err).Fields["age_group"])
	assert.Equal(t, 0, store.createCalls)
}

func TestGroupListServesCachedSnapshot(t *testing.T) {
	store := &stubGroupStore{}
	cache := newStubCache()
	require.NoError(t, cache.Set(context.Background(), "groups:church:42",
		[]models.Group{{ID: 1, Name: "Chorale", AgeGroup: models.AgeGroupAdult, ChurchID: 42}}))

	svc := NewGroupService(store, &stubMemberReader{}, cache, testListConfig(), nil)

	view, err := svc.List(context.Background(), 42, collection.Query{}, false)
	require.NoError(t, err)
	assert.Equal(t, 0, store.listCalls, "cache hit must not reach upstream")
	require.Len(t, view.Items, 1)
	assert.Equal(t, "Chorale", view.Items[0].Name)
}

func TestGroupListRefreshBypassesCache(t *testing.T) {
	store := &stubGroupStore{
		listFn: func(context.Context, int64) ([]models.Group, error) {
			return []models.Group{{ID: 2, Name: "Intercession", AgeGroup: models.AgeGroupAdult, ChurchID: 42}}, nil
		},
	}
	cache := newStubCache()
	require.NoError(t, cache.Set(context.Background(), "groups:church:42",
		[]models.Group{{ID: 1, Name: "Chorale", AgeGroup: models.AgeGroupAdult, ChurchID: 42}}))

	svc := NewGroupService(store, &stubMemberReader{}, cache, testListConfig(), nil)

	view, err := svc.List(context.Background(), 42, collection.Query{}, true)
	require.NoError(t, err)
	assert.Equal(t, 1, store.listCalls)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "Intercession", view.Items[0].Name, "refresh re-primes from upstream")
}

func groupDetail(id, churchID int64, memberIDs ...int64) *models.GroupDetail {
	return &models.GroupDetail{
		Group:     models.Group{ID: id, Name: "G", AgeGroup: models.AgeGroupAdult, ChurchID: churchID},
		MemberIDs: memberIDs,
	}
}

func TestTransferRejectsSameGroup(t *testing.T) {
	store := &stubGroupStore{}
	svc := NewGroupService(store, &stubMemberReader{}, newStubCache(), testListConfig(), nil)

	err := svc.Transfer(context.Background(), TransferInput{ChurchID: 1, MemberID: 7, FromGroupID: 3, ToGroupID: 3})

	assert.True(t, appErrors.Is(err, appErrors.ErrPreconditionFailed))
	assert.Equal(t, 0, store.transferCalls)
}

func TestTransferRejectsCrossChurchGroups(t *testing.T) {
	store := &stubGroupStore{
		getFn: func(_ context.Context, id int64) (*models.GroupDetail, error) {
			if id == 3 {
				return groupDetail(3, 1, 7), nil
			}
			return groupDetail(4, 2), nil
		},
	}
	svc := NewGroupService(store, &stubMemberReader{}, newStubCache(), testListConfig(), nil)

	err := svc.Transfer(context.Background(), TransferInput{ChurchID: 1, MemberID: 7, FromGroupID: 3, ToGroupID: 4})

	assert.True(t, appErrors.Is(err, appErrors.ErrPreconditionFailed))
	assert.Equal(t, 0, store.transferCalls)
}

func TestTransferRequiresMembershipInSource(t *testing.T) {
	store := &stubGroupStore{
		getFn: func(_ context.Context, id int64) (*models.GroupDetail, error) {
			if id == 3 {
				return groupDetail(3, 1), nil // member 7 absent
			}
			return groupDetail(4, 1), nil
		},
	}
	svc := NewGroupService(store, &stubMemberReader{}, newStubCache(), testListConfig(), nil)

	err := svc.Transfer(context.Background(), TransferInput{ChurchID: 1, MemberID: 7, FromGroupID: 3, ToGroupID: 4})

	assert.True(t, appErrors.Is(err, appErrors.ErrPreconditionFailed))
	assert.Equal(t, 0, store.transferCalls)
}

func TestTransferRejectsDuplicateInTarget(t *testing.T) {
	store := &stubGroupStore{
		getFn: func(_ context.Context, id int64) (*models.GroupDetail, error) {
			if id == 3 {
				return groupDetail(3, 1, 7), nil
			}
			return groupDetail(4, 1, 7), nil
		},
	}
	svc := NewGroupService(store, &stubMemberReader{}, newStubCache(), testListConfig(), nil)

	err := svc.Transfer(context.Background(), TransferInput{ChurchID: 1, MemberID: 7, FromGroupID: 3, ToGroupID: 4})

	assert.True(t, appErrors.Is(err, appErrors.ErrPreconditionFailed))
	assert.Equal(t, 0, store.transferCalls)
}

func TestTransferHappyPathInvalidatesBothSnapshots(t *testing.T) {
	store := &stubGroupStore{
		getFn: func(_ context.Context, id int64) (*models.GroupDetail, error) {
			if id == 3 {
				return groupDetail(3, 1, 7), nil
			}
			return groupDetail(4, 1), nil
		},
	}
	cache := newStubCache()
	svc := NewGroupService(store, &stubMemberReader{}, cache, testListConfig(), nil)

	err := svc.Transfer(context.Background(), TransferInput{ChurchID: 1, MemberID: 7, FromGroupID: 3, ToGroupID: 4})

	require.NoError(t, err)
	assert.Equal(t, 1, store.transferCalls)
	assert.Contains(t, cache.invalidated, "groups:church:1")
	assert.Contains(t, cache.invalidated, "members:church:1")
}

func TestAddMemberRejectsDuplicate(t *testing.T) {
	store := &stubGroupStore{
		getFn: func(_ context.Context, id int64) (*models.GroupDetail, error) {
			return groupDetail(3, 1, 7), nil
		},
	}
	svc := NewGroupService(store, &stubMemberReader{}, newStubCache(), testListConfig(), nil)

	err := svc.AddMember(context.Background(), 1, 3, 7)

	assert.True(t, appErrors.Is(err, appErrors.ErrPreconditionFailed))
}

func TestRemoveMemberRequiresMembership(t *testing.T) {
	store := &stubGroupStore{
		getFn: func(_ context.Context, id int64) (*models.GroupDetail, error) {
			return groupDetail(3, 1), nil
		},
	}
	svc := NewGroupService(store, &stubMemberReader{}, newStubCache(), testListConfig(), nil)

	err := svc.RemoveMember(context.Background(), 1, 3, 7)

	assert.True(t, appErrors.Is(err, appErrors.ErrPreconditionFailed))
}
