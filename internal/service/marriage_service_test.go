package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecclesia-app/admin-gateway/internal/collection"
	"github.com/ecclesia-app/admin-gateway/internal/models"
	"github.com/ecclesia-app/admin-gateway/internal/upstream"
	"github.com/ecclesia-app/admin-gateway/pkg/config"
	appErrors "github.com/ecclesia-app/admin-gateway/pkg/errors"
)

type stubMarriageStore struct {
	listFn   func(ctx context.Context, churchID int64) ([]models.Marriage, error)
	createFn func(ctx context.Context, form *upstream.Form) (*models.Marriage, error)

	createCalls int
}

func (s *stubMarriageStore) ListByChurch(ctx context.Context, churchID int64) ([]models.Marriage, error) {
	if s.listFn != nil {
		return s.listFn(ctx, churchID)
	}
	return nil, nil
}

func (s *stubMarriageStore) Get(ctx context.Context, id int64) (*models.Marriage, error) {
	return nil, appErrors.ErrNotFound
}

func (s *stubMarriageStore) Create(ctx context.Context, form *upstream.Form) (*models.Marriage, error) {
	s.createCalls++
	if s.createFn != nil {
		return s.createFn(ctx, form)
	}
	return &models.Marriage{ID: 1, ChurchID: 1, HusbandID: 10, WifeID: 20}, nil
}

func (s *stubMarriageStore) Update(ctx context.Context, id int64, form *upstream.Form) (*models.Marriage, error) {
	return &models.Marriage{ID: id}, nil
}

func (s *stubMarriageStore) Delete(ctx context.Context, id int64) error { return nil }

func adultMember(id, churchID int64) *models.MemberDetail {
	return &models.MemberDetail{Member: models.Member{
		ID:        id,
		FirstName: "A",
		LastName:  "B",
		BirthDate: models.NewDate(1990, time.January, 1),
		ChurchID:  churchID,
	}}
}

func marriageTestService(store *stubMarriageStore, members memberReader) *MarriageService {
	svc := NewMarriageService(store, members, newStubCache(), testListConfig(), config.SessionConfig{TTL: time.Minute}, nil)
	svc.now = func() time.Time { return time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}

func fillSpouses(t *testing.T, svc *MarriageService, id string) {
	t.Helper()
	_, err := svc.UpdateWizard(id, map[string]string{"husband_id": "10", "wife_id": "20"})
	require.NoError(t, err)
}

func fillDetails(t *testing.T, svc *MarriageService, id string) {
	t.Helper()
	_, err := svc.UpdateWizard(id, map[string]string{
		"wedding_date": "2026-09-12",
		"location":     "Goma",
	})
	require.NoError(t, err)
}

func TestWizardHappyPathCreatesOnce(t *testing.T) {
	store := &stubMarriageStore{
		createFn: func(_ context.Context, f *upstream.Form) (*models.Marriage, error) {
			assert.Equal(t, "10", f.Field("husband_id"))
			assert.Equal(t, "20", f.Field("wife_id"))
			assert.Equal(t, "1", f.Field("church_id"))
			return &models.Marriage{ID: 7, ChurchID: 1, HusbandID: 10, WifeID: 20}, nil
		},
	}
	members := &stubMemberReader{getFn: func(_ context.Context, id int64) (*models.MemberDetail, error) {
		return adultMember(id, 1), nil
	}}
	svc := marriageTestService(store, members)

	state := svc.StartWizard(1)
	assert.Equal(t, "spouses", state.Step)

	fillSpouses(t, svc, state.ID)
	state, err := svc.Advance(state.ID)
	require.NoError(t, err)
	assert.Equal(t, "details", state.Step)

	fillDetails(t, svc, state.ID)
	state, err = svc.Advance(state.ID)
	require.NoError(t, err)
	assert.Equal(t, "confirm", state.Step)

	created, err := svc.SubmitWizard(context.Background(), state.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), created.ID)
	assert.Equal(t, 1, store.createCalls)

	// The wizard is disposed of after a successful submission.
	_, err = svc.Advance(state.ID)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestWizardAdvanceBlocksOnIncompleteStep(t *testing.T) {
	svc := marriageTestService(&stubMarriageStore{}, &stubMemberReader{})

	state := svc.StartWizard(1)
	state, err := svc.Advance(state.ID)

	require.Error(t, err)
	assert.Equal(t, "spouses", state.Step, "validation keeps the wizard in place")
	assert.Equal(t, "l'époux est requis", state.Errors["husband_id"])
}

func TestWizardRejectsIdenticalSpouses(t *testing.T) {
	svc := marriageTestService(&stubMarriageStore{}, &stubMemberReader{})

	state := svc.StartWizard(1)
	_, err := svc.UpdateWizard(state.ID, map[string]string{"husband_id": "10", "wife_id": "10"})
	require.NoError(t, err)

	state, err = svc.Advance(state.ID)
	require.Error(t, err)
	assert.Equal(t, "les époux doivent être deux membres distincts", state.Errors["wife_id"])
}

func TestWizardSubmitRequiresFinalStep(t *testing.T) {
	store := &stubMarriageStore{}
	svc := marriageTestService(store, &stubMemberReader{})

	state := svc.StartWizard(1)
	fillSpouses(t, svc, state.ID)

	_, err := svc.SubmitWizard(context.Background(), state.ID)
	assert.True(t, appErrors.Is(err, appErrors.ErrPreconditionFailed))
	assert.Equal(t, 0, store.createCalls)
}

func TestWizardSubmitRejectsUnderageSpouse(t *testing.T) {
	store := &stubMarriageStore{}
	members := &stubMemberReader{getFn: func(_ context.Context, id int64) (*models.MemberDetail, error) {
		if id == 20 {
			// Turns 18 two weeks after the reference date.
			return &models.MemberDetail{Member: models.Member{
				ID: 20, FirstName: "A", LastName: "B",
				BirthDate: models.NewDate(2008, time.June, 15),
				ChurchID:  1,
			}}, nil
		}
		return adultMember(id, 1), nil
	}}
	svc := marriageTestService(store, members)

	state := svc.StartWizard(1)
	fillSpouses(t, svc, state.ID)
	_, err := svc.Advance(state.ID)
	require.NoError(t, err)
	fillDetails(t, svc, state.ID)
	_, err = svc.Advance(state.ID)
	require.NoError(t, err)

	_, err = svc.SubmitWizard(context.Background(), state.ID)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	assert.Equal(t, 0, store.createCalls)
}

func TestWizardSubmitRejectsSpouseFromAnotherChurch(t *testing.T) {
	store := &stubMarriageStore{}
	members := &stubMemberReader{getFn: func(_ context.Context, id int64) (*models.MemberDetail, error) {
		if id == 20 {
			return adultMember(id, 2), nil
		}
		return adultMember(id, 1), nil
	}}
	svc := marriageTestService(store, members)

	state := svc.StartWizard(1)
	fillSpouses(t, svc, state.ID)
	_, err := svc.Advance(state.ID)
	require.NoError(t, err)
	fillDetails(t, svc, state.ID)
	_, err = svc.Advance(state.ID)
	require.NoError(t, err)

	_, err = svc.SubmitWizard(context.Background(), state.ID)
	assert.True(t, appErrors.Is(err, appErrors.ErrPreconditionFailed))
	assert.Equal(t, 0, store.createCalls)
}

func TestWizardBackKeepsDraft(t *testing.T) {
	svc := marriageTestService(&stubMarriageStore{}, &stubMemberReader{})

	state := svc.StartWizard(1)
	fillSpouses(t, svc, state.ID)
	state, err := svc.Advance(state.ID)
	require.NoError(t, err)

	state, err = svc.Back(state.ID)
	require.NoError(t, err)
	assert.Equal(t, "spouses", state.Step)

	// Advancing again must not require re-entering the spouses.
	state, err = svc.Advance(state.ID)
	require.NoError(t, err)
	assert.Equal(t, "details", state.Step)
}

func TestWizardCancelDisposes(t *testing.T) {
	svc := marriageTestService(&stubMarriageStore{}, &stubMemberReader{})

	state := svc.StartWizard(1)
	svc.CancelWizard(state.ID)

	_, err := svc.Advance(state.ID)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestMarriageListClassifiesStatus(t *testing.T) {
	store := &stubMarriageStore{
		listFn: func(context.Context, int64) ([]models.Marriage, error) {
			return []models.Marriage{
				{ID: 1, ChurchID: 1, HusbandID: 10, WifeID: 20, HusbandName: "A", WeddingDate: models.NewDate(2026, time.December, 5)},
				{ID: 2, ChurchID: 1, HusbandID: 11, WifeID: 21, HusbandName: "B", WeddingDate: models.NewDate(2024, time.May, 5)},
			}, nil
		},
	}
	svc := marriageTestService(store, &stubMemberReader{})

	view, err := svc.List(context.Background(), 1, collection.Query{
		Filters: map[string]string{"status": "upcoming"},
	}, false)

	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, int64(1), view.Items[0].ID)
}
