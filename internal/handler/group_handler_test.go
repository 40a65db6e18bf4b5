package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecclesia-app/admin-gateway/internal/models"
	"github.com/ecclesia-app/admin-gateway/internal/service"
	"github.com/ecclesia-app/admin-gateway/internal/upstream"
	"github.com/ecclesia-app/admin-gateway/pkg/config"
	appErrors "github.com/ecclesia-app/admin-gateway/pkg/errors"
)

type fakeGroupStore struct {
	groups []models.Group
}

func (s *fakeGroupStore) ListByChurch(ctx context.Context, churchID int64) ([]models.Group, error) {
	return s.groups, nil
}

func (s *fakeGroupStore) Get(ctx context.Context, id int64) (*models.GroupDetail, error) {
	for _, g := range s.groups {
		if g.ID == id {
			return &models.GroupDetail{Group: g}, nil
		}
	}
	return nil, appErrors.ErrNotFound
}

func (s *fakeGroupStore) Create(ctx context.Context, form *upstream.Form) (*models.Group, error) {
	group := models.Group{ID: int64(len(s.groups) + 1), Name: form.Field("name"), AgeGroup: models.AgeGroup(form.Field("age_group")), ChurchID: 1}
	s.groups = append(s.groups, group)
	return &group, nil
}

func (s *fakeGroupStore) Update(ctx context.Context, id int64, form *upstream.Form) (*models.Group, error) {
	return &models.Group{ID: id, Name: form.Field("name"), ChurchID: 1}, nil
}

func (s *fakeGroupStore) Delete(ctx context.Context, id int64) error { return nil }

func (s *fakeGroupStore) AddMember(ctx context.Context, groupID, memberID int64) error { return nil }

func (s *fakeGroupStore) RemoveMember(ctx context.Context, groupID, memberID int64) error {
	return nil
}

func (s *fakeGroupStore) TransferMember(ctx context.Context, memberID, fromGroupID, toGroupID int64) error {
	return nil
}

type fakeMemberReader struct{}

func (fakeMemberReader) Get(ctx context.Context, id int64) (*models.MemberDetail, error) {
	return nil, appErrors.ErrNotFound
}

func newGroupRouter(store *fakeGroupStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewGroupService(store, fakeMemberReader{}, nil, config.ListConfig{DefaultPageSize: 10, MaxPageSize: 100}, nil)
	h := NewGroupHandler(svc)

	r := gin.New()
	r.GET("/groups", h.List)
	r.GET("/groups/:id", h.Get)
	r.POST("/groups", h.Create)
	r.POST("/groups/:id/transfer", h.Transfer)
	return r
}

func TestGroupListReturnsPaginatedEnvelope(t *testing.T) {
	store := &fakeGroupStore{groups: []models.Group{
		{ID: 1, Name: "Chorale", AgeGroup: models.AgeGroupAdult, ChurchID: 1},
		{ID: 2, Name: "Intercession", AgeGroup: models.AgeGroupYouth, ChurchID: 1},
	}}
	router := newGroupRouter(store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/groups?church_id=1&search=chor", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data       []models.Group    `json:"data"`
		Pagination models.Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "Chorale", envelope.Data[0].Name)
	assert.Equal(t, 1, envelope.Pagination.TotalCount)
}

func TestGroupListRequiresChurchID(t *testing.T) {
	router := newGroupRouter(&fakeGroupStore{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/groups", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGroupGetUnknownIDReturns404(t *testing.T) {
	router := newGroupRouter(&fakeGroupStore{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/groups/99", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGroupCreateReturnsFieldErrors(t *testing.T) {
	router := newGroupRouter(&fakeGroupStore{})

	payload := `{"church_id":1,"age_group":"adulte"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/groups", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var envelope struct {
		Error struct {
			Code   string            `json:"code"`
			Fields map[string]string `json:"fields"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
	assert.Equal(t, "le nom du groupe est requis", envelope.Error.Fields["name"])
}

func TestGroupCreateHappyPath(t *testing.T) {
	store := &fakeGroupStore{}
	router := newGroupRouter(store)

	payload := `{"church_id":1,"name":"Chorale","age_group":"adulte","minister":"Fr. Kabasele"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/groups", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, store.groups, 1)
	assert.Equal(t, "Chorale", store.groups[0].Name)
}

func TestGroupListSearchChangeResetsPage(t *testing.T) {
	store := &fakeGroupStore{groups: []models.Group{
		{ID: 1, Name: "Chorale", AgeGroup: models.AgeGroupAdult, ChurchID: 1},
		{ID: 2, Name: "Chorale des jeunes", AgeGroup: models.AgeGroupYouth, ChurchID: 1},
	}}
	router := newGroupRouter(store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/groups?church_id=1&search=chorale&prev_search=inter&page=2&page_size=1", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Pagination models.Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 1, envelope.Pagination.Page)
}

func TestGroupListUnchangedSearchKeepsPage(t *testing.T) {
	store := &fakeGroupStore{groups: []models.Group{
		{ID: 1, Name: "Chorale", AgeGroup: models.AgeGroupAdult, ChurchID: 1},
		{ID: 2, Name: "Chorale des jeunes", AgeGroup: models.AgeGroupYouth, ChurchID: 1},
	}}
	router := newGroupRouter(store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/groups?church_id=1&search=chorale&prev_search=chorale&page=2&page_size=1", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Pagination models.Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 2, envelope.Pagination.Page)
}

func TestGroupCreateRequiresChurchID(t *testing.T) {
	store := &fakeGroupStore{}
	router := newGroupRouter(store)

	payload := `{"name":"Chorale","age_group":"adulte","minister":"Fr. Kabasele"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/groups", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, store.groups)

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
}

func TestGroupCreateMultipartRequiresChurchID(t *testing.T) {
	store := &fakeGroupStore{}
	router := newGroupRouter(store)

	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)
	require.NoError(t, form.WriteField("name", "Chorale"))
	require.NoError(t, form.WriteField("age_group", "adulte"))
	require.NoError(t, form.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/groups", body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, store.groups)
}

func TestGroupTransferPreconditionMapsTo412(t *testing.T) {
	router := newGroupRouter(&fakeGroupStore{})

	payload := `{"church_id":1,"member_id":7,"to_group_id":3}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/groups/3/transfer", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
}
