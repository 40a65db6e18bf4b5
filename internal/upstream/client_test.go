package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/ecclesia-app/admin-gateway/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, 5*time.Second, StaticTokenSource("svc-token"), nil)
}

func TestClientAttachesBearerToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer svc-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`)) //nolint:errcheck
	})

	_, err := client.Groups().ListByChurch(context.Background(), 1)
	require.NoError(t, err)
}

func TestSubmitFormWithoutFilesSendsJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "Chorale", payload["name"])
		assert.Equal(t, "adulte", payload["age_group"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":1,"name":"Chorale","age_group":"adulte","church_id":1}`)) //nolint:errcheck
	})

	form := NewForm().
		SetField("name", "Chorale").
		SetField("age_group", "adulte").
		SetInt("church_id", 1)

	group, err := client.Groups().Create(context.Background(), form)
	require.NoError(t, err)
	assert.Equal(t, int64(1), group.ID)
}

func TestSubmitFormWithFileSendsMultipart(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))
		require.NoError(t, r.ParseMultipartForm(1 << 20))

		assert.Equal(t, "Chorale", r.FormValue("name"))
		assert.Equal(t, "7", r.FormValue("id"), "updates carry the record id")

		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close() //nolint:errcheck
		assert.Equal(t, "logo.png", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":7,"name":"Chorale","age_group":"adulte","church_id":1}`)) //nolint:errcheck
	})

	form := NewForm().
		SetField("name", "Chorale").
		SetField("age_group", "adulte").
		SetInt("church_id", 1).
		SetFile("image", FilePart{Filename: "logo.png", ContentType: "image/png", Data: []byte{0x89, 0x50, 0x4e, 0x47}})

	group, err := client.Groups().Update(context.Background(), 7, form)
	require.NoError(t, err)
	assert.Equal(t, int64(7), group.ID)
}

func TestClientMapsNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"membre introuvable"}`)) //nolint:errcheck
	})

	_, err := client.Members().Get(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	assert.Equal(t, "membre introuvable", appErrors.FromError(err).Message)
}

func TestClientMapsServerErrorToUpstream(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Members().Get(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUpstream))
	assert.True(t, appErrors.FromError(err).Retryable, "upstream failures are retryable for the dashboard")
}

func TestClientRejectsMalformedRecord(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		// Missing required name and church_id.
		w.Write([]byte(`[{"id":1,"age_group":"adulte"}]`)) //nolint:errcheck
	})

	_, err := client.Groups().ListByChurch(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUpstreamDecode))
}

func TestClientRejectsInvalidJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{not json`)) //nolint:errcheck
	})

	_, err := client.Groups().Get(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUpstreamDecode))
}

func TestFormOmitsEmptyOptionalFields(t *testing.T) {
	form := NewForm().
		SetField("name", "Chorale").
		SetField("description", "")

	payload, err := form.EncodeJSON()
	require.NoError(t, err)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, "Chorale", decoded["name"])
	_, present := decoded["description"]
	assert.False(t, present)
}
