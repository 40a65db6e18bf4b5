package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type snapshot struct {
	Names []string `json:"names"`
}

func newTestCache() *Cache {
	return New(NewMemoryStore(), time.Minute, true, nil)
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "groups:church:1", snapshot{Names: []string{"Chorale"}}, time.Minute))

	var got snapshot
	require.NoError(t, store.Get(ctx, "groups:church:1", &got))
	assert.Equal(t, []string{"Chorale"}, got.Names)
}

func TestMemoryStoreExpires(t *testing.T) {
	store := NewMemoryStore()
	base := time.Now()
	store.now = func() time.Time { return base }
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", snapshot{}, time.Minute))

	store.now = func() time.Time { return base.Add(2 * time.Minute) }
	var got snapshot
	err := store.Get(ctx, "k", &got)
	require.Error(t, err)
}

func TestCacheGetReportsMissWithoutError(t *testing.T) {
	c := newTestCache()

	var got snapshot
	hit, err := c.Get(context.Background(), "groups:church:1", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCacheSetThenGetHits(t *testing.T) {
	c := newTestCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "groups:church:1", snapshot{Names: []string{"Chorale"}}, "groups:church:1"))

	var got snapshot
	hit, err := c.Get(ctx, "groups:church:1", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"Chorale"}, got.Names)
}

func TestCacheDisabledIsInert(t *testing.T) {
	c := New(NewMemoryStore(), time.Minute, false, nil)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", snapshot{Names: []string{"x"}}, "k"))

	var got snapshot
	hit, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestInvalidateDropsEveryTaggedKey(t *testing.T) {
	c := newTestCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "groups:church:1", snapshot{Names: []string{"a"}}, "groups:church:1"))
	require.NoError(t, c.Set(ctx, "members:church:1", snapshot{Names: []string{"b"}}, "members:church:1", "groups:church:1"))
	require.NoError(t, c.Set(ctx, "groups:church:2", snapshot{Names: []string{"c"}}, "groups:church:2"))

	require.NoError(t, c.Invalidate(ctx, "groups:church:1"))

	var got snapshot
	hit, _ := c.Get(ctx, "groups:church:1", &got)
	assert.False(t, hit)
	hit, _ = c.Get(ctx, "members:church:1", &got)
	assert.False(t, hit)

	hit, _ = c.Get(ctx, "groups:church:2", &got)
	assert.True(t, hit, "snapshots under other tags survive")
}

func TestInvalidateNotifiesSubscribers(t *testing.T) {
	c := newTestCache()
	ctx := context.Background()

	var gotTag string
	var gotKeys []string
	c.Subscribe(func(tag string, keys []string) {
		gotTag = tag
		gotKeys = keys
	})

	require.NoError(t, c.Set(ctx, "groups:church:42", snapshot{}, "groups:church:42"))
	require.NoError(t, c.Invalidate(ctx, "groups:church:42"))

	assert.Equal(t, "groups:church:42", gotTag)
	assert.Equal(t, []string{"groups:church:42"}, gotKeys)
}

func TestInvalidateUnknownTagIsSilent(t *testing.T) {
	c := newTestCache()

	notified := false
	c.Subscribe(func(string, []string) { notified = true })

	require.NoError(t, c.Invalidate(context.Background(), "groups:church:99"))
	assert.False(t, notified)
}

func TestKeyHelpers(t *testing.T) {
	assert.Equal(t, "groups:church:42", ListKey("groups", 42))
	assert.Equal(t, "churches:mission:7", MissionScopedKey("churches", 7))
	assert.Equal(t, "missions:all", AllKey("missions"))
}

func TestParseKey(t *testing.T) {
	resource, scope, id, err := ParseKey("groups:church:42")
	require.NoError(t, err)
	assert.Equal(t, "groups", resource)
	assert.Equal(t, "church", scope)
	assert.Equal(t, int64(42), id)

	resource, scope, id, err = ParseKey("missions:all")
	require.NoError(t, err)
	assert.Equal(t, "missions", resource)
	assert.Equal(t, "all", scope)
	assert.Equal(t, int64(0), id)

	_, _, _, err = ParseKey("broken")
	assert.Error(t, err)

	_, _, _, err = ParseKey("groups:church:abc")
	assert.Error(t, err)
}
