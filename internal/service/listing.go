package service

import (
	"context"
	"strconv"
)

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// snapshotCache is the narrow view services need of the snapshot cache.
type snapshotCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, tags ...string) error
	Invalidate(ctx context.Context, tag string) error
}

// listSnapshot serves a list from its cached snapshot, fetching upstream on
// a miss or when the caller forces a refresh, and re-priming the cache with
// the fresh collection. List snapshots are tagged with their own key so a
// mutation can invalidate exactly the views it touched.
func listSnapshot[T any](ctx context.Context, cache snapshotCache, key string, refresh bool, fetch func(context.Context) ([]T, error)) ([]T, error) {
	if cache != nil && !refresh {
		var cached []T
		hit, err := cache.Get(ctx, key, &cached)
		if err == nil && hit {
			return cached, nil
		}
	}

	items, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	if cache != nil {
		_ = cache.Set(ctx, key, items, key)
	}
	return items, nil
}
