package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ecclesia-app/admin-gateway/internal/cache"
	"github.com/ecclesia-app/admin-gateway/pkg/config"
	"github.com/ecclesia-app/admin-gateway/pkg/jobs"
)

// Loader re-primes one invalidated snapshot key.
type Loader func(ctx context.Context, key string) error

// RefetchService re-fetches list snapshots dropped by an invalidation, off
// the write path. It subscribes to the cache and dispatches each dropped key
// to the loader registered for its resource.
type RefetchService struct {
	queue   *jobs.Queue
	enabled bool
	logger  *zap.Logger

	mu      sync.RWMutex
	loaders map[string]Loader
}

// NewRefetchService creates the refetch worker.
func NewRefetchService(cfg config.RefetchConfig, logger *zap.Logger) *RefetchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &RefetchService{
		enabled: cfg.Enabled,
		logger:  logger,
		loaders: make(map[string]Loader),
	}
	s.queue = jobs.NewQueue("refetch", s.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.Retries,
		Logger:     logger,
	})
	return s
}

// Register binds a loader to a snapshot resource ("groups", "members", ...).
func (s *RefetchService) Register(resource string, loader Loader) {
	if loader == nil {
		return
	}
	s.mu.Lock()
	s.loaders[resource] = loader
	s.mu.Unlock()
}

// Subscriber adapts the service to the cache's invalidation callback.
func (s *RefetchService) Subscriber() cache.Subscriber {
	return func(tag string, keys []string) {
		if !s.enabled {
			return
		}
		for _, key := range keys {
			err := s.queue.Enqueue(jobs.Job{
				ID:      uuid.NewString(),
				Type:    "refetch",
				Payload: key,
			})
			if err != nil {
				s.logger.Warn("refetch enqueue failed", zap.String("key", key), zap.Error(err))
			}
		}
	}
}

// Start begins worker consumption when the service is enabled.
func (s *RefetchService) Start(ctx context.Context) {
	if s.enabled {
		s.queue.Start(ctx)
	}
}

// Stop drains the workers.
func (s *RefetchService) Stop() {
	if s.enabled {
		s.queue.Stop()
	}
}

func (s *RefetchService) handle(ctx context.Context, job jobs.Job) error {
	key, ok := job.Payload.(string)
	if !ok {
		s.logger.Warn("refetch job carries no key", zap.String("job_id", job.ID))
		return nil
	}

	resource, _, _, err := cache.ParseKey(key)
	if err != nil {
		s.logger.Warn("refetch job has malformed key", zap.String("key", key), zap.Error(err))
		return nil
	}

	s.mu.RLock()
	loader := s.loaders[resource]
	s.mu.RUnlock()
	if loader == nil {
		return nil
	}
	return loader(ctx, key)
}
