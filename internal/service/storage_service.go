package service

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/tkt-widget-api/internal/models"
	appErrors "github.com/noah-isme/tkt-widget-api/pkg/errors"
	"github.com/noah-isme/tkt-widget-api/pkg/sharedstore"
)

// SharedStorageRepository abstracts persistence for widget payload strings.
type SharedStorageRepository interface {
	Get(ctx context.Context, key string) (string, error)
	MGet(ctx context.Context, keys ...string) ([]*string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

var storageKeyPattern = regexp.MustCompile(`^[a-z0-9_]{1,64}$`)

// ValidStorageKey reports whether key may be used in shared storage.
func ValidStorageKey(key string) bool {
	return storageKeyPattern.MatchString(key)
}

// SharedStorageService is the per-user key/value store shared between the
// host app and its widgets.
type SharedStorageService struct {
	repo      SharedStorageRepository
	namespace sharedstore.Namespace
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewSharedStorageService constructs a shared storage service.
func NewSharedStorageService(repo SharedStorageRepository, namespace sharedstore.Namespace, metrics *MetricsService, logger *zap.Logger) *SharedStorageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SharedStorageService{repo: repo, namespace: namespace, metrics: metrics, logger: logger}
}

func (s *SharedStorageService) key(userID, key string) (string, error) {
	if userID == "" {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "missing user")
	}
	if !ValidStorageKey(key) {
		return "", appErrors.Clone(appErrors.ErrValidation, "storage key must match [a-z0-9_]{1,64}")
	}
	return s.namespace.Key(userID, key), nil
}

// Get returns the stored value and whether the key was present.
func (s *SharedStorageService) Get(ctx context.Context, userID, key string) (string, bool, error) {
	full, err := s.key(userID, key)
	if err != nil {
		return "", false, err
	}
	start := time.Now()
	value, err := s.repo.Get(ctx, full)
	duration := time.Since(start)
	if err != nil {
		s.metrics.RecordStorageRead(false, duration)
		if errors.Is(err, appErrors.ErrStorageMiss) {
			return "", false, nil
		}
		s.logger.Warn("storage get failed", zap.String("key", full), zap.Error(err))
		return "", false, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "shared storage unavailable")
	}
	s.metrics.RecordStorageRead(true, duration)
	return value, true, nil
}

// Set stores value under key. A zero ttl keeps it until removed.
func (s *SharedStorageService) Set(ctx context.Context, userID, key, value string, ttl time.Duration) error {
	full, err := s.key(userID, key)
	if err != nil {
		return err
	}
	if ttl < 0 {
		return appErrors.Clone(appErrors.ErrValidation, "ttl must not be negative")
	}
	start := time.Now()
	err = s.repo.Set(ctx, full, value, ttl)
	s.metrics.ObserveStorageWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("storage set failed", zap.String("key", full), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "shared storage unavailable")
	}
	return nil
}

// Remove deletes key; removing an absent key succeeds.
func (s *SharedStorageService) Remove(ctx context.Context, userID, key string) error {
	full, err := s.key(userID, key)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, full); err != nil {
		s.logger.Warn("storage remove failed", zap.String("key", full), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "shared storage unavailable")
	}
	return nil
}

// Contains reports whether key is present.
func (s *SharedStorageService) Contains(ctx context.Context, userID, key string) (bool, error) {
	full, err := s.key(userID, key)
	if err != nil {
		return false, err
	}
	ok, err := s.repo.Exists(ctx, full)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "shared storage unavailable")
	}
	return ok, nil
}

// Snapshot reads the three widget keys in one round-trip.
func (s *SharedStorageService) Snapshot(ctx context.Context, userID string) (models.PayloadSnapshot, error) {
	if userID == "" {
		return models.PayloadSnapshot{}, appErrors.Clone(appErrors.ErrUnauthorized, "missing user")
	}
	keys := []string{
		s.namespace.Key(userID, models.StorageKeyTodayCourses),
		s.namespace.Key(userID, models.StorageKeyUpcomingCourses),
		s.namespace.Key(userID, models.StorageKeyCourses),
	}
	start := time.Now()
	values, err := s.repo.MGet(ctx, keys...)
	duration := time.Since(start)
	if err != nil {
		s.metrics.RecordStorageRead(false, duration)
		return models.PayloadSnapshot{}, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "shared storage unavailable")
	}
	for i := range keys {
		s.metrics.RecordStorageRead(i < len(values) && values[i] != nil, duration)
	}

	snapshot := models.PayloadSnapshot{}
	if len(values) > 0 {
		snapshot.TodayCourses = values[0]
	}
	if len(values) > 1 {
		snapshot.UpcomingCourses = values[1]
	}
	if len(values) > 2 {
		snapshot.Courses = values[2]
	}
	return snapshot, nil
}
