package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/tkt-widget-api/internal/models"
	"github.com/noah-isme/tkt-widget-api/pkg/jobs"
)

type courseLister interface {
	List(ctx context.Context, userID string) ([]models.CourseRecord, error)
}

type storageWriter interface {
	Set(ctx context.Context, userID, key, value string, ttl time.Duration) error
}

// PublishService writes the widget storage keys from the user's courses.
type PublishService struct {
	courses         courseLister
	storage         storageWriter
	location        *time.Location
	refreshInterval time.Duration
	logger          *zap.Logger
}

// NewPublishService constructs a publish service.
func NewPublishService(courses courseLister, storage storageWriter, location *time.Location, refreshInterval time.Duration, logger *zap.Logger) *PublishService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.UTC
	}
	if refreshInterval <= 0 {
		refreshInterval = 15 * time.Minute
	}
	return &PublishService{courses: courses, storage: storage, location: location, refreshInterval: refreshInterval, logger: logger}
}

// PublishResult summarises one publish.
type PublishResult struct {
	Courses  int
	Today    int
	Upcoming int
}

// Publish writes courses (no expiry), today_courses (until local midnight)
// and upcoming_courses (for one refresh interval).
func (s *PublishService) Publish(ctx context.Context, userID string, now time.Time) (PublishResult, error) {
	all, err := s.courses.List(ctx, userID)
	if err != nil {
		return PublishResult{}, err
	}

	local := now.In(s.location)
	today := SelectTodayCourses(all, ResolveTodayWeekday(local, models.MondayFirst))
	upcoming := UpcomingCourses(today, local)

	writes := []struct {
		key     string
		courses []models.CourseRecord
		ttl     time.Duration
	}{
		{models.StorageKeyCourses, all, 0},
		{models.StorageKeyTodayCourses, today, untilNextMidnight(local)},
		{models.StorageKeyUpcomingCourses, upcoming, s.refreshInterval},
	}
	for _, w := range writes {
		payload, err := encodeCourses(w.courses)
		if err != nil {
			return PublishResult{}, err
		}
		if err := s.storage.Set(ctx, userID, w.key, payload, w.ttl); err != nil {
			return PublishResult{}, fmt.Errorf("publish %s: %w", w.key, err)
		}
	}

	result := PublishResult{Courses: len(all), Today: len(today), Upcoming: len(upcoming)}
	s.logger.Debug("widget payloads published",
		zap.String("user_id", userID),
		zap.Int("courses", result.Courses),
		zap.Int("today", result.Today),
		zap.Int("upcoming", result.Upcoming),
	)
	return result, nil
}

// UpcomingCourses keeps today's courses whose last slot has not ended at
// now. Courses with slots outside the table are dropped.
func UpcomingCourses(today []models.CourseRecord, now time.Time) []models.CourseRecord {
	sinceMidnight := now.Sub(startOfDay(now))
	upcoming := make([]models.CourseRecord, 0, len(today))
	for _, course := range today {
		_, end, ok := SlotClock(course.StartSlot, course.EndSlot)
		if !ok {
			continue
		}
		if end > sinceMidnight {
			upcoming = append(upcoming, course)
		}
	}
	return upcoming
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func untilNextMidnight(t time.Time) time.Duration {
	next := startOfDay(t).AddDate(0, 0, 1)
	return next.Sub(t)
}

func encodeCourses(courses []models.CourseRecord) (string, error) {
	if courses == nil {
		courses = []models.CourseRecord{}
	}
	raw, err := json.Marshal(courses)
	if err != nil {
		return "", fmt.Errorf("encode courses: %w", err)
	}
	return string(raw), nil
}

// PublishJobType is the queue job type for widget publishes.
const PublishJobType = "widget.publish"

// PublishWorker runs publishes on the background job queue, coalescing
// repeated requests for the same user.
type PublishWorker struct {
	publisher *PublishService
	queue     *jobs.Queue
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// NewPublishWorker builds the worker and its queue. Call Start before use.
func NewPublishWorker(publisher *PublishService, metrics *MetricsService, cfg jobs.QueueConfig) *PublishWorker {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	w := &PublishWorker{publisher: publisher, metrics: metrics, logger: cfg.Logger, now: time.Now}
	w.queue = jobs.NewQueue("widget-publish", w.Handle, cfg)
	return w
}

// Start launches the queue workers.
func (w *PublishWorker) Start(ctx context.Context) {
	w.queue.Start(ctx)
}

// Stop drains the workers.
func (w *PublishWorker) Stop() {
	w.queue.Stop()
}

// EnqueuePublish schedules a publish for userID. It reports false when one
// is already pending.
func (w *PublishWorker) EnqueuePublish(userID string) (bool, error) {
	queued, err := w.queue.Enqueue(jobs.Job{Type: PublishJobType, Key: userID, Payload: userID})
	if err != nil {
		return false, err
	}
	if !queued {
		w.metrics.RecordPublish("coalesced")
	}
	return queued, nil
}

// Handle processes one publish job.
func (w *PublishWorker) Handle(ctx context.Context, job jobs.Job) error {
	userID, ok := job.Payload.(string)
	if !ok || userID == "" {
		w.metrics.RecordPublish("failed")
		w.logger.Error("publish job without user", zap.String("job_id", job.ID))
		return nil
	}
	if _, err := w.publisher.Publish(ctx, userID, w.now()); err != nil {
		w.metrics.RecordPublish("retry")
		return err
	}
	w.metrics.RecordPublish("ok")
	return nil
}
