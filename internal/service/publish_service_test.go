package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/tkt-widget-api/internal/models"
	"github.com/noah-isme/tkt-widget-api/pkg/jobs"
)

type stubCourseLister struct {
	courses []models.CourseRecord
	err     error
	calls   int32
}

func (s *stubCourseLister) List(ctx context.Context, userID string) ([]models.CourseRecord, error) {
	atomic.AddInt32(&s.calls, 1)
	return s.courses, s.err
}

func publishFixture() []models.CourseRecord {
	return []models.CourseRecord{
		{ID: "a", Name: "Math", DayOfWeek: 3, StartSlot: 2, EndSlot: 2},
		{ID: "b", Name: "Art", DayOfWeek: 3, StartSlot: 1, EndSlot: 1},
		{ID: "c", Name: "PE", DayOfWeek: 5, StartSlot: 1, EndSlot: 1},
	}
}

func TestPublishServiceWritesWidgetKeys(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Taipei")
	require.NoError(t, err)
	store := newMemoryStore()
	storage := newStorageService(store, nil)
	svc := NewPublishService(&stubCourseLister{courses: publishFixture()}, storage, loc, 15*time.Minute, zap.NewNop())

	now := time.Date(2026, 10, 21, 9, 30, 0, 0, loc)
	result, err := svc.Publish(context.Background(), "u1", now)
	require.NoError(t, err)
	assert.Equal(t, PublishResult{Courses: 3, Today: 2, Upcoming: 1}, result)

	all, ok := store.value("widget:u1:courses")
	require.True(t, ok)
	assert.Len(t, ParseCourses(all), 3)
	assert.Equal(t, time.Duration(0), store.ttl("widget:u1:courses"))

	today, ok := store.value("widget:u1:today_courses")
	require.True(t, ok)
	parsedToday := ParseCourses(today)
	require.Len(t, parsedToday, 2)
	assert.Equal(t, "Art", parsedToday[0].Name)
	assert.Equal(t, 14*time.Hour+30*time.Minute, store.ttl("widget:u1:today_courses"))

	upcoming, ok := store.value("widget:u1:upcoming_courses")
	require.True(t, ok)
	parsedUpcoming := ParseCourses(upcoming)
	require.Len(t, parsedUpcoming, 1)
	assert.Equal(t, "Math", parsedUpcoming[0].Name)
	assert.Equal(t, 15*time.Minute, store.ttl("widget:u1:upcoming_courses"))
}

func TestPublishServiceEmptyTimetableWritesArrays(t *testing.T) {
	store := newMemoryStore()
	svc := NewPublishService(&stubCourseLister{}, newStorageService(store, nil), time.UTC, time.Minute, nil)

	_, err := svc.Publish(context.Background(), "u1", time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	for _, key := range []string{"courses", "today_courses", "upcoming_courses"} {
		raw, ok := store.value("widget:u1:" + key)
		require.True(t, ok, key)
		var decoded []models.CourseRecord
		require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
		assert.Equal(t, "[]", raw)
	}
}

func TestPublishServicePropagatesErrors(t *testing.T) {
	svc := NewPublishService(&stubCourseLister{err: errors.New("db down")}, newStorageService(newMemoryStore(), nil), nil, 0, nil)
	_, err := svc.Publish(context.Background(), "u1", time.Now())
	assert.Error(t, err)

	store := newMemoryStore()
	store.err = errors.New("redis down")
	svc = NewPublishService(&stubCourseLister{courses: publishFixture()}, newStorageService(store, nil), nil, 0, nil)
	_, err = svc.Publish(context.Background(), "u1", time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish courses")
}

func TestUpcomingCourses(t *testing.T) {
	today := []models.CourseRecord{
		{ID: "first", StartSlot: 1, EndSlot: 1},
		{ID: "block", StartSlot: 1, EndSlot: 3},
		{ID: "evening", StartSlot: 11, EndSlot: 12},
		{ID: "broken", StartSlot: 0, EndSlot: 1},
	}
	now := time.Date(2026, 10, 21, 10, 0, 0, 0, time.UTC)

	got := UpcomingCourses(today, now)

	ids := []string{}
	for _, c := range got {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"block", "evening"}, ids)
}

func TestPublishWorkerProcessesAndCoalesces(t *testing.T) {
	store := newMemoryStore()
	lister := &stubCourseLister{courses: publishFixture()}
	metrics := NewMetricsService()
	publisher := NewPublishService(lister, newStorageService(store, nil), time.UTC, time.Minute, nil)
	worker := NewPublishWorker(publisher, metrics, jobs.QueueConfig{Workers: 1, RetryDelay: 10 * time.Millisecond})

	_, err := worker.EnqueuePublish("u1")
	assert.Error(t, err, "queue must be started first")

	worker.Start(context.Background())
	defer worker.Stop()

	queued, err := worker.EnqueuePublish("u1")
	require.NoError(t, err)
	assert.True(t, queued)

	assert.Eventually(t, func() bool {
		_, ok := store.value("widget:u1:courses")
		return ok
	}, time.Second, 10*time.Millisecond)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&lister.calls), int32(1))
}

func TestPublishWorkerHandleRejectsMissingUser(t *testing.T) {
	worker := NewPublishWorker(NewPublishService(&stubCourseLister{}, newStorageService(newMemoryStore(), nil), nil, 0, nil), nil, jobs.QueueConfig{})
	assert.NoError(t, worker.Handle(context.Background(), jobs.Job{ID: "j1", Payload: 42}))
}
