package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/tkt-widget-api/internal/models"
	appErrors "github.com/noah-isme/tkt-widget-api/pkg/errors"
	"github.com/noah-isme/tkt-widget-api/pkg/i18n"
)

type stubSnapshotReader struct {
	snapshot models.PayloadSnapshot
	err      error
	calls    int
}

func (s *stubSnapshotReader) Snapshot(ctx context.Context, userID string) (models.PayloadSnapshot, error) {
	s.calls++
	return s.snapshot, s.err
}

// Wednesday 2026-10-21 07:00 in Taipei.
func wednesdayMorning(t *testing.T) (time.Time, *time.Location) {
	loc, err := time.LoadLocation("Asia/Taipei")
	require.NoError(t, err)
	return time.Date(2026, 10, 21, 7, 0, 0, 0, loc), loc
}

func newWidgetServiceForTest(t *testing.T, reader widgetSnapshotReader, metrics *MetricsService) *WidgetService {
	now, loc := wednesdayMorning(t)
	svc := NewWidgetService(reader, metrics, zap.NewNop(), WidgetConfig{
		Location:        loc,
		WeekdayOrigin:   models.MondayFirst,
		RefreshInterval: 15 * time.Minute,
	})
	return svc.WithClock(func() time.Time { return now.UTC() })
}

const wednesdayCourses = `[
	{"id":"a","name":"Math","teacher":"","classroom":"","day_of_week":3,"start_slot":2,"end_slot":2,"note":null},
	{"id":"b","name":"Art","teacher":"","classroom":"","day_of_week":3,"start_slot":1,"end_slot":1,"note":null},
	{"id":"c","name":"PE","teacher":"","classroom":"","day_of_week":5,"start_slot":1,"end_slot":1,"note":null}
]`

func TestWidgetServiceSummaryFromServerClock(t *testing.T) {
	reader := &stubSnapshotReader{snapshot: models.PayloadSnapshot{Courses: strPtr(wednesdayCourses)}}
	metrics := NewMetricsService()
	svc := newWidgetServiceForTest(t, reader, metrics)

	summary, meta, err := svc.Summary(context.Background(), SummaryRequest{UserID: "u1", Tier: models.SizeSmall})
	require.NoError(t, err)

	assert.Equal(t, 3, meta.Weekday)
	assert.False(t, meta.Degraded)
	assert.Equal(t, models.SummaryTitle{Kind: models.SourceToday, Count: 2}, summary.Title)
	require.Len(t, summary.VisibleRows, 2)
	assert.Equal(t, "Art", summary.VisibleRows[0].Name)
	assert.Equal(t, "Math", summary.VisibleRows[1].Name)

	now, _ := wednesdayMorning(t)
	assert.True(t, meta.NextRefresh.Equal(now.Add(15*time.Minute)))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.summaries.WithLabelValues("today", "false")))
}

func TestWidgetServiceSummaryUsesClientWeekday(t *testing.T) {
	reader := &stubSnapshotReader{snapshot: models.PayloadSnapshot{Courses: strPtr(wednesdayCourses)}}
	svc := newWidgetServiceForTest(t, reader, nil)

	// Foundation numbers Friday as 6.
	summary, meta, err := svc.Summary(context.Background(), SummaryRequest{UserID: "u1", Weekday: 6, Origin: models.SundayFirst})
	require.NoError(t, err)
	assert.Equal(t, 5, meta.Weekday)
	require.Len(t, summary.VisibleRows, 1)
	assert.Equal(t, "PE", summary.VisibleRows[0].Name)
}

func TestWidgetServiceSummaryRejectsBadWeekday(t *testing.T) {
	svc := newWidgetServiceForTest(t, &stubSnapshotReader{}, nil)

	_, _, err := svc.Summary(context.Background(), SummaryRequest{UserID: "u1", Weekday: 8})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, _, err = svc.Summary(context.Background(), SummaryRequest{UserID: "u1", Weekday: 2, Origin: "tuesday"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestWidgetServiceSummaryDegradesOnStorageFailure(t *testing.T) {
	reader := &stubSnapshotReader{err: appErrors.Wrap(errors.New("dial tcp"), appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "shared storage unavailable")}
	svc := newWidgetServiceForTest(t, reader, nil)

	summary, meta, err := svc.Summary(context.Background(), SummaryRequest{UserID: "u1", Tier: models.SizeLarge})
	require.NoError(t, err)
	assert.True(t, meta.Degraded)
	assert.Equal(t, models.SourceNone, summary.Title.Kind)
	assert.Empty(t, summary.VisibleRows)
}

func TestWidgetServiceSummaryUpcomingWins(t *testing.T) {
	reader := &stubSnapshotReader{snapshot: models.PayloadSnapshot{
		UpcomingCourses: strPtr(`[{"id":"a","name":"Math","day_of_week":3,"start_slot":2,"end_slot":2}]`),
		Courses:         strPtr(wednesdayCourses),
	}}
	svc := newWidgetServiceForTest(t, reader, nil)

	summary, _, err := svc.Summary(context.Background(), SummaryRequest{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, models.SummaryTitle{Kind: models.SourceUpcoming, Count: 1}, summary.Title)
}

func TestWidgetServiceSummaryCountsSkipped(t *testing.T) {
	reader := &stubSnapshotReader{snapshot: models.PayloadSnapshot{Courses: strPtr(`[{"id":"a"},{"id":"b","name":"Art","day_of_week":3,"start_slot":1,"end_slot":1}]`)}}
	metrics := NewMetricsService()
	svc := newWidgetServiceForTest(t, reader, metrics)

	summary, meta, err := svc.Summary(context.Background(), SummaryRequest{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, 1, meta.SkippedItems)
	assert.Len(t, summary.VisibleRows, 1)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.parseSkipped))
}

func TestWidgetServicePlaceholder(t *testing.T) {
	svc := newWidgetServiceForTest(t, &stubSnapshotReader{}, nil)

	summary := svc.Placeholder(models.SizeMedium)

	assert.Equal(t, models.SummaryTitle{Kind: models.SourceToday, Count: 1}, summary.Title)
	require.Len(t, summary.VisibleRows, 1)
	assert.Equal(t, PlaceholderCourseID, summary.VisibleRows[0].ID)
	assert.True(t, summary.Placeholder)
	assert.Equal(t, i18n.KeyLoading, summary.VisibleRows[0].Name)
}
