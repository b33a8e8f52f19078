package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/tkt-widget-api/internal/models"
	appErrors "github.com/noah-isme/tkt-widget-api/pkg/errors"
	"github.com/noah-isme/tkt-widget-api/pkg/i18n"
)

type widgetSnapshotReader interface {
	Snapshot(ctx context.Context, userID string) (models.PayloadSnapshot, error)
}

// WidgetConfig holds the server-side defaults for summaries.
type WidgetConfig struct {
	Location        *time.Location
	WeekdayOrigin   models.WeekdayOrigin
	RefreshInterval time.Duration
}

// SummaryRequest describes one widget refresh. Weekday is the client's
// platform-native weekday under Origin; zero means use the server clock.
type SummaryRequest struct {
	UserID  string
	Tier    models.SizeTier
	Weekday int
	Origin  models.WeekdayOrigin
}

// SummaryMeta carries facts about how a summary was produced.
type SummaryMeta struct {
	Tier         models.SizeTier
	Weekday      int
	Degraded     bool
	SkippedItems int
	NextRefresh  time.Time
}

// WidgetService turns shared storage payloads into display summaries.
type WidgetService struct {
	store   widgetSnapshotReader
	metrics *MetricsService
	logger  *zap.Logger
	config  WidgetConfig
	now     func() time.Time
}

// NewWidgetService constructs a widget service.
func NewWidgetService(store widgetSnapshotReader, metrics *MetricsService, logger *zap.Logger, cfg WidgetConfig) *WidgetService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if !cfg.WeekdayOrigin.Valid() {
		cfg.WeekdayOrigin = models.MondayFirst
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = 15 * time.Minute
	}
	return &WidgetService{store: store, metrics: metrics, logger: logger, config: cfg, now: time.Now}
}

// WithClock overrides the time source, used by tests.
func (s *WidgetService) WithClock(now func() time.Time) *WidgetService {
	if now != nil {
		s.now = now
	}
	return s
}

// Location returns the configured widget timezone.
func (s *WidgetService) Location() *time.Location {
	return s.config.Location
}

// Summary builds the display summary for a refresh. Storage failures are
// reported through SummaryMeta.Degraded rather than as an error.
func (s *WidgetService) Summary(ctx context.Context, req SummaryRequest) (*models.DisplaySummary, SummaryMeta, error) {
	now := s.now().In(s.config.Location)
	tier := req.Tier
	if tier == "" {
		tier = models.SizeSmall
	}
	meta := SummaryMeta{Tier: tier, NextRefresh: s.NextRefresh(now)}

	today, err := s.resolveWeekday(now, req)
	if err != nil {
		return nil, meta, err
	}
	meta.Weekday = today

	snapshot, err := s.store.Snapshot(ctx, req.UserID)
	if err != nil {
		if appErrors.FromError(err).Code == appErrors.ErrUnauthorized.Code {
			return nil, meta, err
		}
		s.logger.Warn("widget storage unavailable, serving empty summary", zap.String("user_id", req.UserID), zap.Error(err))
		snapshot = models.PayloadSnapshot{}
		meta.Degraded = true
	}

	sources, skipped := CandidateSourcesReport(snapshot, today)
	meta.SkippedItems = skipped
	if skipped > 0 {
		s.logger.Debug("skipped malformed course elements", zap.String("user_id", req.UserID), zap.Int("skipped", skipped))
		s.metrics.RecordSkippedElements(skipped)
	}

	summary := BuildSummary(sources, MaxVisibleForTier(tier), now)
	s.metrics.RecordSummary(summary.Title.Kind, meta.Degraded)
	return &summary, meta, nil
}

func (s *WidgetService) resolveWeekday(now time.Time, req SummaryRequest) (int, error) {
	if req.Weekday == 0 {
		return ResolveTodayWeekday(now, s.config.WeekdayOrigin), nil
	}
	origin := req.Origin
	if origin == "" {
		origin = s.config.WeekdayOrigin
	}
	if !origin.Valid() {
		return 0, appErrors.Clone(appErrors.ErrValidation, "weekday_origin must be sunday or monday")
	}
	day, ok := CanonicalWeekday(req.Weekday, origin)
	if !ok {
		return 0, appErrors.Clone(appErrors.ErrValidation, "weekday must be between 1 and 7")
	}
	return day, nil
}

// PlaceholderCourseID identifies the synthetic loading row.
const PlaceholderCourseID = "placeholder"

// Placeholder returns the summary shown before the first real refresh: a
// single loading row whose name is the i18n loading key.
func (s *WidgetService) Placeholder(tier models.SizeTier) models.DisplaySummary {
	row := models.CourseRecord{
		ID:        PlaceholderCourseID,
		Name:      i18n.KeyLoading,
		DayOfWeek: 1,
		StartSlot: FirstSlot,
		EndSlot:   FirstSlot,
	}
	sources := []models.CandidateSource{{Kind: models.SourceToday, Courses: []models.CourseRecord{row}}}
	summary := BuildSummary(sources, MaxVisibleForTier(tier), s.now().In(s.config.Location))
	summary.Placeholder = true
	return summary
}

// NextRefresh is the time the widget should ask again.
func (s *WidgetService) NextRefresh(now time.Time) time.Time {
	return now.Add(s.config.RefreshInterval)
}
