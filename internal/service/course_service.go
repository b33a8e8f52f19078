package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tkt-widget-api/internal/dto"
	"github.com/noah-isme/tkt-widget-api/internal/models"
	appErrors "github.com/noah-isme/tkt-widget-api/pkg/errors"
)

type courseStore interface {
	ListByUser(ctx context.Context, userID string) ([]models.Course, error)
	ReplaceForUser(ctx context.Context, userID string, courses []models.Course) error
}

type publishEnqueuer interface {
	EnqueuePublish(userID string) (bool, error)
}

// CourseService manages the host app's timetable.
type CourseService struct {
	repo      courseStore
	publisher publishEnqueuer
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewCourseService constructs a course service. publisher may be nil when
// widget publishing is disabled.
func NewCourseService(repo courseStore, publisher publishEnqueuer, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CourseService{repo: repo, publisher: publisher, validator: validate, metrics: metrics, logger: logger}
}

// List returns the user's courses ordered by day and start slot.
func (s *CourseService) List(ctx context.Context, userID string) ([]models.CourseRecord, error) {
	if userID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "missing user")
	}
	start := time.Now()
	rows, err := s.repo.ListByUser(ctx, userID)
	s.metrics.ObserveDBQuery("courses_list", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses")
	}
	records := make([]models.CourseRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.Record())
	}
	return records, nil
}

// Replace validates and stores the full course list, then schedules a
// widget publish. It reports whether a publish was queued.
func (s *CourseService) Replace(ctx context.Context, userID string, req dto.ReplaceCoursesRequest) ([]models.CourseRecord, bool, error) {
	if userID == "" {
		return nil, false, appErrors.Clone(appErrors.ErrUnauthorized, "missing user")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	seen := make(map[string]struct{}, len(req.Courses))
	rows := make([]models.Course, 0, len(req.Courses))
	for _, in := range req.Courses {
		if in.ID != "" {
			if _, dup := seen[in.ID]; dup {
				return nil, false, appErrors.Clone(appErrors.ErrValidation, "duplicate course id "+in.ID)
			}
			seen[in.ID] = struct{}{}
		}
		rows = append(rows, models.Course{
			ID:        in.ID,
			Name:      in.Name,
			Teacher:   in.Teacher,
			Classroom: in.Classroom,
			DayOfWeek: in.DayOfWeek,
			StartSlot: in.StartSlot,
			EndSlot:   in.EndSlot,
			Note:      in.Note,
		})
	}

	start := time.Now()
	err := s.repo.ReplaceForUser(ctx, userID, rows)
	s.metrics.ObserveDBQuery("courses_replace", time.Since(start))
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save courses")
	}

	records := make([]models.CourseRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.Record())
	}

	queued := false
	if s.publisher != nil {
		queued, err = s.publisher.EnqueuePublish(userID)
		if err != nil {
			s.logger.Warn("failed to enqueue widget publish", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return records, queued, nil
}
