package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tkt-widget-api/internal/dto"
	"github.com/noah-isme/tkt-widget-api/internal/models"
	"github.com/noah-isme/tkt-widget-api/internal/service"
	appErrors "github.com/noah-isme/tkt-widget-api/pkg/errors"
	"github.com/noah-isme/tkt-widget-api/pkg/response"
)

type courseService interface {
	List(ctx context.Context, userID string) ([]models.CourseRecord, error)
	Replace(ctx context.Context, userID string, req dto.ReplaceCoursesRequest) ([]models.CourseRecord, bool, error)
}

type timetableExporter interface {
	Export(ctx context.Context, userID string, format service.ExportFormat) (*service.ExportFile, error)
}

// CourseHandler exposes the host app's timetable.
type CourseHandler struct {
	courses  courseService
	exporter timetableExporter
}

// NewCourseHandler builds a course handler. exporter may be nil when exports
// are disabled.
func NewCourseHandler(courses courseService, exporter timetableExporter) *CourseHandler {
	return &CourseHandler{courses: courses, exporter: exporter}
}

// List godoc
// @Summary List the caller's courses
// @Tags Courses
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	userID, err := userIDFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	courses, err := h.courses.List(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.CourseListResponse{Courses: toCourseResponses(courses)}, nil)
}

// Replace godoc
// @Summary Replace the caller's courses
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body dto.ReplaceCoursesRequest true "Full course list"
// @Success 200 {object} response.Envelope
// @Router /courses [put]
func (h *CourseHandler) Replace(c *gin.Context) {
	userID, err := userIDFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.ReplaceCoursesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid course payload"))
		return
	}
	courses, queued, err := h.courses.Replace(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.CourseListResponse{Courses: toCourseResponses(courses), Published: queued}, nil)
}

// Export godoc
// @Summary Download the weekly timetable
// @Tags Courses
// @Produce octet-stream
// @Param format query string false "csv, pdf, xlsx or ics"
// @Success 200 {file} file
// @Router /courses/export [get]
func (h *CourseHandler) Export(c *gin.Context) {
	if h.exporter == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnavailable, "exports are disabled"))
		return
	}
	userID, err := userIDFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exporter.Export(c.Request.Context(), userID, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

func toCourseResponses(courses []models.CourseRecord) []dto.CourseResponse {
	out := make([]dto.CourseResponse, 0, len(courses))
	for _, course := range courses {
		out = append(out, dto.CourseResponse{
			ID:        course.ID,
			Name:      course.Name,
			Teacher:   course.Teacher,
			Classroom: course.Classroom,
			DayOfWeek: course.DayOfWeek,
			StartSlot: course.StartSlot,
			EndSlot:   course.EndSlot,
			Note:      course.Note,
			TimeRange: service.LookupTimeSlot(course.StartSlot).TimeRange,
		})
	}
	return out
}
