package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/noah-isme/tkt-widget-api/internal/dto"
	"github.com/noah-isme/tkt-widget-api/internal/middleware"
	"github.com/noah-isme/tkt-widget-api/internal/models"
	"github.com/noah-isme/tkt-widget-api/internal/service"
	appErrors "github.com/noah-isme/tkt-widget-api/pkg/errors"
	"github.com/noah-isme/tkt-widget-api/pkg/i18n"
	"github.com/noah-isme/tkt-widget-api/pkg/response"
)

type widgetService interface {
	Summary(ctx context.Context, req service.SummaryRequest) (*models.DisplaySummary, service.SummaryMeta, error)
	Placeholder(tier models.SizeTier) models.DisplaySummary
	NextRefresh(now time.Time) time.Time
}

type publishScheduler interface {
	EnqueuePublish(userID string) (bool, error)
}

type tokenIssuer interface {
	Issue(userID string, scope models.TokenScope) (*service.IssuedToken, error)
}

// WidgetHandler serves home-screen widget refreshes.
type WidgetHandler struct {
	widgets       widgetService
	publisher     publishScheduler
	tokens        tokenIssuer
	defaultLocale language.Tag
}

// NewWidgetHandler builds a widget handler. publisher may be nil when
// publishing is disabled.
func NewWidgetHandler(widgets widgetService, publisher publishScheduler, tokens tokenIssuer, defaultLocale language.Tag) *WidgetHandler {
	return &WidgetHandler{widgets: widgets, publisher: publisher, tokens: tokens, defaultLocale: defaultLocale}
}

// Summary godoc
// @Summary Build the widget display summary
// @Tags Widget
// @Produce json
// @Param tier query string false "small, medium, large or extra_large"
// @Param weekday query int false "Client platform weekday (1-7)"
// @Param weekday_origin query string false "sunday or monday"
// @Param lang query string false "Locale, e.g. zh-TW or en"
// @Success 200 {object} response.Envelope
// @Router /widget/summary [get]
func (h *WidgetHandler) Summary(c *gin.Context) {
	userID, err := userIDFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	tier, err := tierFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	req := service.SummaryRequest{
		UserID: userID,
		Tier:   tier,
		Origin: models.WeekdayOrigin(strings.ToLower(strings.TrimSpace(c.Query("weekday_origin")))),
	}
	if raw := strings.TrimSpace(c.Query("weekday")); raw != "" {
		weekday, convErr := strconv.Atoi(raw)
		if convErr != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "weekday must be an integer"))
			return
		}
		if weekday == 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "weekday must be between 1 and 7"))
			return
		}
		req.Weekday = weekday
	}

	summary, meta, err := h.widgets.Summary(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	tag := h.locale(c)
	out := buildSummaryResponse(*summary, i18n.Printer(tag), meta.Degraded)
	out.Tier = string(meta.Tier)
	out.Weekday = meta.Weekday
	out.Locale = tag.String()
	out.NextRefresh = meta.NextRefresh

	middleware.SetDegraded(c, meta.Degraded)
	if meta.SkippedItems > 0 {
		middleware.SetMeta(c, "skipped_items", meta.SkippedItems)
	}
	response.JSON(c, http.StatusOK, out, middleware.ExtractMeta(c))
}

// Placeholder godoc
// @Summary Summary shown before the first refresh
// @Tags Widget
// @Produce json
// @Param tier query string false "Widget size tier"
// @Param lang query string false "Locale"
// @Success 200 {object} response.Envelope
// @Router /widget/placeholder [get]
func (h *WidgetHandler) Placeholder(c *gin.Context) {
	tier, err := tierFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	tag := h.locale(c)
	summary := h.widgets.Placeholder(tier)
	out := buildSummaryResponse(summary, i18n.Printer(tag), false)
	out.Tier = string(tier)
	out.Locale = tag.String()
	out.NextRefresh = h.widgets.NextRefresh(summary.LastUpdated)
	response.JSON(c, http.StatusOK, out, middleware.ExtractMeta(c))
}

// TimeSlots godoc
// @Summary List the fixed class period table
// @Tags Widget
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /widget/time-slots [get]
func (h *WidgetHandler) TimeSlots(c *gin.Context) {
	response.JSON(c, http.StatusOK, service.TimeSlots(), nil)
}

// Refresh godoc
// @Summary Ask the server to republish widget payloads
// @Tags Widget
// @Produce json
// @Success 202 {object} response.Envelope
// @Router /widget/refresh [post]
func (h *WidgetHandler) Refresh(c *gin.Context) {
	userID, err := userIDFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.publisher == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnavailable, "widget publishing is disabled"))
		return
	}
	queued, err := h.publisher.EnqueuePublish(userID)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "failed to schedule refresh"))
		return
	}
	response.JSON(c, http.StatusAccepted, dto.RefreshResponse{Queued: queued}, nil)
}

// WidgetToken godoc
// @Summary Issue a read-only token for embedding in a widget
// @Tags Widget
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /widget/token [post]
func (h *WidgetHandler) WidgetToken(c *gin.Context) {
	userID, err := userIDFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	token, err := h.tokens.Issue(userID, models.ScopeWidget)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, token, nil)
}

func (h *WidgetHandler) locale(c *gin.Context) language.Tag {
	return i18n.Resolve(c.Query("lang"), c.GetHeader("Accept-Language"), h.defaultLocale)
}

func tierFromQuery(c *gin.Context) (models.SizeTier, error) {
	raw := c.Query("tier")
	if strings.TrimSpace(raw) == "" {
		return models.SizeSmall, nil
	}
	tier, ok := service.ParseSizeTier(raw)
	if !ok {
		return "", appErrors.Clone(appErrors.ErrValidation, "tier must be small, medium, large or extra_large")
	}
	return tier, nil
}

func buildSummaryResponse(summary models.DisplaySummary, p *message.Printer, degraded bool) dto.WidgetSummaryResponse {
	out := dto.WidgetSummaryResponse{
		Source:        string(summary.Title.Kind),
		Count:         summary.Title.Count,
		Rows:          make([]dto.WidgetRow, 0, len(summary.VisibleRows)),
		OverflowCount: summary.OverflowCount,
		Degraded:      degraded,
		LastUpdated:   summary.LastUpdated,
	}

	switch {
	case degraded:
		out.Title = p.Sprintf(i18n.KeyLoadFailed)
	case summary.Title.Kind == models.SourceUpcoming:
		out.Title = p.Sprintf(i18n.KeyUpcoming, summary.Title.Count)
	case summary.Title.Kind == models.SourceToday:
		out.Title = p.Sprintf(i18n.KeyToday, summary.Title.Count)
	default:
		out.Title = p.Sprintf(i18n.KeyNoCourses)
	}

	for _, course := range summary.VisibleRows {
		slot := service.LookupTimeSlot(course.StartSlot)
		timeRange := slot.TimeRange
		if !slot.Known() {
			timeRange = p.Sprintf(i18n.KeyUnknownTime)
		}
		name := course.Name
		if summary.Placeholder {
			name = p.Sprintf(i18n.KeyLoading)
		}
		out.Rows = append(out.Rows, dto.WidgetRow{
			ID:        course.ID,
			Name:      name,
			Teacher:   course.Teacher,
			Classroom: course.Classroom,
			StartSlot: course.StartSlot,
			EndSlot:   course.EndSlot,
			SlotLabel: slot.Label,
			TimeRange: timeRange,
			Note:      course.Note,
		})
	}

	if summary.OverflowCount > 0 {
		out.OverflowText = p.Sprintf(i18n.KeyOverflow, summary.OverflowCount)
	}
	if len(out.Rows) == 0 && !degraded {
		out.EmptyHint = p.Sprintf(i18n.KeyEmptyHint)
	}
	return out
}
