package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/tkt-widget-api/internal/models"
	appErrors "github.com/noah-isme/tkt-widget-api/pkg/errors"
	"github.com/noah-isme/tkt-widget-api/pkg/export"
)

// ExportFormat names a timetable export encoding.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatPDF  ExportFormat = "pdf"
	ExportFormatXLSX ExportFormat = "xlsx"
	ExportFormatICS  ExportFormat = "ics"
)

var exportContentTypes = map[ExportFormat]string{
	ExportFormatCSV:  "text/csv; charset=utf-8",
	ExportFormatPDF:  "application/pdf",
	ExportFormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	ExportFormatICS:  "text/calendar; charset=utf-8",
}

var weekdayNames = [...]string{"", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

var timetableHeaders = []string{"Day", "Slots", "Time", "Course", "Teacher", "Classroom", "Note"}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

type tableRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type calendarRenderer interface {
	Render(events []export.CalendarEvent, stamp time.Time) ([]byte, error)
}

// ExportService renders a user's weekly timetable.
type ExportService struct {
	courses  courseLister
	csv      tableRenderer
	xlsx     tableRenderer
	pdf      pdfRenderer
	ics      calendarRenderer
	location *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewExportService constructs an ExportService with the default renderers.
func NewExportService(courses courseLister, location *time.Location, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.UTC
	}
	return &ExportService{
		courses:  courses,
		csv:      export.NewCSVExporter(),
		xlsx:     export.NewXLSXExporter(),
		pdf:      export.NewPDFExporter(),
		ics:      export.NewICSExporter("TKT Timetable"),
		location: location,
		logger:   logger,
		now:      time.Now,
	}
}

// ParseExportFormat normalises a format query value.
func ParseExportFormat(raw string) (ExportFormat, error) {
	format := ExportFormat(strings.ToLower(strings.TrimSpace(raw)))
	if format == "" {
		format = ExportFormatCSV
	}
	if _, ok := exportContentTypes[format]; !ok {
		return "", appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("unsupported export format %q", raw))
	}
	return format, nil
}

// Export renders userID's timetable in format.
func (s *ExportService) Export(ctx context.Context, userID string, format ExportFormat) (*ExportFile, error) {
	contentType, ok := exportContentTypes[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("unsupported export format %q", format))
	}
	courses, err := s.courses.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	courses = sortTimetable(courses)
	now := s.now().In(s.location)

	var body []byte
	switch format {
	case ExportFormatCSV:
		body, err = s.csv.Render(timetableDataset(courses))
	case ExportFormatXLSX:
		body, err = s.xlsx.Render(timetableDataset(courses))
	case ExportFormatPDF:
		body, err = s.pdf.Render(timetableDataset(courses), "Weekly Timetable")
	case ExportFormatICS:
		body, err = s.ics.Render(s.calendarEvents(courses, now), now)
	}
	if err != nil {
		s.logger.Error("timetable export failed", zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	return &ExportFile{
		Filename:    fmt.Sprintf("timetable_%s.%s", now.Format("20060102"), format),
		ContentType: contentType,
		Body:        body,
	}, nil
}

func sortTimetable(courses []models.CourseRecord) []models.CourseRecord {
	sorted := make([]models.CourseRecord, len(courses))
	copy(sorted, courses)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].DayOfWeek != sorted[j].DayOfWeek {
			return sorted[i].DayOfWeek < sorted[j].DayOfWeek
		}
		return sorted[i].StartSlot < sorted[j].StartSlot
	})
	return sorted
}

func timetableDataset(courses []models.CourseRecord) export.Dataset {
	rows := make([]map[string]string, 0, len(courses))
	for _, c := range courses {
		rows = append(rows, map[string]string{
			"Day":       weekdayName(c.DayOfWeek),
			"Slots":     slotSpan(c.StartSlot, c.EndSlot),
			"Time":      courseTimeRange(c.StartSlot, c.EndSlot),
			"Course":    c.Name,
			"Teacher":   c.Teacher,
			"Classroom": c.Classroom,
			"Note":      stringOrEmpty(c.Note),
		})
	}
	return export.Dataset{Headers: timetableHeaders, Rows: rows}
}

func weekdayName(day int) string {
	if day < 1 || day > 7 {
		return fmt.Sprintf("%d", day)
	}
	return weekdayNames[day]
}

func slotSpan(start, end int) string {
	first := LookupTimeSlot(start).Label
	if start == end {
		return first
	}
	return first + "-" + LookupTimeSlot(end).Label
}

// courseTimeRange joins the first slot's start and the last slot's end.
func courseTimeRange(start, end int) string {
	first, last := LookupTimeSlot(start), LookupTimeSlot(end)
	if !first.Known() || !last.Known() {
		return models.UnknownSlotRange
	}
	return strings.SplitN(first.TimeRange, "-", 2)[0] + "-" + strings.SplitN(last.TimeRange, "-", 2)[1]
}

func (s *ExportService) calendarEvents(courses []models.CourseRecord, now time.Time) []export.CalendarEvent {
	monday := startOfDay(now).AddDate(0, 0, -(ResolveTodayWeekday(now, models.MondayFirst) - 1))
	events := make([]export.CalendarEvent, 0, len(courses))
	for _, c := range courses {
		startOffset, endOffset, ok := SlotClock(c.StartSlot, c.EndSlot)
		if !ok || c.DayOfWeek < 1 || c.DayOfWeek > 7 {
			s.logger.Debug("skipping course without a calendar slot", zap.String("course_id", c.ID))
			continue
		}
		day := monday.AddDate(0, 0, c.DayOfWeek-1)
		description := c.Teacher
		if c.Note != nil && *c.Note != "" {
			description = strings.TrimSpace(description + "\n" + *c.Note)
		}
		events = append(events, export.CalendarEvent{
			UID:         c.ID + "@tkt",
			Summary:     c.Name,
			Location:    c.Classroom,
			Description: description,
			Start:       day.Add(startOffset),
			End:         day.Add(endOffset),
			Weekly:      true,
		})
	}
	return events
}
