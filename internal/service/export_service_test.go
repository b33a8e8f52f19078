package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/noah-isme/tkt-widget-api/internal/models"
	appErrors "github.com/noah-isme/tkt-widget-api/pkg/errors"
)

func newExportServiceForTest(t *testing.T, lister courseLister) *ExportService {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Taipei")
	require.NoError(t, err)
	svc := NewExportService(lister, loc, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 10, 21, 7, 0, 0, 0, loc) }
	return svc
}

func exportFixture() []models.CourseRecord {
	note := "bring calculator"
	return []models.CourseRecord{
		{ID: "pe", Name: "PE", Classroom: "Gym", DayOfWeek: 5, StartSlot: 1, EndSlot: 1},
		{ID: "math", Name: "Math", Teacher: "Lin", Classroom: "A101", DayOfWeek: 3, StartSlot: 2, EndSlot: 3, Note: &note},
		{ID: "night", Name: "Seminar", DayOfWeek: 1, StartSlot: 11, EndSlot: 12},
	}
}

func TestParseExportFormat(t *testing.T) {
	format, err := ParseExportFormat("")
	require.NoError(t, err)
	assert.Equal(t, ExportFormatCSV, format)

	format, err = ParseExportFormat(" XLSX ")
	require.NoError(t, err)
	assert.Equal(t, ExportFormatXLSX, format)

	_, err = ParseExportFormat("docx")
	assert.True(t, errors.Is(err, appErrors.ErrUnsupportedFormat))
}

func TestExportServiceCSV(t *testing.T) {
	svc := newExportServiceForTest(t, &stubCourseLister{courses: exportFixture()})

	file, err := svc.Export(context.Background(), "u1", ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "timetable_20261021.csv", file.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)

	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(string(file.Body), "\ufeff")), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Day,Slots,Time,Course,Teacher,Classroom,Note", strings.TrimSpace(lines[0]))
	assert.True(t, strings.HasPrefix(lines[1], "Mon,A-B,18:25-20:10,Seminar"))
	assert.True(t, strings.HasPrefix(lines[2], "Wed,2-3,09:10-11:10,Math,Lin,A101,bring calculator"))
	assert.True(t, strings.HasPrefix(lines[3], "Fri,1,08:10-09:00,PE"))
}

func TestExportServiceXLSX(t *testing.T) {
	svc := newExportServiceForTest(t, &stubCourseLister{courses: exportFixture()})

	file, err := svc.Export(context.Background(), "u1", ExportFormatXLSX)
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(file.Body))
	require.NoError(t, err)
	defer wb.Close()
	value, err := wb.GetCellValue("Timetable", "D3")
	require.NoError(t, err)
	assert.Equal(t, "Math", value)
}

func TestExportServicePDF(t *testing.T) {
	svc := newExportServiceForTest(t, &stubCourseLister{courses: exportFixture()})

	file, err := svc.Export(context.Background(), "u1", ExportFormatPDF)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(file.Body, []byte("%PDF")))
}

func TestExportServiceICSAnchorsOnCurrentWeek(t *testing.T) {
	svc := newExportServiceForTest(t, &stubCourseLister{courses: exportFixture()})

	file, err := svc.Export(context.Background(), "u1", ExportFormatICS)
	require.NoError(t, err)
	body := string(file.Body)

	assert.Equal(t, 3, strings.Count(body, "BEGIN:VEVENT"))
	// Wednesday 2026-10-21 09:10 Taipei is 01:10 UTC.
	assert.Contains(t, body, "DTSTART:20261021T011000Z")
	assert.Contains(t, body, "DTEND:20261021T031000Z")
	// Monday evening slot A.
	assert.Contains(t, body, "DTSTART:20261019T102500Z")
	assert.Contains(t, body, "UID:math@tkt")
}

func TestExportServiceErrors(t *testing.T) {
	svc := newExportServiceForTest(t, &stubCourseLister{err: errors.New("db down")})

	_, err := svc.Export(context.Background(), "u1", ExportFormatCSV)
	assert.Error(t, err)

	_, err = svc.Export(context.Background(), "u1", ExportFormat("docx"))
	assert.True(t, errors.Is(err, appErrors.ErrUnsupportedFormat))
}
