package service

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/tkt-widget-api/internal/models"
)

// The functions in this file are pure: no I/O, no clocks, no shared state.

type slotDefinition struct {
	label string
	start string
	end   string
}

var slotTable = map[int]slotDefinition{
	1:  {"1", "08:10", "09:00"},
	2:  {"2", "09:10", "10:00"},
	3:  {"3", "10:20", "11:10"},
	4:  {"4", "11:20", "12:10"},
	5:  {"5", "12:20", "13:10"},
	6:  {"6", "13:20", "14:10"},
	7:  {"7", "14:20", "15:10"},
	8:  {"8", "15:30", "16:20"},
	9:  {"9", "16:30", "17:20"},
	10: {"10", "17:30", "18:20"},
	11: {"A", "18:25", "19:15"},
	12: {"B", "19:20", "20:10"},
	13: {"C", "20:15", "21:05"},
	14: {"D", "21:10", "22:00"},
}

const (
	// FirstSlot and LastSlot bound the fixed slot table.
	FirstSlot = 1
	LastSlot  = 14
)

var tierMaxVisible = map[models.SizeTier]int{
	models.SizeSmall:      3,
	models.SizeMedium:     4,
	models.SizeLarge:      6,
	models.SizeExtraLarge: 8,
}

// courseWire mirrors the storage JSON with pointers so absent required
// fields can be told apart from zero values.
type courseWire struct {
	ID        *string `json:"id" validate:"required"`
	Name      *string `json:"name" validate:"required"`
	Teacher   *string `json:"teacher"`
	Classroom *string `json:"classroom"`
	DayOfWeek *int    `json:"day_of_week" validate:"required"`
	StartSlot *int    `json:"start_slot" validate:"required"`
	EndSlot   *int    `json:"end_slot" validate:"required"`
	Note      *string `json:"note"`
}

var wireValidator = validator.New()

// ParseCourses decodes a storage payload. Empty or malformed payloads
// yield an empty slice; malformed elements are skipped.
func ParseCourses(payload string) []models.CourseRecord {
	courses, _ := ParseCoursesReport(payload)
	return courses
}

// ParseCoursesReport is ParseCourses plus the number of skipped elements.
// A payload that is not a JSON array counts as zero elements, not a skip.
func ParseCoursesReport(payload string) ([]models.CourseRecord, int) {
	courses := []models.CourseRecord{}
	if strings.TrimSpace(payload) == "" {
		return courses, 0
	}

	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(payload), &elements); err != nil {
		return courses, 0
	}

	skipped := 0
	for _, raw := range elements {
		record, err := decodeCourse(raw)
		if err != nil {
			skipped++
			continue
		}
		courses = append(courses, record)
	}
	return courses, skipped
}

func decodeCourse(raw json.RawMessage) (models.CourseRecord, error) {
	var wire courseWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return models.CourseRecord{}, fmt.Errorf("decode course: %w", err)
	}
	if err := wireValidator.Struct(wire); err != nil {
		return models.CourseRecord{}, fmt.Errorf("course missing required field: %w", err)
	}
	return models.CourseRecord{
		ID:        *wire.ID,
		Name:      *wire.Name,
		Teacher:   stringOrEmpty(wire.Teacher),
		Classroom: stringOrEmpty(wire.Classroom),
		DayOfWeek: *wire.DayOfWeek,
		StartSlot: *wire.StartSlot,
		EndSlot:   *wire.EndSlot,
		Note:      wire.Note,
	}, nil
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// NativeWeekday returns t's weekday numbered the way a platform with the
// given origin numbers it. Unknown origins are treated as MondayFirst.
func NativeWeekday(t time.Time, origin models.WeekdayOrigin) int {
	sundayZero := int(t.Weekday())
	if origin == models.SundayFirst {
		return sundayZero + 1
	}
	return (sundayZero+6)%7 + 1
}

// CanonicalWeekday converts a platform-native weekday into Monday=1..Sunday=7.
// It reports false when native is outside 1..7.
func CanonicalWeekday(native int, origin models.WeekdayOrigin) (int, bool) {
	if native < 1 || native > 7 {
		return 0, false
	}
	if origin == models.SundayFirst {
		if native == 1 {
			return 7, true
		}
		return native - 1, true
	}
	return native, true
}

// ResolveTodayWeekday maps now to the canonical weekday used by CourseRecord.
func ResolveTodayWeekday(now time.Time, origin models.WeekdayOrigin) int {
	day, _ := CanonicalWeekday(NativeWeekday(now, origin), origin)
	return day
}

// SelectTodayCourses keeps courses on today, ordered by start slot with
// input order preserved for ties.
func SelectTodayCourses(all []models.CourseRecord, today int) []models.CourseRecord {
	selected := make([]models.CourseRecord, 0, len(all))
	for _, course := range all {
		if course.DayOfWeek == today {
			selected = append(selected, course)
		}
	}
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].StartSlot < selected[j].StartSlot
	})
	return selected
}

// CandidateSources declares the display priority over the storage keys:
// upcoming_courses first, then today's courses taken from today_courses when
// it holds any, otherwise derived from courses.
func CandidateSources(snapshot models.PayloadSnapshot, today int) []models.CandidateSource {
	sources, _ := CandidateSourcesReport(snapshot, today)
	return sources
}

// CandidateSourcesReport is CandidateSources plus the number of skipped
// payload elements across every key it parsed.
func CandidateSourcesReport(snapshot models.PayloadSnapshot, today int) ([]models.CandidateSource, int) {
	upcoming, skipped := ParseCoursesReport(deref(snapshot.UpcomingCourses))

	todayCourses, todaySkipped := ParseCoursesReport(deref(snapshot.TodayCourses))
	skipped += todaySkipped
	if len(todayCourses) == 0 {
		all, allSkipped := ParseCoursesReport(deref(snapshot.Courses))
		skipped += allSkipped
		todayCourses = SelectTodayCourses(all, today)
	}

	return []models.CandidateSource{
		{Kind: models.SourceUpcoming, Courses: upcoming},
		{Kind: models.SourceToday, Courses: todayCourses},
	}, skipped
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// BuildSummary picks the first non-empty source in priority order and
// truncates it to maxVisible rows. A negative maxVisible counts as zero.
func BuildSummary(sources []models.CandidateSource, maxVisible int, now time.Time) models.DisplaySummary {
	if maxVisible < 0 {
		maxVisible = 0
	}
	summary := models.DisplaySummary{
		Title:       models.SummaryTitle{Kind: models.SourceNone},
		VisibleRows: []models.CourseRecord{},
		LastUpdated: now,
	}

	for _, source := range sources {
		if len(source.Courses) == 0 {
			continue
		}
		total := len(source.Courses)
		visible := total
		if visible > maxVisible {
			visible = maxVisible
		}
		summary.Title = models.SummaryTitle{Kind: source.Kind, Count: total}
		summary.VisibleRows = append(summary.VisibleRows, source.Courses[:visible]...)
		summary.OverflowCount = total - visible
		return summary
	}
	return summary
}

// LookupTimeSlot returns the label and clock range of slot, or the
// "?"/"unknown" sentinel for slots outside the table.
func LookupTimeSlot(slot int) models.TimeSlot {
	def, ok := slotTable[slot]
	if !ok {
		return models.TimeSlot{Slot: slot, Label: models.UnknownSlotLabel, TimeRange: models.UnknownSlotRange}
	}
	return models.TimeSlot{Slot: slot, Label: def.label, TimeRange: def.start + "-" + def.end}
}

// TimeSlots lists the fixed table in slot order.
func TimeSlots() []models.TimeSlot {
	slots := make([]models.TimeSlot, 0, LastSlot)
	for slot := FirstSlot; slot <= LastSlot; slot++ {
		slots = append(slots, LookupTimeSlot(slot))
	}
	return slots
}

// SlotClock returns the start of startSlot and the end of endSlot as
// offsets from local midnight.
func SlotClock(startSlot, endSlot int) (time.Duration, time.Duration, bool) {
	startDef, ok := slotTable[startSlot]
	if !ok {
		return 0, 0, false
	}
	endDef, ok := slotTable[endSlot]
	if !ok {
		return 0, 0, false
	}
	start, err := clockOffset(startDef.start)
	if err != nil {
		return 0, 0, false
	}
	end, err := clockOffset(endDef.end)
	if err != nil || end <= start {
		return 0, 0, false
	}
	return start, end, true
}

func clockOffset(hhmm string) (time.Duration, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// ParseSizeTier accepts tier names case-insensitively, with "-" or "_".
func ParseSizeTier(raw string) (models.SizeTier, bool) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "-", "_")
	tier := models.SizeTier(normalized)
	_, ok := tierMaxVisible[tier]
	return tier, ok
}

// MaxVisibleForTier returns how many rows a tier shows; unknown tiers get
// the small-tier budget.
func MaxVisibleForTier(tier models.SizeTier) int {
	if n, ok := tierMaxVisible[tier]; ok {
		return n
	}
	return tierMaxVisible[models.SizeSmall]
}
