package models

import "time"

// CourseRecord is one course as exchanged through widget shared storage.
// DayOfWeek uses Monday=1 .. Sunday=7 regardless of platform conventions.
type CourseRecord struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Teacher   string  `json:"teacher"`
	Classroom string  `json:"classroom"`
	DayOfWeek int     `json:"day_of_week"`
	StartSlot int     `json:"start_slot"`
	EndSlot   int     `json:"end_slot"`
	Note      *string `json:"note"`
}

// Course is the persisted form of a CourseRecord owned by one user.
type Course struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Name      string    `db:"name"`
	Teacher   string    `db:"teacher"`
	Classroom string    `db:"classroom"`
	DayOfWeek int       `db:"day_of_week"`
	StartSlot int       `db:"start_slot"`
	EndSlot   int       `db:"end_slot"`
	Note      *string   `db:"note"`
	Position  int       `db:"position"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Record converts the stored row into its wire shape.
func (c Course) Record() CourseRecord {
	return CourseRecord{
		ID:        c.ID,
		Name:      c.Name,
		Teacher:   c.Teacher,
		Classroom: c.Classroom,
		DayOfWeek: c.DayOfWeek,
		StartSlot: c.StartSlot,
		EndSlot:   c.EndSlot,
		Note:      c.Note,
	}
}

// TimeSlot is the display label and clock range of a slot index.
type TimeSlot struct {
	Slot      int    `json:"slot"`
	Label     string `json:"label"`
	TimeRange string `json:"time_range"`
}

// Known reports whether the slot maps to the fixed table.
func (t TimeSlot) Known() bool {
	return t.Label != UnknownSlotLabel
}

const (
	UnknownSlotLabel = "?"
	UnknownSlotRange = "unknown"
)

// SizeTier is a widget display size.
type SizeTier string

const (
	SizeSmall      SizeTier = "small"
	SizeMedium     SizeTier = "medium"
	SizeLarge      SizeTier = "large"
	SizeExtraLarge SizeTier = "extra_large"
)

// WeekdayOrigin names a platform's native weekday numbering.
type WeekdayOrigin string

const (
	// SundayFirst numbers Sunday=1 .. Saturday=7 (Foundation Calendar).
	SundayFirst WeekdayOrigin = "sunday"
	// MondayFirst numbers Monday=1 .. Sunday=7 (ISO, Dart DateTime).
	MondayFirst WeekdayOrigin = "monday"
)

// Valid reports whether o is a known origin.
func (o WeekdayOrigin) Valid() bool {
	return o == SundayFirst || o == MondayFirst
}

// Storage keys written by the host app.
const (
	StorageKeyTodayCourses    = "today_courses"
	StorageKeyUpcomingCourses = "upcoming_courses"
	StorageKeyCourses         = "courses"
)

// PayloadSnapshot is an immutable read of the widget storage keys. A nil
// field means the key was absent.
type PayloadSnapshot struct {
	TodayCourses    *string
	UpcomingCourses *string
	Courses         *string
}
