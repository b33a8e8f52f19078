package dto

// CourseInput is one course sent by the host app.
type CourseInput struct {
	ID        string  `json:"id" validate:"omitempty,max=64"`
	Name      string  `json:"name" validate:"required,max=120"`
	Teacher   string  `json:"teacher" validate:"max=120"`
	Classroom string  `json:"classroom" validate:"max=120"`
	DayOfWeek int     `json:"day_of_week" validate:"required,min=1,max=7"`
	StartSlot int     `json:"start_slot" validate:"required,min=1,max=14"`
	EndSlot   int     `json:"end_slot" validate:"required,min=1,max=14,gtefield=StartSlot"`
	Note      *string `json:"note" validate:"omitempty,max=500"`
}

// ReplaceCoursesRequest replaces the caller's whole timetable.
type ReplaceCoursesRequest struct {
	Courses []CourseInput `json:"courses" validate:"max=200,dive"`
}

// CourseListResponse wraps a user's courses.
type CourseListResponse struct {
	Courses   []CourseResponse `json:"courses"`
	Published bool             `json:"published,omitempty"`
}

// CourseResponse is a course plus its resolved slot labels.
type CourseResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Teacher   string  `json:"teacher"`
	Classroom string  `json:"classroom"`
	DayOfWeek int     `json:"day_of_week"`
	StartSlot int     `json:"start_slot"`
	EndSlot   int     `json:"end_slot"`
	Note      *string `json:"note"`
	TimeRange string  `json:"time_range"`
}
