package models

import "time"

// SourceKind identifies which candidate stream a summary displays.
type SourceKind string

const (
	SourceUpcoming SourceKind = "upcoming"
	SourceToday    SourceKind = "today"
	SourceNone     SourceKind = "none"
)

// CandidateSource is one entry of the ordered display priority list.
type CandidateSource struct {
	Kind    SourceKind
	Courses []CourseRecord
}

// SummaryTitle describes the headline; the HTTP layer localises it.
type SummaryTitle struct {
	Kind  SourceKind `json:"kind"`
	Count int        `json:"count"`
}

// DisplaySummary is recomputed on every refresh and never stored.
type DisplaySummary struct {
	Title         SummaryTitle   `json:"title"`
	VisibleRows   []CourseRecord `json:"visible_rows"`
	OverflowCount int            `json:"overflow_count"`
	LastUpdated   time.Time      `json:"last_updated"`
	// Placeholder marks the synthetic summary shown before the first refresh.
	Placeholder bool `json:"placeholder"`
}
