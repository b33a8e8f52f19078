package dto

import "time"

// WidgetRow is one rendered course line.
type WidgetRow struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Teacher   string  `json:"teacher"`
	Classroom string  `json:"classroom"`
	StartSlot int     `json:"start_slot"`
	EndSlot   int     `json:"end_slot"`
	SlotLabel string  `json:"slot_label"`
	TimeRange string  `json:"time_range"`
	Note      *string `json:"note,omitempty"`
}

// WidgetSummaryResponse is a localized display summary.
type WidgetSummaryResponse struct {
	Title         string      `json:"title"`
	Source        string      `json:"source"`
	Count         int         `json:"count"`
	Rows          []WidgetRow `json:"rows"`
	OverflowCount int         `json:"overflow_count"`
	OverflowText  string      `json:"overflow_text,omitempty"`
	EmptyHint     string      `json:"empty_hint,omitempty"`
	Tier          string      `json:"tier"`
	Weekday       int         `json:"weekday"`
	Locale        string      `json:"locale"`
	Degraded      bool        `json:"degraded"`
	LastUpdated   time.Time   `json:"last_updated"`
	NextRefresh   time.Time   `json:"next_refresh"`
}

// RefreshResponse reports whether a publish was scheduled.
type RefreshResponse struct {
	Queued bool `json:"queued"`
}

// StorageValueRequest writes one shared storage key.
type StorageValueRequest struct {
	Value      string `json:"value"`
	TTLSeconds int64  `json:"ttl_seconds" validate:"min=0"`
}

// StorageValueResponse returns one shared storage key.
type StorageValueResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
