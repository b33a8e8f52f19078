package export

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
)

// CalendarEvent is one VEVENT of an ICS feed.
type CalendarEvent struct {
	UID         string
	Summary     string
	Location    string
	Description string
	Start       time.Time
	End         time.Time
	Weekly      bool
}

// ICSExporter renders events into an iCalendar document.
type ICSExporter struct {
	ProductID string
	Name      string
}

// NewICSExporter constructs an ICS exporter.
func NewICSExporter(name string) *ICSExporter {
	return &ICSExporter{ProductID: "-//TKT//Course Widget//EN", Name: name}
}

// Render serialises events; stamp is written as DTSTAMP on every event.
func (e *ICSExporter) Render(events []CalendarEvent, stamp time.Time) ([]byte, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(e.ProductID)
	if e.Name != "" {
		cal.SetXWRCalName(e.Name)
	}

	for _, evt := range events {
		if evt.UID == "" {
			return nil, fmt.Errorf("ics event %q has no uid", evt.Summary)
		}
		if !evt.End.After(evt.Start) {
			return nil, fmt.Errorf("ics event %s ends before it starts", evt.UID)
		}
		event := cal.AddEvent(evt.UID)
		event.SetDtStampTime(stamp)
		event.SetStartAt(evt.Start)
		event.SetEndAt(evt.End)
		event.SetSummary(evt.Summary)
		if evt.Location != "" {
			event.SetLocation(evt.Location)
		}
		if evt.Description != "" {
			event.SetDescription(evt.Description)
		}
		if evt.Weekly {
			event.SetProperty(ics.ComponentPropertyRrule, "FREQ=WEEKLY")
		}
	}

	return []byte(cal.Serialize()), nil
}
