package model

import (
	"regexp"
	"time"
)

// refPattern matches the requester marker embedded in event descriptions,
// e.g. "Ref: 123456789". The compatibility format comes from the booking
// agent, which tags every event it creates with the requesting chat id.
var refPattern = regexp.MustCompile(`Ref:\s*(\d+)`)

// EventTime mirrors the calendar API's start/end shape: timed events carry
// DateTime, all-day events carry only Date.
type EventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

// CalendarEvent is a read-only view of an upcoming appointment.
type CalendarEvent struct {
	ID          string    `json:"id"`
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Start       EventTime `json:"start"`
	End         EventTime `json:"end"`
}

// StartTime resolves the event start. Timed events parse the RFC 3339
// dateTime; all-day events fall back to the date field at local midnight.
// ok is false when neither parses.
func (e *CalendarEvent) StartTime(loc *time.Location) (t time.Time, ok bool) {
	if loc == nil {
		loc = time.Local
	}
	if e.Start.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, e.Start.DateTime); err == nil {
			return t, true
		}
	}
	if e.Start.Date != "" {
		if t, err := time.ParseInLocation("2006-01-02", e.Start.Date, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// RequesterChatID extracts the chat identity of the user who booked the
// event from the description marker. ok is false when no marker is present.
func (e *CalendarEvent) RequesterChatID() (string, bool) {
	m := refPattern.FindStringSubmatch(e.Description)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Title returns the event summary with a fallback for untitled events.
func (e *CalendarEvent) Title() string {
	if e.Summary == "" {
		return "Appointment"
	}
	return e.Summary
}
