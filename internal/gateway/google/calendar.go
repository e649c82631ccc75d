package google

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/dromero/barberbot/internal/model"
)

type eventList struct {
	Items []model.CalendarEvent `json:"items"`
}

// CheckAvailability lists events in [timeMin, timeMax], expanded to single
// instances and ordered by start time.
func (s *Service) CheckAvailability(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]model.CalendarEvent, error) {
	q := url.Values{}
	q.Set("timeMin", timeMin.UTC().Format(time.RFC3339))
	q.Set("timeMax", timeMax.UTC().Format(time.RFC3339))
	q.Set("singleEvents", "true")
	q.Set("orderBy", "startTime")

	endpoint := fmt.Sprintf("%s/calendars/%s/events?%s", s.calendarURL, url.PathEscape(calendarID), q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build list request: %w", err)
	}

	resp, err := s.do(req, "list_events")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var list eventList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("failed to decode event list: %w", err)
	}
	return list.Items, nil
}

// CreateEvent inserts a new calendar event. Times are RFC 3339 with the
// given timezone name.
func (s *Service) CreateEvent(ctx context.Context, calendarID string, event *model.CalendarEvent) (*model.CalendarEvent, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	endpoint := fmt.Sprintf("%s/calendars/%s/events", s.calendarURL, url.PathEscape(calendarID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.do(req, "create_event")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var created model.CalendarEvent
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("failed to decode created event: %w", err)
	}
	return &created, nil
}

// DeleteEvent removes an event by id.
func (s *Service) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	endpoint := fmt.Sprintf("%s/calendars/%s/events/%s", s.calendarURL, url.PathEscape(calendarID), url.PathEscape(eventID))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build delete request: %w", err)
	}

	resp, err := s.do(req, "delete_event")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// UpdateEvent reschedules an existing event, preserving fields it does not
// touch by fetching the current state first.
func (s *Service) UpdateEvent(ctx context.Context, calendarID, eventID string, start, end model.EventTime, summary string) (*model.CalendarEvent, error) {
	getURL := fmt.Sprintf("%s/calendars/%s/events/%s", s.calendarURL, url.PathEscape(calendarID), url.PathEscape(eventID))
	getReq, err := http.NewRequestWithContext(ctx, http.MethodGet, getURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build get request: %w", err)
	}

	resp, err := s.do(getReq, "get_event")
	if err != nil {
		return nil, err
	}

	var event model.CalendarEvent
	err = json.NewDecoder(resp.Body).Decode(&event)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to decode event: %w", err)
	}

	event.Start = start
	event.End = end
	if summary != "" {
		event.Summary = summary
	}

	payload, err := json.Marshal(&event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	putReq, err := http.NewRequestWithContext(ctx, http.MethodPut, getURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build update request: %w", err)
	}
	putReq.Header.Set("Content-Type", "application/json")

	updateResp, err := s.do(putReq, "update_event")
	if err != nil {
		return nil, err
	}
	defer updateResp.Body.Close()

	var updated model.CalendarEvent
	if err := json.NewDecoder(updateResp.Body).Decode(&updated); err != nil {
		return nil, fmt.Errorf("failed to decode updated event: %w", err)
	}
	return &updated, nil
}
