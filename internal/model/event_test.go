package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartTime(t *testing.T) {
	loc := time.UTC

	t.Run("timed event", func(t *testing.T) {
		e := CalendarEvent{Start: EventTime{DateTime: "2025-03-10T14:30:00Z"}}
		got, ok := e.StartTime(loc)
		require.True(t, ok)
		assert.Equal(t, time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC), got.UTC())
	})

	t.Run("timed event with offset", func(t *testing.T) {
		e := CalendarEvent{Start: EventTime{DateTime: "2025-03-10T09:30:00-05:00"}}
		got, ok := e.StartTime(loc)
		require.True(t, ok)
		assert.Equal(t, time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC), got.UTC())
	})

	t.Run("all-day event falls back to date", func(t *testing.T) {
		e := CalendarEvent{Start: EventTime{Date: "2025-03-10"}}
		got, ok := e.StartTime(loc)
		require.True(t, ok)
		assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, loc), got)
	})

	t.Run("no usable start", func(t *testing.T) {
		e := CalendarEvent{Start: EventTime{DateTime: "not-a-time"}}
		_, ok := e.StartTime(loc)
		assert.False(t, ok)
	})

	t.Run("empty start", func(t *testing.T) {
		e := CalendarEvent{}
		_, ok := e.StartTime(loc)
		assert.False(t, ok)
	})
}

func TestRequesterChatID(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        string
		ok          bool
	}{
		{"plain marker", "Haircut\nRef: 123456789", "123456789", true},
		{"marker without space", "Ref:42", "42", true},
		{"marker mid-text", "booked via bot (Ref: 987) please confirm", "987", true},
		{"no marker", "Walk-in appointment", "", false},
		{"non-numeric ref", "Ref: abc", "", false},
		{"empty description", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := CalendarEvent{Description: tt.description}
			got, ok := e.RequesterChatID()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDedupKey(t *testing.T) {
	assert.Equal(t, "customer_ev1", DedupKey(AudienceCustomer, "ev1"))
	assert.Equal(t, "admin_ev1", DedupKey(AudienceAdmin, "ev1"))
	assert.NotEqual(t, DedupKey(AudienceCustomer, "ev1"), DedupKey(AudienceAdmin, "ev1"))
}
