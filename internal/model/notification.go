package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Audience distinguishes who a reminder targets. It is half of the dedup
// key, so the same event can notify the customer and the admin
// independently.
type Audience string

const (
	AudienceCustomer Audience = "customer"
	AudienceAdmin    Audience = "admin"
)

// DedupKey is the composite identifier preventing duplicate notifications
// for the same event/audience pair.
func DedupKey(audience Audience, eventID string) string {
	return fmt.Sprintf("%s_%s", audience, eventID)
}

// Notification is an outbound chat message produced by the scheduler.
type Notification struct {
	ID        uuid.UUID
	Audience  Audience
	EventID   string
	ChatID    string
	Text      string
	Markdown  bool
	CreatedAt time.Time
}
