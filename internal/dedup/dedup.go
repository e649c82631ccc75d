// Package dedup tracks which (audience, event) pairs have already been
// notified so repeated poll ticks inside a reminder window send at most one
// message.
package dedup

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/dromero/barberbot/internal/model"
)

// Store records sent notifications. MarkIfAbsent is the only mutation: it
// atomically claims the key, returning true exactly once per key per TTL
// horizon.
type Store interface {
	// MarkIfAbsent claims the (audience, event) pair. Returns true when the
	// caller is the first to claim it and should send the notification.
	MarkIfAbsent(ctx context.Context, audience model.Audience, eventID string) (bool, error)
	// Seen reports whether the pair has already been claimed.
	Seen(ctx context.Context, audience model.Audience, eventID string) (bool, error)
}

// MemoryStore is the default in-process store. Entries expire after the TTL,
// which bounds growth over a long-running process: once an event's start has
// passed every reminder window, its keys are garbage. State is lost on
// restart, so notifications may duplicate across restarts.
type MemoryStore struct {
	cache *gocache.Cache
}

// NewMemoryStore creates a store whose entries expire after ttl. The cleanup
// interval trails the TTL so expired keys are actually released.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 3 * time.Hour
	}
	return &MemoryStore{
		cache: gocache.New(ttl, ttl/2),
	}
}

func (s *MemoryStore) MarkIfAbsent(_ context.Context, audience model.Audience, eventID string) (bool, error) {
	err := s.cache.Add(model.DedupKey(audience, eventID), struct{}{}, gocache.DefaultExpiration)
	// Add fails only when the key already exists.
	return err == nil, nil
}

func (s *MemoryStore) Seen(_ context.Context, audience model.Audience, eventID string) (bool, error) {
	_, found := s.cache.Get(model.DedupKey(audience, eventID))
	return found, nil
}
