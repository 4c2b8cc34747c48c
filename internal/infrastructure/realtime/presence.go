package realtime

import (
	"context"
	"errors"
	"log"
	"time"

	cacheport "github.com/Spana-App/SPANA-SERVER-sub002/internal/infrastructure/cache/port"
)

const (
	presencePrefix = "presence:"
	presenceTTL    = 90 * time.Second
	presenceWait   = 2 * time.Second
)

// Presence mirrors who is online into the shared cache so consumers outside
// this process (and the conversations listing) can read it. Writes are
// best-effort: a cache outage degrades presence, never connectivity.
// Authorization decisions must not read presence.
type Presence struct {
	cache cacheport.Cache
}

// NewPresence wraps the given cache. A nil cache yields a no-op tracker.
func NewPresence(cache cacheport.Cache) *Presence {
	return &Presence{cache: cache}
}

// MarkOnline records the identity as online with a TTL refreshed per bind.
func (p *Presence) MarkOnline(userID string) {
	if p == nil || p.cache == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), presenceWait)
		defer cancel()
		if err := p.cache.Set(ctx, presencePrefix+userID, "online", presenceTTL); err != nil {
			log.Printf("realtime: presence set %s: %v", userID, err)
		}
	}()
}

// MarkOffline clears the identity's presence key.
func (p *Presence) MarkOffline(userID string) {
	if p == nil || p.cache == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), presenceWait)
		defer cancel()
		if _, err := p.cache.Del(ctx, presencePrefix+userID); err != nil {
			log.Printf("realtime: presence del %s: %v", userID, err)
		}
	}()
}

// IsOnline reports whether the identity currently holds a presence key.
// A miss or any cache failure reads as offline.
func (p *Presence) IsOnline(ctx context.Context, userID string) bool {
	if p == nil || p.cache == nil {
		return false
	}
	v, err := p.cache.Get(ctx, presencePrefix+userID)
	if err != nil {
		if !errors.Is(err, cacheport.ErrMiss) {
			log.Printf("realtime: presence get %s: %v", userID, err)
		}
		return false
	}
	return v != ""
}
