package cache

import (
	"encoding/json"
	"sync"
	"time"

	"alcyxob/workout-telemetry/internal/domain"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

const (
	megabyte  = 1024 * 1024
	rosterKey = "roster::all"
)

// RosterCache keeps the serialized athlete roster for a short time so the
// grouping aggregation does not run on every request.
//
// Every Invalidate bumps a generation. A reader that missed the cache passes
// the generation it saw to SetIfGeneration, so a roster computed before a
// write is never stored after that write's Invalidate.
type RosterCache struct {
	cache     *freecache.Cache
	expireSec int

	mu         sync.Mutex
	generation uint64
}

// NewRosterCache creates a cache of sizeMB megabytes. A ttl of zero or less
// disables caching.
func NewRosterCache(sizeMB int, ttl time.Duration) *RosterCache {
	if sizeMB <= 0 {
		sizeMB = 1
	}
	return &RosterCache{
		cache:     freecache.NewCache(sizeMB * megabyte),
		expireSec: int(ttl / time.Second),
	}
}

// Get returns the cached roster, if any, and the current generation.
func (r *RosterCache) Get() ([]domain.AthleteSummary, uint64, bool) {
	if r == nil {
		return nil, 0, false
	}
	r.mu.Lock()
	gen := r.generation
	r.mu.Unlock()
	if r.expireSec <= 0 {
		return nil, gen, false
	}

	rosterBytes, err := r.cache.Get([]byte(rosterKey))
	if err != nil {
		return nil, gen, false
	}

	var roster []domain.AthleteSummary
	if err := json.Unmarshal(rosterBytes, &roster); err != nil {
		log.Errorf("failed to unmarshal roster from cache: %s", err)
		return nil, gen, false
	}
	log.Tracef("found athlete roster in cache")
	return roster, gen, true
}

// SetIfGeneration stores roster unless the cache was invalidated since gen
// was read. It reports whether the roster was stored.
func (r *RosterCache) SetIfGeneration(gen uint64, roster []domain.AthleteSummary) bool {
	if r == nil || r.expireSec <= 0 {
		return false
	}
	rosterBytes, err := json.Marshal(roster)
	if err != nil {
		log.Errorf("failed to marshal roster for cache: %s", err)
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.generation != gen {
		log.Tracef("roster changed while loading (generation %d -> %d), not caching", gen, r.generation)
		return false
	}
	if err := r.cache.Set([]byte(rosterKey), rosterBytes, r.expireSec); err != nil {
		log.Errorf("failed to write roster cache: %s", err)
		return false
	}
	return true
}

// Invalidate drops the cached roster; called whenever sessions change.
func (r *RosterCache) Invalidate() {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generation++
	r.cache.Del([]byte(rosterKey))
}
