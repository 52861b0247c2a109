package workflow

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultViewCapacity = 1000
	DefaultViewTTL      = 30 * time.Minute
)

type viewEntry struct {
	analysis  *Analysis
	sessionID string
	lastSeen  time.Time
}

// Views holds the mounted result pages. A view belongs to the session that
// mounted it; idle or surplus views are closed.
type Views struct {
	mu       sync.Mutex
	items    map[string]*viewEntry
	capacity int
	ttl      time.Duration
	now      func() time.Time
}

// NewViews creates a registry; non-positive limits take the defaults
func NewViews(capacity int, ttl time.Duration) *Views {
	if capacity <= 0 {
		capacity = DefaultViewCapacity
	}
	if ttl <= 0 {
		ttl = DefaultViewTTL
	}
	return &Views{
		items:    make(map[string]*viewEntry),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Add registers a and returns its view ID
func (v *Views) Add(sessionID string, a *Analysis) string {
	id := uuid.NewString()

	v.mu.Lock()
	now := v.now()
	evicted := v.sweepLocked(now)
	for len(v.items) >= v.capacity {
		evicted = append(evicted, v.evictOldestLocked())
	}
	v.items[id] = &viewEntry{analysis: a, sessionID: sessionID, lastSeen: now}
	v.mu.Unlock()

	for _, old := range evicted {
		old.Close()
	}
	return id
}

// Get returns the session's view and marks it as recently used
func (v *Views) Get(sessionID, id string) (*Analysis, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	entry, ok := v.items[id]
	if !ok || entry.sessionID != sessionID {
		return nil, false
	}
	entry.lastSeen = v.now()
	return entry.analysis, true
}

// Drop removes and closes the session's view
func (v *Views) Drop(sessionID, id string) bool {
	v.mu.Lock()
	entry, ok := v.items[id]
	if !ok || entry.sessionID != sessionID {
		v.mu.Unlock()
		return false
	}
	delete(v.items, id)
	v.mu.Unlock()

	entry.analysis.Close()
	return true
}

func (v *Views) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.items)
}

// CloseAll closes every view, used on shutdown
func (v *Views) CloseAll() {
	v.mu.Lock()
	items := v.items
	v.items = make(map[string]*viewEntry)
	v.mu.Unlock()

	for _, entry := range items {
		entry.analysis.Close()
	}
}

func (v *Views) sweepLocked(now time.Time) []*Analysis {
	var expired []*Analysis
	for id, entry := range v.items {
		if now.Sub(entry.lastSeen) > v.ttl {
			delete(v.items, id)
			expired = append(expired, entry.analysis)
		}
	}
	return expired
}

func (v *Views) evictOldestLocked() *Analysis {
	var oldestID string
	var oldest *viewEntry
	for id, entry := range v.items {
		if oldest == nil || entry.lastSeen.Before(oldest.lastSeen) {
			oldestID, oldest = id, entry
		}
	}
	delete(v.items, oldestID)
	return oldest.analysis
}
