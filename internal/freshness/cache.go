package freshness

import (
	"sync"
	"time"

	"github.com/lhollands/mediaserver/internal/domain"
)

// Cache remembers which movies had their rating snapshot refreshed recently.
// It lives for the process lifetime, is owned by bootstrap, and is handed to
// the enrichment workflow explicitly. Growth is bounded by catalog size.
type Cache struct {
	mu     sync.RWMutex
	fresh  map[int]bool
	window time.Duration
}

// New constructs an empty cache with the given freshness window.
func New(window time.Duration) *Cache {
	return &Cache{
		fresh:  make(map[int]bool),
		window: window,
	}
}

// Seed marks every movie whose last_updated falls within the window of now,
// inclusive. last_updated has date granularity, so the comparison works on
// calendar days: a movie stamped exactly at the window edge stays fresh for
// the whole of the current day. Driven by a full catalog scan once at
// bootstrap, not re-derived per movie during enrichment.
func (c *Cache) Seed(movies []domain.Movie, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	nowDay := truncateToDay(now)
	for _, movie := range movies {
		if movie.LastUpdated == nil {
			continue
		}
		if nowDay.Sub(truncateToDay(*movie.LastUpdated)) <= c.window {
			c.fresh[movie.ID] = true
		}
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IsFresh reports whether a movie was refreshed this session. Unseen ids are
// not fresh.
func (c *Cache) IsFresh(id int) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fresh[id]
}

// MarkFresh records that a movie's snapshot was just refreshed.
func (c *Cache) MarkFresh(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fresh[id] = true
}

// Len returns the number of movies currently marked fresh.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.fresh)
}
