// Package conversation keeps ephemeral per-conversation message history in memory.
package conversation

import (
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// TTL is how long a session may stay idle before it is evicted.
const TTL = time.Hour

const defaultSweepInterval = time.Minute

type Stats struct {
	Sessions  int
	Hits      int64
	Misses    int64
	Evictions int64
}

type session struct {
	mu           sync.Mutex
	messages     []Message
	lastActivity atomic.Int64 // unix nano
}

func (s *session) touch(now time.Time) {
	s.lastActivity.Store(now.UnixNano())
}

func (s *session) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.lastActivity.Load()))
}

// Cache maps a conversation id to its session. Sessions idle longer than TTL are
// evicted lazily: every operation first sweeps (at most once per sweep interval)
// and a lookup never returns an expired session.
//
// Cache is safe for concurrent use. Appends to the same conversation are
// serialized by the session's own lock, so none is lost.
type Cache struct {
	mu            sync.RWMutex
	sessions      map[string]*session
	log           *slog.Logger
	now           func() time.Time
	sweepInterval time.Duration
	lastSweep     atomic.Int64

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

type Option func(*Cache)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func WithSweepInterval(d time.Duration) Option {
	return func(c *Cache) { c.sweepInterval = d }
}

func WithLogger(log *slog.Logger) Option {
	return func(c *Cache) { c.log = log }
}

func NewCache(opts ...Option) *Cache {
	c := &Cache{
		sessions:      make(map[string]*session),
		log:           slog.Default(),
		now:           time.Now,
		sweepInterval: defaultSweepInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.lastSweep.Store(c.now().UnixNano())
	return c
}

// GetMessages returns a copy of the conversation, creating an empty session if needed.
func (c *Cache) GetMessages(conversationID string) []Message {
	c.maybeCleanup()
	s := c.session(conversationID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch(c.now())
	return slices.Clone(s.messages)
}

func (c *Cache) AddMessage(conversationID string, message Message) {
	c.maybeCleanup()
	s := c.session(conversationID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, message)
	s.touch(c.now())
}

// SetMessages replaces the whole conversation. Concurrent calls are last-write-wins.
func (c *Cache) SetMessages(conversationID string, messages []Message) {
	c.maybeCleanup()
	s := c.session(conversationID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = slices.Clone(messages)
	s.touch(c.now())
}

// Cleanup evicts every session idle longer than TTL and returns how many were removed.
func (c *Cache) Cleanup() int {
	now := c.now()
	c.lastSweep.Store(now.UnixNano())

	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for id, s := range c.sessions {
		if s.idleSince(now) > TTL {
			delete(c.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		c.evictions.Add(int64(removed))
		c.log.Debug("Conversation sessions evicted", "count", removed, "remaining", len(c.sessions))
	}
	return removed
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sessions)
}

func (c *Cache) Stats() Stats {
	return Stats{
		Sessions:  c.Len(),
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}

func (c *Cache) maybeCleanup() {
	last := c.lastSweep.Load()
	now := c.now()
	if now.Sub(time.Unix(0, last)) < c.sweepInterval {
		return
	}
	// Only one caller sweeps per interval
	if !c.lastSweep.CompareAndSwap(last, now.UnixNano()) {
		return
	}
	c.Cleanup()
}

// session returns a live session for id. It is touched while the map lock is held
// so a concurrent Cleanup cannot evict it between lookup and use.
func (c *Cache) session(id string) *session {
	now := c.now()

	c.mu.RLock()
	s, ok := c.sessions[id]
	if ok && s.idleSince(now) <= TTL {
		s.touch(now)
		c.mu.RUnlock()
		c.hits.Add(1)
		return s
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok = c.sessions[id]; ok && s.idleSince(now) <= TTL {
		s.touch(now)
		c.hits.Add(1)
		return s
	}
	if ok {
		c.evictions.Add(1)
	}
	c.misses.Add(1)
	s = &session{}
	s.touch(now)
	c.sessions[id] = s
	return s
}
