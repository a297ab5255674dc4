package store

import (
	"sync"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Session is one caller-scoped conversation. Values handed out by the store
// are deep copies; mutating them has no effect until passed to Update.
type Session struct {
	ID              string
	CreatedAt       time.Time
	LastUpdated     time.Time
	Messages        []Message
	UserPreferences map[string]any
	TravelContext   map[string]any
}

// MemoryStore keeps sessions in process memory. Every method holds the store
// lock for its own duration only, so callers must not expect atomicity
// across calls.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

type Option func(*MemoryStore)

// WithClock overrides time.Now, mostly for eviction tests.
func WithClock(now func() time.Time) Option {
	return func(m *MemoryStore) { m.now = now }
}

func NewMemoryStore(opts ...Option) *MemoryStore {
	m := &MemoryStore{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GetOrCreate returns the session for id, creating an empty one on first use.
// It refreshes LastUpdated either way.
func (m *MemoryStore) GetOrCreate(id string) Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getOrCreateLocked(id).clone()
}

// Get returns the session without creating or touching it.
func (m *MemoryStore) Get(id string) (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, false
	}
	return s.clone(), true
}

// Update overwrites the stored messages, preferences and context with the
// non-nil fields of s. CreatedAt of an existing session is kept; an unknown
// id is created.
func (m *MemoryStore) Update(id string, s Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.sessions[id]
	if !ok {
		cur = newSession(id, m.now())
		m.sessions[id] = cur
	}
	if s.Messages != nil {
		cur.Messages = append([]Message(nil), s.Messages...)
	}
	if s.UserPreferences != nil {
		cur.UserPreferences = copyMap(s.UserPreferences)
	}
	if s.TravelContext != nil {
		cur.TravelContext = copyMap(s.TravelContext)
	}
	m.touchLocked(cur)
}

// Append adds messages to the end of the transcript in one step.
func (m *MemoryStore) Append(id string, msgs ...Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.getOrCreateLocked(id)
	s.Messages = append(s.Messages, msgs...)
}

// Clear empties the transcript and keeps preferences and context. Unknown ids
// are ignored.
func (m *MemoryStore) Clear(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.Messages = []Message{}
		m.touchLocked(s)
	}
}

// Delete removes the session and reports whether it existed.
func (m *MemoryStore) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	return true
}

// EvictOlderThan drops every session last updated strictly before
// now-maxAge, plus any session without a timestamp. It returns the count.
func (m *MemoryStore) EvictOlderThan(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := m.now().Add(-maxAge)
	removed := 0
	for id, s := range m.sessions {
		if s.LastUpdated.IsZero() || s.LastUpdated.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

func (m *MemoryStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Snapshot copies every session, keyed by id.
func (m *MemoryStore) Snapshot() map[string]Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]Session, len(m.sessions))
	for id, s := range m.sessions {
		out[id] = s.clone()
	}
	return out
}

// Preferences and travel context

func (m *MemoryStore) SavePreference(id, key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.getOrCreateLocked(id)
	s.UserPreferences[key] = value
}

// GetPreference returns the stored value for key, or def when unset.
func (m *MemoryStore) GetPreference(id, key string, def any) any {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.getOrCreateLocked(id)
	if v, ok := s.UserPreferences[key]; ok {
		return v
	}
	return def
}

// MergeContext merges partial into the travel context; existing keys not in
// partial are kept.
func (m *MemoryStore) MergeContext(id string, partial map[string]any) map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.getOrCreateLocked(id)
	for k, v := range partial {
		s.TravelContext[k] = v
	}
	return copyMap(s.TravelContext)
}

func (m *MemoryStore) GetContext(id string) map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyMap(m.getOrCreateLocked(id).TravelContext)
}

func (m *MemoryStore) getOrCreateLocked(id string) *Session {
	if s, ok := m.sessions[id]; ok {
		m.touchLocked(s)
		return s
	}
	s := newSession(id, m.now())
	m.sessions[id] = s
	return s
}

// touchLocked refreshes LastUpdated without letting it move backwards or
// below CreatedAt.
func (m *MemoryStore) touchLocked(s *Session) {
	now := m.now()
	if now.Before(s.LastUpdated) {
		return
	}
	s.LastUpdated = now
}

func newSession(id string, now time.Time) *Session {
	return &Session{
		ID:              id,
		CreatedAt:       now,
		LastUpdated:     now,
		Messages:        []Message{},
		UserPreferences: map[string]any{},
		TravelContext:   map[string]any{},
	}
}

func (s *Session) clone() Session {
	return Session{
		ID:              s.ID,
		CreatedAt:       s.CreatedAt,
		LastUpdated:     s.LastUpdated,
		Messages:        append([]Message{}, s.Messages...),
		UserPreferences: copyMap(s.UserPreferences),
		TravelContext:   copyMap(s.TravelContext),
	}
}

func copyMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
