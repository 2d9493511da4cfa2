// Package sessions keeps per-session navigation state in memory: the return
// path slots used by the tracker and the tab machine state of the step view.
package sessions

import (
	"sync"
	"time"

	"github.com/fundroad/fundroad-go/internal/domain/entities/navigation"
	"github.com/fundroad/fundroad-go/internal/infrastructure/observability/logging"
)

type sessionState struct {
	slots        map[string]string
	tabs         navigation.MachineState
	lastActivity time.Time
}

// Store holds navigation state keyed by session id. Entries idle longer than
// the TTL are dropped by PurgeExpired.
type Store struct {
	sessions    map[string]*sessionState
	ttl         time.Duration
	maxSessions int
	now         func() time.Time
	mu          sync.Mutex
	logger      *logging.ChanneledLogger
}

// NewStore creates a new session store. maxSessions <= 0 means unbounded.
func NewStore(ttl time.Duration, maxSessions int, logger *logging.ChanneledLogger) *Store {
	if logger != nil {
		logger.Session().Info("Initializing session navigation store", "ttl", ttl, "maxSessions", maxSessions)
	}
	return &Store{
		sessions:    make(map[string]*sessionState),
		ttl:         ttl,
		maxSessions: maxSessions,
		now:         time.Now,
		logger:      logger,
	}
}

// touch returns the state for id, creating it when missing. Caller holds mu.
func (s *Store) touch(id string) *sessionState {
	now := s.now()
	state, ok := s.sessions[id]
	if ok && s.ttl > 0 && now.Sub(state.lastActivity) > s.ttl {
		delete(s.sessions, id)
		ok = false
	}
	if !ok {
		if s.maxSessions > 0 && len(s.sessions) >= s.maxSessions {
			s.evictOldest()
		}
		state = &sessionState{slots: make(map[string]string)}
		s.sessions[id] = state
	}
	state.lastActivity = now
	return state
}

func (s *Store) evictOldest() {
	var oldestID string
	var oldest time.Time
	for id, state := range s.sessions {
		if oldestID == "" || state.lastActivity.Before(oldest) {
			oldestID, oldest = id, state.lastActivity
		}
	}
	if oldestID != "" {
		delete(s.sessions, oldestID)
		if s.logger != nil {
			s.logger.Session().Warn("Session store full, evicted least recently active session", "sessionId", s.logger.SanitizeSessionID(oldestID))
		}
	}
}

// Storage returns the slot storage of one session. An empty id yields a
// storage that reports itself unavailable.
func (s *Store) Storage(sessionID string) navigation.Storage {
	return &SlotStorage{store: s, sessionID: sessionID}
}

// Tabs returns the tab machine state of a session; the zero state when unknown.
func (s *Store) Tabs(sessionID string) navigation.MachineState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sessionID == "" {
		return navigation.MachineState{}
	}
	return s.touch(sessionID).tabs
}

// UpdateTabs applies fn to the session's tab state atomically and stores the result.
func (s *Store) UpdateTabs(sessionID string, fn func(navigation.MachineState) navigation.MachineState) navigation.MachineState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sessionID == "" {
		return fn(navigation.MachineState{})
	}
	state := s.touch(sessionID)
	state.tabs = fn(state.tabs)
	return state.tabs
}

// PurgeExpired drops sessions idle for longer than the TTL and reports how many went.
func (s *Store) PurgeExpired() int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, state := range s.sessions {
		if now.Sub(state.lastActivity) > s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Len reports how many sessions are held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// SlotStorage adapts one session of the store to navigation.Storage.
type SlotStorage struct {
	store     *Store
	sessionID string
}

func (ss *SlotStorage) Available() bool {
	return ss != nil && ss.store != nil && ss.sessionID != ""
}

func (ss *SlotStorage) Get(key string) (string, bool) {
	ss.store.mu.Lock()
	defer ss.store.mu.Unlock()
	value, ok := ss.store.touch(ss.sessionID).slots[key]
	return value, ok
}

func (ss *SlotStorage) Set(key, value string) {
	ss.store.mu.Lock()
	defer ss.store.mu.Unlock()
	ss.store.touch(ss.sessionID).slots[key] = value
}

func (ss *SlotStorage) Remove(key string) {
	ss.store.mu.Lock()
	defer ss.store.mu.Unlock()
	delete(ss.store.touch(ss.sessionID).slots, key)
}

// Take reads and deletes key under a single hold of the store lock.
func (ss *SlotStorage) Take(key string) (string, bool) {
	ss.store.mu.Lock()
	defer ss.store.mu.Unlock()
	slots := ss.store.touch(ss.sessionID).slots
	value, ok := slots[key]
	delete(slots, key)
	return value, ok
}
