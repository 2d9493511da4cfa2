package services

import (
	"errors"
	"strings"
	"time"

	"github.com/fundroad/fundroad-go/internal/domain/entities/navigation"
	"github.com/fundroad/fundroad-go/internal/infrastructure/caching/sessions"
	"github.com/fundroad/fundroad-go/internal/infrastructure/observability/logging"
)

var ErrInvalidReturnPath = errors.New("return path must be a local absolute path")

// SaveStatus is the outcome of the last resource save of a session.
type SaveStatus struct {
	Successful bool       `json:"successful"`
	At         *time.Time `json:"at"`
}

// NavigationService exposes the per-session navigation state: the return path
// tracker and the tab machine. Sessions are identified by an opaque id; an
// empty id has no storage and every operation degrades to a no-op.
type NavigationService struct {
	store  *sessions.Store
	logger *logging.ChanneledLogger
}

// NewNavigationService creates a new navigation service
func NewNavigationService(store *sessions.Store, logger *logging.ChanneledLogger) *NavigationService {
	return &NavigationService{store: store, logger: logger}
}

// Tracker returns the return path tracker bound to one session.
func (s *NavigationService) Tracker(sessionID string) *navigation.Tracker {
	return navigation.NewTracker(s.store.Storage(sessionID))
}

// SaveReturnPath remembers path for the session, overwriting any previous value.
func (s *NavigationService) SaveReturnPath(sessionID, path string) error {
	if !isLocalPath(path) {
		return ErrInvalidReturnPath
	}
	s.Tracker(sessionID).Save(path)
	s.logger.Session().Debug("Return path saved", "sessionId", s.logger.SanitizeSessionID(sessionID), "path", path)
	return nil
}

// ReturnPath returns the session's return path without clearing it
func (s *NavigationService) ReturnPath(sessionID string) *string {
	return s.Tracker(sessionID).Get()
}

// ClearReturnPath forgets the session's return path
func (s *NavigationService) ClearReturnPath(sessionID string) {
	s.Tracker(sessionID).Clear()
}

// TakeReturnPath reads and clears the return path in one step.
func (s *NavigationService) TakeReturnPath(sessionID string) *string {
	path := s.Tracker(sessionID).Take()
	if path != nil {
		s.logger.Session().Debug("Return path consumed", "sessionId", s.logger.SanitizeSessionID(sessionID), "path", *path)
	}
	return path
}

// RecordSaveResult stores the outcome of a resource save
func (s *NavigationService) RecordSaveResult(sessionID string, success bool, at time.Time) {
	s.Tracker(sessionID).RecordSaveResult(success, at)
}

// LastSave returns the outcome of the session's last resource save
func (s *NavigationService) LastSave(sessionID string) SaveStatus {
	tracker := s.Tracker(sessionID)
	return SaveStatus{
		Successful: tracker.WasSuccessful(),
		At:         tracker.GetLastSaveTime(),
	}
}

// EvaluateTab feeds a snapshot to the session's tab machine and returns the new state.
func (s *NavigationService) EvaluateTab(sessionID string, snap navigation.Snapshot) navigation.MachineState {
	return s.store.UpdateTabs(sessionID, func(state navigation.MachineState) navigation.MachineState {
		return navigation.Evaluate(state, snap)
	})
}

// ChangeTab applies an explicit tab selection.
func (s *NavigationService) ChangeTab(sessionID string, tab navigation.Tab) navigation.MachineState {
	return s.store.UpdateTabs(sessionID, func(state navigation.MachineState) navigation.MachineState {
		return navigation.ChangeTab(state, tab)
	})
}

// TabState returns the session's tab machine state
func (s *NavigationService) TabState(sessionID string) navigation.MachineState {
	return s.store.Tabs(sessionID)
}

// isLocalPath accepts "/x" but not "//host" or absolute URLs.
func isLocalPath(path string) bool {
	return strings.HasPrefix(path, "/") && !strings.HasPrefix(path, "//") && !strings.Contains(path, "\\")
}
