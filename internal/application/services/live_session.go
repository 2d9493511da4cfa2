package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/fundroad/fundroad-go/internal/domain/entities/journey"
	"github.com/fundroad/fundroad-go/internal/domain/entities/navigation"
	"github.com/fundroad/fundroad-go/internal/infrastructure/observability/logging"
)

// Live message types.
const (
	LiveNavigate       = "navigate"
	LiveNavState       = "navState"
	LiveSelectResource = "selectResource"
	LiveChangeTab      = "changeTab"
	LiveToggleStep     = "toggleStep"
	LiveToggleSubStep  = "toggleSubStep"

	LiveView    = "view"
	LiveTab     = "tab"
	LiveToggled = "toggled"
	LiveError   = "error"
)

var (
	ErrUnknownLiveMessage = errors.New("unknown live message type")
	ErrSignInRequired     = errors.New("sign in to track progress")
)

// LiveClientMessage is a signal sent by the browser.
type LiveClientMessage struct {
	Type    string `json:"type"`
	Path    string `json:"path,omitempty"`
	Query   string `json:"query,omitempty"`
	ResetAt int64  `json:"resetAt,omitempty"`
	Name    string `json:"name,omitempty"`
	Tab     string `json:"tab,omitempty"`
	StepID  int    `json:"stepId,omitempty"`
	Title   string `json:"title,omitempty"`
}

// LiveServerMessage is pushed to the browser.
type LiveServerMessage struct {
	Type       string                   `json:"type"`
	Generation uint64                   `json:"generation"`
	View       *journey.View            `json:"view,omitempty"`
	Tab        *navigation.MachineState `json:"tab,omitempty"`
	StepID     int                      `json:"stepId,omitempty"`
	Title      string                   `json:"title,omitempty"`
	Completed  *bool                    `json:"completed,omitempty"`
	Error      string                   `json:"error,omitempty"`
}

// LiveSession drives one browser connection. Every navigation bumps the
// generation; a view load publishes its result only while its generation is
// still current, so a slow load for a page the user already left is dropped.
type LiveSession struct {
	journey    *JourneyService
	navigation *NavigationService
	logger     *logging.ChanneledLogger
	userID     string
	sessionID  string
	publish    func(LiveServerMessage)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// mu guards generation and snap, and serializes publish.
	mu         sync.Mutex
	generation uint64
	snap       navigation.Snapshot
}

// NewLiveSession starts a session. publish is never called concurrently and
// never after Close returns.
func NewLiveSession(parent context.Context, journeyService *JourneyService, navigationService *NavigationService, logger *logging.ChanneledLogger, userID, sessionID string, publish func(LiveServerMessage)) *LiveSession {
	ctx, cancel := context.WithCancel(parent)
	return &LiveSession{
		journey:    journeyService,
		navigation: navigationService,
		logger:     logger,
		userID:     userID,
		sessionID:  sessionID,
		publish:    publish,
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (l *LiveSession) Generation() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.generation
}

// Handle applies one client message. Errors are also published to the client.
func (l *LiveSession) Handle(msg LiveClientMessage) error {
	var err error
	switch msg.Type {
	case LiveNavigate:
		err = l.navigate(msg.Path, msg.Query)
	case LiveNavState:
		l.signal(func(snap *navigation.Snapshot) { snap.ResetAt = msg.ResetAt })
	case LiveSelectResource:
		l.signal(func(snap *navigation.Snapshot) { snap.Resource = msg.Name })
	case LiveChangeTab:
		l.changeTab(navigation.Tab(msg.Tab))
	case LiveToggleStep:
		err = l.toggle(msg.StepID, "")
	case LiveToggleSubStep:
		if msg.Title == "" {
			err = fmt.Errorf("%w: title is required", journey.ErrSubStepNotFound)
			break
		}
		err = l.toggle(msg.StepID, msg.Title)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownLiveMessage, msg.Type)
	}

	if err != nil {
		l.mu.Lock()
		l.publishLocked(LiveServerMessage{Type: LiveError, Generation: l.generation, StepID: msg.StepID, Title: msg.Title, Error: err.Error()})
		l.mu.Unlock()
	}
	return err
}

// Close cancels in-flight work and waits for it to finish.
func (l *LiveSession) Close() {
	l.cancel()
	l.wg.Wait()
}

func (l *LiveSession) navigate(path, rawQuery string) error {
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return fmt.Errorf("invalid query: %w", err)
	}

	l.mu.Lock()
	l.generation++
	generation := l.generation
	l.snap.Path = path
	l.snap.URLTab = query.Get("tab")
	l.snap.Resource = query.Get("resource")
	state := l.navigation.EvaluateTab(l.sessionID, l.snap)
	l.publishLocked(LiveServerMessage{Type: LiveTab, Generation: generation, Tab: &state})
	l.mu.Unlock()

	l.loadView(generation)
	return nil
}

// signal updates one tab machine input and re-evaluates the machine.
func (l *LiveSession) signal(update func(*navigation.Snapshot)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	update(&l.snap)
	state := l.navigation.EvaluateTab(l.sessionID, l.snap)
	l.publishLocked(LiveServerMessage{Type: LiveTab, Generation: l.generation, Tab: &state})
}

func (l *LiveSession) changeTab(tab navigation.Tab) {
	l.mu.Lock()
	defer l.mu.Unlock()
	state := l.navigation.ChangeTab(l.sessionID, tab)
	l.publishLocked(LiveServerMessage{Type: LiveTab, Generation: l.generation, Tab: &state})
}

func (l *LiveSession) loadView(generation uint64) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		view := l.journey.LoadView(l.ctx, l.userID)
		if l.ctx.Err() != nil {
			return
		}

		l.mu.Lock()
		defer l.mu.Unlock()
		if generation != l.generation {
			l.logger.Session().Debug("Dropping stale journey view",
				"sessionId", l.logger.SanitizeSessionID(l.sessionID), "generation", generation, "current", l.generation)
			return
		}
		l.publishLocked(LiveServerMessage{Type: LiveView, Generation: generation, View: &view})
	}()
}

// toggle starts a completion toggle. Anonymous sessions are rejected before
// any work is scheduled.
func (l *LiveSession) toggle(stepID int, title string) error {
	if l.userID == "" {
		return ErrSignInRequired
	}
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()

		var completed bool
		var err error
		if title == "" {
			completed, err = l.journey.ToggleStepCompletion(l.ctx, l.userID, stepID)
		} else {
			completed, err = l.journey.ToggleSubStepCompletion(l.ctx, l.userID, stepID, title)
		}

		l.mu.Lock()
		generation := l.generation
		if err != nil {
			l.publishLocked(LiveServerMessage{Type: LiveError, Generation: generation, StepID: stepID, Title: title, Error: err.Error()})
			l.mu.Unlock()
			return
		}
		l.publishLocked(LiveServerMessage{Type: LiveToggled, Generation: generation, StepID: stepID, Title: title, Completed: &completed})
		l.mu.Unlock()

		l.loadView(generation)
	}()
	return nil
}

func (l *LiveSession) publishLocked(msg LiveServerMessage) {
	if l.ctx.Err() != nil {
		return
	}
	l.publish(msg)
}
