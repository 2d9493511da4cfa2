// Package navigation holds the per-session navigation state of a step view: the
// tab selection machine and the single-slot return path tracker.
package navigation

// Tab identifies a content panel of a step view.
type Tab string

const (
	TabOverview  Tab = "overview"
	TabResources Tab = "resources"
	TabCourse    Tab = "course"
)

// Valid reports whether t belongs to the closed set of tabs.
func (t Tab) Valid() bool {
	switch t {
	case TabOverview, TabResources, TabCourse:
		return true
	}
	return false
}

// Snapshot captures every signal the tab machine reacts to at one instant.
type Snapshot struct {
	// Path is the route path without its query string.
	Path string `json:"path"`
	// URLTab is the raw `tab` query parameter, empty when absent.
	URLTab string `json:"tab,omitempty"`
	// ResetAt is the navigation-state "resource was reset" timestamp, 0 when absent.
	ResetAt int64 `json:"resetAt,omitempty"`
	// Resource is the selected resource name, empty when none.
	Resource string `json:"resource,omitempty"`
}

// MachineState is the tab machine's memory between two snapshots.
type MachineState struct {
	Tab         Tab    `json:"tab"`
	Path        string `json:"path"`
	URLTab      string `json:"urlTab,omitempty"`
	Resource    string `json:"resource,omitempty"`
	LastResetAt int64  `json:"lastResetAt"`
	Initialized bool   `json:"initialized"`
}

// Initial picks the tab for the first render of a route: the URL tab when
// present, then resources when a resource is selected, otherwise overview.
func Initial(snap Snapshot) MachineState {
	tab := TabOverview
	switch {
	case snap.URLTab != "":
		tab = Tab(snap.URLTab)
	case snap.Resource != "":
		tab = TabResources
	}
	return MachineState{
		Tab:         tab,
		Path:        snap.Path,
		URLTab:      snap.URLTab,
		Resource:    snap.Resource,
		LastResetAt: snap.ResetAt,
		Initialized: true,
	}
}

// Evaluate returns the state after observing snap. Triggers are checked in
// priority order and the first that fires decides the tab:
//
//  1. path change: the route is entered afresh (see Initial)
//  2. navigation reset newer than the last one processed: overview
//  3. URL tab changed: adopted as is, without validation
//  4. resource newly selected while not on resources: resources
//
// Bookkeeping (last path, URL tab, resource, reset timestamp) is updated
// whichever trigger wins.
func Evaluate(state MachineState, snap Snapshot) MachineState {
	if !state.Initialized || snap.Path != state.Path {
		next := Initial(snap)
		next.LastResetAt = max(state.LastResetAt, snap.ResetAt)
		return next
	}

	next := state
	next.URLTab = snap.URLTab
	next.Resource = snap.Resource
	next.LastResetAt = max(state.LastResetAt, snap.ResetAt)

	switch {
	case snap.ResetAt > state.LastResetAt:
		next.Tab = TabOverview
	case snap.URLTab != "" && snap.URLTab != state.URLTab:
		next.Tab = Tab(snap.URLTab)
	case snap.Resource != "" && snap.Resource != state.Resource && state.Tab != TabResources:
		next.Tab = TabResources
	}

	return next
}

// ChangeTab applies a user tab click unconditionally.
func ChangeTab(state MachineState, tab Tab) MachineState {
	state.Tab = tab
	state.Initialized = true
	return state
}
