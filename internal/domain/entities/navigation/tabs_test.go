package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitialTab(t *testing.T) {
	assert.Equal(t, TabOverview, Initial(Snapshot{Path: "/roadmap/step/1"}).Tab)
	assert.Equal(t, TabCourse, Initial(Snapshot{Path: "/roadmap/step/1", URLTab: "course"}).Tab)
	assert.Equal(t, TabResources, Initial(Snapshot{Path: "/roadmap/step/1", Resource: "Persona"}).Tab)
	assert.Equal(t, TabCourse, Initial(Snapshot{Path: "/roadmap/step/1", URLTab: "course", Resource: "Persona"}).Tab)
}

func TestStepNavigationScenario(t *testing.T) {
	state := Evaluate(MachineState{}, Snapshot{Path: "/roadmap/step/1"})
	assert.Equal(t, TabOverview, state.Tab)

	state = Evaluate(state, Snapshot{Path: "/roadmap/step/1/Recherche utilisateur", URLTab: "resources"})
	assert.Equal(t, TabResources, state.Tab)

	state = Evaluate(state, Snapshot{Path: "/roadmap/step/2"})
	assert.Equal(t, TabOverview, state.Tab)
}

func TestPathChangeResetsUserChoice(t *testing.T) {
	state := Evaluate(MachineState{}, Snapshot{Path: "/roadmap/step/1"})
	state = ChangeTab(state, TabCourse)
	assert.Equal(t, TabCourse, state.Tab)

	state = Evaluate(state, Snapshot{Path: "/roadmap/step/1"})
	assert.Equal(t, TabCourse, state.Tab, "same snapshot must not move the tab")

	state = Evaluate(state, Snapshot{Path: "/roadmap/step/3"})
	assert.Equal(t, TabOverview, state.Tab)
}

func TestNavigationResetIsDeduplicated(t *testing.T) {
	state := Evaluate(MachineState{}, Snapshot{Path: "/roadmap/step/1", ResetAt: 100})
	state = ChangeTab(state, TabResources)

	state = Evaluate(state, Snapshot{Path: "/roadmap/step/1", ResetAt: 100})
	assert.Equal(t, TabResources, state.Tab, "already processed timestamp")

	state = Evaluate(state, Snapshot{Path: "/roadmap/step/1", ResetAt: 99})
	assert.Equal(t, TabResources, state.Tab, "older timestamp")
	assert.Equal(t, int64(100), state.LastResetAt)

	state = Evaluate(state, Snapshot{Path: "/roadmap/step/1", ResetAt: 101})
	assert.Equal(t, TabOverview, state.Tab)
	assert.Equal(t, int64(101), state.LastResetAt)
}

func TestResetOutranksURLTab(t *testing.T) {
	state := Evaluate(MachineState{}, Snapshot{Path: "/roadmap/step/1"})
	state = Evaluate(state, Snapshot{Path: "/roadmap/step/1", URLTab: "course", ResetAt: 5})
	assert.Equal(t, TabOverview, state.Tab)
	assert.Equal(t, "course", state.URLTab, "bookkeeping still records the URL tab")

	state = Evaluate(state, Snapshot{Path: "/roadmap/step/1", URLTab: "course", ResetAt: 5})
	assert.Equal(t, TabOverview, state.Tab, "unchanged URL tab does not fire again")
}

func TestURLTabPassesThroughUnvalidated(t *testing.T) {
	state := Evaluate(MachineState{}, Snapshot{Path: "/roadmap/step/1"})
	state = Evaluate(state, Snapshot{Path: "/roadmap/step/1", URLTab: "faq"})
	assert.Equal(t, Tab("faq"), state.Tab)
	assert.False(t, state.Tab.Valid())
}

func TestURLTabOutranksResourceSelection(t *testing.T) {
	state := Evaluate(MachineState{}, Snapshot{Path: "/roadmap/step/1"})
	state = Evaluate(state, Snapshot{Path: "/roadmap/step/1", URLTab: "course", Resource: "Persona"})
	assert.Equal(t, TabCourse, state.Tab)
}

func TestResourceSelectionSwitchesToResources(t *testing.T) {
	state := Evaluate(MachineState{}, Snapshot{Path: "/roadmap/step/1"})
	state = Evaluate(state, Snapshot{Path: "/roadmap/step/1", Resource: "Persona"})
	assert.Equal(t, TabResources, state.Tab)

	state = ChangeTab(state, TabOverview)
	state = Evaluate(state, Snapshot{Path: "/roadmap/step/1", Resource: "Persona"})
	assert.Equal(t, TabOverview, state.Tab, "same resource does not fire again")

	state = Evaluate(state, Snapshot{Path: "/roadmap/step/1", Resource: "Carte d'empathie"})
	assert.Equal(t, TabResources, state.Tab)
}

func TestTabValid(t *testing.T) {
	assert.True(t, TabOverview.Valid())
	assert.True(t, TabResources.Valid())
	assert.True(t, TabCourse.Valid())
	assert.False(t, Tab("").Valid())
}
