// Package journey defines the entrepreneurial journey: static steps and substeps,
// the per-user completion records persisted for them, and the pure functions that
// merge the two and compute progress.
package journey

import (
	"errors"
	"time"
)

var (
	ErrStepNotFound    = errors.New("step not found")
	ErrSubStepNotFound = errors.New("substep not found")
)

type Resource struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description,omitempty" yaml:"description"`
	URL         string `json:"url,omitempty" yaml:"url"`
}

// SubStep is a sub-task of a Step. Title is the natural key among siblings;
// Key is a slug derived from it when the catalog is built.
type SubStep struct {
	Key         string     `json:"key" yaml:"-"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	Resources   []Resource `json:"resources,omitempty" yaml:"resources"`
	Course      []Resource `json:"course,omitempty" yaml:"course"`
	IsCompleted bool       `json:"isCompleted" yaml:"isCompleted"`
}

type Step struct {
	ID          int        `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	SubSteps    []SubStep  `json:"subSteps" yaml:"substeps"`
	Resources   []Resource `json:"resources,omitempty" yaml:"resources"`
	IsCompleted bool       `json:"isCompleted" yaml:"isCompleted"`
}

// FindSubStep looks a substep up by exact title.
func (s Step) FindSubStep(title string) (SubStep, bool) {
	for _, sub := range s.SubSteps {
		if sub.Title == title {
			return sub, true
		}
	}
	return SubStep{}, false
}

// StepCompletionRecord is the persisted completion flag for (user, step).
type StepCompletionRecord struct {
	UserID    string    `json:"userId"`
	StepID    int       `json:"stepId"`
	Completed bool      `json:"completed"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SubstepCompletionRecord is the persisted completion flag for (user, step, substep title).
type SubstepCompletionRecord struct {
	UserID       string    `json:"userId"`
	StepID       int       `json:"stepId"`
	SubstepTitle string    `json:"substepTitle"`
	Completed    bool      `json:"completed"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// View is the reconciled journey handed to renderers.
type View struct {
	Steps     []Step   `json:"localSteps"`
	Progress  Progress `json:"progress"`
	IsLoading bool     `json:"isLoading"`
}

// FindStep returns the step with the given id.
func FindStep(steps []Step, id int) (Step, bool) {
	for _, step := range steps {
		if step.ID == id {
			return step, true
		}
	}
	return Step{}, false
}

// CloneSteps deep-copies steps so callers can overlay completion flags freely.
func CloneSteps(steps []Step) []Step {
	if steps == nil {
		return nil
	}
	out := make([]Step, len(steps))
	for i, step := range steps {
		out[i] = step
		out[i].Resources = append([]Resource(nil), step.Resources...)
		if step.SubSteps != nil {
			subs := make([]SubStep, len(step.SubSteps))
			for j, sub := range step.SubSteps {
				subs[j] = sub
				subs[j].Resources = append([]Resource(nil), sub.Resources...)
				subs[j].Course = append([]Resource(nil), sub.Course...)
			}
			out[i].SubSteps = subs
		}
	}
	return out
}
