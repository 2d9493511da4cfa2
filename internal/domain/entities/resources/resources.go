// Package resources defines user resource content: the typed envelope persisted
// for each resource form and the mapping from resource type to the component
// that edits it.
package resources

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidEnvelope  = errors.New("invalid resource envelope")
	ErrResourceNotFound = errors.New("resource not found")
)

// Component names the editor a client mounts for a resource type.
type Component string

const (
	ComponentGenericForm       Component = "generic-form"
	ComponentPersona           Component = "persona-builder"
	ComponentEmpathyMap        Component = "empathy-map"
	ComponentInterviewGuide    Component = "interview-guide"
	ComponentUserTests         Component = "user-test-log"
	ComponentSWOT              Component = "swot-matrix"
	ComponentMarketStudy       Component = "market-study"
	ComponentValueProposition  Component = "value-proposition-canvas"
	ComponentBusinessModel     Component = "business-model-canvas"
	ComponentFinancialForecast Component = "financial-forecast"
	ComponentLegalComparator   Component = "legal-status-comparator"
	ComponentCapTable          Component = "cap-table"
	ComponentPitchDeck         Component = "pitch-deck-outline"
	ComponentFundingPlan       Component = "funding-plan"
	ComponentLink              Component = "external-link"
)

type typeSpec struct {
	component Component
	version   int
}

var types = map[string]typeSpec{
	"form":                    {ComponentGenericForm, 1},
	"persona":                 {ComponentPersona, 2},
	"empathy_map":             {ComponentEmpathyMap, 1},
	"interview_guide":         {ComponentInterviewGuide, 1},
	"user_tests":              {ComponentUserTests, 1},
	"swot":                    {ComponentSWOT, 1},
	"market_study":            {ComponentMarketStudy, 1},
	"value_proposition":       {ComponentValueProposition, 1},
	"business_model_canvas":   {ComponentBusinessModel, 2},
	"financial_forecast":      {ComponentFinancialForecast, 1},
	"legal_status_comparator": {ComponentLegalComparator, 1},
	"cap_table":               {ComponentCapTable, 1},
	"pitch_deck":              {ComponentPitchDeck, 1},
	"funding_plan":            {ComponentFundingPlan, 1},
	"link":                    {ComponentLink, 1},
}

// ComponentFor maps a resource type to its editor; unknown types fall back to
// the generic form.
func ComponentFor(resourceType string) Component {
	if spec, ok := types[resourceType]; ok {
		return spec.component
	}
	return ComponentGenericForm
}

// IsKnownType reports whether resourceType has a registered schema
func IsKnownType(resourceType string) bool {
	_, ok := types[resourceType]
	return ok
}

// CurrentVersion is the newest payload schema version accepted for a type.
func CurrentVersion(resourceType string) int {
	return types[resourceType].version
}

// Envelope tags an opaque form payload with its resource type and schema version.
type Envelope struct {
	Type          string          `json:"type"`
	SchemaVersion int             `json:"schemaVersion"`
	Payload       json.RawMessage `json:"payload"`
}

// Validate accepts known types, versions from 1 to the current one, and payloads
// that are JSON objects.
func (e Envelope) Validate() error {
	spec, ok := types[e.Type]
	if !ok {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidEnvelope, e.Type)
	}
	if e.SchemaVersion < 1 || e.SchemaVersion > spec.version {
		return fmt.Errorf("%w: %s schema version %d not in [1,%d]", ErrInvalidEnvelope, e.Type, e.SchemaVersion, spec.version)
	}
	trimmed := bytes.TrimSpace(e.Payload)
	if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
		return fmt.Errorf("%w: payload must be a JSON object", ErrInvalidEnvelope)
	}
	return nil
}

// UserResource is one saved resource form, unique per (user, step, substep, type).
type UserResource struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	StepID       int       `json:"stepId"`
	SubstepTitle string    `json:"substepTitle"`
	Envelope     Envelope  `json:"envelope"`
	Component    Component `json:"component"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Attachment is a file uploaded alongside a resource and kept in object storage.
type Attachment struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	StepID       int       `json:"stepId"`
	SubstepTitle string    `json:"substepTitle"`
	ResourceType string    `json:"resourceType"`
	FileName     string    `json:"fileName"`
	ContentType  string    `json:"contentType"`
	Size         int64     `json:"size"`
	ObjectKey    string    `json:"objectKey"`
	ThumbnailKey string    `json:"thumbnailKey,omitempty"`
	DownloadURL  string    `json:"downloadUrl,omitempty"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
