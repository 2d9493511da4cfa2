package resources

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComponentFor(t *testing.T) {
	assert.Equal(t, ComponentPersona, ComponentFor("persona"))
	assert.Equal(t, ComponentBusinessModel, ComponentFor("business_model_canvas"))
	assert.Equal(t, ComponentGenericForm, ComponentFor("form"))
	assert.Equal(t, ComponentGenericForm, ComponentFor("unheard_of"))
}

func TestEnvelopeValidate(t *testing.T) {
	cases := []struct {
		name     string
		envelope Envelope
		valid    bool
	}{
		{"object payload", Envelope{Type: "swot", SchemaVersion: 1, Payload: json.RawMessage(`{"strengths":["équipe"]}`)}, true},
		{"older version", Envelope{Type: "persona", SchemaVersion: 1, Payload: json.RawMessage(`{}`)}, true},
		{"current version", Envelope{Type: "persona", SchemaVersion: 2, Payload: json.RawMessage(` {"a":1} `)}, true},
		{"future version", Envelope{Type: "persona", SchemaVersion: 3, Payload: json.RawMessage(`{}`)}, false},
		{"zero version", Envelope{Type: "swot", SchemaVersion: 0, Payload: json.RawMessage(`{}`)}, false},
		{"unknown type", Envelope{Type: "hologram", SchemaVersion: 1, Payload: json.RawMessage(`{}`)}, false},
		{"array payload", Envelope{Type: "swot", SchemaVersion: 1, Payload: json.RawMessage(`[1,2]`)}, false},
		{"empty payload", Envelope{Type: "swot", SchemaVersion: 1}, false},
		{"broken json", Envelope{Type: "swot", SchemaVersion: 1, Payload: json.RawMessage(`{"a":`)}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.envelope.Validate()
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidEnvelope)
			}
		})
	}
}

func TestKnownTypes(t *testing.T) {
	assert.True(t, IsKnownType("link"))
	assert.False(t, IsKnownType(""))
	assert.Equal(t, 2, CurrentVersion("persona"))
	assert.Equal(t, 0, CurrentVersion("nope"))
}
