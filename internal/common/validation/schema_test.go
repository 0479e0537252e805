package validation

import (
	"testing"

	"emergency-workers/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var utteranceSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"text": map[string]interface{}{"type": "string", "maxLength": 20},
		"location": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"lat": map[string]interface{}{"type": "number", "minimum": -90, "maximum": 90},
				"lng": map[string]interface{}{"type": "number", "minimum": -180, "maximum": 180},
			},
			"required": []interface{}{"lat", "lng"},
		},
	},
}

func TestValidator_ValidateJSON(t *testing.T) {
	v := NewValidator()
	require.NoError(t, v.Register("classify-utterance", utteranceSchema))
	assert.True(t, v.Has("classify-utterance"))

	tests := []struct {
		name  string
		doc   string
		valid bool
		field string
	}{
		{"plain text", `{"text":"help fire"}`, true, ""},
		{"empty document", `{}`, true, ""},
		{"text wrong type", `{"text":42}`, false, "text"},
		{"text too long", `{"text":"this sentence is far too long"}`, false, "text"},
		{"latitude out of range", `{"location":{"lat":120,"lng":0}}`, false, "location.lat"},
		{"location missing lng", `{"location":{"lat":12}}`, false, "location"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := v.ValidateJSON("classify-utterance", tt.doc)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, res.Valid)
			if !tt.valid {
				require.NotEmpty(t, res.Errors)
				assert.Equal(t, tt.field, res.Errors[0].Field)
				assert.NotEmpty(t, res.Summary())
			}
		})
	}
}

func TestValidator_UnknownTaskTypeAccepts(t *testing.T) {
	v := NewValidator()
	res, err := v.ValidateInput("record-interaction", map[string]interface{}{"anything": true})
	require.NoError(t, err)
	assert.True(t, res.Valid)

	var nilValidator *Validator
	res, err = nilValidator.ValidateJSON("classify-utterance", `{"text":1}`)
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Summary())
}

func TestValidator_MalformedDocument(t *testing.T) {
	v := NewValidator()
	require.NoError(t, v.Register("classify-utterance", utteranceSchema))
	_, err := v.ValidateJSON("classify-utterance", `{"text":`)
	assert.Error(t, err)
}

func TestFromRegistry(t *testing.T) {
	reg := &registry.ActivityRegistry{Activities: []registry.Activity{
		{TaskType: "classify-utterance", InputSchema: utteranceSchema},
		{TaskType: "record-interaction"},
	}}
	v, err := FromRegistry(reg)
	require.NoError(t, err)
	assert.True(t, v.Has("classify-utterance"))
	assert.False(t, v.Has("record-interaction"))

	bad := &registry.ActivityRegistry{Activities: []registry.Activity{
		{TaskType: "broken", InputSchema: map[string]interface{}{"type": 12}},
	}}
	_, err = FromRegistry(bad)
	assert.Error(t, err)
}
