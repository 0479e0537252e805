// internal/workers/emergency/classify-utterance/handler_test.go
package classifyutterance

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"emergency-workers/internal/common/logger"
	"emergency-workers/internal/emergency/classifier"
	"emergency-workers/internal/emergency/command"
	"emergency-workers/internal/emergency/escalation"
	"emergency-workers/internal/emergency/keywords"
	"emergency-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}

func createTestHandler(t *testing.T) *Handler {
	c, err := classifier.New(keywords.Default(), classifier.DefaultThresholds())
	require.NoError(t, err)
	return NewHandler(createTestConfig(), c, nil, nil, logger.NewTestLogger(t))
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	tests := []struct {
		name           string
		input          *Input
		validateOutput func(t *testing.T, output *Output)
	}{
		{
			name:  "fire in building is medium",
			input: &Input{ID: "u-1", Text: "there's a fire in my building"},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, "fire", output.Classification.Category)
				assert.Equal(t, classifier.SeverityMedium, output.Classification.Severity)
				assert.InDelta(t, 5.0, output.Classification.Confidence, 1e-9)
				assert.Equal(t, escalation.Decision{ShouldNotifyContacts: true}, output.Escalation)
				assert.Equal(t, escalation.NumberFire, output.EmergencyNumber)
				assert.Equal(t, "MEDIUM", output.Urgency)
				assert.True(t, output.IsEmergency)
				assert.Equal(t, command.None, output.Command)
			},
		},
		{
			name:  "distress words are critical",
			input: &Input{Text: "help emergency trapped"},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, "distress", output.Classification.Category)
				assert.Equal(t, classifier.SeverityCritical, output.Classification.Severity)
				assert.Equal(t, escalation.Decision{
					ShouldAutoCall:       true,
					ShouldNotifyContacts: true,
					ShouldAttachLocation: true,
				}, output.Escalation)
				assert.Equal(t, escalation.NumberAllEmergencies, output.EmergencyNumber)
				assert.Equal(t, "CRITICAL", output.Urgency)
			},
		},
		{
			name:  "small talk is not an emergency",
			input: &Input{Text: "what's for lunch"},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, keywords.GeneralCategory, output.Classification.Category)
				assert.Equal(t, classifier.SeverityNone, output.Classification.Severity)
				assert.False(t, output.Escalation.Any())
				assert.False(t, output.IsEmergency)
				assert.Empty(t, output.EmergencyNumber)
				assert.Empty(t, output.Urgency)
			},
		},
		{
			name:  "voice command without emergency keywords",
			input: &Input{Text: "find hospital near me"},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, command.FindHospitals, output.Command)
				assert.False(t, output.IsEmergency)
			},
		},
		{
			name:  "tie keeps first declared category and routes the command",
			input: &Input{Text: "there is a fire, call emergency now"},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, "fire", output.Classification.Category)
				assert.Equal(t, classifier.SeverityMedium, output.Classification.Severity)
				assert.Equal(t, command.CallEmergency, output.Command)
			},
		},
		{
			name:  "missing text behaves as empty",
			input: &Input{Location: &models.Coordinates{Lat: 12.97, Lng: 77.59}},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, keywords.GeneralCategory, output.Classification.Category)
				assert.Zero(t, output.Classification.Confidence)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := createTestHandler(t)
			output, err := handler.Execute(context.Background(), tt.input)
			require.NoError(t, err)
			require.NotNil(t, output)
			assert.NotEmpty(t, output.ClassifiedAt)
			tt.validateOutput(t, output)
		})
	}
}

func TestHandler_Execute_NilInput(t *testing.T) {
	handler := createTestHandler(t)
	output, err := handler.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, classifier.SeverityNone, output.Classification.Severity)
}

func TestHandler_Execute_InvalidLocation(t *testing.T) {
	handler := createTestHandler(t)
	_, err := handler.Execute(context.Background(), &Input{
		Text:     "help",
		Location: &models.Coordinates{Lat: 123, Lng: 0},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidLocation)
}

func TestHandler_Execute_CustomThresholds(t *testing.T) {
	c, err := classifier.New(keywords.Default(), classifier.Thresholds{Emergency: 6, Low: 7, Medium: 8, High: 9})
	require.NoError(t, err)
	handler := NewHandler(createTestConfig(), c, nil, nil, logger.NewNoOpLogger())

	output, err := handler.Execute(context.Background(), &Input{Text: "there's a fire in my building"})
	require.NoError(t, err)
	assert.False(t, output.IsEmergency)
	assert.Equal(t, keywords.GeneralCategory, output.Classification.Category)
}

func TestOutput_JSONShape(t *testing.T) {
	handler := createTestHandler(t)
	output, err := handler.Execute(context.Background(), &Input{Text: "help emergency trapped"})
	require.NoError(t, err)

	data, err := json.Marshal(output)
	require.NoError(t, err)

	var vars map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &vars))
	assert.Equal(t, true, vars["isEmergency"])
	assert.Equal(t, "112", vars["emergencyNumber"])

	esc := vars["escalation"].(map[string]interface{})
	assert.Equal(t, true, esc["shouldAutoCall"])

	cls := vars["classification"].(map[string]interface{})
	assert.Equal(t, "critical", cls["severity"])
}
