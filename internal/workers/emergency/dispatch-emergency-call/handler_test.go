// internal/workers/emergency/dispatch-emergency-call/handler_test.go
package dispatchemergencycall

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	apperrors "emergency-workers/internal/common/errors"
	"emergency-workers/internal/common/logger"
	"emergency-workers/internal/emergency/classifier"
	"emergency-workers/internal/emergency/escalation"
	"emergency-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct {
	PublishTopicFunc func(ctx context.Context, topicARN, subject, message string, attributes map[string]string) (string, error)
}

func (m *mockPublisher) PublishTopic(ctx context.Context, topicARN, subject, message string, attributes map[string]string) (string, error) {
	return m.PublishTopicFunc(ctx, topicARN, subject, message, attributes)
}

const testTopic = "arn:aws:sns:ap-south-1:000000000000:emergency-dispatch"

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second, TopicARN: testTopic}
}

func criticalInput() *Input {
	return &Input{
		UserID: "user-1",
		Classification: classifier.Result{
			Category:   "distress",
			Severity:   classifier.SeverityCritical,
			Confidence: 10,
		},
		Escalation: escalation.Decision{ShouldAutoCall: true, ShouldNotifyContacts: true, ShouldAttachLocation: true},
		Location:   &models.Coordinates{Lat: 19.076, Lng: 72.8777},
	}
}

func TestHandler_Execute_Skipped(t *testing.T) {
	pub := &mockPublisher{
		PublishTopicFunc: func(ctx context.Context, topicARN, subject, message string, attributes map[string]string) (string, error) {
			t.Fatal("publish must not be called")
			return "", nil
		},
	}
	handler := NewHandler(createTestConfig(), pub, nil, logger.NewNoOpLogger())

	input := criticalInput()
	input.Escalation.ShouldAutoCall = false

	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, output.Status)
	assert.Empty(t, output.MessageID)
}

func TestHandler_Execute_Publishes(t *testing.T) {
	var sent DispatchRequest
	var attrs map[string]string
	pub := &mockPublisher{
		PublishTopicFunc: func(ctx context.Context, topicARN, subject, message string, attributes map[string]string) (string, error) {
			assert.Equal(t, testTopic, topicARN)
			assert.Equal(t, "Emergency dispatch: distress", subject)
			require.NoError(t, json.Unmarshal([]byte(message), &sent))
			attrs = attributes
			return "msg-1", nil
		},
	}
	handler := NewHandler(createTestConfig(), pub, nil, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), criticalInput())
	require.NoError(t, err)

	assert.Equal(t, StatusPublished, output.Status)
	assert.Equal(t, "112", output.Number)
	assert.Equal(t, "msg-1", output.MessageID)
	assert.Equal(t, output.DispatchID, sent.DispatchID)
	assert.Equal(t, classifier.SeverityCritical, sent.Severity)
	require.NotNil(t, sent.Location)
	assert.InDelta(t, 19.076, sent.Location.Lat, 1e-9)
	assert.Equal(t, "critical", attrs["severity"])
}

func TestHandler_Execute_UsesGivenNumber(t *testing.T) {
	pub := &mockPublisher{
		PublishTopicFunc: func(ctx context.Context, topicARN, subject, message string, attributes map[string]string) (string, error) {
			return "msg-2", nil
		},
	}
	handler := NewHandler(createTestConfig(), pub, nil, logger.NewNoOpLogger())

	input := criticalInput()
	input.Classification.Category = "fire"
	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, escalation.NumberFire, output.Number)

	input.EmergencyNumber = "999"
	output, err = handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "999", output.Number)
}

func TestHandler_Execute_PublishError(t *testing.T) {
	pub := &mockPublisher{
		PublishTopicFunc: func(ctx context.Context, topicARN, subject, message string, attributes map[string]string) (string, error) {
			return "", errors.New("throttled")
		},
	}
	handler := NewHandler(createTestConfig(), pub, nil, logger.NewNoOpLogger())

	_, err := handler.Execute(context.Background(), criticalInput())
	require.Error(t, err)
	std := apperrors.Normalize(err)
	assert.Equal(t, apperrors.ErrCodeDispatchFailed, std.Code)
	assert.True(t, std.Retryable)
}

func TestHandler_Execute_TopicNotConfigured(t *testing.T) {
	handler := NewHandler(&Config{Timeout: time.Second}, nil, nil, logger.NewNoOpLogger())

	_, err := handler.Execute(context.Background(), criticalInput())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTopicNotConfigured)
}
