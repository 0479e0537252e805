package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToBPMNError(t *testing.T) {
	cause := stderrors.New("sns throttled")
	bpmn := ConvertToBPMNError(NewNotificationSendFailedError("sms", cause))

	assert.Equal(t, "NOTIFICATION_SEND_FAILED", bpmn.Code)
	assert.True(t, bpmn.Retryable)
	assert.Equal(t, 3, bpmn.Retries)
	assert.Equal(t, "sns throttled", bpmn.Details)

	vars := bpmn.ToErrorVariables()
	assert.Equal(t, "NOTIFICATION_SEND_FAILED", vars["errorCode"])
	assert.Equal(t, "NOTIFICATION_SEND_FAILED", vars["originalErrorCode"])
}

func TestConvertToBPMNError_NonRetryable(t *testing.T) {
	bpmn := ConvertToBPMNError(NewContactNotFoundError("c-1"))
	assert.False(t, bpmn.Retryable)
	assert.Zero(t, bpmn.Retries)
	assert.Contains(t, bpmn.Details, "c-1")
}

func TestNormalize(t *testing.T) {
	std := NewDatabaseInsertFailedError(stderrors.New("duplicate key"))
	wrapped := fmt.Errorf("record interaction: %w", std)

	got := Normalize(wrapped)
	assert.Same(t, std, got)

	unknown := Normalize(stderrors.New("weird"))
	assert.Equal(t, ErrCodeInternal, unknown.Code)
	assert.Equal(t, "weird", unknown.Details)
}

func TestStandardError_Unwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewContactLookupFailedError(cause)
	assert.ErrorIs(t, err, cause)
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidInput))
	assert.Equal(t, "SEARCH", GetErrorCategory(ErrCodeSearchTimeout))
	assert.Equal(t, "CONTACTS", GetErrorCategory(ErrCodeVerificationFailed))
	assert.Equal(t, "NOTIFICATION", GetErrorCategory(ErrCodeDispatchFailed))
	assert.Equal(t, "STORAGE", GetErrorCategory(ErrCodeCacheUnavailable))
	assert.Equal(t, "INTERNAL", GetErrorCategory(ErrCodeInternal))
}

func TestRetriesFor(t *testing.T) {
	job := entities.Job{ActivatedJob: &pb.ActivatedJob{Retries: 1}}
	require.Equal(t, 1, RetriesFor(job, 3))

	job = entities.Job{ActivatedJob: &pb.ActivatedJob{Retries: 5}}
	assert.Equal(t, 3, RetriesFor(job, 3))
	assert.True(t, IsRetryableErrorCode(ErrCodeSearchTimeout))
	assert.False(t, IsRetryableErrorCode(ErrCodeInvalidInput))
}
