// internal/workers/emergency/dispatch-emergency-call/handler.go
package dispatchemergencycall

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "emergency-workers/internal/common/errors"
	"emergency-workers/internal/common/logger"
	"emergency-workers/internal/common/metrics"
	"emergency-workers/internal/common/validation"
	"emergency-workers/internal/emergency/escalation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "dispatch-emergency-call"
)

var (
	ErrTopicNotConfigured = errors.New("DISPATCH_TOPIC_NOT_CONFIGURED")
)

// Publisher puts a message on a topic the dialer subscribes to.
type Publisher interface {
	PublishTopic(ctx context.Context, topicARN, subject, message string, attributes map[string]string) (string, error)
}

type Handler struct {
	config     *Config
	publisher  Publisher
	validator  *validation.Validator
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, publisher Publisher, validator *validation.Validator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		publisher:  publisher,
		validator:  validator,
		errHandler: apperrors.NewErrorHandler(log),
		logger:     log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	res, err := h.validator.ValidateJSON(TaskType, job.Variables)
	if err != nil {
		h.failJob(client, job, apperrors.NewInvalidInputError(err.Error()))
		return
	}
	if !res.Valid {
		h.failJob(client, job, apperrors.NewInvalidInputError(res.Summary()))
		return
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, apperrors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

// Execute publishes a dispatch request when the escalation asks for an
// automatic call. The call itself is placed by the subscriber.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, apperrors.NewInvalidInputError("input cannot be nil")
	}

	now := time.Now().UTC().Format(time.RFC3339)
	out := &Output{
		DispatchID:   uuid.New().String(),
		DispatchedAt: now,
	}

	if !input.Escalation.ShouldAutoCall {
		out.Status = StatusSkipped
		return out, nil
	}
	if h.publisher == nil || h.config.TopicARN == "" {
		return nil, apperrors.NewInternalError(ErrTopicNotConfigured)
	}

	number := input.EmergencyNumber
	if number == "" {
		number = escalation.EmergencyNumber(input.Classification.Category)
	}

	req := DispatchRequest{
		DispatchID:  out.DispatchID,
		Number:      number,
		Category:    input.Classification.Category,
		Severity:    input.Classification.Severity,
		Confidence:  input.Classification.Confidence,
		Location:    input.Location,
		UserID:      input.UserID,
		RequestedAt: now,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	subject := fmt.Sprintf("Emergency dispatch: %s", req.Category)
	msgID, err := h.publisher.PublishTopic(ctx, h.config.TopicARN, subject, string(body), map[string]string{
		"category": req.Category,
		"severity": string(req.Severity),
		"number":   number,
	})
	if err != nil {
		metrics.NotificationsSent.WithLabelValues("dispatch", "failed").Inc()
		return nil, apperrors.NewDispatchFailedError(err)
	}
	metrics.NotificationsSent.WithLabelValues("dispatch", "sent").Inc()

	out.Status = StatusPublished
	out.Number = number
	out.MessageID = msgID

	h.logger.Info("dispatch request published", map[string]interface{}{
		"dispatchId": out.DispatchID,
		"category":   req.Category,
		"number":     number,
		"messageId":  msgID,
	})

	return out, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	std := apperrors.Normalize(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(std.Code)).Inc()
	h.errHandler.HandleJobError(context.Background(), client, job, std)
}
