// internal/workers/emergency/classify-utterance/handler.go
package classifyutterance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "emergency-workers/internal/common/errors"
	"emergency-workers/internal/common/logger"
	"emergency-workers/internal/common/metrics"
	"emergency-workers/internal/common/observability"
	"emergency-workers/internal/common/validation"
	"emergency-workers/internal/emergency/classifier"
	"emergency-workers/internal/emergency/command"
	"emergency-workers/internal/emergency/escalation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "classify-utterance"
)

var (
	ErrInvalidLocation = errors.New("INVALID_LOCATION")
)

type Handler struct {
	config     *Config
	classifier *classifier.Classifier
	validator  *validation.Validator
	obs        *observability.Observability
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(
	config *Config,
	c *classifier.Classifier,
	validator *validation.Validator,
	obs *observability.Observability,
	log logger.Logger,
) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		classifier: c,
		validator:  validator,
		obs:        obs,
		errHandler: apperrors.NewErrorHandler(log),
		logger:     log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

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

	output, err := h.Execute(ctx, &input)
	if err != nil {
		if errors.Is(err, ErrInvalidLocation) {
			err = apperrors.NewInvalidInputError(err.Error())
		}
		h.failJob(client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

// Execute classifies the utterance and derives escalation and routing. A
// nil input or missing text classifies as empty text.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		input = &Input{}
	}
	if input.Location != nil && !input.Location.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidLocation, input.Location)
	}

	result := h.classifier.ClassifyUtterance(input)
	decision := escalation.Decide(result)

	out := &Output{
		Classification: result,
		Escalation:     decision,
		Command:        command.Parse(input.Text),
		Urgency:        escalation.UrgencyLabel(result.Severity),
		IsEmergency:    result.IsEmergency(),
		ClassifiedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if out.IsEmergency {
		out.EmergencyNumber = escalation.EmergencyNumber(result.Category)
	}

	h.record(ctx, result, decision)

	h.logger.Info("utterance classified", map[string]interface{}{
		"utteranceId": input.ID,
		"category":    result.Category,
		"severity":    string(result.Severity),
		"confidence":  result.Confidence,
		"matched":     len(result.MatchedKeywords),
		"command":     string(out.Command),
	})

	return out, nil
}

func (h *Handler) record(ctx context.Context, result classifier.Result, d escalation.Decision) {
	metrics.ClassificationsTotal.WithLabelValues(result.Category, string(result.Severity)).Inc()
	metrics.ClassificationConfidence.Observe(result.Confidence)

	if d.ShouldAutoCall {
		metrics.EscalationsTotal.WithLabelValues("auto_call").Inc()
	}
	if d.ShouldNotifyContacts {
		metrics.EscalationsTotal.WithLabelValues("notify_contacts").Inc()
	}
	if d.ShouldAttachLocation {
		metrics.EscalationsTotal.WithLabelValues("attach_location").Inc()
	}
	if d.Any() {
		h.obs.RecordEscalation(ctx, string(result.Severity), d.ShouldAutoCall, d.ShouldNotifyContacts, d.ShouldAttachLocation)
	}
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
