// internal/workers/emergency/notify-contacts/handler.go
package notifycontacts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "emergency-workers/internal/common/errors"
	"emergency-workers/internal/common/logger"
	"emergency-workers/internal/common/metrics"
	"emergency-workers/internal/common/validation"
	"emergency-workers/internal/emergency/escalation"
	"emergency-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "notify-contacts"

	channelSMS   = "sms"
	channelEmail = "email"
)

var (
	ErrContactLookupFailed = errors.New("CONTACT_LOOKUP_FAILED")
)

// Sender delivers messages to a single recipient. *aws.Notifier satisfies it.
type Sender interface {
	SendEmail(ctx context.Context, to, subject, body string) (string, error)
	SendSMS(ctx context.Context, phone, message string) (string, error)
}

type Handler struct {
	config     *Config
	db         *sql.DB
	sender     Sender
	validator  *validation.Validator
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, db *sql.DB, sender Sender, validator *validation.Validator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		db:         db,
		sender:     sender,
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
		if errors.Is(err, ErrContactLookupFailed) {
			err = apperrors.NewContactLookupFailedError(err)
		}
		h.failJob(client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

// Execute alerts the user's emergency contacts, primary first. A failed
// delivery to one contact does not stop delivery to the rest.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, apperrors.NewInvalidInputError("input cannot be nil")
	}

	out := &Output{
		NotificationID: uuid.New().String(),
		SentAt:         time.Now().UTC().Format(time.RFC3339),
	}

	if !input.Escalation.ShouldNotifyContacts {
		out.Status = StatusSkipped
		return out, nil
	}
	if strings.TrimSpace(input.UserID) == "" {
		return nil, apperrors.NewInvalidInputError("userId is required")
	}

	contacts, err := h.loadContacts(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContactLookupFailed, err)
	}

	subject, body := h.compose(input)

	smsOn := h.sender != nil && h.config.SMSEnabled
	emailOn := h.sender != nil && h.config.EmailEnabled

	attempted := 0
	for _, c := range contacts {
		if smsOn && c.Phone != "" {
			attempted++
			if _, err := h.sender.SendSMS(ctx, c.Phone, body); err != nil {
				h.deliveryFailed(channelSMS, c, err)
				out.Failures++
			} else {
				metrics.NotificationsSent.WithLabelValues(channelSMS, "sent").Inc()
				out.SMSSent++
			}
		}
		if emailOn && c.Email != "" {
			attempted++
			if _, err := h.sender.SendEmail(ctx, c.Email, subject, body); err != nil {
				h.deliveryFailed(channelEmail, c, err)
				out.Failures++
			} else {
				metrics.NotificationsSent.WithLabelValues(channelEmail, "sent").Inc()
				out.EmailsSent++
			}
		}
	}

	delivered := out.SMSSent + out.EmailsSent
	switch {
	case attempted == 0:
		out.Status = StatusNoContacts
	case out.Failures == 0:
		out.Status = StatusSent
	case delivered > 0:
		out.Status = StatusPartial
	default:
		out.Status = StatusFailed
	}

	h.logger.Info("contacts notified", map[string]interface{}{
		"userId":     input.UserID,
		"contacts":   len(contacts),
		"smsSent":    out.SMSSent,
		"emailsSent": out.EmailsSent,
		"failures":   out.Failures,
		"status":     out.Status,
	})

	return out, nil
}

func (h *Handler) loadContacts(ctx context.Context, userID string) ([]models.EmergencyContact, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT id, name, phone, COALESCE(email, ''), relationship, priority, location_sharing_enabled
		FROM emergency_contacts
		WHERE user_id = $1
		ORDER BY priority ASC, created_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []models.EmergencyContact
	for rows.Next() {
		c := models.EmergencyContact{UserID: userID}
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Relationship, &c.Priority, &c.LocationSharing); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

func (h *Handler) compose(input *Input) (string, string) {
	category := input.Classification.Category
	if category == "" {
		category = "emergency"
	}
	subject := fmt.Sprintf("EMERGENCY ALERT - %s", category)

	var b strings.Builder
	fmt.Fprintf(&b, "EMERGENCY ALERT: %s", category)
	if urgency := escalation.UrgencyLabel(input.Classification.Severity); urgency != "" {
		fmt.Fprintf(&b, " (%s)", urgency)
	}
	b.WriteString("\n")
	if text := strings.TrimSpace(input.Text); text != "" {
		fmt.Fprintf(&b, "Message: %s\n", text)
	}
	if input.Escalation.ShouldAttachLocation && input.Location != nil {
		fmt.Fprintf(&b, "Location: %s\n", input.Location)
		fmt.Fprintf(&b, "Map: %s\n", input.Location.MapLink(h.config.MapBaseURL))
	}
	fmt.Fprintf(&b, "Emergency line: %s", escalation.EmergencyNumber(category))
	return subject, b.String()
}

func (h *Handler) deliveryFailed(channel string, c models.EmergencyContact, err error) {
	metrics.NotificationsSent.WithLabelValues(channel, "failed").Inc()
	h.logger.Error("notification delivery failed", map[string]interface{}{
		"channel":   channel,
		"contactId": c.ID,
		"error":     err,
	})
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
