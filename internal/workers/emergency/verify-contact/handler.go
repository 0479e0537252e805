// internal/workers/emergency/verify-contact/handler.go
package verifycontact

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	apperrors "emergency-workers/internal/common/errors"
	"emergency-workers/internal/common/logger"
	"emergency-workers/internal/common/metrics"
	"emergency-workers/internal/common/validation"
	"emergency-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "verify-contact"

	codeKeyPrefix = "verification:"
)

var (
	ErrUnknownAction = errors.New("UNKNOWN_ACTION")
)

// Sender delivers the verification code. *aws.Notifier satisfies it.
type Sender interface {
	SendEmail(ctx context.Context, to, subject, body string) (string, error)
	SendSMS(ctx context.Context, phone, message string) (string, error)
}

type Handler struct {
	config     *Config
	db         *sql.DB
	redis      *redis.Client
	sender     Sender
	validator  *validation.Validator
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, db *sql.DB, rdb *redis.Client, sender Sender, validator *validation.Validator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		db:         db,
		redis:      rdb,
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
		h.failJob(client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, apperrors.NewInvalidInputError("input cannot be nil")
	}
	if input.ContactID == "" {
		return nil, apperrors.NewInvalidInputError("contactId is required")
	}

	switch input.Action {
	case ActionSend:
		return h.send(ctx, input)
	case ActionConfirm:
		return h.confirm(ctx, input)
	default:
		return nil, apperrors.NewInvalidInputError(fmt.Sprintf("%v: %q", ErrUnknownAction, input.Action))
	}
}

// send issues a fresh code, replacing any outstanding one for the contact.
func (h *Handler) send(ctx context.Context, input *Input) (*Output, error) {
	channel := input.Channel
	if channel == "" {
		channel = models.ChannelEmail
	}

	contact, err := h.loadContact(ctx, input.ContactID)
	if err != nil {
		return nil, err
	}

	target := contact.Email
	if channel == models.ChannelSMS {
		target = contact.Phone
	}
	if target == "" {
		return nil, apperrors.NewVerificationNoTargetError(channel)
	}

	code, err := generateCode()
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	key := codeKeyPrefix + contact.ID
	if err := h.redis.Set(ctx, key, code, h.config.CodeTTL).Err(); err != nil {
		return nil, apperrors.NewCacheUnavailableError(err)
	}
	expiresAt := time.Now().UTC().Add(h.config.CodeTTL)

	if err := h.setStatus(ctx, contact.ID, models.VerificationPending, channel); err != nil {
		return nil, apperrors.NewVerificationFailedError(err)
	}

	if err := h.deliver(ctx, channel, target, code); err != nil {
		metrics.NotificationsSent.WithLabelValues(channel, "failed").Inc()
		h.logger.Error("verification delivery failed", map[string]interface{}{
			"contactId": contact.ID,
			"channel":   channel,
			"error":     err,
		})
		_ = h.redis.Del(ctx, key).Err()
		if serr := h.setStatus(ctx, contact.ID, models.VerificationFailed, channel); serr != nil {
			h.logger.Warn("could not mark verification failed", map[string]interface{}{"error": serr})
		}
		return nil, apperrors.NewVerificationFailedError(err)
	}
	metrics.NotificationsSent.WithLabelValues(channel, "sent").Inc()

	h.logger.Info("verification code sent", map[string]interface{}{
		"contactId": contact.ID,
		"channel":   channel,
	})

	return &Output{
		ContactID: contact.ID,
		Status:    StatusSent,
		Channel:   channel,
		ExpiresAt: expiresAt.Format(time.RFC3339),
	}, nil
}

func (h *Handler) confirm(ctx context.Context, input *Input) (*Output, error) {
	if input.Code == "" {
		return nil, apperrors.NewInvalidInputError("code is required to confirm")
	}
	out := &Output{ContactID: input.ContactID, Channel: input.Channel}

	key := codeKeyPrefix + input.ContactID
	stored, err := h.redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		out.Status = StatusExpired
		return out, nil
	}
	if err != nil {
		return nil, apperrors.NewCacheUnavailableError(err)
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(input.Code)) != 1 {
		out.Status = StatusInvalid
		return out, nil
	}

	res, err := h.db.ExecContext(ctx, `
		UPDATE emergency_contacts
		SET verification_status = $2, verified_at = $3
		WHERE id = $1`,
		input.ContactID, models.VerificationVerified, time.Now().UTC())
	if err != nil {
		return nil, apperrors.NewVerificationFailedError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, apperrors.NewContactNotFoundError(input.ContactID)
	}

	if err := h.redis.Del(ctx, key).Err(); err != nil {
		h.logger.Warn("verification code not cleared", map[string]interface{}{"error": err})
	}

	h.logger.Info("contact verified", map[string]interface{}{"contactId": input.ContactID})

	out.Status = StatusVerified
	return out, nil
}

func (h *Handler) loadContact(ctx context.Context, id string) (*models.EmergencyContact, error) {
	c := &models.EmergencyContact{ID: id}
	err := h.db.QueryRowContext(ctx, `
		SELECT name, phone, COALESCE(email, '')
		FROM emergency_contacts
		WHERE id = $1`, id).Scan(&c.Name, &c.Phone, &c.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewContactNotFoundError(id)
	}
	if err != nil {
		return nil, apperrors.NewVerificationFailedError(err)
	}
	return c, nil
}

func (h *Handler) setStatus(ctx context.Context, id, status, channel string) error {
	_, err := h.db.ExecContext(ctx, `
		UPDATE emergency_contacts
		SET verification_status = $2, verification_type = $3
		WHERE id = $1`, id, status, channel)
	return err
}

func (h *Handler) deliver(ctx context.Context, channel, target, code string) error {
	if h.sender == nil {
		return fmt.Errorf("%s channel not configured", channel)
	}
	minutes := int(h.config.CodeTTL.Minutes())
	msg := fmt.Sprintf("Your emergency contact verification code is %s. It expires in %d minutes.", code, minutes)

	var err error
	if channel == models.ChannelSMS {
		_, err = h.sender.SendSMS(ctx, target, msg)
	} else {
		_, err = h.sender.SendEmail(ctx, target, "Verify your emergency contact", msg)
	}
	return err
}

// generateCode returns a uniformly random six-digit code without a leading zero.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
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
