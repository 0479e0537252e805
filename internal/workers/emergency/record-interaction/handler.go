// internal/workers/emergency/record-interaction/handler.go
package recordinteraction

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "emergency-workers/internal/common/errors"
	"emergency-workers/internal/common/logger"
	"emergency-workers/internal/common/metrics"
	"emergency-workers/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "record-interaction"

	fieldTotal     = "total"
	fieldEmergency = "emergency"
	typePrefix     = "type:"
)

type Handler struct {
	config     *Config
	db         *sql.DB
	redis      *redis.Client
	validator  *validation.Validator
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, db *sql.DB, rdb *redis.Client, validator *validation.Validator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		db:         db,
		redis:      rdb,
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

// Execute stores the exchange and bumps the chat counters. Counter failures
// are logged only; the row is the record of truth.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, apperrors.NewInvalidInputError("input cannot be nil")
	}
	if strings.TrimSpace(input.Prompt) == "" {
		return nil, apperrors.NewInvalidInputError("prompt is required")
	}

	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := h.db.ExecContext(ctx, `
		INSERT INTO chat_history (id, user_id, prompt, response, disaster_type, emergency_detected, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id,
		nullString(input.UserID),
		input.Prompt,
		input.Response,
		nullString(input.DisasterType),
		input.EmergencyDetected,
		now,
	)
	if err != nil {
		return nil, apperrors.NewDatabaseInsertFailedError(err)
	}

	if err := h.incrementCounters(ctx, input); err != nil {
		h.logger.Warn("chat counters not updated", map[string]interface{}{
			"recordId": id,
			"error":    err,
		})
	}

	h.logger.Info("interaction recorded", map[string]interface{}{
		"recordId":          id,
		"disasterType":      input.DisasterType,
		"emergencyDetected": input.EmergencyDetected,
	})

	return &Output{
		RecordID:   id,
		RecordedAt: now.Format(time.RFC3339),
	}, nil
}

func (h *Handler) incrementCounters(ctx context.Context, input *Input) error {
	if h.redis == nil {
		return nil
	}
	_, err := h.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, h.config.StatsKey, fieldTotal, 1)
		if input.EmergencyDetected {
			pipe.HIncrBy(ctx, h.config.StatsKey, fieldEmergency, 1)
		}
		if input.DisasterType != "" {
			pipe.HIncrBy(ctx, h.config.StatsKey, typePrefix+input.DisasterType, 1)
		}
		return nil
	})
	return err
}

// Stats reads the chat counters.
func (h *Handler) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{ByType: map[string]int64{}}
	if h.redis == nil {
		return st, nil
	}

	fields, err := h.redis.HGetAll(ctx, h.config.StatsKey).Result()
	if err != nil {
		return nil, apperrors.NewCacheUnavailableError(err)
	}

	for k, v := range fields {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		switch {
		case k == fieldTotal:
			st.Total = n
		case k == fieldEmergency:
			st.Emergency = n
		case strings.HasPrefix(k, typePrefix):
			st.ByType[strings.TrimPrefix(k, typePrefix)] = n
		}
	}
	if st.Total > 0 {
		st.EmergencyRate = float64(st.Emergency) / float64(st.Total)
	}
	return st, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
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
