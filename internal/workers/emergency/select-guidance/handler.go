// internal/workers/emergency/select-guidance/handler.go
package selectguidance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	apperrors "emergency-workers/internal/common/errors"
	"emergency-workers/internal/common/logger"
	"emergency-workers/internal/common/metrics"
	"emergency-workers/internal/common/validation"
	"emergency-workers/internal/emergency/escalation"
	"emergency-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "select-guidance"

	cacheKeyPrefix = "guidance:"
)

var (
	ErrGuidanceNotFound = errors.New("GUIDANCE_NOT_FOUND")
	ErrSearchFailed     = errors.New("SEARCH_FAILED")
)

type Handler struct {
	config     *Config
	es         *elasticsearch.Client
	redis      *redis.Client
	validator  *validation.Validator
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

// NewHandler accepts nil es or redis clients; lookups then fall through to
// the next source.
func NewHandler(config *Config, es *elasticsearch.Client, rdb *redis.Client, validator *validation.Validator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		es:         es,
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

	if res, err := h.validator.ValidateJSON(TaskType, job.Variables); err != nil || !res.Valid {
		details := res.Summary()
		if err != nil {
			details = err.Error()
		}
		h.failJob(client, job, apperrors.NewInvalidInputError(details))
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

// Execute builds the assistant reply. Emergencies get guidance from the
// cache, the search index or the built-in table, in that order; anything
// else gets a topic reply.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, apperrors.NewInvalidInputError("input cannot be nil")
	}

	result := input.Classification
	if !result.IsEmergency() {
		topic := topicFor(input.Text, input.ImageURL)
		return &Output{
			Response: topicReplies[topic],
			Source:   SourceTopic,
			Topic:    topic,
		}, nil
	}

	g, source := h.findGuidance(ctx, result.Category, input.Text)
	metrics.GuidanceLookups.WithLabelValues(source).Inc()

	h.logger.Info("guidance selected", map[string]interface{}{
		"category": result.Category,
		"severity": string(result.Severity),
		"source":   source,
	})

	return &Output{
		Response:     emergencyReply(g, result),
		Source:       source,
		DisasterType: g.DisasterType,
		Urgency:      escalation.UrgencyLabel(result.Severity),
		Guidance:     &g,
	}, nil
}

func (h *Handler) findGuidance(ctx context.Context, category, text string) (models.Guideline, string) {
	if g, ok := h.cached(ctx, category); ok {
		return g, SourceCache
	}

	g, err := h.search(ctx, category, text)
	switch {
	case err == nil:
		if g.DisasterType == category {
			h.store(ctx, category, g)
		}
		return g, SourceSearch
	case errors.Is(err, ErrGuidanceNotFound):
		h.logger.Debug("no indexed guidance", map[string]interface{}{"category": category})
	default:
		h.logger.Warn("guidance search unavailable, using built-in guidance", map[string]interface{}{
			"category": category,
			"error":    err,
		})
	}
	return BuiltinGuidance(category), SourceBuiltin
}

func (h *Handler) cached(ctx context.Context, category string) (models.Guideline, bool) {
	var g models.Guideline
	if h.redis == nil {
		return g, false
	}
	raw, err := h.redis.Get(ctx, cacheKeyPrefix+category).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			h.logger.Warn("guidance cache read failed", map[string]interface{}{"error": err})
		}
		return g, false
	}
	if err := json.Unmarshal([]byte(raw), &g); err != nil {
		return g, false
	}
	return g, true
}

func (h *Handler) store(ctx context.Context, category string, g models.Guideline) {
	if h.redis == nil {
		return
	}
	data, err := json.Marshal(g)
	if err != nil {
		return
	}
	if err := h.redis.Set(ctx, cacheKeyPrefix+category, data, h.config.CacheTTL).Err(); err != nil {
		h.logger.Warn("guidance cache write failed", map[string]interface{}{"error": err})
	}
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string           `json:"_id"`
			Source models.Guideline `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// search prefers a document for the category and otherwise accepts one whose
// keywords match the text.
func (h *Handler) search(ctx context.Context, category, text string) (models.Guideline, error) {
	var g models.Guideline
	if h.es == nil {
		return g, fmt.Errorf("%w: no search client", ErrSearchFailed)
	}

	query := map[string]interface{}{
		"size": 1,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"should": []interface{}{
					map[string]interface{}{"term": map[string]interface{}{
						"disaster_type": map[string]interface{}{"value": category, "boost": 2},
					}},
					map[string]interface{}{"match": map[string]interface{}{
						"keywords": text,
					}},
				},
				"minimum_should_match": 1,
			},
		},
	}
	body, err := json.Marshal(query)
	if err != nil {
		return g, err
	}

	sctx, cancel := context.WithTimeout(ctx, h.config.SearchTimeout)
	defer cancel()

	res, err := h.es.Search(
		h.es.Search.WithContext(sctx),
		h.es.Search.WithIndex(h.config.Index),
		h.es.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return g, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return g, ErrGuidanceNotFound
	}
	if res.IsError() {
		return g, fmt.Errorf("%w: %s", ErrSearchFailed, res.Status())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return g, fmt.Errorf("%w: decode: %v", ErrSearchFailed, err)
	}
	if len(parsed.Hits.Hits) == 0 {
		return g, ErrGuidanceNotFound
	}

	g = parsed.Hits.Hits[0].Source
	g.ID = parsed.Hits.Hits[0].ID
	if g.GuidanceText == "" {
		return g, ErrGuidanceNotFound
	}
	return g, nil
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
