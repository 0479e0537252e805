// internal/workers/emergency/select-guidance/handler_test.go
package selectguidance

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"emergency-workers/internal/common/logger"
	"emergency-workers/internal/emergency/classifier"
	"emergency-workers/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		Timeout:       5 * time.Second,
		SearchTimeout: time.Second,
		Index:         "disaster_guidance",
		CacheTTL:      time.Minute,
	}
}

func newTestES(t *testing.T, calls *int32, handler http.HandlerFunc) *elasticsearch.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return es
}

func newTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}

func hitsBody(docs ...models.Guideline) string {
	hits := make([]map[string]interface{}, 0, len(docs))
	for i, d := range docs {
		hits = append(hits, map[string]interface{}{
			"_id":     "doc-" + string(rune('a'+i)),
			"_source": d,
		})
	}
	body, _ := json.Marshal(map[string]interface{}{
		"hits": map[string]interface{}{"hits": hits},
	})
	return string(body)
}

var fireGuidance = models.Guideline{
	DisasterType:   "fire",
	Keywords:       []string{"fire", "smoke"},
	GuidanceText:   "Get out, stay out, call 101.",
	EmergencyLevel: "critical",
}

func fireInput() *Input {
	return &Input{
		Text: "there's a fire in my building",
		Classification: classifier.Result{
			Category:        "fire",
			Severity:        classifier.SeverityMedium,
			MatchedKeywords: []string{"fire"},
			Confidence:      5.0,
		},
	}
}

// ==========================
// Emergency Guidance Tests
// ==========================

func TestHandler_Execute_SearchThenCache(t *testing.T) {
	var calls int32
	var query string
	es := newTestES(t, &calls, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		query = string(body)
		_, _ = w.Write([]byte(hitsBody(fireGuidance)))
	})
	rdb, mr := newTestRedis(t)

	handler := NewHandler(createTestConfig(), es, rdb, nil, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), fireInput())
	require.NoError(t, err)
	assert.Equal(t, SourceSearch, output.Source)
	assert.Equal(t, "fire", output.DisasterType)
	assert.Equal(t, "MEDIUM", output.Urgency)
	assert.Contains(t, output.Response, "Get out, stay out, call 101.")
	assert.Contains(t, output.Response, "Confidence: 50%")
	assert.Contains(t, query, `"disaster_type"`)
	assert.True(t, mr.Exists("guidance:fire"))

	output, err = handler.Execute(context.Background(), fireInput())
	require.NoError(t, err)
	assert.Equal(t, SourceCache, output.Source)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestHandler_Execute_KeywordHitForOtherTypeNotCached(t *testing.T) {
	var calls int32
	other := fireGuidance
	other.DisasterType = "distress"
	es := newTestES(t, &calls, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(hitsBody(other)))
	})
	rdb, mr := newTestRedis(t)

	handler := NewHandler(createTestConfig(), es, rdb, nil, logger.NewNoOpLogger())
	output, err := handler.Execute(context.Background(), fireInput())
	require.NoError(t, err)
	assert.Equal(t, SourceSearch, output.Source)
	assert.False(t, mr.Exists("guidance:fire"))
}

func TestHandler_Execute_FallsBackToBuiltin(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "no hits",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(hitsBody()))
			},
		},
		{
			name: "index missing",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"error":{"type":"index_not_found_exception"}}`))
			},
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":"boom"}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			es := newTestES(t, &calls, tt.handler)
			rdb, mr := newTestRedis(t)

			handler := NewHandler(createTestConfig(), es, rdb, nil, logger.NewNoOpLogger())
			output, err := handler.Execute(context.Background(), fireInput())
			require.NoError(t, err)
			assert.Equal(t, SourceBuiltin, output.Source)
			assert.Equal(t, BuiltinGuidance("fire").GuidanceText, output.Guidance.GuidanceText)
			assert.False(t, mr.Exists("guidance:fire"))
		})
	}
}

func TestHandler_Execute_NoBackends(t *testing.T) {
	handler := NewHandler(createTestConfig(), nil, nil, nil, logger.NewNoOpLogger())

	input := &Input{
		Text: "help emergency trapped",
		Classification: classifier.Result{
			Category:   "distress",
			Severity:   classifier.SeverityCritical,
			Confidence: 10,
		},
	}
	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, SourceBuiltin, output.Source)
	assert.Equal(t, "CRITICAL", output.Urgency)
	assert.Contains(t, output.Response, "CRITICAL EMERGENCY DETECTED")
	assert.Contains(t, output.Response, "Confidence: 100%")
	assert.Contains(t, output.Response, "Recommended line: 112")
}

func TestHandler_Execute_CacheUnavailable(t *testing.T) {
	var calls int32
	es := newTestES(t, &calls, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(hitsBody(fireGuidance)))
	})
	rdb, mr := newTestRedis(t)
	mr.Close()

	handler := NewHandler(createTestConfig(), es, rdb, nil, logger.NewNoOpLogger())
	output, err := handler.Execute(context.Background(), fireInput())
	require.NoError(t, err)
	assert.Equal(t, SourceSearch, output.Source)
}

// ==========================
// Topic Reply Tests
// ==========================

func TestHandler_Execute_Topics(t *testing.T) {
	tests := []struct {
		text     string
		imageURL string
		topic    string
	}{
		{"where is the nearest hospital", "", TopicHospital},
		{"is it safe to call the police", "", TopicPolice},
		{"I need some assistance", "", TopicHelp},
		{"can I send a photo", "", TopicImage},
		{"what are my gps coordinates", "", TopicLocation},
		{"hello there", "", TopicGreeting},
		{"", "https://example.com/scene.jpg", TopicImage},
		{"hospital photo", "", TopicHospital},
	}

	handler := NewHandler(createTestConfig(), nil, nil, nil, logger.NewNoOpLogger())
	for _, tt := range tests {
		t.Run(tt.topic+"/"+tt.text, func(t *testing.T) {
			input := &Input{
				Text:     tt.text,
				ImageURL: tt.imageURL,
				Classification: classifier.Result{
					Category: "general",
					Severity: classifier.SeverityNone,
				},
			}
			output, err := handler.Execute(context.Background(), input)
			require.NoError(t, err)
			assert.Equal(t, SourceTopic, output.Source)
			assert.Equal(t, tt.topic, output.Topic)
			assert.Equal(t, topicReplies[tt.topic], output.Response)
			assert.Nil(t, output.Guidance)
		})
	}
}

func TestHandler_Execute_NilInput(t *testing.T) {
	handler := NewHandler(createTestConfig(), nil, nil, nil, logger.NewNoOpLogger())
	_, err := handler.Execute(context.Background(), nil)
	require.Error(t, err)
}

func TestBuiltinGuidance_UnknownCategory(t *testing.T) {
	g := BuiltinGuidance("landslide")
	assert.Equal(t, "landslide", g.DisasterType)
	assert.Equal(t, builtinGuidance["distress"].GuidanceText, g.GuidanceText)
}
