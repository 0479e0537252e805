// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"emergency-workers/internal/common/aws"
	"emergency-workers/internal/common/camunda"
	"emergency-workers/internal/common/config"
	"emergency-workers/internal/common/database"
	"emergency-workers/internal/common/logger"
	"emergency-workers/internal/common/observability"
	"emergency-workers/internal/common/validation"
	"emergency-workers/internal/emergency/classifier"
	"emergency-workers/internal/emergency/keywords"
	"emergency-workers/internal/workers/emergency"
	"emergency-workers/pkg/registry"

	cu "emergency-workers/internal/workers/emergency/classify-utterance"
	dec "emergency-workers/internal/workers/emergency/dispatch-emergency-call"
	nc "emergency-workers/internal/workers/emergency/notify-contacts"
	ri "emergency-workers/internal/workers/emergency/record-interaction"
	sg "emergency-workers/internal/workers/emergency/select-guidance"
	vc "emergency-workers/internal/workers/emergency/verify-contact"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New("info", "console")
		boot.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Classifier ---
	table := keywords.Default()
	if cfg.Classifier.KeywordsPath != "" {
		table, err = keywords.LoadFile(cfg.Classifier.KeywordsPath)
		if err != nil {
			zapLog.Fatal("keyword table load failed", zap.String("path", cfg.Classifier.KeywordsPath), zap.Error(err))
		}
	}
	cls, err := classifier.New(table, cfg.Classifier.Thresholds)
	if err != nil {
		zapLog.Fatal("classifier init failed", zap.Error(err))
	}
	zapLog.Info("Classifier ready",
		zap.Strings("categories", table.Names()),
		zap.Float64("emergencyThreshold", cfg.Classifier.Thresholds.Emergency),
	)

	// --- Activity registry and input schemas ---
	reg, err := registry.LoadRegistry(cfg.Registry.Path)
	if err != nil {
		zapLog.Fatal("registry load failed", zap.String("path", cfg.Registry.Path), zap.Error(err))
	}
	if err := reg.Validate(emergency.TaskTypes...); err != nil {
		zapLog.Fatal("registry invalid", zap.Error(err))
	}
	validator, err := validation.FromRegistry(reg)
	if err != nil {
		zapLog.Fatal("input schemas invalid", zap.Error(err))
	}

	// --- Init Zeebe Client with retry ---
	zeebe, err := camunda.NewClientWithConfig(ctx, &camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: cfg.Camunda.Plaintext,
		ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
		RetryConfig: &camunda.RetryConfig{
			MaxRetries: 10,
			BaseDelay:  2 * time.Second,
			MaxDelay:   30 * time.Second,
		},
	})
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		if err := pg.Ping(ctx); err != nil {
			_ = pg.Close()
			return err
		}
		return nil
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	if err := pg.Migrate(ctx); err != nil {
		zapLog.Fatal("postgres migration failed", zap.Error(err))
	}
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch ---
	// Guidance falls back to the built-in table, so a missing cluster is
	// not fatal.
	esClient, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		zapLog.Fatal("elasticsearch client config invalid", zap.Error(err))
	}
	err = retryWithBackoff(func() error {
		_, err := esClient.EnsureIndex(ctx, cfg.Guidance.Index, database.GuidanceMapping)
		return err
	}, 5, 2*time.Second, zapLog, "Elasticsearch guidance index")
	if err != nil {
		zapLog.Warn("elasticsearch unavailable, guidance will use built-in text", zap.Error(err))
	} else {
		zapLog.Info("Elasticsearch connected successfully", zap.String("index", cfg.Guidance.Index))
	}

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		if err := redis.Ping(ctx); err != nil {
			_ = redis.Close()
			return err
		}
		return nil
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init AWS notifier ---
	var notifier *aws.Notifier
	if cfg.Notifications.AWS.Region != "" {
		notifier, err = aws.NewNotifierFromRegion(ctx,
			cfg.Notifications.AWS.Region,
			cfg.Notifications.Email.FromEmail,
			cfg.Notifications.SMS.SenderID,
		)
		if err != nil {
			zapLog.Fatal("aws notifier init failed", zap.Error(err))
		}
		zapLog.Info("AWS notifier ready", zap.String("region", cfg.Notifications.AWS.Region))
	} else {
		zapLog.Warn("notifications.aws.region not set, email/SMS/dispatch disabled")
	}

	// --- Register workers ---
	zc := zeebe.GetClient()
	timeoutFor := func(taskType string) time.Duration {
		wcfg := config.GetWorkerConfig(cfg, taskType)
		if a, ok := reg.FindByTaskType(taskType); ok {
			return a.TimeoutOr(config.GetDuration(wcfg.Timeout))
		}
		return config.GetDuration(wcfg.Timeout)
	}

	var workers []*camunda.Worker
	start := func(taskType string, handler camunda.JobHandler) {
		w := camunda.StartWorker(zc, taskType, config.GetWorkerConfig(cfg, taskType), handler, obs, log)
		if w != nil {
			workers = append(workers, w)
		}
	}

	start(cu.TaskType, cu.NewHandler(
		&cu.Config{Timeout: timeoutFor(cu.TaskType)},
		cls, validator, obs, log,
	))

	start(sg.TaskType, sg.NewHandler(
		&sg.Config{
			Timeout:       timeoutFor(sg.TaskType),
			SearchTimeout: 3 * time.Second,
			Index:         cfg.Guidance.Index,
			CacheTTL:      time.Duration(cfg.Guidance.CacheTTL) * time.Second,
		},
		esClient.Client, redis.GetClient(), validator, log,
	))

	var sender nc.Sender
	var publisher dec.Publisher
	if notifier != nil {
		sender = notifier
		publisher = notifier
	}

	start(nc.TaskType, nc.NewHandler(
		&nc.Config{
			Timeout:      timeoutFor(nc.TaskType),
			EmailEnabled: cfg.Notifications.Email.Enabled,
			SMSEnabled:   cfg.Notifications.SMS.Enabled,
			MapBaseURL:   cfg.Notifications.MapBaseURL,
		},
		pg.GetDB(), sender, validator, log,
	))

	start(dec.TaskType, dec.NewHandler(
		&dec.Config{
			Timeout:  timeoutFor(dec.TaskType),
			TopicARN: cfg.Notifications.Dispatch.TopicARN,
		},
		publisher, validator, log,
	))

	recorder := ri.NewHandler(
		&ri.Config{Timeout: timeoutFor(ri.TaskType), StatsKey: "stats:chats"},
		pg.GetDB(), redis.GetClient(), validator, log,
	)
	start(ri.TaskType, recorder)

	start(vc.TaskType, vc.NewHandler(
		&vc.Config{
			Timeout: timeoutFor(vc.TaskType),
			CodeTTL: time.Duration(cfg.Verification.CodeTTL) * time.Second,
		},
		pg.GetDB(), redis.GetClient(), sender, validator, log,
	))

	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{}
		status := http.StatusOK
		probe := func(name string, err error) {
			if err != nil {
				checks[name] = err.Error()
				status = http.StatusServiceUnavailable
				return
			}
			checks[name] = "ok"
		}
		probe("zeebe", zeebe.HealthCheck(r.Context()))
		probe("postgres", pg.Ping(r.Context()))
		probe("redis", redis.Ping(r.Context()))
		writeJSON(w, status, checks)
	})
	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		st, err := recorder.Stats(r.Context())
		if err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, st)
	})
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	for _, w := range workers {
		w.Stop()
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
