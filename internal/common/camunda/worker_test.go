package camunda

import (
	"errors"
	"testing"
	"time"

	"emergency-workers/internal/common/metrics"
	"emergency-workers/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

type nopJobClient struct{}

func (nopJobClient) NewCompleteJobCommand() commands.CompleteJobCommandStep1 { return nil }
func (nopJobClient) NewFailJobCommand() commands.FailJobCommandStep1         { return nil }
func (nopJobClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1   { return nil }

type handlerFunc func(client worker.JobClient, job entities.Job)

func (f handlerFunc) Handle(client worker.JobClient, job entities.Job) { f(client, job) }

func testJob() entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 1, Type: "t", Retries: 3}}
}

func TestInstrument_CountsCompleted(t *testing.T) {
	const taskType = "instrument-completed"
	obs := observability.NewWithRegisterer("test", promclient.NewRegistry())

	var ran bool
	h := Instrument(taskType, handlerFunc(func(client worker.JobClient, job entities.Job) {
		ran = true
		_ = client.NewCompleteJobCommand()
	}), obs)

	h(nopJobClient{}, testJob())

	assert.True(t, ran)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.WorkerJobsCompleted.WithLabelValues(taskType)))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.WorkerJobsActive.WithLabelValues(taskType)))
}

func TestInstrument_FailedJobNotCountedAsCompleted(t *testing.T) {
	const taskType = "instrument-failed"

	for _, fail := range []func(worker.JobClient){
		func(c worker.JobClient) { _ = c.NewFailJobCommand() },
		func(c worker.JobClient) { _ = c.NewThrowErrorCommand() },
	} {
		fail := fail
		h := Instrument(taskType, handlerFunc(func(client worker.JobClient, job entities.Job) {
			fail(client)
		}), nil)
		h(nopJobClient{}, testJob())
	}

	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.WorkerJobsCompleted.WithLabelValues(taskType)))
}

func TestBackoff(t *testing.T) {
	retry := &RetryConfig{MaxRetries: 5, BaseDelay: time.Second, MaxDelay: 5 * time.Second}
	assert.Equal(t, time.Second, backoff(retry, 0))
	assert.Equal(t, 4*time.Second, backoff(retry, 2))
	assert.Equal(t, 5*time.Second, backoff(retry, 3))
}

func TestIsRetryableZeebeError(t *testing.T) {
	assert.True(t, isRetryableZeebeError(errors.New("rpc error: code = Unavailable desc = connection refused")))
	assert.True(t, isRetryableZeebeError(errors.New("context deadline exceeded")))
	assert.False(t, isRetryableZeebeError(errors.New("permission denied")))
}
