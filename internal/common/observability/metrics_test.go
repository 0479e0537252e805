package observability

import (
	"context"
	"strings"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservability_RecordsIntoRegistry(t *testing.T) {
	reg := promclient.NewRegistry()
	o := NewWithRegisterer("emergency-workers-test", reg)
	defer o.Shutdown()

	ctx := context.Background()
	o.RecordJobProcessed(ctx, "classify-utterance", "success")
	o.RecordJobDuration(ctx, "classify-utterance", 12*time.Millisecond, "success")
	o.RecordEscalation(ctx, "critical", true, true, true)

	families, err := reg.Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	joined := strings.Join(names, ",")
	assert.Contains(t, joined, "jobs_processed")
	assert.Contains(t, joined, "jobs_duration")
	assert.Contains(t, joined, "escalations_decided")
}

func TestObservability_NilSafe(t *testing.T) {
	var o *Observability
	assert.NotPanics(t, func() {
		o.RecordJobProcessed(context.Background(), "x", "success")
		o.RecordJobDuration(context.Background(), "x", time.Second, "failed")
		o.RecordEscalation(context.Background(), "high", false, true, true)
		o.Shutdown()
	})

	empty := &Observability{}
	assert.NotPanics(t, func() {
		empty.RecordJobProcessed(context.Background(), "x", "success")
	})
}
