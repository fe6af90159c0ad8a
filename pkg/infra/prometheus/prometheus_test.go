package prometheus

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordVerdict(t *testing.T) {
	before := testutil.ToFloat64(VerdictTotal.WithLabelValues("event", "accepted"))
	RecordVerdict("event", "accepted")
	assert.Equal(t, before+1, testutil.ToFloat64(VerdictTotal.WithLabelValues("event", "accepted")))
}

func TestRecordExternalCall(t *testing.T) {
	before := testutil.ToFloat64(ExternalCallTotal.WithLabelValues("classifier", ResultTimeout))
	RecordExternalCall("classifier", ResultTimeout)
	assert.Equal(t, before+1, testutil.ToFloat64(ExternalCallTotal.WithLabelValues("classifier", ResultTimeout)))
}

func TestObserveStage_RespectsConfig(t *testing.T) {
	Config = MetricsConfig{EnableStageLatency: false}
	ObserveStage("lexicon_disabled", time.Millisecond)
	assert.Equal(t, 0, testutil.CollectAndCount(StageLatency, "modgate_stage_latency_ms"))

	Config = DefaultMetricsConfig()
	ObserveStage("lexicon", 2*time.Millisecond)
	assert.Equal(t, 1, testutil.CollectAndCount(StageLatency, "modgate_stage_latency_ms"))
}

func TestInitialize_Idempotent(t *testing.T) {
	require.NotPanics(t, func() {
		Initialize(DefaultMetricsConfig())
		Initialize(DefaultMetricsConfig())
	})
	families, err := Gatherer().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
