package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/katalvlaran/gr1synth/metrics"
)

func TestVerdictCounters(t *testing.T) {
	before := testutil.ToFloat64(metrics.Realizability.WithLabelValues("realizable"))
	metrics.Verdict(true)
	metrics.Verdict(false)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.Realizability.WithLabelValues("realizable")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(metrics.Realizability.WithLabelValues("unrealizable")), 1.0)
}

func TestIterationAndPhase(t *testing.T) {
	before := testutil.ToFloat64(metrics.FixpointIterations.WithLabelValues("x"))
	metrics.Iteration("x")
	metrics.Iteration("x")
	assert.Equal(t, before+2, testutil.ToFloat64(metrics.FixpointIterations.WithLabelValues("x")))

	metrics.ObservePhase("winning", time.Now())
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.PhaseDuration))
}

func TestCPreCounter(t *testing.T) {
	before := testutil.ToFloat64(metrics.CPreTotal)
	metrics.CPreTotal.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.CPreTotal))
}
