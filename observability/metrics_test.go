package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObserveTransition(t *testing.T) {
	req := require.New(t)
	metrics := NewMetrics(prometheus.NewRegistry())

	metrics.ObserveTransition("join", "ok")
	metrics.ObserveTransition("join", "ok")
	metrics.ObserveTransition("join", "forbidden")

	req.Equal(2.0, testutil.ToFloat64(metrics.Transitions.WithLabelValues("join", "ok")))
	req.Equal(1.0, testutil.ToFloat64(metrics.Transitions.WithLabelValues("join", "forbidden")))
}

func TestNewMetrics_IsolatedRegistries(t *testing.T) {
	require.NotPanics(t, func() {
		NewMetrics(prometheus.NewRegistry())
		NewMetrics(prometheus.NewRegistry())
	})
}
