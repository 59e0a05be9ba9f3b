package observability

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNewSearchCollector(t *testing.T) {
	t.Run("registering against a fresh registry", func(t *testing.T) {
		registry := prometheus.NewRegistry()

		collector, err := NewSearchCollector(registry)

		require.NoError(t, err, "A fresh registry should accept every metric")
		require.NotNil(t, collector)
	})

	t.Run("re-registering reuses the existing metrics", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		first, err := NewSearchCollector(registry)
		require.NoError(t, err)

		second, err := NewSearchCollector(registry)

		require.NoError(t, err, "A second collector on the same registry should reuse the metrics")

		first.Start()
		first.AddSample()
		first.Complete()
		second.Start()
		second.AddSample()
		second.Complete()

		require.Equal(t, 2.0, testutil.ToFloat64(second.samples),
			"Both collectors should feed the same underlying counter")
	})
}

func TestSearchCollector(t *testing.T) {
	t.Run("one search cycle", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		collector, err := NewSearchCollector(registry)
		require.NoError(t, err)

		collector.Start()
		for i := 0; i < 5; i++ {
			collector.AddSample()
			collector.AddRolloutSteps(3)
		}
		metrics := collector.Complete()

		require.Equal(t, int64(5), metrics.Samples, "Every sample should be counted")
		require.Equal(t, int64(15), metrics.RolloutSteps, "Rollout steps should accumulate")
		require.False(t, metrics.StartTime.IsZero(), "Start should stamp the search")
		require.GreaterOrEqual(t, metrics.Duration.Seconds(), 0.0)

		require.Equal(t, 1.0, testutil.ToFloat64(collector.searches),
			"Completing should count one search")
		require.Equal(t, 5.0, testutil.ToFloat64(collector.samples),
			"The counter should mirror the per-search sample count")
	})

	t.Run("Start resets the per-search tallies", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		collector, err := NewSearchCollector(registry)
		require.NoError(t, err)

		collector.Start()
		collector.AddSample()
		collector.Complete()
		collector.Start()
		metrics := collector.Complete()

		require.Zero(t, metrics.Samples, "A new search should start from zero samples")
		require.Equal(t, 1.0, testutil.ToFloat64(collector.samples),
			"The cumulative counter should keep the earlier samples")
	})

	t.Run("serving the exposition format", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		collector, err := NewSearchCollector(registry)
		require.NoError(t, err)
		collector.Start()
		collector.AddSample()
		collector.Complete()

		recorder := httptest.NewRecorder()
		collector.Handler().ServeHTTP(recorder, httptest.NewRequest("GET", "/metrics", nil))

		require.Equal(t, 200, recorder.Code, "The metrics endpoint should answer")
		require.Contains(t, recorder.Body.String(), "planner_searches_total",
			"The exposition should carry the search counter")
	})
}
