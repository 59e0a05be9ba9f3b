// Package observability exposes the planner's search activity as Prometheus
// metrics.
package observability

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"expedition/searcher"
)

// SearchCollector bundles Prometheus metrics for the search loop and
// implements searcher.MetricsCollector, so it can be handed straight to the
// searcher via WithMetrics.
type SearchCollector struct {
	gatherer prometheus.Gatherer

	searches     prometheus.Counter
	samples      prometheus.Counter
	rolloutSteps prometheus.Histogram
	duration     prometheus.Histogram

	startTime    time.Time
	sampleCount  int64
	rolloutCount int64
}

// NewSearchCollector registers the search metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewSearchCollector(reg prometheus.Registerer) (*SearchCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	searches, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "planner_searches_total",
		Help: "Total number of completed search calls.",
	}), "planner_searches_total")
	if err != nil {
		return nil, err
	}
	samples, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "planner_samples_total",
		Help: "Total number of select/expand/rollout/backpropagate rounds.",
	}), "planner_samples_total")
	if err != nil {
		return nil, err
	}
	rolloutSteps, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "planner_rollout_steps",
		Help:    "Number of random actions played per rollout.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	}), "planner_rollout_steps")
	if err != nil {
		return nil, err
	}
	duration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "planner_search_duration_seconds",
		Help:    "Search call latency in seconds.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
	}), "planner_search_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &SearchCollector{
		gatherer:     gatherer,
		searches:     searches,
		samples:      samples,
		rolloutSteps: rolloutSteps,
		duration:     duration,
	}, nil
}

func (c *SearchCollector) Start() {
	c.startTime = time.Now()
	c.sampleCount = 0
	c.rolloutCount = 0
}

func (c *SearchCollector) AddSample() {
	c.samples.Inc()
	c.sampleCount++
}

func (c *SearchCollector) AddRolloutSteps(steps int) {
	c.rolloutSteps.Observe(float64(steps))
	c.rolloutCount += int64(steps)
}

func (c *SearchCollector) Complete() searcher.SearchMetrics {
	elapsed := time.Since(c.startTime)
	c.duration.Observe(elapsed.Seconds())
	c.searches.Inc()
	return searcher.SearchMetrics{
		StartTime:    c.startTime,
		Duration:     elapsed,
		Samples:      c.sampleCount,
		RolloutSteps: c.rolloutCount,
	}
}

// Handler serves the collector's registry in the Prometheus exposition
// format.
func (c *SearchCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("failed to register %s: %w", name, err)
	}
	return counter, nil
}

func registerHistogram(reg prometheus.Registerer, histogram prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(histogram); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("failed to register %s: %w", name, err)
	}
	return histogram, nil
}
