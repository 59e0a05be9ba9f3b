package searcher

import "time"

// SearchMetrics describes one completed Search call.
type SearchMetrics struct {
	StartTime    time.Time
	Duration     time.Duration
	Samples      int64
	RolloutSteps int64
}

type MetricsCollector interface {
	Start()
	AddSample()
	AddRolloutSteps(steps int)
	Complete() SearchMetrics
}

type metricsCollector struct {
	startTime    time.Time
	samples      int64
	rolloutSteps int64
}

func NewMetricsCollector() MetricsCollector {
	return &metricsCollector{}
}

func (m *metricsCollector) Start() {
	m.startTime = time.Now()
	m.samples = 0
	m.rolloutSteps = 0
}

func (m *metricsCollector) AddSample() {
	m.samples++
}

func (m *metricsCollector) AddRolloutSteps(steps int) {
	m.rolloutSteps += int64(steps)
}

func (m *metricsCollector) Complete() SearchMetrics {
	return SearchMetrics{
		StartTime:    m.startTime,
		Duration:     time.Since(m.startTime),
		Samples:      m.samples,
		RolloutSteps: m.rolloutSteps,
	}
}

type noMetricsCollector struct{}

func NewNoMetricsCollector() MetricsCollector {
	return &noMetricsCollector{}
}

func (m *noMetricsCollector) Start()                    {}
func (m *noMetricsCollector) AddSample()                {}
func (m *noMetricsCollector) AddRolloutSteps(steps int) {}
func (m *noMetricsCollector) Complete() SearchMetrics   { return SearchMetrics{} }
