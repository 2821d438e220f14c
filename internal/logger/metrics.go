package logger

import (
	"maps"
	"sync"
	"time"
)

// Metrics collects the numbers a run reports in its closing log line:
// counters such as months fetched, gauges such as free Saturdays found,
// and timings such as per-month fetch duration. Safe for concurrent use.
type Metrics struct {
	mu       sync.Mutex
	counters map[string]int64
	gauges   map[string]float64
	timings  map[string]*timing
}

// timing accumulates one named duration series
type timing struct {
	count    int
	total    time.Duration
	min, max time.Duration
}

func (t *timing) add(d time.Duration) {
	if t.count == 0 {
		t.min, t.max = d, d
	}
	t.count++
	t.total += d
	t.min = min(t.min, d)
	t.max = max(t.max, d)
}

func (t *timing) summary() map[string]interface{} {
	return map[string]interface{}{
		"count":   t.count,
		"total":   t.total.String(),
		"average": (t.total / time.Duration(t.count)).String(),
		"min":     t.min.String(),
		"max":     t.max.String(),
	}
}

// NewMetrics returns an empty collector, one per run
func NewMetrics() *Metrics {
	return &Metrics{
		counters: make(map[string]int64),
		gauges:   make(map[string]float64),
		timings:  make(map[string]*timing),
	}
}

func (m *Metrics) IncrCounter(name string) {
	m.AddCounter(name, 1)
}

func (m *Metrics) AddCounter(name string, n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name] += n
}

// Counter returns zero for a counter never touched
func (m *Metrics) Counter(name string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[name]
}

// SetGauge keeps only the latest value
func (m *Metrics) SetGauge(name string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gauges[name] = value
}

func (m *Metrics) RecordTiming(name string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.timings[name]
	if !ok {
		t = &timing{}
		m.timings[name] = t
	}
	t.add(d)
}

// GetSnapshot copies the current values into a log-friendly map with
// "counters", "gauges" and "timings" keys. Each timing is summarised as
// count, total, average, min and max, formatted as durations.
func (m *Metrics) GetSnapshot() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	timings := make(map[string]map[string]interface{}, len(m.timings))
	for name, t := range m.timings {
		timings[name] = t.summary()
	}

	return map[string]interface{}{
		"counters": maps.Clone(m.counters),
		"gauges":   maps.Clone(m.gauges),
		"timings":  timings,
	}
}
