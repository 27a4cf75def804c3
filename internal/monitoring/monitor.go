package monitoring

import (
	"sync"
	"time"
)

// Monitor collects and provides runtime metrics for the discovery service
type Monitor struct {
	metrics      map[string]interface{}
	metricsMutex sync.RWMutex
	startTime    time.Time
}

// NewMonitor creates a new monitoring instance
func NewMonitor() *Monitor {
	return &Monitor{
		metrics:   make(map[string]interface{}),
		startTime: time.Now(),
	}
}

// RecordMetric records a metric value
func (m *Monitor) RecordMetric(name string, value interface{}) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	m.metrics[name] = value
}

// GetMetric returns a specific metric value
func (m *Monitor) GetMetric(name string) (interface{}, bool) {
	m.metricsMutex.RLock()
	defer m.metricsMutex.RUnlock()
	value, exists := m.metrics[name]
	return value, exists
}

// GetMetrics returns all current metrics
func (m *Monitor) GetMetrics() map[string]interface{} {
	m.metricsMutex.RLock()
	defer m.metricsMutex.RUnlock()

	// Create a copy to avoid concurrent map access
	metrics := make(map[string]interface{}, len(m.metrics))
	for k, v := range m.metrics {
		metrics[k] = v
	}

	// Add system metrics
	metrics["uptime_seconds"] = time.Since(m.startTime).Seconds()

	return metrics
}

// Reset clears all metrics
func (m *Monitor) Reset() {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	m.metrics = make(map[string]interface{})
}

// RecordSearchOutcome records the result of one search dispatch. The outcome
// is either "success" or a ScoutError code; the mode is "live" or "demo".
func (m *Monitor) RecordSearchOutcome(mode string, outcome string, resultCount int, duration time.Duration) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()

	prefix := "search_" + mode + "_"

	count, _ := m.metrics[prefix+outcome+"_total"].(int)
	m.metrics[prefix+outcome+"_total"] = count + 1
	m.metrics[prefix+"last_result_count"] = resultCount
	m.metrics[prefix+"last_duration_ms"] = duration.Milliseconds()
	m.metrics[prefix+"last_completed"] = time.Now().Format(time.RFC3339)
}
