package monitoring

import (
	"testing"
	"time"
)

func TestMonitor_GetMetrics(t *testing.T) {
	m := NewMonitor()
	m.RecordMetric("test_metric", 42)

	metrics := m.GetMetrics()

	// Check if our metric is present
	value, exists := metrics["test_metric"]
	if !exists {
		t.Fatalf("Expected 'test_metric' to be present in metrics, but it was not")
	}

	// Check value
	if value != 42 {
		t.Errorf("Expected 'test_metric' to be 42, but got %v", value)
	}

	// Check uptime presence
	_, exists = metrics["uptime_seconds"]
	if !exists {
		t.Errorf("Expected 'uptime_seconds' to be present in metrics, but it was not")
	}
}

func TestMonitor_RecordSearchOutcome(t *testing.T) {
	m := NewMonitor()

	m.RecordSearchOutcome("live", "success", 5, 1200*time.Millisecond)
	m.RecordSearchOutcome("live", "success", 3, 900*time.Millisecond)
	m.RecordSearchOutcome("live", "NETWORK_ERROR", 0, 40*time.Millisecond)

	metrics := m.GetMetrics()

	value, exists := metrics["search_live_success_total"]
	if !exists {
		t.Fatalf("Expected 'search_live_success_total' to be present in metrics, but it was not")
	}
	if value != 2 {
		t.Errorf("Expected 'search_live_success_total' to be 2, but got %v", value)
	}

	value, exists = metrics["search_live_NETWORK_ERROR_total"]
	if !exists {
		t.Fatalf("Expected 'search_live_NETWORK_ERROR_total' to be present in metrics, but it was not")
	}
	if value != 1 {
		t.Errorf("Expected 'search_live_NETWORK_ERROR_total' to be 1, but got %v", value)
	}

	if metrics["search_live_last_result_count"] != 0 {
		t.Errorf("Expected last result count 0, got %v", metrics["search_live_last_result_count"])
	}

	// Check timestamp is recorded
	_, exists = metrics["search_live_last_completed"]
	if !exists {
		t.Errorf("Expected 'search_live_last_completed' to be present in metrics, but it was not")
	}
}

func TestMonitor_Reset(t *testing.T) {
	m := NewMonitor()
	m.RecordMetric("test_metric", 42)

	m.Reset()

	metrics := m.GetMetrics()

	// Our test metric should be gone, but uptime should still be there
	_, exists := metrics["test_metric"]
	if exists {
		t.Errorf("Expected 'test_metric' to be removed after Reset(), but it was present")
	}

	// Uptime should still be present (it's added on GetMetrics call)
	_, exists = metrics["uptime_seconds"]
	if !exists {
		t.Errorf("Expected 'uptime_seconds' to be present in metrics, but it was not")
	}
}
