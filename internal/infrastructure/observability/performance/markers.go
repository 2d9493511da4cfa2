// Package performance provides performance markers for timing Fund Road
// operations and feeding the resulting measurements to metrics and alerts.
package performance

import (
	"sync"
	"time"
)

// Marker represents a single performance measurement for an operation
type Marker struct {
	Operation string         `json:"operation"`       // e.g., "journey:load_view", "functions:translate"
	Subject   string         `json:"subject"`         // user or session the operation ran for
	StartTime time.Time      `json:"startTime"`       // When the operation started
	EndTime   time.Time      `json:"endTime"`         // When the operation completed
	Duration  time.Duration  `json:"duration"`        // Total operation duration
	Success   bool           `json:"success"`         // Whether the operation completed successfully
	Error     string         `json:"error,omitempty"` // Error message if operation failed
	Metadata  map[string]any `json:"metadata"`        // Additional operation-specific data
	Completed bool           `json:"completed"`       // Whether Complete() has been called

	mu         sync.Mutex
	onComplete func(*Marker)
}

// Complete marks the operation as finished and hands the marker to its tracker.
func (m *Marker) Complete() {
	m.mu.Lock()
	if m.Completed {
		m.mu.Unlock()
		return // Prevent double completion
	}
	m.EndTime = time.Now()
	m.Duration = m.EndTime.Sub(m.StartTime)
	m.Completed = true
	callback := m.onComplete
	m.mu.Unlock()

	if callback != nil {
		callback(m)
	}
}

// SetSuccess marks the operation as successful or failed
func (m *Marker) SetSuccess(success bool) {
	m.mu.Lock()
	m.Success = success
	m.mu.Unlock()
}

// SetError sets an error message and marks the operation as failed
func (m *Marker) SetError(err error) {
	if err == nil {
		return
	}
	m.mu.Lock()
	m.Error = err.Error()
	m.Success = false
	m.mu.Unlock()
}

// abandon fails and completes the marker unless it already completed.
func (m *Marker) abandon(err error) {
	m.mu.Lock()
	if m.Completed {
		m.mu.Unlock()
		return
	}
	m.Error = err.Error()
	m.Success = false
	m.mu.Unlock()
	m.Complete()
}

// AddMetadata adds key-value metadata to the marker
func (m *Marker) AddMetadata(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Metadata == nil {
		m.Metadata = make(map[string]any)
	}
	m.Metadata[key] = value
}

// snapshot copies the exported fields so readers never race with writers.
func (m *Marker) snapshot() Marker {
	m.mu.Lock()
	defer m.mu.Unlock()
	metadata := make(map[string]any, len(m.Metadata))
	for k, v := range m.Metadata {
		metadata[k] = v
	}
	return Marker{
		Operation: m.Operation,
		Subject:   m.Subject,
		StartTime: m.StartTime,
		EndTime:   m.EndTime,
		Duration:  m.Duration,
		Success:   m.Success,
		Error:     m.Error,
		Metadata:  metadata,
		Completed: m.Completed,
	}
}

// HealthStatus represents the overall health of a system component
type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"   // All operations performing within normal parameters
	HealthDegraded  HealthStatus = "degraded"  // Some operations showing performance issues
	HealthUnhealthy HealthStatus = "unhealthy" // Significant performance problems detected
	HealthUnknown   HealthStatus = "unknown"   // No completed operations yet
)

// PerformanceAlert represents a performance threshold violation
type PerformanceAlert struct {
	Timestamp time.Time     `json:"timestamp"`
	Severity  AlertSeverity `json:"severity"`
	Operation string        `json:"operation"`
	Threshold time.Duration `json:"threshold"`
	Actual    time.Duration `json:"actual"`
	Message   string        `json:"message"`
}

// AlertSeverity represents the severity level of a performance alert
type AlertSeverity string

const (
	AlertWarning  AlertSeverity = "warning"  // Performance degradation detected
	AlertCritical AlertSeverity = "critical" // Serious performance issue
)
