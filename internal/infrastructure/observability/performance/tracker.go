package performance

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"
)

// Recorder receives every completed marker. The metrics registry implements it.
type Recorder interface {
	ObserveOperation(operation string, duration time.Duration, success bool)
}

// Tracker manages performance markers and provides metrics aggregation
type Tracker struct {
	markers    map[string]*Marker  // Active and completed markers by unique ID
	alerts     []*PerformanceAlert // Recent performance alerts
	thresholds *AlertThresholds    // Configurable alert thresholds
	recorder   Recorder
	mu         sync.RWMutex
	started    time.Time
	config     *TrackerConfig
	sequence   uint64
}

// TrackerConfig contains configuration options for the performance tracker
type TrackerConfig struct {
	MaxMarkers   int           `json:"maxMarkers"`   // Maximum number of markers to retain
	MaxAlerts    int           `json:"maxAlerts"`    // Maximum number of alerts to retain
	Retention    time.Duration `json:"retention"`    // How long completed markers are kept
	EnableAlerts bool          `json:"enableAlerts"` // Whether to generate performance alerts
}

// DefaultTrackerConfig returns a sensible default configuration
func DefaultTrackerConfig() *TrackerConfig {
	return &TrackerConfig{
		MaxMarkers:   10000,
		MaxAlerts:    500,
		Retention:    time.Hour,
		EnableAlerts: true,
	}
}

// AlertThresholds defines performance thresholds for generating alerts
type AlertThresholds struct {
	VerySlowResponseThreshold time.Duration `json:"verySlowResponseThreshold"` // 2s
	CriticalResponseThreshold time.Duration `json:"criticalResponseThreshold"` // 5s

	// Operation-specific thresholds, matched on the operation prefix
	Operations map[string]time.Duration `json:"operations"`
}

// DefaultAlertThresholds returns sensible default alert thresholds
func DefaultAlertThresholds() *AlertThresholds {
	return &AlertThresholds{
		VerySlowResponseThreshold: time.Second * 2,
		CriticalResponseThreshold: time.Second * 5,
		Operations: map[string]time.Duration{
			"auth":      time.Millisecond * 300,
			"journey":   time.Millisecond * 250,
			"resource":  time.Millisecond * 250,
			"database":  time.Millisecond * 50,
			"functions": time.Second * 3,
		},
	}
}

// NewTracker creates a new performance tracker with the given configuration.
// recorder may be nil.
func NewTracker(config *TrackerConfig, recorder Recorder) *Tracker {
	if config == nil {
		config = DefaultTrackerConfig()
	}

	return &Tracker{
		markers:    make(map[string]*Marker),
		alerts:     make([]*PerformanceAlert, 0),
		thresholds: DefaultAlertThresholds(),
		recorder:   recorder,
		started:    time.Now(),
		config:     config,
	}
}

// StartOperation creates and tracks a new performance marker for an operation
func (t *Tracker) StartOperation(operation, subject string) *Marker {
	marker := &Marker{
		Operation: operation,
		Subject:   subject,
		StartTime: time.Now(),
		Metadata:  make(map[string]any),
		Success:   true, // Assume success until proven otherwise
	}
	if t == nil {
		return marker
	}
	marker.onComplete = t.completeOperation

	t.mu.Lock()
	t.sequence++
	t.markers[fmt.Sprintf("%s_%d", operation, t.sequence)] = marker
	t.mu.Unlock()

	return marker
}

// StartOperationWithContext creates a marker that fails itself if ctx is
// cancelled before the operation completes.
func (t *Tracker) StartOperationWithContext(ctx context.Context, operation, subject string) *Marker {
	marker := t.StartOperation(operation, subject)

	context.AfterFunc(ctx, func() {
		marker.abandon(ctx.Err())
	})

	return marker
}

func (t *Tracker) completeOperation(marker *Marker) {
	snap := marker.snapshot()

	if t.recorder != nil {
		t.recorder.ObserveOperation(snap.Operation, snap.Duration, snap.Success)
	}
	if t.config.EnableAlerts {
		t.checkForAlerts(snap)
	}
}

// checkForAlerts evaluates a completed marker against alert thresholds
func (t *Tracker) checkForAlerts(marker Marker) {
	alerts := t.evaluateThresholds(marker)
	if len(alerts) == 0 {
		return
	}

	t.mu.Lock()
	t.alerts = append(t.alerts, alerts...)
	if len(t.alerts) > t.config.MaxAlerts {
		t.alerts = t.alerts[len(t.alerts)-t.config.MaxAlerts:]
	}
	t.mu.Unlock()
}

func (t *Tracker) evaluateThresholds(marker Marker) []*PerformanceAlert {
	var alerts []*PerformanceAlert

	switch {
	case marker.Duration > t.thresholds.CriticalResponseThreshold:
		alerts = append(alerts, newAlert(marker, AlertCritical, t.thresholds.CriticalResponseThreshold,
			"Operation exceeded critical response time threshold"))
	case marker.Duration > t.thresholds.VerySlowResponseThreshold:
		alerts = append(alerts, newAlert(marker, AlertWarning, t.thresholds.VerySlowResponseThreshold,
			"Operation exceeded slow response time threshold"))
	}

	prefix, _, _ := strings.Cut(marker.Operation, ":")
	if threshold, ok := t.thresholds.Operations[prefix]; ok && marker.Duration > threshold {
		alerts = append(alerts, newAlert(marker, AlertWarning, threshold,
			fmt.Sprintf("%s operation exceeded threshold", prefix)))
	}

	return alerts
}

func newAlert(marker Marker, severity AlertSeverity, threshold time.Duration, message string) *PerformanceAlert {
	return &PerformanceAlert{
		Timestamp: time.Now(),
		Severity:  severity,
		Operation: marker.Operation,
		Threshold: threshold,
		Actual:    marker.Duration,
		Message:   message,
	}
}

// GetAlerts returns a copy of the retained alerts, oldest first.
func (t *Tracker) GetAlerts() []PerformanceAlert {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]PerformanceAlert, 0, len(t.alerts))
	for _, alert := range t.alerts {
		out = append(out, *alert)
	}
	return out
}

// GetRecentMetrics returns completed markers that ended within the window.
func (t *Tracker) GetRecentMetrics(within time.Duration) []Marker {
	cutoff := time.Now().Add(-within)

	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []Marker
	for _, marker := range t.markers {
		snap := marker.snapshot()
		if snap.Completed && snap.EndTime.After(cutoff) {
			out = append(out, snap)
		}
	}
	return out
}

// Health summarizes the failure ratio of the last five minutes.
func (t *Tracker) Health() HealthStatus {
	recent := t.GetRecentMetrics(5 * time.Minute)
	if len(recent) == 0 {
		return HealthUnknown
	}
	failures := 0
	for _, marker := range recent {
		if !marker.Success {
			failures++
		}
	}
	ratio := float64(failures) / float64(len(recent))
	switch {
	case ratio > 0.25:
		return HealthUnhealthy
	case ratio > 0.05:
		return HealthDegraded
	default:
		return HealthHealthy
	}
}

// Cleanup removes old markers to prevent memory leaks. Returns how many were dropped.
func (t *Tracker) Cleanup() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	cutoff := time.Now().Add(-t.config.Retention)
	for id, marker := range t.markers {
		snap := marker.snapshot()
		if snap.Completed && snap.EndTime.Before(cutoff) {
			delete(t.markers, id)
			removed++
		}
	}

	// Maintain max markers limit; map order makes this an arbitrary half
	if len(t.markers) > t.config.MaxMarkers {
		count := 0
		for id := range t.markers {
			if count > t.config.MaxMarkers/2 {
				delete(t.markers, id)
				removed++
			}
			count++
		}
	}
	return removed
}

// GetOverallStats returns overall tracker statistics
func (t *Tracker) GetOverallStats() map[string]any {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	activeCount := 0
	completedCount := 0
	for _, marker := range t.markers {
		if marker.snapshot().Completed {
			completedCount++
		} else {
			activeCount++
		}
	}

	return map[string]any{
		"trackerUptime":       time.Since(t.started).String(),
		"totalMarkers":        len(t.markers),
		"activeOperations":    activeCount,
		"completedOperations": completedCount,
		"totalAlerts":         len(t.alerts),
		"memoryUsageMB":       memStats.Alloc / (1024 * 1024),
		"systemMemoryMB":      memStats.Sys / (1024 * 1024),
	}
}
