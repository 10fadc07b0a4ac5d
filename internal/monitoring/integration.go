package monitoring

import (
	"sync"
)

//nolint:gochecknoglobals // Required for singleton pattern in monitoring system
var (
	globalCollector *MetricsCollector
	globalMutex     sync.Mutex
)

// globalInstance returns the process-wide collector, installing an enabled
// one on first use.
func globalInstance() *MetricsCollector {
	globalMutex.Lock()
	defer globalMutex.Unlock()
	if globalCollector == nil {
		globalCollector = NewMetricsCollector(true)
	}
	return globalCollector
}

// RecordGlobalOperation records an operation on the process-wide collector.
// Constructions configured with MetricsCollection land here.
func RecordGlobalOperation(operation string, fn func() (int64, error)) error {
	return globalInstance().RecordOperation(operation, fn)
}

// GlobalMetrics returns the operations recorded on the process-wide collector
func GlobalMetrics() []OperationMetrics {
	return globalInstance().GetMetrics()
}

// GlobalSummary summarizes the process-wide collector
func GlobalSummary() MetricsSummary {
	return globalInstance().GetSummary()
}

// ClearGlobalMetrics drops everything recorded on the process-wide collector
func ClearGlobalMetrics() {
	globalInstance().Clear()
}
