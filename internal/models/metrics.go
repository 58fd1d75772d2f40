package models

import "time"

// SystemMetrics represents system level counters captured from instrumentation.
type SystemMetrics struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	StoreOperationCount      uint64    `json:"store_operation_count"`
	AverageStoreOpDurationMs float64   `json:"average_store_op_duration_ms"`
	RosterOperationsTotal    uint64    `json:"roster_operations_total"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
