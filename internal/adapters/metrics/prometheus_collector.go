package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Namespace for all metrics
	namespace = "furniture"
	// Subsystem for factory metrics
	subsystem = "factory"
)

var (
	// Registry is the global Prometheus registry for all metrics
	Registry *prometheus.Registry

	// globalProductionCollector is set by SetGlobalProductionCollector when metrics are enabled
	globalProductionCollector ProductionMetricsRecorder

	// globalFinancialCollector is set by SetGlobalFinancialCollector when metrics are enabled
	globalFinancialCollector FinancialMetricsRecorder
)

// ProductionMetricsRecorder records shop-floor events
type ProductionMetricsRecorder interface {
	RecordOrderEnqueued(furniture, material string)
	RecordOrderCompleted(furniture, material string)
	RecordProduced(furniture, material string)
	RecordBackoff(resource string)
	RecordRepair(machineID string)
	RecordRestock(material string, bought bool)
	RecordEvent(kind string, delivered bool)
}

// FinancialMetricsRecorder records budget mutations
type FinancialMetricsRecorder interface {
	RecordLedgerEntry(kind string, amount float64)
}

// InitRegistry initializes the Prometheus registry
// Should be called once at application startup if metrics are enabled
func InitRegistry() {
	Registry = prometheus.NewRegistry()
}

// GetRegistry returns the global Prometheus registry
// Returns nil if metrics are not initialized
func GetRegistry() *prometheus.Registry {
	return Registry
}

// IsEnabled returns true if metrics collection is enabled
func IsEnabled() bool {
	return Registry != nil
}

// SetGlobalProductionCollector sets the global production metrics collector
func SetGlobalProductionCollector(collector ProductionMetricsRecorder) {
	globalProductionCollector = collector
}

// SetGlobalFinancialCollector sets the global financial metrics collector
func SetGlobalFinancialCollector(collector FinancialMetricsRecorder) {
	globalFinancialCollector = collector
}

func RecordOrderEnqueued(furniture, material string) {
	if globalProductionCollector != nil {
		globalProductionCollector.RecordOrderEnqueued(furniture, material)
	}
}

func RecordOrderCompleted(furniture, material string) {
	if globalProductionCollector != nil {
		globalProductionCollector.RecordOrderCompleted(furniture, material)
	}
}

func RecordProduced(furniture, material string) {
	if globalProductionCollector != nil {
		globalProductionCollector.RecordProduced(furniture, material)
	}
}

// RecordBackoff records one retry wait for a missing resource
func RecordBackoff(resource string) {
	if globalProductionCollector != nil {
		globalProductionCollector.RecordBackoff(resource)
	}
}

func RecordRepair(machineID string) {
	if globalProductionCollector != nil {
		globalProductionCollector.RecordRepair(machineID)
	}
}

// RecordRestock records a restock decision; bought is false when the budget did not cover it
func RecordRestock(material string, bought bool) {
	if globalProductionCollector != nil {
		globalProductionCollector.RecordRestock(material, bought)
	}
}

// RecordEvent records a published notification; delivered is false when nobody listened
func RecordEvent(kind string, delivered bool) {
	if globalProductionCollector != nil {
		globalProductionCollector.RecordEvent(kind, delivered)
	}
}

func RecordLedgerEntry(kind string, amount float64) {
	if globalFinancialCollector != nil {
		globalFinancialCollector.RecordLedgerEntry(kind, amount)
	}
}
