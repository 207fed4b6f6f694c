// Package metrics registers Prometheus collectors for the analysis engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "evolution_tracker"
)

var (
	// DatasetRecordsLoaded tracks how many records each dataset supplied.
	DatasetRecordsLoaded = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_records_loaded",
			Help:      "Number of records loaded per dataset",
		},
		[]string{"dataset"},
	)

	// DataQualityWarnings counts data-quality defects flagged during load.
	DataQualityWarnings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "data_quality_warnings_total",
			Help:      "Data-quality warnings flagged while loading datasets",
		},
		[]string{"dataset", "kind"},
	)

	// GrowthAnalyses counts growth computations by outcome.
	GrowthAnalyses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "growth_analyses_total",
			Help:      "Growth analyses performed, labelled by outcome",
		},
		[]string{"outcome"}, // "computed", "no_signal"
	)

	// CostEstimates counts cost estimations by workload and outcome.
	CostEstimates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cost_estimates_total",
			Help:      "Cloud cost estimates produced, labelled by workload type and outcome",
		},
		[]string{"workload", "outcome"}, // workload: "training", "inference"
	)
)

func init() {
	prometheus.MustRegister(DatasetRecordsLoaded)
	prometheus.MustRegister(DataQualityWarnings)
	prometheus.MustRegister(GrowthAnalyses)
	prometheus.MustRegister(CostEstimates)
}
