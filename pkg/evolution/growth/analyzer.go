// Package growth computes compound annual growth rates and growth factors
// over metric series.
//
// Invalid inputs yield a zero result, never an error: growth math runs in
// bulk over imperfect historical rows and one bad row must not abort a
// report. Callers that need to distinguish "zero growth" from "could not
// compute" check the precondition fields on the result (StartValue > 0 and
// YearsElapsed > 0).
package growth

import (
	"math"

	"k8s.io/klog/v2"

	"github.com/elevated-systems/evolution-tracker/pkg/evolution/metrics"
	"github.com/elevated-systems/evolution-tracker/pkg/evolution/series"
)

// DefaultAnomalousCAGRPercent is the rate above which a computed CAGR is
// flagged as a temporary or anomalous trend rather than a sustainable one.
const DefaultAnomalousCAGRPercent = 200.0

// GrowthResult summarizes first-recorded vs last-recorded growth of one
// metric. It is a plain value: no formatting, no presentation state.
type GrowthResult struct {
	MetricName   string  `json:"metric_name"`
	StartYear    int     `json:"start_year"`
	EndYear      int     `json:"end_year"`
	StartValue   float64 `json:"start_value"`
	EndValue     float64 `json:"end_value"`
	YearsElapsed int     `json:"years_elapsed"`
	CAGRPercent  float64 `json:"cagr_percent"`
	GrowthFactor float64 `json:"growth_factor"`
}

// Computed reports whether the growth preconditions held. A false return
// means the zero-valued rate fields are "no opinion", not "no growth".
func (r GrowthResult) Computed() bool {
	return r.StartValue > 0 && r.YearsElapsed > 0
}

// Analyzer computes growth figures. The zero value is usable.
type Analyzer struct {
	// AnomalousCAGRPercent overrides the default anomaly threshold when
	// positive.
	AnomalousCAGRPercent float64
}

// New returns an analyzer with default calibration.
func New() *Analyzer {
	return &Analyzer{AnomalousCAGRPercent: DefaultAnomalousCAGRPercent}
}

// CAGR returns the compound annual growth rate in percent, or 0.0 when any
// precondition fails (both values positive, years positive).
func (a *Analyzer) CAGR(startValue, endValue float64, years int) float64 {
	if startValue <= 0 || endValue <= 0 || years <= 0 {
		return 0.0
	}
	return (math.Pow(endValue/startValue, 1/float64(years)) - 1) * 100
}

// GrowthFactor returns endValue/startValue, or 0.0 when startValue is not
// positive.
func (a *Analyzer) GrowthFactor(startValue, endValue float64) float64 {
	if startValue <= 0 {
		return 0.0
	}
	return endValue / startValue
}

// AnalyzeSeries summarizes a series using its first and last recorded points
// in year order, not its min/max values; a non-monotonic metric such as
// price is still meaningfully summarized. An empty or single-point series
// yields a zero result.
func (a *Analyzer) AnalyzeSeries(s series.MetricSeries) GrowthResult {
	result := GrowthResult{MetricName: s.Metric}
	first, ok := s.First()
	if !ok {
		return result
	}
	last, _ := s.Last()

	result.StartYear = first.Year
	result.EndYear = last.Year
	result.StartValue = first.Value
	result.EndValue = last.Value
	result.YearsElapsed = last.Year - first.Year
	result.GrowthFactor = a.GrowthFactor(first.Value, last.Value)
	result.CAGRPercent = a.CAGR(first.Value, last.Value, result.YearsElapsed)
	return result
}

// AnalyzeAll summarizes every series in the batch. Series that cannot be
// computed still produce a (zero-valued) entry so the report stays complete.
func (a *Analyzer) AnalyzeAll(batch []series.MetricSeries) map[string]GrowthResult {
	results := make(map[string]GrowthResult, len(batch))
	for _, s := range batch {
		r := a.AnalyzeSeries(s)
		if r.Computed() {
			metrics.GrowthAnalyses.WithLabelValues("computed").Inc()
		} else {
			metrics.GrowthAnalyses.WithLabelValues("no_signal").Inc()
			klog.V(2).InfoS("Growth not computable for metric", "metric", s.Metric, "points", s.Len())
		}
		results[s.Metric] = r
	}
	return results
}

// Anomalous reports whether the result's CAGR exceeds the anomaly threshold
// and should be presented as a temporary trend, not a sustainable one.
func (a *Analyzer) Anomalous(r GrowthResult) bool {
	threshold := a.AnomalousCAGRPercent
	if threshold <= 0 {
		threshold = DefaultAnomalousCAGRPercent
	}
	return r.Computed() && r.CAGRPercent > threshold
}
