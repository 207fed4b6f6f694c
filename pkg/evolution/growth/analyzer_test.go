package growth

import (
	"math"
	"testing"

	"github.com/elevated-systems/evolution-tracker/pkg/evolution/series"
)

func TestCAGR(t *testing.T) {
	a := New()

	tests := []struct {
		name       string
		startValue float64
		endValue   float64
		years      int
		want       float64
	}{
		{"flat value is zero growth", 100, 100, 10, 0},
		{"doubling in one year", 100, 200, 1, 100},
		{"doubling in two years", 100, 200, 2, 41.42135623730951},
		{"decline", 200, 100, 1, -50},
		{"zero years", 100, 200, 0, 0},
		{"negative years", 100, 200, -3, 0},
		{"zero start", 0, 200, 5, 0},
		{"negative start", -10, 200, 5, 0},
		{"zero end", 100, 0, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.CAGR(tt.startValue, tt.endValue, tt.years)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CAGR(%v, %v, %d) = %v, want %v", tt.startValue, tt.endValue, tt.years, got, tt.want)
			}
		})
	}
}

func TestGrowthFactor(t *testing.T) {
	a := New()

	if got := a.GrowthFactor(100, 400); got != 4 {
		t.Errorf("GrowthFactor(100, 400) = %v, want 4", got)
	}
	if got := a.GrowthFactor(0, 50); got != 0 {
		t.Errorf("GrowthFactor(0, 50) = %v, want 0", got)
	}
	if got := a.GrowthFactor(-10, 50); got != 0 {
		t.Errorf("GrowthFactor(-10, 50) = %v, want 0", got)
	}
}

func TestAnalyzeSeriesUsesFirstAndLastRecorded(t *testing.T) {
	a := New()

	// Non-monotonic: the max (3000 in 2005) must not be used as the end.
	s := series.New("price_usd", []series.Point{
		{Year: 2000, Value: 1000},
		{Year: 2005, Value: 3000},
		{Year: 2010, Value: 2000},
	})

	r := a.AnalyzeSeries(s)
	if r.StartValue != 1000 || r.EndValue != 2000 {
		t.Errorf("start/end = %v/%v, want 1000/2000", r.StartValue, r.EndValue)
	}
	if r.StartYear != 2000 || r.EndYear != 2010 {
		t.Errorf("years = %d/%d, want 2000/2010", r.StartYear, r.EndYear)
	}
	if r.YearsElapsed != 10 {
		t.Errorf("YearsElapsed = %d, want 10", r.YearsElapsed)
	}
	if r.GrowthFactor != 2 {
		t.Errorf("GrowthFactor = %v, want 2", r.GrowthFactor)
	}
	if !r.Computed() {
		t.Error("Computed() = false for a valid series")
	}
}

func TestAnalyzeSeriesEmptyAndSinglePoint(t *testing.T) {
	a := New()

	empty := a.AnalyzeSeries(series.New("empty", nil))
	if empty.Computed() {
		t.Error("empty series reported as computed")
	}

	// One point: zero years elapsed, so rates stay at no-opinion zero.
	single := a.AnalyzeSeries(series.New("single", []series.Point{{Year: 2000, Value: 5}}))
	if single.Computed() {
		t.Error("single-point series reported as computed")
	}
	if single.CAGRPercent != 0 || single.GrowthFactor != 1 {
		t.Errorf("single-point rates = %v/%v, want 0/1", single.CAGRPercent, single.GrowthFactor)
	}
}

func TestAnalyzeAllKeepsNonComputableEntries(t *testing.T) {
	a := New()

	batch := []series.MetricSeries{
		series.New("good", []series.Point{{Year: 2000, Value: 1}, {Year: 2010, Value: 2}}),
		series.New("empty", nil),
	}
	results := a.AnalyzeAll(batch)
	if len(results) != 2 {
		t.Fatalf("AnalyzeAll returned %d entries, want 2", len(results))
	}
	if !results["good"].Computed() {
		t.Error("good series not computed")
	}
	if results["empty"].Computed() {
		t.Error("empty series reported as computed")
	}
}

func TestAnomalous(t *testing.T) {
	a := New()

	fast := GrowthResult{StartValue: 1, EndValue: 100, YearsElapsed: 1, CAGRPercent: 9900}
	if !a.Anomalous(fast) {
		t.Error("9900%% CAGR not flagged as anomalous")
	}

	steady := GrowthResult{StartValue: 1, EndValue: 2, YearsElapsed: 2, CAGRPercent: 41.4}
	if a.Anomalous(steady) {
		t.Error("41.4%% CAGR flagged as anomalous")
	}

	// Non-computed results are never anomalous regardless of the rate field.
	invalid := GrowthResult{CAGRPercent: 9999}
	if a.Anomalous(invalid) {
		t.Error("non-computed result flagged as anomalous")
	}

	strict := &Analyzer{AnomalousCAGRPercent: 30}
	if !strict.Anomalous(steady) {
		t.Error("custom threshold 30 did not flag 41.4%% CAGR")
	}
}
