package moore

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPredictor(t *testing.T) *Predictor {
	t.Helper()
	p, err := New(DefaultConfig())
	require.NoError(t, err)
	return p
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Regimes[2].Confidence = "certain"
	_, err := New(cfg)
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.MinProcessNM = 0
	_, err = New(cfg)
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.Regimes = nil
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestDoublingPeriodByRegime(t *testing.T) {
	p := newTestPredictor(t)

	tests := []struct {
		year int
		want float64
	}{
		{1975, 2.0},
		{2019, 2.0},
		{2020, 2.5},
		{2024, 2.5},
		{2025, 3.0},
		{2030, 4.0},
		{2035, 5.0},
		{2044, 5.0},
		{2045, 5.0},
		{2100, 5.0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.DoublingPeriod(tt.year), "year %d", tt.year)
	}
}

func TestConfidenceDependsOnlyOnTargetYear(t *testing.T) {
	p := newTestPredictor(t)

	assert.Equal(t, ConfidenceHigh, p.ConfidenceFor(2019))
	assert.Equal(t, ConfidenceHigh, p.ConfidenceFor(2024))
	assert.Equal(t, ConfidenceMedium, p.ConfidenceFor(2026))
	assert.Equal(t, ConfidenceMedium, p.ConfidenceFor(2032))
	assert.Equal(t, ConfidenceLow, p.ConfidenceFor(2040))
	assert.Equal(t, ConfidenceVeryLow, p.ConfidenceFor(2046))

	// Further out is never more confident.
	assert.Greater(t, int(p.ConfidenceFor(2026)), int(p.ConfidenceFor(2046)))
}

func TestPredictAtSingleStep(t *testing.T) {
	p := newTestPredictor(t)

	base := BasePoint{Name: "test-system", Year: 2018, Transistors: 1e9, ProcessNM: 10}
	pred := p.PredictAt(base, 2019)

	// One year under a 2.0-year doubling period.
	assert.InDelta(t, 1e9*math.Pow(2, 0.5), pred.PredictedTransistors, 1)
	assert.InDelta(t, 10/math.Pow(2, 0.25), pred.PredictedProcessNM, 1e-9)
	assert.InDelta(t, 0.5, pred.DoublingsFromBase, 1e-12)
	assert.Equal(t, 1, pred.YearsFromBase)
	assert.Equal(t, ConfidenceHigh, pred.Confidence)
	assert.False(t, pred.PhysicalLimitReached)
	assert.False(t, pred.TransistorCapReached)
	assert.Empty(t, pred.Note)
}

func TestPredictAtTargetEqualsBaseYear(t *testing.T) {
	p := newTestPredictor(t)

	base := BasePoint{Name: "test-system", Year: 2018, Transistors: 1e9, ProcessNM: 10}
	pred := p.PredictAt(base, 2018)

	assert.Equal(t, base.Transistors, pred.PredictedTransistors)
	assert.Equal(t, base.ProcessNM, pred.PredictedProcessNM)
	assert.Zero(t, pred.DoublingsFromBase)
}

func TestProcessFloorIsSticky(t *testing.T) {
	p := newTestPredictor(t)
	base := BasePoint{Name: "modern", Year: 2023, Transistors: 1e10, ProcessNM: 3}

	far := p.PredictAt(base, 2060)
	require.True(t, far.PhysicalLimitReached)
	assert.Equal(t, 0.5, far.PredictedProcessNM)
	assert.Contains(t, far.Note, "Physical limit")

	// Once on the floor, later targets never go below it.
	further := p.PredictAt(base, 2100)
	assert.Equal(t, 0.5, further.PredictedProcessNM)
	assert.True(t, further.PhysicalLimitReached)
}

func TestTransistorCapIsSticky(t *testing.T) {
	p := newTestPredictor(t)
	// ProcessNM of zero keeps the process walk out of the picture.
	base := BasePoint{Name: "huge", Year: 2020, Transistors: 9e14, ProcessNM: 0}

	pred := p.PredictAt(base, 2030)
	require.True(t, pred.TransistorCapReached)
	assert.Equal(t, 1e15, pred.PredictedTransistors)
	assert.False(t, pred.PhysicalLimitReached)
	assert.Contains(t, pred.Note, "Practical limit")

	further := p.PredictAt(base, 2080)
	assert.Equal(t, 1e15, further.PredictedTransistors)
}

func TestNotePriorityPhysicalOverCap(t *testing.T) {
	p := newTestPredictor(t)
	base := BasePoint{Name: "both-limits", Year: 2020, Transistors: 9e14, ProcessNM: 0.6}

	pred := p.PredictAt(base, 2100)
	require.True(t, pred.PhysicalLimitReached)
	require.True(t, pred.TransistorCapReached)
	assert.Contains(t, pred.Note, "Physical limit")
}

func TestSpeculativeNotes(t *testing.T) {
	p := newTestPredictor(t)
	base := BasePoint{Name: "modest", Year: 2023, Transistors: 1e9, ProcessNM: 300}

	assert.Contains(t, p.PredictAt(base, 2032).Note, "Uncertain")
	assert.Contains(t, p.PredictAt(base, 2040).Note, "Speculative")
	assert.Contains(t, p.PredictAt(base, 2047).Note, "Highly speculative")
}

func TestPredictRange(t *testing.T) {
	p := newTestPredictor(t)
	base := BasePoint{Name: "test-system", Year: 2020, Transistors: 1e10, ProcessNM: 5}

	predictions := p.PredictRange(base, 5)
	require.Len(t, predictions, 5)
	for i, pred := range predictions {
		assert.Equal(t, 2021+i, pred.Year)
		assert.Equal(t, i+1, pred.YearsFromBase)
	}
	// Transistor counts grow monotonically until a cap binds.
	for i := 1; i < len(predictions); i++ {
		assert.Greater(t, predictions[i].PredictedTransistors, predictions[i-1].PredictedTransistors)
	}

	assert.Nil(t, p.PredictRange(base, 0))
	assert.Nil(t, p.PredictRange(base, -3))
}

func TestPredictionCaching(t *testing.T) {
	p := newTestPredictor(t)
	base := BasePoint{Name: "cached", Year: 2020, Transistors: 1e10, ProcessNM: 5}

	first := p.PredictAt(base, 2030)
	second := p.PredictAt(base, 2030)
	assert.Equal(t, first, second)

	hits, misses := p.CacheStats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)

	// A different base is a different cache entry.
	other := base
	other.Transistors = 2e10
	p.PredictAt(other, 2030)
	_, misses = p.CacheStats()
	assert.Equal(t, int64(2), misses)
}

func TestConfidenceString(t *testing.T) {
	assert.Equal(t, "high", ConfidenceHigh.String())
	assert.Equal(t, "medium", ConfidenceMedium.String())
	assert.Equal(t, "low", ConfidenceLow.String())
	assert.Equal(t, "very_low", ConfidenceVeryLow.String())

	for _, s := range []string{"high", "medium", "low", "very_low"} {
		c, err := ParseConfidence(s)
		require.NoError(t, err)
		assert.Equal(t, s, c.String())
	}
	_, err := ParseConfidence("certain")
	assert.Error(t, err)
}
