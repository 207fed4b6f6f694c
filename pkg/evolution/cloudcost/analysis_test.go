package cloudcost

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elevated-systems/evolution-tracker/pkg/evolution/types"
)

func TestCompareProvidersForTrainingOmitsIneligible(t *testing.T) {
	e := newTestEngine(t)

	// GCP's only training instance carries no spot price, so a spot
	// comparison must omit GCP rather than fail.
	comparison, err := e.CompareProvidersForTraining(7, 1000, true)
	require.NoError(t, err)

	assert.Contains(t, comparison, "AWS")
	assert.Contains(t, comparison, "Azure")
	assert.NotContains(t, comparison, "GCP")

	// On-demand brings GCP back.
	comparison, err = e.CompareProvidersForTraining(7, 1000, false)
	require.NoError(t, err)
	assert.Len(t, comparison, 3)
	assert.Equal(t, "a3-highgpu-8g", comparison["GCP"].InstanceType)
}

func TestCompareProvidersForTrainingPicksCheapestPerProvider(t *testing.T) {
	e := newTestEngine(t)

	comparison, err := e.CompareProvidersForTraining(7, 1000, true)
	require.NoError(t, err)

	// AWS has two eligible instances; the spot H100 one is cheaper overall.
	aws := comparison["AWS"]
	assert.Equal(t, "p5.48xlarge", aws.InstanceType)

	direct, err := e.EstimateTrainingCostOn("p4d.24xlarge", 7, 1000, true)
	require.NoError(t, err)
	assert.Less(t, aws.TotalCostUSD, direct.TotalCostUSD)
}

func TestCompareProvidersForTrainingInvalidWorkload(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.CompareProvidersForTraining(0, 1000, false)
	assert.ErrorIs(t, err, ErrInvalidWorkload)
}

func TestCompareProvidersForInference(t *testing.T) {
	e := newTestEngine(t)

	comparison, err := e.CompareProvidersForInference(1, 50, 100, 24, 30)
	require.NoError(t, err)

	// All three providers carry an inference-optimized instance.
	assert.Len(t, comparison, 3)
	for provider, est := range comparison {
		assert.Equal(t, provider, est.Provider)
		assert.Greater(t, est.ComputeCostUSD, 0.0)
	}

	_, err = e.CompareProvidersForInference(1, 50, 0, 24, 30)
	assert.ErrorIs(t, err, ErrInvalidWorkload)
}

func TestRankCostEfficiency(t *testing.T) {
	e := newTestEngine(t)

	ranking, err := e.RankCostEfficiency("training")
	require.NoError(t, err)
	require.Len(t, ranking, 4)

	for i := 1; i < len(ranking); i++ {
		assert.GreaterOrEqual(t, ranking[i-1].TFLOPSPerDollar, ranking[i].TFLOPSPerDollar)
	}
	// GCP's a3 leads: 528 TFLOPS at $88.25/h.
	assert.Equal(t, "a3-highgpu-8g", ranking[0].InstanceType)

	inference, err := e.RankCostEfficiency("inference")
	require.NoError(t, err)
	assert.Len(t, inference, 3)

	_, err = e.RankCostEfficiency("batch")
	assert.ErrorIs(t, err, ErrInvalidWorkload)
}

func TestSpotSavingsAnalysis(t *testing.T) {
	e := newTestEngine(t)

	savings := e.SpotSavingsAnalysis()
	require.Len(t, savings, 5) // the GCP a3 has no spot price

	for i, entry := range savings {
		assert.GreaterOrEqual(t, entry.SavingsPercent, 0.0)
		assert.Greater(t, entry.AnnualSavingsUSD, 0.0)
		if i > 0 {
			assert.GreaterOrEqual(t, savings[i-1].SavingsPercent, entry.SavingsPercent)
		}
	}
}

func TestSpotSavingsAnalysisExcludesDefectivePricing(t *testing.T) {
	catalog := append(testCatalog(), types.CloudInstance{
		Provider: "OCI", InstanceType: "defective.1", Year: 2022,
		GPUCount: 1, GPUModel: "A100",
		PriceOndemandHourly: 2.00, PriceSpotHourly: 5.00,
	})
	e, err := NewEngine(catalog, DefaultConfig())
	require.NoError(t, err)

	for _, entry := range e.SpotSavingsAnalysis() {
		assert.NotEqual(t, "defective.1", entry.InstanceType)
		assert.GreaterOrEqual(t, entry.SavingsPercent, 0.0)
	}
}

func TestProviderStatistics(t *testing.T) {
	e := newTestEngine(t)

	stats := e.ProviderStatistics()
	require.Len(t, stats, 3)

	aws := stats["AWS"]
	assert.Equal(t, 3, aws.InstanceCount)
	assert.Equal(t, 17, aws.TotalGPUs)
	assert.Equal(t, 2, aws.TrainingInstances)
	assert.Equal(t, 1, aws.InferenceInstances)
	assert.Equal(t, []string{"A100", "A10G", "H100"}, aws.GPUModels)
	assert.Equal(t, 1.006, aws.MinHourly)
	assert.Equal(t, 98.32, aws.MaxHourly)
	assert.Greater(t, aws.AvgSpotDiscountPercent, 0.0)

	gcp := stats["GCP"]
	assert.Equal(t, 2, gcp.InstanceCount)
}

func TestGPUPriceEvolution(t *testing.T) {
	e := newTestEngine(t)

	evolutions := e.GPUPriceEvolution()
	require.Len(t, evolutions, 4) // A100, A10G, H100, L4

	byModel := make(map[string]PriceEvolution, len(evolutions))
	for _, ev := range evolutions {
		byModel[ev.GPUModel] = ev
		for i := 1; i < len(ev.Points); i++ {
			assert.GreaterOrEqual(t, ev.Points[i].Year, ev.Points[i-1].Year)
		}
	}

	a100 := byModel["A100"]
	require.Len(t, a100.Points, 2)
	assert.True(t, a100.Trend.Computed())
	assert.Equal(t, 2020, a100.Trend.StartYear)
	assert.Equal(t, 2021, a100.Trend.EndYear)
}

func TestCompareInstanceSpecs(t *testing.T) {
	e := newTestEngine(t)

	specs := e.CompareInstanceSpecs([]string{"p5.48xlarge", "unknown.type", "g2-standard-4"})
	require.Len(t, specs, 2)

	p5 := specs[0]
	assert.Equal(t, "p5.48xlarge", p5.InstanceType)
	assert.Equal(t, 640.0, p5.TotalGPUMemoryGB)
	assert.Greater(t, p5.TFLOPSPerDollar, 0.0)
	assert.InDelta(t, 98.32/8, p5.CostPerGPUHour, 1e-9)
}

func TestSummaryStatistics(t *testing.T) {
	e := newTestEngine(t)

	stats := e.SummaryStatistics()
	assert.Equal(t, 6, stats.TotalInstances)
	assert.Equal(t, []string{"AWS", "Azure", "GCP"}, stats.Providers)
	assert.Equal(t, []string{"A100", "A10G", "H100", "L4"}, stats.GPUModels)
	assert.Equal(t, 4, stats.TrainingInstances)
	assert.Equal(t, 3, stats.InferenceInstances)
	assert.Equal(t, 0.71, stats.MinHourly)
	assert.Equal(t, 98.32, stats.MaxHourly)
	assert.Equal(t, "2020-2023", stats.YearRange)

	empty, err := NewEngine(nil, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, SummaryStats{}, empty.SummaryStatistics())
}
