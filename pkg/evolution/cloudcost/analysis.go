package cloudcost

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"k8s.io/klog/v2"

	"github.com/elevated-systems/evolution-tracker/pkg/evolution/growth"
	"github.com/elevated-systems/evolution-tracker/pkg/evolution/series"
	"github.com/elevated-systems/evolution-tracker/pkg/evolution/types"
)

// CostEfficiencyEntry is one row of a cost-efficiency ranking.
type CostEfficiencyEntry struct {
	Provider            string  `json:"provider"`
	InstanceType        string  `json:"instance_type"`
	GPUModel            string  `json:"gpu_model"`
	GPUCount            int     `json:"gpu_count"`
	TFLOPSPerDollar     float64 `json:"tflops_per_dollar"`
	CostPerTFLOPHour    float64 `json:"cost_per_tflop_hour"`
	PriceOndemandHourly float64 `json:"price_ondemand_hourly"`
	PriceSpotHourly     float64 `json:"price_spot_hourly"`
}

// SpotSavingsEntry is one row of a spot-savings analysis.
type SpotSavingsEntry struct {
	Provider         string  `json:"provider"`
	InstanceType     string  `json:"instance_type"`
	GPUModel         string  `json:"gpu_model"`
	GPUCount         int     `json:"gpu_count"`
	OndemandHourly   float64 `json:"ondemand_hourly"`
	SpotHourly       float64 `json:"spot_hourly"`
	SavingsPercent   float64 `json:"savings_percent"`
	AnnualSavingsUSD float64 `json:"annual_savings_usd"`
}

// ProviderStats summarizes one provider's catalog presence.
type ProviderStats struct {
	InstanceCount          int      `json:"instance_count"`
	AvgHourlyCost          float64  `json:"avg_hourly_cost"`
	AvgSpotDiscountPercent float64  `json:"avg_spot_discount_percent"`
	TotalGPUs              int      `json:"total_gpus"`
	GPUModels              []string `json:"gpu_models"`
	TrainingInstances      int      `json:"training_instances"`
	InferenceInstances     int      `json:"inference_instances"`
	MinHourly              float64  `json:"min_hourly"`
	MaxHourly              float64  `json:"max_hourly"`
}

// PricePoint is one observation in a GPU model's price history.
type PricePoint struct {
	Year                int     `json:"year"`
	Provider            string  `json:"provider"`
	InstanceType        string  `json:"instance_type"`
	PriceOndemandHourly float64 `json:"price_ondemand_hourly"`
	CostPerGPUHour      float64 `json:"cost_per_gpu_hour"`
	TFLOPSPerDollar     float64 `json:"tflops_per_dollar"`
}

// PriceEvolution is the price history of one GPU model across catalog
// years, with a growth summary of its on-demand price.
type PriceEvolution struct {
	GPUModel string              `json:"gpu_model"`
	Points   []PricePoint        `json:"points"`
	Trend    growth.GrowthResult `json:"trend"`
}

// CompareProvidersForTraining computes the minimum-cost training estimate
// per provider. Providers with no eligible instance, or for which the
// requested pricing model is unavailable, are omitted rather than failing
// the whole comparison.
func (e *Engine) CompareProvidersForTraining(parametersBillions, trainingTokensBillions float64, useSpot bool) (map[string]TrainingCostEstimate, error) {
	if parametersBillions <= 0 || trainingTokensBillions <= 0 {
		return nil, fmt.Errorf("%w: parameters and tokens must be positive", ErrInvalidWorkload)
	}

	comparison := make(map[string]TrainingCostEstimate)
	for _, provider := range e.providers() {
		var best TrainingCostEstimate
		found := false
		for _, inst := range e.InstancesByProvider(provider) {
			if !inst.TrainingOptimized {
				continue
			}
			est, err := e.trainingCostOn(inst, parametersBillions, trainingTokensBillions, useSpot)
			if err != nil {
				// Instances without the requested pricing model or
				// without FP16 data simply drop out of the comparison.
				continue
			}
			if !found || est.TotalCostUSD < best.TotalCostUSD {
				best = est
				found = true
			}
		}
		if found {
			comparison[provider] = best
		} else {
			klog.V(2).InfoS("Provider omitted from training comparison", "provider", provider, "useSpot", useSpot)
		}
	}
	return comparison, nil
}

// CompareProvidersForInference computes the minimum-cost inference estimate
// per provider, omitting providers with no eligible instance.
func (e *Engine) CompareProvidersForInference(requestsPerSecond, avgTokensPerRequest, tokensPerSecondPerGPU, hoursPerDay float64, days int) (map[string]InferenceCostEstimate, error) {
	comparison := make(map[string]InferenceCostEstimate)
	for _, provider := range e.providers() {
		var best InferenceCostEstimate
		found := false
		for _, inst := range e.InstancesByProvider(provider) {
			if !inst.InferenceOptimized {
				continue
			}
			est, err := e.inferenceCostOn(inst, requestsPerSecond, avgTokensPerRequest, tokensPerSecondPerGPU, hoursPerDay, days)
			if err != nil {
				if errors.Is(err, ErrInvalidWorkload) {
					return nil, err
				}
				continue
			}
			if !found || est.ComputeCostUSD < best.ComputeCostUSD {
				best = est
				found = true
			}
		}
		if found {
			comparison[provider] = best
		}
	}
	return comparison, nil
}

// RankCostEfficiency ranks instances of the given workload type
// ("training" or "inference") by FP32 TFLOPS per on-demand dollar,
// descending. Ties break by provider then instance type for determinism.
func (e *Engine) RankCostEfficiency(workloadType string) ([]CostEfficiencyEntry, error) {
	var candidates []types.CloudInstance
	switch workloadType {
	case "training":
		candidates = e.TrainingInstances()
	case "inference":
		candidates = e.InferenceInstances()
	default:
		return nil, fmt.Errorf("%w: workload type must be \"training\" or \"inference\", got %q", ErrInvalidWorkload, workloadType)
	}

	ranking := make([]CostEfficiencyEntry, 0, len(candidates))
	for _, inst := range candidates {
		m := inst.CostMetrics()
		if m.TFLOPSPerDollar <= 0 {
			continue
		}
		ranking = append(ranking, CostEfficiencyEntry{
			Provider:            inst.Provider,
			InstanceType:        inst.InstanceType,
			GPUModel:            inst.GPUModel,
			GPUCount:            inst.GPUCount,
			TFLOPSPerDollar:     m.TFLOPSPerDollar,
			CostPerTFLOPHour:    m.CostPerTFLOPHour,
			PriceOndemandHourly: inst.PriceOndemandHourly,
			PriceSpotHourly:     inst.PriceSpotHourly,
		})
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		if ranking[i].TFLOPSPerDollar != ranking[j].TFLOPSPerDollar {
			return ranking[i].TFLOPSPerDollar > ranking[j].TFLOPSPerDollar
		}
		if ranking[i].Provider != ranking[j].Provider {
			return ranking[i].Provider < ranking[j].Provider
		}
		return ranking[i].InstanceType < ranking[j].InstanceType
	})
	return ranking, nil
}

// SpotSavingsAnalysis ranks instances by spot discount, descending.
// Instances without spot pricing are excluded; an instance whose spot price
// exceeds its on-demand price is a data defect and is excluded with a
// warning rather than reported as negative savings.
func (e *Engine) SpotSavingsAnalysis() []SpotSavingsEntry {
	var entries []SpotSavingsEntry
	for _, inst := range e.catalog {
		if !inst.HasSpotPricing() || inst.PriceOndemandHourly <= 0 {
			continue
		}
		if inst.PriceSpotHourly > inst.PriceOndemandHourly {
			klog.InfoS("Warning: spot price above on-demand, excluding from savings analysis",
				"provider", inst.Provider, "instanceType", inst.InstanceType,
				"spot", inst.PriceSpotHourly, "ondemand", inst.PriceOndemandHourly)
			continue
		}
		entries = append(entries, SpotSavingsEntry{
			Provider:         inst.Provider,
			InstanceType:     inst.InstanceType,
			GPUModel:         inst.GPUModel,
			GPUCount:         inst.GPUCount,
			OndemandHourly:   inst.PriceOndemandHourly,
			SpotHourly:       inst.PriceSpotHourly,
			SavingsPercent:   (1 - inst.PriceSpotHourly/inst.PriceOndemandHourly) * 100,
			AnnualSavingsUSD: (inst.PriceOndemandHourly - inst.PriceSpotHourly) * 24 * 365,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].SavingsPercent != entries[j].SavingsPercent {
			return entries[i].SavingsPercent > entries[j].SavingsPercent
		}
		if entries[i].Provider != entries[j].Provider {
			return entries[i].Provider < entries[j].Provider
		}
		return entries[i].InstanceType < entries[j].InstanceType
	})
	return entries
}

// ProviderStatistics summarizes every provider in the catalog.
func (e *Engine) ProviderStatistics() map[string]ProviderStats {
	stats := make(map[string]ProviderStats)
	for _, provider := range e.providers() {
		instances := e.InstancesByProvider(provider)
		if len(instances) == 0 {
			continue
		}

		s := ProviderStats{InstanceCount: len(instances)}
		modelSet := make(map[string]struct{})
		var priceSum, discountSum float64
		var discountCount int
		s.MinHourly = instances[0].PriceOndemandHourly
		for _, inst := range instances {
			priceSum += inst.PriceOndemandHourly
			if inst.PriceOndemandHourly < s.MinHourly {
				s.MinHourly = inst.PriceOndemandHourly
			}
			if inst.PriceOndemandHourly > s.MaxHourly {
				s.MaxHourly = inst.PriceOndemandHourly
			}
			if inst.HasSpotPricing() {
				discountSum += inst.CostMetrics().SpotDiscountPercent
				discountCount++
			}
			s.TotalGPUs += inst.GPUCount
			if inst.GPUModel != "" {
				modelSet[inst.GPUModel] = struct{}{}
			}
			if inst.TrainingOptimized {
				s.TrainingInstances++
			}
			if inst.InferenceOptimized {
				s.InferenceInstances++
			}
		}
		s.AvgHourlyCost = priceSum / float64(len(instances))
		if discountCount > 0 {
			s.AvgSpotDiscountPercent = discountSum / float64(discountCount)
		}
		for model := range modelSet {
			s.GPUModels = append(s.GPUModels, model)
		}
		sort.Strings(s.GPUModels)
		stats[provider] = s
	}
	return stats
}

// GPUPriceEvolution builds the on-demand price history of every GPU model
// in the catalog, each with a CAGR summary of its price trend. Price can
// fall, so the trend is first-recorded vs last-recorded, not min vs max.
func (e *Engine) GPUPriceEvolution() []PriceEvolution {
	modelSet := make(map[string]struct{})
	for _, inst := range e.catalog {
		if inst.GPUModel != "" {
			modelSet[inst.GPUModel] = struct{}{}
		}
	}
	models := make([]string, 0, len(modelSet))
	for model := range modelSet {
		models = append(models, model)
	}
	sort.Strings(models)

	evolutions := make([]PriceEvolution, 0, len(models))
	for _, model := range models {
		instances := e.InstancesByGPUModel(model)
		points := make([]PricePoint, 0, len(instances))
		seriesPoints := make([]series.Point, 0, len(instances))
		for _, inst := range instances {
			m := inst.CostMetrics()
			points = append(points, PricePoint{
				Year:                inst.Year,
				Provider:            inst.Provider,
				InstanceType:        inst.InstanceType,
				PriceOndemandHourly: inst.PriceOndemandHourly,
				CostPerGPUHour:      m.CostPerGPUHour,
				TFLOPSPerDollar:     m.TFLOPSPerDollar,
			})
			seriesPoints = append(seriesPoints, series.Point{
				Year:  inst.Year,
				Value: inst.PriceOndemandHourly,
				Name:  inst.InstanceType,
			})
		}
		sort.SliceStable(points, func(i, j int) bool { return points[i].Year < points[j].Year })

		metricName := strings.ToLower(strings.ReplaceAll(model, " ", "_")) + "_price_ondemand_hourly"
		evolutions = append(evolutions, PriceEvolution{
			GPUModel: model,
			Points:   points,
			Trend:    e.growth.AnalyzeSeries(series.New(metricName, seriesPoints)),
		})
	}
	return evolutions
}

// InstanceSpec is one row of a side-by-side instance comparison.
type InstanceSpec struct {
	Provider            string  `json:"provider"`
	InstanceType        string  `json:"instance_type"`
	GPUModel            string  `json:"gpu_model"`
	GPUCount            int     `json:"gpu_count"`
	GPUMemoryGB         float64 `json:"gpu_memory_gb"`
	TotalGPUMemoryGB    float64 `json:"total_gpu_memory_gb"`
	VCPUs               int     `json:"vcpus"`
	RAMGB               float64 `json:"ram_gb"`
	TFLOPSFP32          float64 `json:"tflops_fp32"`
	TFLOPSFP16          float64 `json:"tflops_fp16"`
	PriceOndemandHourly float64 `json:"price_ondemand_hourly"`
	PriceSpotHourly     float64 `json:"price_spot_hourly"`
	TFLOPSPerDollar     float64 `json:"tflops_per_dollar"`
	CostPerGPUHour      float64 `json:"cost_per_gpu_hour"`
}

// CompareInstanceSpecs gathers specs for the named instance types. Unknown
// types are skipped.
func (e *Engine) CompareInstanceSpecs(instanceTypes []string) []InstanceSpec {
	specs := make([]InstanceSpec, 0, len(instanceTypes))
	for _, name := range instanceTypes {
		inst, ok := e.InstanceByType(name)
		if !ok {
			klog.V(2).InfoS("Instance type not in catalog, skipping", "instanceType", name)
			continue
		}
		m := inst.CostMetrics()
		specs = append(specs, InstanceSpec{
			Provider:            inst.Provider,
			InstanceType:        inst.InstanceType,
			GPUModel:            inst.GPUModel,
			GPUCount:            inst.GPUCount,
			GPUMemoryGB:         inst.GPUMemoryGB,
			TotalGPUMemoryGB:    inst.GPUMemoryGB * float64(inst.GPUCount),
			VCPUs:               inst.VCPUs,
			RAMGB:               inst.RAMGB,
			TFLOPSFP32:          inst.TFLOPSFP32,
			TFLOPSFP16:          inst.TFLOPSFP16,
			PriceOndemandHourly: inst.PriceOndemandHourly,
			PriceSpotHourly:     inst.PriceSpotHourly,
			TFLOPSPerDollar:     m.TFLOPSPerDollar,
			CostPerGPUHour:      m.CostPerGPUHour,
		})
	}
	return specs
}

// SummaryStats summarizes the whole catalog.
type SummaryStats struct {
	TotalInstances     int      `json:"total_instances"`
	Providers          []string `json:"providers"`
	GPUModels          []string `json:"gpu_models"`
	TrainingInstances  int      `json:"training_instances"`
	InferenceInstances int      `json:"inference_instances"`
	MinHourly          float64  `json:"min_hourly"`
	MaxHourly          float64  `json:"max_hourly"`
	AvgHourly          float64  `json:"avg_hourly"`
	YearRange          string   `json:"year_range"`
}

// SummaryStatistics summarizes the catalog. An empty catalog yields the
// zero value.
func (e *Engine) SummaryStatistics() SummaryStats {
	if len(e.catalog) == 0 {
		return SummaryStats{}
	}

	s := SummaryStats{TotalInstances: len(e.catalog)}
	modelSet := make(map[string]struct{})
	minYear, maxYear := e.catalog[0].Year, e.catalog[0].Year
	s.MinHourly = e.catalog[0].PriceOndemandHourly
	var priceSum float64
	for _, inst := range e.catalog {
		priceSum += inst.PriceOndemandHourly
		if inst.PriceOndemandHourly < s.MinHourly {
			s.MinHourly = inst.PriceOndemandHourly
		}
		if inst.PriceOndemandHourly > s.MaxHourly {
			s.MaxHourly = inst.PriceOndemandHourly
		}
		if inst.GPUModel != "" {
			modelSet[inst.GPUModel] = struct{}{}
		}
		if inst.TrainingOptimized {
			s.TrainingInstances++
		}
		if inst.InferenceOptimized {
			s.InferenceInstances++
		}
		if inst.Year < minYear {
			minYear = inst.Year
		}
		if inst.Year > maxYear {
			maxYear = inst.Year
		}
	}
	s.Providers = e.providers()
	for model := range modelSet {
		s.GPUModels = append(s.GPUModels, model)
	}
	sort.Strings(s.GPUModels)
	s.AvgHourly = priceSum / float64(len(e.catalog))
	s.YearRange = fmt.Sprintf("%d-%d", minYear, maxYear)
	return s
}

// providers returns the distinct provider names, sorted.
func (e *Engine) providers() []string {
	set := make(map[string]struct{})
	for _, inst := range e.catalog {
		set[inst.Provider] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
