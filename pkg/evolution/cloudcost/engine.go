// Package cloudcost converts model training and inference workloads into
// wall-clock time and dollar cost across a catalog of cloud GPU instances.
//
// Every performance figure in the catalog is an instance total, never a
// per-GPU figure; treating per-GPU TFLOPS as instance totals historically
// produced 4x cost errors.
package cloudcost

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"k8s.io/klog/v2"

	"github.com/elevated-systems/evolution-tracker/pkg/evolution/growth"
	"github.com/elevated-systems/evolution-tracker/pkg/evolution/metrics"
	"github.com/elevated-systems/evolution-tracker/pkg/evolution/types"
)

// PricingModel names the pricing applied to an estimate.
type PricingModel string

const (
	PricingOndemand PricingModel = "ondemand"
	PricingSpot     PricingModel = "spot"
)

// TrainingCostEstimate carries every intermediate figure of a training cost
// calculation so a caller can independently re-derive and check it.
type TrainingCostEstimate struct {
	ParametersBillions     float64      `json:"parameters_billions"`
	TrainingTokensBillions float64      `json:"training_tokens_billions"`
	TotalFLOPs             float64      `json:"total_flops"`
	TotalTFLOPs            float64      `json:"total_tflops"`
	Provider               string       `json:"provider"`
	InstanceType           string       `json:"instance_type"`
	GPUModel               string       `json:"gpu_model"`
	GPUCount               int          `json:"gpu_count"`
	UtilizationFactor      float64      `json:"utilization_factor"`
	EffectiveTFLOPS        float64      `json:"effective_tflops_per_second"`
	TrainingHours          float64      `json:"training_hours"`
	TrainingDays           float64      `json:"training_days"`
	HourlyRateUSD          float64      `json:"hourly_rate_usd"`
	PricingModel           PricingModel `json:"pricing_model"`
	TotalCostUSD           float64      `json:"total_cost_usd"`
}

// InferenceCostEstimate carries every intermediate figure of an inference
// cost calculation.
type InferenceCostEstimate struct {
	RequestsPerSecond     float64      `json:"requests_per_second"`
	AvgTokensPerRequest   float64      `json:"avg_tokens_per_request"`
	TotalTokensPerSecond  float64      `json:"total_tokens_per_second"`
	TokensPerSecondPerGPU float64      `json:"tokens_per_second_per_gpu"`
	GPUsNeeded            float64      `json:"gpus_needed"`
	InstancesNeeded       int          `json:"instances_needed"`
	Provider              string       `json:"provider"`
	InstanceType          string       `json:"instance_type"`
	GPUModel              string       `json:"gpu_model"`
	GPUCount              int          `json:"gpu_count"`
	HourlyRateUSD         float64      `json:"hourly_rate_usd"`
	PricingModel          PricingModel `json:"pricing_model"`
	TotalHours            float64      `json:"total_hours"`
	ComputeCostUSD        float64      `json:"compute_cost_usd"`
	CostPer1KRequests     float64      `json:"cost_per_1k_requests"`
	CostPer1MTokens       float64      `json:"cost_per_1m_tokens"`
}

// Engine owns the instance catalog for one analysis session. The catalog is
// read-only after construction; no locking discipline is needed because no
// writer exists after load.
type Engine struct {
	cfg     Config
	catalog []types.CloudInstance
	growth  *growth.Analyzer
}

// NewEngine builds an engine over a catalog. The catalog is copied and
// sorted by provider then on-demand price.
func NewEngine(catalog []types.CloudInstance, cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cost model config: %w", err)
	}
	if len(cfg.GPUPreferenceOrder) == 0 {
		cfg.GPUPreferenceOrder = DefaultConfig().GPUPreferenceOrder
	}

	owned := make([]types.CloudInstance, len(catalog))
	copy(owned, catalog)
	sort.SliceStable(owned, func(i, j int) bool {
		if owned[i].Provider != owned[j].Provider {
			return owned[i].Provider < owned[j].Provider
		}
		return owned[i].PriceOndemandHourly < owned[j].PriceOndemandHourly
	})

	klog.V(2).InfoS("Cloud cost engine initialized", "instances", len(owned),
		"utilization", cfg.UtilizationFactor, "flopsMultiplier", cfg.FLOPsPerParamToken)
	return &Engine{cfg: cfg, catalog: owned, growth: growth.New()}, nil
}

// Catalog returns a copy of the owned instance catalog.
func (e *Engine) Catalog() []types.CloudInstance {
	out := make([]types.CloudInstance, len(e.catalog))
	copy(out, e.catalog)
	return out
}

// InstancesByProvider returns all instances of one provider,
// case-insensitively.
func (e *Engine) InstancesByProvider(provider string) []types.CloudInstance {
	var out []types.CloudInstance
	for _, inst := range e.catalog {
		if strings.EqualFold(inst.Provider, provider) {
			out = append(out, inst)
		}
	}
	return out
}

// InstanceByType looks up one instance by type name, case-insensitively.
func (e *Engine) InstanceByType(instanceType string) (types.CloudInstance, bool) {
	for _, inst := range e.catalog {
		if strings.EqualFold(inst.InstanceType, instanceType) {
			return inst, true
		}
	}
	return types.CloudInstance{}, false
}

// InstancesByGPUModel returns all instances carrying the given GPU model.
func (e *Engine) InstancesByGPUModel(gpuModel string) []types.CloudInstance {
	var out []types.CloudInstance
	for _, inst := range e.catalog {
		if strings.EqualFold(inst.GPUModel, gpuModel) {
			out = append(out, inst)
		}
	}
	return out
}

// TrainingInstances returns the training-optimized subset of the catalog.
func (e *Engine) TrainingInstances() []types.CloudInstance {
	var out []types.CloudInstance
	for _, inst := range e.catalog {
		if inst.TrainingOptimized {
			out = append(out, inst)
		}
	}
	return out
}

// InferenceInstances returns the inference-optimized subset of the catalog.
func (e *Engine) InferenceInstances() []types.CloudInstance {
	var out []types.CloudInstance
	for _, inst := range e.catalog {
		if inst.InferenceOptimized {
			out = append(out, inst)
		}
	}
	return out
}

// EstimateTrainingCost estimates the cost of training a model of the given
// size on the given token count, selecting the best training-optimized
// instance in the catalog.
//
// Errors: ErrInvalidWorkload for non-positive sizes, ErrNoSuitableInstance
// when the catalog has no usable training instance, ErrNoSpotPricing when
// spot was requested but the chosen instance offers none.
func (e *Engine) EstimateTrainingCost(parametersBillions, trainingTokensBillions float64, useSpot bool) (TrainingCostEstimate, error) {
	instance, err := e.selectTrainingInstance()
	if err != nil {
		metrics.CostEstimates.WithLabelValues("training", "error").Inc()
		return TrainingCostEstimate{}, err
	}
	est, err := e.trainingCostOn(instance, parametersBillions, trainingTokensBillions, useSpot)
	if err != nil {
		metrics.CostEstimates.WithLabelValues("training", "error").Inc()
		return TrainingCostEstimate{}, err
	}
	metrics.CostEstimates.WithLabelValues("training", "ok").Inc()
	return est, nil
}

// EstimateTrainingCostOn estimates training cost on a specific instance
// type instead of letting the engine choose.
func (e *Engine) EstimateTrainingCostOn(instanceType string, parametersBillions, trainingTokensBillions float64, useSpot bool) (TrainingCostEstimate, error) {
	instance, ok := e.InstanceByType(instanceType)
	if !ok {
		metrics.CostEstimates.WithLabelValues("training", "error").Inc()
		return TrainingCostEstimate{}, fmt.Errorf("%w: instance type %q not in catalog", ErrNoSuitableInstance, instanceType)
	}
	est, err := e.trainingCostOn(instance, parametersBillions, trainingTokensBillions, useSpot)
	if err != nil {
		metrics.CostEstimates.WithLabelValues("training", "error").Inc()
		return TrainingCostEstimate{}, err
	}
	metrics.CostEstimates.WithLabelValues("training", "ok").Inc()
	return est, nil
}

// trainingCostOn prices a training workload on one concrete instance.
func (e *Engine) trainingCostOn(instance types.CloudInstance, parametersBillions, trainingTokensBillions float64, useSpot bool) (TrainingCostEstimate, error) {
	if parametersBillions <= 0 {
		return TrainingCostEstimate{}, fmt.Errorf("%w: parameters must be positive, got %vB", ErrInvalidWorkload, parametersBillions)
	}
	if trainingTokensBillions <= 0 {
		return TrainingCostEstimate{}, fmt.Errorf("%w: training tokens must be positive, got %vB", ErrInvalidWorkload, trainingTokensBillions)
	}
	if instance.TFLOPSFP16 <= 0 {
		return TrainingCostEstimate{}, fmt.Errorf("%w: instance %s has no FP16 performance data", ErrNoSuitableInstance, instance.InstanceType)
	}

	pricing := PricingOndemand
	hourlyRate := instance.PriceOndemandHourly
	if useSpot {
		if !instance.HasSpotPricing() {
			return TrainingCostEstimate{}, fmt.Errorf("%w: instance %s", ErrNoSpotPricing, instance.InstanceType)
		}
		pricing = PricingSpot
		hourlyRate = instance.PriceSpotHourly
	}

	totalFLOPs := e.cfg.FLOPsPerParamToken * (parametersBillions * 1e9) * (trainingTokensBillions * 1e9)
	totalTFLOPs := totalFLOPs / 1e12

	// TFLOPSFP16 is the instance total; never multiply by GPU count here.
	effectiveTFLOPS := instance.TFLOPSFP16 * e.cfg.UtilizationFactor
	trainingSeconds := totalTFLOPs / effectiveTFLOPS
	trainingHours := trainingSeconds / 3600

	return TrainingCostEstimate{
		ParametersBillions:     parametersBillions,
		TrainingTokensBillions: trainingTokensBillions,
		TotalFLOPs:             totalFLOPs,
		TotalTFLOPs:            totalTFLOPs,
		Provider:               instance.Provider,
		InstanceType:           instance.InstanceType,
		GPUModel:               instance.GPUModel,
		GPUCount:               instance.GPUCount,
		UtilizationFactor:      e.cfg.UtilizationFactor,
		EffectiveTFLOPS:        effectiveTFLOPS,
		TrainingHours:          trainingHours,
		TrainingDays:           trainingHours / 24,
		HourlyRateUSD:          hourlyRate,
		PricingModel:           pricing,
		TotalCostUSD:           trainingHours * hourlyRate,
	}, nil
}

// selectTrainingInstance picks the training-optimized instance with the
// highest total FP16 TFLOPS within the most preferred GPU generation
// present in the catalog.
func (e *Engine) selectTrainingInstance() (types.CloudInstance, error) {
	candidates := e.TrainingInstances()
	if len(candidates) == 0 {
		return types.CloudInstance{}, fmt.Errorf("%w: no training-optimized instances", ErrNoSuitableInstance)
	}

	for _, preferred := range e.cfg.GPUPreferenceOrder {
		best, found := maxFP16(candidates, func(inst types.CloudInstance) bool {
			return strings.Contains(inst.GPUModel, preferred)
		})
		if found {
			return best, nil
		}
	}

	best, found := maxFP16(candidates, func(types.CloudInstance) bool { return true })
	if !found {
		return types.CloudInstance{}, fmt.Errorf("%w: no training instances with FP16 performance data", ErrNoSuitableInstance)
	}
	return best, nil
}

func maxFP16(instances []types.CloudInstance, match func(types.CloudInstance) bool) (types.CloudInstance, bool) {
	var best types.CloudInstance
	found := false
	for _, inst := range instances {
		if !match(inst) || inst.TFLOPSFP16 <= 0 {
			continue
		}
		if !found || inst.TFLOPSFP16 > best.TFLOPSFP16 {
			best = inst
			found = true
		}
	}
	return best, found
}

// EstimateInferenceCost estimates serving cost for a sustained request load
// over a number of days, selecting the minimum-cost inference-optimized
// instance.
func (e *Engine) EstimateInferenceCost(requestsPerSecond, avgTokensPerRequest, tokensPerSecondPerGPU, hoursPerDay float64, days int) (InferenceCostEstimate, error) {
	candidates := e.InferenceInstances()
	if len(candidates) == 0 {
		metrics.CostEstimates.WithLabelValues("inference", "error").Inc()
		return InferenceCostEstimate{}, fmt.Errorf("%w: no inference-optimized instances", ErrNoSuitableInstance)
	}

	var best InferenceCostEstimate
	found := false
	for _, inst := range candidates {
		est, err := e.inferenceCostOn(inst, requestsPerSecond, avgTokensPerRequest, tokensPerSecondPerGPU, hoursPerDay, days)
		if err != nil {
			if errors.Is(err, ErrInvalidWorkload) {
				metrics.CostEstimates.WithLabelValues("inference", "error").Inc()
				return InferenceCostEstimate{}, err
			}
			continue
		}
		if !found || est.ComputeCostUSD < best.ComputeCostUSD {
			best = est
			found = true
		}
	}
	if !found {
		metrics.CostEstimates.WithLabelValues("inference", "error").Inc()
		return InferenceCostEstimate{}, fmt.Errorf("%w: no inference instance could price the workload", ErrNoSuitableInstance)
	}
	metrics.CostEstimates.WithLabelValues("inference", "ok").Inc()
	return best, nil
}

// inferenceCostOn prices an inference workload on one concrete instance.
func (e *Engine) inferenceCostOn(instance types.CloudInstance, requestsPerSecond, avgTokensPerRequest, tokensPerSecondPerGPU, hoursPerDay float64, days int) (InferenceCostEstimate, error) {
	if requestsPerSecond < 0 {
		return InferenceCostEstimate{}, fmt.Errorf("%w: requests per second cannot be negative, got %v", ErrInvalidWorkload, requestsPerSecond)
	}
	if avgTokensPerRequest < 0 {
		return InferenceCostEstimate{}, fmt.Errorf("%w: tokens per request cannot be negative, got %v", ErrInvalidWorkload, avgTokensPerRequest)
	}
	if tokensPerSecondPerGPU <= 0 {
		return InferenceCostEstimate{}, fmt.Errorf("%w: tokens per second per GPU must be positive, got %v", ErrInvalidWorkload, tokensPerSecondPerGPU)
	}
	if hoursPerDay < 0 || hoursPerDay > 24 {
		return InferenceCostEstimate{}, fmt.Errorf("%w: hours per day must be within [0, 24], got %v", ErrInvalidWorkload, hoursPerDay)
	}
	if days <= 0 {
		return InferenceCostEstimate{}, fmt.Errorf("%w: days must be positive, got %d", ErrInvalidWorkload, days)
	}
	if instance.GPUCount <= 0 {
		return InferenceCostEstimate{}, fmt.Errorf("%w: instance %s has no GPUs", ErrNoSuitableInstance, instance.InstanceType)
	}

	totalTokensPerSecond := requestsPerSecond * avgTokensPerRequest
	gpusNeeded := totalTokensPerSecond / tokensPerSecondPerGPU

	// Ceiling division. int(x)+1 here historically over-provisioned every
	// workload by one instance.
	instancesNeeded := int(math.Ceil(gpusNeeded / float64(instance.GPUCount)))

	totalHours := hoursPerDay * float64(days)
	computeCost := float64(instancesNeeded) * instance.PriceOndemandHourly * totalHours

	est := InferenceCostEstimate{
		RequestsPerSecond:     requestsPerSecond,
		AvgTokensPerRequest:   avgTokensPerRequest,
		TotalTokensPerSecond:  totalTokensPerSecond,
		TokensPerSecondPerGPU: tokensPerSecondPerGPU,
		GPUsNeeded:            gpusNeeded,
		InstancesNeeded:       instancesNeeded,
		Provider:              instance.Provider,
		InstanceType:          instance.InstanceType,
		GPUModel:              instance.GPUModel,
		GPUCount:              instance.GPUCount,
		HourlyRateUSD:         instance.PriceOndemandHourly,
		PricingModel:          PricingOndemand,
		TotalHours:            totalHours,
		ComputeCostUSD:        computeCost,
	}
	if totalRequests := requestsPerSecond * 3600 * totalHours; totalRequests > 0 {
		est.CostPer1KRequests = computeCost / (totalRequests / 1000)
	}
	if totalTokens := totalTokensPerSecond * 3600 * totalHours; totalTokens > 0 {
		est.CostPer1MTokens = computeCost / (totalTokens / 1e6)
	}
	return est, nil
}
