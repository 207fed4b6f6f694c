// Package types defines the record shapes shared by all analyzers.
//
// Each record carries an integer year; within one dataset records are
// conceptually a set keyed by (name, year). Optional numeric fields are
// pointers so that "absent" stays distinct from a legitimate zero — the
// analyzers never have to guess which one they are looking at.
package types

// HardwareSystem describes one historical computing system.
type HardwareSystem struct {
	Name         string `json:"name"`
	Year         int    `json:"year"`
	Manufacturer string `json:"manufacturer"`

	CPUName        string  `json:"cpu_name"`
	CPUCores       int     `json:"cpu_cores"`
	CPUTransistors float64 `json:"cpu_transistors"`
	CPUClockMHz    float64 `json:"cpu_clock_mhz"`
	CPUProcessNM   float64 `json:"cpu_process_nm"`

	RAMMB     float64 `json:"ram_mb"`
	StorageMB float64 `json:"storage_mb"`

	// Performance figures are unavailable for many early systems.
	PerformanceMIPS  *float64 `json:"performance_mips,omitempty"`
	PerformanceFLOPS *float64 `json:"performance_flops,omitempty"`

	PowerWatts float64 `json:"power_watts"`
	PriceUSD   float64 `json:"price_usd"`

	Architecture   string `json:"architecture,omitempty"`
	InstructionSet string `json:"instruction_set,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

// HardwareEfficiency holds derived efficiency metrics for a system.
// A zero field means the inputs needed to derive it were absent.
type HardwareEfficiency struct {
	MIPSPerWatt       float64
	MIPSPerDollar     float64
	TransistorDensity float64 // transistors per square nanometer of process node
}

// Efficiency computes derived efficiency metrics from whatever inputs are
// present.
func (h *HardwareSystem) Efficiency() HardwareEfficiency {
	var e HardwareEfficiency
	if h.PerformanceMIPS != nil && h.PowerWatts > 0 {
		e.MIPSPerWatt = *h.PerformanceMIPS / h.PowerWatts
	}
	if h.PerformanceMIPS != nil && h.PriceUSD > 0 {
		e.MIPSPerDollar = *h.PerformanceMIPS / h.PriceUSD
	}
	if h.CPUTransistors > 0 && h.CPUProcessNM > 0 {
		e.TransistorDensity = h.CPUTransistors / (h.CPUProcessNM * h.CPUProcessNM)
	}
	return e
}

// GPURecord describes one discrete GPU generation.
type GPURecord struct {
	Name         string `json:"name"`
	Year         int    `json:"year"`
	Manufacturer string `json:"manufacturer"`

	Architecture        string  `json:"architecture,omitempty"`
	CudaCores           int     `json:"cuda_cores"`
	TransistorsMillions float64 `json:"transistors_millions"`
	ProcessNM           float64 `json:"process_nm"`

	TFLOPSFP32 float64 `json:"tflops_fp32"`
	TFLOPSFP16 float64 `json:"tflops_fp16"`

	VRAMMB              float64 `json:"vram_mb"`
	MemoryBandwidthGBps float64 `json:"memory_bandwidth_gbps"`

	PowerWatts float64 `json:"power_watts"`
	PriceUSD   float64 `json:"price_usd"`
	Notes      string  `json:"notes,omitempty"`
}

// LLMModel describes one released language model.
type LLMModel struct {
	Name         string `json:"name"`
	Year         int    `json:"year"`
	Organization string `json:"organization"`

	ParametersBillions float64 `json:"parameters_billions"`
	ArchitectureType   string  `json:"architecture_type,omitempty"`

	TrainingTokensBillions *float64 `json:"training_tokens_billions,omitempty"`
	TrainingComputeFLOPs   *float64 `json:"training_compute_flops,omitempty"`
	TrainingDays           *int     `json:"training_days,omitempty"`

	ContextWindow   int  `json:"context_window"`
	MaxOutputTokens *int `json:"max_output_tokens,omitempty"`

	// Heuristic capability estimates on a 0-100 scale, not learned scores.
	CapabilityReasoning    float64 `json:"capability_score_reasoning"`
	CapabilityCoding       float64 `json:"capability_score_coding"`
	CapabilityMath         float64 `json:"capability_score_math"`
	CapabilityKnowledge    float64 `json:"capability_score_knowledge"`
	CapabilityMultilingual float64 `json:"capability_score_multilingual"`

	CostPer1MInputTokens  float64 `json:"cost_per_1m_input_tokens"`
	CostPer1MOutputTokens float64 `json:"cost_per_1m_output_tokens"`

	ModelType  string `json:"model_type,omitempty"`
	OpenSource bool   `json:"open_source"`
	Notes      string `json:"notes,omitempty"`
}

// ScalingMetrics holds Chinchilla-style scaling figures derived from a model
// record. Zero-valued fields mean the inputs were absent.
type ScalingMetrics struct {
	ChinchillaOptimalTokensB float64 // ~20 tokens per parameter
	ChinchillaEfficiency     float64 // 1.0 = trained at the optimal ratio
	MemoryGBFP32             float64
	MemoryGBFP16             float64
	AvgCapabilityScore       float64
}

// Scaling derives Chinchilla-style scaling metrics for the model.
func (m *LLMModel) Scaling() ScalingMetrics {
	var s ScalingMetrics
	if m.ParametersBillions > 0 {
		s.MemoryGBFP32 = m.ParametersBillions * 4
		s.MemoryGBFP16 = m.ParametersBillions * 2
		if m.TrainingTokensBillions != nil && *m.TrainingTokensBillions > 0 {
			optimal := m.ParametersBillions * 20
			s.ChinchillaOptimalTokensB = optimal
			ratio := *m.TrainingTokensBillions / optimal
			if ratio > 1 {
				ratio = 1 / ratio
			}
			s.ChinchillaEfficiency = ratio
		}
	}
	s.AvgCapabilityScore = (m.CapabilityReasoning + m.CapabilityCoding +
		m.CapabilityMath + m.CapabilityKnowledge + m.CapabilityMultilingual) / 5
	return s
}

// CloudInstance describes one cloud GPU instance offering.
//
// All performance figures are instance totals, never per-GPU. Per-GPU
// figures must be multiplied by GPUCount before they enter a record.
type CloudInstance struct {
	Provider     string `json:"provider"`
	InstanceType string `json:"instance_type"`
	Year         int    `json:"year"`

	GPUCount    int     `json:"gpu_count"`
	GPUModel    string  `json:"gpu_model"`
	GPUMemoryGB float64 `json:"gpu_memory_gb"`

	VCPUs int     `json:"vcpus"`
	RAMGB float64 `json:"ram_gb"`

	TFLOPSFP32 float64 `json:"tflops_fp32"`
	TFLOPSFP16 float64 `json:"tflops_fp16"`

	PriceOndemandHourly float64 `json:"price_ondemand_hourly"`
	// Zero means spot pricing is not offered for this instance.
	PriceSpotHourly float64 `json:"price_spot_hourly"`

	TrainingOptimized  bool `json:"training_optimized"`
	InferenceOptimized bool `json:"inference_optimized"`
}

// InstanceCostMetrics holds per-instance derived cost figures.
type InstanceCostMetrics struct {
	TFLOPSPerDollar     float64 // tflops_fp32 per on-demand dollar-hour
	CostPerTFLOPHour    float64
	CostPerGPUHour      float64
	SpotDiscountPercent float64 // 0 when spot pricing is absent
}

// CostMetrics derives cost-efficiency figures for the instance.
func (c *CloudInstance) CostMetrics() InstanceCostMetrics {
	var m InstanceCostMetrics
	if c.PriceOndemandHourly > 0 {
		if c.TFLOPSFP32 > 0 {
			m.TFLOPSPerDollar = c.TFLOPSFP32 / c.PriceOndemandHourly
			m.CostPerTFLOPHour = c.PriceOndemandHourly / c.TFLOPSFP32
		}
		if c.GPUCount > 0 {
			m.CostPerGPUHour = c.PriceOndemandHourly / float64(c.GPUCount)
		}
		if c.PriceSpotHourly > 0 {
			m.SpotDiscountPercent = (1 - c.PriceSpotHourly/c.PriceOndemandHourly) * 100
		}
	}
	return m
}

// HasSpotPricing reports whether a spot price is offered.
func (c *CloudInstance) HasSpotPricing() bool {
	return c.PriceSpotHourly > 0
}
