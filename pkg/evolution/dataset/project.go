package dataset

import (
	"github.com/elevated-systems/evolution-tracker/pkg/evolution/series"
	"github.com/elevated-systems/evolution-tracker/pkg/evolution/types"
)

// Projection helpers build metric series out of loaded records. Absent and
// non-positive values never enter a series, so growth math downstream sees
// only real signal.

// HardwareSeries projects the standard hardware growth metrics.
func HardwareSeries(systems []types.HardwareSystem) []series.MetricSeries {
	collect := func(metric string, value func(*types.HardwareSystem) float64) series.MetricSeries {
		points := make([]series.Point, 0, len(systems))
		for i := range systems {
			points = append(points, series.Point{
				Year:  systems[i].Year,
				Value: value(&systems[i]),
				Name:  systems[i].Name,
			})
		}
		return series.New(metric, points)
	}

	mips := func(s *types.HardwareSystem) float64 {
		if s.PerformanceMIPS == nil {
			return 0
		}
		return *s.PerformanceMIPS
	}

	return []series.MetricSeries{
		collect("cpu_transistors", func(s *types.HardwareSystem) float64 { return s.CPUTransistors }),
		collect("cpu_clock_mhz", func(s *types.HardwareSystem) float64 { return s.CPUClockMHz }),
		collect("cpu_cores", func(s *types.HardwareSystem) float64 { return float64(s.CPUCores) }),
		collect("ram_mb", func(s *types.HardwareSystem) float64 { return s.RAMMB }),
		collect("storage_mb", func(s *types.HardwareSystem) float64 { return s.StorageMB }),
		collect("performance_mips", mips),
		collect("power_watts", func(s *types.HardwareSystem) float64 { return s.PowerWatts }),
		collect("price_usd", func(s *types.HardwareSystem) float64 { return s.PriceUSD }),
	}
}

// GPUSeries projects the standard GPU growth metrics.
func GPUSeries(gpus []types.GPURecord) []series.MetricSeries {
	collect := func(metric string, value func(*types.GPURecord) float64) series.MetricSeries {
		points := make([]series.Point, 0, len(gpus))
		for i := range gpus {
			points = append(points, series.Point{
				Year:  gpus[i].Year,
				Value: value(&gpus[i]),
				Name:  gpus[i].Name,
			})
		}
		return series.New(metric, points)
	}

	return []series.MetricSeries{
		collect("cuda_cores", func(g *types.GPURecord) float64 { return float64(g.CudaCores) }),
		collect("tflops_fp32", func(g *types.GPURecord) float64 { return g.TFLOPSFP32 }),
		collect("vram_mb", func(g *types.GPURecord) float64 { return g.VRAMMB }),
		collect("memory_bandwidth_gbps", func(g *types.GPURecord) float64 { return g.MemoryBandwidthGBps }),
		collect("power_watts", func(g *types.GPURecord) float64 { return g.PowerWatts }),
		collect("price_usd", func(g *types.GPURecord) float64 { return g.PriceUSD }),
	}
}

// LLMSeries projects the standard language-model growth metrics. For
// parameters the largest model per year dominates naturally through the
// first/last contract, since records are sorted by year then size.
func LLMSeries(models []types.LLMModel) []series.MetricSeries {
	collect := func(metric string, value func(*types.LLMModel) float64) series.MetricSeries {
		points := make([]series.Point, 0, len(models))
		for i := range models {
			points = append(points, series.Point{
				Year:  models[i].Year,
				Value: value(&models[i]),
				Name:  models[i].Name,
			})
		}
		return series.New(metric, points)
	}

	tokens := func(m *types.LLMModel) float64 {
		if m.TrainingTokensBillions == nil {
			return 0
		}
		return *m.TrainingTokensBillions
	}

	return []series.MetricSeries{
		collect("parameters_billions", func(m *types.LLMModel) float64 { return m.ParametersBillions }),
		collect("training_tokens_billions", tokens),
		collect("context_window", func(m *types.LLMModel) float64 { return float64(m.ContextWindow) }),
		collect("cost_per_1m_input_tokens", func(m *types.LLMModel) float64 { return m.CostPer1MInputTokens }),
	}
}

// CloudSeries projects pricing and performance metrics over the instance
// catalog.
func CloudSeries(instances []types.CloudInstance) []series.MetricSeries {
	collect := func(metric string, value func(*types.CloudInstance) float64) series.MetricSeries {
		points := make([]series.Point, 0, len(instances))
		for i := range instances {
			points = append(points, series.Point{
				Year:  instances[i].Year,
				Value: value(&instances[i]),
				Name:  instances[i].InstanceType,
			})
		}
		return series.New(metric, points)
	}

	return []series.MetricSeries{
		collect("price_ondemand_hourly", func(c *types.CloudInstance) float64 { return c.PriceOndemandHourly }),
		collect("tflops_fp32", func(c *types.CloudInstance) float64 { return c.TFLOPSFP32 }),
		collect("tflops_fp16", func(c *types.CloudInstance) float64 { return c.TFLOPSFP16 }),
	}
}
