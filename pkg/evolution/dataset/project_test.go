package dataset

import (
	"testing"

	"github.com/elevated-systems/evolution-tracker/pkg/evolution/series"
	"github.com/elevated-systems/evolution-tracker/pkg/evolution/types"
)

func seriesByMetric(batch []series.MetricSeries) map[string]series.MetricSeries {
	out := make(map[string]series.MetricSeries, len(batch))
	for _, s := range batch {
		out[s.Metric] = s
	}
	return out
}

func TestHardwareSeriesSkipsAbsentMIPS(t *testing.T) {
	mips := 3000.0
	systems := []types.HardwareSystem{
		{Name: "no-mips", Year: 1980, CPUTransistors: 29000, PowerWatts: 20},
		{Name: "with-mips", Year: 2000, CPUTransistors: 42e6, PerformanceMIPS: &mips, PowerWatts: 75},
	}

	batch := seriesByMetric(HardwareSeries(systems))

	if got := batch["cpu_transistors"].Len(); got != 2 {
		t.Errorf("cpu_transistors points = %d, want 2", got)
	}
	// Absent MIPS never becomes a zero point.
	if got := batch["performance_mips"].Len(); got != 1 {
		t.Errorf("performance_mips points = %d, want 1", got)
	}
	first, _ := batch["performance_mips"].First()
	if first.Name != "with-mips" || first.Value != 3000 {
		t.Errorf("performance_mips first = %+v, want with-mips/3000", first)
	}
}

func TestGPUSeriesMetrics(t *testing.T) {
	gpus := []types.GPURecord{
		{Name: "old", Year: 2016, CudaCores: 3584, TFLOPSFP32: 8.9, VRAMMB: 8192, PriceUSD: 599},
		{Name: "new", Year: 2022, CudaCores: 16384, TFLOPSFP32: 82.6, VRAMMB: 24576, PriceUSD: 1599},
	}

	batch := seriesByMetric(GPUSeries(gpus))
	for _, metric := range []string{"cuda_cores", "tflops_fp32", "vram_mb", "price_usd"} {
		if batch[metric].Len() != 2 {
			t.Errorf("%s points = %d, want 2", metric, batch[metric].Len())
		}
	}
}

func TestLLMSeriesSkipsAbsentTokens(t *testing.T) {
	tokens := 300.0
	models := []types.LLMModel{
		{Name: "documented", Year: 2020, ParametersBillions: 175, TrainingTokensBillions: &tokens, ContextWindow: 2048},
		{Name: "undisclosed", Year: 2023, ParametersBillions: 1000, ContextWindow: 8192},
	}

	batch := seriesByMetric(LLMSeries(models))
	if got := batch["parameters_billions"].Len(); got != 2 {
		t.Errorf("parameters_billions points = %d, want 2", got)
	}
	if got := batch["training_tokens_billions"].Len(); got != 1 {
		t.Errorf("training_tokens_billions points = %d, want 1", got)
	}
}

func TestCloudSeriesMetrics(t *testing.T) {
	instances := []types.CloudInstance{
		{Provider: "AWS", InstanceType: "p3", Year: 2017, TFLOPSFP32: 125, PriceOndemandHourly: 24.48},
		{Provider: "AWS", InstanceType: "p5", Year: 2023, TFLOPSFP32: 536, TFLOPSFP16: 8000, PriceOndemandHourly: 98.32},
	}

	batch := seriesByMetric(CloudSeries(instances))
	if got := batch["price_ondemand_hourly"].Len(); got != 2 {
		t.Errorf("price_ondemand_hourly points = %d, want 2", got)
	}
	// The p3 record has no FP16 figure, so only one point survives.
	if got := batch["tflops_fp16"].Len(); got != 1 {
		t.Errorf("tflops_fp16 points = %d, want 1", got)
	}
}
