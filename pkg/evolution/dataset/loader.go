// Package dataset loads the four flat JSON datasets and flags data-quality
// defects without aborting on them.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"k8s.io/klog/v2"

	"github.com/elevated-systems/evolution-tracker/pkg/evolution/metrics"
	"github.com/elevated-systems/evolution-tracker/pkg/evolution/types"
)

// Default file layout under the data directory.
const (
	HardwareFile = "hardware/systems.json"
	GPUFile      = "gpu/gpus.json"
	LLMFile      = "llm/models.json"
	CloudFile    = "cloud/instances.json"
)

// Warning flags one data-quality defect found during load. Defects are
// reported, never silently merged or dropped.
type Warning struct {
	Dataset string `json:"dataset"`
	Kind    string `json:"kind"` // "duplicate_record", "negative_value", "spot_above_ondemand"
	Record  string `json:"record"`
	Detail  string `json:"detail"`
}

func warn(warnings []Warning, w Warning) []Warning {
	metrics.DataQualityWarnings.WithLabelValues(w.Dataset, w.Kind).Inc()
	klog.InfoS("Data-quality warning", "dataset", w.Dataset, "kind", w.Kind, "record", w.Record, "detail", w.Detail)
	return append(warnings, w)
}

// decodeArray reads a JSON array file into out.
func decodeArray(path string, out any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read dataset file %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("invalid JSON in %s: %w", path, err)
	}
	return nil
}

// LoadHardware loads the hardware systems dataset, sorted ascending by
// year.
func LoadHardware(path string) ([]types.HardwareSystem, []Warning, error) {
	var systems []types.HardwareSystem
	if err := decodeArray(path, &systems); err != nil {
		return nil, nil, err
	}
	if len(systems) == 0 {
		return nil, nil, fmt.Errorf("hardware dataset %s is empty", path)
	}

	var warnings []Warning
	seen := make(map[string]struct{}, len(systems))
	for _, sys := range systems {
		key := fmt.Sprintf("%s|%d", sys.Name, sys.Year)
		if _, dup := seen[key]; dup {
			warnings = warn(warnings, Warning{
				Dataset: "hardware", Kind: "duplicate_record", Record: sys.Name,
				Detail: fmt.Sprintf("duplicate (name, year) = (%s, %d)", sys.Name, sys.Year),
			})
		}
		seen[key] = struct{}{}
		for field, v := range map[string]float64{
			"cpu_transistors": sys.CPUTransistors,
			"cpu_clock_mhz":   sys.CPUClockMHz,
			"cpu_process_nm":  sys.CPUProcessNM,
			"ram_mb":          sys.RAMMB,
			"storage_mb":      sys.StorageMB,
			"power_watts":     sys.PowerWatts,
			"price_usd":       sys.PriceUSD,
		} {
			if v < 0 {
				warnings = warn(warnings, Warning{
					Dataset: "hardware", Kind: "negative_value", Record: sys.Name,
					Detail: fmt.Sprintf("%s = %v", field, v),
				})
			}
		}
	}

	sort.SliceStable(systems, func(i, j int) bool { return systems[i].Year < systems[j].Year })
	metrics.DatasetRecordsLoaded.WithLabelValues("hardware").Set(float64(len(systems)))
	klog.V(2).InfoS("Loaded hardware dataset", "path", path, "records", len(systems), "warnings", len(warnings))
	return systems, warnings, nil
}

// LoadGPUs loads the GPU dataset, sorted by year then FP32 TFLOPS.
func LoadGPUs(path string) ([]types.GPURecord, []Warning, error) {
	var gpus []types.GPURecord
	if err := decodeArray(path, &gpus); err != nil {
		return nil, nil, err
	}
	if len(gpus) == 0 {
		return nil, nil, fmt.Errorf("GPU dataset %s is empty", path)
	}

	var warnings []Warning
	seen := make(map[string]struct{}, len(gpus))
	for _, gpu := range gpus {
		key := fmt.Sprintf("%s|%d", gpu.Name, gpu.Year)
		if _, dup := seen[key]; dup {
			warnings = warn(warnings, Warning{
				Dataset: "gpu", Kind: "duplicate_record", Record: gpu.Name,
				Detail: fmt.Sprintf("duplicate (name, year) = (%s, %d)", gpu.Name, gpu.Year),
			})
		}
		seen[key] = struct{}{}
		for field, v := range map[string]float64{
			"tflops_fp32":           gpu.TFLOPSFP32,
			"tflops_fp16":           gpu.TFLOPSFP16,
			"vram_mb":               gpu.VRAMMB,
			"memory_bandwidth_gbps": gpu.MemoryBandwidthGBps,
			"power_watts":           gpu.PowerWatts,
			"price_usd":             gpu.PriceUSD,
		} {
			if v < 0 {
				warnings = warn(warnings, Warning{
					Dataset: "gpu", Kind: "negative_value", Record: gpu.Name,
					Detail: fmt.Sprintf("%s = %v", field, v),
				})
			}
		}
	}

	sort.SliceStable(gpus, func(i, j int) bool {
		if gpus[i].Year != gpus[j].Year {
			return gpus[i].Year < gpus[j].Year
		}
		return gpus[i].TFLOPSFP32 < gpus[j].TFLOPSFP32
	})
	metrics.DatasetRecordsLoaded.WithLabelValues("gpu").Set(float64(len(gpus)))
	klog.V(2).InfoS("Loaded GPU dataset", "path", path, "records", len(gpus), "warnings", len(warnings))
	return gpus, warnings, nil
}

// LoadLLMs loads the language-model dataset, sorted by year then parameter
// count.
func LoadLLMs(path string) ([]types.LLMModel, []Warning, error) {
	var models []types.LLMModel
	if err := decodeArray(path, &models); err != nil {
		return nil, nil, err
	}
	if len(models) == 0 {
		return nil, nil, fmt.Errorf("LLM dataset %s is empty", path)
	}

	var warnings []Warning
	seen := make(map[string]struct{}, len(models))
	for _, m := range models {
		key := fmt.Sprintf("%s|%d", m.Name, m.Year)
		if _, dup := seen[key]; dup {
			warnings = warn(warnings, Warning{
				Dataset: "llm", Kind: "duplicate_record", Record: m.Name,
				Detail: fmt.Sprintf("duplicate (name, year) = (%s, %d)", m.Name, m.Year),
			})
		}
		seen[key] = struct{}{}
		if m.ParametersBillions < 0 {
			warnings = warn(warnings, Warning{
				Dataset: "llm", Kind: "negative_value", Record: m.Name,
				Detail: fmt.Sprintf("parameters_billions = %v", m.ParametersBillions),
			})
		}
	}

	sort.SliceStable(models, func(i, j int) bool {
		if models[i].Year != models[j].Year {
			return models[i].Year < models[j].Year
		}
		return models[i].ParametersBillions < models[j].ParametersBillions
	})
	metrics.DatasetRecordsLoaded.WithLabelValues("llm").Set(float64(len(models)))
	klog.V(2).InfoS("Loaded LLM dataset", "path", path, "records", len(models), "warnings", len(warnings))
	return models, warnings, nil
}

// LoadCloudInstances loads the cloud instance catalog, sorted by provider
// then on-demand price.
func LoadCloudInstances(path string) ([]types.CloudInstance, []Warning, error) {
	var instances []types.CloudInstance
	if err := decodeArray(path, &instances); err != nil {
		return nil, nil, err
	}
	if len(instances) == 0 {
		return nil, nil, fmt.Errorf("cloud instance dataset %s is empty", path)
	}

	var warnings []Warning
	seen := make(map[string]struct{}, len(instances))
	for _, inst := range instances {
		name := inst.Provider + "/" + inst.InstanceType
		key := fmt.Sprintf("%s|%d", name, inst.Year)
		if _, dup := seen[key]; dup {
			warnings = warn(warnings, Warning{
				Dataset: "cloud", Kind: "duplicate_record", Record: name,
				Detail: fmt.Sprintf("duplicate (name, year) = (%s, %d)", name, inst.Year),
			})
		}
		seen[key] = struct{}{}
		for field, v := range map[string]float64{
			"tflops_fp32":           inst.TFLOPSFP32,
			"tflops_fp16":           inst.TFLOPSFP16,
			"price_ondemand_hourly": inst.PriceOndemandHourly,
			"price_spot_hourly":     inst.PriceSpotHourly,
			"gpu_memory_gb":         inst.GPUMemoryGB,
			"ram_gb":                inst.RAMGB,
		} {
			if v < 0 {
				warnings = warn(warnings, Warning{
					Dataset: "cloud", Kind: "negative_value", Record: name,
					Detail: fmt.Sprintf("%s = %v", field, v),
				})
			}
		}
		if inst.HasSpotPricing() && inst.PriceSpotHourly > inst.PriceOndemandHourly {
			warnings = warn(warnings, Warning{
				Dataset: "cloud", Kind: "spot_above_ondemand", Record: name,
				Detail: fmt.Sprintf("spot %v > ondemand %v", inst.PriceSpotHourly, inst.PriceOndemandHourly),
			})
		}
	}

	sort.SliceStable(instances, func(i, j int) bool {
		if instances[i].Provider != instances[j].Provider {
			return instances[i].Provider < instances[j].Provider
		}
		return instances[i].PriceOndemandHourly < instances[j].PriceOndemandHourly
	})
	metrics.DatasetRecordsLoaded.WithLabelValues("cloud").Set(float64(len(instances)))
	klog.V(2).InfoS("Loaded cloud instance dataset", "path", path, "records", len(instances), "warnings", len(warnings))
	return instances, warnings, nil
}

// Datasets bundles everything one analysis session works over.
type Datasets struct {
	Hardware  []types.HardwareSystem
	GPUs      []types.GPURecord
	LLMs      []types.LLMModel
	Instances []types.CloudInstance
	Warnings  []Warning
}

// LoadAll loads the four datasets from their default locations under
// dataDir.
func LoadAll(dataDir string) (*Datasets, error) {
	ds := &Datasets{}

	var warnings []Warning
	var err error
	if ds.Hardware, warnings, err = LoadHardware(filepath.Join(dataDir, HardwareFile)); err != nil {
		return nil, err
	}
	ds.Warnings = append(ds.Warnings, warnings...)
	if ds.GPUs, warnings, err = LoadGPUs(filepath.Join(dataDir, GPUFile)); err != nil {
		return nil, err
	}
	ds.Warnings = append(ds.Warnings, warnings...)
	if ds.LLMs, warnings, err = LoadLLMs(filepath.Join(dataDir, LLMFile)); err != nil {
		return nil, err
	}
	ds.Warnings = append(ds.Warnings, warnings...)
	if ds.Instances, warnings, err = LoadCloudInstances(filepath.Join(dataDir, CloudFile)); err != nil {
		return nil, err
	}
	ds.Warnings = append(ds.Warnings, warnings...)

	return ds, nil
}
