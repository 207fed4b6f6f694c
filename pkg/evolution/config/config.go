// Package config assembles engine calibration from environment variables
// and an optional YAML calibration file.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
	"k8s.io/klog/v2"

	"github.com/elevated-systems/evolution-tracker/pkg/evolution/cloudcost"
	"github.com/elevated-systems/evolution-tracker/pkg/evolution/moore"
)

// AnalysisConfig tunes the growth analyzer.
type AnalysisConfig struct {
	// AnomalousCAGRPercent is the rate above which a CAGR is flagged as a
	// temporary trend.
	AnomalousCAGRPercent float64 `yaml:"anomalousCAGRPercent"`
	// EraLengthYears is the bucket size for era trend analysis.
	EraLengthYears int `yaml:"eraLengthYears"`
}

// ObservabilityConfig holds monitoring settings.
type ObservabilityConfig struct {
	MetricsEnabled bool   `yaml:"metricsEnabled"`
	MetricsPort    int    `yaml:"metricsPort"`
	LogLevel       string `yaml:"logLevel"`
}

// Config holds all configuration for the evolution tracker.
type Config struct {
	DataDir       string              `yaml:"dataDir"`
	OutputDir     string              `yaml:"outputDir"`
	Analysis      AnalysisConfig      `yaml:"analysis"`
	Moore         moore.Config        `yaml:"moore"`
	CostModel     cloudcost.Config    `yaml:"costModel"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// LoadFromEnv loads configuration from environment variables, then overlays
// the YAML calibration file named by CALIBRATION_PATH if set.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		DataDir:   getEnvOrDefault("DATA_DIR", "data"),
		OutputDir: getEnvOrDefault("OUTPUT_DIR", "output"),
		Analysis: AnalysisConfig{
			AnomalousCAGRPercent: getFloatOrDefault("ANOMALOUS_CAGR_PERCENT", 200.0),
			EraLengthYears:       getIntOrDefault("ERA_LENGTH_YEARS", 5),
		},
		Moore:     moore.DefaultConfig(),
		CostModel: cloudcost.DefaultConfig(),
		Observability: ObservabilityConfig{
			MetricsEnabled: getBoolOrDefault("METRICS_ENABLED", false),
			MetricsPort:    getIntOrDefault("METRICS_PORT", 9090),
			LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
		},
	}

	cfg.CostModel.UtilizationFactor = getFloatOrDefault("UTILIZATION_FACTOR", cfg.CostModel.UtilizationFactor)
	cfg.CostModel.FLOPsPerParamToken = getFloatOrDefault("FLOPS_PER_PARAM_TOKEN", cfg.CostModel.FLOPsPerParamToken)

	if calibrationPath := os.Getenv("CALIBRATION_PATH"); calibrationPath != "" {
		if err := loadCalibration(cfg, calibrationPath); err != nil {
			return nil, fmt.Errorf("failed to load calibration file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadCalibration overlays calibration sections from a YAML file onto cfg.
func loadCalibration(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	overlay := struct {
		Analysis  *AnalysisConfig   `yaml:"analysis"`
		Moore     *moore.Config     `yaml:"moore"`
		CostModel *cloudcost.Config `yaml:"costModel"`
	}{}
	if err := yaml.Unmarshal(raw, &overlay); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if overlay.Analysis != nil {
		cfg.Analysis = *overlay.Analysis
	}
	if overlay.Moore != nil {
		cfg.Moore = *overlay.Moore
	}
	if overlay.CostModel != nil {
		cfg.CostModel = *overlay.CostModel
	}
	klog.V(2).InfoS("Loaded calibration file", "path", path)
	return nil
}

// Validate performs validation of the configuration.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory is required")
	}
	if c.Analysis.AnomalousCAGRPercent <= 0 {
		return fmt.Errorf("anomalous CAGR threshold must be positive, got %v", c.Analysis.AnomalousCAGRPercent)
	}
	if c.Analysis.EraLengthYears <= 0 {
		return fmt.Errorf("era length must be positive, got %d", c.Analysis.EraLengthYears)
	}
	if err := c.Moore.Validate(); err != nil {
		return fmt.Errorf("invalid moore config: %w", err)
	}
	if err := c.CostModel.Validate(); err != nil {
		return fmt.Errorf("invalid cost model config: %w", err)
	}
	if c.Observability.MetricsEnabled && (c.Observability.MetricsPort <= 0 || c.Observability.MetricsPort > 65535) {
		return fmt.Errorf("invalid metrics port: %d", c.Observability.MetricsPort)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
		klog.InfoS("Invalid integer in environment, using default", "key", key, "value", os.Getenv(key), "default", defaultValue)
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
		klog.InfoS("Invalid float in environment, using default", "key", key, "value", os.Getenv(key), "default", defaultValue)
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
		klog.InfoS("Invalid boolean in environment, using default", "key", key, "value", os.Getenv(key), "default", defaultValue)
	}
	return defaultValue
}
