package cloudcost

import (
	"fmt"
)

// Calibration defaults. Both are approximations asserted by the source
// datasets' own audit, not externally cited constants; override them
// through Config rather than editing here, and document the source of any
// change.
const (
	// DefaultUtilizationFactor derates peak advertised FLOPS to observed
	// sustained throughput.
	DefaultUtilizationFactor = 0.5

	// DefaultFLOPsPerParamToken is the 6*N*D compute-approximation
	// multiplier for transformer training.
	DefaultFLOPsPerParamToken = 6.0
)

// Config holds cost-model calibration.
type Config struct {
	// UtilizationFactor scales peak TFLOPS down to sustained throughput.
	UtilizationFactor float64 `yaml:"utilizationFactor"`

	// FLOPsPerParamToken is the multiplier in total_flops = k * N * D.
	FLOPsPerParamToken float64 `yaml:"flopsPerParamToken"`

	// GPUPreferenceOrder ranks GPU generations for training instance
	// selection, newest first. Matching is substring match on gpu_model.
	GPUPreferenceOrder []string `yaml:"gpuPreferenceOrder"`
}

// DefaultConfig returns the default cost-model calibration.
func DefaultConfig() Config {
	return Config{
		UtilizationFactor:  DefaultUtilizationFactor,
		FLOPsPerParamToken: DefaultFLOPsPerParamToken,
		GPUPreferenceOrder: []string{"H100", "A100", "V100"},
	}
}

// Validate checks calibration invariants.
func (c *Config) Validate() error {
	if c.UtilizationFactor <= 0 || c.UtilizationFactor > 1 {
		return fmt.Errorf("utilization factor must be in (0, 1], got %v", c.UtilizationFactor)
	}
	if c.FLOPsPerParamToken <= 0 {
		return fmt.Errorf("FLOPs multiplier must be positive, got %v", c.FLOPsPerParamToken)
	}
	return nil
}
