package moore

import (
	"fmt"
)

// Confidence grades how much a prediction should be trusted. Ordering is
// meaningful: High > Medium > Low > VeryLow.
type Confidence int

const (
	ConfidenceVeryLow Confidence = iota
	ConfidenceLow
	ConfidenceMedium
	ConfidenceHigh
)

// String returns the wire form used in reports and config files.
func (c Confidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "high"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceLow:
		return "low"
	default:
		return "very_low"
	}
}

// MarshalJSON encodes the confidence as its string form.
func (c Confidence) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

// ParseConfidence converts the wire form back to a Confidence.
func ParseConfidence(s string) (Confidence, error) {
	switch s {
	case "high":
		return ConfidenceHigh, nil
	case "medium":
		return ConfidenceMedium, nil
	case "low":
		return ConfidenceLow, nil
	case "very_low":
		return ConfidenceVeryLow, nil
	default:
		return ConfidenceVeryLow, fmt.Errorf("unknown confidence level: %q", s)
	}
}

// Regime describes doubling behavior for all years at or after FromYear,
// until the next regime takes over. The first regime also covers earlier
// years.
type Regime struct {
	FromYear       int     `yaml:"fromYear"`
	DoublingPeriod float64 `yaml:"doublingPeriod"`
	Confidence     string  `yaml:"confidence"`
}

// Config holds predictor calibration. Transistor scaling has been slowing
// for two decades; the regime table encodes that slowdown instead of a
// single doubling period applied forever.
type Config struct {
	// ProcessShrinkRatio scales process-node shrink relative to transistor
	// doubling. 0.5 means the node halves at half the doubling rate.
	ProcessShrinkRatio float64 `yaml:"processShrinkRatio"`

	// MinProcessNM is the atomic-scale floor for process predictions.
	MinProcessNM float64 `yaml:"minProcessNM"`

	// MaxTransistors is the practical ceiling for transistor predictions.
	MaxTransistors float64 `yaml:"maxTransistors"`

	// Regimes must be ordered ascending by FromYear.
	Regimes []Regime `yaml:"regimes"`
}

// DefaultConfig returns the calibration observed in historical data.
func DefaultConfig() Config {
	return Config{
		ProcessShrinkRatio: 0.5,
		MinProcessNM:       0.5,
		MaxTransistors:     1e15,
		Regimes: []Regime{
			{FromYear: 0, DoublingPeriod: 2.0, Confidence: "high"},
			{FromYear: 2020, DoublingPeriod: 2.5, Confidence: "high"},
			{FromYear: 2025, DoublingPeriod: 3.0, Confidence: "medium"},
			{FromYear: 2030, DoublingPeriod: 4.0, Confidence: "medium"},
			{FromYear: 2035, DoublingPeriod: 5.0, Confidence: "low"},
			{FromYear: 2045, DoublingPeriod: 5.0, Confidence: "very_low"},
		},
	}
}

// Validate checks calibration invariants.
func (c *Config) Validate() error {
	if c.ProcessShrinkRatio <= 0 {
		return fmt.Errorf("process shrink ratio must be positive, got %v", c.ProcessShrinkRatio)
	}
	if c.MinProcessNM <= 0 {
		return fmt.Errorf("minimum process node must be positive, got %v", c.MinProcessNM)
	}
	if c.MaxTransistors <= 0 {
		return fmt.Errorf("maximum transistor count must be positive, got %v", c.MaxTransistors)
	}
	if len(c.Regimes) == 0 {
		return fmt.Errorf("at least one doubling regime is required")
	}
	prev := c.Regimes[0].FromYear - 1
	for i, r := range c.Regimes {
		if r.FromYear <= prev && i > 0 {
			return fmt.Errorf("regime %d: fromYear %d not ascending", i, r.FromYear)
		}
		if r.DoublingPeriod <= 0 {
			return fmt.Errorf("regime %d: doubling period must be positive, got %v", i, r.DoublingPeriod)
		}
		if _, err := ParseConfidence(r.Confidence); err != nil {
			return fmt.Errorf("regime %d: %v", i, err)
		}
		prev = r.FromYear
	}
	return nil
}
