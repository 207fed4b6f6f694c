// Package moore extrapolates transistor counts and process nodes forward in
// time under a regime-dependent doubling model with hard physical caps.
//
// The predictor never fails: far-future targets degrade confidence and set
// limit flags instead of raising. A prediction tool that refuses to answer
// is less useful than one that answers with calibrated uncertainty.
package moore

import (
	"fmt"
	"math"

	"k8s.io/klog/v2"

	"github.com/elevated-systems/evolution-tracker/pkg/evolution/growth"
	"github.com/elevated-systems/evolution-tracker/pkg/evolution/types"
)

// BasePoint is the historical anchor a prediction extrapolates from.
type BasePoint struct {
	Name        string
	Year        int
	Transistors float64
	ProcessNM   float64
}

// BaseFromSystem builds a base point from a hardware record.
func BaseFromSystem(sys *types.HardwareSystem) BasePoint {
	return BasePoint{
		Name:        sys.Name,
		Year:        sys.Year,
		Transistors: sys.CPUTransistors,
		ProcessNM:   sys.CPUProcessNM,
	}
}

// MoorePrediction is an immutable extrapolation result. Regenerate it,
// never mutate it.
type MoorePrediction struct {
	Year                 int        `json:"year"`
	YearsFromBase        int        `json:"years_from_base"`
	PredictedTransistors float64    `json:"predicted_transistors"`
	PredictedProcessNM   float64    `json:"predicted_process_nm"`
	DoublingsFromBase    float64    `json:"doublings_from_base"`
	Confidence           Confidence `json:"confidence"`
	PhysicalLimitReached bool       `json:"physical_limit_reached"`
	TransistorCapReached bool       `json:"transistor_cap_reached"`
	Note                 string     `json:"note,omitempty"`
}

// Predictor extrapolates transistor density from historical base points.
type Predictor struct {
	cfg    Config
	growth *growth.Analyzer
	cache  *predictionCache
}

// New returns a predictor using the given calibration.
func New(cfg Config) (*Predictor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid predictor config: %w", err)
	}
	return &Predictor{
		cfg:    cfg,
		growth: growth.New(),
		cache:  newPredictionCache(),
	}, nil
}

// regimeFor returns the regime covering the given year.
func (p *Predictor) regimeFor(year int) Regime {
	active := p.cfg.Regimes[0]
	for _, r := range p.cfg.Regimes {
		if year >= r.FromYear {
			active = r
		}
	}
	return active
}

// DoublingPeriod returns the doubling period in years under the regime
// covering the given year.
func (p *Predictor) DoublingPeriod(year int) float64 {
	return p.regimeFor(year).DoublingPeriod
}

// ConfidenceFor grades a target year. Confidence depends only on the target
// year, never on whether a cap bound during the walk.
func (p *Predictor) ConfidenceFor(targetYear int) Confidence {
	c, err := ParseConfidence(p.regimeFor(targetYear).Confidence)
	if err != nil {
		// Validate() rejects unknown levels; unreachable after New().
		return ConfidenceVeryLow
	}
	return c
}

// PredictAt extrapolates from base to targetYear.
//
// The walk advances one year at a time, accumulating fractional doublings
// under the regime of the walked year; a later regime is never applied
// retroactively to already-elapsed years. Caps are sticky: once a quantity
// hits its limit it stops moving for all later steps.
func (p *Predictor) PredictAt(base BasePoint, targetYear int) MoorePrediction {
	key := cacheKey(base, targetYear)
	if cached, ok := p.cache.get(key); ok {
		return cached
	}

	pred := MoorePrediction{
		Year:          targetYear,
		YearsFromBase: targetYear - base.Year,
		Confidence:    p.ConfidenceFor(targetYear),
	}

	transistors := base.Transistors
	processNM := base.ProcessNM
	doublings := 0.0

	for year := base.Year; year < targetYear; year++ {
		period := p.DoublingPeriod(year)

		if !pred.TransistorCapReached && transistors > 0 {
			transistors *= math.Pow(2, 1/period)
			doublings += 1 / period
			if transistors >= p.cfg.MaxTransistors {
				transistors = p.cfg.MaxTransistors
				pred.TransistorCapReached = true
			}
		}

		if !pred.PhysicalLimitReached && processNM > 0 {
			processNM /= math.Pow(2, p.cfg.ProcessShrinkRatio/period)
			if processNM <= p.cfg.MinProcessNM {
				processNM = p.cfg.MinProcessNM
				pred.PhysicalLimitReached = true
			}
		}
	}

	pred.PredictedTransistors = transistors
	pred.PredictedProcessNM = processNM
	pred.DoublingsFromBase = doublings
	pred.Note = p.predictionNote(pred)

	p.cache.put(key, pred)
	klog.V(2).InfoS("Computed prediction", "base", base.Name, "baseYear", base.Year,
		"targetYear", targetYear, "confidence", pred.Confidence.String())
	return pred
}

// PredictRange produces year-by-year predictions for yearsAhead years past
// the base year.
func (p *Predictor) PredictRange(base BasePoint, yearsAhead int) []MoorePrediction {
	if yearsAhead <= 0 {
		return nil
	}
	predictions := make([]MoorePrediction, 0, yearsAhead)
	for offset := 1; offset <= yearsAhead; offset++ {
		predictions = append(predictions, p.PredictAt(base, base.Year+offset))
	}
	return predictions
}

// predictionNote picks the explanation by priority: physical limit, then
// transistor cap, then regime-appropriate uncertainty.
func (p *Predictor) predictionNote(pred MoorePrediction) string {
	switch {
	case pred.PhysicalLimitReached:
		return "Physical limit: process node cannot go smaller (atomic scale)"
	case pred.TransistorCapReached:
		return "Practical limit: transistor count capped at realistic maximum"
	}
	switch pred.Confidence {
	case ConfidenceVeryLow:
		return "Highly speculative: requires breakthrough technologies"
	case ConfidenceLow:
		return "Speculative: assumes continued scaling beyond its expected end"
	case ConfidenceMedium:
		return "Uncertain: transistor scaling expected to slow significantly"
	default:
		return ""
	}
}

// CacheStats reports prediction cache hits and misses.
func (p *Predictor) CacheStats() (hits, misses int64) {
	return p.cache.stats()
}
