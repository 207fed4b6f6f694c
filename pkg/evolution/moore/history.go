package moore

import (
	"fmt"
	"math"
	"sort"

	"github.com/elevated-systems/evolution-tracker/pkg/evolution/types"
)

// AdherenceRecord compares one system against the prediction made from the
// earliest system in its dataset.
type AdherenceRecord struct {
	SystemName           string  `json:"system_name"`
	Year                 int     `json:"year"`
	ActualTransistors    float64 `json:"actual_transistors"`
	PredictedTransistors float64 `json:"predicted_transistors"`
	AccuracyPercent      float64 `json:"accuracy_percent"`
	YearsFromBase        int     `json:"years_from_base"`
	ActualDoublingPeriod float64 `json:"actual_doubling_period"`
	Status               string  `json:"status"` // "ahead", "behind" or "on_track"
}

// EraTrend summarizes doubling behavior within one fixed-length era.
type EraTrend struct {
	EraStart            int     `json:"era_start"`
	EraEnd              int     `json:"era_end"`
	Label               string  `json:"era_label"`
	SystemCount         int     `json:"system_count"`
	DoublingPeriod      float64 `json:"doubling_period"`
	AnnualGrowthPercent float64 `json:"annual_growth_rate_percent"`
	Adherence           string  `json:"moores_law_adherence"` // "strong", "moderate" or "weak"
	StartTransistors    float64 `json:"start_transistors"`
	EndTransistors      float64 `json:"end_transistors"`
}

// ActualComparison contrasts a prediction with the best real system shipped
// in the prediction year.
type ActualComparison struct {
	PredictionYear       int     `json:"prediction_year"`
	BaseSystem           string  `json:"base_system"`
	BaseYear             int     `json:"base_year"`
	BaseTransistors      float64 `json:"base_transistors"`
	TargetSystem         string  `json:"target_system"`
	ActualTransistors    float64 `json:"actual_transistors"`
	PredictedTransistors float64 `json:"predicted_transistors"`
	AccuracyPercent      float64 `json:"accuracy_percent"`
	YearsPredicted       int     `json:"years_predicted"`
}

// Accuracy returns actual/predicted as a percentage. 100 is a perfect
// prediction; above 100 means reality outran the model.
func (p *Predictor) Accuracy(predicted, actual float64) float64 {
	if predicted <= 0 {
		return 0.0
	}
	return actual / predicted * 100
}

// EffectiveDoublingPeriod computes the observed doubling period between two
// systems, or 0.0 when the inputs carry no signal (non-positive counts,
// shrinking counts, non-advancing years).
func (p *Predictor) EffectiveDoublingPeriod(start, end *types.HardwareSystem) float64 {
	years := end.Year - start.Year
	if years <= 0 || start.CPUTransistors <= 0 || end.CPUTransistors <= 0 {
		return 0.0
	}
	factor := end.CPUTransistors / start.CPUTransistors
	if factor <= 1 {
		return 0.0
	}
	return float64(years) / math.Log2(factor)
}

// HistoricalAdherence measures how well each system tracked the prediction
// anchored at the earliest system. Fewer than two systems yields nil.
func (p *Predictor) HistoricalAdherence(systems []types.HardwareSystem) []AdherenceRecord {
	if len(systems) < 2 {
		return nil
	}
	ordered := sortedByYear(systems)
	base := ordered[0]
	basePoint := BaseFromSystem(&base)

	records := make([]AdherenceRecord, 0, len(ordered)-1)
	for i := 1; i < len(ordered); i++ {
		sys := ordered[i]
		pred := p.PredictAt(basePoint, sys.Year)
		accuracy := p.Accuracy(pred.PredictedTransistors, sys.CPUTransistors)

		status := "on_track"
		if accuracy > 105 {
			status = "ahead"
		} else if accuracy < 95 {
			status = "behind"
		}

		records = append(records, AdherenceRecord{
			SystemName:           sys.Name,
			Year:                 sys.Year,
			ActualTransistors:    sys.CPUTransistors,
			PredictedTransistors: pred.PredictedTransistors,
			AccuracyPercent:      accuracy,
			YearsFromBase:        sys.Year - base.Year,
			ActualDoublingPeriod: p.EffectiveDoublingPeriod(&base, &sys),
			Status:               status,
		})
	}
	return records
}

// EraTrends splits the systems into fixed-length eras and summarizes
// doubling behavior in each era with at least two systems.
func (p *Predictor) EraTrends(systems []types.HardwareSystem, eraLength int) []EraTrend {
	if len(systems) < 2 || eraLength <= 0 {
		return nil
	}
	ordered := sortedByYear(systems)
	startYear := ordered[0].Year
	endYear := ordered[len(ordered)-1].Year

	var trends []EraTrend
	for eraStart := startYear; eraStart < endYear; eraStart += eraLength {
		eraEnd := eraStart + eraLength
		var era []types.HardwareSystem
		for _, sys := range ordered {
			if sys.Year >= eraStart && sys.Year < eraEnd {
				era = append(era, sys)
			}
		}
		if len(era) < 2 {
			continue
		}

		first, last := era[0], era[len(era)-1]
		period := p.EffectiveDoublingPeriod(&first, &last)

		adherence := "weak"
		if period >= 1.5 && period <= 2.5 {
			adherence = "strong"
		} else if period >= 1.0 && period <= 3.5 {
			adherence = "moderate"
		}

		trends = append(trends, EraTrend{
			EraStart:            eraStart,
			EraEnd:              eraEnd,
			Label:               fmt.Sprintf("%d-%d", eraStart, eraEnd),
			SystemCount:         len(era),
			DoublingPeriod:      period,
			AnnualGrowthPercent: p.growth.CAGR(first.CPUTransistors, last.CPUTransistors, last.Year-first.Year),
			Adherence:           adherence,
			StartTransistors:    first.CPUTransistors,
			EndTransistors:      last.CPUTransistors,
		})
	}
	return trends
}

// CompareToActual contrasts the model's prediction with the most advanced
// system actually shipped in predictionYear. The base is preferably a
// system at least five years older; ok is false when the dataset has no
// usable base or target.
func (p *Predictor) CompareToActual(systems []types.HardwareSystem, predictionYear int) (ActualComparison, bool) {
	ordered := sortedByYear(systems)

	var past, targets []types.HardwareSystem
	for _, sys := range ordered {
		switch {
		case sys.Year < predictionYear:
			past = append(past, sys)
		case sys.Year == predictionYear:
			targets = append(targets, sys)
		}
	}
	if len(past) == 0 || len(targets) == 0 {
		return ActualComparison{}, false
	}

	base := past[0]
	for i := len(past) - 1; i >= 0; i-- {
		if predictionYear-past[i].Year >= 5 {
			base = past[i]
			break
		}
	}

	target := targets[0]
	for _, sys := range targets[1:] {
		if sys.CPUTransistors > target.CPUTransistors {
			target = sys
		}
	}

	pred := p.PredictAt(BaseFromSystem(&base), predictionYear)
	return ActualComparison{
		PredictionYear:       predictionYear,
		BaseSystem:           base.Name,
		BaseYear:             base.Year,
		BaseTransistors:      base.CPUTransistors,
		TargetSystem:         target.Name,
		ActualTransistors:    target.CPUTransistors,
		PredictedTransistors: pred.PredictedTransistors,
		AccuracyPercent:      p.Accuracy(pred.PredictedTransistors, target.CPUTransistors),
		YearsPredicted:       predictionYear - base.Year,
	}, true
}

func sortedByYear(systems []types.HardwareSystem) []types.HardwareSystem {
	ordered := make([]types.HardwareSystem, len(systems))
	copy(ordered, systems)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Year < ordered[j].Year })
	return ordered
}
