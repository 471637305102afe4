package services

import (
	"math"

	"github.com/smart-evolve/grading-service/internal/models"
)

// Mode adjustment window. Lenient boosts weak scripts a little, Strict
// trims inflated ones; Moderate passes the model's score through.
const (
	lenientBoostMarks    = 5.0
	lenientCutoffPercent = 35.0
	strictCutMarks       = 5.0
	strictCutoffPercent  = 80.0
)

// ApplyEvaluationMode converts the model's raw score into the final
// mode-adjusted score:
//
//   - Lenient: scripts under 35% get +5 marks, capped at the maximum;
//   - Strict: scripts over 80% lose 5 marks, floored at zero;
//   - Moderate (and anything else): unchanged.
//
// A zero maximum means the analytics block was missing and the score is
// passed through untouched.
func ApplyEvaluationMode(original, max float64, mode models.EvaluationMode) float64 {
	if max == 0 {
		return round1(original)
	}

	adjusted := original
	percentage := original / max * 100

	switch mode {
	case models.ModeLenient:
		if percentage < lenientCutoffPercent {
			adjusted = math.Min(original+lenientBoostMarks, max)
		}
	case models.ModeStrict:
		if percentage > strictCutoffPercent {
			adjusted = math.Max(original-strictCutMarks, 0)
		}
	}

	return round1(adjusted)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
