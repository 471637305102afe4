package services

import (
	"testing"

	"github.com/smart-evolve/grading-service/internal/models"
)

func TestApplyEvaluationMode(t *testing.T) {
	tests := []struct {
		name     string
		original float64
		max      float64
		mode     models.EvaluationMode
		want     float64
	}{
		{"moderate passes through", 42, 50, models.ModeModerate, 42},
		{"zero max passes through", 42, 0, models.ModeLenient, 42},

		{"lenient boosts weak script", 15, 50, models.ModeLenient, 20}, // 30% < 35%
		{"lenient boost capped at max", 2, 6, models.ModeLenient, 6},   // 33%, +5 would exceed 6
		{"lenient leaves strong script alone", 40, 50, models.ModeLenient, 40},
		{"lenient boundary not boosted", 17.5, 50, models.ModeLenient, 17.5}, // exactly 35%

		{"strict trims inflated script", 45, 50, models.ModeStrict, 40}, // 90% > 80%
		{"strict floor at zero", 3, 3, models.ModeStrict, 0},            // 100%, -5 would go negative
		{"strict leaves average script alone", 30, 50, models.ModeStrict, 30},
		{"strict boundary not trimmed", 40, 50, models.ModeStrict, 40}, // exactly 80%

		{"result rounded to one decimal", 14.14, 50, models.ModeModerate, 14.1},
		{"lenient boost rounds", 14.16, 50, models.ModeLenient, 19.2}, // 28.3% -> +5
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyEvaluationMode(tt.original, tt.max, tt.mode)
			if got != tt.want {
				t.Errorf("ApplyEvaluationMode(%v, %v, %s) = %v, want %v",
					tt.original, tt.max, tt.mode, got, tt.want)
			}
		})
	}
}

func TestRound1(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{1.24, 1.2},
		{1.25, 1.3},
		{99.99, 100},
		{-1.25, -1.3}, // math.Round halves go away from zero
	}
	for _, tt := range tests {
		if got := round1(tt.in); got != tt.want {
			t.Errorf("round1(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
