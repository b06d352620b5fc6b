package model

import "testing"

func TestScoreLabel(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{100, "excellent"},
		{90, "excellent"},
		{89, "good"},
		{75, "good"},
		{74, "fair"},
		{60, "fair"},
		{59, "poor"},
		{0, "poor"},
	}

	for _, tt := range tests {
		report := HealthReport{HealthScore: tt.score}
		if got := report.ScoreLabel(); got != tt.want {
			t.Errorf("ScoreLabel() for score %d = %s, want %s", tt.score, got, tt.want)
		}
	}
}
