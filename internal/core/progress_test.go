package core

import (
	"math"
	"testing"
	"time"
)

func TestProgress(t *testing.T) {
	tests := []struct {
		name          string
		position      time.Duration
		duration      time.Duration
		expectedPct   float64
		expectedLabel time.Duration
		expectedStep  float64
	}{
		{
			name:          "Halfway through a preview",
			position:      15 * time.Second,
			duration:      30 * time.Second,
			expectedPct:   50,
			expectedLabel: 15 * time.Second,
			expectedStep:  100.0 / 30,
		},
		{
			name:          "Overshoot is clamped to the duration",
			position:      31 * time.Second,
			duration:      30 * time.Second,
			expectedPct:   100,
			expectedLabel: 30 * time.Second,
			expectedStep:  100.0 / 30,
		},
		{
			name:          "Negative position shows zero",
			position:      -time.Second,
			duration:      time.Minute,
			expectedPct:   0,
			expectedLabel: 0,
			expectedStep:  100.0 / 60,
		},
		{
			name:          "Unknown duration",
			position:      5 * time.Second,
			duration:      0,
			expectedPct:   0,
			expectedLabel: 5 * time.Second,
			expectedStep:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := Progress(tt.position, tt.duration)
			if math.Abs(view.Percent-tt.expectedPct) > 1e-9 {
				t.Errorf("Percent = %v, expected %v", view.Percent, tt.expectedPct)
			}
			if view.Label != tt.expectedLabel {
				t.Errorf("Label = %v, expected %v", view.Label, tt.expectedLabel)
			}
			if math.Abs(view.StepPerSecond-tt.expectedStep) > 1e-9 {
				t.Errorf("StepPerSecond = %v, expected %v", view.StepPerSecond, tt.expectedStep)
			}
			if view.Total != tt.duration {
				t.Errorf("Total = %v, expected %v", view.Total, tt.duration)
			}
		})
	}
}

func TestSeekTarget(t *testing.T) {
	tests := []struct {
		percent  float64
		duration time.Duration
		expected time.Duration
	}{
		{percent: 50, duration: 30 * time.Second, expected: 15 * time.Second},
		{percent: -10, duration: 30 * time.Second, expected: 0},
		{percent: 150, duration: 30 * time.Second, expected: 30 * time.Second},
		{percent: 25, duration: 0, expected: 0},
	}

	for _, tt := range tests {
		if got := SeekTarget(tt.percent, tt.duration); got != tt.expected {
			t.Errorf("SeekTarget(%v, %v) = %v, expected %v", tt.percent, tt.duration, got, tt.expected)
		}
	}
}
