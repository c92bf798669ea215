package models_test

import (
	"testing"

	"github.com/site-generator-api/internal/models"
)

func TestNextVersionNumber(t *testing.T) {
	cases := []struct {
		name   string
		parent float64
		major  bool
		want   float64
	}{
		{"minor from initial", 1.0, false, 1.1},
		{"minor chain", 1.1, false, 1.2},
		{"minor deep", 2.4, false, 2.5},
		{"major from initial", 1.0, true, 2.0},
		{"major discards fraction", 1.2, true, 2.0},
		{"major from whole", 2.0, true, 3.0},
		{"major deep fraction", 3.7, true, 4.0},
		// Ten minor edits from x.0 land on x.9; the next minor edit reaches
		// (x+1).0 and is indistinguishable from a major jump. Reproduced
		// deliberately.
		{"minor rollover collides with major", 1.9, false, 2.0},
		{"minor rollover deep", 4.9, false, 5.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := models.NextVersionNumber(tc.parent, tc.major)
			if got != tc.want {
				t.Errorf("NextVersionNumber(%v, %v) = %v, want %v", tc.parent, tc.major, got, tc.want)
			}
		})
	}
}

func TestNextVersionNumber_LongMinorChainStaysExact(t *testing.T) {
	// Float drift over repeated +0.1 steps would break equality checks
	// against the expected one-decimal values; the rounding keeps each step
	// exact.
	v := models.InitialVersionNumber
	expected := []float64{1.1, 1.2, 1.3, 1.4, 1.5, 1.6, 1.7, 1.8, 1.9, 2.0, 2.1}
	for i, want := range expected {
		v = models.NextVersionNumber(v, false)
		if v != want {
			t.Fatalf("Step %d: got %v, want %v", i+1, v, want)
		}
	}
}
