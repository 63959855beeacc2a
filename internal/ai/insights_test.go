package ai

import (
	"math"
	"testing"
)

func TestScaleProbability(t *testing.T) {
	cases := []struct {
		in   float64
		want int
	}{
		{0, 0},
		{0.73, 73},
		{0.005, 1},
		{0.004, 0},
		{1, 100},
		{1.5, 100},
		{-0.2, 0},
		{math.NaN(), 0},
	}
	for _, tc := range cases {
		if got := ScaleProbability(tc.in); got != tc.want {
			t.Fatalf("ScaleProbability(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestRiskFor_Thresholds(t *testing.T) {
	cases := []struct {
		p    int
		want Risk
	}{
		{100, RiskLow},
		{81, RiskLow},
		{80, RiskMedium},
		{60, RiskMedium},
		{59, RiskHigh},
		{0, RiskHigh},
	}
	for _, tc := range cases {
		if got := RiskFor(tc.p); got != tc.want {
			t.Fatalf("RiskFor(%d) = %q, want %q", tc.p, got, tc.want)
		}
	}
}
