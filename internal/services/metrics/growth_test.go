package metrics

import (
	"math"
	"testing"

	"github.com/ternarybob/finsight/internal/models"
)

func TestSustainableGrowthRate(t *testing.T) {
	result := SustainableGrowthRate(0.20, 0.25)
	if math.Abs(result.Value-15) > 0.001 {
		t.Errorf("SustainableGrowthRate() = %v, want 15", result.Value)
	}
	if result.Interpretation != "Moderate sustainable growth (15.0%)" {
		t.Errorf("SustainableGrowthRate() interpretation = %q", result.Interpretation)
	}

	overpaying := SustainableGrowthRate(0.20, 1.2)
	if !hasFlag(overpaying, models.SeverityCritical, "Negative sustainable growth rate") {
		t.Errorf("expected critical flag, got %v", overpaying.Flags)
	}
	if !hasFlag(overpaying, models.SeverityWarning, "Payout ratio >100%") {
		t.Errorf("expected payout warning, got %v", overpaying.Flags)
	}
}

func TestAnalyzeTrend(t *testing.T) {
	tests := []struct {
		name      string
		values    []float64
		wantTrend Trend
		wantRates int
	}{
		{"too few points", []float64{1, 2}, TrendInsufficientData, 0},
		{"zero bases", []float64{0, 0, 0, 5}, TrendInsufficientData, 0},
		{"steady growth", []float64{100, 110, 121, 133.1}, TrendUp, 3},
		{"accelerating", []float64{100, 105, 115.5, 144.375}, TrendStrongUp, 3},
		{"rising but decelerating", []float64{100, 120, 132, 138.6}, TrendUp, 3},
		{"growth turning negative", []float64{100, 130, 169, 160}, TrendStrongDown, 3},
		{"alternating", []float64{100, 110, 100, 110, 100}, TrendStable, 4},
		{"steady decline", []float64{100, 90, 81, 72.9}, TrendDown, 3},
		{"volatile", []float64{100, 200, 100, 300}, TrendVolatile, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := AnalyzeTrend(tt.values, "Revenue")
			if got := Trend(result.Label(LabelTrend)); got != tt.wantTrend {
				t.Errorf("AnalyzeTrend() trend = %q, want %q", got, tt.wantTrend)
			}
			if len(result.Series) != tt.wantRates {
				t.Errorf("AnalyzeTrend() rates = %v, want %d", result.Series, tt.wantRates)
			}
		})
	}
}

func TestAnalyzeTrendFlags(t *testing.T) {
	short := AnalyzeTrend([]float64{1, 2}, "Revenue")
	if short.Value != 0 || !hasFlag(short, models.SeverityInfo, "Need at least 3 data points") {
		t.Errorf("AnalyzeTrend() short = %v %v", short.Value, short.Flags)
	}

	slowing := AnalyzeTrend([]float64{100, 120, 132, 138.6}, "Revenue")
	if slowing.Interpretation != "Revenue: Growing, decelerating" {
		t.Errorf("AnalyzeTrend() interpretation = %q", slowing.Interpretation)
	}
	if !hasFlag(slowing, models.SeverityWarning, "Growth deceleration") {
		t.Errorf("expected deceleration warning, got %v", slowing.Flags)
	}

	down := AnalyzeTrend([]float64{100, 130, 169, 160}, "Revenue")
	if down.Interpretation != "Revenue: Decelerating sharply" {
		t.Errorf("AnalyzeTrend() interpretation = %q", down.Interpretation)
	}
	if !hasFlag(down, models.SeverityWarning, "Growth deceleration") {
		t.Errorf("expected deceleration warning, got %v", down.Flags)
	}

	steady := AnalyzeTrend([]float64{100, 110, 121, 133.1}, "Earnings")
	if math.Abs(steady.Value-10) > 0.01 {
		t.Errorf("AnalyzeTrend() value = %v, want ~10", steady.Value)
	}
	if steady.Interpretation != "Earnings: Steady growth" {
		t.Errorf("AnalyzeTrend() interpretation = %q", steady.Interpretation)
	}
}

func TestAnalyzeTrendFollowsDirection(t *testing.T) {
	rising := [][]float64{
		{100, 110, 121, 133.1},
		{100, 101, 102, 103},
		{100, 120, 132, 138.6},
		{100, 105, 115.5, 144.375},
		{50, 55, 61, 68, 76},
		{10, 11, 12, 13, 14, 15},
	}
	for _, s := range rising {
		r := AnalyzeTrend(s, "x")
		got := Trend(r.Label(LabelTrend))
		if got != TrendUp && got != TrendStrongUp {
			t.Errorf("AnalyzeTrend(%v) = %q, want up or strong_up", s, got)
		}
	}

	falling := [][]float64{
		{100, 90, 81, 72.9},
		{100, 95, 85.5, 72.675},
		{100, 99, 98, 97},
	}
	for _, s := range falling {
		r := AnalyzeTrend(s, "x")
		got := Trend(r.Label(LabelTrend))
		if got != TrendDown && got != TrendStrongDown {
			t.Errorf("AnalyzeTrend(%v) = %q, want down or strong_down", s, got)
		}
	}
}

// Any finite series yields one of the known classes.
func TestAnalyzeTrendTotal(t *testing.T) {
	known := map[Trend]bool{
		TrendStrongUp: true, TrendUp: true, TrendStable: true, TrendDown: true,
		TrendStrongDown: true, TrendVolatile: true, TrendInsufficientData: true,
	}
	series := [][]float64{
		{}, {1}, {-5, -3, -1, 1}, {1, -1, 1, -1, 1}, {1e12, 1e12, 1e12}, {0, 1, 0, 1},
	}
	for _, s := range series {
		result := AnalyzeTrend(s, "x")
		if !known[Trend(result.Label(LabelTrend))] {
			t.Errorf("AnalyzeTrend(%v) trend = %q", s, result.Label(LabelTrend))
		}
		if math.IsNaN(result.Value) {
			t.Errorf("AnalyzeTrend(%v) value is NaN", s)
		}
	}
}

func TestGrowthAnalysis(t *testing.T) {
	revenues := []float64{100, 110, 121, 133.1, 146.41, 161.051}

	result := GrowthAnalysis(revenues, []float64{1, 2}, nil)

	if got, ok := result.Components["revenue_cagr_5yr"]; !ok || math.Abs(got-10) > 0.01 {
		t.Errorf("revenue_cagr_5yr = %v (%v), want 10", got, ok)
	}
	if _, ok := result.Components["revenue_cagr_10yr"]; ok {
		t.Errorf("revenue_cagr_10yr should be absent with six periods")
	}
	if result.DataQuality != 0.25 {
		t.Errorf("DataQuality = %v, want 0.25", result.DataQuality)
	}
	if got := result.Label("revenue_trend"); got != TrajectorySteady {
		t.Errorf("revenue_trend = %q, want steady", got)
	}
	if got := result.Label("eps_trend"); got != string(TrendInsufficientData) {
		t.Errorf("eps_trend = %q, want insufficient_data", got)
	}
	if len(result.Series) != 5 || math.Abs(result.Value-10) > 0.01 {
		t.Errorf("recent growth = %v (value %v)", result.Series, result.Value)
	}
}
