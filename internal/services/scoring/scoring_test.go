package scoring

import (
	"testing"

	"github.com/ternarybob/finsight/internal/models"
)

func result(value float64, flags ...models.Flag) *models.MetricResult {
	r := models.NewMetricResult()
	r.Value = value
	r.Flags = flags
	return &r
}

func TestAggregateFlags(t *testing.T) {
	a := models.NewComprehensiveAnalysis()
	a.Piotroski = result(9, models.Positive("Strong fundamentals: F-Score 9/9"))
	a.AltmanZ = result(1.2, models.Critical("DISTRESS: High probability of bankruptcy"), models.Warning("Operating losses (negative EBIT)"))
	a.CreditRisk = result(0, models.Critical("HIGH CREDIT RISK: Multiple solvency/liquidity warnings"))
	a.RevenueTrend = result(0, models.Info("Need at least 3 data points"))
	// Not a flag source.
	a.Valuation = result(0, models.Critical("should not be collected"))

	red, green := AggregateFlags(a)

	if len(red) != 2 {
		t.Fatalf("AggregateFlags() red = %v, want 2", red)
	}
	if red[0].Message != "DISTRESS: High probability of bankruptcy" || red[1].Message != "HIGH CREDIT RISK: Multiple solvency/liquidity warnings" {
		t.Errorf("AggregateFlags() red order = %v", red)
	}
	if len(green) != 1 || green[0].Severity != models.SeverityPositive {
		t.Errorf("AggregateFlags() green = %v", green)
	}
}

func TestAggregateFlagsEmpty(t *testing.T) {
	red, green := AggregateFlags(models.NewComprehensiveAnalysis())
	if red == nil || green == nil || len(red) != 0 || len(green) != 0 {
		t.Errorf("AggregateFlags() empty = %v %v, want empty non-nil", red, green)
	}
	red, green = AggregateFlags(nil)
	if len(red) != 0 || len(green) != 0 {
		t.Errorf("AggregateFlags(nil) = %v %v", red, green)
	}
}

func TestQualityScore(t *testing.T) {
	tests := []struct {
		name  string
		setup func(a *models.ComprehensiveAnalysis)
		want  float64
	}{
		{"empty", func(a *models.ComprehensiveAnalysis) {}, 50},
		{"perfect piotroski", func(a *models.ComprehensiveAnalysis) { a.Piotroski = result(9) }, 57.5},
		{"zero piotroski", func(a *models.ComprehensiveAnalysis) { a.Piotroski = result(0) }, 42.5},
		{"altman safe", func(a *models.ComprehensiveAnalysis) { a.AltmanZ = result(3.5) }, 60},
		{"altman grey high", func(a *models.ComprehensiveAnalysis) { a.AltmanZ = result(2.5) }, 55},
		{"altman neutral band", func(a *models.ComprehensiveAnalysis) { a.AltmanZ = result(1.9) }, 50},
		{"altman distress", func(a *models.ComprehensiveAnalysis) { a.AltmanZ = result(1.0) }, 40},
		{"beneish clean", func(a *models.ComprehensiveAnalysis) { a.BeneishM = result(-2.5) }, 60},
		{"beneish manipulator", func(a *models.ComprehensiveAnalysis) { a.BeneishM = result(-1.0) }, 35},
		{"fcf excellent", func(a *models.ComprehensiveAnalysis) { a.FCFConversion = result(120) }, 65},
		{"fcf healthy", func(a *models.ComprehensiveAnalysis) { a.FCFConversion = result(85) }, 60},
		{"fcf middling", func(a *models.ComprehensiveAnalysis) { a.FCFConversion = result(60) }, 50},
		{"fcf poor", func(a *models.ComprehensiveAnalysis) { a.FCFConversion = result(20) }, 40},
		{"best case", func(a *models.ComprehensiveAnalysis) {
			a.Piotroski = result(9)
			a.AltmanZ = result(5)
			a.BeneishM = result(-3)
			a.FCFConversion = result(150)
		}, 92.5},
		{"worst case", func(a *models.ComprehensiveAnalysis) {
			a.Piotroski = result(0)
			a.AltmanZ = result(0)
			a.BeneishM = result(0)
			a.FCFConversion = result(0)
		}, 7.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := models.NewComprehensiveAnalysis()
			tt.setup(a)
			if got := QualityScore(a); got != tt.want {
				t.Errorf("QualityScore() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQualityScoreBounds(t *testing.T) {
	for _, p := range []float64{-100, 0, 4.5, 9, 100} {
		a := models.NewComprehensiveAnalysis()
		a.Piotroski = result(p)
		got := QualityScore(a)
		if got < 0 || got > 100 {
			t.Errorf("QualityScore(piotroski=%v) = %v, out of range", p, got)
		}
	}
}
