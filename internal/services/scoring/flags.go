// Package scoring aggregates per-metric flags and derives the overall
// quality score for an analysis.
package scoring

import (
	"github.com/ternarybob/finsight/internal/models"
)

// FlagSources is the fixed slot order scanned by AggregateFlags.
var FlagSources = []models.MetricName{
	models.MetricPiotroski,
	models.MetricAltmanZ,
	models.MetricOhlsonO,
	models.MetricBeneishM,
	models.MetricSloanAccrual,
	models.MetricFCFConversion,
	models.MetricShareholderYield,
	models.MetricEVA,
	models.MetricOwnerEarnings,
	models.MetricDuPont,
	models.MetricSustainableGrowth,
	models.MetricMagicFormula,
	models.MetricCreditRisk,
	models.MetricRevenueTrend,
	models.MetricEarningsTrend,
}

// AggregateFlags collects critical flags as red and positive flags as green,
// in slot order. Warning and info flags stay on their metric.
func AggregateFlags(a *models.ComprehensiveAnalysis) (red, green []models.Flag) {
	red, green = []models.Flag{}, []models.Flag{}
	if a == nil {
		return red, green
	}
	for _, name := range FlagSources {
		r := a.Get(name)
		if r == nil {
			continue
		}
		for _, f := range r.Flags {
			switch f.Severity {
			case models.SeverityCritical:
				red = append(red, f)
			case models.SeverityPositive:
				green = append(green, f)
			}
		}
	}
	return red, green
}
