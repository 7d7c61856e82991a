package analysis

import (
	"sort"

	"github.com/ternarybob/finsight/internal/models"
)

// BuildSummary derives the flat summary view from a completed result.
func BuildSummary(result *models.AnalysisResult) models.Summary {
	s := models.Summary{
		Ticker:      result.Ticker,
		CompanyName: result.CompanyName,
	}

	if ds := result.Dataset; ds != nil {
		s.CurrentPrice = ds.Price.CurrentPrice
		s.MarketCap = ds.Price.MarketCap
		s.DataPeriodsAnnual = len(ds.Annual)
		s.DataPeriodsQuarterly = len(ds.Quarterly)
	}

	a := result.Analysis
	if a == nil {
		s.QualityScore = models.NewComprehensiveAnalysis().QualityScore
		return s
	}

	s.CompositeScores = models.CompositeScores{
		PiotroskiFScore:    valueOf(a.Piotroski),
		AltmanZScore:       valueOf(a.AltmanZ),
		BeneishMScore:      valueOf(a.BeneishM),
		OhlsonOProbability: valueOf(a.OhlsonO),
	}
	s.QualityScore = a.QualityScore
	s.RedFlagCount = len(a.RedFlags)
	s.GreenFlagCount = len(a.GreenFlags)
	s.FailedMetricCount = len(a.Failures)
	return s
}

func valueOf(r *models.MetricResult) *float64 {
	if r == nil {
		return nil
	}
	v := r.Value
	return &v
}

func sortedFailures(failures map[models.MetricName]string) []models.MetricName {
	names := make([]models.MetricName, 0, len(failures))
	for name := range failures {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
