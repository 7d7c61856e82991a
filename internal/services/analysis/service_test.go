package analysis

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/finsight/internal/models"
	"github.com/ternarybob/finsight/internal/services/benchmark"
	"github.com/ternarybob/finsight/internal/services/fundamentals"
)

var fixedDate = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestService() *Service {
	s := NewService(arbor.NewLogger())
	s.now = func() time.Time { return fixedDate }
	return s
}

// acmeYear builds one annual statement set scaled by f.
func acmeYear(year int, f float64) (income, balance, cashFlow models.RawRecord) {
	fy := float64(year)
	income = models.RawRecord{
		"period": "annual", "fiscal_year": fy,
		"revenue": 1000 * f, "gross_profit": 400 * f, "ebit": 150 * f, "ebitda": 200 * f,
		"interest_expense": 10 * f, "income_before_tax": 140 * f, "income_tax_expense": 35 * f,
		"net_income": 105 * f, "eps": 1.05 * f, "weighted_average_shares_outstanding": 100.0,
		"selling_general_and_administrative_expenses": 120 * f, "depreciation": 50 * f,
	}
	balance = models.RawRecord{
		"period": "annual", "fiscal_year": fy,
		"cash_and_cash_equivalents": 100 * f, "accounts_receivable": 80 * f, "inventory": 50 * f,
		"total_current_assets": 300 * f, "property_plant_and_equipment_net": 400 * f,
		"total_assets": 1000 * f, "short_term_debt": 20 * f, "total_current_liabilities": 150 * f,
		"long_term_debt": 180 * f, "total_debt": 200 * f, "total_liabilities": 400 * f,
		"total_stockholders_equity": 600 * f, "retained_earnings": 300 * f,
	}
	cashFlow = models.RawRecord{
		"period": "annual", "fiscal_year": fy,
		"operating_cash_flow": 160 * f, "capital_expenditure": -40 * f, "free_cash_flow": 120 * f,
		"dividends_paid": -30 * f, "common_stock_repurchased": 20 * f, "debt_repayment": 10 * f,
	}
	return income, balance, cashFlow
}

func acmeInput() Input {
	in := Input{DatasetInput: fundamentals.DatasetInput{
		Ticker:       "ACME",
		Price:        models.RawRecord{"price": 20.0, "market_cap": 2000.0},
		CompanyFacts: models.RawRecord{"name": "Acme Corp", "sector": "Technology", "industry": "Software"},
	}}
	for i, f := range []float64{1.0, 0.9, 0.8} {
		income, balance, cashFlow := acmeYear(2024-i, f)
		in.IncomeStatements = append(in.IncomeStatements, income)
		in.BalanceSheets = append(in.BalanceSheets, balance)
		in.CashFlows = append(in.CashFlows, cashFlow)
	}
	return in
}

func TestAnalyzeComputesAllMetrics(t *testing.T) {
	result := newTestService().Analyze(context.Background(), acmeInput())

	require.NotNil(t, result)
	require.NotNil(t, result.Analysis)
	assert.True(t, strings.HasPrefix(result.RunID, "run_"))
	assert.Equal(t, "ACME", result.Ticker)
	assert.Equal(t, "Acme Corp", result.CompanyName)
	assert.Equal(t, fixedDate, result.AnalysisDate)
	assert.Empty(t, result.DataQualityNotes)
	assert.Empty(t, result.Analysis.Failures)

	for _, name := range []models.MetricName{
		models.MetricPiotroski, models.MetricAltmanZ, models.MetricOhlsonO, models.MetricBeneishM,
		models.MetricMagicFormula, models.MetricSloanAccrual, models.MetricGrossProfitability,
		models.MetricFCFConversion, models.MetricShareholderYield, models.MetricEVA,
		models.MetricOwnerEarnings, models.MetricDuPont, models.MetricSustainableGrowth,
		models.MetricCreditRisk, models.MetricRevenueTrend, models.MetricEarningsTrend,
		models.MetricROIC, models.MetricGraham, models.MetricValuation, models.MetricGrowth,
	} {
		assert.NotNil(t, result.Analysis.Get(name), "slot %s", name)
	}

	a := result.Analysis
	assert.InDelta(t, 12.5, a.SustainableGrowth.Value, 0.001)
	assert.InDelta(t, 42.5, a.EVA.Value, 0.001, "nopat 112.5 less 10% of 700")
	assert.GreaterOrEqual(t, a.QualityScore, 0.0)
	assert.LessOrEqual(t, a.QualityScore, 100.0)
	assert.Empty(t, a.Benchmarks, "no peers supplied")

	s := result.Summary
	assert.Equal(t, "Acme Corp", s.CompanyName)
	assert.Equal(t, 20.0, s.CurrentPrice)
	assert.Equal(t, 2000.0, s.MarketCap)
	assert.Equal(t, 3, s.DataPeriodsAnnual)
	assert.Equal(t, 0, s.DataPeriodsQuarterly)
	require.NotNil(t, s.CompositeScores.PiotroskiFScore)
	assert.Equal(t, a.Piotroski.Value, *s.CompositeScores.PiotroskiFScore)
	require.NotNil(t, s.CompositeScores.OhlsonOProbability)
	assert.Equal(t, a.QualityScore, s.QualityScore)
	assert.Equal(t, len(a.RedFlags), s.RedFlagCount)
	assert.Equal(t, len(a.GreenFlags), s.GreenFlagCount)
}

func TestAnalyzeUsesWACC(t *testing.T) {
	in := acmeInput()
	in.WACC = 0.20

	result := newTestService().Analyze(context.Background(), in)

	require.NotNil(t, result.Analysis.EVA)
	assert.InDelta(t, -27.5, result.Analysis.EVA.Value, 0.001)
	assert.Equal(t, "Negative EVA - returns below cost of capital", result.Analysis.EVA.Flags[0].Message)
}

func TestAnalyzeTrendsNeedThreeYears(t *testing.T) {
	in := acmeInput()
	in.IncomeStatements = in.IncomeStatements[:2]
	in.BalanceSheets = in.BalanceSheets[:2]
	in.CashFlows = in.CashFlows[:2]

	a := newTestService().Analyze(context.Background(), in).Analysis

	assert.Nil(t, a.RevenueTrend)
	assert.Nil(t, a.EarningsTrend)
	assert.NotNil(t, a.Growth)
	assert.NotNil(t, a.Piotroski)
}

func TestAnalyzeEmptyInput(t *testing.T) {
	result := newTestService().Analyze(context.Background(), Input{DatasetInput: fundamentals.DatasetInput{Ticker: "NONE"}})

	require.NotNil(t, result)
	assert.Equal(t, "NONE", result.CompanyName)
	assert.Equal(t, []string{
		"No income statements provided",
		"No balance sheets provided",
		"No cash flows provided",
	}, result.DataQualityNotes)

	a := result.Analysis
	require.NotNil(t, a)
	assert.Equal(t, 50.0, a.QualityScore)
	assert.Nil(t, a.Piotroski)
	assert.Nil(t, a.DuPont)
	assert.Empty(t, a.RedFlags)
	assert.Empty(t, a.GreenFlags)
	assert.Nil(t, result.Summary.CompositeScores.AltmanZScore)

	report := RenderReport(result)
	assert.NotContains(t, report, "## Composite Scores")
	assert.True(t, strings.HasSuffix(report, "## Overall Quality Score: 50.0/100"))
}

func TestAnalyzeWithPeers(t *testing.T) {
	in := acmeInput()
	in.Peers = benchmark.PeerSets{
		"software": {"gross_profitability": {10, 20, 30, 50}},
		"default":  {"roe": {5, 10}},
	}

	a := newTestService().Analyze(context.Background(), in).Analysis

	require.Contains(t, a.Benchmarks, "gross_profitability")
	assert.Equal(t, 75.0, a.Benchmarks["gross_profitability"].Percentile, "GP/assets 40% beats 3 of 4 peers")
	assert.NotContains(t, a.Benchmarks, "roe", "industry set replaces default")
}

func TestCompute(t *testing.T) {
	ok := compute(models.MetricDuPont, func() models.MetricResult {
		r := models.NewMetricResult()
		r.Value = 12
		return r
	})
	require.True(t, ok.OK())
	assert.Equal(t, 12.0, ok.Result.Value)

	panicked := compute(models.MetricDuPont, func() models.MetricResult {
		var values []float64
		_ = values[3]
		return models.NewMetricResult()
	})
	assert.False(t, panicked.OK())
	assert.Nil(t, panicked.Result)
	assert.True(t, errors.Is(panicked.Err, ErrPanicked))

	nan := compute(models.MetricEVA, func() models.MetricResult {
		r := models.NewMetricResult()
		r.Value = math.NaN()
		return r
	})
	assert.True(t, errors.Is(nan.Err, ErrNonFinite))

	inf := compute(models.MetricEVA, func() models.MetricResult {
		r := models.NewMetricResult()
		r.Components["ratio"] = math.Inf(1)
		return r
	})
	assert.True(t, errors.Is(inf.Err, ErrNonFinite))
	assert.Contains(t, inf.Err.Error(), "component ratio")
}

func TestInputValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      Input
		wantErr bool
	}{
		{"valid", Input{DatasetInput: fundamentals.DatasetInput{Ticker: "ACME"}, WACC: 0.08}, false},
		{"default wacc", Input{DatasetInput: fundamentals.DatasetInput{Ticker: "ACME"}}, false},
		{"missing ticker", Input{WACC: 0.1}, true},
		{"wacc above one", Input{DatasetInput: fundamentals.DatasetInput{Ticker: "ACME"}, WACC: 1.5}, true},
		{"negative wacc", Input{DatasetInput: fundamentals.DatasetInput{Ticker: "ACME"}, WACC: -0.1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	in := Input{}
	assert.Equal(t, DefaultWACC, in.wacc())
}
