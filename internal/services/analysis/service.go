// Package analysis runs the end-to-end pipeline for one company: raw provider
// records are normalized into a dataset, every metric is computed in
// isolation, and the results are aggregated, scored and rendered.
package analysis

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/finsight/internal/common"
	"github.com/ternarybob/finsight/internal/models"
	"github.com/ternarybob/finsight/internal/services/benchmark"
	"github.com/ternarybob/finsight/internal/services/fundamentals"
	"github.com/ternarybob/finsight/internal/services/metrics"
	"github.com/ternarybob/finsight/internal/services/scoring"
)

// Stage is a step of one analysis run.
type Stage string

const (
	StageExtracting  Stage = "extracting"
	StageComputing   Stage = "computing"
	StageAggregating Stage = "aggregating"
	StageDone        Stage = "done"
)

// Service runs analyses. It holds no per-run state and is safe for
// concurrent use.
type Service struct {
	logger arbor.ILogger
	now    func() time.Time
}

// NewService creates a new analysis service
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		logger: logger,
		now:    time.Now,
	}
}

// Analyze runs the full pipeline. Missing data never fails the run: metrics
// that cannot be computed are left absent and recorded as failures.
func (s *Service) Analyze(ctx context.Context, in Input) *models.AnalysisResult {
	runID := common.NewRunID()
	logger := s.logger.WithCorrelationId(runID)
	ticker := in.ticker()

	result := &models.AnalysisResult{
		RunID:            runID,
		Ticker:           ticker,
		CompanyName:      ticker,
		AnalysisDate:     s.now(),
		DataQualityNotes: []string{},
	}

	logger.Info().Str("ticker", ticker).Str("stage", string(StageExtracting)).Msg("Extracting company data")

	if len(in.IncomeStatements) == 0 {
		result.DataQualityNotes = append(result.DataQualityNotes, "No income statements provided")
	}
	if len(in.BalanceSheets) == 0 {
		result.DataQualityNotes = append(result.DataQualityNotes, "No balance sheets provided")
	}
	if len(in.CashFlows) == 0 {
		result.DataQualityNotes = append(result.DataQualityNotes, "No cash flows provided")
	}

	dsInput := in.DatasetInput
	dsInput.Ticker = ticker
	ds := fundamentals.BuildDataset(dsInput)
	result.Dataset = ds
	if name := in.CompanyFacts.String("name"); name != "" {
		result.CompanyName = name
	}

	logger.Info().
		Int("annual_periods", len(ds.Annual)).
		Int("quarterly_periods", len(ds.Quarterly)).
		Str("stage", string(StageComputing)).
		Msg("Computing metrics")

	analysis := s.computeAll(logger, ds, in.wacc())

	if len(in.Peers) > 0 {
		analysis.Benchmarks = benchmark.All(benchmarkValues(analysis, ds), in.Peers.For(peerKey(ds)))
	}

	logger.Info().Str("stage", string(StageAggregating)).Msg("Aggregating flags")

	analysis.RedFlags, analysis.GreenFlags = scoring.AggregateFlags(analysis)
	analysis.QualityScore = scoring.QualityScore(analysis)
	result.Analysis = analysis

	for _, name := range sortedFailures(analysis.Failures) {
		result.DataQualityNotes = append(result.DataQualityNotes,
			fmt.Sprintf("Metric %s not computed: %s", name, analysis.Failures[name]))
	}

	result.Summary = BuildSummary(result)

	logger.Info().
		Str("stage", string(StageDone)).
		Str("quality_score", fmt.Sprintf("%.1f", analysis.QualityScore)).
		Int("red_flags", len(analysis.RedFlags)).
		Int("green_flags", len(analysis.GreenFlags)).
		Int("failed_metrics", len(analysis.Failures)).
		Msg("Analysis complete")

	return result
}

type metricTask struct {
	name models.MetricName
	fn   func() models.MetricResult
}

// computeAll runs every metric against the two most recent annual periods.
// A dataset without a current fiscal year yields an empty analysis.
func (s *Service) computeAll(logger arbor.ILogger, ds *models.CompanyDataset, wacc float64) *models.ComprehensiveAnalysis {
	analysis := models.NewComprehensiveAnalysis()

	cur, prev := fundamentals.CurrentAndPrevious(ds.Annual)
	if cur.FiscalYear == 0 {
		logger.Warn().Msg("No annual periods with a fiscal year, skipping metrics")
		return analysis
	}

	marketCap := ds.Price.MarketCap
	ev := marketCap + cur.TotalDebt - cur.Cash
	taxRate := metrics.EffectiveTaxRate(cur.IncomeTax, cur.EBT)

	shares := cur.SharesOutstanding
	if shares == 0 {
		shares = ds.Price.SharesOutstanding
	}

	eps := cur.EPS
	if eps == 0 && shares > 0 {
		eps = cur.NetIncome / shares
	}
	var bvps, dps float64
	if shares > 0 {
		bvps = cur.ShareholdersEquity / shares
		dps = math.Abs(cur.DividendsPaid) / shares
	}

	tasks := []metricTask{
		{models.MetricPiotroski, func() models.MetricResult {
			return metrics.PiotroskiFScore(piotroskiPeriod(cur), piotroskiPeriod(prev))
		}},
		{models.MetricAltmanZ, func() models.MetricResult {
			return metrics.AltmanZScore(metrics.AltmanInput{
				WorkingCapital:   cur.WorkingCapital,
				RetainedEarnings: cur.RetainedEarnings,
				EBIT:             cur.EBIT,
				MarketCap:        marketCap,
				Revenue:          cur.Revenue,
				TotalAssets:      cur.TotalAssets,
				TotalLiabilities: cur.TotalLiabilities,
				Manufacturing:    metrics.IsManufacturingSector(ds.Sector),
			})
		}},
		{models.MetricOhlsonO, func() models.MetricResult {
			return metrics.OhlsonOScore(metrics.OhlsonInput{
				TotalAssets:         cur.TotalAssets,
				TotalLiabilities:    cur.TotalLiabilities,
				WorkingCapital:      cur.WorkingCapital,
				CurrentLiabilities:  cur.CurrentLiabilities,
				NetIncome:           cur.NetIncome,
				FundsFromOperations: cur.OperatingCashFlow,
				NetIncomePrev:       prev.NetIncome,
			})
		}},
		{models.MetricBeneishM, func() models.MetricResult {
			return metrics.BeneishMScore(metrics.BeneishInput{
				Current:           beneishPeriod(cur),
				Previous:          beneishPeriod(prev),
				NetIncome:         cur.NetIncome,
				OperatingCashFlow: cur.OperatingCashFlow,
			})
		}},
		{models.MetricMagicFormula, func() models.MetricResult {
			return metrics.MagicFormula(metrics.MagicFormulaInput{
				EBIT:            cur.EBIT,
				EnterpriseValue: ev,
				PPENet:          cur.PPENet,
				WorkingCapital:  cur.WorkingCapital,
			})
		}},
		{models.MetricSloanAccrual, func() models.MetricResult {
			return metrics.SloanAccrualRatio(cur.NetIncome, cur.OperatingCashFlow, cur.TotalAssets, prev.TotalAssets)
		}},
		{models.MetricGrossProfitability, func() models.MetricResult {
			return metrics.GrossProfitability(cur.GrossProfit, cur.TotalAssets)
		}},
		{models.MetricFCFConversion, func() models.MetricResult {
			return metrics.FCFConversion(cur.FreeCashFlow, cur.EBITDA, cur.NetIncome)
		}},
		{models.MetricShareholderYield, func() models.MetricResult {
			return metrics.ShareholderYield(metrics.ShareholderYieldInput{
				DividendsPaid:     cur.DividendsPaid,
				SharesRepurchased: cur.SharesRepurchased,
				SharesIssued:      cur.SharesIssued,
				DebtRepaid:        cur.DebtRepaid,
				MarketCap:         marketCap,
			})
		}},
		{models.MetricOwnerEarnings, func() models.MetricResult {
			return metrics.OwnerEarnings(metrics.OwnerEarningsInput{
				NetIncome:            cur.NetIncome,
				Depreciation:         cur.Depreciation,
				Amortization:         cur.Amortization,
				Capex:                cur.Capex,
				WorkingCapitalChange: cur.WorkingCapital - prev.WorkingCapital,
				SharesOutstanding:    cur.SharesOutstanding,
			})
		}},
		{models.MetricEVA, func() models.MetricResult {
			nopat := cur.EBIT * (1 - taxRate)
			investedCapital := cur.ShareholdersEquity + cur.TotalDebt - cur.Cash
			return metrics.EconomicValueAdded(nopat, investedCapital, wacc)
		}},
		{models.MetricDuPont, func() models.MetricResult {
			return metrics.DuPontFiveFactor(metrics.DuPontInput{
				NetIncome:          cur.NetIncome,
				EBT:                cur.EBT,
				EBIT:               cur.EBIT,
				Revenue:            cur.Revenue,
				TotalAssets:        cur.TotalAssets,
				ShareholdersEquity: cur.ShareholdersEquity,
			})
		}},
		{models.MetricSustainableGrowth, func() models.MetricResult {
			var roe, payout float64
			if cur.ShareholdersEquity > 0 {
				roe = cur.NetIncome / cur.ShareholdersEquity
			}
			if cur.NetIncome > 0 {
				payout = math.Abs(cur.DividendsPaid) / cur.NetIncome
			}
			return metrics.SustainableGrowthRate(roe, payout)
		}},
		{models.MetricCreditRisk, func() models.MetricResult {
			return metrics.CreditRisk(metrics.CreditInput{
				EBITDA:             cur.EBITDA,
				InterestExpense:    cur.InterestExpense,
				TotalDebt:          cur.TotalDebt,
				Cash:               cur.Cash,
				CurrentAssets:      cur.CurrentAssets,
				CurrentLiabilities: cur.CurrentLiabilities,
				FreeCashFlow:       cur.FreeCashFlow,
				Capex:              cur.Capex,
				ShortTermDebt:      cur.ShortTermDebt,
			})
		}},
		{models.MetricROIC, func() models.MetricResult {
			return metrics.ROIC(metrics.ROICInput{
				EBIT:          cur.EBIT,
				TaxRate:       taxRate,
				Equity:        cur.ShareholdersEquity,
				TotalDebt:     cur.TotalDebt,
				Cash:          cur.Cash,
				EquityPrev:    prev.ShareholdersEquity,
				TotalDebtPrev: prev.TotalDebt,
				CashPrev:      prev.Cash,
			})
		}},
		{models.MetricGraham, func() models.MetricResult {
			return metrics.GrahamValuation(metrics.GrahamInput{
				EPS:               eps,
				BookValuePerShare: bvps,
				CurrentAssets:     cur.CurrentAssets,
				TotalLiabilities:  cur.TotalLiabilities,
				SharesOutstanding: shares,
				Cash:              cur.Cash,
				Receivables:       cur.AccountsReceivable,
				Inventory:         cur.Inventory,
				CurrentPrice:      ds.Price.CurrentPrice,
			})
		}},
		{models.MetricValuation, func() models.MetricResult {
			return metrics.ValuationRatios(metrics.ValuationInput{
				Price:             ds.Price.CurrentPrice,
				EPS:               eps,
				EPSGrowthRate:     epsGrowth(ds, cur, prev),
				BookValuePerShare: bvps,
				Revenue:           cur.Revenue,
				EBITDA:            cur.EBITDA,
				FreeCashFlow:      cur.FreeCashFlow,
				DividendPerShare:  dps,
				SharesOutstanding: shares,
				TotalDebt:         cur.TotalDebt,
				Cash:              cur.Cash,
			})
		}},
	}

	if len(ds.Annual) >= 2 {
		revenues, earnings, epsSeries, margins := annualSeries(ds.Annual)
		tasks = append(tasks, metricTask{models.MetricGrowth, func() models.MetricResult {
			return metrics.GrowthAnalysis(revenues, epsSeries, margins)
		}})

		if len(ds.Annual) >= 3 {
			tasks = append(tasks,
				metricTask{models.MetricRevenueTrend, func() models.MetricResult { return metrics.AnalyzeTrend(revenues, "Revenue") }},
				metricTask{models.MetricEarningsTrend, func() models.MetricResult { return metrics.AnalyzeTrend(earnings, "Earnings") }},
			)
		}
	}

	for _, task := range tasks {
		out := compute(task.name, task.fn)
		if !out.OK() {
			analysis.Failures[task.name] = out.Err.Error()
			logger.Warn().Str("metric", string(task.name)).Err(out.Err).Msg("Metric computation failed")
			continue
		}
		analysis.Set(task.name, out.Result)
	}

	logger.Debug().
		Int("computed", len(tasks)-len(analysis.Failures)).
		Int("failed", len(analysis.Failures)).
		Msg("Metrics computed")

	return analysis
}

func piotroskiPeriod(p models.FinancialPeriod) metrics.PiotroskiPeriod {
	return metrics.PiotroskiPeriod{
		NetIncome:          p.NetIncome,
		OperatingCashFlow:  p.OperatingCashFlow,
		TotalAssets:        p.TotalAssets,
		LongTermDebt:       p.LongTermDebt,
		CurrentAssets:      p.CurrentAssets,
		CurrentLiabilities: p.CurrentLiabilities,
		SharesOutstanding:  p.SharesOutstanding,
		GrossProfit:        p.GrossProfit,
		Revenue:            p.Revenue,
	}
}

func beneishPeriod(p models.FinancialPeriod) metrics.BeneishPeriod {
	return metrics.BeneishPeriod{
		Receivables:   p.AccountsReceivable,
		Revenue:       p.Revenue,
		GrossProfit:   p.GrossProfit,
		TotalAssets:   p.TotalAssets,
		PPE:           p.PPENet,
		Depreciation:  p.Depreciation,
		SGA:           p.SGAExpense,
		TotalDebt:     p.TotalDebt,
		CurrentAssets: p.CurrentAssets,
	}
}

// annualSeries returns oldest-first revenue, net income, EPS and gross margin
// series. Margins skip periods without revenue.
func annualSeries(annual []models.FinancialPeriod) (revenues, earnings, eps, margins []float64) {
	for i := len(annual) - 1; i >= 0; i-- {
		p := annual[i]
		revenues = append(revenues, p.Revenue)
		earnings = append(earnings, p.NetIncome)
		eps = append(eps, p.EPS)
		if p.Revenue != 0 {
			margins = append(margins, p.GrossProfit/p.Revenue)
		}
	}
	return revenues, earnings, eps, margins
}

// epsGrowth is the year-over-year EPS growth as a fraction, falling back to
// the provider's own figure.
func epsGrowth(ds *models.CompanyDataset, cur, prev models.FinancialPeriod) float64 {
	if len(ds.Annual) >= 2 && prev.EPS != 0 {
		return (cur.EPS - prev.EPS) / math.Abs(prev.EPS)
	}
	if ds.Metrics.EPSGrowth != nil {
		return *ds.Metrics.EPSGrowth
	}
	return 0
}

func peerKey(ds *models.CompanyDataset) string {
	if ds.Industry != "" {
		return ds.Industry
	}
	return ds.Sector
}

// benchmarkValues collects the company-side values compared against peers.
func benchmarkValues(a *models.ComprehensiveAnalysis, ds *models.CompanyDataset) map[string]float64 {
	values := make(map[string]float64)
	slot := func(key string, r *models.MetricResult) {
		if r != nil {
			values[key] = r.Value
		}
	}
	component := func(key string, r *models.MetricResult, name string) {
		if v, ok := r.Component(name); ok {
			values[key] = v
		}
	}

	slot("gross_profitability", a.GrossProfitability)
	slot("fcf_conversion", a.FCFConversion)
	slot("altman_z", a.AltmanZ)
	slot("piotroski", a.Piotroski)
	slot("roic", a.ROIC)
	slot("sloan_accrual", a.SloanAccrual)
	slot("shareholder_yield", a.ShareholderYield)
	component("roe", a.DuPont, "roe_direct")
	component("net_debt_to_ebitda", a.CreditRisk, "net_debt_to_ebitda")
	component("pe_ratio", a.Valuation, "pe_ratio")
	component("ev_to_ebitda", a.Valuation, "ev_to_ebitda")

	if cur, ok := ds.LatestAnnual(); ok && cur.ShareholdersEquity > 0 {
		values["debt_to_equity"] = metrics.Round(cur.TotalDebt/cur.ShareholdersEquity, 2)
	} else if ds.Metrics.DebtToEquity != nil {
		values["debt_to_equity"] = *ds.Metrics.DebtToEquity
	}
	return values
}
