package fundamentals

import (
	"fmt"
	"sort"

	"github.com/ternarybob/finsight/internal/models"
)

// DatasetInput is the raw provider payload for one company.
type DatasetInput struct {
	Ticker             string                        `json:"ticker" validate:"required"`
	IncomeStatements   []models.RawRecord            `json:"income_statements"`
	BalanceSheets      []models.RawRecord            `json:"balance_sheets"`
	CashFlows          []models.RawRecord            `json:"cash_flows"`
	Metrics            models.RawRecord              `json:"metrics,omitempty"`
	Price              models.RawRecord              `json:"price,omitempty"`
	HoldingsByInvestor map[string][]models.RawRecord `json:"holdings_by_investor,omitempty"`
	InsiderTrades      []models.RawRecord            `json:"insider_trades,omitempty"`
	AnalystEstimates   []models.RawRecord            `json:"analyst_estimates,omitempty"`
	CompanyFacts       models.RawRecord              `json:"company_facts,omitempty"`
}

type bucket struct {
	year     int
	quarter  int
	income   models.RawRecord
	balance  models.RawRecord
	cashFlow models.RawRecord
}

type bucketSet struct {
	byKey map[string]*bucket
}

func newBucketSet() *bucketSet {
	return &bucketSet{byKey: make(map[string]*bucket)}
}

func (s *bucketSet) get(key string, year, quarter int) *bucket {
	b, ok := s.byKey[key]
	if !ok {
		// a statement with no income side yet gets an empty placeholder
		b = &bucket{year: year, quarter: quarter, income: models.RawRecord{}}
		s.byKey[key] = b
	}
	return b
}

// sorted returns buckets most recent first, ordered by (year, quarter).
func (s *bucketSet) sorted() []*bucket {
	out := make([]*bucket, 0, len(s.byKey))
	for _, b := range s.byKey {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].year != out[j].year {
			return out[i].year > out[j].year
		}
		return out[i].quarter > out[j].quarter
	})
	return out
}

// PeriodKey renders the bucket key for a statement: "2024-Q3" when a quarter
// is present, else "2024".
func PeriodKey(year, quarter int) string {
	if quarter != 0 {
		return fmt.Sprintf("%d-Q%d", year, quarter)
	}
	return fmt.Sprintf("%d", year)
}

func classify(rec models.RawRecord) (key string, year, quarter int, quarterly bool) {
	year, _ = rec.Int("fiscal_year")
	quarter, _ = rec.Int("fiscal_quarter")
	period := rec.String("period")
	if period == "" {
		period = models.PeriodAnnual
	}
	return PeriodKey(year, quarter), year, quarter, period == models.PeriodQuarterly && quarter != 0
}

// BuildDataset merges statements into period buckets, normalizes each bucket
// and attaches the ancillary data.
func BuildDataset(in DatasetInput) *models.CompanyDataset {
	annual, quarterly := newBucketSet(), newBucketSet()
	target := func(rec models.RawRecord) *bucket {
		key, year, quarter, isQuarterly := classify(rec)
		if isQuarterly {
			return quarterly.get(key, year, quarter)
		}
		return annual.get(key, year, quarter)
	}

	for _, rec := range in.IncomeStatements {
		target(rec).income = rec
	}
	for _, rec := range in.BalanceSheets {
		target(rec).balance = rec
	}
	for _, rec := range in.CashFlows {
		target(rec).cashFlow = rec
	}

	ds := &models.CompanyDataset{
		Ticker:    in.Ticker,
		Annual:    normalizeBuckets(annual.sorted(), models.PeriodAnnual),
		Quarterly: normalizeBuckets(quarterly.sorted(), models.PeriodQuarterly),
	}

	applyFacts(ds, in.CompanyFacts)
	ds.Metrics = ExtractMetrics(in.Metrics)
	ds.Price = ExtractPrice(in.Price)
	ds.Holdings = ExtractHoldings(in.HoldingsByInvestor)
	ds.InsiderTrades = ExtractInsiderTrades(in.InsiderTrades)
	ds.EPSEstimates = ExtractEstimates(in.AnalystEstimates)
	ds.DataCompleteness = DataCompleteness(ds.Annual)

	return ds
}

func normalizeBuckets(buckets []*bucket, period string) []models.FinancialPeriod {
	out := make([]models.FinancialPeriod, 0, len(buckets))
	for _, b := range buckets {
		p := NormalizePeriod(b.income, b.balance, b.cashFlow, period)
		if p.FiscalYear == 0 {
			p.FiscalYear = b.year
		}
		if p.FiscalQuarter == nil && b.quarter != 0 {
			q := b.quarter
			p.FiscalQuarter = &q
		}
		out = append(out, p)
	}
	return out
}

// DataCompleteness is the share of revenue, net income, total assets and
// operating cash flow that are non-zero in the latest annual period.
func DataCompleteness(annual []models.FinancialPeriod) float64 {
	if len(annual) == 0 {
		return 0
	}
	p := annual[0]
	present := 0
	for _, v := range []float64{p.Revenue, p.NetIncome, p.TotalAssets, p.OperatingCashFlow} {
		if v != 0 {
			present++
		}
	}
	return float64(present) / 4
}

// CurrentAndPrevious picks the two most recent periods. A single period is
// used for both; no periods yields two empty annual periods.
func CurrentAndPrevious(periods []models.FinancialPeriod) (current, previous models.FinancialPeriod) {
	switch len(periods) {
	case 0:
		empty := models.NewFinancialPeriod(models.FinancialPeriod{Period: models.PeriodAnnual})
		return empty, empty
	case 1:
		return periods[0], periods[0]
	default:
		return periods[0], periods[1]
	}
}
