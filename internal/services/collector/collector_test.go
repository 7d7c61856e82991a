package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/finsight/internal/common"
	"github.com/ternarybob/finsight/internal/interfaces"
	"github.com/ternarybob/finsight/internal/models"
	"github.com/ternarybob/finsight/internal/services/analysis"
	"github.com/ternarybob/finsight/internal/services/benchmark"
)

// fakeProvider serves three annual periods per ticker and fails selected
// datasets on request.
type fakeProvider struct {
	failStatements bool
	failOptional   bool
	calls          atomic.Int32
}

func statement(ticker string, year int, fields map[string]float64) models.RawRecord {
	rec := models.RawRecord{"ticker": ticker, "period": "annual", "fiscal_year": float64(year)}
	for k, v := range fields {
		rec[k] = v
	}
	return rec
}

func (p *fakeProvider) statements(ticker string, fields func(f float64) map[string]float64) ([]models.RawRecord, error) {
	p.calls.Add(1)
	if p.failStatements {
		return nil, errors.New("provider down")
	}
	var out []models.RawRecord
	for i, f := range []float64{1.0, 0.9, 0.8} {
		out = append(out, statement(ticker, 2024-i, fields(f)))
	}
	return out, nil
}

func (p *fakeProvider) IncomeStatements(ctx context.Context, ticker, period string, limit int) ([]models.RawRecord, error) {
	return p.statements(ticker, func(f float64) map[string]float64 {
		return map[string]float64{
			"revenue": 1000 * f, "gross_profit": 400 * f, "ebit": 150 * f, "interest_expense": 10 * f,
			"income_before_tax": 140 * f, "income_tax_expense": 35 * f, "net_income": 105 * f, "eps": 1.05 * f,
			"weighted_average_shares_outstanding": 100,
		}
	})
}

func (p *fakeProvider) BalanceSheets(ctx context.Context, ticker, period string, limit int) ([]models.RawRecord, error) {
	return p.statements(ticker, func(f float64) map[string]float64 {
		return map[string]float64{
			"cash_and_cash_equivalents": 100 * f, "total_current_assets": 300 * f, "total_assets": 1000 * f,
			"total_current_liabilities": 150 * f, "total_debt": 200 * f, "total_liabilities": 400 * f,
			"total_stockholders_equity": 600 * f, "retained_earnings": 300 * f,
		}
	})
}

func (p *fakeProvider) CashFlowStatements(ctx context.Context, ticker, period string, limit int) ([]models.RawRecord, error) {
	return p.statements(ticker, func(f float64) map[string]float64 {
		return map[string]float64{"operating_cash_flow": 160 * f, "capital_expenditure": -40 * f, "free_cash_flow": 120 * f}
	})
}

func (p *fakeProvider) optional() error {
	p.calls.Add(1)
	if p.failOptional {
		return errors.New("not covered")
	}
	return nil
}

func (p *fakeProvider) FinancialMetrics(ctx context.Context, ticker string) (models.RawRecord, error) {
	if err := p.optional(); err != nil {
		return nil, err
	}
	return models.RawRecord{"price_to_earnings_ratio": 19.0}, nil
}

func (p *fakeProvider) PriceSnapshot(ctx context.Context, ticker string) (models.RawRecord, error) {
	if err := p.optional(); err != nil {
		return nil, err
	}
	return models.RawRecord{"price": 20.0, "market_cap": 2000.0}, nil
}

func (p *fakeProvider) CompanyFacts(ctx context.Context, ticker string) (models.RawRecord, error) {
	if err := p.optional(); err != nil {
		return nil, err
	}
	return models.RawRecord{"name": ticker + " Corp", "sector": "Technology", "industry": "Software"}, nil
}

func (p *fakeProvider) InsiderTrades(ctx context.Context, ticker string, limit int) ([]models.RawRecord, error) {
	if err := p.optional(); err != nil {
		return nil, err
	}
	return []models.RawRecord{{"name": "Jane Doe", "transaction_shares": 1000.0}}, nil
}

func (p *fakeProvider) InstitutionalOwnership(ctx context.Context, ticker string, limit int) ([]models.RawRecord, error) {
	if err := p.optional(); err != nil {
		return nil, err
	}
	return []models.RawRecord{
		{"investor": "VANGUARD GROUP INC", "shares": 900.0, "report_period": "2024-12-31"},
		{"investor": "VANGUARD GROUP INC", "shares": 850.0, "report_period": "2024-09-30"},
		{"investor": "BLACKROCK INC", "shares": 700.0, "report_period": "2024-12-31"},
		{"shares": 5.0},
	}, nil
}

func (p *fakeProvider) AnalystEstimates(ctx context.Context, ticker, period string) ([]models.RawRecord, error) {
	if err := p.optional(); err != nil {
		return nil, err
	}
	return []models.RawRecord{{"fiscal_period": "2025", "eps": 1.2}}, nil
}

// memoryReports is an in-memory ReportStorage
type memoryReports struct {
	mu      sync.Mutex
	reports map[string]models.StoredReport
}

func newMemoryReports() *memoryReports {
	return &memoryReports{reports: make(map[string]models.StoredReport)}
}

func (m *memoryReports) SaveReport(ctx context.Context, report *models.StoredReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports[report.ID] = *report
	return nil
}

func (m *memoryReports) GetReport(ctx context.Context, id string) (*models.StoredReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[id]
	if !ok {
		return nil, interfaces.ErrReportNotFound
	}
	return &r, nil
}

func (m *memoryReports) GetLatest(ctx context.Context, ticker string) (*models.StoredReport, error) {
	list, _ := m.ListByTicker(ctx, ticker, 1)
	if len(list) == 0 {
		return nil, interfaces.ErrReportNotFound
	}
	return &list[0], nil
}

func (m *memoryReports) ListReports(ctx context.Context, limit int) ([]models.StoredReport, error) {
	return m.list(func(models.StoredReport) bool { return true }, limit), nil
}

func (m *memoryReports) ListByTicker(ctx context.Context, ticker string, limit int) ([]models.StoredReport, error) {
	ticker = strings.ToUpper(ticker)
	return m.list(func(r models.StoredReport) bool { return r.Ticker == ticker }, limit), nil
}

func (m *memoryReports) list(keep func(models.StoredReport) bool, limit int) []models.StoredReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.StoredReport
	for _, r := range m.reports {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GeneratedAt.After(out[j].GeneratedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (m *memoryReports) DeleteReport(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.reports, id)
	return nil
}

func (m *memoryReports) CountReports(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.reports), nil
}

type fakeNarrator struct {
	err     error
	profile string
	report  string
}

func (n *fakeNarrator) Narrate(ctx context.Context, profile, report string) (string, error) {
	n.profile, n.report = profile, report
	if n.err != nil {
		return "", n.err
	}
	return "Solid balance sheet.", nil
}

func (n *fakeNarrator) Provider() string { return "fake" }

func newTestPipeline(provider *fakeProvider, opts ...PipelineOption) *Pipeline {
	logger := arbor.NewLogger()
	return NewPipeline(NewFetcher(provider, 3, logger), analysis.NewService(logger), logger, opts...)
}

func TestFetch(t *testing.T) {
	provider := &fakeProvider{}
	fetcher := NewFetcher(provider, 3, arbor.NewLogger())

	in, err := fetcher.Fetch(context.Background(), " nasdaq:acme ")
	require.NoError(t, err)

	assert.Equal(t, "ACME", in.Ticker)
	assert.Len(t, in.IncomeStatements, 3)
	assert.Len(t, in.BalanceSheets, 3)
	assert.Len(t, in.CashFlows, 3)
	assert.Equal(t, 20.0, in.Price["price"])
	assert.Equal(t, "ACME Corp", in.CompanyFacts["name"])
	assert.Len(t, in.InsiderTrades, 1)
	assert.Len(t, in.AnalystEstimates, 1)
	require.Len(t, in.HoldingsByInvestor, 2)
	assert.Len(t, in.HoldingsByInvestor["VANGUARD GROUP INC"], 2)
	assert.Zero(t, in.WACC)
}

func TestFetchOptionalFailures(t *testing.T) {
	fetcher := NewFetcher(&fakeProvider{failOptional: true}, 0, arbor.NewLogger())

	in, err := fetcher.Fetch(context.Background(), "ACME")
	require.NoError(t, err)

	assert.Len(t, in.IncomeStatements, 3)
	assert.Nil(t, in.Price)
	assert.Nil(t, in.Metrics)
	assert.Nil(t, in.HoldingsByInvestor)
	assert.Equal(t, DefaultPeriodLimit, fetcher.periodLimit)
}

func TestFetchRequiredFailure(t *testing.T) {
	fetcher := NewFetcher(&fakeProvider{failStatements: true}, 3, arbor.NewLogger())

	_, err := fetcher.Fetch(context.Background(), "ACME")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "income statements for ACME")

	_, err = fetcher.Fetch(context.Background(), "  ")
	assert.Error(t, err)
}

func TestGroupByInvestor(t *testing.T) {
	assert.Nil(t, GroupByInvestor(nil))
	assert.Nil(t, GroupByInvestor([]models.RawRecord{{"shares": 1.0}}))

	grouped := GroupByInvestor([]models.RawRecord{
		{"investor": " A ", "shares": 1.0},
		{"investor": "A", "shares": 2.0},
		{"investor": "B", "shares": 3.0},
	})
	assert.Len(t, grouped["A"], 2)
	assert.Len(t, grouped["B"], 1)
}

func TestPipelineRunTicker(t *testing.T) {
	reports := newMemoryReports()
	narrator := &fakeNarrator{}
	pipeline := newTestPipeline(&fakeProvider{}, WithReportStorage(reports), WithNarrator(narrator), WithDefaultWACC(0.2))

	out, err := pipeline.RunTicker(context.Background(), "acme", Options{Expert: "buffett", Narrate: true, Store: true})
	require.NoError(t, err)

	assert.Equal(t, "ACME", out.Result.Ticker)
	assert.Equal(t, "ACME Corp", out.Result.CompanyName)
	assert.Contains(t, out.Markdown, "# Pre-Calculated Metrics for ACME")
	assert.Contains(t, out.Markdown, "## Buffett-Relevant Highlights")
	assert.Equal(t, "Solid balance sheet.", out.Commentary)
	assert.Equal(t, "buffett", narrator.profile)
	assert.Equal(t, out.Markdown, narrator.report)
	assert.True(t, out.Stored)

	stored, err := reports.GetLatest(context.Background(), "ACME")
	require.NoError(t, err)
	assert.Equal(t, out.Result.RunID, stored.ID)
	assert.Equal(t, out.Markdown, stored.Markdown)
	assert.Equal(t, out.Commentary, stored.Commentary)
	assert.Equal(t, out.Result.Summary.QualityScore, stored.QualityScore)

	var summary models.Summary
	require.NoError(t, json.Unmarshal(stored.SummaryJSON, &summary))
	assert.Equal(t, "ACME", summary.Ticker)
	assert.Equal(t, 3, summary.DataPeriodsAnnual)

	doc := out.Document()
	assert.Contains(t, doc.Body(), "## Commentary\n\nSolid balance sheet.")
}

func TestPipelineWACCPrecedence(t *testing.T) {
	pipeline := newTestPipeline(&fakeProvider{}, WithDefaultWACC(0.2))
	in, err := pipeline.fetcher.Fetch(context.Background(), "ACME")
	require.NoError(t, err)

	base, err := pipeline.Run(context.Background(), in, Options{})
	require.NoError(t, err)
	override, err := pipeline.Run(context.Background(), in, Options{WACC: 0.05})
	require.NoError(t, err)

	require.NotNil(t, base.Result.Analysis.EVA)
	require.NotNil(t, override.Result.Analysis.EVA)
	assert.Greater(t, override.Result.Analysis.EVA.Value, base.Result.Analysis.EVA.Value)

	_, err = pipeline.Run(context.Background(), in, Options{WACC: 1.5})
	assert.Error(t, err)
}

func TestPipelineAppliesPeers(t *testing.T) {
	peers := benchmark.PeerSets{"software": {"gross_profitability": {10, 20, 30, 50}}}
	pipeline := newTestPipeline(&fakeProvider{}, WithPeers(peers))

	out, err := pipeline.RunTicker(context.Background(), "ACME", Options{})
	require.NoError(t, err)
	assert.Contains(t, out.Result.Analysis.Benchmarks, "gross_profitability")
	assert.False(t, out.Stored)
}

func TestPipelineNarrationFailureIsNotFatal(t *testing.T) {
	pipeline := newTestPipeline(&fakeProvider{}, WithNarrator(&fakeNarrator{err: errors.New("quota")}))

	out, err := pipeline.RunTicker(context.Background(), "ACME", Options{Narrate: true})
	require.NoError(t, err)
	assert.Empty(t, out.Commentary)

	out, err = newTestPipeline(&fakeProvider{}).RunTicker(context.Background(), "ACME", Options{Narrate: true})
	require.NoError(t, err)
	assert.Empty(t, out.Commentary)
}

func TestPipelineStoreWithoutStorage(t *testing.T) {
	_, err := newTestPipeline(&fakeProvider{}).RunTicker(context.Background(), "ACME", Options{Store: true})
	assert.Error(t, err)

	logger := arbor.NewLogger()
	_, err = NewPipeline(nil, analysis.NewService(logger), logger).RunTicker(context.Background(), "ACME", Options{})
	assert.Error(t, err)
}

// countingRunner records calls and fails tickers listed in fail.
type countingRunner struct {
	mu      sync.Mutex
	calls   []string
	fail    map[string]bool
	opts    Options
	active  atomic.Int32
	maxSeen atomic.Int32
}

func (r *countingRunner) RunTicker(ctx context.Context, ticker string, opts Options) (*Outcome, error) {
	n := r.active.Add(1)
	defer r.active.Add(-1)
	for {
		prev := r.maxSeen.Load()
		if n <= prev || r.maxSeen.CompareAndSwap(prev, n) {
			break
		}
	}
	time.Sleep(20 * time.Millisecond)

	r.mu.Lock()
	r.calls = append(r.calls, ticker)
	r.opts = opts
	r.mu.Unlock()

	if r.fail[ticker] {
		return nil, fmt.Errorf("no data for %s", ticker)
	}
	return &Outcome{Stored: true}, nil
}

func TestNewSchedulerValidation(t *testing.T) {
	logger := arbor.NewLogger()
	runner := &countingRunner{}

	_, err := NewScheduler(runner, &common.WatchConfig{Schedule: "* * * * *", Tickers: []string{"AAPL"}}, Options{}, logger)
	assert.Error(t, err)

	_, err = NewScheduler(runner, &common.WatchConfig{Schedule: "0 6 * * 1-5", Tickers: []string{" ", ""}}, Options{}, logger)
	assert.Error(t, err)

	s, err := NewScheduler(runner, &common.WatchConfig{
		Schedule: "0 6 * * 1-5",
		Tickers:  []string{"aapl", "AAPL.US", "msft"},
	}, Options{}, logger)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, s.Tickers())
	assert.Equal(t, 1, s.concurrency)
}

func TestSchedulerRunOnce(t *testing.T) {
	runner := &countingRunner{fail: map[string]bool{"BAD": true}}
	s, err := NewScheduler(runner, &common.WatchConfig{
		Schedule:    "*/30 * * * *",
		Tickers:     []string{"AAPL", "MSFT", "BAD", "GOOG"},
		Concurrency: 2,
	}, Options{Expert: "graham"}, arbor.NewLogger())
	require.NoError(t, err)

	summary := s.RunOnce(context.Background())

	assert.Equal(t, 3, summary.Stored)
	require.Contains(t, summary.Failed, "BAD")
	assert.Contains(t, summary.Failed["BAD"], "no data for BAD")
	assert.ElementsMatch(t, []string{"AAPL", "MSFT", "BAD", "GOOG"}, runner.calls)
	assert.LessOrEqual(t, runner.maxSeen.Load(), int32(2))
	assert.True(t, runner.opts.Store)
	assert.Equal(t, "graham", runner.opts.Expert)
	assert.Same(t, summary, s.LastRun())
}

func TestSchedulerRunOnceCancelled(t *testing.T) {
	runner := &countingRunner{}
	s, err := NewScheduler(runner, &common.WatchConfig{
		Schedule: "0 6 * * *",
		Tickers:  []string{"AAPL", "MSFT"},
	}, Options{}, arbor.NewLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary := s.RunOnce(ctx)
	assert.Equal(t, 0, summary.Stored)
	assert.Len(t, summary.Failed, 2)
}

func TestSchedulerStartStop(t *testing.T) {
	s, err := NewScheduler(&countingRunner{}, &common.WatchConfig{
		Schedule: "0 6 * * *",
		Tickers:  []string{"AAPL"},
	}, Options{}, arbor.NewLogger())
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	assert.Error(t, s.Start(context.Background()))
	assert.NoError(t, s.Stop())
	assert.NoError(t, s.Stop())
	assert.Nil(t, s.LastRun())
}
