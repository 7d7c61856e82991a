// Package collector pulls fundamentals from the data provider, runs the
// analysis pipeline over them and keeps a watchlist refreshed on a schedule.
package collector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/finsight/internal/common"
	"github.com/ternarybob/finsight/internal/interfaces"
	"github.com/ternarybob/finsight/internal/models"
	"github.com/ternarybob/finsight/internal/services/analysis"
	"github.com/ternarybob/finsight/internal/services/fundamentals"
)

const (
	// DefaultPeriodLimit is the number of statement periods requested per endpoint
	DefaultPeriodLimit = 10

	periodAnnual = "annual"
	investorKey  = "investor"
)

// Fetcher assembles an analysis.Input from a FundamentalsProvider.
type Fetcher struct {
	provider    interfaces.FundamentalsProvider
	periodLimit int
	logger      arbor.ILogger
}

// NewFetcher creates a fetcher. A periodLimit below one selects DefaultPeriodLimit.
func NewFetcher(provider interfaces.FundamentalsProvider, periodLimit int, logger arbor.ILogger) *Fetcher {
	if periodLimit < 1 {
		periodLimit = DefaultPeriodLimit
	}
	return &Fetcher{
		provider:    provider,
		periodLimit: periodLimit,
		logger:      logger,
	}
}

// Fetch downloads everything one analysis needs. The three annual statement
// series are required; the remaining datasets are best effort and a failure
// leaves the slot empty.
func (f *Fetcher) Fetch(ctx context.Context, ticker string) (analysis.Input, error) {
	symbol := common.ParseTicker(ticker).Symbol()
	if symbol == "" {
		return analysis.Input{}, fmt.Errorf("ticker is required")
	}

	start := time.Now()
	in := analysis.Input{DatasetInput: fundamentals.DatasetInput{Ticker: symbol}}

	var err error
	if in.IncomeStatements, err = f.provider.IncomeStatements(ctx, symbol, periodAnnual, f.periodLimit); err != nil {
		return analysis.Input{}, fmt.Errorf("failed to fetch income statements for %s: %w", symbol, err)
	}
	if in.BalanceSheets, err = f.provider.BalanceSheets(ctx, symbol, periodAnnual, f.periodLimit); err != nil {
		return analysis.Input{}, fmt.Errorf("failed to fetch balance sheets for %s: %w", symbol, err)
	}
	if in.CashFlows, err = f.provider.CashFlowStatements(ctx, symbol, periodAnnual, f.periodLimit); err != nil {
		return analysis.Input{}, fmt.Errorf("failed to fetch cash flow statements for %s: %w", symbol, err)
	}

	in.Metrics = f.optionalRecord(ctx, symbol, "financial_metrics", f.provider.FinancialMetrics)
	in.Price = f.optionalRecord(ctx, symbol, "price_snapshot", f.provider.PriceSnapshot)
	in.CompanyFacts = f.optionalRecord(ctx, symbol, "company_facts", f.provider.CompanyFacts)

	in.InsiderTrades = f.optionalList(ctx, symbol, "insider_trades", func(ctx context.Context, t string) ([]models.RawRecord, error) {
		return f.provider.InsiderTrades(ctx, t, f.periodLimit*10)
	})
	in.AnalystEstimates = f.optionalList(ctx, symbol, "analyst_estimates", func(ctx context.Context, t string) ([]models.RawRecord, error) {
		return f.provider.AnalystEstimates(ctx, t, periodAnnual)
	})
	ownership := f.optionalList(ctx, symbol, "institutional_ownership", func(ctx context.Context, t string) ([]models.RawRecord, error) {
		return f.provider.InstitutionalOwnership(ctx, t, f.periodLimit*10)
	})
	in.HoldingsByInvestor = GroupByInvestor(ownership)

	f.logger.Info().
		Str("ticker", symbol).
		Int("income_statements", len(in.IncomeStatements)).
		Int("balance_sheets", len(in.BalanceSheets)).
		Int("cash_flows", len(in.CashFlows)).
		Int("investors", len(in.HoldingsByInvestor)).
		Dur("duration", time.Since(start)).
		Msg("Fundamentals fetched")

	return in, nil
}

func (f *Fetcher) optionalRecord(ctx context.Context, ticker, dataset string, fetch func(context.Context, string) (models.RawRecord, error)) models.RawRecord {
	rec, err := fetch(ctx, ticker)
	if err != nil {
		f.logger.Warn().Err(err).Str("ticker", ticker).Str("dataset", dataset).Msg("Optional dataset unavailable")
		return nil
	}
	return rec
}

func (f *Fetcher) optionalList(ctx context.Context, ticker, dataset string, fetch func(context.Context, string) ([]models.RawRecord, error)) []models.RawRecord {
	records, err := fetch(ctx, ticker)
	if err != nil {
		f.logger.Warn().Err(err).Str("ticker", ticker).Str("dataset", dataset).Msg("Optional dataset unavailable")
		return nil
	}
	return records
}

// GroupByInvestor splits institutional ownership rows by their investor
// field. Rows without an investor are dropped.
func GroupByInvestor(records []models.RawRecord) map[string][]models.RawRecord {
	if len(records) == 0 {
		return nil
	}
	grouped := make(map[string][]models.RawRecord)
	for _, rec := range records {
		name, _ := rec[investorKey].(string)
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		grouped[name] = append(grouped[name], rec)
	}
	if len(grouped) == 0 {
		return nil
	}
	return grouped
}
