package interfaces

import (
	"context"

	"github.com/ternarybob/finsight/internal/models"
)

// FundamentalsProvider fetches raw fundamentals for a ticker. Records are
// returned as the provider sent them; normalization happens downstream.
type FundamentalsProvider interface {
	IncomeStatements(ctx context.Context, ticker, period string, limit int) ([]models.RawRecord, error)
	BalanceSheets(ctx context.Context, ticker, period string, limit int) ([]models.RawRecord, error)
	CashFlowStatements(ctx context.Context, ticker, period string, limit int) ([]models.RawRecord, error)

	FinancialMetrics(ctx context.Context, ticker string) (models.RawRecord, error)
	PriceSnapshot(ctx context.Context, ticker string) (models.RawRecord, error)
	CompanyFacts(ctx context.Context, ticker string) (models.RawRecord, error)

	InsiderTrades(ctx context.Context, ticker string, limit int) ([]models.RawRecord, error)
	InstitutionalOwnership(ctx context.Context, ticker string, limit int) ([]models.RawRecord, error)
	AnalystEstimates(ctx context.Context, ticker, period string) ([]models.RawRecord, error)
}
