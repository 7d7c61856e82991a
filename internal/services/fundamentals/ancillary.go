package fundamentals

import (
	"math"
	"strings"

	"github.com/ternarybob/finsight/internal/models"
)

// ExtractMetrics maps the provider's precomputed ratios. Unresolved ratios
// stay nil.
func ExtractMetrics(raw models.RawRecord) models.MetricsData {
	var m models.MetricsData
	if len(raw) == 0 {
		return m
	}
	for _, a := range metricsAliases {
		a.set(&m, raw.OptionalNumber(a.Keys...))
	}
	return m
}

// ExtractPrice maps a price or quote snapshot.
func ExtractPrice(raw models.RawRecord) models.PriceData {
	if len(raw) == 0 {
		return models.PriceData{}
	}
	price := models.PriceData{
		CurrentPrice:      raw.Number("price", "close"),
		MarketCap:         raw.Number("market_cap", "marketCap"),
		SharesOutstanding: raw.Number("shares_outstanding"),
		EnterpriseValue:   raw.Number("enterprise_value"),
		AvgVolume:         raw.Number("avg_volume", "volume"),
		High52Week:        raw.Number("week_52_high", "fifty_two_week_high"),
		Low52Week:         raw.Number("week_52_low", "fifty_two_week_low"),
	}
	if history, ok := raw["price_history"].([]interface{}); ok {
		for _, item := range history {
			rec, ok := asRecord(item)
			if !ok {
				continue
			}
			price.History = append(price.History, models.PricePoint{
				Date:   rec.String("time", "date"),
				Close:  rec.Number("close", "price"),
				Volume: rec.Number("volume"),
			})
		}
	}
	return price
}

// ExtractHoldings maps institutional positions keyed by investor name.
func ExtractHoldings(byInvestor map[string][]models.RawRecord) map[string][]models.Holding {
	if len(byInvestor) == 0 {
		return nil
	}
	out := make(map[string][]models.Holding, len(byInvestor))
	for investor, records := range byInvestor {
		holdings := make([]models.Holding, 0, len(records))
		for _, raw := range records {
			quarters, _ := raw.Int("quarters_held")
			holdings = append(holdings, models.Holding{
				Investor:        investor,
				SharesHeld:      raw.Number("shares", "shares_held"),
				MarketValue:     raw.Number("market_value", "value"),
				PortfolioWeight: raw.Number("portfolio_weight", "weight"),
				ChangeInShares:  raw.Number("change_in_shares", "shares_change"),
				ChangePercent:   raw.Number("change_percent"),
				ReportDate:      raw.String("report_period", "date"),
				QuartersHeld:    quarters,
			})
		}
		out[investor] = holdings
	}
	return out
}

// NormalizeTransactionType folds provider wording into "buy" or "sell".
// Anything else is returned lowercased.
func NormalizeTransactionType(raw string) string {
	tx := strings.ToLower(raw)
	switch {
	case strings.Contains(tx, "buy"), strings.Contains(tx, "purchase"), strings.Contains(tx, "acquisition"):
		return models.TransactionBuy
	case strings.Contains(tx, "sell"), strings.Contains(tx, "sale"), strings.Contains(tx, "disposition"):
		return models.TransactionSell
	}
	return tx
}

// ExtractInsiderTrades maps insider transactions.
func ExtractInsiderTrades(records []models.RawRecord) []models.InsiderTrade {
	if len(records) == 0 {
		return nil
	}
	trades := make([]models.InsiderTrade, 0, len(records))
	for _, raw := range records {
		trades = append(trades, models.InsiderTrade{
			Name:            raw.String("insider_name", "name"),
			Title:           raw.String("insider_title", "title"),
			TransactionType: NormalizeTransactionType(raw.String("transaction_type")),
			Shares:          math.Abs(raw.Number("shares", "transaction_shares")),
			Price:           raw.Number("price", "price_per_share"),
			Value:           math.Abs(raw.Number("value", "transaction_value")),
			Date:            raw.String("transaction_date", "date"),
		})
	}
	return trades
}

// ExtractEstimates maps analyst EPS estimates by fiscal period. Entries
// without a period or estimate are skipped.
func ExtractEstimates(records []models.RawRecord) map[string]float64 {
	if len(records) == 0 {
		return nil
	}
	out := make(map[string]float64)
	for _, raw := range records {
		period := raw.String("fiscal_period")
		eps := raw.Number("earnings_per_share")
		if period != "" && eps != 0 {
			out[period] = eps
		}
	}
	return out
}

func applyFacts(ds *models.CompanyDataset, facts models.RawRecord) {
	if len(facts) == 0 {
		return
	}
	ds.CompanyName = facts.String("name", "company_name")
	ds.Sector = facts.String("sector")
	ds.Industry = facts.String("industry")
}

func asRecord(v interface{}) (models.RawRecord, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return models.RawRecord(m), true
	case models.RawRecord:
		return m, true
	}
	return nil, false
}
