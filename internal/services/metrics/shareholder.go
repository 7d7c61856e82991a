package metrics

import (
	"fmt"
	"math"

	"github.com/ternarybob/finsight/internal/models"
)

// ShareholderYield sums dividend, net buyback and debt paydown yields over
// market cap. Value is a percentage.
func ShareholderYield(in ShareholderYieldInput) models.MetricResult {
	r := models.NewMetricResult()

	dividendYield, buybackYield, debtYield := 0.0, 0.0, 0.0
	if in.MarketCap > 0 {
		dividendYield = math.Abs(in.DividendsPaid) / in.MarketCap
		buybackYield = (math.Abs(in.SharesRepurchased) - math.Abs(in.SharesIssued)) / in.MarketCap
		if in.DebtRepaid < 0 {
			debtYield = math.Abs(in.DebtRepaid) / in.MarketCap
		}
	}
	total := dividendYield + buybackYield + debtYield

	r.Components["dividend_yield"] = Round(dividendYield*100, 2)
	r.Components["buyback_yield"] = Round(buybackYield*100, 2)
	r.Components["debt_paydown_yield"] = Round(debtYield*100, 2)

	if buybackYield < 0 {
		r.AddFlag(models.Warning(fmt.Sprintf("Net issuance of %.1f%% - diluting shareholders", math.Abs(buybackYield)*100)))
	}

	switch {
	case total > 0.08:
		r.Interpretation = "Excellent shareholder yield (>8%)"
		r.AddFlag(models.Positive("Excellent shareholder yield (>8%)"))
	case total > 0.05:
		r.Interpretation = "Good shareholder yield (5-8%)"
	case total > 0.02:
		r.Interpretation = "Moderate shareholder yield (2-5%)"
	case total > 0:
		r.Interpretation = "Low shareholder yield (<2%)"
	default:
		r.Interpretation = "Negative - Net cash drain from shareholders"
		r.AddFlag(models.Critical("Negative shareholder yield - company taking cash from shareholders"))
	}

	r.Value = Round(total*100, 2)
	return r
}
