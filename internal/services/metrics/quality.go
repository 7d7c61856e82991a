package metrics

import (
	"github.com/ternarybob/finsight/internal/models"
)

// SloanAccrualRatio measures the share of earnings not backed by operating cash
// flow, scaled by average total assets. Value is a percentage.
func SloanAccrualRatio(netIncome, operatingCashFlow, totalAssets, totalAssetsPrev float64) models.MetricResult {
	r := models.NewMetricResult()

	accruals := netIncome - operatingCashFlow
	avgAssets := (totalAssets + totalAssetsPrev) / 2
	ratio := 0.0
	if avgAssets > 0 {
		ratio = accruals / avgAssets
	}

	switch {
	case ratio >= -0.10 && ratio <= 0.10:
		r.Interpretation = "Safe Zone - Quality earnings backed by cash"
	case ratio >= -0.25 && ratio < -0.10:
		r.Interpretation = "Warning - Unusual negative accruals"
		r.AddFlag(models.Warning("Investigate: Large negative accruals may indicate write-offs"))
	case ratio > 0.10 && ratio <= 0.25:
		r.Interpretation = "Warning - Elevated accruals"
		r.AddFlag(models.Warning("Accruals building up - earnings may not be sustainable"))
	case ratio > 0.25:
		r.Interpretation = "DANGER - Very high accruals"
		r.AddFlag(models.Critical("HIGH RISK: Earnings heavily based on accruals, not cash"))
	default:
		r.Interpretation = "DANGER - Extreme negative accruals"
		r.AddFlag(models.Warning("Investigate: Possible large write-downs or restructuring"))
	}

	r.Components["accruals"] = accruals
	r.Components["avg_assets"] = avgAssets
	r.Components["net_income"] = netIncome
	r.Components["operating_cash_flow"] = operatingCashFlow

	r.Value = Round(ratio*100, 2)
	return r
}

// GrossProfitability is Novy-Marx gross profit over total assets, as a
// percentage.
func GrossProfitability(grossProfit, totalAssets float64) models.MetricResult {
	r := models.NewMetricResult()

	gpa := 0.0
	if totalAssets > 0 {
		gpa = grossProfit / totalAssets
	}

	switch {
	case gpa > 0.40:
		r.Interpretation = "Excellent gross profitability"
	case gpa > 0.25:
		r.Interpretation = "Good gross profitability"
	case gpa > 0.15:
		r.Interpretation = "Average gross profitability"
	default:
		r.Interpretation = "Low gross profitability"
	}

	r.Components["gross_profit"] = grossProfit
	r.Components["total_assets"] = totalAssets
	r.Value = Round(gpa*100, 2)
	return r
}

// FCFConversion measures free cash flow against EBITDA and net income. Value
// is FCF/EBITDA as a percentage.
func FCFConversion(freeCashFlow, ebitda, netIncome float64) models.MetricResult {
	r := models.NewMetricResult()

	fcfToEBITDA := 0.0
	if ebitda > 0 {
		fcfToEBITDA = freeCashFlow / ebitda
	}
	fcfToNI := 0.0
	if netIncome > 0 {
		fcfToNI = freeCashFlow / netIncome
	}

	r.Components["fcf_to_ebitda"] = Round(fcfToEBITDA*100, 1)
	r.Components["fcf_to_net_income"] = Round(fcfToNI*100, 1)

	switch {
	case fcfToEBITDA >= 1.0:
		r.Interpretation = "Excellent - FCF exceeds EBITDA"
		r.AddFlag(models.Positive("Excellent cash conversion - FCF exceeds EBITDA"))
	case fcfToEBITDA >= 0.8:
		r.Interpretation = "Healthy - Strong cash conversion"
	case fcfToEBITDA >= 0.5:
		r.Interpretation = "Moderate - Some cash leakage"
		r.AddFlag(models.Warning("Below 80% FCF conversion - investigate working capital or capex"))
	default:
		r.Interpretation = "Poor - Weak cash conversion"
		r.AddFlag(models.Critical("Low FCF conversion - earnings not translating to cash"))
	}

	if fcfToNI < 1.0 && netIncome > 0 {
		r.AddFlag(models.Warning("Cash conversion ratio <1 - cash flow lags earnings"))
	}

	r.Value = Round(fcfToEBITDA*100, 1)
	return r
}
