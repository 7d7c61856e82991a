package metrics

import (
	"fmt"

	"github.com/ternarybob/finsight/internal/models"
)

// DefaultTaxRate applies when pre-tax income is zero.
const DefaultTaxRate = 0.25

// EffectiveTaxRate returns income tax over pre-tax income, or DefaultTaxRate
// when pre-tax income is zero.
func EffectiveTaxRate(incomeTax, ebt float64) float64 {
	if ebt == 0 {
		return DefaultTaxRate
	}
	return incomeTax / ebt
}

// EconomicValueAdded calculates Economic Value Added: NOPAT less a capital charge at wacc
// on invested capital.
func EconomicValueAdded(nopat, investedCapital, wacc float64) models.MetricResult {
	r := models.NewMetricResult()

	charge := investedCapital * wacc
	eva := nopat - charge
	spread := 0.0
	if investedCapital > 0 {
		spread = nopat/investedCapital - wacc
	}

	r.Components["nopat"] = nopat
	r.Components["invested_capital"] = investedCapital
	r.Components["wacc"] = Round(wacc*100, 2)
	r.Components["capital_charge"] = charge
	r.Components["roic_minus_wacc"] = Round(spread*100, 2)

	if eva > 0 {
		r.Interpretation = fmt.Sprintf("Creating value: $%s above cost of capital", FormatThousands(eva))
		r.AddFlag(models.Positive("Positive EVA - returns exceed cost of capital"))
	} else {
		r.Interpretation = fmt.Sprintf("Destroying value: $%s below cost of capital", FormatThousands(-eva))
		r.AddFlag(models.Critical("Negative EVA - returns below cost of capital"))
	}

	r.Value = eva
	return r
}

// OwnerEarnings is net income plus D&A less capex and the increase in
// working capital.
func OwnerEarnings(in OwnerEarningsInput) models.MetricResult {
	r := models.NewMetricResult()

	da := in.Depreciation + in.Amortization
	oe := in.NetIncome + da - in.Capex - in.WorkingCapitalChange
	perShare := 0.0
	if in.SharesOutstanding > 0 {
		perShare = oe / in.SharesOutstanding
	}

	r.Components["net_income"] = in.NetIncome
	r.Components["da"] = da
	r.Components["capex"] = in.Capex
	r.Components["wc_change"] = in.WorkingCapitalChange
	r.Components["per_share"] = Round(perShare, 2)

	if oe < 0 {
		r.Interpretation = fmt.Sprintf("Negative Owner Earnings: $%s", FormatThousands(oe))
		r.AddFlag(models.Critical("Negative Owner Earnings - consuming cash to maintain operations"))
	} else {
		r.Interpretation = fmt.Sprintf("Positive Owner Earnings: $%s", FormatThousands(oe))
	}

	r.Value = oe
	return r
}

// ROIC is after-tax EBIT over average invested capital (equity plus debt
// less cash) across two periods. Value is a percentage.
func ROIC(in ROICInput) models.MetricResult {
	r := models.NewMetricResult()

	nopat := in.EBIT * (1 - in.TaxRate)
	ic := in.Equity + in.TotalDebt - in.Cash
	icPrev := in.EquityPrev + in.TotalDebtPrev - in.CashPrev
	avg := (ic + icPrev) / 2
	roic := 0.0
	if avg > 0 {
		roic = nopat / avg
	}

	r.Components["nopat"] = nopat
	r.Components["invested_capital"] = ic
	r.Components["avg_invested_capital"] = avg

	switch {
	case roic > 0.20:
		r.Interpretation = "Excellent return on invested capital"
		r.SetLabel(LabelRating, "excellent")
	case roic > 0.15:
		r.Interpretation = "Good return on invested capital"
		r.SetLabel(LabelRating, "good")
	case roic > 0.10:
		r.Interpretation = "Average return on invested capital"
		r.SetLabel(LabelRating, "average")
	default:
		r.Interpretation = "Poor return on invested capital"
		r.SetLabel(LabelRating, "poor")
	}
	if avg <= 0 {
		r.DataQuality = 0.5
	}

	r.Value = Round(roic*100, 2)
	return r
}
