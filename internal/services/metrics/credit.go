package metrics

import (
	"fmt"
	"math"

	"github.com/ternarybob/finsight/internal/models"
)

// RunwayNotApplicable is the runway label when free cash flow is not negative.
const RunwayNotApplicable = "N/A (Positive FCF)"

// CreditRisk scores solvency and liquidity from 0 to 4: interest coverage,
// a DSCR proxy, net debt to EBITDA and the cash ratio each add one point.
func CreditRisk(in CreditInput) models.MetricResult {
	r := models.NewMetricResult()

	coverage := 0.0
	switch {
	case in.InterestExpense > 0:
		coverage = in.EBITDA / in.InterestExpense
	case in.EBITDA > 0:
		coverage = 100
	}

	debtService := in.InterestExpense + in.ShortTermDebt
	cashAfterCapex := in.EBITDA - in.Capex
	dscr := 0.0
	switch {
	case debtService > 0:
		dscr = cashAfterCapex / debtService
	case cashAfterCapex > 0:
		dscr = 100
	}

	netDebt := in.TotalDebt - in.Cash
	netDebtToEBITDA := 0.0
	switch {
	case in.EBITDA > 0:
		netDebtToEBITDA = netDebt / in.EBITDA
	case netDebt > 0:
		netDebtToEBITDA = 100
	}

	cashRatio := 0.0
	if in.CurrentLiabilities > 0 {
		cashRatio = in.Cash / in.CurrentLiabilities
	}

	if in.FreeCashFlow < 0 {
		monthlyBurn := math.Abs(in.FreeCashFlow) / 12
		runway := in.Cash / monthlyBurn
		if runway < 12 {
			r.AddFlag(models.Critical(fmt.Sprintf("CRITICAL: Less than %.1f months of cash runway based on current FCF burn", runway)))
		}
		r.Components["runway_months"] = Round(runway, 1)
	} else {
		r.SetLabel("runway", RunwayNotApplicable)
	}

	score := 0
	if coverage > 5 {
		score++
	}
	if dscr > 1.25 {
		score++
	}
	if netDebtToEBITDA < 3 {
		score++
	}
	if cashRatio > 0.5 {
		score++
	}

	if coverage < 1.5 {
		r.AddFlag(models.Warning(fmt.Sprintf("Interest Coverage low (%.1fx) - struggle to pay interest", coverage)))
	}
	if dscr < 1.0 {
		r.AddFlag(models.Warning(fmt.Sprintf("DSCR < 1.0 (%.1fx) - Cash flow insufficient for debt service", dscr)))
	}
	if netDebtToEBITDA > 4.0 {
		r.AddFlag(models.Warning(fmt.Sprintf("High Leverage: Net Debt/EBITDA is %.1fx", netDebtToEBITDA)))
	}

	switch {
	case score >= 4:
		r.Interpretation = "Strong Credit Profile - Low risk of default"
		r.AddFlag(models.Positive("Strong credit profile - all solvency checks pass"))
	case score >= 2:
		r.Interpretation = "Moderate Credit Profile - Watch leverage/liquidity"
	default:
		r.Interpretation = "Weak Credit Profile - Elevated default risk"
		r.AddFlag(models.Critical("HIGH CREDIT RISK: Multiple solvency/liquidity warnings"))
	}

	r.Components["interest_coverage"] = Round(coverage, 2)
	r.Components["dscr_proxy"] = Round(dscr, 2)
	r.Components["net_debt_to_ebitda"] = Round(netDebtToEBITDA, 2)
	r.Components["cash_ratio"] = Round(cashRatio, 2)

	r.Value = float64(score)
	return r
}
