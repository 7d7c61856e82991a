package metrics

import (
	"fmt"
	"math"
	"strings"

	"github.com/ternarybob/finsight/internal/models"
)

// PiotroskiFScore calculates the nine-signal F-Score from two consecutive periods.
// Ratios with a zero denominator evaluate to 0.
func PiotroskiFScore(cur, prev PiotroskiPeriod) models.MetricResult {
	r := models.NewMetricResult()

	roa := safeDiv(cur.NetIncome, cur.TotalAssets, 0)
	roaPrev := safeDiv(prev.NetIncome, prev.TotalAssets, 0)
	cfoRatio := safeDiv(cur.OperatingCashFlow, cur.TotalAssets, 0)

	leverage := safeDiv(cur.LongTermDebt, cur.TotalAssets, 0)
	leveragePrev := safeDiv(prev.LongTermDebt, prev.TotalAssets, 0)
	currentRatio := safeDiv(cur.CurrentAssets, cur.CurrentLiabilities, 0)
	currentRatioPrev := safeDiv(prev.CurrentAssets, prev.CurrentLiabilities, 0)

	margin := safeDiv(cur.GrossProfit, cur.Revenue, 0)
	marginPrev := safeDiv(prev.GrossProfit, prev.Revenue, 0)
	turnover := safeDiv(cur.Revenue, cur.TotalAssets, 0)
	turnoverPrev := safeDiv(prev.Revenue, prev.TotalAssets, 0)

	signals := []struct {
		name string
		pass bool
	}{
		{"f1_roa_positive", roa > 0},
		{"f2_cfo_positive", cfoRatio > 0},
		{"f3_roa_improving", roa > roaPrev},
		{"f4_accruals_quality", cfoRatio > roa},
		{"f5_leverage_decreasing", leverage < leveragePrev},
		{"f6_liquidity_improving", currentRatio > currentRatioPrev},
		{"f7_no_dilution", cur.SharesOutstanding <= prev.SharesOutstanding},
		{"f8_margin_improving", margin > marginPrev},
		{"f9_turnover_improving", turnover > turnoverPrev},
	}

	score := 0
	for _, s := range signals {
		if s.pass {
			r.Components[s.name] = 1
			score++
		} else {
			r.Components[s.name] = 0
		}
	}
	r.Value = float64(score)

	if roa <= 0 {
		r.AddFlag(models.Critical("Negative ROA - unprofitable"))
	}
	if cfoRatio <= roa && roa > 0 {
		r.AddFlag(models.Warning("CFO < Net Income - potential earnings quality issue"))
	}
	if prev.SharesOutstanding > 0 && cur.SharesOutstanding > prev.SharesOutstanding*1.05 {
		dilution := (cur.SharesOutstanding/prev.SharesOutstanding - 1) * 100
		r.AddFlag(models.Warning(fmt.Sprintf("Significant dilution: %.1f%% more shares", dilution)))
	}

	switch {
	case score >= 8:
		r.Interpretation = "Very Strong - High quality, consider buying"
		r.AddFlag(models.Positive(fmt.Sprintf("Strong fundamentals: F-Score %d/9", score)))
	case score >= 7:
		r.Interpretation = "Strong - Good financial health"
	case score >= 4:
		r.Interpretation = "Average - Mixed signals"
	default:
		r.Interpretation = "Weak - Poor financial health, avoid"
	}
	return r
}

// IsManufacturingSector reports whether the original Z-Score coefficients
// apply to a sector.
func IsManufacturingSector(sector string) bool {
	switch strings.ToLower(strings.TrimSpace(sector)) {
	case "industrials", "materials", "manufacturing":
		return true
	}
	return false
}

// AltmanZScore calculates the Altman Z-Score, using the original coefficients for
// manufacturers and the Z'' model otherwise.
func AltmanZScore(in AltmanInput) models.MetricResult {
	r := models.NewMetricResult()
	if in.TotalAssets == 0 {
		r.Value = 0
		r.Interpretation = "Cannot calculate - no assets"
		r.AddFlag(models.Info("Missing data"))
		r.SetLabel(LabelZone, ZoneDistress)
		r.SetLabel(LabelProbability, ProbabilityVeryHigh)
		return r
	}

	x1 := in.WorkingCapital / in.TotalAssets
	x2 := in.RetainedEarnings / in.TotalAssets
	x3 := in.EBIT / in.TotalAssets
	x4 := 10.0
	if in.TotalLiabilities > 0 {
		x4 = in.MarketCap / in.TotalLiabilities
	}
	x5 := in.Revenue / in.TotalAssets

	r.Components["x1_working_capital_ratio"] = Round(x1, 4)
	r.Components["x2_retained_earnings_ratio"] = Round(x2, 4)
	r.Components["x3_ebit_ratio"] = Round(x3, 4)
	r.Components["x4_market_to_liabilities"] = Round(x4, 4)
	r.Components["x5_asset_turnover"] = Round(x5, 4)

	var z, safe, grey float64
	distressMsg := "DISTRESS: High probability of bankruptcy"
	greyMsg := "Grey Zone - Moderate risk"
	if in.Manufacturing {
		z = 1.2*x1 + 1.4*x2 + 3.3*x3 + 0.6*x4 + 0.999*x5
		safe, grey = 2.99, 1.81
		distressMsg = "DISTRESS: High probability of bankruptcy within 2 years"
		greyMsg = "Grey Zone - Moderate risk, monitor closely"
		r.SetLabel(LabelModel, "manufacturing")
	} else {
		z = 6.56*x1 + 3.26*x2 + 6.72*x3 + 1.05*x4
		safe, grey = 2.60, 1.10
		r.SetLabel(LabelModel, "non_manufacturing")
	}

	switch {
	case z > safe:
		r.Interpretation = "Safe Zone - Low bankruptcy risk"
		r.SetLabel(LabelZone, ZoneSafe)
		r.SetLabel(LabelProbability, ProbabilityLow)
		r.AddFlag(models.Positive("Safe zone - low bankruptcy risk"))
	case z > grey:
		r.Interpretation = greyMsg
		r.SetLabel(LabelZone, ZoneGrey)
		r.SetLabel(LabelProbability, ProbabilityModerate)
		r.AddFlag(models.Warning("In grey zone - elevated bankruptcy risk"))
	default:
		r.Interpretation = "Distress Zone - High bankruptcy risk"
		r.SetLabel(LabelZone, ZoneDistress)
		veryHigh := (in.Manufacturing && z < 1.0) || (!in.Manufacturing && z < 0)
		if veryHigh {
			r.SetLabel(LabelProbability, ProbabilityVeryHigh)
		} else {
			r.SetLabel(LabelProbability, ProbabilityHigh)
		}
		// Critical severity; aggregates as a red flag.
		r.AddFlag(models.Critical(distressMsg))
	}

	if x1 < 0 {
		r.AddFlag(models.Critical("Negative working capital"))
	}
	if in.RetainedEarnings < 0 {
		r.AddFlag(models.Warning("Accumulated deficit (negative retained earnings)"))
	}
	if in.EBIT < 0 {
		r.AddFlag(models.Warning("Operating losses (negative EBIT)"))
	}

	r.Value = Round(z, 2)
	return r
}

// OhlsonOScore calculates the Ohlson O-Score and returns the implied bankruptcy
// probability as the value.
func OhlsonOScore(in OhlsonInput) models.MetricResult {
	r := models.NewMetricResult()
	if in.TotalAssets == 0 {
		r.Value = 1.0
		r.Interpretation = "Cannot calculate"
		r.AddFlag(models.Info("Missing data"))
		return r
	}

	deflator := in.GNPDeflator
	if deflator == 0 {
		deflator = 1
	}

	logTA := 0.0
	if in.TotalAssets > 0 {
		logTA = math.Log(in.TotalAssets / deflator)
	}
	tlta := in.TotalLiabilities / in.TotalAssets
	wcta := in.WorkingCapital / in.TotalAssets
	clca := 1.0
	if ca := in.WorkingCapital + in.CurrentLiabilities; ca > 0 {
		clca = in.CurrentLiabilities / ca
	}
	oeneg := 0.0
	if in.TotalLiabilities > in.TotalAssets {
		oeneg = 1
	}
	nita := in.NetIncome / in.TotalAssets
	ffota := 0.0
	if in.TotalLiabilities > 0 {
		ffota = in.FundsFromOperations / in.TotalLiabilities
	}
	intwo := 0.0
	if in.NetIncome < 0 && in.NetIncomePrev < 0 {
		intwo = 1
	}
	chin := 0.0
	if denom := math.Abs(in.NetIncome) + math.Abs(in.NetIncomePrev); denom > 0 {
		chin = (in.NetIncome - in.NetIncomePrev) / denom
	}

	score := -1.32 - 0.407*logTA + 6.03*tlta - 1.43*wcta + 0.0757*clca -
		2.37*nita - 1.83*ffota + 0.285*intwo - 1.72*oeneg - 0.521*chin
	probability := 1 / (1 + math.Exp(-score))

	r.Components["log_ta_gnp"] = Round(logTA, 4)
	r.Components["tlta"] = Round(tlta, 4)
	r.Components["wcta"] = Round(wcta, 4)
	r.Components["clca"] = Round(clca, 4)
	r.Components["oeneg"] = oeneg
	r.Components["nita"] = Round(nita, 4)
	r.Components["ffota"] = Round(ffota, 4)
	r.Components["intwo"] = intwo
	r.Components["chin"] = Round(chin, 4)

	switch {
	case probability > 0.5:
		r.Interpretation = fmt.Sprintf("High bankruptcy probability (%.1f%%)", probability*100)
		r.AddFlag(models.Critical("HIGH RISK: Ohlson model indicates >50% bankruptcy probability"))
	case probability > 0.3:
		r.Interpretation = fmt.Sprintf("Elevated bankruptcy risk (%.1f%%)", probability*100)
		r.AddFlag(models.Warning("Elevated bankruptcy risk - monitor closely"))
	default:
		r.Interpretation = fmt.Sprintf("Lower bankruptcy risk (%.1f%%)", probability*100)
	}

	if oeneg == 1 {
		r.AddFlag(models.Warning("Liabilities exceed assets (technically insolvent)"))
	}
	if intwo == 1 {
		r.AddFlag(models.Warning("Two consecutive years of losses"))
	}

	r.Value = Round(probability, 4)
	return r
}

// BeneishMScore calculates the eight-index earnings manipulation score. Index
// ratios with a zero denominator evaluate to 1.
func BeneishMScore(in BeneishInput) models.MetricResult {
	r := models.NewMetricResult()
	c, p := in.Current, in.Previous

	dsri := safeDiv(safeDiv(c.Receivables, c.Revenue, 1), safeDiv(p.Receivables, p.Revenue, 1), 1)

	gm := safeDiv(c.GrossProfit, c.Revenue, 1)
	gmPrev := safeDiv(p.GrossProfit, p.Revenue, 1)
	gmi := safeDiv(gmPrev, gm, 1)

	aq := 1 - safeDiv(c.CurrentAssets+c.PPE, c.TotalAssets, 1)
	// The prior-period asset quality uses current-period current assets.
	aqPrev := 1 - safeDiv(c.CurrentAssets+p.PPE, p.TotalAssets, 1)
	aqi := safeDiv(aq, aqPrev, 1)

	sgi := safeDiv(c.Revenue, p.Revenue, 1)

	depRate := safeDiv(c.Depreciation, c.Depreciation+c.PPE, 1)
	depRatePrev := safeDiv(p.Depreciation, p.Depreciation+p.PPE, 1)
	depi := safeDiv(depRatePrev, depRate, 1)

	sgai := safeDiv(safeDiv(c.SGA, c.Revenue, 1), safeDiv(p.SGA, p.Revenue, 1), 1)
	lvgi := safeDiv(safeDiv(c.TotalDebt, c.TotalAssets, 1), safeDiv(p.TotalDebt, p.TotalAssets, 1), 1)
	tata := safeDiv(in.NetIncome-in.OperatingCashFlow, c.TotalAssets, 1)

	m := -4.84 + 0.920*dsri + 0.528*gmi + 0.404*aqi + 0.892*sgi +
		0.115*depi - 0.172*sgai + 4.679*tata - 0.327*lvgi

	r.Components["dsri"] = Round(dsri, 3)
	r.Components["gmi"] = Round(gmi, 3)
	r.Components["aqi"] = Round(aqi, 3)
	r.Components["sgi"] = Round(sgi, 3)
	r.Components["depi"] = Round(depi, 3)
	r.Components["sgai"] = Round(sgai, 3)
	r.Components["tata"] = Round(tata, 3)
	r.Components["lvgi"] = Round(lvgi, 3)

	if dsri > 1.05 {
		r.AddFlag(models.Warning(fmt.Sprintf("DSRI=%.2f: Receivables growing faster than revenue", dsri)))
	}
	if gmi > 1.04 {
		r.AddFlag(models.Warning(fmt.Sprintf("GMI=%.2f: Gross margin deteriorating", gmi)))
	}
	if aqi > 1.0 {
		r.AddFlag(models.Warning(fmt.Sprintf("AQI=%.2f: Asset quality declining (more soft assets)", aqi)))
	}
	if depi > 1.0 {
		r.AddFlag(models.Warning(fmt.Sprintf("DEPI=%.2f: Depreciation slowing (extending asset lives)", depi)))
	}
	if tata > 0.05 {
		r.AddFlag(models.Warning(fmt.Sprintf("TATA=%.2f: High accruals - earnings quality concern", tata)))
	}
	if sgi > 1.5 {
		r.AddFlag(models.Warning(fmt.Sprintf("SGI=%.2f: Very high sales growth - scrutinize quality", sgi)))
	}

	switch {
	case m > -1.78:
		r.Interpretation = fmt.Sprintf("LIKELY MANIPULATOR (M=%.2f > -1.78)", m)
		r.Flags = append([]models.Flag{models.Critical("HIGH MANIPULATION RISK - Investigate earnings quality")}, r.Flags...)
	case m > -2.22:
		r.Interpretation = fmt.Sprintf("Grey Zone (M=%.2f) - Some concern", m)
	default:
		r.Interpretation = fmt.Sprintf("Unlikely Manipulator (M=%.2f)", m)
		r.AddFlag(models.Positive("Earnings quality: unlikely manipulator"))
	}

	r.Value = Round(m, 2)
	return r
}

// MagicFormula combines earnings yield (EBIT/EV) and return on tangible
// capital into one percentage score.
func MagicFormula(in MagicFormulaInput) models.MetricResult {
	r := models.NewMetricResult()

	earningsYield := 0.0
	if in.EnterpriseValue > 0 {
		earningsYield = in.EBIT / in.EnterpriseValue
	}
	tangible := in.PPENet + in.WorkingCapital
	roic := 0.0
	if tangible > 0 {
		roic = in.EBIT / tangible
	}

	r.Components["earnings_yield"] = Round(earningsYield*100, 2)
	r.Components["roic"] = Round(roic*100, 2)
	r.Components["tangible_capital"] = tangible

	switch {
	case earningsYield > 0.15 && roic > 0.25:
		r.Interpretation = "Strong Magic Formula candidate - high yield and ROIC"
	case earningsYield > 0.10 && roic > 0.15:
		r.Interpretation = "Good Magic Formula candidate"
	case earningsYield > 0.05 && roic > 0.10:
		r.Interpretation = "Average - moderate yield and ROIC"
	default:
		r.Interpretation = "Weak Magic Formula candidate"
	}

	if earningsYield < 0 {
		r.AddFlag(models.Critical("Negative earnings yield - unprofitable or overvalued"))
	}
	if roic < 0 {
		r.AddFlag(models.Critical("Negative ROIC - destroying capital"))
	}

	r.Value = Round(earningsYield*100+roic*100, 2)
	return r
}
