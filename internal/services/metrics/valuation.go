package metrics

import (
	"fmt"
	"math"

	"github.com/ternarybob/finsight/internal/models"
)

// GrahamValuation calculates the Graham number and net current asset value
// figures. Value is the Graham number, or 0 when EPS or book value is not
// positive.
func GrahamValuation(in GrahamInput) models.MetricResult {
	r := models.NewMetricResult()

	ncav := in.CurrentAssets - in.TotalLiabilities - in.PreferredStock
	ncavPerShare, conservative := 0.0, 0.0
	if in.SharesOutstanding > 0 {
		ncavPerShare = ncav / in.SharesOutstanding
		adjusted := in.Cash + 0.75*in.Receivables + 0.5*in.Inventory
		conservative = (adjusted - in.TotalLiabilities - in.PreferredStock) / in.SharesOutstanding
	}
	buyBelowNCAV := ncavPerShare * 0.67
	mosNCAV := 0.0
	if ncavPerShare > 0 {
		mosNCAV = (ncavPerShare - in.CurrentPrice) / ncavPerShare
	}

	r.Components["ncav_per_share"] = Round(ncavPerShare, 2)
	r.Components["ncav_conservative"] = Round(conservative, 2)
	r.Components["buy_below_ncav"] = Round(buyBelowNCAV, 2)
	r.Components["margin_of_safety_ncav"] = Round(mosNCAV*100, 2)

	if in.EPS > 0 && in.BookValuePerShare > 0 {
		graham := math.Sqrt(22.5 * in.EPS * in.BookValuePerShare)
		mos := (graham - in.CurrentPrice) / graham
		r.Components["graham_number"] = Round(graham, 2)
		r.Components["margin_of_safety_graham"] = Round(mos*100, 2)
		r.Value = Round(graham, 2)

		if in.CurrentPrice > 0 && in.CurrentPrice < graham {
			r.Interpretation = fmt.Sprintf("Trading below Graham number (%.1f%% margin of safety)", mos*100)
		} else {
			r.Interpretation = fmt.Sprintf("Trading above Graham number of $%.2f", graham)
		}
	} else {
		r.Interpretation = "Graham number not applicable (non-positive EPS or book value)"
		r.DataQuality = 0.5
	}

	if buyBelowNCAV > 0 && in.CurrentPrice > 0 && in.CurrentPrice < buyBelowNCAV {
		r.AddFlag(models.Positive("Net-net: price below two-thirds of NCAV"))
	}
	if ncavPerShare < 0 {
		r.AddFlag(models.Info("Negative net current asset value"))
	}
	return r
}

// ValuationRatios calculates standard multiples. Ratios whose denominator is
// not positive are omitted from the components.
func ValuationRatios(in ValuationInput) models.MetricResult {
	r := models.NewMetricResult()

	marketCap := in.Price * in.SharesOutstanding
	ev := marketCap + in.TotalDebt - in.Cash
	r.Components["market_cap"] = marketCap
	r.Components["enterprise_value"] = ev

	ratios := []struct {
		name string
		ok   bool
		v    func() float64
	}{
		{"pe_ratio", in.EPS > 0, func() float64 { return in.Price / in.EPS }},
		{"peg_ratio", in.EPS > 0 && in.EPSGrowthRate > 0, func() float64 { return (in.Price / in.EPS) / (in.EPSGrowthRate * 100) }},
		{"price_to_sales", in.Revenue > 0, func() float64 { return marketCap / in.Revenue }},
		{"price_to_book", in.BookValuePerShare > 0, func() float64 { return in.Price / in.BookValuePerShare }},
		{"ev_to_ebitda", in.EBITDA > 0, func() float64 { return ev / in.EBITDA }},
		{"ev_to_revenue", in.Revenue > 0, func() float64 { return ev / in.Revenue }},
		{"fcf_yield", marketCap > 0, func() float64 { return in.FreeCashFlow / marketCap * 100 }},
		{"earnings_yield", in.Price > 0, func() float64 { return in.EPS / in.Price * 100 }},
		{"dividend_yield", in.Price > 0, func() float64 { return in.DividendPerShare / in.Price * 100 }},
	}

	present := 0
	for _, ratio := range ratios {
		if !ratio.ok {
			continue
		}
		r.Components[ratio.name] = Round(ratio.v(), 2)
		present++
	}
	r.DataQuality = float64(present) / float64(len(ratios))

	pe, ok := r.Components["pe_ratio"]
	switch {
	case !ok:
		r.Interpretation = "P/E not meaningful (non-positive earnings)"
	case pe < 15:
		r.Interpretation = fmt.Sprintf("Value territory (P/E %.1fx)", pe)
		r.Value = pe
	case pe < 25:
		r.Interpretation = fmt.Sprintf("Fairly valued (P/E %.1fx)", pe)
		r.Value = pe
	default:
		r.Interpretation = fmt.Sprintf("Growth premium (P/E %.1fx)", pe)
		r.Value = pe
	}

	if fcfYield, ok := r.Components["fcf_yield"]; ok && fcfYield < 0 {
		r.AddFlag(models.Warning("Negative free cash flow yield"))
	}
	return r
}
