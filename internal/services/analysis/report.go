package analysis

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/finsight/internal/models"
	"github.com/ternarybob/finsight/internal/services/metrics"
)

const notAvailable = "N/A"

// reportWriter accumulates report lines. A section heading is held back until
// the first line after it, so empty sections leave no trace. Opening a new
// section discards an unwritten heading.
type reportWriter struct {
	lines   []string
	pending string
}

func (w *reportWriter) add(format string, args ...interface{}) {
	if w.pending != "" {
		w.lines = append(w.lines, w.pending)
		w.pending = ""
	}
	if len(args) == 0 {
		w.lines = append(w.lines, format)
		return
	}
	w.lines = append(w.lines, fmt.Sprintf(format, args...))
}

func (w *reportWriter) section(heading string) {
	w.pending = heading
}

func (w *reportWriter) blank() {
	w.add("")
}

func (w *reportWriter) String() string {
	return strings.Join(w.lines, "\n")
}

// num renders a float the way a plain number is written in the report:
// shortest form, with a trailing ".0" for whole numbers.
func num(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func component(r *models.MetricResult, name string) string {
	if v, ok := r.Component(name); ok {
		return num(v)
	}
	return notAvailable
}

func slotValue(r *models.MetricResult) string {
	if r == nil {
		return notAvailable
	}
	return num(r.Value)
}

// RenderReport renders the analysis as the Markdown context report handed to
// downstream analysts.
func RenderReport(result *models.AnalysisResult) string {
	w := &reportWriter{}
	w.add("# Pre-Calculated Metrics for %s", result.Ticker)
	w.add("Company: %s", result.CompanyName)
	w.add("Analysis Date: %s", result.AnalysisDate.Format(time.RFC3339))
	w.blank()

	a := result.Analysis
	if a == nil {
		return w.String()
	}

	writeComposite(w, a)
	writeQuality(w, a)
	writeValueCreation(w, a)
	writeShareholderReturns(w, a)
	writeDuPont(w, a)
	writeSustainableGrowth(w, a)
	writeCredit(w, a)
	writeGrowthTrends(w, a)
	writeValuation(w, a)
	writeBenchmarks(w, a)

	writeFlagList(w, "## ⚠️ RED FLAGS", a.RedFlags)
	writeFlagList(w, "## ✓ GREEN FLAGS", a.GreenFlags)

	w.section("")
	w.add("## Overall Quality Score: %s/100", num(a.QualityScore))
	return w.String()
}

func writeFlagList(w *reportWriter, heading string, flags []models.Flag) {
	w.section(heading)
	if len(flags) == 0 {
		return
	}
	for _, f := range flags {
		w.add("- %s", f.Message)
	}
	w.blank()
}

func writeFlagsLine(w *reportWriter, r *models.MetricResult) {
	if len(r.Flags) > 0 {
		w.add("Flags: %s", strings.Join(r.FlagMessages(), ", "))
	}
}

func writeComposite(w *reportWriter, a *models.ComprehensiveAnalysis) {
	w.section("## Composite Scores")

	if r := a.Piotroski; r != nil {
		w.add("### Piotroski F-Score: %d/9", int(r.Value))
		w.add("Interpretation: %s", r.Interpretation)
		writeFlagsLine(w, r)
		w.blank()
	}
	if r := a.AltmanZ; r != nil {
		w.add("### Altman Z-Score: %s", num(r.Value))
		w.add("Interpretation: %s", r.Interpretation)
		writeFlagsLine(w, r)
		w.blank()
	}
	if r := a.BeneishM; r != nil {
		w.add("### Beneish M-Score: %s", num(r.Value))
		w.add("Interpretation: %s", r.Interpretation)
		writeFlagsLine(w, r)
		w.blank()
	}
	if r := a.OhlsonO; r != nil {
		w.add("### Ohlson O-Score (Bankruptcy Probability): %s", num(r.Value))
		w.add("Interpretation: %s", r.Interpretation)
		w.blank()
	}
	if r := a.MagicFormula; r != nil {
		w.add("### Magic Formula (Earnings Yield + ROIC): %s", num(r.Value))
		w.add("Interpretation: %s", r.Interpretation)
		w.add("  - Earnings Yield: %s%%", component(r, "earnings_yield"))
		w.add("  - Return on Tangible Capital: %s%%", component(r, "roic"))
		w.blank()
	}
}

func writeQuality(w *reportWriter, a *models.ComprehensiveAnalysis) {
	w.section("## Quality Metrics")

	if r := a.SloanAccrual; r != nil {
		w.add("### Sloan Accrual Ratio: %s%%", num(r.Value))
		w.add("Interpretation: %s", r.Interpretation)
		w.blank()
	}
	if r := a.FCFConversion; r != nil {
		w.add("### FCF Conversion: %s%%", num(r.Value))
		w.add("Interpretation: %s", r.Interpretation)
		w.blank()
	}
	if r := a.GrossProfitability; r != nil {
		w.add("### Gross Profitability (GP/Assets): %s%%", num(r.Value))
		w.add("Interpretation: %s", r.Interpretation)
		w.blank()
	}
}

func writeValueCreation(w *reportWriter, a *models.ComprehensiveAnalysis) {
	w.section("## Value Creation")

	if r := a.OwnerEarnings; r != nil {
		w.add("### Owner Earnings: $%s", metrics.FormatThousands(r.Value))
		w.add("Interpretation: %s", r.Interpretation)
		w.blank()
	}
	if r := a.EVA; r != nil {
		w.add("### Economic Value Added (EVA): $%s", metrics.FormatThousands(r.Value))
		w.add("Interpretation: %s", r.Interpretation)
		w.blank()
	}
	if r := a.ROIC; r != nil {
		w.add("### Return on Invested Capital: %s%%", num(r.Value))
		w.add("Interpretation: %s", r.Interpretation)
		w.blank()
	}
}

func writeShareholderReturns(w *reportWriter, a *models.ComprehensiveAnalysis) {
	w.section("## Shareholder Returns")
	r := a.ShareholderYield
	if r == nil {
		return
	}
	w.add("### Total Shareholder Yield: %s%%", num(r.Value))
	w.add("Interpretation: %s", r.Interpretation)
	if len(r.Components) > 0 {
		w.add("  - Dividend Yield: %s%%", component(r, "dividend_yield"))
		w.add("  - Buyback Yield: %s%%", component(r, "buyback_yield"))
		w.add("  - Debt Paydown Yield: %s%%", component(r, "debt_paydown_yield"))
	}
	w.blank()
}

func writeDuPont(w *reportWriter, a *models.ComprehensiveAnalysis) {
	w.section("## ROE Decomposition (DuPont 5-Factor)")
	r := a.DuPont
	if r == nil {
		return
	}
	w.add("ROE: %s%%", num(r.Value))
	w.add("Analysis: %s", r.Interpretation)
	if len(r.Components) > 0 {
		w.add("  - Tax Burden: %s", component(r, "tax_burden"))
		w.add("  - Interest Burden: %s", component(r, "interest_burden"))
		w.add("  - EBIT Margin: %s%%", component(r, "ebit_margin"))
		w.add("  - Asset Turnover: %s", component(r, "asset_turnover"))
		w.add("  - Leverage: %sx", component(r, "leverage"))
	}
	w.blank()
}

func writeSustainableGrowth(w *reportWriter, a *models.ComprehensiveAnalysis) {
	w.section("## Sustainable Growth")
	r := a.SustainableGrowth
	if r == nil {
		return
	}
	w.add("Sustainable Growth Rate: %s%%", num(r.Value))
	w.add("Interpretation: %s", r.Interpretation)
	w.blank()
}

func writeCredit(w *reportWriter, a *models.ComprehensiveAnalysis) {
	w.section("## Credit Risk & Solvency")
	r := a.CreditRisk
	if r == nil {
		return
	}
	w.add("Credit Score (0-4): %d/4", int(r.Value))
	w.add("Interpretation: %s", r.Interpretation)
	if len(r.Components) > 0 {
		w.add("  - Interest Coverage: %sx", component(r, "interest_coverage"))
		w.add("  - DSCR (Proxy): %sx", component(r, "dscr_proxy"))
		w.add("  - Net Debt/EBITDA: %sx", component(r, "net_debt_to_ebitda"))
		w.add("  - Cash Ratio: %s", component(r, "cash_ratio"))
		runway := component(r, "runway_months")
		if label := r.Label("runway"); runway == notAvailable && label != "" {
			runway = label
		}
		w.add("  - Cash Runway: %s months", runway)
	}
	w.blank()
}

func writeTrend(w *reportWriter, title string, r *models.MetricResult) {
	w.add("### %s: %s", title, r.Label(metrics.LabelTrend))
	w.add("Average Growth: %s%%", num(r.Value))
	w.add("Interpretation: %s", r.Interpretation)
	writeFlagsLine(w, r)
	w.blank()
}

func writeGrowthTrends(w *reportWriter, a *models.ComprehensiveAnalysis) {
	w.section("## Growth Trends")

	if r := a.RevenueTrend; r != nil {
		writeTrend(w, "Revenue Trend", r)
	}
	if r := a.EarningsTrend; r != nil {
		writeTrend(w, "Earnings Trend", r)
	}
	if r := a.Growth; r != nil {
		w.add("### Multi-Year Growth: %s%% average recent revenue growth", num(r.Value))
		w.add("Interpretation: %s", r.Interpretation)
		w.add("  - Revenue CAGR (5yr): %s%%", component(r, "revenue_cagr_5yr"))
		w.add("  - Revenue CAGR (10yr): %s%%", component(r, "revenue_cagr_10yr"))
		w.add("  - EPS CAGR (5yr): %s%%", component(r, "eps_cagr_5yr"))
		w.add("  - EPS CAGR (10yr): %s%%", component(r, "eps_cagr_10yr"))
		w.add("  - Margin Trajectory: %s", r.Label("margin_trend"))
		w.blank()
	}
}

func writeValuation(w *reportWriter, a *models.ComprehensiveAnalysis) {
	w.section("## Valuation")

	if r := a.Valuation; r != nil {
		w.add("### Valuation Ratios")
		w.add("Interpretation: %s", r.Interpretation)
		w.add("  - P/E: %sx", component(r, "pe_ratio"))
		w.add("  - PEG: %s", component(r, "peg_ratio"))
		w.add("  - EV/EBITDA: %sx", component(r, "ev_to_ebitda"))
		w.add("  - Price/Book: %sx", component(r, "price_to_book"))
		w.add("  - Price/Sales: %sx", component(r, "price_to_sales"))
		w.add("  - FCF Yield: %s%%", component(r, "fcf_yield"))
		w.add("  - Dividend Yield: %s%%", component(r, "dividend_yield"))
		w.blank()
	}
	if r := a.Graham; r != nil {
		w.add("### Graham Valuation")
		w.add("Interpretation: %s", r.Interpretation)
		w.add("  - Graham Number: %s", component(r, "graham_number"))
		w.add("  - NCAV per Share: %s", component(r, "ncav_per_share"))
		w.add("  - Margin of Safety (Graham): %s%%", component(r, "margin_of_safety_graham"))
		w.blank()
	}
}

func writeBenchmarks(w *reportWriter, a *models.ComprehensiveAnalysis) {
	w.section("## Peer Benchmarks")
	if len(a.Benchmarks) == 0 {
		return
	}
	names := make([]string, 0, len(a.Benchmarks))
	for name := range a.Benchmarks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		b := a.Benchmarks[name]
		w.add("- %s: %s (percentile %s, z %s, %s%% vs median)",
			name, b.Interpretation, num(b.Percentile), num(b.ZScore), num(b.VsMedian))
	}
	w.blank()
}
