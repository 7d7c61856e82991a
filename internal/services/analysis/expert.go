package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ternarybob/finsight/internal/models"
	"github.com/ternarybob/finsight/internal/services/metrics"
)

// ExpertProfiles lists the profiles FormatForExpert recognises.
var ExpertProfiles = func() []string {
	names := make([]string, 0, len(expertEmphasis))
	for name := range expertEmphasis {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}()

type emphasisFunc func(result *models.AnalysisResult, a *models.ComprehensiveAnalysis) []string

var expertEmphasis = map[string]emphasisFunc{
	"buffett": func(_ *models.AnalysisResult, a *models.ComprehensiveAnalysis) []string {
		return []string{
			"\n## Buffett-Relevant Highlights",
			"- Owner Earnings: See above",
			fmt.Sprintf("- FCF Conversion: %s%%", slotValue(a.FCFConversion)),
			"- ROE Quality: See DuPont analysis above",
		}
	},
	"graham": func(_ *models.AnalysisResult, a *models.ComprehensiveAnalysis) []string {
		lines := []string{
			"\n## Graham-Relevant Highlights",
			fmt.Sprintf("- Altman Z-Score (Safety): %s", slotValue(a.AltmanZ)),
			"- Earnings Quality: See Beneish M-Score and Sloan Accrual above",
		}
		if v, ok := a.Graham.Component("graham_number"); ok {
			lines = append(lines, fmt.Sprintf("- Graham Number: $%.2f", v))
		}
		return lines
	},
	"lynch": func(_ *models.AnalysisResult, a *models.ComprehensiveAnalysis) []string {
		lines := []string{
			"\n## Lynch-Relevant Highlights",
			"- Growth Trends: See revenue/earnings trend analysis above",
			fmt.Sprintf("- Sustainable Growth Rate: %s%%", slotValue(a.SustainableGrowth)),
		}
		if v, ok := a.Valuation.Component("peg_ratio"); ok {
			lines = append(lines, fmt.Sprintf("- PEG Ratio: %s", num(v)))
		}
		return lines
	},
	"wood": func(_ *models.AnalysisResult, a *models.ComprehensiveAnalysis) []string {
		return []string{
			"\n## Wood-Relevant Highlights",
			fmt.Sprintf("- Gross Profitability: %s%%", slotValue(a.GrossProfitability)),
			"- Growth Trajectory: See trend analysis above",
		}
	},
	"soros": func(result *models.AnalysisResult, _ *models.ComprehensiveAnalysis) []string {
		marketCap := ""
		if result.Dataset != nil {
			marketCap = "- Market Cap: $" + metrics.FormatThousands(result.Dataset.Price.MarketCap)
		}
		return []string{
			"\n## Soros-Relevant Highlights",
			marketCap,
			"- (Price action and sentiment data from other sources)",
		}
	},
	"dalio": func(_ *models.AnalysisResult, a *models.ComprehensiveAnalysis) []string {
		return []string{
			"\n## Dalio-Relevant Highlights",
			fmt.Sprintf("- Altman Z-Score (Stress): %s", slotValue(a.AltmanZ)),
			fmt.Sprintf("- Ohlson O-Score (Bankruptcy Risk): %s", slotValue(a.OhlsonO)),
		}
	},
	"burry": func(_ *models.AnalysisResult, a *models.ComprehensiveAnalysis) []string {
		return []string{
			"\n## Burry-Relevant Highlights",
			fmt.Sprintf("- Beneish M-Score (Manipulation): %s", slotValue(a.BeneishM)),
			fmt.Sprintf("- Sloan Accrual Ratio: %s%%", slotValue(a.SloanAccrual)),
			fmt.Sprintf("- All Red Flags: %d", len(a.RedFlags)),
		}
	},
	"credit_analyst": func(_ *models.AnalysisResult, a *models.ComprehensiveAnalysis) []string {
		score := notAvailable
		if a.CreditRisk != nil {
			score = fmt.Sprintf("%d", int(a.CreditRisk.Value))
		}
		coverage := notAvailable
		if a.CreditRisk != nil {
			coverage = component(a.CreditRisk, "interest_coverage")
		}
		return []string{
			"\n## Credit Analyst Highlights",
			fmt.Sprintf("- Credit Profile Score: %s/4", score),
			fmt.Sprintf("- Altman Z-Score: %s", slotValue(a.AltmanZ)),
			fmt.Sprintf("- Ohlson O-Score: %s", slotValue(a.OhlsonO)),
			fmt.Sprintf("- Interest Coverage: %sx", coverage),
		}
	},
}

// FormatForExpert appends a profile-specific highlight block to the base
// report. Profile names match case-insensitively; an unknown profile yields
// the base report unchanged.
func FormatForExpert(result *models.AnalysisResult, profile string) string {
	base := RenderReport(result)

	emphasis, ok := expertEmphasis[strings.ToLower(strings.TrimSpace(profile))]
	if !ok {
		return base
	}
	a := result.Analysis
	if a == nil {
		a = models.NewComprehensiveAnalysis()
	}
	return base + strings.Join(emphasis(result, a), "\n")
}

// IsExpertProfile reports whether profile names a known expert view.
func IsExpertProfile(profile string) bool {
	_, ok := expertEmphasis[strings.ToLower(strings.TrimSpace(profile))]
	return ok
}
