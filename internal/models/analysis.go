package models

import "time"

// MetricName identifies a slot in ComprehensiveAnalysis.
type MetricName string

const (
	MetricPiotroski          MetricName = "piotroski"
	MetricAltmanZ            MetricName = "altman_z"
	MetricOhlsonO            MetricName = "ohlson_o"
	MetricBeneishM           MetricName = "beneish_m"
	MetricMagicFormula       MetricName = "magic_formula"
	MetricSloanAccrual       MetricName = "sloan_accrual"
	MetricGrossProfitability MetricName = "gross_profitability"
	MetricFCFConversion      MetricName = "fcf_conversion"
	MetricShareholderYield   MetricName = "shareholder_yield"
	MetricEVA                MetricName = "eva"
	MetricOwnerEarnings      MetricName = "owner_earnings"
	MetricDuPont             MetricName = "dupont"
	MetricSustainableGrowth  MetricName = "sustainable_growth"
	MetricRevenueTrend       MetricName = "revenue_trend"
	MetricEarningsTrend      MetricName = "earnings_trend"
	MetricCreditRisk         MetricName = "credit_risk"
	MetricROIC               MetricName = "roic"
	MetricGraham             MetricName = "graham"
	MetricValuation          MetricName = "valuation"
	MetricGrowth             MetricName = "growth"
)

// ComprehensiveAnalysis bundles every metric computed for one run. A nil
// slot means the metric was not attempted or failed.
type ComprehensiveAnalysis struct {
	Piotroski          *MetricResult `json:"piotroski,omitempty"`
	AltmanZ            *MetricResult `json:"altman_z,omitempty"`
	OhlsonO            *MetricResult `json:"ohlson_o,omitempty"`
	BeneishM           *MetricResult `json:"beneish_m,omitempty"`
	MagicFormula       *MetricResult `json:"magic_formula,omitempty"`
	SloanAccrual       *MetricResult `json:"sloan_accrual,omitempty"`
	GrossProfitability *MetricResult `json:"gross_profitability,omitempty"`
	FCFConversion      *MetricResult `json:"fcf_conversion,omitempty"`
	ShareholderYield   *MetricResult `json:"shareholder_yield,omitempty"`
	EVA                *MetricResult `json:"eva,omitempty"`
	OwnerEarnings      *MetricResult `json:"owner_earnings,omitempty"`
	DuPont             *MetricResult `json:"dupont,omitempty"`
	SustainableGrowth  *MetricResult `json:"sustainable_growth,omitempty"`
	RevenueTrend       *MetricResult `json:"revenue_trend,omitempty"`
	EarningsTrend      *MetricResult `json:"earnings_trend,omitempty"`
	CreditRisk         *MetricResult `json:"credit_risk,omitempty"`
	ROIC               *MetricResult `json:"roic,omitempty"`
	Graham             *MetricResult `json:"graham,omitempty"`
	Valuation          *MetricResult `json:"valuation,omitempty"`
	Growth             *MetricResult `json:"growth,omitempty"`

	Benchmarks map[string]BenchmarkResult `json:"benchmarks,omitempty"`
	Failures   map[MetricName]string      `json:"failures,omitempty"`

	RedFlags     []Flag  `json:"red_flags"`
	GreenFlags   []Flag  `json:"green_flags"`
	QualityScore float64 `json:"quality_score"`
}

// NewComprehensiveAnalysis returns an empty analysis at the neutral score.
func NewComprehensiveAnalysis() *ComprehensiveAnalysis {
	return &ComprehensiveAnalysis{
		Benchmarks:   make(map[string]BenchmarkResult),
		Failures:     make(map[MetricName]string),
		RedFlags:     []Flag{},
		GreenFlags:   []Flag{},
		QualityScore: 50,
	}
}

func (a *ComprehensiveAnalysis) slot(name MetricName) **MetricResult {
	switch name {
	case MetricPiotroski:
		return &a.Piotroski
	case MetricAltmanZ:
		return &a.AltmanZ
	case MetricOhlsonO:
		return &a.OhlsonO
	case MetricBeneishM:
		return &a.BeneishM
	case MetricMagicFormula:
		return &a.MagicFormula
	case MetricSloanAccrual:
		return &a.SloanAccrual
	case MetricGrossProfitability:
		return &a.GrossProfitability
	case MetricFCFConversion:
		return &a.FCFConversion
	case MetricShareholderYield:
		return &a.ShareholderYield
	case MetricEVA:
		return &a.EVA
	case MetricOwnerEarnings:
		return &a.OwnerEarnings
	case MetricDuPont:
		return &a.DuPont
	case MetricSustainableGrowth:
		return &a.SustainableGrowth
	case MetricRevenueTrend:
		return &a.RevenueTrend
	case MetricEarningsTrend:
		return &a.EarningsTrend
	case MetricCreditRisk:
		return &a.CreditRisk
	case MetricROIC:
		return &a.ROIC
	case MetricGraham:
		return &a.Graham
	case MetricValuation:
		return &a.Valuation
	case MetricGrowth:
		return &a.Growth
	}
	return nil
}

// Get returns the result in a named slot, or nil.
func (a *ComprehensiveAnalysis) Get(name MetricName) *MetricResult {
	if a == nil {
		return nil
	}
	if s := a.slot(name); s != nil {
		return *s
	}
	return nil
}

// Set stores a result in a named slot. Unknown names are ignored.
func (a *ComprehensiveAnalysis) Set(name MetricName, r *MetricResult) {
	if s := a.slot(name); s != nil {
		*s = r
	}
}

// CompositeScores is the summary view of the headline composite metrics.
// Nil means the metric was not computed.
type CompositeScores struct {
	PiotroskiFScore    *float64 `json:"piotroski_f_score"`
	AltmanZScore       *float64 `json:"altman_z_score"`
	BeneishMScore      *float64 `json:"beneish_m_score"`
	OhlsonOProbability *float64 `json:"ohlson_o_probability"`
}

// Summary is the flat machine-readable view of one analysis run.
type Summary struct {
	Ticker               string          `json:"ticker"`
	CompanyName          string          `json:"company_name"`
	CurrentPrice         float64         `json:"current_price"`
	MarketCap            float64         `json:"market_cap"`
	DataPeriodsAnnual    int             `json:"data_periods_annual"`
	DataPeriodsQuarterly int             `json:"data_periods_quarterly"`
	CompositeScores      CompositeScores `json:"composite_scores"`
	QualityScore         float64         `json:"quality_score"`
	RedFlagCount         int             `json:"red_flag_count"`
	GreenFlagCount       int             `json:"green_flag_count"`
	FailedMetricCount    int             `json:"failed_metric_count"`
}

// AnalysisResult is the complete output of one analysis run.
type AnalysisResult struct {
	RunID            string                 `json:"run_id"`
	Ticker           string                 `json:"ticker"`
	CompanyName      string                 `json:"company_name"`
	AnalysisDate     time.Time              `json:"analysis_date"`
	Dataset          *CompanyDataset        `json:"dataset"`
	Analysis         *ComprehensiveAnalysis `json:"analysis"`
	Summary          Summary                `json:"summary"`
	DataQualityNotes []string               `json:"data_quality_notes"`
}
