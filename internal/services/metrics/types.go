// Package metrics provides pure calculation functions for financial health
// and valuation metrics. All functions are stateless, perform no I/O and
// return a result for every numeric input; zero denominators resolve to the
// documented per-metric default.
package metrics

// Trend classifies a growth series.
type Trend string

const (
	TrendStrongUp         Trend = "strong_up"
	TrendUp               Trend = "up"
	TrendStable           Trend = "stable"
	TrendDown             Trend = "down"
	TrendStrongDown       Trend = "strong_down"
	TrendVolatile         Trend = "volatile"
	TrendInsufficientData Trend = "insufficient_data"
)

// Altman zones and distress probabilities, exposed through result labels.
const (
	ZoneSafe     = "safe"
	ZoneGrey     = "grey"
	ZoneDistress = "distress"

	ProbabilityLow      = "low"
	ProbabilityModerate = "moderate"
	ProbabilityHigh     = "high"
	ProbabilityVeryHigh = "very_high"
)

// Label keys used on MetricResult.Labels.
const (
	LabelZone        = "zone"
	LabelProbability = "probability"
	LabelTrend       = "trend"
	LabelRating      = "rating"
	LabelModel       = "model"
)

// PiotroskiPeriod is the per-period input to the F-Score.
type PiotroskiPeriod struct {
	NetIncome          float64
	OperatingCashFlow  float64
	TotalAssets        float64
	LongTermDebt       float64
	CurrentAssets      float64
	CurrentLiabilities float64
	SharesOutstanding  float64
	GrossProfit        float64
	Revenue            float64
}

// AltmanInput feeds the Z-Score.
type AltmanInput struct {
	WorkingCapital   float64
	RetainedEarnings float64
	EBIT             float64
	MarketCap        float64
	Revenue          float64
	TotalAssets      float64
	TotalLiabilities float64
	Manufacturing    bool
}

// OhlsonInput feeds the O-Score.
type OhlsonInput struct {
	TotalAssets         float64
	TotalLiabilities    float64
	WorkingCapital      float64
	CurrentLiabilities  float64
	NetIncome           float64
	FundsFromOperations float64
	NetIncomePrev       float64
	// GNPDeflator scales total assets; zero is treated as 1.
	GNPDeflator float64
}

// BeneishPeriod is the per-period input to the M-Score.
type BeneishPeriod struct {
	Receivables   float64
	Revenue       float64
	GrossProfit   float64
	TotalAssets   float64
	PPE           float64
	Depreciation  float64
	SGA           float64
	TotalDebt     float64
	CurrentAssets float64
}

// BeneishInput carries both periods plus the accrual inputs.
type BeneishInput struct {
	Current           BeneishPeriod
	Previous          BeneishPeriod
	NetIncome         float64
	OperatingCashFlow float64
}

// MagicFormulaInput feeds the Greenblatt combined score.
type MagicFormulaInput struct {
	EBIT            float64
	EnterpriseValue float64
	PPENet          float64
	WorkingCapital  float64
}

// ShareholderYieldInput uses cash flow statement signs: outflows negative.
type ShareholderYieldInput struct {
	DividendsPaid     float64
	SharesRepurchased float64
	SharesIssued      float64
	DebtRepaid        float64
	MarketCap         float64
}

// OwnerEarningsInput feeds Buffett's owner earnings.
type OwnerEarningsInput struct {
	NetIncome            float64
	Depreciation         float64
	Amortization         float64
	Capex                float64
	WorkingCapitalChange float64
	SharesOutstanding    float64
}

// DuPontInput feeds the five-factor ROE decomposition.
type DuPontInput struct {
	NetIncome          float64
	EBT                float64
	EBIT               float64
	Revenue            float64
	TotalAssets        float64
	ShareholdersEquity float64
}

// CreditInput feeds the credit risk score.
type CreditInput struct {
	EBITDA             float64
	InterestExpense    float64
	TotalDebt          float64
	Cash               float64
	CurrentAssets      float64
	CurrentLiabilities float64
	FreeCashFlow       float64
	Capex              float64
	ShortTermDebt      float64
}

// ROICInput feeds return on average invested capital.
type ROICInput struct {
	EBIT          float64
	TaxRate       float64
	Equity        float64
	TotalDebt     float64
	Cash          float64
	EquityPrev    float64
	TotalDebtPrev float64
	CashPrev      float64
}

// GrahamInput feeds the Graham number and net-net figures.
type GrahamInput struct {
	EPS               float64
	BookValuePerShare float64
	CurrentAssets     float64
	TotalLiabilities  float64
	PreferredStock    float64
	SharesOutstanding float64
	Cash              float64
	Receivables       float64
	Inventory         float64
	CurrentPrice      float64
}

// ValuationInput feeds the standard valuation ratios.
type ValuationInput struct {
	Price             float64
	EPS               float64
	EPSGrowthRate     float64
	BookValuePerShare float64
	Revenue           float64
	EBITDA            float64
	FreeCashFlow      float64
	DividendPerShare  float64
	SharesOutstanding float64
	TotalDebt         float64
	Cash              float64
}
