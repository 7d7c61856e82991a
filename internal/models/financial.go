package models

import "fmt"

const (
	PeriodAnnual    = "annual"
	PeriodQuarterly = "quarterly"
)

// FinancialPeriod holds one fiscal period's canonical statement facts.
// Numeric fields are zero when the source omitted them. WorkingCapital is
// set once by NewFinancialPeriod and never recomputed.
type FinancialPeriod struct {
	Period        string `json:"period"`
	FiscalYear    int    `json:"fiscal_year"`
	FiscalQuarter *int   `json:"fiscal_quarter,omitempty"`
	ReportDate    string `json:"report_date"`

	// Income statement
	Revenue                     float64 `json:"revenue"`
	CostOfRevenue               float64 `json:"cost_of_revenue"`
	GrossProfit                 float64 `json:"gross_profit"`
	OperatingExpenses           float64 `json:"operating_expenses"`
	SGAExpense                  float64 `json:"sga_expense"`
	RDExpense                   float64 `json:"rd_expense"`
	Depreciation                float64 `json:"depreciation"`
	Amortization                float64 `json:"amortization"`
	DepreciationAndAmortization float64 `json:"depreciation_and_amortization"`
	OperatingIncome             float64 `json:"operating_income"`
	EBIT                        float64 `json:"ebit"`
	EBITDA                      float64 `json:"ebitda"`
	InterestExpense             float64 `json:"interest_expense"`
	EBT                         float64 `json:"ebt"`
	IncomeTax                   float64 `json:"income_tax"`
	NetIncome                   float64 `json:"net_income"`
	EPS                         float64 `json:"eps"`
	SharesOutstanding           float64 `json:"shares_outstanding"`
	SharesOutstandingDiluted    float64 `json:"shares_outstanding_diluted"`

	// Balance sheet
	Cash                 float64 `json:"cash"`
	ShortTermInvestments float64 `json:"short_term_investments"`
	AccountsReceivable   float64 `json:"accounts_receivable"`
	Inventory            float64 `json:"inventory"`
	CurrentAssets        float64 `json:"current_assets"`
	PPEGross             float64 `json:"ppe_gross"`
	PPENet               float64 `json:"ppe_net"`
	Goodwill             float64 `json:"goodwill"`
	IntangibleAssets     float64 `json:"intangible_assets"`
	TotalAssets          float64 `json:"total_assets"`
	AccountsPayable      float64 `json:"accounts_payable"`
	ShortTermDebt        float64 `json:"short_term_debt"`
	CurrentLiabilities   float64 `json:"current_liabilities"`
	LongTermDebt         float64 `json:"long_term_debt"`
	TotalDebt            float64 `json:"total_debt"`
	TotalLiabilities     float64 `json:"total_liabilities"`
	ShareholdersEquity   float64 `json:"shareholders_equity"`
	RetainedEarnings     float64 `json:"retained_earnings"`

	// Cash flow statement
	OperatingCashFlow float64 `json:"operating_cash_flow"`
	Capex             float64 `json:"capex"`
	FreeCashFlow      float64 `json:"free_cash_flow"`
	DividendsPaid     float64 `json:"dividends_paid"`
	SharesRepurchased float64 `json:"shares_repurchased"`
	SharesIssued      float64 `json:"shares_issued"`
	DebtRepaid        float64 `json:"debt_repaid"`
	DebtIssued        float64 `json:"debt_issued"`

	WorkingCapital float64 `json:"working_capital"`
}

// NewFinancialPeriod finalizes p: derived fields are filled in and working
// capital is fixed from current assets and liabilities.
func NewFinancialPeriod(p FinancialPeriod) FinancialPeriod {
	if p.Depreciation == 0 {
		p.Depreciation = p.DepreciationAndAmortization
	}
	if p.DepreciationAndAmortization == 0 {
		p.DepreciationAndAmortization = p.Depreciation + p.Amortization
	}
	if p.FreeCashFlow == 0 && p.OperatingCashFlow != 0 {
		p.FreeCashFlow = p.OperatingCashFlow - p.Capex
	}
	p.WorkingCapital = p.CurrentAssets - p.CurrentLiabilities
	return p
}

// Label renders the period as "2024" or "2024-Q3".
func (p FinancialPeriod) Label() string {
	if p.FiscalQuarter != nil {
		return fmt.Sprintf("%d-Q%d", p.FiscalYear, *p.FiscalQuarter)
	}
	return fmt.Sprintf("%d", p.FiscalYear)
}

// IsEmpty reports whether the period carries no fiscal year, which is how the
// aggregator represents "no data".
func (p FinancialPeriod) IsEmpty() bool {
	return p.FiscalYear == 0
}

// MetricsData holds ratios the data source computed itself. They are passed
// through and never recomputed. Nil means the source did not supply it.
type MetricsData struct {
	PE                  *float64 `json:"pe,omitempty"`
	PB                  *float64 `json:"pb,omitempty"`
	PS                  *float64 `json:"ps,omitempty"`
	EVToEBITDA          *float64 `json:"ev_to_ebitda,omitempty"`
	EVToRevenue         *float64 `json:"ev_to_revenue,omitempty"`
	PEGRatio            *float64 `json:"peg_ratio,omitempty"`
	FCFYield            *float64 `json:"fcf_yield,omitempty"`
	GrossMargin         *float64 `json:"gross_margin,omitempty"`
	OperatingMargin     *float64 `json:"operating_margin,omitempty"`
	NetMargin           *float64 `json:"net_margin,omitempty"`
	ROE                 *float64 `json:"roe,omitempty"`
	ROA                 *float64 `json:"roa,omitempty"`
	ROIC                *float64 `json:"roic,omitempty"`
	AssetTurnover       *float64 `json:"asset_turnover,omitempty"`
	InventoryTurnover   *float64 `json:"inventory_turnover,omitempty"`
	ReceivablesTurnover *float64 `json:"receivables_turnover,omitempty"`
	DSO                 *float64 `json:"dso,omitempty"`
	CurrentRatio        *float64 `json:"current_ratio,omitempty"`
	QuickRatio          *float64 `json:"quick_ratio,omitempty"`
	CashRatio           *float64 `json:"cash_ratio,omitempty"`
	DebtToEquity        *float64 `json:"debt_to_equity,omitempty"`
	DebtToAssets        *float64 `json:"debt_to_assets,omitempty"`
	InterestCoverage    *float64 `json:"interest_coverage,omitempty"`
	RevenueGrowth       *float64 `json:"revenue_growth,omitempty"`
	EPSGrowth           *float64 `json:"eps_growth,omitempty"`
	FCFGrowth           *float64 `json:"fcf_growth,omitempty"`
	EPS                 *float64 `json:"eps,omitempty"`
	BookValuePerShare   *float64 `json:"book_value_per_share,omitempty"`
	FCFPerShare         *float64 `json:"fcf_per_share,omitempty"`
	DividendPerShare    *float64 `json:"dividend_per_share,omitempty"`
}

// PricePoint is one entry of a price history series.
type PricePoint struct {
	Date   string  `json:"date"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume,omitempty"`
}

// PriceData is the market snapshot for the company.
type PriceData struct {
	CurrentPrice      float64      `json:"current_price"`
	MarketCap         float64      `json:"market_cap"`
	SharesOutstanding float64      `json:"shares_outstanding"`
	EnterpriseValue   float64      `json:"enterprise_value"`
	AvgVolume         float64      `json:"avg_volume"`
	High52Week        float64      `json:"high_52_week"`
	Low52Week         float64      `json:"low_52_week"`
	History           []PricePoint `json:"history,omitempty"`
}

// Holding is one institutional position report.
type Holding struct {
	Investor        string  `json:"investor"`
	SharesHeld      float64 `json:"shares_held"`
	MarketValue     float64 `json:"market_value"`
	PortfolioWeight float64 `json:"portfolio_weight"`
	ChangeInShares  float64 `json:"change_in_shares"`
	ChangePercent   float64 `json:"change_percent"`
	ReportDate      string  `json:"report_date"`
	QuartersHeld    int     `json:"quarters_held"`
}

const (
	TransactionBuy  = "buy"
	TransactionSell = "sell"
)

// InsiderTrade is one insider transaction. TransactionType is "buy", "sell"
// or the lowercased source value when it could not be classified.
type InsiderTrade struct {
	Name            string  `json:"name"`
	Title           string  `json:"title"`
	TransactionType string  `json:"transaction_type"`
	Shares          float64 `json:"shares"`
	Price           float64 `json:"price"`
	Value           float64 `json:"value"`
	Date            string  `json:"date"`
}

// CompanyDataset is a company's full extracted state for one analysis run.
type CompanyDataset struct {
	Ticker      string `json:"ticker"`
	CompanyName string `json:"company_name"`
	Sector      string `json:"sector"`
	Industry    string `json:"industry"`

	Annual    []FinancialPeriod `json:"annual"`    // most recent first
	Quarterly []FinancialPeriod `json:"quarterly"` // most recent first

	Metrics          MetricsData          `json:"metrics"`
	Price            PriceData            `json:"price"`
	Holdings         map[string][]Holding `json:"holdings,omitempty"`
	InsiderTrades    []InsiderTrade       `json:"insider_trades,omitempty"`
	EPSEstimates     map[string]float64   `json:"eps_estimates,omitempty"`
	DataCompleteness float64              `json:"data_completeness"`
}

// LatestAnnual returns the most recent annual period, if any.
func (d *CompanyDataset) LatestAnnual() (FinancialPeriod, bool) {
	if d == nil || len(d.Annual) == 0 {
		return FinancialPeriod{}, false
	}
	return d.Annual[0], true
}
