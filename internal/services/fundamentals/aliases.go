package fundamentals

import (
	"math"

	"github.com/ternarybob/finsight/internal/models"
)

// fieldAlias maps one canonical field to the ordered raw keys that may carry
// it. The first present non-zero key wins.
type fieldAlias struct {
	Field string
	Keys  []string
	set   func(p *models.FinancialPeriod, v float64)
}

var incomeAliases = []fieldAlias{
	{"revenue", []string{"revenue"}, func(p *models.FinancialPeriod, v float64) { p.Revenue = v }},
	{"cost_of_revenue", []string{"cost_of_revenue"}, func(p *models.FinancialPeriod, v float64) { p.CostOfRevenue = v }},
	{"gross_profit", []string{"gross_profit"}, func(p *models.FinancialPeriod, v float64) { p.GrossProfit = v }},
	{"operating_expenses", []string{"operating_expenses"}, func(p *models.FinancialPeriod, v float64) { p.OperatingExpenses = v }},
	{"sga_expense", []string{"selling_general_and_administrative_expenses"}, func(p *models.FinancialPeriod, v float64) { p.SGAExpense = v }},
	{"rd_expense", []string{"research_and_development_expenses"}, func(p *models.FinancialPeriod, v float64) { p.RDExpense = v }},
	{"depreciation", []string{"depreciation", "depreciation_expense"}, func(p *models.FinancialPeriod, v float64) { p.Depreciation = v }},
	{"amortization", []string{"amortization", "amortization_expense"}, func(p *models.FinancialPeriod, v float64) { p.Amortization = v }},
	{"depreciation_and_amortization", []string{"depreciation_and_amortization"}, func(p *models.FinancialPeriod, v float64) { p.DepreciationAndAmortization = v }},
	{"operating_income", []string{"operating_income"}, func(p *models.FinancialPeriod, v float64) { p.OperatingIncome = v }},
	{"ebit", []string{"ebit", "operating_income"}, func(p *models.FinancialPeriod, v float64) { p.EBIT = v }},
	{"ebitda", []string{"ebitda"}, func(p *models.FinancialPeriod, v float64) { p.EBITDA = v }},
	{"interest_expense", []string{"interest_expense"}, func(p *models.FinancialPeriod, v float64) { p.InterestExpense = v }},
	{"ebt", []string{"income_before_tax"}, func(p *models.FinancialPeriod, v float64) { p.EBT = v }},
	{"income_tax", []string{"income_tax_expense"}, func(p *models.FinancialPeriod, v float64) { p.IncomeTax = v }},
	{"net_income", []string{"net_income"}, func(p *models.FinancialPeriod, v float64) { p.NetIncome = v }},
	{"eps", []string{"eps", "earnings_per_share"}, func(p *models.FinancialPeriod, v float64) { p.EPS = v }},
	{"shares_outstanding", []string{"weighted_average_shares_outstanding"}, func(p *models.FinancialPeriod, v float64) { p.SharesOutstanding = v }},
	{"shares_outstanding_diluted", []string{"weighted_average_shares_outstanding_diluted"}, func(p *models.FinancialPeriod, v float64) { p.SharesOutstandingDiluted = v }},
}

var balanceAliases = []fieldAlias{
	{"cash", []string{"cash_and_cash_equivalents"}, func(p *models.FinancialPeriod, v float64) { p.Cash = v }},
	{"short_term_investments", []string{"short_term_investments"}, func(p *models.FinancialPeriod, v float64) { p.ShortTermInvestments = v }},
	{"accounts_receivable", []string{"accounts_receivable", "net_receivables"}, func(p *models.FinancialPeriod, v float64) { p.AccountsReceivable = v }},
	{"inventory", []string{"inventory"}, func(p *models.FinancialPeriod, v float64) { p.Inventory = v }},
	{"current_assets", []string{"total_current_assets"}, func(p *models.FinancialPeriod, v float64) { p.CurrentAssets = v }},
	{"ppe_gross", []string{"property_plant_and_equipment"}, func(p *models.FinancialPeriod, v float64) { p.PPEGross = v }},
	{"ppe_net", []string{"property_plant_and_equipment_net", "net_ppe"}, func(p *models.FinancialPeriod, v float64) { p.PPENet = v }},
	{"goodwill", []string{"goodwill"}, func(p *models.FinancialPeriod, v float64) { p.Goodwill = v }},
	{"intangible_assets", []string{"intangible_assets"}, func(p *models.FinancialPeriod, v float64) { p.IntangibleAssets = v }},
	{"total_assets", []string{"total_assets"}, func(p *models.FinancialPeriod, v float64) { p.TotalAssets = v }},
	{"accounts_payable", []string{"accounts_payable"}, func(p *models.FinancialPeriod, v float64) { p.AccountsPayable = v }},
	{"short_term_debt", []string{"short_term_debt"}, func(p *models.FinancialPeriod, v float64) { p.ShortTermDebt = v }},
	{"current_liabilities", []string{"total_current_liabilities"}, func(p *models.FinancialPeriod, v float64) { p.CurrentLiabilities = v }},
	{"long_term_debt", []string{"long_term_debt"}, func(p *models.FinancialPeriod, v float64) { p.LongTermDebt = v }},
	{"total_debt", []string{"total_debt"}, func(p *models.FinancialPeriod, v float64) { p.TotalDebt = v }},
	{"total_liabilities", []string{"total_liabilities"}, func(p *models.FinancialPeriod, v float64) { p.TotalLiabilities = v }},
	{"shareholders_equity", []string{"total_stockholders_equity", "total_equity"}, func(p *models.FinancialPeriod, v float64) { p.ShareholdersEquity = v }},
	{"retained_earnings", []string{"retained_earnings"}, func(p *models.FinancialPeriod, v float64) { p.RetainedEarnings = v }},
}

var cashFlowAliases = []fieldAlias{
	{"operating_cash_flow", []string{"operating_cash_flow", "net_cash_provided_by_operating_activities"}, func(p *models.FinancialPeriod, v float64) { p.OperatingCashFlow = v }},
	{"capex", []string{"capital_expenditure", "capital_expenditures"}, func(p *models.FinancialPeriod, v float64) { p.Capex = math.Abs(v) }},
	{"free_cash_flow", []string{"free_cash_flow"}, func(p *models.FinancialPeriod, v float64) { p.FreeCashFlow = v }},
	{"dividends_paid", []string{"dividends_paid", "payment_of_dividends"}, func(p *models.FinancialPeriod, v float64) { p.DividendsPaid = v }},
	{"shares_repurchased", []string{"common_stock_repurchased"}, func(p *models.FinancialPeriod, v float64) { p.SharesRepurchased = v }},
	{"shares_issued", []string{"common_stock_issued"}, func(p *models.FinancialPeriod, v float64) { p.SharesIssued = v }},
	{"debt_repaid", []string{"debt_repayment"}, func(p *models.FinancialPeriod, v float64) { p.DebtRepaid = v }},
	{"debt_issued", []string{"debt_issuance"}, func(p *models.FinancialPeriod, v float64) { p.DebtIssued = v }},
}

// metricAlias resolves one optional pass-through ratio.
type metricAlias struct {
	Keys []string
	set  func(m *models.MetricsData, v *float64)
}

var metricsAliases = []metricAlias{
	{[]string{"price_to_earnings_ratio", "pe_ratio"}, func(m *models.MetricsData, v *float64) { m.PE = v }},
	{[]string{"price_to_book_ratio", "pb_ratio"}, func(m *models.MetricsData, v *float64) { m.PB = v }},
	{[]string{"price_to_sales_ratio", "ps_ratio"}, func(m *models.MetricsData, v *float64) { m.PS = v }},
	{[]string{"enterprise_value_to_ebitda", "ev_to_ebitda"}, func(m *models.MetricsData, v *float64) { m.EVToEBITDA = v }},
	{[]string{"enterprise_value_to_revenue", "ev_to_revenue"}, func(m *models.MetricsData, v *float64) { m.EVToRevenue = v }},
	{[]string{"peg_ratio"}, func(m *models.MetricsData, v *float64) { m.PEGRatio = v }},
	{[]string{"free_cash_flow_yield", "fcf_yield"}, func(m *models.MetricsData, v *float64) { m.FCFYield = v }},
	{[]string{"gross_profit_margin", "gross_margin"}, func(m *models.MetricsData, v *float64) { m.GrossMargin = v }},
	{[]string{"operating_profit_margin", "operating_margin"}, func(m *models.MetricsData, v *float64) { m.OperatingMargin = v }},
	{[]string{"net_profit_margin", "net_margin"}, func(m *models.MetricsData, v *float64) { m.NetMargin = v }},
	{[]string{"return_on_equity", "roe"}, func(m *models.MetricsData, v *float64) { m.ROE = v }},
	{[]string{"return_on_assets", "roa"}, func(m *models.MetricsData, v *float64) { m.ROA = v }},
	{[]string{"return_on_invested_capital", "roic"}, func(m *models.MetricsData, v *float64) { m.ROIC = v }},
	{[]string{"asset_turnover"}, func(m *models.MetricsData, v *float64) { m.AssetTurnover = v }},
	{[]string{"inventory_turnover"}, func(m *models.MetricsData, v *float64) { m.InventoryTurnover = v }},
	{[]string{"receivables_turnover"}, func(m *models.MetricsData, v *float64) { m.ReceivablesTurnover = v }},
	{[]string{"days_sales_outstanding", "dso"}, func(m *models.MetricsData, v *float64) { m.DSO = v }},
	{[]string{"current_ratio"}, func(m *models.MetricsData, v *float64) { m.CurrentRatio = v }},
	{[]string{"quick_ratio"}, func(m *models.MetricsData, v *float64) { m.QuickRatio = v }},
	{[]string{"cash_ratio"}, func(m *models.MetricsData, v *float64) { m.CashRatio = v }},
	{[]string{"debt_to_equity", "debt_to_equity_ratio"}, func(m *models.MetricsData, v *float64) { m.DebtToEquity = v }},
	{[]string{"debt_to_assets", "debt_to_assets_ratio"}, func(m *models.MetricsData, v *float64) { m.DebtToAssets = v }},
	{[]string{"interest_coverage", "interest_coverage_ratio"}, func(m *models.MetricsData, v *float64) { m.InterestCoverage = v }},
	{[]string{"revenue_growth"}, func(m *models.MetricsData, v *float64) { m.RevenueGrowth = v }},
	{[]string{"eps_growth", "earnings_per_share_growth"}, func(m *models.MetricsData, v *float64) { m.EPSGrowth = v }},
	{[]string{"free_cash_flow_growth"}, func(m *models.MetricsData, v *float64) { m.FCFGrowth = v }},
	{[]string{"earnings_per_share", "eps"}, func(m *models.MetricsData, v *float64) { m.EPS = v }},
	{[]string{"book_value_per_share"}, func(m *models.MetricsData, v *float64) { m.BookValuePerShare = v }},
	{[]string{"free_cash_flow_per_share"}, func(m *models.MetricsData, v *float64) { m.FCFPerShare = v }},
	{[]string{"dividend_per_share"}, func(m *models.MetricsData, v *float64) { m.DividendPerShare = v }},
}

func applyAliases(table []fieldAlias, raw models.RawRecord, p *models.FinancialPeriod) {
	for _, a := range table {
		a.set(p, raw.Number(a.Keys...))
	}
}

// AliasKeys returns the ordered source keys for a canonical statement field,
// or nil when the field is not part of any statement table.
func AliasKeys(field string) []string {
	for _, table := range [][]fieldAlias{incomeAliases, balanceAliases, cashFlowAliases} {
		for _, a := range table {
			if a.Field == field {
				return a.Keys
			}
		}
	}
	return nil
}
