// Package fundamentals turns raw provider statements into canonical
// FinancialPeriod records and assembles them into a CompanyDataset.
// Nothing here performs I/O and missing data never produces an error.
package fundamentals

import (
	"github.com/ternarybob/finsight/internal/models"
)

// NormalizePeriod builds one FinancialPeriod from an income, balance sheet
// and cash flow record of the same period. Any of the records may be nil.
func NormalizePeriod(income, balance, cashFlow models.RawRecord, period string) models.FinancialPeriod {
	p := models.FinancialPeriod{Period: period}

	applyAliases(incomeAliases, income, &p)
	applyAliases(balanceAliases, balance, &p)
	applyAliases(cashFlowAliases, cashFlow, &p)

	if year, ok := income.Int("fiscal_year"); ok {
		p.FiscalYear = year
	}
	if q, ok := income.Int("fiscal_quarter"); ok && q != 0 {
		p.FiscalQuarter = &q
	}
	p.ReportDate = income.String("report_period", "date")

	return models.NewFinancialPeriod(p)
}
