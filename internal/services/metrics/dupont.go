package metrics

import (
	"fmt"
	"strings"

	"github.com/ternarybob/finsight/internal/models"
)

// DuPontFiveFactor decomposes ROE into tax burden, interest burden, EBIT margin, asset
// turnover and leverage. Value is the directly computed ROE percentage.
func DuPontFiveFactor(in DuPontInput) models.MetricResult {
	r := models.NewMetricResult()

	taxBurden := safeDiv(in.NetIncome, in.EBT, 0)
	interestBurden := safeDiv(in.EBT, in.EBIT, 0)
	ebitMargin := safeDiv(in.EBIT, in.Revenue, 0)
	turnover := safeDiv(in.Revenue, in.TotalAssets, 0)
	leverage := safeDiv(in.TotalAssets, in.ShareholdersEquity, 0)

	roeDecomposed := taxBurden * interestBurden * ebitMargin * turnover * leverage
	roeDirect := safeDiv(in.NetIncome, in.ShareholdersEquity, 0)

	r.Components["tax_burden"] = Round(taxBurden, 3)
	r.Components["interest_burden"] = Round(interestBurden, 3)
	r.Components["ebit_margin"] = Round(ebitMargin*100, 2)
	r.Components["asset_turnover"] = Round(turnover, 3)
	r.Components["leverage"] = Round(leverage, 2)
	r.Components["roe_decomposed"] = Round(roeDecomposed*100, 2)
	r.Components["roe_direct"] = Round(roeDirect*100, 2)

	if leverage > 3 {
		r.AddFlag(models.Warning(fmt.Sprintf("High leverage (%.1fx) - ROE may be artificially inflated", leverage)))
	}
	if interestBurden < 0.7 {
		r.AddFlag(models.Warning(fmt.Sprintf("Interest burden (%.0f%%) - significant interest expense", interestBurden*100)))
	}
	if taxBurden < 0.6 {
		r.AddFlag(models.Warning(fmt.Sprintf("High effective tax rate (%.0f%%)", (1-taxBurden)*100)))
	}

	var drivers []string
	if ebitMargin > 0.15 {
		drivers = append(drivers, "strong margins")
	}
	if turnover > 1.0 {
		drivers = append(drivers, "efficient asset use")
	}
	if leverage > 2 {
		drivers = append(drivers, "leverage")
	}
	driverText := "no standout drivers"
	if len(drivers) > 0 {
		driverText = strings.Join(drivers, ", ")
	}
	r.Interpretation = fmt.Sprintf("ROE of %.1f%% driven by: %s", roeDirect*100, driverText)

	r.Value = Round(roeDirect*100, 2)
	return r
}
