package metrics

import (
	"fmt"
	"math"

	"github.com/ternarybob/finsight/internal/models"
)

// SustainableGrowthRate is ROE times the retention ratio. Both inputs are
// decimals; value is a percentage.
func SustainableGrowthRate(roe, payoutRatio float64) models.MetricResult {
	r := models.NewMetricResult()

	retention := 1 - payoutRatio
	sgr := roe * retention

	r.Components["roe"] = Round(roe*100, 2)
	r.Components["retention_ratio"] = Round(retention*100, 2)
	r.Components["payout_ratio"] = Round(payoutRatio*100, 2)

	switch {
	case sgr > 0.20:
		r.Interpretation = fmt.Sprintf("High sustainable growth (%.1f%%) - can grow rapidly internally", sgr*100)
	case sgr > 0.10:
		r.Interpretation = fmt.Sprintf("Moderate sustainable growth (%.1f%%)", sgr*100)
	case sgr > 0:
		r.Interpretation = fmt.Sprintf("Low sustainable growth (%.1f%%) - limited internal growth capacity", sgr*100)
	default:
		r.Interpretation = "Negative SGR - cannot sustain current operations"
		r.AddFlag(models.Critical("Negative sustainable growth rate"))
	}

	if payoutRatio > 1.0 {
		r.AddFlag(models.Warning("Payout ratio >100% - paying more than earnings (unsustainable)"))
	}

	r.Value = Round(sgr*100, 2)
	return r
}

// growthRates returns period-over-period changes, skipping zero bases.
func growthRates(values []float64) []float64 {
	rates := make([]float64, 0, len(values))
	for i := 1; i < len(values); i++ {
		prev := values[i-1]
		if prev == 0 {
			continue
		}
		rates = append(rates, (values[i]-prev)/math.Abs(prev))
	}
	return rates
}

// allSigned reports whether every rate is strictly positive (sign 1) or
// strictly negative (sign -1).
func allSigned(rates []float64, sign float64) bool {
	for _, g := range rates {
		if g*sign <= 0 {
			return false
		}
	}
	return len(rates) > 0
}

// AnalyzeTrend classifies an oldest-first series by comparing the mean
// growth of its second half with its first half. A strictly rising series
// classifies as up or strong_up and a strictly falling one as down or
// strong_down unless volatile. Value is the average growth rate as a
// percentage; Series holds each growth rate.
func AnalyzeTrend(values []float64, name string) models.MetricResult {
	r := models.NewMetricResult()
	if len(values) < 3 {
		r.Interpretation = "Insufficient data for trend analysis"
		r.AddFlag(models.Info("Need at least 3 data points"))
		r.SetLabel(LabelTrend, string(TrendInsufficientData))
		return r
	}

	rates := growthRates(values)
	if len(rates) < 2 {
		r.Interpretation = "Insufficient growth data"
		r.SetLabel(LabelTrend, string(TrendInsufficientData))
		return r
	}

	avg := Mean(rates)
	volatility := SampleStddev(rates)
	mid := len(rates) / 2
	recent := Mean(rates[mid:])
	earlier := Mean(rates[:mid])

	r.Components["avg_growth_rate"] = Round(avg*100, 2)
	r.Components["recent_growth"] = Round(recent*100, 2)
	r.Components["earlier_growth"] = Round(earlier*100, 2)
	r.Components["volatility"] = Round(volatility*100, 2)
	r.Series = make([]float64, len(rates))
	for i, g := range rates {
		r.Series[i] = Round(g*100, 2)
	}

	var trend Trend
	switch {
	case volatility > 0.30:
		trend = TrendVolatile
		r.Interpretation = fmt.Sprintf("%s: Volatile (±%.0f%%)", name, volatility*100)
	case recent > earlier*1.3:
		trend = TrendStrongUp
		r.Interpretation = fmt.Sprintf("%s: Accelerating strongly", name)
	case recent > earlier*1.1:
		trend = TrendUp
		r.Interpretation = fmt.Sprintf("%s: Accelerating", name)
	case recent < earlier*0.7:
		trend = TrendStrongDown
		r.Interpretation = fmt.Sprintf("%s: Decelerating sharply", name)
	case recent < earlier*0.9:
		trend = TrendDown
		r.Interpretation = fmt.Sprintf("%s: Decelerating", name)
	default:
		trend = TrendStable
		r.Interpretation = fmt.Sprintf("%s: Stable growth", name)
	}
	decelerating := trend == TrendDown || trend == TrendStrongDown

	// A series moving the same way every period keeps that direction.
	switch {
	case allSigned(rates, 1) && (trend == TrendStable || decelerating):
		if decelerating {
			r.Interpretation = fmt.Sprintf("%s: Growing, decelerating", name)
		} else {
			r.Interpretation = fmt.Sprintf("%s: Steady growth", name)
		}
		trend = TrendUp
	case allSigned(rates, -1) && (trend == TrendStable || trend == TrendUp || trend == TrendStrongUp):
		r.Interpretation = fmt.Sprintf("%s: Declining", name)
		trend = TrendDown
	}
	r.SetLabel(LabelTrend, string(trend))

	if decelerating {
		r.AddFlag(models.Warning(fmt.Sprintf("Growth deceleration: %.1f%% → %.1f%%", earlier*100, recent*100)))
	}

	r.Value = avg * 100
	return r
}

// Growth trajectory classes reported by GrowthAnalysis.
const (
	TrajectoryAccelerating = "accelerating"
	TrajectoryDecelerating = "decelerating"
	TrajectorySteady       = "steady"
	TrajectoryVolatile     = "volatile"
)

// growthTrajectory compares the last three growth rates with the first
// three, using population volatility.
func growthTrajectory(values []float64) string {
	if len(values) < 3 {
		return string(TrendInsufficientData)
	}
	rates := growthRates(values)
	if len(rates) < 2 {
		return string(TrendInsufficientData)
	}

	recentCount := min(3, len(rates))
	earlierCount := min(3, len(rates)-recentCount)
	recent := Mean(rates[len(rates)-recentCount:])
	earlier := rates[0]
	if earlierCount > 0 {
		earlier = Mean(rates[:earlierCount])
	}

	switch {
	case Stddev(rates) > 0.3:
		return TrajectoryVolatile
	case recent > earlier*1.2:
		return TrajectoryAccelerating
	case recent < earlier*0.8:
		return TrajectoryDecelerating
	}
	return TrajectorySteady
}

// cagrOver returns the CAGR across the last years+1 values of an
// oldest-first series, or nil when the series is too short.
func cagrOver(values []float64, years int) *float64 {
	if len(values) < years+1 {
		return nil
	}
	return CAGR(values[len(values)-years-1], values[len(values)-1], float64(years))
}

// GrowthAnalysis summarises multi-year revenue and EPS growth from
// oldest-first series. Value is the mean of the most recent (up to five)
// revenue growth rates as a percentage.
func GrowthAnalysis(revenues, eps, margins []float64) models.MetricResult {
	r := models.NewMetricResult()

	cagrs := []struct {
		name string
		v    *float64
	}{
		{"revenue_cagr_5yr", cagrOver(revenues, 5)},
		{"revenue_cagr_10yr", cagrOver(revenues, 10)},
		{"eps_cagr_5yr", cagrOver(eps, 5)},
		{"eps_cagr_10yr", cagrOver(eps, 10)},
	}
	available := 0
	for _, c := range cagrs {
		if c.v != nil {
			r.Components[c.name] = Round(*c.v*100, 2)
			available++
		}
	}
	r.DataQuality = float64(available) / float64(len(cagrs))

	revenueTrajectory := growthTrajectory(revenues)
	r.SetLabel("revenue_trend", revenueTrajectory)
	r.SetLabel("eps_trend", growthTrajectory(eps))
	r.SetLabel("margin_trend", growthTrajectory(margins))

	var recent []float64
	for i := 1; i < min(6, len(revenues)); i++ {
		prev := revenues[len(revenues)-i-1]
		if prev != 0 {
			recent = append(recent, (revenues[len(revenues)-i]-prev)/math.Abs(prev))
		}
	}
	for _, g := range recent {
		r.Series = append(r.Series, Round(g*100, 2))
	}
	r.Value = Round(Mean(recent)*100, 2)

	if cagr, ok := r.Components["revenue_cagr_5yr"]; ok {
		r.Interpretation = fmt.Sprintf("Revenue %s, 5-year CAGR %.1f%%", revenueTrajectory, cagr)
	} else {
		r.Interpretation = fmt.Sprintf("Revenue %s", revenueTrajectory)
	}
	if revenueTrajectory == TrajectoryDecelerating {
		r.AddFlag(models.Warning("Revenue growth decelerating"))
	}
	return r
}
