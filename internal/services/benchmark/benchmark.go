// Package benchmark ranks a company metric against a peer distribution.
package benchmark

import (
	"fmt"
	"math"
	"sort"

	"github.com/ternarybob/finsight/internal/models"
	"github.com/ternarybob/finsight/internal/services/metrics"
)

// LowerIsBetter lists peer metrics where a smaller value ranks higher.
// Every other metric is ranked higher-is-better.
var LowerIsBetter = map[string]bool{
	"debt_to_equity":     true,
	"net_debt_to_ebitda": true,
	"sloan_accrual":      true,
	"beneish_m":          true,
	"ohlson_o":           true,
	"pe_ratio":           true,
	"ev_to_ebitda":       true,
}

// Percentile is the share of peers strictly below value, times 100. An
// empty peer set yields 50.
func Percentile(value float64, peers []float64) float64 {
	if len(peers) == 0 {
		return 50
	}
	below := 0
	for _, p := range peers {
		if p < value {
			below++
		}
	}
	return float64(below) / float64(len(peers)) * 100
}

// ZScore standardises value against the peer sample. Zero with fewer than
// two peers or no dispersion.
func ZScore(value float64, peers []float64) float64 {
	if len(peers) < 2 {
		return 0
	}
	sd := metrics.SampleStddev(peers)
	if sd == 0 {
		return 0
	}
	return (value - metrics.Mean(peers)) / sd
}

// Benchmark compares value with peers and describes its quintile.
func Benchmark(value float64, peers []float64, name string, higherIsBetter bool) models.BenchmarkResult {
	if len(peers) == 0 {
		return models.BenchmarkResult{
			Value:          value,
			Percentile:     50,
			Interpretation: "No peer data available",
		}
	}

	pct := Percentile(value, peers)
	z := ZScore(value, peers)
	med := metrics.Median(peers)
	vsMedian := 0.0
	if med != 0 {
		vsMedian = (value - med) / math.Abs(med) * 100
	}

	return models.BenchmarkResult{
		Value:          value,
		Percentile:     metrics.Round(pct, 1),
		ZScore:         metrics.Round(z, 2),
		VsMedian:       metrics.Round(vsMedian, 1),
		Interpretation: interpret(pct, name, higherIsBetter),
	}
}

func interpret(pct float64, name string, higherIsBetter bool) string {
	if higherIsBetter {
		switch {
		case pct >= 80:
			return fmt.Sprintf("Top quintile (%.0fth percentile)", pct)
		case pct >= 60:
			return fmt.Sprintf("Above average (%.0fth percentile)", pct)
		case pct >= 40:
			return fmt.Sprintf("Average (%.0fth percentile)", pct)
		case pct >= 20:
			return fmt.Sprintf("Below average (%.0fth percentile)", pct)
		}
		return fmt.Sprintf("Bottom quintile (%.0fth percentile)", pct)
	}

	switch {
	case pct <= 20:
		return fmt.Sprintf("Top quintile (low %s)", name)
	case pct <= 40:
		return fmt.Sprintf("Above average (low %s)", name)
	case pct <= 60:
		return fmt.Sprintf("Average %s", name)
	case pct <= 80:
		return fmt.Sprintf("Below average (high %s)", name)
	}
	return fmt.Sprintf("Bottom quintile (high %s)", name)
}

// All benchmarks every company value that has a matching peer series.
// Results are keyed by metric name.
func All(values map[string]float64, peers map[string][]float64) map[string]models.BenchmarkResult {
	out := make(map[string]models.BenchmarkResult)
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		series, ok := peers[name]
		if !ok || len(series) == 0 {
			continue
		}
		out[name] = Benchmark(values[name], series, name, !LowerIsBetter[name])
	}
	return out
}
