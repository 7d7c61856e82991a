package metrics

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// CAGR calculates Compound Annual Growth Rate. Nil when either endpoint or
// the year count is not positive.
func CAGR(start, end float64, years float64) *float64 {
	if start <= 0 || end <= 0 || years <= 0 {
		return nil
	}
	v := math.Pow(end/start, 1/years) - 1
	return &v
}

// Mean calculates the arithmetic mean
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Stddev calculates the population standard deviation
func Stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}

// SampleStddev calculates the sample (n-1) standard deviation. Zero for
// fewer than two values.
func SampleStddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values) - 1)
	return math.Sqrt(variance)
}

// Median of values; zero when empty.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// ClampFloat64 constrains a value to a range
func ClampFloat64(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// Round rounds half to even at the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.RoundToEven(v*p) / p
}

// safeDiv returns a/b, or def when b is zero.
func safeDiv(a, b, def float64) float64 {
	if b == 0 {
		return def
	}
	return a / b
}

// FormatCurrency renders a dollar amount with T/B/M suffixes for large values.
func FormatCurrency(v float64, decimals int) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1e12:
		return fmt.Sprintf("$%.*fT", decimals, v/1e12)
	case abs >= 1e9:
		return fmt.Sprintf("$%.*fB", decimals, v/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("$%.*fM", decimals, v/1e6)
	}
	return "$" + FormatThousands(v)
}

// FormatPercentage renders a ratio as a percentage ("0.125" -> "12.50%").
func FormatPercentage(v *float64, decimals int) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.*f%%", decimals, *v*100)
}

// FormatThousands renders v rounded to a whole number with comma grouping.
func FormatThousands(v float64) string {
	s := fmt.Sprintf("%.0f", v)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return sign + b.String()
}
