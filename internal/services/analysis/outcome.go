package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/ternarybob/finsight/internal/models"
)

var (
	// ErrNonFinite marks a metric whose value, components or series held NaN or Inf.
	ErrNonFinite = errors.New("non-finite metric output")
	// ErrPanicked marks a metric function that panicked.
	ErrPanicked = errors.New("metric computation panicked")
)

// Outcome is the result of one metric computation: exactly one of Result or
// Err is set.
type Outcome struct {
	Name   models.MetricName
	Result *models.MetricResult
	Err    error
}

// OK reports whether the computation produced a usable result.
func (o Outcome) OK() bool {
	return o.Err == nil && o.Result != nil
}

// compute runs fn, converting a panic or a non-finite output into a failed
// Outcome.
func compute(name models.MetricName, fn func() models.MetricResult) (out Outcome) {
	out.Name = name
	defer func() {
		if r := recover(); r != nil {
			out.Result = nil
			out.Err = fmt.Errorf("%s: %w: %v", name, ErrPanicked, r)
		}
	}()

	r := fn()
	if field, ok := firstNonFinite(&r); ok {
		out.Err = fmt.Errorf("%s: %w in %s", name, ErrNonFinite, field)
		return out
	}
	out.Result = &r
	return out
}

func firstNonFinite(r *models.MetricResult) (string, bool) {
	bad := func(v float64) bool { return math.IsNaN(v) || math.IsInf(v, 0) }
	if bad(r.Value) {
		return "value", true
	}
	if bad(r.DataQuality) {
		return "data_quality", true
	}
	for k, v := range r.Components {
		if bad(v) {
			return "component " + k, true
		}
	}
	for i, v := range r.Series {
		if bad(v) {
			return fmt.Sprintf("series[%d]", i), true
		}
	}
	return "", false
}
