package models

// Severity classifies a flag at the point it is raised.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityPositive Severity = "positive"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Flag is a short diagnostic attached to a metric result.
type Flag struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

func (f Flag) String() string {
	return f.Message
}

// Convenience constructors used by the metric functions.
func Info(msg string) Flag     { return Flag{Severity: SeverityInfo, Message: msg} }
func Positive(msg string) Flag { return Flag{Severity: SeverityPositive, Message: msg} }
func Warning(msg string) Flag  { return Flag{Severity: SeverityWarning, Message: msg} }
func Critical(msg string) Flag { return Flag{Severity: SeverityCritical, Message: msg} }

// MetricResult is the output of one metric function.
//
// Components holds named intermediate ratios, Labels holds categorical
// outputs (zone, trend class) and Series carries ordered values such as a
// growth-rate history.
type MetricResult struct {
	Value          float64            `json:"value"`
	Interpretation string             `json:"interpretation"`
	Components     map[string]float64 `json:"components,omitempty"`
	Labels         map[string]string  `json:"labels,omitempty"`
	Series         []float64          `json:"series,omitempty"`
	Flags          []Flag             `json:"flags,omitempty"`
	DataQuality    float64            `json:"data_quality"`
}

// NewMetricResult returns a result with full data quality and an allocated
// components map.
func NewMetricResult() MetricResult {
	return MetricResult{
		Components:  make(map[string]float64),
		DataQuality: 1.0,
	}
}

// Component returns a named component and whether it was set.
func (r *MetricResult) Component(name string) (float64, bool) {
	if r == nil || r.Components == nil {
		return 0, false
	}
	v, ok := r.Components[name]
	return v, ok
}

// Label returns a categorical output or "".
func (r *MetricResult) Label(name string) string {
	if r == nil || r.Labels == nil {
		return ""
	}
	return r.Labels[name]
}

// SetLabel records a categorical output.
func (r *MetricResult) SetLabel(name, value string) {
	if r.Labels == nil {
		r.Labels = make(map[string]string)
	}
	r.Labels[name] = value
}

// AddFlag appends a flag.
func (r *MetricResult) AddFlag(f Flag) {
	r.Flags = append(r.Flags, f)
}

// FlagMessages returns the flag texts in order.
func (r *MetricResult) FlagMessages() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.Flags))
	for _, f := range r.Flags {
		out = append(out, f.Message)
	}
	return out
}

// BenchmarkResult compares a company value with a peer set.
type BenchmarkResult struct {
	Value          float64 `json:"value"`
	Percentile     float64 `json:"percentile"`
	ZScore         float64 `json:"z_score"`
	VsMedian       float64 `json:"vs_median"`
	Interpretation string  `json:"interpretation"`
}
