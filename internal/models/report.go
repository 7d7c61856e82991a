package models

import (
	"encoding/gob"
	"time"
)

func init() {
	gob.Register(StoredReport{})
}

// StoredReport is a persisted analysis run. ID is the run id; the latest
// report for a ticker is found through the Ticker and GeneratedAt indexes.
type StoredReport struct {
	ID             string    `json:"id" badgerhold:"key"`
	Ticker         string    `json:"ticker" badgerhold:"index"`
	CompanyName    string    `json:"company_name"`
	GeneratedAt    time.Time `json:"generated_at" badgerhold:"index"`
	QualityScore   float64   `json:"quality_score"`
	RedFlagCount   int       `json:"red_flag_count"`
	GreenFlagCount int       `json:"green_flag_count"`
	SummaryJSON    []byte    `json:"summary_json"`
	Markdown       string    `json:"markdown"`
	Commentary     string    `json:"commentary,omitempty"`
}
