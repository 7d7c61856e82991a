package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/finsight/internal/interfaces"
	"github.com/ternarybob/finsight/internal/models"
	"github.com/ternarybob/finsight/internal/services/analysis"
	"github.com/ternarybob/finsight/internal/services/benchmark"
	"github.com/ternarybob/finsight/internal/services/export"
)

// Options control one pipeline run
type Options struct {
	// Expert selects a highlight view appended to the report. Empty or
	// unknown profiles render the base report.
	Expert string
	// WACC overrides the input's cost of capital when non-zero
	WACC    float64
	Narrate bool
	Store   bool
}

// Outcome is the product of one pipeline run
type Outcome struct {
	Result     *models.AnalysisResult
	Markdown   string
	Commentary string
	Stored     bool
}

// Document adapts the outcome for export.
func (o *Outcome) Document() export.Document {
	return export.Document{
		Result:     o.Result,
		Markdown:   o.Markdown,
		Commentary: o.Commentary,
	}
}

// Pipeline runs fetch, analysis, rendering, optional commentary and optional
// persistence for one ticker. Narrator and reports may be nil.
type Pipeline struct {
	fetcher  *Fetcher
	analyzer *analysis.Service
	narrator interfaces.Narrator
	reports  interfaces.ReportStorage
	peers    benchmark.PeerSets
	wacc     float64
	logger   arbor.ILogger
}

// PipelineOption configures a Pipeline
type PipelineOption func(*Pipeline)

// WithNarrator enables commentary
func WithNarrator(narrator interfaces.Narrator) PipelineOption {
	return func(p *Pipeline) {
		p.narrator = narrator
	}
}

// WithReportStorage enables persistence
func WithReportStorage(reports interfaces.ReportStorage) PipelineOption {
	return func(p *Pipeline) {
		p.reports = reports
	}
}

// WithPeers sets the peer sets applied to inputs that carry none
func WithPeers(peers benchmark.PeerSets) PipelineOption {
	return func(p *Pipeline) {
		p.peers = peers
	}
}

// WithDefaultWACC sets the cost of capital used when neither the input nor
// the run options give one
func WithDefaultWACC(wacc float64) PipelineOption {
	return func(p *Pipeline) {
		p.wacc = wacc
	}
}

// NewPipeline creates a pipeline. fetcher may be nil when only
// pre-assembled inputs are analyzed.
func NewPipeline(fetcher *Fetcher, analyzer *analysis.Service, logger arbor.ILogger, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		fetcher:  fetcher,
		analyzer: analyzer,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Reports returns the configured report storage, or nil
func (p *Pipeline) Reports() interfaces.ReportStorage {
	return p.reports
}

// RunTicker fetches fundamentals for ticker and analyzes them.
func (p *Pipeline) RunTicker(ctx context.Context, ticker string, opts Options) (*Outcome, error) {
	if p.fetcher == nil {
		return nil, fmt.Errorf("no fundamentals provider configured")
	}
	in, err := p.fetcher.Fetch(ctx, ticker)
	if err != nil {
		return nil, err
	}
	return p.Run(ctx, in, opts)
}

// Run validates and analyzes a pre-assembled input. Commentary failures are
// logged and leave Commentary empty; storage failures are returned.
func (p *Pipeline) Run(ctx context.Context, in analysis.Input, opts Options) (*Outcome, error) {
	if opts.WACC != 0 {
		in.WACC = opts.WACC
	} else if in.WACC == 0 {
		in.WACC = p.wacc
	}
	if len(in.Peers) == 0 {
		in.Peers = p.peers
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	result := p.analyzer.Analyze(ctx, in)
	out := &Outcome{
		Result:   result,
		Markdown: analysis.FormatForExpert(result, opts.Expert),
	}
	logger := p.logger.WithCorrelationId(result.RunID)

	if opts.Narrate {
		if p.narrator == nil {
			logger.Warn().Str("ticker", result.Ticker).Msg("Commentary requested but no narrator configured")
		} else {
			start := time.Now()
			commentary, err := p.narrator.Narrate(ctx, opts.Expert, out.Markdown)
			if err != nil {
				logger.Warn().Err(err).Str("provider", p.narrator.Provider()).Msg("Commentary generation failed")
			} else {
				out.Commentary = commentary
				logger.Info().
					Str("provider", p.narrator.Provider()).
					Int("length", len(commentary)).
					Dur("duration", time.Since(start)).
					Msg("Commentary generated")
			}
		}
	}

	if opts.Store {
		if p.reports == nil {
			return out, fmt.Errorf("report storage not configured")
		}
		report, err := NewStoredReport(out)
		if err != nil {
			return out, err
		}
		if err := p.reports.SaveReport(ctx, report); err != nil {
			return out, fmt.Errorf("failed to store report for %s: %w", result.Ticker, err)
		}
		out.Stored = true
		logger.Debug().Str("ticker", result.Ticker).Str("report_id", report.ID).Msg("Report stored")
	}

	return out, nil
}

// NewStoredReport builds the persisted form of an outcome, keyed by run id.
func NewStoredReport(out *Outcome) (*models.StoredReport, error) {
	result := out.Result
	summary, err := json.Marshal(result.Summary)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal summary: %w", err)
	}
	return &models.StoredReport{
		ID:             result.RunID,
		Ticker:         result.Ticker,
		CompanyName:    result.CompanyName,
		GeneratedAt:    result.AnalysisDate,
		QualityScore:   result.Summary.QualityScore,
		RedFlagCount:   result.Summary.RedFlagCount,
		GreenFlagCount: result.Summary.GreenFlagCount,
		SummaryJSON:    summary,
		Markdown:       out.Markdown,
		Commentary:     out.Commentary,
	}, nil
}
