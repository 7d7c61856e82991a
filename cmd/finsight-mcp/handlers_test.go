package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/finsight/internal/common"
	"github.com/ternarybob/finsight/internal/interfaces"
	"github.com/ternarybob/finsight/internal/models"
	"github.com/ternarybob/finsight/internal/services/collector"
	"github.com/ternarybob/finsight/internal/storage/badger"
)

type stubRunner struct {
	opts collector.Options
	err  error
}

func (s *stubRunner) RunTicker(ctx context.Context, ticker string, opts collector.Options) (*collector.Outcome, error) {
	s.opts = opts
	if s.err != nil {
		return nil, s.err
	}
	return &collector.Outcome{
		Result:   &models.AnalysisResult{RunID: "run_1", Ticker: ticker, DataQualityNotes: []string{"No cash flows provided"}},
		Markdown: "# Pre-Calculated Metrics for " + ticker,
		Stored:   true,
	}, nil
}

func callTool(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func newTestReports(t *testing.T) interfaces.ReportStorage {
	t.Helper()
	manager, err := badger.NewManager(arbor.NewLogger(), &common.BadgerConfig{Path: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = manager.Close() })
	return manager.ReportStorage()
}

func TestHandleAnalyzeTicker(t *testing.T) {
	runner := &stubRunner{}
	handler := handleAnalyzeTicker(runner, arbor.NewLogger())

	result, err := handler(context.Background(), callTool(map[string]any{"ticker": "ACME", "expert": "burry", "wacc": 0.08}))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, "# Pre-Calculated Metrics for ACME")
	assert.Contains(t, text, "**Run ID:** run_1")
	assert.Contains(t, text, "**Data Quality Notes:** No cash flows provided")
	assert.Equal(t, "burry", runner.opts.Expert)
	assert.Equal(t, 0.08, runner.opts.WACC)
	assert.True(t, runner.opts.Store)
}

func TestHandleAnalyzeTickerErrors(t *testing.T) {
	handler := handleAnalyzeTicker(&stubRunner{err: errors.New("provider down")}, arbor.NewLogger())

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing ticker", map[string]any{}, "Error: ticker parameter is required"},
		{"bad wacc", map[string]any{"ticker": "ACME", "wacc": 2.0}, "Error: wacc must be between 0 and 1"},
		{"runner failure", map[string]any{"ticker": "ACME"}, "Analysis error: provider down"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := handler(context.Background(), callTool(tt.args))
			require.NoError(t, err)
			assert.Equal(t, tt.want, resultText(t, result))
		})
	}
}

func TestHandleReports(t *testing.T) {
	ctx := context.Background()
	reports := newTestReports(t)
	logger := arbor.NewLogger()

	result, err := handleGetReport(reports, logger)(ctx, callTool(map[string]any{"ticker": "acme"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "No stored report for ACME")

	result, err = handleListReports(reports, logger)(ctx, callTool(map[string]any{}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "No reports stored.")

	at := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	require.NoError(t, reports.SaveReport(ctx, &models.StoredReport{
		ID: "run_old", Ticker: "ACME", CompanyName: "Acme Corp", GeneratedAt: at.Add(-24 * time.Hour),
		Markdown: "old report",
	}))
	require.NoError(t, reports.SaveReport(ctx, &models.StoredReport{
		ID: "run_new", Ticker: "ACME", CompanyName: "Acme Corp", GeneratedAt: at, QualityScore: 71.5,
		RedFlagCount: 1, GreenFlagCount: 4, Markdown: "new report", Commentary: "Looks durable.",
	}))

	result, err = handleGetReport(reports, logger)(ctx, callTool(map[string]any{"ticker": "NASDAQ:ACME"}))
	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, "_Stored report run_new, generated 2025-03-14T09:30:00Z_")
	assert.Contains(t, text, "new report\n\n## Commentary\n\nLooks durable.")

	result, err = handleListReports(reports, logger)(ctx, callTool(map[string]any{"limit": 1}))
	require.NoError(t, err)
	text = resultText(t, result)
	assert.Contains(t, text, "## Stored Reports (1)")
	assert.Contains(t, text, "| ACME | Acme Corp | 2025-03-14 09:30 | 71.5 | 1 | 4 |")
}
