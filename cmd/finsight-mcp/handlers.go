package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/finsight/internal/common"
	"github.com/ternarybob/finsight/internal/interfaces"
	"github.com/ternarybob/finsight/internal/services/collector"
)

// tickerRunner is the slice of the pipeline the analyze tool needs
type tickerRunner interface {
	RunTicker(ctx context.Context, ticker string, opts collector.Options) (*collector.Outcome, error)
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

// handleAnalyzeTicker implements the analyze_ticker tool
func handleAnalyzeTicker(runner tickerRunner, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ticker, err := request.RequireString("ticker")
		if err != nil || strings.TrimSpace(ticker) == "" {
			return textResult("Error: ticker parameter is required"), nil
		}

		wacc := request.GetFloat("wacc", 0)
		if wacc < 0 || wacc > 1 {
			return textResult("Error: wacc must be between 0 and 1"), nil
		}

		out, err := runner.RunTicker(ctx, ticker, collector.Options{
			Expert: request.GetString("expert", ""),
			WACC:   wacc,
			Store:  true,
		})
		if err != nil {
			logger.Error().Err(err).Str("ticker", ticker).Msg("Analysis failed")
			if out == nil {
				return textResult(fmt.Sprintf("Analysis error: %v", err)), nil
			}
			// The report rendered but could not be stored
			return textResult(out.Markdown + "\n\n> Warning: " + err.Error()), nil
		}

		return textResult(formatOutcome(out)), nil
	}
}

// handleGetReport implements the get_report tool
func handleGetReport(reports interfaces.ReportStorage, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ticker, err := request.RequireString("ticker")
		symbol := common.ParseTicker(ticker).Symbol()
		if err != nil || symbol == "" {
			return textResult("Error: ticker parameter is required"), nil
		}

		report, err := reports.GetLatest(ctx, symbol)
		if errors.Is(err, interfaces.ErrReportNotFound) {
			return textResult(fmt.Sprintf("No stored report for %s. Run analyze_ticker first.", symbol)), nil
		}
		if err != nil {
			logger.Error().Err(err).Str("ticker", symbol).Msg("GetLatest failed")
			return textResult(fmt.Sprintf("Storage error: %v", err)), nil
		}

		return textResult(formatStoredReport(report)), nil
	}
}

// handleListReports implements the list_reports tool
func handleListReports(reports interfaces.ReportStorage, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := request.GetInt("limit", 20)
		if limit <= 0 {
			limit = 20
		}
		if limit > 100 {
			limit = 100
		}

		list, err := reports.ListReports(ctx, limit)
		if err != nil {
			logger.Error().Err(err).Msg("ListReports failed")
			return textResult(fmt.Sprintf("Storage error: %v", err)), nil
		}

		return textResult(formatReportList(list)), nil
	}
}
