package main

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ternarybob/finsight/internal/services/analysis"
)

// createAnalyzeTickerTool returns the analyze_ticker tool definition
func createAnalyzeTickerTool() mcp.Tool {
	return mcp.NewTool("analyze_ticker",
		mcp.WithDescription("Fetch fundamentals for a US ticker, compute the full metric suite and return the Markdown report. The report is stored for later retrieval."),
		mcp.WithString("ticker",
			mcp.Required(),
			mcp.Description("Ticker symbol, e.g. AAPL or NASDAQ:AAPL"),
		),
		mcp.WithString("expert",
			mcp.Description("Optional highlight view appended to the report"),
			mcp.Enum(analysis.ExpertProfiles...),
		),
		mcp.WithNumber("wacc",
			mcp.Description("Cost of capital for EVA as a fraction (default from config, usually 0.10)"),
		),
	)
}

// createGetReportTool returns the get_report tool definition
func createGetReportTool() mcp.Tool {
	return mcp.NewTool("get_report",
		mcp.WithDescription("Return the most recent stored report for a ticker"),
		mcp.WithString("ticker",
			mcp.Required(),
			mcp.Description("Ticker symbol"),
		),
	)
}

// createListReportsTool returns the list_reports tool definition
func createListReportsTool() mcp.Tool {
	return mcp.NewTool("list_reports",
		mcp.WithDescription("List stored reports, newest first"),
		mcp.WithNumber("limit",
			mcp.Description("Max results (default: 20, max: 100)"),
		),
	)
}
