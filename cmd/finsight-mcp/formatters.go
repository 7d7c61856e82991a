package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/finsight/internal/models"
	"github.com/ternarybob/finsight/internal/services/collector"
)

// formatOutcome returns the rendered report followed by a run footer
func formatOutcome(out *collector.Outcome) string {
	var sb strings.Builder
	sb.WriteString(out.Markdown)
	sb.WriteString("\n\n---\n")
	sb.WriteString(fmt.Sprintf("**Run ID:** %s\n", out.Result.RunID))
	if notes := out.Result.DataQualityNotes; len(notes) > 0 {
		sb.WriteString(fmt.Sprintf("**Data Quality Notes:** %s\n", strings.Join(notes, "; ")))
	}
	if out.Stored {
		sb.WriteString("**Stored:** yes\n")
	}
	return sb.String()
}

// formatStoredReport formats a stored report with its header line
func formatStoredReport(report *models.StoredReport) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("_Stored report %s, generated %s_\n\n", report.ID, report.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(report.Markdown)
	if report.Commentary != "" {
		sb.WriteString("\n\n## Commentary\n\n")
		sb.WriteString(report.Commentary)
		sb.WriteString("\n")
	}
	return sb.String()
}

// formatReportList formats stored reports as a markdown table
func formatReportList(reports []models.StoredReport) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Stored Reports (%d)\n\n", len(reports)))

	if len(reports) == 0 {
		sb.WriteString("No reports stored.\n")
		return sb.String()
	}

	sb.WriteString("| Ticker | Company | Generated | Quality | Red | Green |\n")
	sb.WriteString("|---|---|---|---|---|---|\n")
	for _, r := range reports {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %.1f | %d | %d |\n",
			r.Ticker, r.CompanyName, r.GeneratedAt.Format("2006-01-02 15:04"),
			r.QualityScore, r.RedFlagCount, r.GreenFlagCount))
	}
	return sb.String()
}
