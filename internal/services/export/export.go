// Package export turns a rendered analysis report into the output formats
// the CLI and MCP server hand out.
package export

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/finsight/internal/models"
)

// Output formats
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
	FormatPDF      = "pdf"
	FormatJSON     = "json"
)

// Formats lists every supported output format
var Formats = []string{FormatText, FormatMarkdown, FormatHTML, FormatPDF, FormatJSON}

// Document is one analysis ready for export
type Document struct {
	Result     *models.AnalysisResult
	Markdown   string
	Commentary string
}

// Title returns the document title used for HTML and PDF metadata
func (d Document) Title() string {
	if d.Result == nil {
		return "Financial Analysis"
	}
	return fmt.Sprintf("%s (%s) Financial Analysis", d.Result.CompanyName, d.Result.Ticker)
}

// Body returns the report with any commentary appended as its own section
func (d Document) Body() string {
	commentary := StripOuterCodeFences(d.Commentary)
	if commentary == "" {
		return d.Markdown
	}
	return d.Markdown + "\n\n## Commentary\n\n" + commentary + "\n"
}

// Extension returns the file extension for format
func Extension(format string) string {
	switch format {
	case FormatMarkdown:
		return ".md"
	case FormatText:
		return ".txt"
	default:
		return "." + format
	}
}

// Service renders documents with logging around each conversion
type Service struct {
	logger arbor.ILogger
}

// NewService creates a new export service
func NewService(logger arbor.ILogger) *Service {
	return &Service{logger: logger}
}

// Render converts doc into format
func (s *Service) Render(doc Document, format string) ([]byte, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatMarkdown
	}

	s.logger.Debug().
		Str("format", format).
		Int("markdown_len", len(doc.Markdown)).
		Bool("commentary", doc.Commentary != "").
		Msg("Rendering export")

	var (
		out []byte
		err error
	)
	switch format {
	case FormatText, FormatMarkdown:
		out = []byte(doc.Body())
	case FormatHTML:
		out, err = MarkdownToHTML(doc.Body(), doc.Title())
	case FormatPDF:
		out, err = MarkdownToPDF(doc.Body(), doc.Title())
	case FormatJSON:
		out, err = marshalJSON(doc)
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("format", format).Msg("Export failed")
		return nil, err
	}

	s.logger.Debug().Str("format", format).Int("bytes", len(out)).Msg("Export rendered")
	return out, nil
}

type jsonDocument struct {
	*models.AnalysisResult
	Report     string `json:"report"`
	Commentary string `json:"commentary,omitempty"`
}

func marshalJSON(doc Document) ([]byte, error) {
	if doc.Result == nil {
		return nil, fmt.Errorf("json export requires an analysis result")
	}
	out, err := json.MarshalIndent(jsonDocument{
		AnalysisResult: doc.Result,
		Report:         doc.Markdown,
		Commentary:     StripOuterCodeFences(doc.Commentary),
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analysis: %w", err)
	}
	return out, nil
}
