package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ternarybob/finsight/internal/models"
	"github.com/ternarybob/finsight/internal/services/analysis"
	"github.com/ternarybob/finsight/internal/services/export"
)

const stdoutPath = "-"

// loadInput reads a JSON-encoded analysis.Input
func loadInput(path string) (analysis.Input, error) {
	var in analysis.Input
	data, err := os.ReadFile(path)
	if err != nil {
		return in, fmt.Errorf("failed to read input file %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return in, fmt.Errorf("failed to parse input file %s: %w", path, err)
	}
	return in, nil
}

// reportFileName names a report file: TICKER-YYYYMMDD-HHMMSS.ext
func reportFileName(result *models.AnalysisResult, format string) string {
	return fmt.Sprintf("%s-%s%s", result.Ticker, result.AnalysisDate.UTC().Format("20060102-150405"), export.Extension(format))
}

// writeOutput writes data to stdout, to out as a file, or into a directory
// (out when it is one, else defaultDir). Returns the path written.
func writeOutput(data []byte, out, defaultDir string, result *models.AnalysisResult, format string) (string, error) {
	if out == stdoutPath {
		_, err := os.Stdout.Write(data)
		return stdoutPath, err
	}

	path := out
	if path == "" {
		path = defaultDir
		if path == "" {
			path = "."
		}
		if err := os.MkdirAll(path, 0755); err != nil {
			return "", fmt.Errorf("failed to create output directory %s: %w", path, err)
		}
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, reportFileName(result, format))
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return path, nil
}
