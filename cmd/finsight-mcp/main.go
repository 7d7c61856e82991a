package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/ternarybob/finsight/internal/app"
	"github.com/ternarybob/finsight/internal/common"
)

func main() {
	defer common.RecoverWithCrashFile()

	var configFiles []string
	configPath := os.Getenv("FINSIGHT_CONFIG")
	if configPath == "" {
		configPath = "finsight.toml"
	}
	if _, err := os.Stat(configPath); err == nil {
		configFiles = append(configFiles, configPath)
	}

	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the MCP protocol, so logs go to file only
	config.Logging.Output = []string{"file"}
	if err := config.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}
	logger := common.SetupLogger(config)
	common.InstallCrashHandler(config.Logging.Dir)
	fmt.Fprintf(os.Stderr, "finsight-mcp logging to %s\n", common.GetLogFilePath(logger))

	ctx := context.Background()
	application, err := app.New(ctx, config, logger, app.Options{})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer application.Close()

	mcpServer := server.NewMCPServer(
		"finsight",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	reports := application.StorageManager.ReportStorage()
	mcpServer.AddTool(createAnalyzeTickerTool(), handleAnalyzeTicker(application.Pipeline, logger))
	mcpServer.AddTool(createGetReportTool(), handleGetReport(reports, logger))
	mcpServer.AddTool(createListReportsTool(), handleListReports(reports, logger))

	logger.Info().Str("version", common.GetVersion()).Msg("MCP server ready on stdio")

	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}
