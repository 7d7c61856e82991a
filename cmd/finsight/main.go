package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ternarybob/finsight/internal/app"
	"github.com/ternarybob/finsight/internal/common"
	"github.com/ternarybob/finsight/internal/services/collector"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles configPaths
	ticker      = flag.String("ticker", "", "Ticker to fetch and analyze (e.g. AAPL)")
	inputFile   = flag.String("input", "", "JSON file holding a pre-assembled analysis input (skips the provider)")
	expert      = flag.String("expert", "", "Expert highlight view: buffett, graham, lynch, wood, soros, dalio, burry, credit_analyst")
	format      = flag.String("format", "", "Output format: text, markdown, html, pdf, json (overrides config)")
	outPath     = flag.String("out", "", "Output file or directory, '-' for stdout (default: report.output_dir)")
	wacc        = flag.Float64("wacc", 0, "Cost of capital for EVA as a fraction (overrides config)")
	peersFile   = flag.String("peers", "", "YAML peer sets for benchmarking (overrides config)")
	logLevel    = flag.String("log-level", "", "Log level: trace, debug, info, warn, error (overrides config)")
	store       = flag.Bool("store", false, "Persist the report to the local store")
	narrate     = flag.Bool("narrate", false, "Append LLM commentary from the configured provider")
	watch       = flag.Bool("watch", false, "Run the watchlist scheduler until interrupted")
	showVersion = flag.Bool("version", false, "Print version information")
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	defer common.RecoverWithCrashFile()
	flag.Parse()

	if *showVersion {
		fmt.Printf("Finsight version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	if !*watch && *ticker == "" && *inputFile == "" {
		fmt.Fprintln(os.Stderr, "one of -ticker, -input or -watch is required")
		flag.Usage()
		os.Exit(2)
	}

	if len(configFiles) == 0 {
		if _, err := os.Stat("finsight.toml"); err == nil {
			configFiles = append(configFiles, "finsight.toml")
		}
	}

	// 1. Load config (defaults -> files -> env), then CLI overrides
	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		common.GetLogger().Fatal().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration files")
		os.Exit(1)
	}
	common.ApplyFlagOverrides(config, common.FlagOverrides{
		LogLevel:  *logLevel,
		Format:    *format,
		WACC:      *wacc,
		PeersFile: *peersFile,
		Store:     *store,
	})
	if *watch {
		config.Watch.Enabled = true
	}
	if err := config.Validate(); err != nil {
		common.GetLogger().Fatal().Err(err).Msg("Invalid configuration")
		os.Exit(1)
	}

	// 2. Logger, crash handler, banner
	logger := common.SetupLogger(config)
	common.InstallCrashHandler(config.Logging.Dir)
	if *outPath != stdoutPath {
		common.PrintBanner(common.GetVersion())
	}

	logger.Debug().
		Strs("config_files", configFiles).
		Str("format", config.Report.Format).
		Float64("wacc", config.Analysis.WACC).
		Str("storage_path", config.Storage.Badger.Path).
		Msg("Resolved configuration")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, config, logger, app.Options{
		Narrate:         *narrate,
		RequireProvider: *inputFile == "",
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer application.Close()

	if *watch {
		if err := runWatch(ctx, application, *narrate); err != nil {
			logger.Error().Err(err).Msg("Watchlist scheduler failed")
			os.Exit(1)
		}
		return
	}

	if err := runSingle(ctx, application); err != nil {
		logger.Error().Err(err).Msg("Analysis failed")
		os.Exit(1)
	}
}

func runSingle(ctx context.Context, application *app.App) error {
	config := application.Config
	opts := collector.Options{
		Expert:  *expert,
		Narrate: *narrate,
		Store:   config.Analysis.StoreResults,
	}
	if opts.Expert == "" {
		opts.Expert = config.Analysis.DefaultExpert
	}

	var (
		out *collector.Outcome
		err error
	)
	if *inputFile != "" {
		in, loadErr := loadInput(*inputFile)
		if loadErr != nil {
			return loadErr
		}
		out, err = application.Pipeline.Run(ctx, in, opts)
	} else {
		out, err = application.Pipeline.RunTicker(ctx, *ticker, opts)
	}
	if err != nil {
		return err
	}

	data, err := application.Exporter.Render(out.Document(), config.Report.Format)
	if err != nil {
		return err
	}

	path, err := writeOutput(data, *outPath, config.Report.OutputDir, out.Result, config.Report.Format)
	if err != nil {
		return err
	}

	application.Logger.Info().
		Str("ticker", out.Result.Ticker).
		Str("run_id", out.Result.RunID).
		Float64("quality_score", out.Result.Summary.QualityScore).
		Bool("stored", out.Stored).
		Str("path", path).
		Msg("Report written")
	return nil
}

func runWatch(ctx context.Context, application *app.App, narrate bool) error {
	scheduler, err := application.NewScheduler(narrate)
	if err != nil {
		return err
	}
	if err := scheduler.Start(ctx); err != nil {
		return err
	}

	application.Logger.Info().Strs("tickers", scheduler.Tickers()).Msg("Watching - Press Ctrl+C to stop")
	<-ctx.Done()
	application.Logger.Info().Msg("Interrupt signal received")

	return scheduler.Stop()
}
