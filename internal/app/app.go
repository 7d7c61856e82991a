package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/finsight/internal/common"
	"github.com/ternarybob/finsight/internal/findata"
	"github.com/ternarybob/finsight/internal/interfaces"
	"github.com/ternarybob/finsight/internal/services/analysis"
	"github.com/ternarybob/finsight/internal/services/benchmark"
	"github.com/ternarybob/finsight/internal/services/collector"
	"github.com/ternarybob/finsight/internal/services/export"
	"github.com/ternarybob/finsight/internal/services/narrator"
	"github.com/ternarybob/finsight/internal/storage"
)

// Options select the optional components New wires up
type Options struct {
	// Narrate creates the commentary provider named by llm.default_provider
	Narrate bool
	// RequireProvider fails New when no provider API key resolves
	RequireProvider bool
}

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	StorageManager interfaces.StorageManager
	Client         *findata.Client
	Narrator       interfaces.Narrator
	Peers          benchmark.PeerSets

	Analyzer *analysis.Service
	Exporter *export.Service
	Pipeline *collector.Pipeline
}

// New initializes storage, the provider client, peer sets and the pipeline.
// Components are created in dependency order; a failure closes anything
// already opened.
func New(ctx context.Context, cfg *common.Config, logger arbor.ILogger, opts Options) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initStorage(); err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if err := app.initServices(ctx, opts); err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	logger.Debug().
		Bool("provider", app.Client != nil).
		Bool("narrator", app.Narrator != nil).
		Int("peer_industries", len(app.Peers)).
		Msg("Application initialized")

	return app, nil
}

func (a *App) initStorage() error {
	manager, err := storage.NewStorageManager(a.Logger, a.Config)
	if err != nil {
		return err
	}
	a.StorageManager = manager
	a.Logger.Debug().Str("path", a.Config.Storage.Badger.Path).Msg("Storage initialized")
	return nil
}

func (a *App) initServices(ctx context.Context, opts Options) error {
	if path := a.Config.Analysis.PeersFile; path != "" {
		peers, err := benchmark.LoadPeerSets(path)
		if err != nil {
			return err
		}
		a.Peers = peers
	}

	client, err := findata.NewClientFromConfig(&a.Config.Provider, a.StorageManager.ResponseCache(), a.Logger)
	if err != nil {
		if opts.RequireProvider {
			return err
		}
		a.Logger.Debug().Err(err).Msg("Fundamentals provider disabled")
	} else {
		a.Client = client
	}

	if opts.Narrate {
		n, err := narrator.New(ctx, a.Config, a.Logger)
		if err != nil {
			return fmt.Errorf("failed to create narrator: %w", err)
		}
		a.Narrator = n
	}

	a.Analyzer = analysis.NewService(a.Logger)
	a.Exporter = export.NewService(a.Logger)

	var fetcher *collector.Fetcher
	if a.Client != nil {
		fetcher = collector.NewFetcher(a.Client, a.Config.Provider.PeriodLimit, a.Logger)
	}
	pipelineOpts := []collector.PipelineOption{
		collector.WithReportStorage(a.StorageManager.ReportStorage()),
		collector.WithPeers(a.Peers),
		collector.WithDefaultWACC(a.Config.Analysis.WACC),
	}
	if a.Narrator != nil {
		pipelineOpts = append(pipelineOpts, collector.WithNarrator(a.Narrator))
	}
	a.Pipeline = collector.NewPipeline(fetcher, a.Analyzer, a.Logger, pipelineOpts...)

	return nil
}

// NewScheduler builds the watchlist scheduler over the pipeline
func (a *App) NewScheduler(narrate bool) (*collector.Scheduler, error) {
	return collector.NewScheduler(a.Pipeline, &a.Config.Watch, collector.Options{
		Expert:  a.Config.Analysis.DefaultExpert,
		Narrate: narrate,
	}, a.Logger)
}

// Close releases storage
func (a *App) Close() error {
	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Debug().Msg("Storage closed")
	}
	return nil
}
