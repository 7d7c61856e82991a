package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/finsight/internal/common"
)

// TickerRunner analyzes and stores a single ticker. *Pipeline satisfies it
// through RunTicker.
type TickerRunner interface {
	RunTicker(ctx context.Context, ticker string, opts Options) (*Outcome, error)
}

// RunSummary reports one pass over the watchlist
type RunSummary struct {
	Started  time.Time
	Duration time.Duration
	Stored   int
	Failed   map[string]string
}

// Scheduler refreshes a watchlist on a cron schedule. Passes never overlap:
// a tick that fires while the previous pass is still running is skipped.
type Scheduler struct {
	runner      TickerRunner
	tickers     []string
	schedule    string
	concurrency int
	opts        Options
	logger      arbor.ILogger

	cron    *cron.Cron
	mu      sync.Mutex // Protects running, lastRun
	passMu  sync.Mutex // Held for the duration of a pass
	running bool
	lastRun *RunSummary
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewScheduler creates a scheduler from the [watch] config. Every pass
// stores its reports; expert and narrate come from opts.
func NewScheduler(runner TickerRunner, config *common.WatchConfig, opts Options, logger arbor.ILogger) (*Scheduler, error) {
	if err := common.ValidateSchedule(config.Schedule); err != nil {
		return nil, err
	}

	var tickers []string
	for _, t := range common.ParseTickers(config.Tickers) {
		tickers = append(tickers, t.Symbol())
	}
	if len(tickers) == 0 {
		return nil, fmt.Errorf("watchlist has no tickers")
	}

	concurrency := config.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	opts.Store = true

	return &Scheduler{
		runner:      runner,
		tickers:     tickers,
		schedule:    config.Schedule,
		concurrency: concurrency,
		opts:        opts,
		logger:      logger,
		cron:        cron.New(),
	}, nil
}

// Tickers returns the normalized watchlist
func (s *Scheduler) Tickers() []string {
	return append([]string(nil), s.tickers...)
}

// Start registers the watchlist pass with cron and starts it.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	if _, err := s.cron.AddFunc(s.schedule, s.runScheduledPass); err != nil {
		s.cancel()
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info().
		Str("schedule", s.schedule).
		Int("tickers", len(s.tickers)).
		Int("concurrency", s.concurrency).
		Msg("Watchlist scheduler started")
	return nil
}

// Stop halts the scheduler, cancels an in-flight pass and waits for it to
// finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.logger.Info().Msg("Watchlist scheduler stopped")
	return nil
}

// LastRun returns the summary of the most recent pass, or nil
func (s *Scheduler) LastRun() *RunSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun
}

func (s *Scheduler) runScheduledPass() {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str("panic", fmt.Sprintf("%v", r)).
				Msg("PANIC RECOVERED in scheduled watchlist pass")
		}
	}()

	if !s.passMu.TryLock() {
		s.logger.Warn().Msg("Previous watchlist pass still running, skipping this tick")
		return
	}
	defer s.passMu.Unlock()

	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}

	s.runPass(ctx)
}

// RunOnce runs a single pass over the watchlist immediately, waiting for any
// scheduled pass in progress.
func (s *Scheduler) RunOnce(ctx context.Context) *RunSummary {
	s.passMu.Lock()
	defer s.passMu.Unlock()
	return s.runPass(ctx)
}

type tickerResult struct {
	ticker string
	err    error
}

func (s *Scheduler) runPass(ctx context.Context) *RunSummary {
	summary := &RunSummary{
		Started: time.Now(),
		Failed:  make(map[string]string),
	}
	s.logger.Info().Int("tickers", len(s.tickers)).Msg("Watchlist pass starting")

	sem := make(chan struct{}, s.concurrency)
	results := make(chan tickerResult, len(s.tickers))

	for _, ticker := range s.tickers {
		ticker := ticker
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			results <- tickerResult{ticker: ticker, err: ctx.Err()}
			continue
		}

		done := make(chan error, 1)
		common.SafeGo(ctx, s.logger, "watch:"+ticker, func() error {
			_, err := s.runner.RunTicker(ctx, ticker, s.opts)
			return err
		}, done)

		go func() {
			err := <-done
			<-sem
			results <- tickerResult{ticker: ticker, err: err}
		}()
	}

	for range s.tickers {
		r := <-results
		if r.err != nil {
			summary.Failed[r.ticker] = r.err.Error()
			s.logger.Warn().Err(r.err).Str("ticker", r.ticker).Msg("Watchlist ticker failed")
			continue
		}
		summary.Stored++
	}

	summary.Duration = time.Since(summary.Started)
	s.logger.Info().
		Int("stored", summary.Stored).
		Int("failed", len(summary.Failed)).
		Dur("duration", summary.Duration).
		Int64("goroutines_spawned", common.GetGoroutineCount()).
		Msg("Watchlist pass complete")

	s.mu.Lock()
	s.lastRun = summary
	s.mu.Unlock()
	return summary
}
