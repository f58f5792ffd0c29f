package sampler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/wardenhq/blockwarden/internal/metrics"
	"github.com/wardenhq/blockwarden/internal/model"
	"github.com/wardenhq/blockwarden/internal/stream"
)

// AccountSource selects eligible accounts: active, not deactivated, at least
// one policy enabled, random order.
type AccountSource interface {
	FindEligible(ctx context.Context, excluding []string, limit int) ([]model.TrackedAccount, error)
}

// Connector opens sessions. Implemented by the stream supervisor.
type Connector interface {
	Connect(ctx context.Context, account model.TrackedAccount) error
	ActiveIDs() []string
}

// Config holds sampler configuration.
type Config struct {
	Interval  time.Duration // Tick interval (default: 1s)
	BatchSize int           // Max accounts offered per tick (default: 10)
	OpenRate  float64       // Connection opens per second across ticks
	OpenBurst int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval:  time.Second,
		BatchSize: 10,
		OpenRate:  5,
		OpenBurst: 10,
	}
}

// Sampler periodically connects unconnected eligible accounts.
type Sampler struct {
	cfg       Config
	source    AccountSource
	connector Connector
	limiter   *rate.Limiter
	logger    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Sampler.
func New(cfg Config, source AccountSource, connector Connector, logger *slog.Logger) *Sampler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sampler{
		cfg:       cfg,
		source:    source,
		connector: connector,
		limiter:   rate.NewLimiter(rate.Limit(cfg.OpenRate), cfg.OpenBurst),
		logger:    logger,
	}
}

// Start begins the sampling loop.
func (s *Sampler) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.run()

	s.logger.Info("candidate sampler started",
		"interval", s.cfg.Interval,
		"batch_size", s.cfg.BatchSize,
		"open_rate", s.cfg.OpenRate,
	)

	return nil
}

// Stop gracefully shuts down the sampler.
func (s *Sampler) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("candidate sampler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the main sampling loop.
func (s *Sampler) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	// Sample immediately on start.
	s.sampleOnce()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.sampleOnce()
		}
	}
}

// sampleOnce selects one batch and connects each candidate. The store picks
// uniformly at random among eligible accounts, which spreads retry attempts
// across ticks instead of hammering the same prefix of an ordered result.
func (s *Sampler) sampleOnce() {
	excluding := s.connector.ActiveIDs()

	accounts, err := s.source.FindEligible(s.ctx, excluding, s.cfg.BatchSize)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.logger.Error("eligible account query failed", "error", err)
		}
		return
	}
	if len(accounts) == 0 {
		return
	}

	var opened, failed int
	for _, account := range accounts {
		if err := s.limiter.Wait(s.ctx); err != nil {
			return
		}

		metrics.SamplerConnects.Inc()
		err := s.connector.Connect(s.ctx, account)
		switch {
		case err == nil:
			opened++
		case errors.Is(err, stream.ErrAlreadyConnected), errors.Is(err, stream.ErrCoolingDown):
			// Lost the race with a concurrent open or a cooldown slot;
			// the account is simply not eligible this tick.
			s.logger.Debug("candidate skipped", "account_id", account.ID, "reason", err)
		default:
			failed++
			s.logger.Warn("failed to open session",
				"account_id", account.ID,
				"error", err,
			)
		}
	}

	if opened > 0 || failed > 0 {
		s.logger.Info("sample tick complete",
			"candidates", len(accounts),
			"opened", opened,
			"failed", failed,
		)
	}
}
