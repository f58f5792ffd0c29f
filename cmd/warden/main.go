package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wardenhq/blockwarden/internal/accounts"
	"github.com/wardenhq/blockwarden/internal/api"
	"github.com/wardenhq/blockwarden/internal/auth"
	"github.com/wardenhq/blockwarden/internal/backfill"
	"github.com/wardenhq/blockwarden/internal/config"
	"github.com/wardenhq/blockwarden/internal/debounce"
	"github.com/wardenhq/blockwarden/internal/model"
	"github.com/wardenhq/blockwarden/internal/policy"
	"github.com/wardenhq/blockwarden/internal/reconcile"
	"github.com/wardenhq/blockwarden/internal/sampler"
	"github.com/wardenhq/blockwarden/internal/store"
	"github.com/wardenhq/blockwarden/internal/stream"
	"github.com/wardenhq/blockwarden/internal/usercache"
	"github.com/wardenhq/blockwarden/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/warden.local.yaml", "path to config file")
	flag.Parse()

	// Bootstrap logger until the config tells us level and format.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting warden",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = newLogger(cfg.Logging)
	slog.SetDefault(logger)

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"api_url", cfg.API.RestURL,
		"stream_url", cfg.API.StreamURL,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Load app credentials
	creds, err := auth.LoadCredentials(cfg.API.AppKey, cfg.API.AppSecretPath)
	if err != nil {
		logger.Error("failed to load credentials", "error", err)
		os.Exit(1)
	}

	// Connect to the database
	logger.Info("connecting to database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"database", cfg.Database.Name,
	)

	db, err := store.Connect(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	logger.Info("database connected")

	// Optional actor cache
	var actorCache stream.ActorCache
	var cacheCloser interface{ Close() error }
	if cfg.Redis.Addr != "" {
		cache, err := usercache.New(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		actorCache = cache
		cacheCloser = cache
		logger.Info("actor cache connected", "addr", cfg.Redis.Addr)
	}

	// Create API client
	apiClient := api.NewClient(
		cfg.API.RestURL,
		creds,
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.MaxRetries, time.Second),
	)

	// Check platform status
	status, err := apiClient.GetServiceStatus(ctx)
	if err != nil {
		logger.Error("failed to get platform status", "error", err)
		os.Exit(1)
	}
	logger.Info("platform status",
		"stream_active", status.StreamActive,
		"api_active", status.APIActive,
	)

	// Account service, decision engine, reconciliation pipeline
	accountSvc := accounts.NewService(db, apiClient, logger)

	engine := policy.NewEngine(policy.Config{
		MinAccountAge: cfg.Policy.MinAccountAge,
		MinFollowers:  cfg.Policy.MinFollowers,
	}, accountSvc, db, logger)

	reconciler := reconcile.New(apiClient, accountSvc, db, logger)
	notifier := debounce.NewNotifier(cfg.Debounce.Window, reconciler, logger)

	backfiller := backfill.NewFetcher(apiClient, engine, cfg.Policy.BackfillLimit, logger)

	// Connection supervisor
	supCfg := stream.DefaultSupervisorConfig()
	supCfg.StreamURL = cfg.API.StreamURL
	supCfg.IdleTimeout = cfg.Stream.IdleTimeout
	supCfg.HandshakeTimeout = cfg.Stream.HandshakeTimeout
	supCfg.Cooldown = cfg.Stream.Cooldown
	supCfg.StatsInterval = cfg.Stream.StatsInterval

	sup := stream.NewSupervisor(supCfg, creds, stream.Collaborators{
		Sink:        &eventSink{engine: engine, notifier: notifier, logger: logger},
		Revalidator: accountSvc,
		Backfiller:  backfiller,
		Cache:       actorCache,
	}, logger)

	// Candidate sampler
	smp := sampler.New(sampler.Config{
		Interval:  cfg.Sampler.Interval,
		BatchSize: cfg.Sampler.BatchSize,
		OpenRate:  cfg.Sampler.OpenRate,
		OpenBurst: cfg.Sampler.OpenBurst,
	}, accountSvc, sup, logger)

	// Start ops server early so the health check covers startup
	opsServer := &http.Server{
		Addr:    cfg.Ops.Addr,
		Handler: createOpsHandler(cfg.Ops, db, sup, logger),
	}

	go func() {
		logger.Info("starting ops server", "addr", cfg.Ops.Addr)
		if err := opsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("ops server error", "error", err)
		}
	}()

	if err := sup.Start(ctx); err != nil {
		logger.Error("failed to start connection supervisor", "error", err)
		os.Exit(1)
	}
	if err := smp.Start(ctx); err != nil {
		logger.Error("failed to start sampler", "error", err)
		os.Exit(1)
	}

	logger.Info("warden running",
		"instance_id", cfg.Instance.ID,
		"ops_addr", cfg.Ops.Addr,
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	// Stop intake first, then sessions, then flush reconciliations.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := smp.Stop(shutdownCtx); err != nil {
		logger.Error("sampler stop", "error", err)
	}
	if err := sup.Stop(shutdownCtx); err != nil {
		logger.Error("supervisor stop", "error", err)
	}
	notifier.Close()
	if cacheCloser != nil {
		cacheCloser.Close()
	}
	opsServer.Shutdown(shutdownCtx)

	logger.Info("warden stopped")
}

// newLogger builds the process logger from config.
func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(cfg.Format) == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// eventSink feeds classified stream events into the decision engine and the
// reconciliation debouncer.
type eventSink struct {
	engine   *policy.Engine
	notifier *debounce.Notifier
	logger   *slog.Logger
}

func (s *eventSink) Mention(ctx context.Context, account model.TrackedAccount, m model.Mention) {
	if err := s.engine.Evaluate(ctx, account, m); err != nil {
		s.logger.Error("mention evaluation failed",
			"account_id", account.ID,
			"author_id", m.Author.ID,
			"error", err,
		)
	}
}

func (s *eventSink) StateChange(ctx context.Context, account model.TrackedAccount, actor *model.RemoteActor) {
	s.notifier.Notify(account.ID)
}

// createOpsHandler serves health and Prometheus metrics.
func createOpsHandler(cfg config.OpsConfig, db *store.Store, sup stream.Supervisor, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	startedAt := time.Now()

	mux.Handle(cfg.MetricsPath, promhttp.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string                 `json:"status"`
			Uptime     string                 `json:"uptime"`
			Components map[string]interface{} `json:"components"`
		}{
			Status:     "healthy",
			Uptime:     time.Since(startedAt).Round(time.Second).String(),
			Components: make(map[string]interface{}),
		}

		// Check database
		if err := db.Ping(ctx); err != nil {
			health.Status = "unhealthy"
			health.Components["postgres"] = map[string]string{
				"status": "disconnected",
				"error":  err.Error(),
			}
		} else {
			health.Components["postgres"] = "connected"
		}

		// Session registry occupancy
		stats := sup.Stats()
		health.Components["sessions"] = map[string]interface{}{
			"live":         stats.Live,
			"cooling":      stats.Cooling,
			"open_sockets": stats.OpenSockets,
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	return mux
}
