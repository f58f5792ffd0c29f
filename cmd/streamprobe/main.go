// streamprobe connects a single tracked account to the user event feed and
// prints classified events to the console.
// Usage: go run ./cmd/streamprobe --config configs/warden.local.yaml --account <id>
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wardenhq/blockwarden/internal/auth"
	"github.com/wardenhq/blockwarden/internal/classify"
	"github.com/wardenhq/blockwarden/internal/config"
	"github.com/wardenhq/blockwarden/internal/store"
	"github.com/wardenhq/blockwarden/internal/stream"
)

func main() {
	configPath := flag.String("config", "configs/warden.example.yaml", "path to config file")
	accountID := flag.String("account", "", "tracked account id to stream")
	verbose := flag.Bool("verbose", false, "print raw frame JSON")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	if *accountID == "" {
		logger.Error("--account is required")
		os.Exit(1)
	}

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	creds, err := auth.LoadCredentials(cfg.API.AppKey, cfg.API.AppSecretPath)
	if err != nil {
		logger.Error("failed to load credentials", "error", err)
		os.Exit(1)
	}

	db, err := store.Connect(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	account, err := db.GetAccount(ctx, *accountID)
	if err != nil {
		logger.Error("failed to load account", "account_id", *accountID, "error", err)
		os.Exit(1)
	}
	logger.Info("streaming account", "account_id", account.ID, "handle", account.Handle)

	clientCfg := stream.DefaultClientConfig()
	clientCfg.URL = cfg.API.StreamURL
	clientCfg.Token = account.AccessToken
	clientCfg.Headers = creds.SignStream()
	if cfg.Stream.IdleTimeout > 0 {
		clientCfg.IdleTimeout = cfg.Stream.IdleTimeout
	}

	client := stream.NewClient(clientCfg, logger)
	if err := client.Connect(ctx); err != nil {
		logger.Error("failed to connect", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	logger.Info("streaming started - press Ctrl+C to stop")

	frames := 0
	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down", "frames", frames, "elapsed", time.Since(start).Round(time.Second))
			return

		case err := <-client.Errors():
			logger.Error("stream ended",
				"error", err,
				"reason", stream.ReasonForError(err),
				"frames", frames,
			)
			return

		case frame, ok := <-client.Frames():
			if !ok {
				logger.Info("frame channel closed", "frames", frames)
				return
			}
			frames++

			if *verbose {
				fmt.Printf("[RAW] %s\n", frame.Data)
			}
			printEvent(account.Handle, frame)
		}
	}
}

func printEvent(handle string, frame stream.Frame) {
	event := classify.Classify(handle, frame.Data)

	switch event.Kind {
	case classify.KindKeepalive:
		fmt.Println("[KEEPALIVE]")

	case classify.KindDisconnect:
		fmt.Printf("[DISCONNECT] reason=%s revalidate=%t\n",
			event.Disconnect.Reason, event.Disconnect.RequiresRevalidation())

	case classify.KindWarning:
		fmt.Printf("[WARNING] code=%s benign=%t\n", event.Warning.Code, event.Warning.Benign())

	case classify.KindStateChange:
		sc := event.StateChange
		if sc.Actor != nil {
			fmt.Printf("[STATE CHANGE] event=%s actor=%s handle=%s\n",
				sc.Event, sc.Actor.ID, sc.Actor.Handle)
		} else {
			fmt.Printf("[STATE CHANGE] event=%s (no actor)\n", sc.Event)
		}

	case classify.KindMention:
		m := event.Mention
		fmt.Printf("[MENTION] author=%s followers=%d created_at=%s text=%q\n",
			m.Author.Handle, m.Author.Followers, m.Author.CreatedAt.Format(time.RFC3339), m.Text)

	default:
		fmt.Printf("[UNKNOWN] %d bytes\n", len(frame.Data))
	}
}
