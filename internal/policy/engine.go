package policy

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wardenhq/blockwarden/internal/metrics"
	"github.com/wardenhq/blockwarden/internal/model"
)

// FlagSource reads an account's policy flags from the authoritative store.
type FlagSource interface {
	ReloadPolicyFlags(ctx context.Context, accountID string) (model.PolicyFlags, error)
}

// Queue receives block candidates for asynchronous execution.
type Queue interface {
	EnqueueCandidate(ctx context.Context, c model.BlockCandidate) (inserted bool, err error)
}

// Config holds decision thresholds.
type Config struct {
	MinAccountAge time.Duration // Authors younger than this are new accounts
	MinFollowers  int           // Authors below this are low-follower accounts
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		MinAccountAge: 7 * 24 * time.Hour,
		MinFollowers:  15,
	}
}

// Engine evaluates mentions against block policies.
type Engine struct {
	cfg    Config
	flags  FlagSource
	queue  Queue
	logger *slog.Logger

	now func() time.Time // test hook
}

// NewEngine creates a block decision engine.
func NewEngine(cfg Config, flags FlagSource, queue Queue, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		cfg:    cfg,
		flags:  flags,
		queue:  queue,
		logger: logger,
		now:    time.Now,
	}
}

// Evaluate decides whether the mention's author should be blocked on behalf
// of the recipient account, and enqueues at most one candidate.
//
// The flag reload is a deliberate consistency point: a stream connection can
// outlive a policy change by hours, so the flags are re-read at decision
// time. A reload failure abandons the evaluation rather than acting on
// stale flags.
func (e *Engine) Evaluate(ctx context.Context, account model.TrackedAccount, m model.Mention) error {
	if m.Reshare {
		return nil
	}
	if m.Author.ID == "" || m.Author.ID == account.ID {
		return nil
	}
	if !m.Author.HasCreatedAt() {
		return nil
	}

	metrics.MentionsEvaluated.Inc()

	age := m.Author.Age(e.now())
	underAge := age < e.cfg.MinAccountAge
	underFollowers := m.Author.Followers < e.cfg.MinFollowers

	if !underAge && !underFollowers {
		return nil
	}

	flags, err := e.flags.ReloadPolicyFlags(ctx, account.ID)
	if err != nil {
		return fmt.Errorf("reload policy flags for %s: %w", account.ID, err)
	}

	var cause model.Cause
	switch {
	case underAge && flags.BlockNewAccounts:
		cause = model.CauseNewAccount
	case underFollowers && flags.BlockLowFollowers:
		cause = model.CauseLowFollowers
	default:
		return nil
	}

	candidate := model.BlockCandidate{
		AccountID:    account.ID,
		TargetID:     m.Author.ID,
		TargetHandle: m.Author.Handle,
		Cause:        cause,
	}

	inserted, err := e.queue.EnqueueCandidate(ctx, candidate)
	if err != nil {
		return fmt.Errorf("enqueue candidate: %w", err)
	}

	if inserted {
		metrics.CandidatesEnqueued.WithLabelValues(string(cause)).Inc()
		e.logger.Info("block candidate enqueued",
			"account_id", account.ID,
			"target_id", m.Author.ID,
			"target_handle", m.Author.Handle,
			"cause", cause,
			"author_age_days", age.Hours()/24,
			"author_followers", m.Author.Followers,
		)
	}

	return nil
}
