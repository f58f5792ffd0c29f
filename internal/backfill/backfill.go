package backfill

import (
	"context"
	"log/slog"

	"github.com/wardenhq/blockwarden/internal/api"
	"github.com/wardenhq/blockwarden/internal/metrics"
	"github.com/wardenhq/blockwarden/internal/model"
)

// Evaluator is the block decision engine's entry point.
type Evaluator interface {
	Evaluate(ctx context.Context, account model.TrackedAccount, m model.Mention) error
}

// Fetcher sweeps recent mentions after a session opens.
type Fetcher struct {
	client *api.Client
	eval   Evaluator
	limit  int
	logger *slog.Logger
}

// NewFetcher creates a catch-up fetcher. limit bounds the historical page.
func NewFetcher(client *api.Client, eval Evaluator, limit int, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	if limit <= 0 {
		limit = 50
	}
	return &Fetcher{
		client: client,
		eval:   eval,
		limit:  limit,
		logger: logger,
	}
}

// Backfill fetches the account's most recent mentions and evaluates one
// mention per unique author. Failures are logged and swallowed; catch-up is
// coverage, not a precondition for streaming.
func (f *Fetcher) Backfill(ctx context.Context, account model.TrackedAccount) {
	posts, err := f.client.GetRecentMentions(ctx, account.AccessToken, f.limit)
	if err != nil {
		f.logger.Warn("catch-up query failed",
			"account_id", account.ID,
			"error", err,
		)
		return
	}

	// The endpoint returns newest first; keep the first occurrence per
	// author in that order, so the representative record carries the
	// author's most recent follower count.
	seen := make(map[string]struct{})
	var evaluated int
	for i := range posts {
		mention, ok := posts[i].ToMention()
		if !ok {
			continue
		}
		if _, dup := seen[mention.Author.ID]; dup {
			continue
		}
		seen[mention.Author.ID] = struct{}{}

		if err := f.eval.Evaluate(ctx, account, mention); err != nil {
			f.logger.Warn("catch-up evaluation failed",
				"account_id", account.ID,
				"author_id", mention.Author.ID,
				"error", err,
			)
			continue
		}
		evaluated++
		metrics.BackfillMentions.Inc()
	}

	f.logger.Debug("catch-up sweep complete",
		"account_id", account.ID,
		"mentions", len(posts),
		"unique_authors", len(seen),
		"evaluated", evaluated,
	)
}
