package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/wardenhq/blockwarden/internal/api"
	"github.com/wardenhq/blockwarden/internal/model"
)

// AccountSource resolves an account id to its credentials.
type AccountSource interface {
	GetAccount(ctx context.Context, id string) (model.TrackedAccount, error)
}

// BlockMirror persists the fetched block list.
type BlockMirror interface {
	ReplaceBlocks(ctx context.Context, accountID string, blocked []model.RemoteActor) (int, error)
}

// Reconciler pulls the full block list over REST and replaces the mirror.
type Reconciler struct {
	client   *api.Client
	accounts AccountSource
	mirror   BlockMirror
	logger   *slog.Logger

	group singleflight.Group
}

// New creates a block-list reconciler.
func New(client *api.Client, accounts AccountSource, mirror BlockMirror, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		client:   client,
		accounts: accounts,
		mirror:   mirror,
		logger:   logger,
	}
}

// ReconcileBlocks refreshes the account's block mirror. Concurrent calls for
// the same account share one flight; a debounced burst that slips through
// still produces a single fetch.
func (r *Reconciler) ReconcileBlocks(ctx context.Context, accountID string) error {
	_, err, _ := r.group.Do(accountID, func() (any, error) {
		return nil, r.reconcile(ctx, accountID)
	})
	return err
}

func (r *Reconciler) reconcile(ctx context.Context, accountID string) error {
	start := time.Now()

	account, err := r.accounts.GetAccount(ctx, accountID)
	if err != nil {
		return fmt.Errorf("resolve account: %w", err)
	}

	apiBlocked, err := r.client.GetAllBlocked(ctx, account.AccessToken)
	if err != nil {
		return fmt.Errorf("fetch block list: %w", err)
	}

	blocked := make([]model.RemoteActor, 0, len(apiBlocked))
	for i := range apiBlocked {
		blocked = append(blocked, apiBlocked[i].ToModel())
	}

	count, err := r.mirror.ReplaceBlocks(ctx, accountID, blocked)
	if err != nil {
		return fmt.Errorf("replace mirror: %w", err)
	}

	r.logger.Info("block mirror reconciled",
		"account_id", accountID,
		"blocked", count,
		"duration", time.Since(start),
	)

	return nil
}
