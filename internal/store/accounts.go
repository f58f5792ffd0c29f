package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/wardenhq/blockwarden/internal/model"
)

// ErrAccountNotFound is returned when an account id has no row.
var ErrAccountNotFound = errors.New("account not found")

// emptyIfNil keeps an id-list query parameter a real array. A nil slice
// encodes as SQL NULL, and `id != ALL(NULL)` evaluates to NULL for every
// row, silently returning an empty result.
func emptyIfNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

// FindEligible selects up to limit accounts that are active, have at least
// one policy enabled, and are not in the excluding set, in random order.
// Random order spreads retry attempts across sampler ticks instead of
// re-offering the same ordered prefix when most accounts are connected.
func (s *Store) FindEligible(ctx context.Context, excluding []string, limit int) ([]model.TrackedAccount, error) {
	excluding = emptyIfNil(excluding)

	rows, err := s.pool.Query(ctx, `
		SELECT id, handle, access_token, block_new_accounts, block_low_followers, deactivated
		FROM tracked_accounts
		WHERE NOT deactivated
		  AND (block_new_accounts OR block_low_followers)
		  AND id != ALL($1)
		ORDER BY random()
		LIMIT $2
	`, excluding, limit)
	if err != nil {
		return nil, fmt.Errorf("query eligible accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.TrackedAccount
	for rows.Next() {
		var a model.TrackedAccount
		if err := rows.Scan(&a.ID, &a.Handle, &a.AccessToken, &a.BlockNewAccounts, &a.BlockLowFollowers, &a.Deactivated); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}

	return accounts, rows.Err()
}

// GetAccount loads one account by id.
func (s *Store) GetAccount(ctx context.Context, id string) (model.TrackedAccount, error) {
	var a model.TrackedAccount
	err := s.pool.QueryRow(ctx, `
		SELECT id, handle, access_token, block_new_accounts, block_low_followers, deactivated
		FROM tracked_accounts
		WHERE id = $1
	`, id).Scan(&a.ID, &a.Handle, &a.AccessToken, &a.BlockNewAccounts, &a.BlockLowFollowers, &a.Deactivated)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.TrackedAccount{}, ErrAccountNotFound
	}
	if err != nil {
		return model.TrackedAccount{}, fmt.Errorf("get account %s: %w", id, err)
	}
	return a, nil
}

// ReloadPolicyFlags reads the account's current policy flags. The decision
// engine calls this immediately before every block decision.
func (s *Store) ReloadPolicyFlags(ctx context.Context, id string) (model.PolicyFlags, error) {
	var f model.PolicyFlags
	err := s.pool.QueryRow(ctx, `
		SELECT block_new_accounts, block_low_followers
		FROM tracked_accounts
		WHERE id = $1
	`, id).Scan(&f.BlockNewAccounts, &f.BlockLowFollowers)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.PolicyFlags{}, ErrAccountNotFound
	}
	if err != nil {
		return model.PolicyFlags{}, fmt.Errorf("reload policy flags for %s: %w", id, err)
	}
	return f, nil
}

// MarkDeactivated flags an account as gone. Deactivated accounts are never
// sampled again.
func (s *Store) MarkDeactivated(ctx context.Context, id string) error {
	ct, err := s.pool.Exec(ctx, `
		UPDATE tracked_accounts SET deactivated = true WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("mark deactivated %s: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return ErrAccountNotFound
	}

	s.logger.Info("account deactivated", "account_id", id)
	return nil
}
