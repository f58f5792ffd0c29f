package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/wardenhq/blockwarden/internal/model"
)

// ReplaceBlocks swaps the account's block mirror for the freshly fetched
// list, in one transaction so readers never observe a partial mirror.
// Returns the new mirror size.
func (s *Store) ReplaceBlocks(ctx context.Context, accountID string, blocked []model.RemoteActor) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM block_mirror WHERE account_id = $1`, accountID); err != nil {
		return 0, fmt.Errorf("clear mirror: %w", err)
	}

	batch := &pgx.Batch{}
	for _, actor := range blocked {
		batch.Queue(`
			INSERT INTO block_mirror (account_id, target_id, handle)
			VALUES ($1, $2, $3)
			ON CONFLICT (account_id, target_id) DO NOTHING
		`, accountID, actor.ID, actor.Handle)
	}

	results := tx.SendBatch(ctx, batch)
	for range blocked {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return 0, fmt.Errorf("insert mirror row: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return 0, fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	return len(blocked), nil
}
