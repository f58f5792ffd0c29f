package store

import (
	"context"
	"fmt"

	"github.com/wardenhq/blockwarden/internal/model"
)

// EnqueueCandidate places a block candidate on the action queue. A repeat
// candidate for the same (account, target) pair is a no-op; the first cause
// recorded wins. Returns whether a new row was inserted.
func (s *Store) EnqueueCandidate(ctx context.Context, c model.BlockCandidate) (bool, error) {
	ct, err := s.pool.Exec(ctx, `
		INSERT INTO action_queue (account_id, target_id, target_handle, action, cause)
		VALUES ($1, $2, $3, 'BLOCK', $4)
		ON CONFLICT (account_id, target_id) DO NOTHING
	`, c.AccountID, c.TargetID, c.TargetHandle, string(c.Cause))
	if err != nil {
		return false, fmt.Errorf("enqueue candidate: %w", err)
	}

	return ct.RowsAffected() > 0, nil
}
