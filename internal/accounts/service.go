package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/wardenhq/blockwarden/internal/api"
	"github.com/wardenhq/blockwarden/internal/model"
)

// Store is the persistence the service relies on.
type Store interface {
	FindEligible(ctx context.Context, excluding []string, limit int) ([]model.TrackedAccount, error)
	GetAccount(ctx context.Context, id string) (model.TrackedAccount, error)
	ReloadPolicyFlags(ctx context.Context, id string) (model.PolicyFlags, error)
	MarkDeactivated(ctx context.Context, id string) error
}

// Service composes the store with the platform REST client.
type Service struct {
	store  Store
	client *api.Client
	logger *slog.Logger
}

// NewService creates the account service.
func NewService(store Store, client *api.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  store,
		client: client,
		logger: logger,
	}
}

// FindEligible returns a random batch of connectable accounts.
func (s *Service) FindEligible(ctx context.Context, excluding []string, limit int) ([]model.TrackedAccount, error) {
	return s.store.FindEligible(ctx, excluding, limit)
}

// GetAccount loads one account by id.
func (s *Service) GetAccount(ctx context.Context, id string) (model.TrackedAccount, error) {
	return s.store.GetAccount(ctx, id)
}

// ReloadPolicyFlags reads the account's current flags from the store.
func (s *Service) ReloadPolicyFlags(ctx context.Context, id string) (model.PolicyFlags, error) {
	return s.store.ReloadPolicyFlags(ctx, id)
}

// Revalidate re-checks the account's credentials against the platform.
// A definitive auth failure (401/403) deactivates the account so the
// sampler stops offering it; transient failures leave it untouched.
func (s *Service) Revalidate(ctx context.Context, account model.TrackedAccount) error {
	_, err := s.client.VerifyCredentials(ctx, account.AccessToken)
	if err == nil {
		s.logger.Info("credentials revalidated", "account_id", account.ID)
		return nil
	}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.IsAuthError() {
		s.logger.Info("credentials revoked, deactivating account",
			"account_id", account.ID,
			"status", apiErr.StatusCode,
		)
		if err := s.store.MarkDeactivated(ctx, account.ID); err != nil {
			return fmt.Errorf("deactivate %s: %w", account.ID, err)
		}
		return nil
	}

	return fmt.Errorf("verify credentials for %s: %w", account.ID, err)
}
