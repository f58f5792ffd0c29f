package api

import (
	"context"
	"fmt"
)

// VerifyCredentials checks that the account token is still valid and returns
// the account's actor record. A 401 or 403 APIError means the credentials
// are revoked or the account is gone.
func (c *Client) VerifyCredentials(ctx context.Context, token string) (*APIActor, error) {
	var resp VerifyResponse
	if err := c.get(ctx, "/account/verify", token, nil, &resp); err != nil {
		return nil, fmt.Errorf("verify credentials: %w", err)
	}
	return &resp.Account, nil
}

// GetServiceStatus fetches the current platform status.
func (c *Client) GetServiceStatus(ctx context.Context) (*ServiceStatusResponse, error) {
	var resp ServiceStatusResponse
	if err := c.get(ctx, "/status", "", nil, &resp); err != nil {
		return nil, fmt.Errorf("get service status: %w", err)
	}
	return &resp, nil
}
