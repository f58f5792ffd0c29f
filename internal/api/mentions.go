package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// GetRecentMentions fetches the most recent posts mentioning the account the
// token belongs to, newest first. limit <= 0 leaves the page size to the
// platform default.
func (c *Client) GetRecentMentions(ctx context.Context, token string, limit int) ([]APIPost, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var resp MentionsResponse
	if err := c.get(ctx, "/mentions", token, query, &resp); err != nil {
		return nil, fmt.Errorf("get mentions: %w", err)
	}

	return resp.Mentions, nil
}
