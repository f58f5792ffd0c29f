package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// GetBlockedPage fetches one page of the account's block list.
func (c *Client) GetBlockedPage(ctx context.Context, token string, opts GetBlocksOptions) (*BlocksResponse, error) {
	query := url.Values{}

	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Cursor != "" {
		query.Set("cursor", opts.Cursor)
	}

	var resp BlocksResponse
	if err := c.get(ctx, "/blocks", token, query, &resp); err != nil {
		return nil, fmt.Errorf("get blocks: %w", err)
	}

	return &resp, nil
}

// GetAllBlocked fetches the account's full block list by paginating through
// results. Uses DefaultPaginationTimeout if the context has no deadline.
func (c *Client) GetAllBlocked(ctx context.Context, token string) ([]APIActor, error) {
	// Apply default timeout if context has no deadline.
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultPaginationTimeout)
		defer cancel()
	}

	var allBlocked []APIActor
	opts := GetBlocksOptions{Limit: 1000}

	for {
		resp, err := c.GetBlockedPage(ctx, token, opts)
		if err != nil {
			return nil, err
		}

		allBlocked = append(allBlocked, resp.Blocked...)

		if resp.Cursor == "" {
			break
		}
		opts.Cursor = resp.Cursor
	}

	return allBlocked, nil
}
