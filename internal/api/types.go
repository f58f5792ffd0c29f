package api

import "time"

// DefaultPaginationTimeout bounds full-list pagination loops when the caller
// supplied a context without a deadline.
const DefaultPaginationTimeout = 10 * time.Minute

// APIActor represents an actor (user) from the platform API.
type APIActor struct {
	ID        string `json:"id"`
	Handle    string `json:"handle"`
	CreatedAt string `json:"created_at"` // RFC3339; empty when the platform withholds it
	Followers int    `json:"followers_count"`
}

// APIPost represents a textual post from the platform API.
type APIPost struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Author    *APIActor `json:"author"`
	ReshareOf *APIPost  `json:"reshare_of"` // non-nil when the post is a repost/quote
	CreatedAt string    `json:"created_at"`
}

// MentionsResponse from GET /mentions
type MentionsResponse struct {
	Mentions []APIPost `json:"mentions"` // newest first
}

// VerifyResponse from GET /account/verify
type VerifyResponse struct {
	Account APIActor `json:"account"`
}

// BlocksResponse from GET /blocks
type BlocksResponse struct {
	Blocked []APIActor `json:"blocked"`
	Cursor  string     `json:"cursor"`
}

// ServiceStatusResponse from GET /status
type ServiceStatusResponse struct {
	StreamActive        bool   `json:"stream_active"`
	APIActive           bool   `json:"api_active"`
	EstimatedResumeTime string `json:"estimated_resume_time,omitempty"`
}

// GetBlocksOptions configures a GetBlockedPage request.
type GetBlocksOptions struct {
	Limit  int
	Cursor string
}
