package model

import "time"

// -----------------------------------------------------------------------------
// Account Types
// -----------------------------------------------------------------------------

// TrackedAccount is an account the service holds a stream open for.
type TrackedAccount struct {
	ID                string // Primary key (platform account id)
	Handle            string // Display handle, used in logs and mention matching
	AccessToken       string // Per-account bearer token for stream and REST calls
	BlockNewAccounts  bool   // Policy: block mentioning actors younger than the age threshold
	BlockLowFollowers bool   // Policy: block mentioning actors below the follower threshold
	Deactivated       bool   // Credentials confirmed gone; never sampled again
}

// PolicyFlags is the pair of block-policy switches read fresh from the store
// immediately before each block decision.
type PolicyFlags struct {
	BlockNewAccounts  bool
	BlockLowFollowers bool
}

// Enabled reports whether any policy rule is switched on.
func (f PolicyFlags) Enabled() bool {
	return f.BlockNewAccounts || f.BlockLowFollowers
}

// -----------------------------------------------------------------------------
// Feed Types
// -----------------------------------------------------------------------------

// RemoteActor is the author of a post or the subject of a state change,
// as seen on the wire.
type RemoteActor struct {
	ID        string    // Platform actor id
	Handle    string    // Display name
	CreatedAt time.Time // Account creation time; zero when the feed omitted it
	Followers int       // Follower count at event time
}

// Age returns how old the actor's account is at the given instant.
func (a RemoteActor) Age(now time.Time) time.Duration {
	return now.Sub(a.CreatedAt)
}

// HasCreatedAt reports whether the feed supplied a creation time.
// Actors without one are never evaluated against the age rule.
func (a RemoteActor) HasCreatedAt() bool {
	return !a.CreatedAt.IsZero()
}

// Mention is a textual post that names a tracked account.
type Mention struct {
	Author  RemoteActor
	Text    string
	Reshare bool // Repost/quote of another post; reshares never produce candidates
}

// -----------------------------------------------------------------------------
// Decision Types
// -----------------------------------------------------------------------------

// Cause identifies which policy rule produced a block candidate.
type Cause string

const (
	CauseNewAccount   Cause = "NEW_ACCOUNT"
	CauseLowFollowers Cause = "LOW_FOLLOWERS"
)

// BlockCandidate is one enqueued block action: block Target on behalf of
// the tracked account, for exactly one Cause.
type BlockCandidate struct {
	AccountID    string // Tracked account the block happens on behalf of
	TargetID     string // Actor to block
	TargetHandle string // Display name, carried for audit logs
	Cause        Cause
}
