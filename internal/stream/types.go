package stream

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wardenhq/blockwarden/internal/model"
)

// Errors
var (
	ErrNotConnected     = errors.New("not connected")
	ErrStaleConnection  = errors.New("connection stale (no traffic within idle window)")
	ErrAlreadyClosed    = errors.New("already closed")
	ErrAlreadyConnected = errors.New("session already exists for account")
	ErrCoolingDown      = errors.New("account is cooling down after throttling")
	ErrStopped          = errors.New("supervisor stopped")
)

// Reason classifies why a session terminated. It selects the recovery path:
// transient and stale reasons release the registry slot immediately,
// rate-limited holds it for the cooldown window, unauthorized triggers
// credential revalidation.
type Reason string

const (
	ReasonTransient    Reason = "transient"
	ReasonStale        Reason = "stale"
	ReasonRateLimited  Reason = "rate_limited"
	ReasonUnauthorized Reason = "unauthorized"
	ReasonShutdown     Reason = "shutdown"
)

// Close codes the platform uses beyond the RFC 6455 range.
const (
	CloseRateLimited  = 4429
	CloseUnauthorized = 4401
	CloseForbidden    = 4403
)

// DialError reports a failed WebSocket handshake with the HTTP status the
// server answered with.
type DialError struct {
	StatusCode int
	Err        error
}

func (e *DialError) Error() string {
	return fmt.Sprintf("stream dial failed (status %d): %v", e.StatusCode, e.Err)
}

func (e *DialError) Unwrap() error { return e.Err }

// ReasonForError maps a termination error onto its recovery reason.
func ReasonForError(err error) Reason {
	if err == nil {
		return ReasonTransient
	}

	if errors.Is(err, ErrStaleConnection) {
		return ReasonStale
	}

	var de *DialError
	if errors.As(err, &de) {
		switch de.StatusCode {
		case 429:
			return ReasonRateLimited
		case 401, 403:
			return ReasonUnauthorized
		}
		return ReasonTransient
	}

	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		switch ce.Code {
		case CloseRateLimited:
			return ReasonRateLimited
		case CloseUnauthorized, CloseForbidden:
			return ReasonUnauthorized
		}
	}

	return ReasonTransient
}

// Frame wraps raw frame bytes with the receive timestamp.
type Frame struct {
	Data       []byte
	ReceivedAt time.Time
}

// ClientConfig configures one stream connection.
type ClientConfig struct {
	URL              string            // WebSocket URL of the user event feed
	Token            string            // Per-account bearer token
	Headers          map[string]string // App-level signed headers
	IdleTimeout      time.Duration     // Max time without any traffic before abort
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	BufferSize       int // Frame channel buffer size
}

// DefaultClientConfig returns sensible defaults. The idle timeout is roughly
// twice the feed's heartbeat interval, so one missed heartbeat survives and
// two do not.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		IdleTimeout:      70 * time.Second,
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     5 * time.Second,
		BufferSize:       256,
	}
}

// SupervisorConfig configures the Connection Supervisor.
type SupervisorConfig struct {
	StreamURL        string
	IdleTimeout      time.Duration
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	Cooldown         time.Duration // Slot hold-off after a rate-limited termination
	StatsInterval    time.Duration
	FrameBufferSize  int
}

// DefaultSupervisorConfig returns sensible defaults.
func DefaultSupervisorConfig() SupervisorConfig {
	return SupervisorConfig{
		IdleTimeout:      70 * time.Second,
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     5 * time.Second,
		Cooldown:         15 * time.Minute,
		StatsInterval:    time.Minute,
		FrameBufferSize:  256,
	}
}

// EventSink consumes classified events for downstream handling.
type EventSink interface {
	// Mention hands a textual mention to the block decision engine.
	Mention(ctx context.Context, account model.TrackedAccount, m model.Mention)

	// StateChange reports a block/unblock echo. actor may be nil when the
	// frame carried no actor object.
	StateChange(ctx context.Context, account model.TrackedAccount, actor *model.RemoteActor)
}

// Revalidator re-checks an account's credentials after an auth failure.
type Revalidator interface {
	Revalidate(ctx context.Context, account model.TrackedAccount) error
}

// Backfiller sweeps recent mentions once per established session.
type Backfiller interface {
	Backfill(ctx context.Context, account model.TrackedAccount)
}

// ActorCache optionally stores actors seen on the wire. Implementations are
// best-effort and must not block on failure.
type ActorCache interface {
	Store(ctx context.Context, actor model.RemoteActor)
}

// Collaborators are the supervisor's downstream dependencies. Sink is
// required; the rest may be nil.
type Collaborators struct {
	Sink        EventSink
	Revalidator Revalidator
	Backfiller  Backfiller
	Cache       ActorCache
}
