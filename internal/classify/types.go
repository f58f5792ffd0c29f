package classify

import (
	"encoding/json"
	"strings"

	"github.com/wardenhq/blockwarden/internal/api"
	"github.com/wardenhq/blockwarden/internal/model"
)

// Kind identifies the classified variant of a stream frame.
type Kind int

const (
	KindKeepalive Kind = iota
	KindDisconnect
	KindWarning
	KindStateChange
	KindMention
	KindUnknown
)

// String returns the metric label for the kind.
func (k Kind) String() string {
	switch k {
	case KindKeepalive:
		return "keepalive"
	case KindDisconnect:
		return "disconnect"
	case KindWarning:
		return "warning"
	case KindStateChange:
		return "state_change"
	case KindMention:
		return "mention"
	default:
		return "unknown"
	}
}

// WarningFollowLimit is the well-known benign warning the platform emits
// when an account follows aggressively. Expected noise, never logged above
// DEBUG.
const WarningFollowLimit = "FOLLOW_LIMIT"

// Event is one classified stream frame. Exactly one payload field matching
// Kind is populated.
type Event struct {
	Kind        Kind
	Disconnect  *Disconnect
	Warning     *Warning
	StateChange *StateChange
	Mention     *model.Mention
}

// Disconnect is a lifecycle frame announcing the stream is ending.
type Disconnect struct {
	Code   int
	Reason string
}

// RequiresRevalidation reports whether the disconnect reason indicates the
// account's credentials may be gone (revoked, deleted, or suspended), in
// which case the account should be revalidated independently of session
// teardown.
func (d *Disconnect) RequiresRevalidation() bool {
	r := strings.ToLower(d.Reason)
	return strings.Contains(r, "revoked") ||
		strings.Contains(r, "deleted") ||
		strings.Contains(r, "suspended")
}

// Warning is a non-fatal notice from the platform.
type Warning struct {
	Code    string
	Message string
}

// Benign reports whether the warning is expected noise.
func (w *Warning) Benign() bool {
	return w.Code == WarningFollowLimit
}

// StateChange is a block or unblock echo for the tracked account.
type StateChange struct {
	Event string // "block" or "unblock"
	Actor *model.RemoteActor
}

// frameEnvelope covers every frame shape the feed delivers; classification
// checks fields in priority order.
type frameEnvelope struct {
	Disconnect *disconnectWire `json:"disconnect"`
	Warning    *warningWire    `json:"warning"`
	Event      string          `json:"event"`
	Source     *api.APIActor   `json:"source"`
	Text       string          `json:"text"`
	Author     *api.APIActor   `json:"author"`
	ReshareOf  json.RawMessage `json:"reshare_of"`
}

type disconnectWire struct {
	Code   int    `json:"code"`
	Reason string `json:"reason"`
}

type warningWire struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
