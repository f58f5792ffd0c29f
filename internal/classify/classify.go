package classify

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/wardenhq/blockwarden/internal/model"
)

// Classify parses a raw stream frame for the tracked account with the given
// handle into a typed Event. Priority order:
//
//  1. empty or whitespace-only frame (including "{}") is a keepalive
//  2. disconnect signal
//  3. warning signal
//  4. block/unblock state change
//  5. textual post with an author that is not a reshare and names the handle
//
// Anything else, including malformed JSON, classifies as KindUnknown.
func Classify(handle string, raw []byte) Event {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("{}")) {
		return Event{Kind: KindKeepalive}
	}

	var frame frameEnvelope
	if err := json.Unmarshal(trimmed, &frame); err != nil {
		return Event{Kind: KindUnknown}
	}

	if frame.Disconnect != nil {
		return Event{
			Kind: KindDisconnect,
			Disconnect: &Disconnect{
				Code:   frame.Disconnect.Code,
				Reason: frame.Disconnect.Reason,
			},
		}
	}

	if frame.Warning != nil {
		return Event{
			Kind: KindWarning,
			Warning: &Warning{
				Code:    frame.Warning.Code,
				Message: frame.Warning.Message,
			},
		}
	}

	if frame.Event == "block" || frame.Event == "unblock" {
		sc := &StateChange{Event: frame.Event}
		if frame.Source != nil {
			actor := frame.Source.ToModel()
			sc.Actor = &actor
		}
		return Event{Kind: KindStateChange, StateChange: sc}
	}

	if frame.Text != "" && frame.Author != nil {
		// A reshare carries another account's text; it must not be
		// attributed to the resharer.
		if len(frame.ReshareOf) > 0 && !bytes.Equal(frame.ReshareOf, []byte("null")) {
			return Event{Kind: KindUnknown}
		}
		if !mentionsHandle(frame.Text, handle) {
			return Event{Kind: KindUnknown}
		}
		return Event{
			Kind: KindMention,
			Mention: &model.Mention{
				Author: frame.Author.ToModel(),
				Text:   frame.Text,
			},
		}
	}

	return Event{Kind: KindUnknown}
}

// mentionsHandle reports whether text names the handle via reply syntax,
// case-insensitively. The platform pre-filters user streams, but chatter
// frames still appear; an empty handle disables the check.
func mentionsHandle(text, handle string) bool {
	if handle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(text), "@"+strings.ToLower(handle))
}
