package api

import (
	"time"

	"github.com/wardenhq/blockwarden/internal/model"
)

// ParseTimestamp parses an RFC3339 timestamp into a time.Time.
// Returns the zero time for empty or invalid input.
func ParseTimestamp(iso string) time.Time {
	if iso == "" {
		return time.Time{}
	}

	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		// Try without timezone
		t, err = time.Parse("2006-01-02T15:04:05", iso)
		if err != nil {
			return time.Time{}
		}
	}

	return t
}

// ToModel converts an APIActor to model.RemoteActor.
func (a *APIActor) ToModel() model.RemoteActor {
	return model.RemoteActor{
		ID:        a.ID,
		Handle:    a.Handle,
		CreatedAt: ParseTimestamp(a.CreatedAt),
		Followers: a.Followers,
	}
}

// ToMention converts an APIPost to model.Mention. Returns false when the
// post has no author and cannot be evaluated.
func (p *APIPost) ToMention() (model.Mention, bool) {
	if p.Author == nil {
		return model.Mention{}, false
	}

	return model.Mention{
		Author:  p.Author.ToModel(),
		Text:    p.Text,
		Reshare: p.ReshareOf != nil,
	}, true
}
