package model

import (
	"testing"
	"time"
)

func TestRemoteActorAge(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	a := RemoteActor{
		ID:        "9001",
		Handle:    "fresh",
		CreatedAt: now.Add(-72 * time.Hour),
		Followers: 3,
	}

	if got := a.Age(now); got != 72*time.Hour {
		t.Errorf("Age = %v, want %v", got, 72*time.Hour)
	}
	if !a.HasCreatedAt() {
		t.Error("HasCreatedAt = false, want true")
	}
}

func TestRemoteActorMissingCreatedAt(t *testing.T) {
	var a RemoteActor
	a.ID = "9002"

	if a.HasCreatedAt() {
		t.Error("HasCreatedAt = true for zero CreatedAt, want false")
	}
}

func TestPolicyFlagsEnabled(t *testing.T) {
	tests := []struct {
		name  string
		flags PolicyFlags
		want  bool
	}{
		{"both off", PolicyFlags{}, false},
		{"new accounts only", PolicyFlags{BlockNewAccounts: true}, true},
		{"low followers only", PolicyFlags{BlockLowFollowers: true}, true},
		{"both on", PolicyFlags{BlockNewAccounts: true, BlockLowFollowers: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.flags.Enabled(); got != tt.want {
				t.Errorf("Enabled = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCauseValues(t *testing.T) {
	if CauseNewAccount != "NEW_ACCOUNT" {
		t.Errorf("CauseNewAccount = %q, want %q", CauseNewAccount, "NEW_ACCOUNT")
	}
	if CauseLowFollowers != "LOW_FOLLOWERS" {
		t.Errorf("CauseLowFollowers = %q, want %q", CauseLowFollowers, "LOW_FOLLOWERS")
	}
}
