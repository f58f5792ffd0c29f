package accounts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/wardenhq/blockwarden/internal/api"
	"github.com/wardenhq/blockwarden/internal/model"
)

type fakeStore struct {
	mu          sync.Mutex
	deactivated []string
}

func (f *fakeStore) FindEligible(ctx context.Context, excluding []string, limit int) ([]model.TrackedAccount, error) {
	return nil, nil
}

func (f *fakeStore) GetAccount(ctx context.Context, id string) (model.TrackedAccount, error) {
	return model.TrackedAccount{ID: id}, nil
}

func (f *fakeStore) ReloadPolicyFlags(ctx context.Context, id string) (model.PolicyFlags, error) {
	return model.PolicyFlags{}, nil
}

func (f *fakeStore) MarkDeactivated(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deactivated = append(f.deactivated, id)
	return nil
}

func (f *fakeStore) deactivatedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.deactivated))
	copy(out, f.deactivated)
	return out
}

func TestRevalidate_ValidCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"account":{"id":"acct-1","handle":"warden"}}`))
	}))
	defer server.Close()

	store := &fakeStore{}
	svc := NewService(store, api.NewClient(server.URL, nil, api.WithTimeout(5*time.Second)), nil)

	err := svc.Revalidate(context.Background(), model.TrackedAccount{ID: "acct-1", AccessToken: "tok"})
	if err != nil {
		t.Fatalf("Revalidate failed: %v", err)
	}
	if got := store.deactivatedIDs(); len(got) != 0 {
		t.Errorf("deactivated = %v, want none", got)
	}
}

func TestRevalidate_RevokedCredentialsDeactivate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "revoked", http.StatusUnauthorized)
	}))
	defer server.Close()

	store := &fakeStore{}
	svc := NewService(store, api.NewClient(server.URL, nil, api.WithTimeout(5*time.Second)), nil)

	err := svc.Revalidate(context.Background(), model.TrackedAccount{ID: "acct-1", AccessToken: "tok"})
	if err != nil {
		t.Fatalf("Revalidate failed: %v", err)
	}
	if got := store.deactivatedIDs(); len(got) != 1 || got[0] != "acct-1" {
		t.Errorf("deactivated = %v, want [acct-1]", got)
	}
}

func TestRevalidate_TransientFailureLeavesAccount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "outage", http.StatusInternalServerError)
	}))
	defer server.Close()

	store := &fakeStore{}
	client := api.NewClient(server.URL, nil, api.WithTimeout(5*time.Second), api.WithRetries(0, time.Millisecond))
	svc := NewService(store, client, nil)

	err := svc.Revalidate(context.Background(), model.TrackedAccount{ID: "acct-1", AccessToken: "tok"})
	if err == nil {
		t.Fatal("Revalidate = nil, want error for transient failure")
	}
	if got := store.deactivatedIDs(); len(got) != 0 {
		t.Errorf("deactivated = %v, want none for transient failure", got)
	}
}
