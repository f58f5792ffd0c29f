package sampler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/wardenhq/blockwarden/internal/model"
	"github.com/wardenhq/blockwarden/internal/stream"
)

type fakeSource struct {
	mu        sync.Mutex
	accounts  []model.TrackedAccount
	err       error
	excluding [][]string
}

func (f *fakeSource) FindEligible(ctx context.Context, excluding []string, limit int) ([]model.TrackedAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.excluding = append(f.excluding, excluding)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.accounts) > limit {
		return f.accounts[:limit], nil
	}
	return f.accounts, nil
}

type fakeConnector struct {
	mu        sync.Mutex
	active    []string
	connected []string
	errFor    map[string]error
}

func (f *fakeConnector) Connect(ctx context.Context, account model.TrackedAccount) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errFor[account.ID]; ok {
		return err
	}
	f.connected = append(f.connected, account.ID)
	return nil
}

func (f *fakeConnector) ActiveIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

func (f *fakeConnector) connectedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.connected))
	copy(out, f.connected)
	return out
}

func accounts(ids ...string) []model.TrackedAccount {
	out := make([]model.TrackedAccount, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.TrackedAccount{ID: id, BlockNewAccounts: true})
	}
	return out
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Interval = time.Hour // Tests trigger sampleOnce directly.
	cfg.OpenRate = 1000
	cfg.OpenBurst = 1000
	return cfg
}

func TestSampler_ConnectsBatch(t *testing.T) {
	source := &fakeSource{accounts: accounts("a1", "a2", "a3")}
	connector := &fakeConnector{}

	s := New(testConfig(), source, connector, nil)
	s.ctx, s.cancel = context.WithCancel(context.Background())
	defer s.cancel()

	s.sampleOnce()

	if got := connector.connectedIDs(); len(got) != 3 {
		t.Errorf("connected = %v, want 3 accounts", got)
	}
}

func TestSampler_BatchSizeBound(t *testing.T) {
	source := &fakeSource{accounts: accounts("a1", "a2", "a3", "a4", "a5")}
	connector := &fakeConnector{}

	cfg := testConfig()
	cfg.BatchSize = 2

	s := New(cfg, source, connector, nil)
	s.ctx, s.cancel = context.WithCancel(context.Background())
	defer s.cancel()

	s.sampleOnce()

	if got := connector.connectedIDs(); len(got) != 2 {
		t.Errorf("connected = %v, want 2 accounts (batch bound)", got)
	}
}

func TestSampler_ExcludesActiveIDs(t *testing.T) {
	source := &fakeSource{accounts: accounts("a3")}
	connector := &fakeConnector{active: []string{"a1", "a2"}}

	s := New(testConfig(), source, connector, nil)
	s.ctx, s.cancel = context.WithCancel(context.Background())
	defer s.cancel()

	s.sampleOnce()

	source.mu.Lock()
	defer source.mu.Unlock()
	if len(source.excluding) != 1 {
		t.Fatalf("FindEligible calls = %d, want 1", len(source.excluding))
	}
	if got := source.excluding[0]; len(got) != 2 {
		t.Errorf("excluding = %v, want the 2 active ids", got)
	}
}

func TestSampler_SkipsBenignConnectErrors(t *testing.T) {
	source := &fakeSource{accounts: accounts("a1", "a2", "a3")}
	connector := &fakeConnector{errFor: map[string]error{
		"a1": stream.ErrAlreadyConnected,
		"a2": stream.ErrCoolingDown,
	}}

	s := New(testConfig(), source, connector, nil)
	s.ctx, s.cancel = context.WithCancel(context.Background())
	defer s.cancel()

	s.sampleOnce()

	if got := connector.connectedIDs(); len(got) != 1 || got[0] != "a3" {
		t.Errorf("connected = %v, want [a3]", got)
	}
}

func TestSampler_QueryFailureIsNonFatal(t *testing.T) {
	source := &fakeSource{err: errors.New("db down")}
	connector := &fakeConnector{}

	s := New(testConfig(), source, connector, nil)
	s.ctx, s.cancel = context.WithCancel(context.Background())
	defer s.cancel()

	s.sampleOnce() // must not panic

	if got := connector.connectedIDs(); len(got) != 0 {
		t.Errorf("connected = %v, want none after query failure", got)
	}
}

func TestSampler_StartStop(t *testing.T) {
	source := &fakeSource{accounts: accounts("a1")}
	connector := &fakeConnector{}

	cfg := testConfig()
	cfg.Interval = 10 * time.Millisecond

	s := New(cfg, source, connector, nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Errorf("Stop failed: %v", err)
	}

	if got := connector.connectedIDs(); len(got) == 0 {
		t.Error("no connects issued while running")
	}
}
