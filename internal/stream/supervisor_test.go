package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wardenhq/blockwarden/internal/model"
)

// recordSink records routed events.
type recordSink struct {
	mu       sync.Mutex
	mentions []model.Mention
	states   int
	actors   []*model.RemoteActor
}

func (r *recordSink) Mention(ctx context.Context, account model.TrackedAccount, m model.Mention) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mentions = append(r.mentions, m)
}

func (r *recordSink) StateChange(ctx context.Context, account model.TrackedAccount, actor *model.RemoteActor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states++
	r.actors = append(r.actors, actor)
}

func (r *recordSink) mentionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.mentions)
}

func (r *recordSink) stateCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.states
}

type countRevalidator struct {
	calls atomic.Int32
}

func (c *countRevalidator) Revalidate(ctx context.Context, account model.TrackedAccount) error {
	c.calls.Add(1)
	return nil
}

type countBackfiller struct {
	calls atomic.Int32
}

func (c *countBackfiller) Backfill(ctx context.Context, account model.TrackedAccount) {
	c.calls.Add(1)
}

type recordCache struct {
	mu     sync.Mutex
	stored []model.RemoteActor
}

func (c *recordCache) Store(ctx context.Context, actor model.RemoteActor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stored = append(c.stored, actor)
}

func testAccount(id string) model.TrackedAccount {
	return model.TrackedAccount{
		ID:               id,
		Handle:           "warden",
		AccessToken:      "token-" + id,
		BlockNewAccounts: true,
	}
}

func testSupervisorConfig(url string) SupervisorConfig {
	cfg := DefaultSupervisorConfig()
	cfg.StreamURL = url
	cfg.Cooldown = 100 * time.Millisecond
	cfg.StatsInterval = time.Hour
	cfg.FrameBufferSize = 100
	return cfg
}

// waitFor polls cond until it holds or the timeout elapses.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v: %s", timeout, msg)
}

func TestSupervisor_ConnectDuplicate(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer server.Close()

	sup := NewSupervisor(testSupervisorConfig(wsURL(server)), nil, Collaborators{Sink: &recordSink{}}, nil)
	if err := sup.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer stopSupervisor(t, sup)

	account := testAccount("a1")
	if err := sup.Connect(context.Background(), account); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	if err := sup.Connect(context.Background(), account); err != ErrAlreadyConnected {
		t.Errorf("second Connect = %v, want ErrAlreadyConnected", err)
	}

	if got := sup.Stats().Live; got != 1 {
		t.Errorf("Live = %d, want 1", got)
	}
}

func TestSupervisor_ConcurrentConnectStorm(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer server.Close()

	sup := NewSupervisor(testSupervisorConfig(wsURL(server)), nil, Collaborators{Sink: &recordSink{}}, nil)
	if err := sup.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer stopSupervisor(t, sup)

	account := testAccount("storm")

	var successes atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := sup.Connect(context.Background(), account); err == nil {
				successes.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := successes.Load(); got != 1 {
		t.Errorf("successful Connects = %d, want 1", got)
	}
	if got := sup.Stats().Live; got != 1 {
		t.Errorf("Live = %d, want 1", got)
	}
}

func TestSupervisor_TransientTerminationReleasesSlot(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		// Close immediately with a normal closure.
		conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
			time.Now().Add(time.Second),
		)
	})
	defer server.Close()

	sup := NewSupervisor(testSupervisorConfig(wsURL(server)), nil, Collaborators{Sink: &recordSink{}}, nil)
	if err := sup.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer stopSupervisor(t, sup)

	if err := sup.Connect(context.Background(), testAccount("a2")); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	waitFor(t, 2*time.Second, func() bool {
		return len(sup.ActiveIDs()) == 0
	}, "slot released after transient termination")
}

func TestSupervisor_RateLimitedCooldown(t *testing.T) {
	var conns atomic.Int32
	server := mockWSServer(t, func(conn *websocket.Conn) {
		if conns.Add(1) == 1 {
			conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(CloseRateLimited, "throttled"),
				time.Now().Add(time.Second),
			)
			return
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer server.Close()

	sup := NewSupervisor(testSupervisorConfig(wsURL(server)), nil, Collaborators{Sink: &recordSink{}}, nil)
	if err := sup.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer stopSupervisor(t, sup)

	account := testAccount("a3")
	if err := sup.Connect(context.Background(), account); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	// The throttled close converts the slot to cooling.
	waitFor(t, 2*time.Second, func() bool {
		return sup.Stats().Cooling == 1
	}, "slot converted to cooling")

	if err := sup.Connect(context.Background(), account); err != ErrCoolingDown {
		t.Errorf("Connect during cooldown = %v, want ErrCoolingDown", err)
	}

	// After the window the slot is free and the account reconnects.
	waitFor(t, 2*time.Second, func() bool {
		return len(sup.ActiveIDs()) == 0
	}, "cooling slot released")

	if err := sup.Connect(context.Background(), account); err != nil {
		t.Errorf("Connect after cooldown = %v, want nil", err)
	}
}

func TestSupervisor_StaleCooldownExpiryKeepsNewerSlot(t *testing.T) {
	var conns atomic.Int32
	server := mockWSServer(t, func(conn *websocket.Conn) {
		if conns.Add(1) == 1 {
			conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(CloseRateLimited, "throttled"),
				time.Now().Add(time.Second),
			)
			return
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer server.Close()

	cfg := testSupervisorConfig(wsURL(server))
	cfg.Cooldown = 300 * time.Millisecond
	sup := NewSupervisor(cfg, nil, Collaborators{Sink: &recordSink{}}, nil)
	if err := sup.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer stopSupervisor(t, sup)

	account := testAccount("a7")
	if err := sup.Connect(context.Background(), account); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	waitFor(t, 2*time.Second, func() bool {
		return sup.Stats().Cooling == 1
	}, "slot converted to cooling")

	// Replace the cooling slot before the window elapses: an operator
	// disconnect frees it, and a fresh Connect registers a new session.
	sup.Disconnect(account.ID)
	if err := sup.Connect(context.Background(), account); err != nil {
		t.Fatalf("Connect after disconnect = %v, want nil", err)
	}

	// Let the original cooldown timer fire; it carries the old generation
	// and must not release the newer live session.
	time.Sleep(2 * cfg.Cooldown)

	if got := sup.Stats().Live; got != 1 {
		t.Errorf("Live after stale cooldown expiry = %d, want 1", got)
	}
	if ids := sup.ActiveIDs(); len(ids) != 1 || ids[0] != account.ID {
		t.Errorf("ActiveIDs = %v, want [%s]", ids, account.ID)
	}
	if err := sup.Connect(context.Background(), account); err != ErrAlreadyConnected {
		t.Errorf("Connect against live session = %v, want ErrAlreadyConnected", err)
	}
}

func TestSupervisor_UnauthorizedDialRevalidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "revoked", http.StatusUnauthorized)
	}))
	defer server.Close()

	reval := &countRevalidator{}
	sup := NewSupervisor(testSupervisorConfig(wsURL(server)), nil, Collaborators{
		Sink:        &recordSink{},
		Revalidator: reval,
	}, nil)
	if err := sup.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer stopSupervisor(t, sup)

	if err := sup.Connect(context.Background(), testAccount("a4")); err == nil {
		t.Fatal("Connect succeeded against 401 endpoint")
	}

	waitFor(t, 2*time.Second, func() bool {
		return reval.calls.Load() == 1
	}, "revalidation triggered")

	if got := len(sup.ActiveIDs()); got != 0 {
		t.Errorf("ActiveIDs len = %d, want 0", got)
	}
}

func TestSupervisor_EventRouting(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		frames := []string{
			`{}`,
			`{"event":"block","source":{"id":"b9","handle":"blocker","followers_count":4}}`,
			`{"id":"p1","text":"@warden hello","author":{"id":"m1","handle":"sender","created_at":"2025-08-01T00:00:00Z","followers_count":2}}`,
		}
		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}
		time.Sleep(time.Second)
	})
	defer server.Close()

	sink := &recordSink{}
	cache := &recordCache{}
	backfill := &countBackfiller{}
	sup := NewSupervisor(testSupervisorConfig(wsURL(server)), nil, Collaborators{
		Sink:       sink,
		Backfiller: backfill,
		Cache:      cache,
	}, nil)
	if err := sup.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer stopSupervisor(t, sup)

	if err := sup.Connect(context.Background(), testAccount("a5")); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	waitFor(t, 2*time.Second, func() bool {
		return sink.mentionCount() == 1 && sink.stateCount() == 1
	}, "mention and state change routed")

	if got := backfill.calls.Load(); got != 1 {
		t.Errorf("backfill calls = %d, want 1", got)
	}

	cache.mu.Lock()
	stored := len(cache.stored)
	cache.mu.Unlock()
	if stored != 1 {
		t.Errorf("cached actors = %d, want 1", stored)
	}

	sink.mu.Lock()
	author := sink.mentions[0].Author.ID
	sink.mu.Unlock()
	if author != "m1" {
		t.Errorf("mention author = %q, want %q", author, "m1")
	}
}

func TestSupervisor_DisconnectFrameEndsSession(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(`{"disconnect":{"code":6,"reason":"account suspended"}}`))
		time.Sleep(time.Second)
	})
	defer server.Close()

	reval := &countRevalidator{}
	sup := NewSupervisor(testSupervisorConfig(wsURL(server)), nil, Collaborators{
		Sink:        &recordSink{},
		Revalidator: reval,
	}, nil)
	if err := sup.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer stopSupervisor(t, sup)

	if err := sup.Connect(context.Background(), testAccount("a6")); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	waitFor(t, 2*time.Second, func() bool {
		return len(sup.ActiveIDs()) == 0
	}, "session removed after disconnect frame")

	waitFor(t, 2*time.Second, func() bool {
		return reval.calls.Load() == 1
	}, "suspension reason triggered revalidation")
}

func TestSupervisor_StopClosesSessions(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer server.Close()

	sup := NewSupervisor(testSupervisorConfig(wsURL(server)), nil, Collaborators{Sink: &recordSink{}}, nil)
	if err := sup.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	for _, id := range []string{"s1", "s2", "s3"} {
		if err := sup.Connect(context.Background(), testAccount(id)); err != nil {
			t.Fatalf("Connect(%s) failed: %v", id, err)
		}
	}

	stopSupervisor(t, sup)

	if got := len(sup.ActiveIDs()); got != 0 {
		t.Errorf("ActiveIDs len after Stop = %d, want 0", got)
	}
}

func stopSupervisor(t *testing.T, sup Supervisor) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sup.Stop(ctx); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
}
