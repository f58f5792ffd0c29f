package stream

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wardenhq/blockwarden/internal/auth"
	"github.com/wardenhq/blockwarden/internal/classify"
	"github.com/wardenhq/blockwarden/internal/metrics"
	"github.com/wardenhq/blockwarden/internal/model"
)

// Supervisor owns the registry of live stream sessions, one per tracked
// account at most.
type Supervisor interface {
	// Start begins the supervisor's background loops.
	Start(ctx context.Context) error

	// Stop closes all sessions, bounded by ctx.
	Stop(ctx context.Context) error

	// Connect opens a session for the account. Returns ErrAlreadyConnected
	// when a session exists and ErrCoolingDown when the account is held in
	// post-throttle cooldown.
	Connect(ctx context.Context, account model.TrackedAccount) error

	// Disconnect removes and closes the account's session, if any.
	Disconnect(accountID string)

	// ActiveIDs returns every account id holding a registry slot,
	// live or cooling. The sampler must exclude all of them.
	ActiveIDs() []string

	// Stats returns current session statistics.
	Stats() SupervisorStats
}

// SupervisorStats reports registry occupancy.
type SupervisorStats struct {
	Live        int
	Cooling     int
	OpenSockets int
}

type slotState int

const (
	slotOpening slotState = iota
	slotLive
	slotCooling
)

// slot is one registry entry. The generation tag identifies the occupancy;
// every deferred callback captures it at arm time and verifies it at fire
// time, so a legitimately replaced session is never touched by a stale
// callback.
type slot struct {
	state     slotState
	gen       uuid.UUID
	account   model.TrackedAccount
	client    Client
	startedAt time.Time
}

// supervisor implements the Supervisor interface.
type supervisor struct {
	cfg    SupervisorConfig
	creds  *auth.Credentials
	collab Collaborators
	logger *slog.Logger

	mu    sync.Mutex
	slots map[string]*slot

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSupervisor creates a Connection Supervisor. creds may be nil for
// unsigned stream handshakes (local testing only).
func NewSupervisor(cfg SupervisorConfig, creds *auth.Credentials, collab Collaborators, logger *slog.Logger) Supervisor {
	if logger == nil {
		logger = slog.Default()
	}

	return &supervisor{
		cfg:    cfg,
		creds:  creds,
		collab: collab,
		logger: logger,
		slots:  make(map[string]*slot),
	}
}

// Start begins the stats loop.
func (s *supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.wg.Add(1)
	go s.statsLoop()

	s.logger.Info("connection supervisor started",
		"idle_timeout", s.cfg.IdleTimeout,
		"cooldown", s.cfg.Cooldown,
	)

	return nil
}

// Stop closes every session and waits for session goroutines.
func (s *supervisor) Stop(ctx context.Context) error {
	s.logger.Info("stopping connection supervisor")

	if s.cancel != nil {
		s.cancel()
	}

	s.mu.Lock()
	clients := make([]Client, 0, len(s.slots))
	for id, sl := range s.slots {
		if sl.client != nil {
			clients = append(clients, sl.client)
		}
		delete(s.slots, id)
	}
	s.mu.Unlock()

	for _, c := range clients {
		c.Close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("supervisor shutdown timeout")
	}

	s.updateGauges()
	s.logger.Info("connection supervisor stopped")
	return nil
}

// Connect reserves the registry slot, then dials. Reservation happens first
// so concurrent Connect storms for the same id collapse to one dial; the
// slot is released or converted on dial failure.
func (s *supervisor) Connect(ctx context.Context, account model.TrackedAccount) error {
	gen := uuid.New()

	s.mu.Lock()
	if s.ctx == nil || s.ctx.Err() != nil {
		s.mu.Unlock()
		return ErrStopped
	}
	if existing, ok := s.slots[account.ID]; ok {
		s.mu.Unlock()
		if existing.state == slotCooling {
			return ErrCoolingDown
		}
		return ErrAlreadyConnected
	}
	s.slots[account.ID] = &slot{state: slotOpening, gen: gen, account: account}
	s.mu.Unlock()

	var headers map[string]string
	if s.creds != nil {
		headers = s.creds.SignStream()
	}

	client := NewClient(ClientConfig{
		URL:              s.cfg.StreamURL,
		Token:            account.AccessToken,
		Headers:          headers,
		IdleTimeout:      s.cfg.IdleTimeout,
		HandshakeTimeout: s.cfg.HandshakeTimeout,
		WriteTimeout:     s.cfg.WriteTimeout,
		BufferSize:       s.cfg.FrameBufferSize,
	}, s.logger.With("account_id", account.ID))

	if err := client.Connect(ctx); err != nil {
		s.terminate(account, gen, ReasonForError(err))
		return err
	}

	s.mu.Lock()
	sl, ok := s.slots[account.ID]
	if !ok || sl.gen != gen {
		// Stop cleared the registry while we were dialing.
		s.mu.Unlock()
		client.Close()
		return ErrStopped
	}
	sl.state = slotLive
	sl.client = client
	sl.startedAt = time.Now()
	s.mu.Unlock()

	s.wg.Add(1)
	go s.sessionLoop(account, gen, client)

	if bf := s.collab.Backfiller; bf != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			bf.Backfill(s.ctx, account)
		}()
	}

	s.logger.Info("session opened", "account_id", account.ID, "handle", account.Handle)
	s.updateGauges()

	return nil
}

// Disconnect removes and closes the account's session.
func (s *supervisor) Disconnect(accountID string) {
	s.mu.Lock()
	sl, ok := s.slots[accountID]
	if !ok {
		s.mu.Unlock()
		return
	}
	client := sl.client
	delete(s.slots, accountID)
	s.mu.Unlock()

	if client != nil {
		client.Close()
	}

	s.logger.Info("session disconnected", "account_id", accountID)
	s.updateGauges()
}

// ActiveIDs returns every id holding a slot.
func (s *supervisor) ActiveIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.slots))
	for id := range s.slots {
		ids = append(ids, id)
	}
	return ids
}

// Stats returns current statistics.
func (s *supervisor) Stats() SupervisorStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statsLocked()
}

func (s *supervisor) statsLocked() SupervisorStats {
	var st SupervisorStats
	for _, sl := range s.slots {
		switch sl.state {
		case slotLive, slotOpening:
			st.Live++
			if sl.client != nil && sl.client.IsConnected() {
				st.OpenSockets++
			}
		case slotCooling:
			st.Cooling++
		}
	}
	return st
}

// sessionLoop consumes one session's frames until it terminates.
func (s *supervisor) sessionLoop(account model.TrackedAccount, gen uuid.UUID, client Client) {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return

		case err := <-client.Errors():
			s.terminate(account, gen, ReasonForError(err))
			return

		case frame, ok := <-client.Frames():
			if !ok {
				// Prefer the terminal error's reason when one was
				// delivered before the channel closed.
				reason := ReasonTransient
				select {
				case err := <-client.Errors():
					reason = ReasonForError(err)
				default:
				}
				s.terminate(account, gen, reason)
				return
			}
			if ended := s.handleFrame(account, gen, frame); ended {
				return
			}
		}
	}
}

// handleFrame classifies and routes one frame. Returns true when the frame
// ended the session.
func (s *supervisor) handleFrame(account model.TrackedAccount, gen uuid.UUID, frame Frame) bool {
	ev := classify.Classify(account.Handle, frame.Data)
	metrics.FramesTotal.WithLabelValues(ev.Kind.String()).Inc()

	switch ev.Kind {
	case classify.KindKeepalive:
		// Counted; the watchdog already saw the traffic.

	case classify.KindDisconnect:
		s.logger.Info("stream disconnect announced",
			"account_id", account.ID,
			"code", ev.Disconnect.Code,
			"reason", ev.Disconnect.Reason,
		)
		if ev.Disconnect.RequiresRevalidation() {
			s.revalidate(account)
		}
		s.terminate(account, gen, ReasonTransient)
		return true

	case classify.KindWarning:
		if ev.Warning.Benign() {
			s.logger.Debug("stream warning", "account_id", account.ID, "code", ev.Warning.Code)
		} else {
			s.logger.Warn("stream warning",
				"account_id", account.ID,
				"code", ev.Warning.Code,
				"message", ev.Warning.Message,
			)
		}

	case classify.KindStateChange:
		if ev.StateChange.Actor != nil && s.collab.Cache != nil {
			s.collab.Cache.Store(s.ctx, *ev.StateChange.Actor)
		}
		s.collab.Sink.StateChange(s.ctx, account, ev.StateChange.Actor)

	case classify.KindMention:
		s.collab.Sink.Mention(s.ctx, account, *ev.Mention)

	default:
		s.logger.Debug("unclassified frame", "account_id", account.ID, "len", len(frame.Data))
	}

	return false
}

// terminate runs the single termination path for a session occupancy. The
// generation check makes it a no-op for superseded sessions, so every
// caller (read error, disconnect frame, dial failure) is safe to race.
func (s *supervisor) terminate(account model.TrackedAccount, gen uuid.UUID, reason Reason) {
	s.mu.Lock()
	sl, ok := s.slots[account.ID]
	if !ok || sl.gen != gen {
		s.mu.Unlock()
		s.logger.Debug("termination for superseded session ignored",
			"account_id", account.ID,
			"reason", reason,
		)
		return
	}

	client := sl.client
	switch reason {
	case ReasonRateLimited:
		// Hold the slot so the sampler cannot re-pick the account until
		// the cooldown elapses.
		sl.state = slotCooling
		sl.client = nil
		time.AfterFunc(s.cfg.Cooldown, func() {
			s.releaseCooldown(account.ID, gen)
		})
	default:
		delete(s.slots, account.ID)
	}
	s.mu.Unlock()

	if client != nil {
		client.Close()
	}

	metrics.TerminationsTotal.WithLabelValues(string(reason)).Inc()
	s.logger.Info("session ended", "account_id", account.ID, "reason", reason)
	s.updateGauges()

	if reason == ReasonUnauthorized {
		s.revalidate(account)
	}
}

// releaseCooldown frees a cooling slot once the window elapses, verifying
// the slot still belongs to the generation it was armed for.
func (s *supervisor) releaseCooldown(accountID string, gen uuid.UUID) {
	s.mu.Lock()
	sl, ok := s.slots[accountID]
	if !ok || sl.state != slotCooling || sl.gen != gen {
		s.mu.Unlock()
		s.logger.Debug("cooldown expiry for superseded slot ignored", "account_id", accountID)
		return
	}
	delete(s.slots, accountID)
	s.mu.Unlock()

	s.logger.Info("cooldown elapsed, account eligible again", "account_id", accountID)
	s.updateGauges()
}

// revalidate re-checks an account's credentials in the background.
func (s *supervisor) revalidate(account model.TrackedAccount) {
	reval := s.collab.Revalidator
	if reval == nil {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := reval.Revalidate(s.ctx, account); err != nil {
			s.logger.Warn("credential revalidation failed",
				"account_id", account.ID,
				"error", err,
			)
		}
	}()
}

// statsLoop periodically reports registry occupancy.
func (s *supervisor) statsLoop() {
	defer s.wg.Done()

	interval := s.cfg.StatsInterval
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			st := s.Stats()
			s.logger.Info("supervisor stats",
				"live", st.Live,
				"cooling", st.Cooling,
				"open_sockets", st.OpenSockets,
			)
			s.updateGauges()
		}
	}
}

func (s *supervisor) updateGauges() {
	st := s.Stats()
	metrics.SessionsLive.Set(float64(st.Live))
	metrics.SessionsCooling.Set(float64(st.Cooling))
}
