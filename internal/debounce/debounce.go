package debounce

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bep/debounce"

	"github.com/wardenhq/blockwarden/internal/metrics"
)

// Reconciler is the downstream call a quiet period triggers.
type Reconciler interface {
	ReconcileBlocks(ctx context.Context, accountID string) error
}

// Notifier coalesces per-account state-change bursts. A bulk block operation
// can echo dozens of events within a second; each account ends up with a
// single reconciliation call once the stream goes quiet.
type Notifier struct {
	window time.Duration
	target Reconciler
	logger *slog.Logger

	mu      sync.Mutex
	pending map[string]func(f func())
	armed   map[string]bool // notified but not yet fired
	closed  bool
}

// NewNotifier creates a debouncing notifier with the given quiet window.
func NewNotifier(window time.Duration, target Reconciler, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		window:  window,
		target:  target,
		logger:  logger,
		pending: make(map[string]func(f func())),
		armed:   make(map[string]bool),
	}
}

// Notify schedules (or reschedules) a reconciliation for the account. Calls
// after Close are dropped.
func (n *Notifier) Notify(accountID string) {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}

	// One debouncer per account id, created on first use. Each call resets
	// the account's timer, so only the last notification of a burst fires.
	d, ok := n.pending[accountID]
	if !ok {
		d = debounce.New(n.window)
		n.pending[accountID] = d
	}
	n.armed[accountID] = true
	n.mu.Unlock()

	d(func() {
		// The armed entry is the fire permit: whoever removes it (timer or
		// Close) performs the reconciliation, so each burst fires once.
		n.mu.Lock()
		if n.closed || !n.armed[accountID] {
			n.mu.Unlock()
			return
		}
		delete(n.armed, accountID)
		n.mu.Unlock()

		n.fire(accountID)
	})
}

// Close stops accepting notifications and flushes pending reconciliations
// synchronously, so state changes seen just before shutdown are not lost.
func (n *Notifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	flush := make([]string, 0, len(n.armed))
	for id := range n.armed {
		flush = append(flush, id)
	}
	n.armed = make(map[string]bool)
	n.pending = make(map[string]func(f func()))
	n.mu.Unlock()

	if len(flush) > 0 {
		n.logger.Info("flushing pending reconciliations", "count", len(flush))
	}
	for _, id := range flush {
		n.fire(id)
	}
}

func (n *Notifier) fire(accountID string) {
	metrics.ReconciliationsTotal.Inc()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := n.target.ReconcileBlocks(ctx, accountID); err != nil {
		n.logger.Error("block reconciliation failed",
			"account_id", accountID,
			"error", err,
		)
		return
	}

	n.logger.Debug("block reconciliation complete", "account_id", accountID)
}
