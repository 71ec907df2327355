package bridge

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/vextm/tm-bridge/internal/domain/field"
	"github.com/vextm/tm-bridge/internal/logger"
	"github.com/vextm/tm-bridge/internal/surface"
)

// monitor owns one field set's lifecycle: it runs the poll loop, keeps the
// latest snapshot, assigns sequence numbers and publishes change events. It is
// the only writer of its snapshot; everything else reads through
// currentSnapshot or a subscription.
type monitor struct {
	// fieldID is the window title identifying the field set.
	fieldID string
	// surface supplies snapshots and accepts commands.
	surface surface.ControlSurface
	// cfg carries the engine tunables.
	cfg Config
	// bus fans change events out to this field's subscribers.
	bus *EventBus

	// mu guards latest, seq and failures. Publishing happens under mu so
	// subscribers observe transitions in sequence order.
	mu sync.Mutex
	// latest is the last retained snapshot.
	latest field.Snapshot
	// seq is the per-field change event counter.
	seq uint64
	// failures counts consecutive fetch failures.
	failures int

	// cmdGate is the per-field command lock. The executor holds the single
	// token while a command is in flight; the poll loop skips its tick while
	// the token is taken.
	cmdGate chan struct{}

	// cancel stops the poll loop; done is closed when it has exited.
	cancel context.CancelFunc
	done   chan struct{}
}

// newMonitor creates a monitor in the Unbound state. No snapshot has been
// observed until the first successful fetch.
func newMonitor(fieldID string, srf surface.ControlSurface, cfg Config, bus *EventBus) *monitor {
	return &monitor{
		fieldID: fieldID,
		surface: srf,
		cfg:     cfg,
		bus:     bus,
		latest:  field.Snapshot{Status: field.StatusUnbound},
		cmdGate: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// start launches the poll loop bound to the engine's lifetime.
func (m *monitor) start(ctx context.Context) {
	ctx, m.cancel = context.WithCancel(ctx)
	ctx = logger.WithKV(ctx, "field", m.fieldID)

	go m.run(ctx)
}

// stop cancels the poll loop and waits for it to exit.
func (m *monitor) stop() {
	m.cancel()
	<-m.done
}

// run is the poll loop. The cadence depends on activity: the fast interval
// while anyone is subscribed or a command is pending, the idle interval
// otherwise, and an exponential backoff while fetches are failing.
func (m *monitor) run(ctx context.Context) {
	defer close(m.done)

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = m.cfg.PollInterval
	bo.MaxInterval = m.cfg.BackoffCeiling
	bo.Reset()

	timer := time.NewTimer(m.cadence())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if m.commandInFlight() {
			// The executor owns the surface until the command lock is
			// released; skip this tick rather than read a transitional state.
			timer.Reset(m.cfg.PollInterval)

			continue
		}

		if m.pollOnce(ctx) {
			bo.Reset()
			timer.Reset(m.cadence())

			continue
		}

		wait := bo.NextBackOff()
		if wait <= 0 || wait > m.cfg.BackoffCeiling {
			wait = m.cfg.BackoffCeiling
		}

		timer.Reset(wait)
	}
}

// pollOnce fetches one snapshot and reports whether the fetch succeeded.
func (m *monitor) pollOnce(ctx context.Context) bool {
	snap, err := m.surface.Fetch(ctx, m.fieldID)
	if err != nil {
		if ctx.Err() != nil {
			return true
		}

		m.recordFailure(ctx, err)

		return false
	}

	m.observe(ctx, snap)

	return true
}

// observe folds a successfully fetched snapshot into the monitor's state,
// publishing a change event when anything differs from the retained snapshot.
// Called from the poll loop and from the executor's confirmation polls.
func (m *monitor) observe(ctx context.Context, snap field.Snapshot) {
	snap.Status = field.StatusPolling

	m.mu.Lock()

	m.failures = 0

	if m.latest.Equal(snap) {
		m.mu.Unlock()

		return
	}

	ev := m.transitionLocked(snap)
	m.mu.Unlock()

	logger.DebugKV(ctx, "Field state changed", "sequence", ev.Sequence, "phase", ev.Current.TimerPhase)
}

// recordFailure counts a fetch failure; the retained snapshot stays untouched
// (last-known-good). Crossing the configured threshold publishes exactly one
// unavailability transition so subscribers are told instead of silently starved.
func (m *monitor) recordFailure(ctx context.Context, err error) {
	m.mu.Lock()

	m.failures++
	failures := m.failures

	if failures == m.cfg.FailureThreshold && m.latest.Status != field.StatusUnavailable {
		next := m.latest
		next.Status = field.StatusUnavailable
		m.transitionLocked(next)
	}

	m.mu.Unlock()

	logger.WarnKV(ctx, "Fetch failed", "consecutive_failures", failures, "error", err)
}

// transitionLocked replaces the retained snapshot, assigns the next sequence
// number and publishes the change event. Caller must hold mu.
func (m *monitor) transitionLocked(next field.Snapshot) field.ChangeEvent {
	m.seq++

	ev := field.ChangeEvent{
		FieldID:   m.fieldID,
		Previous:  m.latest,
		Current:   next,
		Sequence:  m.seq,
		Timestamp: time.Now(),
	}

	m.latest = next
	m.bus.Publish(ev)

	return ev
}

// currentSnapshot returns the retained snapshot without waiting for any poll
// in flight.
func (m *monitor) currentSnapshot() field.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.latest
}

// subscribe registers a consumer with a baseline event carrying the current
// snapshot. Taking mu here orders the baseline strictly before any later
// transition, so a new subscriber can never miss an event published after
// its baseline.
func (m *monitor) subscribe() *Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()

	baseline := field.ChangeEvent{
		FieldID:   m.fieldID,
		Previous:  m.latest,
		Current:   m.latest,
		Sequence:  m.seq,
		Timestamp: time.Now(),
	}

	return m.bus.Subscribe(baseline)
}

// cadence picks the poll interval from current activity. A field with no
// observers and no pending command is never polled at the fast cadence.
func (m *monitor) cadence() time.Duration {
	if m.bus.Subscribers() > 0 || m.commandInFlight() {
		return m.cfg.PollInterval
	}

	return m.cfg.IdlePollInterval
}

// beginCommand acquires the field's command lock without blocking.
func (m *monitor) beginCommand() error {
	select {
	case m.cmdGate <- struct{}{}:
		return nil
	default:
		return field.ErrCommandBusy
	}
}

// endCommand releases the command lock.
func (m *monitor) endCommand() {
	<-m.cmdGate
}

// commandInFlight reports whether the command lock is currently held.
func (m *monitor) commandInFlight() bool {
	return len(m.cmdGate) > 0
}
