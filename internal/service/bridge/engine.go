package bridge

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vextm/tm-bridge/internal/domain/field"
	"github.com/vextm/tm-bridge/internal/logger"
	"github.com/vextm/tm-bridge/internal/surface"
)

// Config carries the engine tunables. Values are provided by the process
// configuration; the engine itself hard-codes none of them.
type Config struct {
	// Competition is the program being run; it gates command validation.
	Competition field.Competition
	// PollInterval is the cadence for fields with observers or commands.
	PollInterval time.Duration
	// IdlePollInterval is the cadence for unobserved fields.
	IdlePollInterval time.Duration
	// BackoffCeiling caps fetch-failure backoff.
	BackoffCeiling time.Duration
	// FailureThreshold flips a field to unavailable after this many
	// consecutive fetch failures.
	FailureThreshold int
	// ConfirmInterval is the cadence of command confirmation polls.
	ConfirmInterval time.Duration
	// ConfirmTimeout bounds confirmation of a single command.
	ConfirmTimeout time.Duration
	// SubscriberBuffer is the per-subscription channel capacity.
	SubscriberBuffer int
}

// Engine is the process-wide registry of monitored field sets and the single
// call surface the outward transport adapter uses. Fields are created lazily
// on first reference and live until removed or until shutdown.
type Engine struct {
	// cfg carries the engine tunables.
	cfg Config
	// surface supplies snapshots and accepts commands for every field.
	surface surface.ControlSurface
	// exec serializes and confirms commands.
	exec *executor

	// mu guards monitors and closed.
	mu sync.Mutex
	// monitors holds one monitor per registered field set.
	monitors map[string]*monitor
	// closed marks an engine that has begun shutting down.
	closed bool

	// ctx bounds every monitor loop and in-flight command; cancel ends them.
	ctx    context.Context
	cancel context.CancelFunc
}

// NewEngine creates an engine that reaches all field sets through the given
// control surface. Monitors start on first reference to a field identity.
func NewEngine(srf surface.ControlSurface, cfg Config) *Engine {
	ctx, cancel := context.WithCancel(context.Background())

	return &Engine{
		cfg:     cfg,
		surface: srf,
		exec: &executor{
			surface:         srf,
			confirmInterval: cfg.ConfirmInterval,
			confirmTimeout:  cfg.ConfirmTimeout,
		},
		monitors: make(map[string]*monitor),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// fieldFor returns the monitor for the identity, creating and starting one on
// first reference.
func (e *Engine) fieldFor(fieldID string) (*monitor, error) {
	if fieldID == "" {
		return nil, field.ErrUnknownField
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, field.ErrEngineShuttingDown
	}

	if m, ok := e.monitors[fieldID]; ok {
		return m, nil
	}

	bus := newEventBus(fieldID, e.cfg.SubscriberBuffer)
	m := newMonitor(fieldID, e.surface, e.cfg, bus)
	m.start(e.ctx)
	e.monitors[fieldID] = m

	logger.InfoKV(e.ctx, "Field set registered", "field", fieldID)

	return m, nil
}

// GetOverview returns the field's retained snapshot. It never waits for a
// poll in flight; before the first successful fetch the snapshot carries the
// Unbound status.
func (e *Engine) GetOverview(_ context.Context, fieldID string) (field.Snapshot, error) {
	m, err := e.fieldFor(fieldID)
	if err != nil {
		return field.Snapshot{}, err
	}

	return m.currentSnapshot(), nil
}

// Subscribe registers a consumer for the field's change events. The first
// delivered event is a baseline reflecting the current snapshot.
func (e *Engine) Subscribe(_ context.Context, fieldID string) (*Subscription, error) {
	m, err := e.fieldFor(fieldID)
	if err != nil {
		return nil, err
	}

	return m.subscribe(), nil
}

// Unsubscribe ends a subscription. Idempotent; nil is a no-op.
func (e *Engine) Unsubscribe(sub *Subscription) {
	if sub != nil {
		sub.Close()
	}
}

// Execute runs one command against a field set: validate, acquire the
// per-field command lock, issue, confirm. See the executor for the outcome
// semantics.
func (e *Engine) Execute(
	ctx context.Context,
	fieldID string,
	kind field.CommandKind,
	params field.CommandParams,
) (Result, error) {
	if err := kind.Validate(params, e.cfg.Competition); err != nil {
		return Result{}, &field.CommandRejectedError{Reason: err.Error()}
	}

	m, err := e.fieldFor(fieldID)
	if err != nil {
		return Result{}, err
	}

	// Bound the command by both the caller's context and the engine lifetime.
	execCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := context.AfterFunc(e.ctx, cancel)
	defer stop()

	res, err := e.exec.execute(execCtx, m, kind, params)
	if err != nil && e.ctx.Err() != nil {
		return res, field.ErrEngineShuttingDown
	}

	return res, err
}

// ListFields returns the identities of every registered field set, sorted.
func (e *Engine) ListFields() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	ids := make([]string, 0, len(e.monitors))
	for id := range e.monitors {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

// RemoveField tears a field set down: its poll loop stops and all of its
// subscriptions are closed. Used when the backing field set is permanently
// gone.
func (e *Engine) RemoveField(fieldID string) error {
	e.mu.Lock()

	m, ok := e.monitors[fieldID]
	if ok {
		delete(e.monitors, fieldID)
	}

	e.mu.Unlock()

	if !ok {
		return field.ErrUnknownField
	}

	m.stop()
	m.bus.Close()

	logger.InfoKV(e.ctx, "Field set removed", "field", fieldID)

	return nil
}

// Shutdown stops every monitor, fails in-flight commands with
// ErrEngineShuttingDown and closes all subscriptions. Idempotent.
func (e *Engine) Shutdown() {
	e.mu.Lock()

	if e.closed {
		e.mu.Unlock()

		return
	}

	e.closed = true
	monitors := make([]*monitor, 0, len(e.monitors))

	for id, m := range e.monitors {
		monitors = append(monitors, m)
		delete(e.monitors, id)
	}

	e.mu.Unlock()

	// Cancel first so poll loops and confirmation waits unblock promptly.
	e.cancel()

	for _, m := range monitors {
		m.stop()
		m.bus.Close()
	}
}
