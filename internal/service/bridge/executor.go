package bridge

import (
	"context"
	"errors"
	"time"

	"github.com/vextm/tm-bridge/internal/domain/field"
	"github.com/vextm/tm-bridge/internal/logger"
	"github.com/vextm/tm-bridge/internal/surface"
)

// executor serializes command issuance against a field set and confirms each
// command's effect by polling for its post-condition. Exactly one command may
// be in flight per field; a concurrent attempt fails immediately with
// ErrCommandBusy instead of queueing, because a queued command against a
// physical field risks executing stale intent.
type executor struct {
	// surface issues commands and confirmation fetches.
	surface surface.ControlSurface
	// confirmInterval is the cadence of confirmation polls.
	confirmInterval time.Duration
	// confirmTimeout bounds the total time the command lock may be held.
	confirmTimeout time.Duration
}

// Result is the outcome of a command that was successfully issued.
// Confirmed is false when the confirmation window elapsed without the
// post-condition being observed; the command may or may not have taken
// effect, and the caller must not blindly retry it.
type Result struct {
	// Confirmed reports whether the expected post-condition was observed.
	Confirmed bool
	// Snapshot is the confirmed state, or the last state seen before the
	// confirmation window closed.
	Snapshot field.Snapshot
}

// execute runs one command against the monitor's field set. The monitor's
// poll loop skips its ticks while the command lock is held so a read never
// interleaves with a half-applied command.
func (e *executor) execute(
	ctx context.Context,
	m *monitor,
	kind field.CommandKind,
	params field.CommandParams,
) (Result, error) {
	if err := m.beginCommand(); err != nil {
		return Result{}, err
	}
	defer m.endCommand()

	logger.InfoKV(ctx, "Issuing command", "field", m.fieldID, "command", kind)

	if err := e.surface.Invoke(ctx, m.fieldID, kind, params); err != nil {
		// Issuance failure is never retried: the command may have partially
		// applied, and re-issuing a mutating action on top of that is unsafe.
		var rejected *field.CommandRejectedError
		if !errors.As(err, &rejected) {
			err = &field.CommandRejectedError{Reason: err.Error()}
		}

		logger.WarnKV(ctx, "Command rejected", "field", m.fieldID, "command", kind, "error", err)

		return Result{}, err
	}

	return e.confirm(ctx, m, kind, params)
}

// confirm polls the surface until the command's post-condition holds or the
// confirmation window elapses. Snapshots observed along the way are folded
// into the monitor so subscribers see the transition as a normal change event.
func (e *executor) confirm(
	ctx context.Context,
	m *monitor,
	kind field.CommandKind,
	params field.CommandParams,
) (Result, error) {
	ticker := time.NewTicker(e.confirmInterval)
	defer ticker.Stop()

	timeout := time.NewTimer(e.confirmTimeout)
	defer timeout.Stop()

	last := m.currentSnapshot()

	for {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-timeout.C:
			logger.WarnKV(ctx, "Command unconfirmed", "field", m.fieldID, "command", kind)

			return Result{Snapshot: last}, nil
		case <-ticker.C:
		}

		snap, err := e.surface.Fetch(ctx, m.fieldID)
		if err != nil {
			// Transient; the confirmation window bounds how long we keep trying.
			continue
		}

		m.observe(ctx, snap)
		last = m.currentSnapshot()

		if kind.ConfirmedBy(params, last) {
			logger.InfoKV(ctx, "Command confirmed", "field", m.fieldID, "command", kind)

			return Result{Confirmed: true, Snapshot: last}, nil
		}
	}
}
