package bridge

import (
	"context"
	"sync"
	"time"

	"github.com/vextm/tm-bridge/internal/domain/field"
)

// fakeSurface is a scriptable in-memory ControlSurface for tests.
type fakeSurface struct {
	// mu protects every field below.
	mu sync.Mutex
	// snap is the snapshot returned by Fetch.
	snap field.Snapshot
	// fetchErr, when set, makes Fetch fail.
	fetchErr error
	// fetches counts Fetch calls.
	fetches int
	// invokeErr, when set, makes Invoke fail.
	invokeErr error
	// invoked records issued commands in order.
	invoked []field.CommandKind
	// onInvoke, when set, runs under mu on each successful Invoke so tests
	// can script the surface's reaction to a command.
	onInvoke func(kind field.CommandKind, params field.CommandParams)
	// invokeStarted is closed on the first Invoke call when set.
	invokeStarted chan struct{}
	// invokeRelease, when set, blocks Invoke until closed or ctx ends.
	invokeRelease chan struct{}
}

// Fetch returns the scripted snapshot or error.
func (f *fakeSurface) Fetch(_ context.Context, _ string) (field.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fetches++

	if f.fetchErr != nil {
		return field.Snapshot{}, f.fetchErr
	}

	return f.snap, nil
}

// Invoke records the command and applies the scripted reaction.
func (f *fakeSurface) Invoke(
	ctx context.Context,
	_ string,
	kind field.CommandKind,
	params field.CommandParams,
) error {
	f.mu.Lock()
	started := f.invokeStarted
	release := f.invokeRelease
	f.invokeStarted = nil
	f.mu.Unlock()

	if started != nil {
		close(started)
	}

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.invokeErr != nil {
		return f.invokeErr
	}

	f.invoked = append(f.invoked, kind)

	if f.onInvoke != nil {
		f.onInvoke(kind, params)
	}

	return nil
}

// setSnapshot swaps the snapshot Fetch returns.
func (f *fakeSurface) setSnapshot(snap field.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.snap = snap
}

// setFetchErr swaps the error Fetch returns.
func (f *fakeSurface) setFetchErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fetchErr = err
}

// fetchCount returns how many times Fetch has been called.
func (f *fakeSurface) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.fetches
}

// pausedSnapshot is a field set with a paused match, ready to be started.
func pausedSnapshot() field.Snapshot {
	return field.Snapshot{
		AudienceDisplay: field.DisplayInMatch,
		TimerDisplay:    "0:42",
		MatchTime:       42,
		TimerPhase:      field.PhasePaused,
		FieldNumber:     1,
		MatchOnField:    "Q7",
		AutonomousBonus: field.BonusNone,
		ActiveMatch:     field.ActiveMatchMatch,
	}
}

// testConfig returns engine tunables scaled down for fast tests.
func testConfig() Config {
	return Config{
		Competition:      field.CompetitionV5RC,
		PollInterval:     2 * time.Millisecond,
		IdlePollInterval: 5 * time.Millisecond,
		BackoffCeiling:   10 * time.Millisecond,
		FailureThreshold: 5,
		ConfirmInterval:  2 * time.Millisecond,
		ConfirmTimeout:   50 * time.Millisecond,
		SubscriberBuffer: 16,
	}
}

// collect drains every event currently buffered on the subscription.
func collect(sub *Subscription) []field.ChangeEvent {
	var events []field.ChangeEvent

	for {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				return events
			}

			events = append(events, ev)
		default:
			return events
		}
	}
}
