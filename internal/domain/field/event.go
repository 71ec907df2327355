package field

import "time"

// ChangeEvent records one observed transition between two snapshots of a
// field set. Sequence numbers are per-field, strictly increasing and gap-free
// at the source; a consumer that observes a jump has missed deliveries.
type ChangeEvent struct {
	// FieldID is the window title identifying the field set.
	FieldID string `json:"field"`
	// Previous is the retained snapshot before the transition.
	Previous Snapshot `json:"previous"`
	// Current is the snapshot after the transition.
	Current Snapshot `json:"current"`
	// Sequence is the per-field event number.
	Sequence uint64 `json:"sequence"`
	// Timestamp is when the transition was observed.
	Timestamp time.Time `json:"timestamp"`
}

// Baseline reports whether the event is the synthetic initial-state event a
// subscriber receives on join (previous and current are the same snapshot).
func (e ChangeEvent) Baseline() bool {
	return e.Previous.Equal(e.Current)
}
