// Package bridge is the state-synchronization and event-distribution engine.
// One monitor per field set polls the control surface, diffs successive
// snapshots and publishes ordered change events through a per-field bus;
// the executor serializes confirmed command execution against the same
// field without racing its poll loop; the engine is the process-wide
// registry tying it together.
package bridge
