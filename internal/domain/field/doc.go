// Package field holds the domain model of a monitored Tournament Manager
// field set: the immutable Snapshot value, the enums describing its
// attributes, the ChangeEvent emitted on every observed transition, and the
// command vocabulary with per-command confirmation predicates.
package field
