// Package surface defines the control surface boundary the engine consumes:
// fetching snapshots from, and issuing commands to, whatever drives the
// Tournament Manager UI. The concrete implementation is a JSON/HTTP client
// for the automation agent running next to Tournament Manager.
package surface
