// Package httpapi is the outward HTTP surface of the bridge: JSON endpoints
// for snapshots, commands and roster data, plus a server-sent-events stream
// of per-field change events.
package httpapi
