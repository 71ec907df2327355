// Package config loads, validates and persists the YAML settings shared by
// the bridge binaries. Every engine cadence and threshold lives here so
// deployments can tune them without rebuilding.
package config
