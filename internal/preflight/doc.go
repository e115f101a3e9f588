// Package preflight verifies the local environment before a run starts.
//
// The runner calls RunAll once, after taking the run lock. Required checks
// that fail abort the run before the listing is fetched; optional checks only
// log a warning.
package preflight
