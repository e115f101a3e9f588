// Package config loads, normalizes, and validates folio configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// FOLIO_FEED_URL. The Config type centralizes every knob the CLI and the
// ingestion workflow need so the feed location, output layout, transport
// settings, and notification hooks are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
