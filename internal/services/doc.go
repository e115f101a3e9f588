// Package services defines shared utilities consumed by the ingestion stages.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, chapter slugs, stage names, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into a consistent severity (lost page, lost chapter, lost run).
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the pipeline.
package services
