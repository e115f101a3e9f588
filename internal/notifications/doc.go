// Package notifications delivers ingestion events via pluggable notifiers.
//
// Production wiring plays short audio cues through an external player and can
// also publish to ntfy when a topic is configured. Everything is dispatched on
// a background goroutine so a slow speaker or push endpoint never stalls the
// fetch workers, and every notifier degrades to a no-op when unconfigured.
//
// Workflow code depends only on the Service interface.
package notifications
