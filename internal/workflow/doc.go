// Package workflow drives chapters through discovery, download, assembly, and
// reversal.
//
// The Runner owns a whole run: it takes the output-root lock, runs preflight,
// resolves the listing, and hands each chapter to the Orchestrator in listing
// order. The Orchestrator advances one chapter through the
// Discovering -> Fetching -> Assembling -> Reversing -> Done states, with a
// terminal Failed state reachable from any of them. Page-level failures fold
// into a Degraded outcome; stage-level failures end the chapter as Fatal.
// Outcomes flow into a report.Aggregator that the Runner drains once at the
// end of the run.
package workflow
