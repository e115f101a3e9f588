// Package fetchpool downloads a chapter's page images with a bounded number of
// requests in flight.
//
// Every task ends Downloaded or Failed; FetchAll returns only once that holds
// for all of them. A failed image never cancels its siblings. Destination
// files are created exclusively and removed again if the write does not
// complete, so a file on disk is always a whole image. A failed task leaves no
// file behind, even one written by an earlier run.
package fetchpool
