// Package main hosts the folio CLI entrypoint and command graph.
//
// Running folio with no subcommand performs a full pipeline run with the
// resolved configuration. Persistent flags override individual config values
// for a single invocation; the config subcommands scaffold and check the
// configuration file.
package main
