// Package testsupport provides fixtures shared by package tests: temp-dir
// configs, generated page images, and a fake chapter site.
package testsupport

import (
	"path/filepath"
	"testing"

	"folio/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with a unique temp output root per test.
// Audio cues and ntfy are disabled.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputDir = filepath.Join(base, "content")
	cfgVal.Notifications.SoundEnabled = false
	cfgVal.Notifications.NtfyTopic = ""
	cfgVal.Notifications.SoundDir = filepath.Join(base, "sounds")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithFeedURL points the config at a listing page.
func WithFeedURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Feed.URL = url
	}
}

// WithConcurrency overrides the fetch pool ceiling.
func WithConcurrency(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Fetch.Concurrency = n
	}
}

// WithFailOnError enables the non-zero exit policy.
func WithFailOnError() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Run.FailOnError = true
	}
}

// WithOutputDir relocates the output root relative to the test base directory.
func WithOutputDir(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.OutputDir = filepath.Join(b.baseDir, name)
	}
}
