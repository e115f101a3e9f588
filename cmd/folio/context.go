package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"folio/internal/config"
	"folio/internal/workflow"
)

// overrideFlags holds persistent flag values layered over the loaded config.
type overrideFlags struct {
	configPath  string
	feedURL     string
	concurrency int
	outputDir   string
	failOnError bool
}

type commandContext struct {
	flags *overrideFlags

	// runnerOptions is appended to every Runner built by the run commands.
	runnerOptions []workflow.Option

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error
}

func newCommandContext(flags *overrideFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		path := strings.TrimSpace(c.flags.configPath)
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = fmt.Errorf("load config: %w", err)
			return
		}
		if err := c.applyOverrides(cfg); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configSeen = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) applyOverrides(cfg *config.Config) error {
	changed := false
	if url := strings.TrimSpace(c.flags.feedURL); url != "" {
		cfg.Feed.URL = url
		changed = true
	}
	if c.flags.concurrency > 0 {
		cfg.Fetch.Concurrency = c.flags.concurrency
		changed = true
	}
	if dir := strings.TrimSpace(c.flags.outputDir); dir != "" {
		expanded, err := config.ExpandPath(dir)
		if err != nil {
			return fmt.Errorf("resolve --output-dir: %w", err)
		}
		cfg.Paths.OutputDir = expanded
		changed = true
	}
	if c.flags.failOnError {
		cfg.Run.FailOnError = true
	}
	if !changed {
		return nil
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flag override: %w", err)
	}
	return nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
