package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateFeed(); err != nil {
		return err
	}
	if err := c.validateListing(); err != nil {
		return err
	}
	if err := c.validateHTTP(); err != nil {
		return err
	}
	if err := c.validateFetch(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateFeed() error {
	parsed, err := url.Parse(c.Feed.URL)
	if err != nil {
		return fmt.Errorf("feed.url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("feed.url must be an http(s) URL, got %q", c.Feed.URL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("feed.url is missing a host: %q", c.Feed.URL)
	}
	switch c.Feed.Source {
	case SourceHTML, SourceRSS:
	default:
		return fmt.Errorf("feed.source: unsupported value %q (expected %s or %s)", c.Feed.Source, SourceHTML, SourceRSS)
	}
	return nil
}

func (c *Config) validateListing() error {
	if !strings.HasSuffix(c.Listing.SlugMarker, "/") {
		return errors.New("listing.slug_marker must end with a path separator")
	}
	return nil
}

func (c *Config) validateHTTP() error {
	if c.HTTP.MaxRetries > maxHTTPRetries {
		return fmt.Errorf("http.max_retries must be at most %d", maxHTTPRetries)
	}
	return nil
}

func (c *Config) validateFetch() error {
	if c.Fetch.Concurrency > maxConcurrency {
		return fmt.Errorf("fetch.concurrency must be at most %d", maxConcurrency)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
