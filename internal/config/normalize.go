package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeFeed()
	c.normalizeSelectors()
	c.normalizeHTTP()
	if c.Fetch.Concurrency <= 0 {
		c.Fetch.Concurrency = defaultConcurrency
	}
	if err := c.normalizeNotifications(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(strings.TrimSpace(c.Paths.OutputDir)); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogFile, err = expandPath(strings.TrimSpace(c.Paths.LogFile)); err != nil {
		return fmt.Errorf("paths.log_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeFeed() {
	if value, ok := os.LookupEnv("FOLIO_FEED_URL"); ok && strings.TrimSpace(value) != "" {
		c.Feed.URL = value
	}
	c.Feed.URL = strings.TrimSpace(c.Feed.URL)
	if c.Feed.URL == "" {
		c.Feed.URL = defaultFeedURL
	}
	c.Feed.Source = strings.ToLower(strings.TrimSpace(c.Feed.Source))
	if c.Feed.Source == "" {
		c.Feed.Source = defaultFeedSource
	}
}

func (c *Config) normalizeSelectors() {
	c.Listing.ContainerSelector = withDefault(c.Listing.ContainerSelector, defaultContainerSelector)
	c.Listing.EntrySelector = withDefault(c.Listing.EntrySelector, defaultEntrySelector)
	c.Listing.SlugMarker = withDefault(c.Listing.SlugMarker, defaultSlugMarker)
	c.Locator.ContentSelector = withDefault(c.Locator.ContentSelector, defaultContentSelector)
	c.Locator.ImageSelector = withDefault(c.Locator.ImageSelector, defaultImageSelector)
}

func (c *Config) normalizeHTTP() {
	c.HTTP.UserAgent = withDefault(c.HTTP.UserAgent, defaultUserAgent)
	if c.HTTP.TimeoutSeconds <= 0 {
		c.HTTP.TimeoutSeconds = defaultTimeoutSeconds
	}
	if c.HTTP.MaxRetries < 0 {
		c.HTTP.MaxRetries = 0
	}
}

func (c *Config) normalizeNotifications() error {
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("FOLIO_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = value
		}
	}
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	c.Notifications.SoundPlayer = withDefault(c.Notifications.SoundPlayer, defaultSoundPlayer)
	if strings.TrimSpace(c.Notifications.SoundDir) == "" {
		c.Notifications.SoundDir = defaultSoundDir
	}
	var err error
	if c.Notifications.SoundDir, err = expandPath(strings.TrimSpace(c.Notifications.SoundDir)); err != nil {
		return fmt.Errorf("notifications.sound_dir: %w", err)
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func withDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
