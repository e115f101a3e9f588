package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains output layout configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	LogFile   string `toml:"log_file"`
}

// Feed identifies the listing page and how it should be interpreted.
type Feed struct {
	URL    string `toml:"url"`
	Source string `toml:"source"` // "html" or "rss"
}

// Listing contains selectors used to pull chapter entries out of the landing page.
type Listing struct {
	ContainerSelector string `toml:"container_selector"`
	EntrySelector     string `toml:"entry_selector"`
	SlugMarker        string `toml:"slug_marker"`
}

// Locator contains selectors used to pull page images out of a chapter page.
type Locator struct {
	ContentSelector string `toml:"content_selector"`
	ImageSelector   string `toml:"image_selector"`
}

// HTTP contains transport settings shared by every request in a run.
type HTTP struct {
	UserAgent      string `toml:"user_agent"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxRetries     int    `toml:"max_retries"`
}

// Fetch contains image download pool settings.
type Fetch struct {
	Concurrency int `toml:"concurrency"`
}

// Notifications contains configuration for audio cues and ntfy push notifications.
type Notifications struct {
	SoundEnabled   bool   `toml:"sound_enabled"`
	SoundPlayer    string `toml:"sound_player"`
	SoundDir       string `toml:"sound_dir"`
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Run contains process-level policy.
type Run struct {
	FailOnError bool `toml:"fail_on_error"`
}

// Config encapsulates all configuration values for folio.
//
// Configuration sections by subsystem:
//   - Paths: output root and optional log file
//   - Feed: listing URL and source format
//   - Listing / Locator: markup selectors
//   - HTTP: user agent, timeout, retries
//   - Fetch: image pool concurrency
//   - Notifications: sound cues and ntfy
//   - Logging: log format and level
//   - Run: exit status policy
type Config struct {
	Paths         Paths         `toml:"paths"`
	Feed          Feed          `toml:"feed"`
	Listing       Listing       `toml:"listing"`
	Locator       Locator       `toml:"locator"`
	HTTP          HTTP          `toml:"http"`
	Fetch         Fetch         `toml:"fetch"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
	Run           Run           `toml:"run"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("folio.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the output root and the three artifact trees.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.ImagesDir(), c.RegularDir(), c.ReversedDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.LogFile) != "" {
		if err := os.MkdirAll(filepath.Dir(c.Paths.LogFile), 0o755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
	}
	return nil
}

// ImagesDir returns the root holding per-chapter image directories.
func (c *Config) ImagesDir() string {
	return filepath.Join(c.Paths.OutputDir, "images")
}

// RegularDir returns the directory holding documents in source order.
func (c *Config) RegularDir() string {
	return filepath.Join(c.Paths.OutputDir, "regular_pdfs")
}

// ReversedDir returns the directory holding reading-order-reversed documents.
func (c *Config) ReversedDir() string {
	return filepath.Join(c.Paths.OutputDir, "reversed_pdfs")
}

// LockPath returns the run lock file guarding the output root.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.OutputDir, ".folio.lock")
}

// RequestTimeout returns the per-request transport timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
