package config

const (
	defaultConfigPath        = "~/.config/folio/config.toml"
	defaultOutputDir         = "content"
	defaultFeedURL           = "https://www.gachiakutascans.com/"
	defaultFeedSource        = SourceHTML
	defaultContainerSelector = "li#ceo_latest_comics_widget-3"
	defaultEntrySelector     = "li"
	defaultSlugMarker        = "manga/"
	defaultContentSelector   = "div.entry-content"
	defaultImageSelector     = "img.article_ed__img"
	defaultUserAgent         = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/88.0.4324.96 Safari/537.36"
	defaultTimeoutSeconds    = 10
	defaultConcurrency       = 10
	defaultSoundPlayer       = "mpg123"
	defaultSoundDir          = "sounds"
	defaultNotifyTimeout     = 10
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	maxConcurrency           = 64
	maxHTTPRetries           = 10
)

// Supported listing sources.
const (
	SourceHTML = "html"
	SourceRSS  = "rss"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
		},
		Feed: Feed{
			URL:    defaultFeedURL,
			Source: defaultFeedSource,
		},
		Listing: Listing{
			ContainerSelector: defaultContainerSelector,
			EntrySelector:     defaultEntrySelector,
			SlugMarker:        defaultSlugMarker,
		},
		Locator: Locator{
			ContentSelector: defaultContentSelector,
			ImageSelector:   defaultImageSelector,
		},
		HTTP: HTTP{
			UserAgent:      defaultUserAgent,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Fetch: Fetch{
			Concurrency: defaultConcurrency,
		},
		Notifications: Notifications{
			SoundEnabled:   true,
			SoundPlayer:    defaultSoundPlayer,
			SoundDir:       defaultSoundDir,
			RequestTimeout: defaultNotifyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
