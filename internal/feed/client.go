package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"folio/internal/config"
	"folio/internal/logging"
)

const (
	defaultTimeout       = 10 * time.Second
	defaultRetryInterval = 500 * time.Millisecond
	maxBodyBytes         = 64 << 20
)

// ErrBodyTooLarge reports a response body over the read ceiling.
var ErrBodyTooLarge = errors.New("response body too large")

// Fetcher retrieves the body at url.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// StatusError reports a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// Options configures a Client.
type Options struct {
	UserAgent     string
	Timeout       time.Duration
	MaxRetries    int
	RetryInterval time.Duration
	MaxBodyBytes  int64
	HTTPClient    *http.Client
	Logger        *slog.Logger
}

// Client is the shared HTTP session.
type Client struct {
	http          *http.Client
	userAgent     string
	maxRetries    int
	retryInterval time.Duration
	maxBody       int64
	logger        *slog.Logger
}

// New builds a Client. A zero Timeout uses 10 seconds and a zero MaxBodyBytes
// uses 64 MiB.
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	interval := opts.RetryInterval
	if interval <= 0 {
		interval = defaultRetryInterval
	}
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = maxBodyBytes
	}
	retries := opts.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return &Client{
		http:          httpClient,
		userAgent:     opts.UserAgent,
		maxRetries:    retries,
		retryInterval: interval,
		maxBody:       maxBody,
		logger:        logging.NewComponentLogger(opts.Logger, "feed"),
	}
}

// NewFromConfig builds a Client from the [http] section.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) *Client {
	return New(Options{
		UserAgent:  cfg.HTTP.UserAgent,
		Timeout:    cfg.RequestTimeout(),
		MaxRetries: cfg.HTTP.MaxRetries,
		Logger:     logger,
	})
}

// Fetch performs a GET and returns the full body on a 2xx response.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	attempt := 0
	operation := func() error {
		attempt++
		data, err := c.get(ctx, url)
		if err != nil {
			if !retryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		body = data
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryInterval
	policy.MaxElapsedTime = 0
	notify := func(err error, wait time.Duration) {
		c.logger.Debug("retrying request",
			logging.String("url", url),
			logging.Int("attempt", attempt),
			logging.Duration("wait", wait),
			logging.Error(err),
		)
	}
	err := backoff.RetryNotify(operation, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(c.maxRetries)), ctx), notify)
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", url, err)
	}
	if int64(len(data)) > c.maxBody {
		return nil, fmt.Errorf("GET %s: %w (limit %d bytes)", url, ErrBodyTooLarge, c.maxBody)
	}
	return data, nil
}

// retryable excludes client errors and caller cancellation.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrBodyTooLarge) {
		return false
	}
	var status *StatusError
	if errors.As(err, &status) {
		return status.StatusCode >= 500
	}
	return true
}
