package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"folio/internal/config"
	"folio/internal/document"
	"folio/internal/feed"
	"folio/internal/fetchpool"
	"folio/internal/listing"
	"folio/internal/locator"
	"folio/internal/logging"
	"folio/internal/notifications"
	"folio/internal/preflight"
	"folio/internal/report"
	"folio/internal/services"
)

// ListingResolver turns the feed into chapter references.
type ListingResolver interface {
	Resolve(ctx context.Context, feedURL string) ([]listing.ChapterRef, error)
}

// Summary describes a finished run.
type Summary struct {
	RunID    string
	Totals   report.Totals
	Failed   []report.ChapterOutcome
	Duration time.Duration
}

// HasFailures reports whether any chapter ended Degraded or Fatal.
func (s Summary) HasFailures() bool {
	return len(s.Failed) > 0
}

// Runner executes one full pipeline run against the configured feed.
type Runner struct {
	cfg      *config.Config
	logger   *slog.Logger
	notifier notifications.Service

	fetcher  feed.Fetcher
	resolver ListingResolver
	locator  ImageLocator
	codec    document.Codec
}

// Option customizes a Runner.
type Option func(*Runner)

// WithResolver replaces the listing resolver.
func WithResolver(resolver ListingResolver) Option {
	return func(r *Runner) { r.resolver = resolver }
}

// WithCodec replaces the PDF codec.
func WithCodec(codec document.Codec) Option {
	return func(r *Runner) { r.codec = codec }
}

// NewRunner builds a Runner from cfg. Components not supplied through opts are
// built from the config around one shared HTTP session.
func NewRunner(cfg *config.Config, logger *slog.Logger, notifier notifications.Service, opts ...Option) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = notifications.NewNoop()
	}
	r := &Runner{cfg: cfg, logger: logger, notifier: notifier}
	for _, opt := range opts {
		opt(r)
	}
	if r.fetcher == nil {
		r.fetcher = feed.NewFromConfig(cfg, logger)
	}
	if r.resolver == nil {
		r.resolver = listing.NewFromConfig(cfg, r.fetcher, logger).WithDropHook(r.entryDropped)
	}
	if r.locator == nil {
		r.locator = locator.NewFromConfig(cfg, r.fetcher, logger)
	}
	if r.codec == nil {
		r.codec = document.NewPDFCodec()
	}
	return r
}

// Run processes every chapter in the listing. A listing failure aborts the run
// with a zero Summary. Chapter failures never stop the run; they are returned
// in Summary.Failed. When cfg.Run.FailOnError is set and any chapter failed,
// the Summary is returned together with ErrRunHadFailures. Cancelling ctx
// stops the run before the next chapter.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	if err := r.cfg.EnsureDirectories(); err != nil {
		return Summary{}, services.Wrap(services.ErrConfiguration, "run", "prepare output", r.cfg.Paths.OutputDir, err)
	}

	lock := flock.New(r.cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return Summary{}, services.Wrap(services.ErrRunLocked, "run", "acquire lock", r.cfg.LockPath(), err)
	}
	if !locked {
		return Summary{}, services.Wrap(services.ErrRunLocked, "run", "acquire lock", "another run holds "+r.cfg.LockPath(), nil)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warn("failed to release run lock", logging.Error(err))
		}
	}()

	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, logging.NewComponentLogger(r.logger, "runner"))

	if err := r.preflight(ctx, logger); err != nil {
		return Summary{}, err
	}

	feedURL := strings.TrimSpace(r.cfg.Feed.URL)
	logger.Info("run started",
		logging.Event("run_start"),
		logging.String("feed_url", feedURL),
		logging.String("output_dir", r.cfg.Paths.OutputDir),
		logging.Int("concurrency", r.cfg.Fetch.Concurrency),
	)
	chapters, err := r.resolver.Resolve(ctx, feedURL)
	if err != nil {
		logging.ErrorWithContext(logger, "listing failed; no chapters processed", "listing_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, services.Hint(err)),
		)
		r.publish(ctx, logger, notifications.EventError, notifications.Payload{"error": err, "context": "listing"})
		return Summary{}, err
	}

	results := report.NewAggregator()
	pool := fetchpool.New(r.fetcher, fetchpool.Options{Concurrency: r.cfg.Fetch.Concurrency, Logger: r.logger})
	orchestrator := NewOrchestrator(r.cfg, r.locator, pool, r.codec, r.notifier, results, r.logger)

	var runErr error
	for i, chapter := range chapters {
		if err := ctx.Err(); err != nil {
			logger.Info("run interrupted", logging.Int("remaining", len(chapters)-i))
			runErr = err
			break
		}
		orchestrator.Process(ctx, chapter)
	}

	failed, err := results.Drain()
	if err != nil {
		return Summary{}, fmt.Errorf("drain results: %w", err)
	}
	summary := Summary{
		RunID:    runID,
		Totals:   results.Totals(),
		Failed:   failed,
		Duration: time.Since(start),
	}
	logger.Info("ALL CHAPTERS DOWNLOADED!",
		logging.Event("run_complete"),
		logging.Int("chapters", summary.Totals.Chapters),
		logging.Int("clean", summary.Totals.Clean),
		logging.Int("degraded", summary.Totals.Degraded),
		logging.Int("failed", summary.Totals.Fatal),
		logging.Duration("run_duration", summary.Duration),
	)
	r.publish(ctx, logger, notifications.EventRunCompleted, notifications.Payload{
		"chapters": summary.Totals.Chapters,
		"failed":   len(summary.Failed),
	})

	if runErr != nil {
		return summary, runErr
	}
	if r.cfg.Run.FailOnError && summary.HasFailures() {
		return summary, fmt.Errorf("%w: %d of %d chapters", services.ErrRunHadFailures, len(summary.Failed), summary.Totals.Chapters)
	}
	return summary, nil
}

func (r *Runner) preflight(ctx context.Context, logger *slog.Logger) error {
	results := preflight.RunAll(ctx, r.cfg)
	_, optional := preflight.Failures(results)
	for _, result := range optional {
		logging.WarnWithContext(logger, "optional preflight check failed", "preflight_warning",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
			logging.String(logging.FieldImpact, "feature disabled for this run"),
		)
	}
	if err := preflight.Err(results); err != nil {
		logging.ErrorWithContext(logger, "preflight failed", "preflight_failed", logging.Error(err))
		return err
	}
	return nil
}

func (r *Runner) entryDropped(ctx context.Context, entry listing.DroppedEntry) {
	r.publish(ctx, r.logger, notifications.EventError, notifications.Payload{
		"error":   errors.New(entry.Reason),
		"context": fmt.Sprintf("listing entry %d", entry.Position),
	})
}

func (r *Runner) publish(ctx context.Context, logger *slog.Logger, event notifications.Event, payload notifications.Payload) {
	if err := r.notifier.Publish(ctx, event, payload); err != nil {
		logger.Debug("notification failed", logging.String("event", string(event)), logging.Error(err))
	}
}
