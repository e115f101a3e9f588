package fetchpool

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"folio/internal/feed"
	"folio/internal/fileutil"
	"folio/internal/logging"
)

// DefaultConcurrency is the worker ceiling used when none is configured.
const DefaultConcurrency = 10

// FailureHook is called from a worker goroutine as soon as a task fails.
type FailureHook func(ctx context.Context, task *ImageTask)

// Options configures a Pool.
type Options struct {
	Concurrency int
	Logger      *slog.Logger
	OnFailure   FailureHook
}

// Pool downloads ImageTasks with at most Concurrency requests in flight.
type Pool struct {
	fetcher     feed.Fetcher
	concurrency int
	logger      *slog.Logger
	onFailure   FailureHook
}

// New builds a Pool. Non-positive concurrency uses DefaultConcurrency.
func New(fetcher feed.Fetcher, opts Options) *Pool {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Pool{
		fetcher:     fetcher,
		concurrency: concurrency,
		logger:      logging.NewComponentLogger(opts.Logger, "fetchpool"),
		onFailure:   opts.OnFailure,
	}
}

// Concurrency returns the worker ceiling.
func (p *Pool) Concurrency() int {
	return p.concurrency
}

// WithFailureHook returns a copy of p that reports failures to hook.
func (p *Pool) WithFailureHook(hook FailureHook) *Pool {
	clone := *p
	clone.onFailure = hook
	return &clone
}

// FetchAll downloads every pending task and returns tasks once all of them are
// terminal. Tasks that are already terminal are left as they are. Completion
// order is unspecified; each task is touched by exactly one worker.
func (p *Pool) FetchAll(ctx context.Context, tasks []*ImageTask) []*ImageTask {
	pending := make([]*ImageTask, 0, len(tasks))
	for _, task := range tasks {
		if !task.Done() {
			pending = append(pending, task)
		}
	}
	if len(pending) == 0 {
		return tasks
	}

	var group errgroup.Group
	group.SetLimit(p.concurrency)
	for _, task := range pending {
		group.Go(func() error {
			p.download(ctx, task)
			return nil
		})
	}
	// Failures are recorded on each task; the group only bounds and joins.
	group.Wait()

	return tasks
}

func (p *Pool) download(ctx context.Context, task *ImageTask) {
	logger := logging.WithContext(ctx, p.logger).With(logging.Page(task.PageIndex))

	data, err := p.fetcher.Fetch(ctx, task.SourceURL)
	if err != nil {
		p.failed(ctx, logger, task, &DownloadError{URL: task.SourceURL, Cause: err})
		return
	}
	if err := p.store(task.LocalPath, data); err != nil {
		p.failed(ctx, logger, task, &DownloadError{URL: task.SourceURL, Cause: err})
		return
	}
	task.succeed()
	logger.Info("image downloaded",
		logging.Event("image_downloaded"),
		logging.String("file", filepath.Base(task.LocalPath)),
		logging.Int("bytes", len(data)),
	)
}

// store replaces whatever an earlier run left at path.
func (p *Pool) store(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure chapter directory: %w", err)
	}
	if err := fileutil.RemoveIfExists(path); err != nil {
		return fmt.Errorf("remove stale image: %w", err)
	}
	return fileutil.WriteExclusive(path, data, 0o644)
}

// failed leaves no image at LocalPath, including one from an earlier run.
func (p *Pool) failed(ctx context.Context, logger *slog.Logger, task *ImageTask, err error) {
	if rmErr := fileutil.RemoveIfExists(task.LocalPath); rmErr != nil {
		logger.Warn("remove stale image failed",
			logging.Event("image_cleanup_failed"),
			logging.String("file", filepath.Base(task.LocalPath)),
			logging.Error(rmErr),
		)
	}
	task.fail(err)
	logging.WarnWithContext(logger, "image download failed", "image_failed",
		logging.String("url", task.SourceURL),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "page will be missing from the document; rerun to retry"),
		logging.String(logging.FieldImpact, "chapter degraded"),
	)
	if p.onFailure != nil {
		p.onFailure(ctx, task)
	}
}
