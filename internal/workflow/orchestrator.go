package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"folio/internal/config"
	"folio/internal/document"
	"folio/internal/fetchpool"
	"folio/internal/fileutil"
	"folio/internal/listing"
	"folio/internal/locator"
	"folio/internal/logging"
	"folio/internal/notifications"
	"folio/internal/report"
	"folio/internal/services"
	"folio/internal/textutil"
)

// ImageLocator discovers the image slots of a chapter page.
type ImageLocator interface {
	Locate(ctx context.Context, chapterURL string) ([]locator.Candidate, error)
}

// Orchestrator runs single chapters through the state machine.
type Orchestrator struct {
	cfg       *config.Config
	locator   ImageLocator
	pool      *fetchpool.Pool
	assembler *document.Assembler
	reverser  *document.Reverser
	notifier  notifications.Service
	results   *report.Aggregator
	logger    *slog.Logger
}

// NewOrchestrator wires an Orchestrator. The pool is re-bound so every image
// failure produces an error notification.
func NewOrchestrator(
	cfg *config.Config,
	loc ImageLocator,
	pool *fetchpool.Pool,
	codec document.Codec,
	notifier notifications.Service,
	results *report.Aggregator,
	logger *slog.Logger,
) *Orchestrator {
	if notifier == nil {
		notifier = notifications.NewNoop()
	}
	logger = logging.NewComponentLogger(logger, "workflow")
	o := &Orchestrator{
		cfg:       cfg,
		locator:   loc,
		assembler: document.NewAssembler(codec, logger),
		reverser:  document.NewReverser(codec, logger),
		notifier:  notifier,
		results:   results,
		logger:    logger,
	}
	o.pool = pool.WithFailureHook(o.imageFailed)
	return o
}

// Process runs one chapter to a terminal state, records its outcome, and
// returns it. Page failures degrade the chapter; stage failures make it Fatal.
func (o *Orchestrator) Process(ctx context.Context, ref listing.ChapterRef) report.ChapterOutcome {
	ctx = services.WithRequestID(services.WithSlug(ctx, ref.Slug), uuid.NewString())
	state := newChapterState(o.logger)
	ctx = services.WithStage(ctx, string(state.current))
	logger := logging.WithContext(ctx, o.logger)
	start := time.Now()

	logger.Info("CURRENTLY PROCESSING "+ref.Slug+"...",
		logging.Event("chapter_start"),
		logging.String("source_url", ref.SourceURL),
	)
	o.publish(ctx, notifications.EventChapterStarted, notifications.Payload{"slug": ref.Slug})

	outcome := o.run(ctx, state, ref)
	o.results.Record(outcome)

	attrs := []logging.Attr{
		logging.Event("chapter_complete"),
		logging.String("status", outcome.Status.String()),
		logging.Int("pages", outcome.Pages),
		logging.Int("failed_pages", outcome.Failed),
		logging.Duration("chapter_duration", time.Since(start)),
	}
	finished := logging.WithContext(services.WithStage(ctx, string(state.current)), o.logger)
	if outcome.Status == report.Fatal {
		finished.Info("chapter abandoned", logging.Args(append(attrs, logging.String("failed_stage", outcome.Stage))...)...)
	} else {
		finished.Info("COMPLETED PROCESSING", logging.Args(attrs...)...)
	}
	return outcome
}

func (o *Orchestrator) run(ctx context.Context, state *chapterState, ref listing.ChapterRef) report.ChapterOutcome {
	outcome := report.ChapterOutcome{Slug: ref.Slug, Status: report.Clean}

	candidates, err := o.locator.Locate(ctx, ref.SourceURL)
	if err != nil {
		return o.fatal(ctx, state, outcome, err)
	}
	outcome.Pages = len(candidates)

	tasks := make([]*fetchpool.ImageTask, 0, len(candidates))
	imagesDir := o.cfg.ImagesDir()
	for _, candidate := range candidates {
		if candidate.Missing {
			task := fetchpool.NewMissingTask(imagesDir, ref.Slug, candidate.PageIndex)
			o.imageFailed(ctx, task)
			tasks = append(tasks, task)
			continue
		}
		tasks = append(tasks, fetchpool.NewTask(imagesDir, ref.Slug, candidate.PageIndex, candidate.SourceURL))
	}

	ctx = state.advance(ctx)
	o.pool.FetchAll(ctx, tasks)
	counts := fetchpool.Tally(tasks)
	if counts.Failed > 0 {
		outcome.Status = report.Degraded
		outcome.Stage = string(StageFetching)
		outcome.Failed = counts.Failed
		outcome.Err = fetchpool.FirstFailure(tasks)
	}
	if ctx.Err() != nil {
		return o.fatal(ctx, state, outcome, ctx.Err())
	}

	ctx = state.advance(ctx)
	regular := filepath.Join(o.cfg.RegularDir(), ref.Slug+".pdf")
	reversedPath := filepath.Join(o.cfg.ReversedDir(), ref.Slug+"-reversed.pdf")
	// Documents from an earlier run must not outlive a failure in this one.
	for _, path := range []string{regular, reversedPath} {
		if err := fileutil.RemoveIfExists(path); err != nil {
			return o.fatal(ctx, state, outcome, services.Wrap(services.ErrAssembly, string(StageAssembling), "remove previous document", path, err))
		}
	}
	doc, err := o.assembler.Assemble(ctx, tasks)
	if err != nil {
		return o.fatal(ctx, state, outcome, err)
	}
	if err := fileutil.WriteAtomic(regular, doc.Data, 0o644); err != nil {
		return o.fatal(ctx, state, outcome, services.Wrap(services.ErrAssembly, string(StageAssembling), "write document", regular, err))
	}

	ctx = state.advance(ctx)
	reversed, err := o.reverser.Reverse(ctx, doc.Data)
	if err != nil {
		return o.fatal(ctx, state, outcome, err)
	}
	if err := fileutil.WriteAtomic(reversedPath, reversed, 0o644); err != nil {
		return o.fatal(ctx, state, outcome, services.Wrap(services.ErrReverse, string(StageReversing), "write document", reversedPath, err))
	}

	ctx = state.advance(ctx)
	o.publish(ctx, notifications.EventChapterCompleted, notifications.Payload{
		"slug":   ref.Slug,
		"title":  textutil.DisplayTitle(ref.Slug),
		"pages":  len(doc.Pages),
		"failed": outcome.Failed,
	})
	return outcome
}

// fatal ends the chapter in Failed, keeping the page counts gathered so far.
func (o *Orchestrator) fatal(ctx context.Context, state *chapterState, outcome report.ChapterOutcome, err error) report.ChapterOutcome {
	ctx = state.fail(ctx)
	outcome.Status = report.Fatal
	outcome.Stage = string(state.failedAt)
	outcome.Err = err

	logger := logging.WithContext(ctx, o.logger)
	if errors.Is(err, context.Canceled) {
		logger.Info("chapter interrupted", logging.String("failed_stage", outcome.Stage))
		return outcome
	}
	logging.ErrorWithContext(logger, "chapter failed", "chapter_failed",
		logging.String("failed_stage", outcome.Stage),
		logging.String("severity", services.Classify(err).String()),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, services.Hint(err)),
	)
	o.publish(ctx, notifications.EventError, notifications.Payload{
		"error":   err,
		"context": fmt.Sprintf("%s (%s)", outcome.Slug, outcome.Stage),
		"slug":    outcome.Slug,
	})
	return outcome
}

// imageFailed runs on pool workers; it only notifies, since the pool logs
// the failure itself. Missing-source tasks are logged here.
func (o *Orchestrator) imageFailed(ctx context.Context, task *fetchpool.ImageTask) {
	if errors.Is(task.Outcome.Reason, services.ErrMissingSource) {
		logging.WarnWithContext(logging.WithContext(ctx, o.logger), "image has no source", "image_missing_source",
			logging.Page(task.PageIndex),
			logging.String(logging.FieldImpact, "page will be missing from the document"),
		)
	}
	o.publish(ctx, notifications.EventError, notifications.Payload{
		"error":   task.Outcome.Reason,
		"context": fmt.Sprintf("%s page %d", task.ChapterSlug, task.PageIndex),
		"slug":    task.ChapterSlug,
		"page":    task.PageIndex,
	})
}

func (o *Orchestrator) publish(ctx context.Context, event notifications.Event, payload notifications.Payload) {
	if err := o.notifier.Publish(ctx, event, payload); err != nil {
		logging.WithContext(ctx, o.logger).Debug("notification failed",
			logging.String("event", strings.TrimSpace(string(event))),
			logging.Error(err),
		)
	}
}
