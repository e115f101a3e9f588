package workflow

import (
	"context"
	"log/slog"
	"time"

	"folio/internal/logging"
	"folio/internal/services"
)

// Stage is a chapter state.
type Stage string

const (
	StageDiscovering Stage = "discovering"
	StageFetching    Stage = "fetching"
	StageAssembling  Stage = "assembling"
	StageReversing   Stage = "reversing"
	StageDone        Stage = "done"
	StageFailed      Stage = "failed"
)

// Terminal reports whether no further transition is possible.
func (s Stage) Terminal() bool {
	return s == StageDone || s == StageFailed
}

// next lists the legal forward transitions. Failed is reachable from every
// non-terminal stage and is handled separately.
var next = map[Stage]Stage{
	StageDiscovering: StageFetching,
	StageFetching:    StageAssembling,
	StageAssembling:  StageReversing,
	StageReversing:   StageDone,
}

// chapterState tracks a single chapter through the state machine.
type chapterState struct {
	current Stage
	// failedAt is the stage that was active when the chapter failed.
	failedAt Stage
	entered  time.Time
	logger   *slog.Logger
}

func newChapterState(logger *slog.Logger) *chapterState {
	return &chapterState{current: StageDiscovering, entered: time.Now(), logger: logger}
}

// advance moves to the next forward stage and returns a context tagged with it.
func (c *chapterState) advance(ctx context.Context) context.Context {
	to, ok := next[c.current]
	if !ok {
		return ctx
	}
	return c.enter(ctx, to)
}

// fail moves to Failed, remembering the stage the chapter was in.
func (c *chapterState) fail(ctx context.Context) context.Context {
	if c.current.Terminal() {
		return ctx
	}
	c.failedAt = c.current
	return c.enter(ctx, StageFailed)
}

func (c *chapterState) enter(ctx context.Context, to Stage) context.Context {
	from := c.current
	elapsed := time.Since(c.entered)
	c.current = to
	c.entered = time.Now()
	ctx = services.WithStage(ctx, string(to))
	logging.WithContext(ctx, c.logger).Info("stage transition",
		logging.Event("stage_transition"),
		logging.String("from", string(from)),
		logging.String("to", string(to)),
		logging.Duration("stage_duration", elapsed),
	)
	return ctx
}
