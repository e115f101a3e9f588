package services

import (
	"errors"
	"fmt"
	"strings"
)

// Run-level failures. Only these abort a run.
var (
	ErrUnreachableFeed  = errors.New("unreachable feed")
	ErrMalformedListing = errors.New("malformed listing")
	ErrConfiguration    = errors.New("configuration error")
	ErrRunLocked        = errors.New("run already in progress")
)

// Chapter-level failures. The chapter is abandoned and the run continues.
var (
	ErrUnreachableChapter = errors.New("unreachable chapter")
	ErrMalformedChapter   = errors.New("malformed chapter")
	ErrEmptyChapter       = errors.New("empty chapter")
	ErrAssembly           = errors.New("assembly error")
	ErrReverse            = errors.New("reverse error")
)

// Item-level failures. A single page is lost and the chapter degrades.
var (
	ErrDownload      = errors.New("download error")
	ErrMissingSource = errors.New("missing image source")
)

// ErrRunHadFailures is returned when the exit policy treats degraded or failed
// chapters as a process failure.
var ErrRunHadFailures = errors.New("run finished with failed chapters")

// Severity describes how much work an error costs.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityItem
	SeverityChapter
	SeverityRun
)

func (s Severity) String() string {
	switch s {
	case SeverityNone:
		return "none"
	case SeverityItem:
		return "item"
	case SeverityChapter:
		return "chapter"
	case SeverityRun:
		return "run"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrAssembly
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Classify maps an error to the scope of work it invalidates. Unknown errors
// are treated as chapter-level so they never silently degrade into lost pages.
func Classify(err error) Severity {
	switch {
	case err == nil:
		return SeverityNone
	case errors.Is(err, ErrUnreachableFeed), errors.Is(err, ErrMalformedListing),
		errors.Is(err, ErrConfiguration), errors.Is(err, ErrRunLocked):
		return SeverityRun
	case errors.Is(err, ErrDownload), errors.Is(err, ErrMissingSource):
		return SeverityItem
	default:
		return SeverityChapter
	}
}

// Hint returns a short operator-facing suggestion for an error.
func Hint(err error) string {
	switch {
	case errors.Is(err, ErrUnreachableFeed):
		return "check network access and feed.url"
	case errors.Is(err, ErrMalformedListing):
		return "site layout changed; review listing selectors"
	case errors.Is(err, ErrUnreachableChapter), errors.Is(err, ErrDownload):
		return "transient network failure; rerun to retry"
	case errors.Is(err, ErrMalformedChapter), errors.Is(err, ErrMissingSource):
		return "site layout changed; review locator selectors"
	case errors.Is(err, ErrEmptyChapter):
		return "no pages downloaded; rerun to retry"
	case errors.Is(err, ErrAssembly), errors.Is(err, ErrReverse):
		return "inspect downloaded images for corrupt files"
	case errors.Is(err, ErrRunLocked):
		return "wait for the other run to finish"
	default:
		return "check logs for details"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
