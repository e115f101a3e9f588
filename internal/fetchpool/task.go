package fetchpool

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"folio/internal/services"
)

// State is the lifecycle position of an ImageTask.
type State int

const (
	Pending State = iota
	Downloaded
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Downloaded:
		return "downloaded"
	case Failed:
		return "failed"
	default:
		return "state(" + strconv.Itoa(int(s)) + ")"
	}
}

// Outcome records how a task ended. Reason is set only for Failed.
type Outcome struct {
	State  State
	Reason error
}

// ImageTask is one page image to download. PageIndex is 1-based in discovery
// order and is the only ordering key used downstream.
type ImageTask struct {
	ChapterSlug string
	PageIndex   int
	SourceURL   string
	LocalPath   string
	Outcome     Outcome
}

// NewTask builds a pending task whose LocalPath is
// <imagesDir>/<slug>/<slug>-page-<n><ext>.
func NewTask(imagesDir, slug string, pageIndex int, sourceURL string) *ImageTask {
	return &ImageTask{
		ChapterSlug: slug,
		PageIndex:   pageIndex,
		SourceURL:   sourceURL,
		LocalPath:   ImagePath(imagesDir, slug, pageIndex, sourceURL),
	}
}

// NewMissingTask builds a task that is already Failed because the page had no
// usable image source.
func NewMissingTask(imagesDir, slug string, pageIndex int) *ImageTask {
	task := NewTask(imagesDir, slug, pageIndex, "")
	task.Outcome = Outcome{
		State:  Failed,
		Reason: services.Wrap(services.ErrMissingSource, "fetching", "locate", fmt.Sprintf("page %d has no src", pageIndex), nil),
	}
	return task
}

// Done reports whether the task reached a terminal state.
func (t *ImageTask) Done() bool {
	return t.Outcome.State != Pending
}

func (t *ImageTask) succeed() {
	t.Outcome = Outcome{State: Downloaded}
}

func (t *ImageTask) fail(err error) {
	t.Outcome = Outcome{State: Failed, Reason: err}
}

// ImagePath returns the on-disk location for a page image.
func ImagePath(imagesDir, slug string, pageIndex int, sourceURL string) string {
	name := fmt.Sprintf("%s-page-%d%s", slug, pageIndex, Extension(sourceURL))
	return filepath.Join(imagesDir, slug, name)
}

// Extension returns the lowercase extension of the URL path, ignoring the
// query string. URLs without a usable extension get ".bin".
func Extension(sourceURL string) string {
	const fallback = ".bin"
	parsed, err := url.Parse(sourceURL)
	if err != nil {
		return fallback
	}
	ext := strings.ToLower(path.Ext(parsed.Path))
	if len(ext) < 2 || len(ext) > 6 {
		return fallback
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return fallback
		}
	}
	return ext
}

// DownloadError reports a page image that could not be fetched or stored.
type DownloadError struct {
	URL   string
	Cause error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s: %v", e.URL, e.Cause)
}

func (e *DownloadError) Unwrap() error { return e.Cause }

// Is lets errors.Is(err, services.ErrDownload) match.
func (e *DownloadError) Is(target error) bool {
	return target == services.ErrDownload
}

// Counts tallies task states.
type Counts struct {
	Total      int
	Downloaded int
	Failed     int
	Pending    int
}

// Tally counts tasks by state.
func Tally(tasks []*ImageTask) Counts {
	counts := Counts{Total: len(tasks)}
	for _, task := range tasks {
		switch task.Outcome.State {
		case Downloaded:
			counts.Downloaded++
		case Failed:
			counts.Failed++
		default:
			counts.Pending++
		}
	}
	return counts
}

// FirstFailure returns the reason of the lowest-index failed task.
func FirstFailure(tasks []*ImageTask) error {
	var first *ImageTask
	for _, task := range tasks {
		if task.Outcome.State != Failed {
			continue
		}
		if first == nil || task.PageIndex < first.PageIndex {
			first = task
		}
	}
	if first == nil {
		return nil
	}
	if first.Outcome.Reason == nil {
		return errors.New("page failed")
	}
	return first.Outcome.Reason
}
