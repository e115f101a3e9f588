package workflow

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"folio/internal/config"
	"folio/internal/document"
	"folio/internal/locator"
	"folio/internal/notifications"
	"folio/internal/testsupport"
)

type publishedEvent struct {
	event   notifications.Event
	payload notifications.Payload
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (r *recordingNotifier) Publish(_ context.Context, event notifications.Event, payload notifications.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, publishedEvent{event: event, payload: payload})
	return nil
}

func (r *recordingNotifier) count(event notifications.Event) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.event == event {
			n++
		}
	}
	return n
}

func (r *recordingNotifier) last() publishedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return publishedEvent{}
	}
	return r.events[len(r.events)-1]
}

// failingReorder encodes real documents but refuses to reorder them.
type failingReorder struct {
	*document.PDFCodec
}

func (failingReorder) Reorder(context.Context, []byte, []int) ([]byte, error) {
	return nil, errors.New("reorder refused")
}

type stubLocator struct {
	candidates []locator.Candidate
	err        error
}

func (s stubLocator) Locate(context.Context, string) ([]locator.Candidate, error) {
	return s.candidates, s.err
}

func newSiteConfig(t *testing.T, site *testsupport.Site, opts ...testsupport.ConfigOption) *config.Config {
	t.Helper()
	opts = append([]testsupport.ConfigOption{testsupport.WithFeedURL(site.URL())}, opts...)
	return testsupport.NewConfig(t, opts...)
}

func pages(t *testing.T, sizes ...int) [][]byte {
	t.Helper()
	out := make([][]byte, 0, len(sizes))
	for _, size := range sizes {
		out = append(out, testsupport.PNG(t, size, size*2))
	}
	return out
}

func pageCount(t *testing.T, path string) int {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	n, err := document.NewPDFCodec().PageCount(context.Background(), data)
	if err != nil {
		t.Fatalf("page count %s: %v", path, err)
	}
	return n
}

func assertExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected %s to exist: %v", path, err)
	}
}

func assertMissing(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected %s to be absent, stat err=%v", path, err)
	}
}
