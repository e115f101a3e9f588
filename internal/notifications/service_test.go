package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"folio/internal/config"
	"folio/internal/notifications"
)

func quietConfig() config.Config {
	cfg := config.Default()
	cfg.Notifications.SoundEnabled = false
	cfg.Notifications.NtfyTopic = ""
	return cfg
}

func TestNewServiceIsNoopWhenNothingConfigured(t *testing.T) {
	cfg := quietConfig()
	svc := notifications.NewService(&cfg, nil)
	if err := svc.Publish(context.Background(), notifications.EventError, notifications.Payload{"error": "boom"}); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
	if err := svc.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
}

type captured struct {
	title, tags, priority, body, agent string
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name    string
		event   notifications.Event
		payload notifications.Payload
		want    captured
	}{
		{
			name:    "chapter completed",
			event:   notifications.EventChapterCompleted,
			payload: notifications.Payload{"slug": "chapter-3", "title": "Chapter 3", "pages": 12},
			want:    captured{title: "folio - Chapter Ready", tags: "folio,chapter,completed", body: "Chapter ready: Chapter 3 (12 pages)"},
		},
		{
			name:    "chapter degraded",
			event:   notifications.EventChapterCompleted,
			payload: notifications.Payload{"slug": "chapter-4", "pages": 10, "failed": 2},
			want:    captured{title: "folio - Chapter Ready", tags: "folio,chapter,completed", body: "Chapter ready: chapter-4 (10 pages), 2 missing"},
		},
		{
			name:    "error",
			event:   notifications.EventError,
			payload: notifications.Payload{"error": errors.New("download failed"), "context": "chapter-5"},
			want:    captured{title: "folio - Error", tags: "folio,error,alert", priority: "high", body: "Error with chapter-5: download failed"},
		},
		{
			name:    "run with failures",
			event:   notifications.EventRunCompleted,
			payload: notifications.Payload{"chapters": 3, "failed": 1},
			want:    captured{title: "folio - Run Complete (with errors)", tags: "folio,run,completed", body: "3 chapters processed, 1 with issues"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := make(chan captured, 1)
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				body, _ := io.ReadAll(r.Body)
				got <- captured{
					title:    r.Header.Get("Title"),
					tags:     r.Header.Get("Tags"),
					priority: r.Header.Get("Priority"),
					body:     string(body),
					agent:    r.Header.Get("User-Agent"),
				}
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := quietConfig()
			cfg.Notifications.NtfyTopic = server.URL
			svc := notifications.NewService(&cfg, nil)
			if err := svc.Publish(context.Background(), tt.event, tt.payload); err != nil {
				t.Fatalf("publish: %v", err)
			}
			if err := svc.Close(context.Background()); err != nil {
				t.Fatalf("close: %v", err)
			}

			select {
			case c := <-got:
				if c.title != tt.want.title || c.tags != tt.want.tags || c.priority != tt.want.priority || c.body != tt.want.body {
					t.Fatalf("unexpected request: %+v, want %+v", c, tt.want)
				}
				if c.agent == "" {
					t.Fatal("expected user agent header")
				}
			default:
				t.Fatal("expected ntfy request")
			}
		})
	}
}

func TestNtfyIgnoresUnmappedEvents(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer server.Close()

	cfg := quietConfig()
	cfg.Notifications.NtfyTopic = server.URL
	svc := notifications.NewService(&cfg, nil)
	_ = svc.Publish(context.Background(), notifications.EventChapterStarted, nil)
	if err := svc.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if hits != 0 {
		t.Fatalf("expected no requests for chapter start, got %d", hits)
	}
}

type blockingService struct {
	mu      sync.Mutex
	release chan struct{}
	events  []notifications.Event
}

func (b *blockingService) Publish(_ context.Context, event notifications.Event, _ notifications.Payload) error {
	<-b.release
	b.mu.Lock()
	b.events = append(b.events, event)
	b.mu.Unlock()
	return errors.New("delivery failure is ignored")
}

func TestDispatcherNeverBlocksPublisher(t *testing.T) {
	inner := &blockingService{release: make(chan struct{})}
	d := notifications.NewDispatcher(inner, nil, 2)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 20; i++ {
			_ = d.Publish(context.Background(), notifications.EventError, nil)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a stalled notifier")
	}
	if d.Dropped() == 0 {
		t.Fatal("expected overflow events to be dropped")
	}

	close(inner.release)
	if err := d.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	inner.mu.Lock()
	delivered := len(inner.events)
	inner.mu.Unlock()
	if int64(delivered)+d.Dropped() != 20 {
		t.Fatalf("delivered %d + dropped %d != 20", delivered, d.Dropped())
	}
}

func TestDispatcherIgnoresPublishAfterClose(t *testing.T) {
	d := notifications.NewDispatcher(notifications.NewNoop(), nil, 1)
	if err := d.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := d.Publish(context.Background(), notifications.EventError, nil); err != nil {
		t.Fatalf("expected nil after close, got %v", err)
	}
	if err := d.Close(context.Background()); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
