package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const userAgent = "folio/0.1.0"

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func newNtfyService(endpoint string, timeout time.Duration) *ntfyService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{endpoint: endpoint, client: &http.Client{Timeout: timeout}}
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	msg, ok := formatMessage(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func formatMessage(event Event, payload Payload) (message, bool) {
	switch event {
	case EventChapterCompleted:
		title := payload.str("title")
		if title == "" {
			title = payload.str("slug")
		}
		body := fmt.Sprintf("Chapter ready: %s (%d pages)", title, payload.integer("pages"))
		if failed := payload.integer("failed"); failed > 0 {
			body = fmt.Sprintf("%s, %d missing", body, failed)
		}
		return message{
			title: "folio - Chapter Ready",
			body:  body,
			tags:  []string{"folio", "chapter", "completed"},
		}, true
	case EventError:
		var builder strings.Builder
		builder.WriteString("Error")
		if label := strings.TrimSpace(payload.str("context")); label != "" {
			builder.WriteString(" with ")
			builder.WriteString(label)
		}
		builder.WriteString(": ")
		if text := strings.TrimSpace(payload.str("error")); text != "" {
			builder.WriteString(text)
		} else {
			builder.WriteString("unknown")
		}
		return message{
			title:    "folio - Error",
			body:     builder.String(),
			tags:     []string{"folio", "error", "alert"},
			priority: "high",
		}, true
	case EventRunCompleted:
		chapters := payload.integer("chapters")
		failed := payload.integer("failed")
		title := "folio - Run Complete"
		body := fmt.Sprintf("All chapters processed: %d", chapters)
		if failed > 0 {
			title = "folio - Run Complete (with errors)"
			body = fmt.Sprintf("%d chapters processed, %d with issues", chapters, failed)
		}
		return message{title: title, body: body, tags: []string{"folio", "run", "completed"}}, true
	case EventTest:
		return message{
			title:    "folio - Test",
			body:     "Notification system test",
			tags:     []string{"folio", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func (n *ntfyService) send(ctx context.Context, data message) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
