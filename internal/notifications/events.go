package notifications

import "fmt"

// Event identifies a pipeline milestone.
type Event string

const (
	EventChapterStarted   Event = "chapter_started"
	EventChapterCompleted Event = "chapter_completed"
	EventError            Event = "error"
	EventRunCompleted     Event = "run_completed"
	EventTest             Event = "test"
)

// Payload carries event-specific values. Keys are lower camel case.
type Payload map[string]any

func (p Payload) str(key string) string {
	if p == nil {
		return ""
	}
	switch v := p[key].(type) {
	case string:
		return v
	case error:
		if v != nil {
			return v.Error()
		}
	case nil:
	default:
		return fmt.Sprint(v)
	}
	return ""
}

func (p Payload) integer(key string) int {
	if p == nil {
		return 0
	}
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	}
	return 0
}
