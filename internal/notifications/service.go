package notifications

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"folio/internal/config"
	"folio/internal/logging"
)

// Service defines the notification surface exposed to workflow components.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds the configured notifier fan-out. Sound cues and ntfy are
// independent; when neither is available a noop implementation is returned.
// The returned Dispatcher must be closed to flush queued events.
func NewService(cfg *config.Config, logger *slog.Logger) *Dispatcher {
	logger = logging.NewComponentLogger(logger, "notifications")
	var targets []Service
	if cfg != nil {
		if sound := newSoundService(cfg.Notifications, logger); sound != nil {
			targets = append(targets, sound)
		}
		if topic := strings.TrimSpace(cfg.Notifications.NtfyTopic); topic != "" {
			timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
			targets = append(targets, newNtfyService(topic, timeout))
		}
	}

	var inner Service = noopService{}
	switch len(targets) {
	case 0:
	case 1:
		inner = targets[0]
	default:
		inner = multiService(targets)
	}
	return NewDispatcher(inner, logger, defaultQueueSize)
}

type multiService []Service

func (m multiService) Publish(ctx context.Context, event Event, payload Payload) error {
	var errs []error
	for _, svc := range m {
		if err := svc.Publish(ctx, event, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }

// NewNoop returns a notifier that discards every event.
func NewNoop() Service { return noopService{} }
