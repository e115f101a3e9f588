package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"folio/internal/config"
	"folio/internal/logging"
)

// cues maps events to the audio file played for them.
var cues = map[Event]string{
	EventError:            "error.mp3",
	EventChapterCompleted: "success.mp3",
	EventRunCompleted:     "done.mp3",
	EventTest:             "success.mp3",
}

type soundService struct {
	player string
	args   []string
	dir    string
	logger *slog.Logger
	run    func(ctx context.Context, name string, args ...string) error
}

// newSoundService returns nil when cues are disabled or the player binary is
// not on PATH.
func newSoundService(cfg config.Notifications, logger *slog.Logger) *soundService {
	if !cfg.SoundEnabled {
		return nil
	}
	fields := strings.Fields(cfg.SoundPlayer)
	if len(fields) == 0 {
		return nil
	}
	if _, err := exec.LookPath(fields[0]); err != nil {
		logger.Debug("sound player unavailable; audio cues disabled",
			logging.String("player", fields[0]),
			logging.Error(err),
		)
		return nil
	}
	return &soundService{
		player: fields[0],
		args:   fields[1:],
		dir:    cfg.SoundDir,
		logger: logger,
		run:    runCommand,
	}
}

func (s *soundService) Publish(ctx context.Context, event Event, _ Payload) error {
	name, ok := cues[event]
	if !ok {
		return nil
	}
	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); err != nil {
		s.logger.Debug("sound cue missing", logging.String("path", path))
		return nil
	}
	args := append(append([]string(nil), s.args...), path)
	if err := s.run(ctx, s.player, args...); err != nil {
		return fmt.Errorf("play %s: %w", name, err)
	}
	return nil
}

func runCommand(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}
