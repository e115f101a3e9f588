package preflight

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"folio/internal/config"
	"folio/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// RunAll executes every check that applies to cfg. Output directories are
// always checked; the sound player is checked only when cues are enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	_ = ctx

	results := []Result{
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckDirectoryAccess("Images directory", cfg.ImagesDir()),
		CheckDirectoryAccess("Regular PDF directory", cfg.RegularDir()),
		CheckDirectoryAccess("Reversed PDF directory", cfg.ReversedDir()),
	}
	if cfg.Notifications.SoundEnabled {
		player := CheckBinary("Sound player", firstField(cfg.Notifications.SoundPlayer))
		player.Optional = true
		results = append(results, player)
	}
	return results
}

// Failures returns the results that did not pass, required ones first.
func Failures(results []Result) (required, optional []Result) {
	for _, result := range results {
		if result.Passed {
			continue
		}
		if result.Optional {
			optional = append(optional, result)
		} else {
			required = append(required, result)
		}
	}
	return required, optional
}

// Err converts failed required checks into a configuration error, or nil when
// every required check passed.
func Err(results []Result) error {
	required, _ := Failures(results)
	if len(required) == 0 {
		return nil
	}
	errs := make([]error, 0, len(required))
	for _, result := range required {
		errs = append(errs, fmt.Errorf("%s: %s", result.Name, result.Detail))
	}
	return services.Wrap(services.ErrConfiguration, "preflight", "check environment",
		fmt.Sprintf("%d check(s) failed", len(required)), errors.Join(errs...))
}

func firstField(value string) string {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
