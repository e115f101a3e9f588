package preflight

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"folio/internal/services"
	"folio/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckBinary(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	if err := os.WriteFile(present, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	if result := CheckBinary("present", present); !result.Passed {
		t.Fatalf("expected stub binary to resolve, got %q", result.Detail)
	}
	if result := CheckBinary("missing", "clearly-not-present-binary"); result.Passed {
		t.Fatal("expected missing binary to fail")
	}
	if result := CheckBinary("blank", "  "); result.Passed || result.Detail != "command not configured" {
		t.Fatalf("unexpected blank result %+v", result)
	}
}

func TestRunAllPassesForPreparedConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	results := RunAll(context.Background(), cfg)
	if len(results) != 4 {
		t.Fatalf("expected 4 directory checks with sound disabled, got %d", len(results))
	}
	if err := Err(results); err != nil {
		t.Fatalf("expected no preflight error, got %v", err)
	}
}

func TestRunAllReportsMissingDirectories(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithOutputDir("absent"))
	err := Err(RunAll(context.Background(), cfg))
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestOptionalFailuresDoNotFail(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	cfg.Notifications.SoundEnabled = true
	cfg.Notifications.SoundPlayer = "clearly-not-present-binary --quiet"

	results := RunAll(context.Background(), cfg)
	required, optional := Failures(results)
	if len(required) != 0 || len(optional) != 1 {
		t.Fatalf("expected one optional failure, got required=%v optional=%v", required, optional)
	}
	if err := Err(results); err != nil {
		t.Fatalf("optional failure should not error: %v", err)
	}
}
