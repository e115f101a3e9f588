package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"folio/internal/services"
	"folio/internal/testsupport"
)

type cliEnv struct {
	base       string
	configPath string
	outputDir  string
}

func setupCLIEnv(t *testing.T) cliEnv {
	t.Helper()
	base := t.TempDir()
	t.Setenv("HOME", base)
	t.Setenv("FOLIO_FEED_URL", "")
	t.Setenv("FOLIO_NTFY_TOPIC", "")
	t.Chdir(base)
	return cliEnv{
		base:       base,
		configPath: filepath.Join(base, "folio.toml"),
		outputDir:  filepath.Join(base, "content"),
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q\n%s", needle, haystack)
	}
}

func TestBareCommandRunsPipelineAndPrintsSummary(t *testing.T) {
	env := setupCLIEnv(t)
	site := testsupport.NewSite(t,
		testsupport.Chapter{Slug: "chapter-a", Pages: [][]byte{testsupport.PNG(t, 10, 20), testsupport.PNG(t, 20, 40)}},
		testsupport.Chapter{Slug: "chapter-b", Pages: [][]byte{testsupport.PNG(t, 10, 20), testsupport.PNG(t, 20, 40)}, FailPages: []int{1}},
	)

	out, err := runCLI(t, "--feed-url", site.URL(), "--output-dir", env.outputDir, "--concurrency", "2")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, completionBanner)
	requireContains(t, out, "chapter-b")
	requireContains(t, out, "degraded")
	if strings.Contains(out, "chapter-a") {
		t.Fatalf("clean chapter must not be listed\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(env.outputDir, "reversed_pdfs", "chapter-a-reversed.pdf")); err != nil {
		t.Fatalf("expected reversed document: %v", err)
	}
}

func TestRunCommandReportsNoIssues(t *testing.T) {
	env := setupCLIEnv(t)
	site := testsupport.NewSite(t,
		testsupport.Chapter{Slug: "chapter-a", Pages: [][]byte{testsupport.PNG(t, 10, 20)}},
	)

	out, err := runCLI(t, "run", "--feed-url", site.URL(), "--output-dir", env.outputDir)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "No chapters had issues.")
}

func TestFailOnErrorFlagReturnsError(t *testing.T) {
	env := setupCLIEnv(t)
	site := testsupport.NewSite(t,
		testsupport.Chapter{Slug: "chapter-a", Pages: [][]byte{testsupport.PNG(t, 10, 20)}, FailPages: []int{1}},
	)

	out, err := runCLI(t, "--feed-url", site.URL(), "--output-dir", env.outputDir, "--fail-on-error")
	if !errors.Is(err, services.ErrRunHadFailures) {
		t.Fatalf("expected ErrRunHadFailures, got %v", err)
	}
	requireContains(t, out, "chapter-a")
}

func TestUnreachableFeedPrintsNoSummary(t *testing.T) {
	env := setupCLIEnv(t)
	site := testsupport.NewSite(t)
	site.SetLandingDown(true)

	out, err := runCLI(t, "--feed-url", site.URL(), "--output-dir", env.outputDir)
	if !errors.Is(err, services.ErrUnreachableFeed) {
		t.Fatalf("expected ErrUnreachableFeed, got %v", err)
	}
	if strings.Contains(out, completionBanner) {
		t.Fatalf("summary must not be printed\n%s", out)
	}
}

func TestInvalidFeedOverrideIsRejected(t *testing.T) {
	setupCLIEnv(t)
	if _, err := runCLI(t, "--feed-url", "ftp://example.com/"); err == nil {
		t.Fatal("expected invalid feed url to fail")
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLIEnv(t)

	out, err := runCLI(t, "config", "init", "--path", env.configPath)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := runCLI(t, "config", "init", "--path", env.configPath); err == nil {
		t.Fatal("expected second init without --overwrite to fail")
	}

	out, err = runCLI(t, "--config", env.configPath, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Config path: "+env.configPath)
	requireContains(t, out, "Configuration valid")
}
