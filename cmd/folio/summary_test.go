package main

import (
	"errors"
	"strings"
	"testing"

	"folio/internal/report"
	"folio/internal/workflow"
)

func TestRenderSummaryWithoutFailures(t *testing.T) {
	out := renderSummary(workflow.Summary{Totals: report.Totals{Chapters: 2, Clean: 2}}, false)
	if !strings.HasPrefix(out, completionBanner+"\n") {
		t.Fatalf("expected banner first, got %q", out)
	}
	if !strings.Contains(out, "No chapters had issues.") {
		t.Fatalf("expected no-issues line, got %q", out)
	}
}

func TestRenderSummaryListsFailuresInOrder(t *testing.T) {
	summary := workflow.Summary{
		Totals: report.Totals{Chapters: 3, Clean: 1, Degraded: 1, Fatal: 1},
		Failed: []report.ChapterOutcome{
			{Slug: "chapter-b", Status: report.Degraded, Stage: "fetching", Pages: 4, Failed: 1, Err: errors.New("page 2 timed out")},
			{Slug: "chapter-c", Status: report.Fatal, Stage: "discovering", Err: errors.New("chapter page unreachable")},
		},
	}
	out := renderSummary(summary, false)
	b := strings.Index(out, "chapter-b")
	c := strings.Index(out, "chapter-c")
	if b < 0 || c < 0 || b > c {
		t.Fatalf("expected chapter-b before chapter-c\n%s", out)
	}
	for _, want := range []string{"degraded", "failed", "page 2 timed out", "3 chapters: 1 clean, 1 degraded, 1 failed"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in summary\n%s", want, out)
		}
	}
	if strings.Contains(out, ansiReset) {
		t.Fatal("expected no colour codes when colorize is false")
	}
}

func TestColorTextOnlyWhenEnabled(t *testing.T) {
	if got := colorText("x", ansiRed, false); got != "x" {
		t.Fatalf("unexpected %q", got)
	}
	if got := colorText("x", ansiRed, true); got != ansiRed+"x"+ansiReset {
		t.Fatalf("unexpected %q", got)
	}
	if shouldColorize(&strings.Builder{}) {
		t.Fatal("non-file writers are never terminals")
	}
}
