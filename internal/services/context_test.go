package services_test

import (
	"context"
	"testing"

	"folio/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-1")
	ctx = services.WithSlug(ctx, "chapter-7")
	ctx = services.WithStage(ctx, "fetching")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-1" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if slug, ok := services.SlugFromContext(ctx); !ok || slug != "chapter-7" {
		t.Fatalf("unexpected slug: %v %v", slug, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "fetching" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestStageBlankPreservesContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	ctx = services.WithSlug(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
	if _, ok := services.SlugFromContext(ctx); ok {
		t.Fatal("expected no slug value")
	}
}
