package services_test

import (
	"context"
	"testing"

	"clamsutils/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-123")
	ctx = services.WithCommand(ctx, "cleanup")
	ctx = services.WithInputPath(ctx, "/tmp/a.txt")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-123" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if name, ok := services.CommandFromContext(ctx); !ok || name != "cleanup" {
		t.Fatalf("unexpected command: %v %v", name, ok)
	}
	if path, ok := services.InputPathFromContext(ctx); !ok || path != "/tmp/a.txt" {
		t.Fatalf("unexpected input path: %v %v", path, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithInputPath(ctx, "")
	if _, ok := services.InputPathFromContext(ctx); ok {
		t.Fatal("expected no input path value")
	}
	ctx = services.WithRunID(ctx, "")
	if _, ok := services.RunIDFromContext(ctx); ok {
		t.Fatal("expected no run id value")
	}
}
