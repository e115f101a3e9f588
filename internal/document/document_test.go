package document_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"folio/internal/document"
	"folio/internal/fetchpool"
	"folio/internal/services"
)

// downloadedTasks writes page-<n> files for every index and marks the ones in
// failed as Failed. Tasks are returned shuffled to prove order comes from
// PageIndex.
func downloadedTasks(t *testing.T, n int, failed ...int) []*fetchpool.ImageTask {
	t.Helper()
	dir := t.TempDir()
	tasks := make([]*fetchpool.ImageTask, 0, n)
	for i := 1; i <= n; i++ {
		task := fetchpool.NewTask(dir, "ch", i, fmt.Sprintf("https://cdn.example.com/%d.png", i))
		if slices.Contains(failed, i) {
			task.Outcome = fetchpool.Outcome{State: fetchpool.Failed, Reason: services.ErrDownload}
		} else {
			if err := os.MkdirAll(filepath.Dir(task.LocalPath), 0o755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(task.LocalPath, []byte(fmt.Sprintf("page-%d", i)), 0o644); err != nil {
				t.Fatal(err)
			}
			task.Outcome = fetchpool.Outcome{State: fetchpool.Downloaded}
		}
		tasks = append(tasks, task)
	}
	slices.Reverse(tasks)
	if len(tasks) > 2 {
		tasks[0], tasks[len(tasks)/2] = tasks[len(tasks)/2], tasks[0]
	}
	return tasks
}

func TestAssembleOrdersByPageIndexAndSkipsFailures(t *testing.T) {
	tests := []struct {
		n      int
		failed []int
	}{
		{n: 1},
		{n: 5},
		{n: 5, failed: []int{2}},
		{n: 6, failed: []int{1, 6}},
		{n: 8, failed: []int{3, 4, 5}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("n%d_k%d", tt.n, len(tt.failed)), func(t *testing.T) {
			tasks := downloadedTasks(t, tt.n, tt.failed...)
			assembler := document.NewAssembler(fakeCodec{}, nil)

			doc, err := assembler.Assemble(context.Background(), tasks)
			if err != nil {
				t.Fatalf("Assemble returned error: %v", err)
			}
			var want []string
			var wantIdx []int
			for i := 1; i <= tt.n; i++ {
				if !slices.Contains(tt.failed, i) {
					want = append(want, fmt.Sprintf("page-%d", i))
					wantIdx = append(wantIdx, i)
				}
			}
			if got := pagesOf(doc.Data); !slices.Equal(got, want) {
				t.Fatalf("pages = %v, want %v", got, want)
			}
			if !slices.Equal(doc.Pages, wantIdx) {
				t.Fatalf("page indices = %v, want %v", doc.Pages, wantIdx)
			}
		})
	}
}

func TestAssembleEmptyChapter(t *testing.T) {
	tasks := downloadedTasks(t, 3, 1, 2, 3)
	_, err := document.NewAssembler(fakeCodec{}, nil).Assemble(context.Background(), tasks)
	if !errors.Is(err, services.ErrEmptyChapter) {
		t.Fatalf("expected ErrEmptyChapter, got %v", err)
	}

	_, err = document.NewAssembler(fakeCodec{}, nil).Assemble(context.Background(), nil)
	if !errors.Is(err, services.ErrEmptyChapter) {
		t.Fatalf("expected ErrEmptyChapter for no tasks, got %v", err)
	}
}

func TestAssembleCodecFailureIsAssemblyError(t *testing.T) {
	tasks := downloadedTasks(t, 2)
	codec := fakeCodec{encodeErr: errors.New("unsupported image")}
	_, err := document.NewAssembler(codec, nil).Assemble(context.Background(), tasks)
	if !errors.Is(err, services.ErrAssembly) {
		t.Fatalf("expected ErrAssembly, got %v", err)
	}
}

func TestAssembleUnreadableImageIsAssemblyError(t *testing.T) {
	tasks := downloadedTasks(t, 2)
	if err := os.Remove(tasks[0].LocalPath); err != nil {
		t.Fatal(err)
	}
	_, err := document.NewAssembler(fakeCodec{}, nil).Assemble(context.Background(), tasks)
	if !errors.Is(err, services.ErrAssembly) {
		t.Fatalf("expected ErrAssembly, got %v", err)
	}
}

func TestReverseIsAnInvolution(t *testing.T) {
	codec := fakeCodec{}
	reverser := document.NewReverser(codec, nil)
	for n := 1; n <= 6; n++ {
		images := make([][]byte, 0, n)
		for i := 1; i <= n; i++ {
			images = append(images, []byte(fmt.Sprintf("p%d", i)))
		}
		doc, err := codec.Encode(context.Background(), images)
		if err != nil {
			t.Fatal(err)
		}
		once, err := reverser.Reverse(context.Background(), doc)
		if err != nil {
			t.Fatalf("n=%d: Reverse returned error: %v", n, err)
		}
		want := slices.Clone(pagesOf(doc))
		slices.Reverse(want)
		if got := pagesOf(once); !slices.Equal(got, want) {
			t.Fatalf("n=%d: reversed pages = %v, want %v", n, got, want)
		}
		twice, err := reverser.Reverse(context.Background(), once)
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Equal(pagesOf(twice), pagesOf(doc)) {
			t.Fatalf("n=%d: double reverse changed order: %v", n, pagesOf(twice))
		}
	}
}

func TestReverseRejectsMalformedAndEmpty(t *testing.T) {
	reverser := document.NewReverser(fakeCodec{}, nil)
	if _, err := reverser.Reverse(context.Background(), []byte("garbage")); !errors.Is(err, services.ErrReverse) {
		t.Fatalf("expected ErrReverse for malformed doc, got %v", err)
	}
	if _, err := reverser.Reverse(context.Background(), []byte(fakeHeader)); !errors.Is(err, services.ErrReverse) {
		t.Fatalf("expected ErrReverse for empty doc, got %v", err)
	}
}

func TestReverseOrder(t *testing.T) {
	if got := document.ReverseOrder(4); !slices.Equal(got, []int{4, 3, 2, 1}) {
		t.Fatalf("unexpected order %v", got)
	}
	if got := document.ReverseOrder(0); len(got) != 0 {
		t.Fatalf("expected empty order, got %v", got)
	}
}
