package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ppiankov/relcontext/internal/model"
)

// mockProcessor implements Processor
type mockProcessor struct {
	failOn string
}

func (m *mockProcessor) ProcessFile(ctx context.Context, path string) (*model.Report, error) {
	time.Sleep(5 * time.Millisecond)
	if path == m.failOn {
		return nil, errors.New("process error")
	}
	return &model.Report{DocID: filepath.Base(path), Source: path}, nil
}

func writeList(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docs.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBatchProcessor_ProcessPaths(t *testing.T) {
	processor := NewBatchProcessor(&mockProcessor{}, 2)
	paths := []string{"/a.json", "/b.json", "/c.json", "/d.json"}

	results := processor.ProcessPaths(context.Background(), paths)

	if len(results) != len(paths) {
		t.Fatalf("expected %d results, got %d", len(paths), len(results))
	}
	for i, res := range results {
		if res.Error != nil {
			t.Errorf("unexpected error for %s: %v", res.Path, res.Error)
		}
		if res.Path != paths[i] {
			t.Errorf("expected result %d for %s, got %s", i, paths[i], res.Path)
		}
		if res.Report == nil || res.Report.Source != paths[i] {
			t.Errorf("expected report for %s", paths[i])
		}
	}
}

func TestBatchProcessor_ProcessPaths_Error(t *testing.T) {
	processor := NewBatchProcessor(&mockProcessor{failOn: "/bad.json"}, 2)

	results := processor.ProcessPaths(context.Background(), []string{"/good.json", "/bad.json"})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Error != nil {
		t.Errorf("expected success for first document, got %v", results[0].Error)
	}
	if results[1].Error == nil {
		t.Error("expected error, got nil")
	}
	if results[1].Report != nil {
		t.Error("expected nil report on error")
	}
}

func TestBatchProcessor_ProcessPaths_Empty(t *testing.T) {
	processor := NewBatchProcessor(&mockProcessor{}, 2)

	results := processor.ProcessPaths(context.Background(), []string{})
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	list := writeList(t, "a.json\n# comment\n\nsub/b.json\n/abs/c.json\n")
	processor := NewBatchProcessor(&mockProcessor{}, 2)

	results, err := processor.ProcessFile(context.Background(), list)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	want := filepath.Join(filepath.Dir(list), "sub", "b.json")
	if results[1].Path != want {
		t.Errorf("expected %s, got %s", want, results[1].Path)
	}
	if results[2].Path != "/abs/c.json" {
		t.Errorf("expected absolute path kept, got %s", results[2].Path)
	}
}

func TestBatchProcessor_ProcessFile_NonExistent(t *testing.T) {
	processor := NewBatchProcessor(&mockProcessor{}, 2)

	_, err := processor.ProcessFile(context.Background(), "no_such_file.txt")
	if err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestReadPathsFromFile_Deduplication(t *testing.T) {
	list := writeList(t, "doc.json\ndoc.json\n  doc.json  \n")

	paths, err := ReadPathsFromFile(list)
	if err != nil {
		t.Fatalf("ReadPathsFromFile failed: %v", err)
	}
	if len(paths) != 1 {
		t.Errorf("expected 1 path after deduplication, got %d", len(paths))
	}
}
