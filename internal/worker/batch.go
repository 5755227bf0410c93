package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ppiankov/relcontext/internal/model"
)

// Processor turns one document file into a report.
type Processor interface {
	ProcessFile(ctx context.Context, path string) (*model.Report, error)
}

// DocumentJob processes one document file.
type DocumentJob struct {
	Seq       int
	Path      string
	Processor Processor
}

// Execute processes the job's document.
func (j *DocumentJob) Execute(ctx context.Context) *DocumentResult {
	report, err := j.Processor.ProcessFile(ctx, j.Path)
	return &DocumentResult{
		Seq:    j.Seq,
		Path:   j.Path,
		Report: report,
		Error:  err,
	}
}

// DocumentResult is the outcome of one DocumentJob.
type DocumentResult struct {
	Seq    int
	Path   string
	Report *model.Report
	Error  error
}

// BatchProcessor runs many documents concurrently. Each document is
// handled by one job from start to finish, so no sentence structure is
// shared between goroutines.
type BatchProcessor struct {
	processor   Processor
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(processor Processor, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		processor:   processor,
		concurrency: concurrency,
	}
}

// ProcessPaths processes documents concurrently and returns results in
// input order.
func (b *BatchProcessor) ProcessPaths(ctx context.Context, paths []string) []*DocumentResult {
	if len(paths) == 0 {
		return []*DocumentResult{}
	}

	pool := NewPool[*DocumentResult](ctx, b.concurrency)
	pool.Start()

	go func() {
		for i, path := range paths {
			if !pool.Submit(&DocumentJob{Seq: i, Path: path, Processor: b.processor}) {
				break
			}
		}
		pool.CloseQueue()
	}()

	results := make([]*DocumentResult, 0, len(paths))
	for r := range pool.Results() {
		results = append(results, r)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Seq < results[j].Seq })
	return results
}

// ProcessFile reads document paths from a list file and processes them.
func (b *BatchProcessor) ProcessFile(ctx context.Context, listPath string) ([]*DocumentResult, error) {
	paths, err := ReadPathsFromFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("read document list: %w", err)
	}

	return b.ProcessPaths(ctx, paths), nil
}

// ReadPathsFromFile reads document paths, one per line. Blank lines and
// lines starting with # are skipped, duplicates are dropped, and
// relative paths are resolved against the list file's directory.
func ReadPathsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	base := filepath.Dir(filePath)
	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !filepath.IsAbs(line) {
			line = filepath.Join(base, line)
		}
		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}
