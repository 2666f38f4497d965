package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/claimsight/claimsight/internal/workflow"
)

// Decider runs the decision workflow for one claim file.
type Decider interface {
	Run(ctx context.Context, path string) (*workflow.Result, error)
}

// DecideJob processes one claim file through the workflow
type DecideJob struct {
	Path    string
	Decider Decider
}

// Execute executes the decide job
func (j *DecideJob) Execute(ctx context.Context) Result {
	result, err := j.Decider.Run(ctx, j.Path)
	return &DecideResult{
		Path:  j.Path,
		Run:   result,
		Error: err,
	}
}

// DecideResult represents the outcome for one claim file
type DecideResult struct {
	Path  string
	Run   *workflow.Result
	Error error
}

// GetError returns the error from the decide result
func (r *DecideResult) GetError() error {
	return r.Error
}

// BatchProcessor decides multiple claims concurrently
type BatchProcessor struct {
	decider     Decider
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(decider Decider, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		decider:     decider,
		concurrency: concurrency,
	}
}

// ProcessPaths decides the given claim files concurrently. Results come back
// sorted by path so batch output is stable regardless of completion order.
func (b *BatchProcessor) ProcessPaths(ctx context.Context, paths []string) []*DecideResult {
	if len(paths) == 0 {
		return []*DecideResult{}
	}

	// Create worker pool
	pool := NewPool(b.concurrency)
	pool.Start()

	// Submit jobs
	for _, path := range paths {
		pool.Submit(&DecideJob{
			Path:    path,
			Decider: b.decider,
		})
	}

	// Wait for all jobs to complete
	results := pool.Wait()

	decideResults := make([]*DecideResult, len(results))
	for i, result := range results {
		decideResults[i] = result.(*DecideResult)
	}

	sort.Slice(decideResults, func(i, j int) bool {
		return decideResults[i].Path < decideResults[j].Path
	})

	return decideResults
}

// ProcessDir decides every .json claim file in a directory.
func (b *BatchProcessor) ProcessDir(ctx context.Context, dir string) ([]*DecideResult, error) {
	paths, err := ListClaimFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}

	return b.ProcessPaths(ctx, paths), nil
}

// ProcessList reads claim file paths from a manifest and decides them.
func (b *BatchProcessor) ProcessList(ctx context.Context, listPath string) ([]*DecideResult, error) {
	paths, err := ReadPathsFromFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("read claim list: %w", err)
	}

	return b.ProcessPaths(ctx, paths), nil
}

// ListClaimFiles returns the .json files in dir, sorted by name.
func ListClaimFiles(dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", dir, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// ReadPathsFromFile reads claim file paths from a manifest (one per line)
func ReadPathsFromFile(listPath string) ([]string, error) {
	file, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Deduplicate paths
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
