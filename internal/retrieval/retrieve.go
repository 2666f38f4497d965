package retrieval

import (
	"context"
	"fmt"
	"sync"

	"github.com/claimsight/claimsight/internal/errs"
)

// declarationField is the payload field that carries the policy identifier.
const declarationField = "policy_id"

// Fetcher fans out retrieval calls for a claim and merges the results.
type Fetcher struct {
	gateway    Gateway
	maxWorkers int
}

// NewFetcher creates a new fetcher
func NewFetcher(gateway Gateway, maxWorkers int) *Fetcher {
	if maxWorkers <= 0 {
		maxWorkers = 4
	}

	return &Fetcher{
		gateway:    gateway,
		maxWorkers: maxWorkers,
	}
}

// Fetch runs one semantic search per query plus a declaration lookup for the
// policy, all concurrently, and merges the passages into a single text block.
// Queries keep their order in the merged output; the declaration comes last.
func (f *Fetcher) Fetch(ctx context.Context, queries []string, policyID string) (string, error) {
	tasks := make([]func(context.Context) ([]Passage, error), 0, len(queries)+1)
	for _, query := range queries {
		q := query
		tasks = append(tasks, func(ctx context.Context) ([]Passage, error) {
			return f.gateway.SemanticSearch(ctx, q)
		})
	}
	tasks = append(tasks, func(ctx context.Context) ([]Passage, error) {
		return f.gateway.LookupMetadata(ctx, declarationField, policyID)
	})

	groups := make([][]Passage, len(tasks))
	failures := make([]error, len(tasks))

	var wg sync.WaitGroup

	// Create semaphore to limit concurrent requests
	semaphore := make(chan struct{}, f.maxWorkers)

	for i, task := range tasks {
		wg.Add(1)
		go func(idx int, call func(context.Context) ([]Passage, error)) {
			defer wg.Done()

			// Acquire semaphore
			select {
			case <-ctx.Done():
				failures[idx] = ctx.Err()
				return
			case semaphore <- struct{}{}:
			}

			// Release semaphore when done
			defer func() { <-semaphore }()

			groups[idx], failures[idx] = call(ctx)
		}(i, task)
	}

	// Wait for all calls to complete
	wg.Wait()

	// Surface the first failure in slot order so attribution is deterministic
	for _, err := range failures {
		if err != nil {
			return "", errs.Classify(err, errs.KindSourceUnavailable, StepRetrievePolicy)
		}
	}

	declaration := groups[len(groups)-1]
	if len(declaration) == 0 {
		return "", errs.Wrap(fmt.Errorf("no declaration found for policy %s", policyID),
			errs.KindDeclarationNotFound, StepRetrievePolicy)
	}

	return MergePassages(groups...), nil
}
