package model

import (
	"fmt"
	"time"
)

// RunContext is the per-execution scratch state shared along one run.
// It is exclusively owned by that run and never crosses runs, so no
// locking is needed. Keys are written at most once.
type RunContext struct {
	RunID     string
	StartedAt time.Time
	values    map[string]any
}

// Context value keys written by the workflow steps.
const (
	KeyClaimInfo      = "claim_info"
	KeyQueries        = "queries"
	KeyPolicyText     = "policy_text"
	KeyRecommendation = "recommendation"
)

// NewRunContext creates the scratch state for a single run.
func NewRunContext(runID string) *RunContext {
	return &RunContext{
		RunID:     runID,
		StartedAt: time.Now().UTC(),
		values:    make(map[string]any),
	}
}

// Set stores a step output under key. Writing a key twice is a
// programming error in the workflow and is rejected.
func (rc *RunContext) Set(key string, value any) error {
	if _, exists := rc.values[key]; exists {
		return fmt.Errorf("run context key %q already set", key)
	}
	rc.values[key] = value
	return nil
}

// Get returns the value written under key, if any.
func (rc *RunContext) Get(key string) (any, bool) {
	v, ok := rc.values[key]
	return v, ok
}
