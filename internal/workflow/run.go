package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/claimsight/claimsight/internal/claims"
	"github.com/claimsight/claimsight/internal/errs"
	"github.com/claimsight/claimsight/internal/model"
	"github.com/claimsight/claimsight/internal/retrieval"
)

// Recorder persists finished runs. A recorder failure must not fail the run.
type Recorder interface {
	Record(ctx context.Context, result *Result) error
}

// Result captures one completed run.
type Result struct {
	RunID    string
	Claim    model.ClaimRecord
	Queries  model.QuerySet
	Decision model.Decision
	Model    string // reasoner model that produced the recommendation
	Context  *model.RunContext
	Elapsed  time.Duration
}

// Runner executes the claim decision workflow: load the claim, generate
// queries, retrieve policy text, synthesize a recommendation, finalize the
// decision. The workflow is strictly linear and stops at the first error.
type Runner struct {
	loader   *claims.Loader
	queries  *QueryGenerator
	fetcher  *retrieval.Fetcher
	synth    *Synthesizer
	recorder Recorder
	sink     Sink
}

// NewRunner wires the workflow stages. The recorder may be nil; a nil sink
// defaults to NopSink.
func NewRunner(loader *claims.Loader, queries *QueryGenerator, fetcher *retrieval.Fetcher, synth *Synthesizer, recorder Recorder, sink Sink) *Runner {
	if sink == nil {
		sink = NopSink{}
	}

	return &Runner{
		loader:   loader,
		queries:  queries,
		fetcher:  fetcher,
		synth:    synth,
		recorder: recorder,
		sink:     sink,
	}
}

// Run executes the workflow for one claim file and returns the decision.
// On failure no decision is produced; the returned error carries the
// failing step and its kind.
func (r *Runner) Run(ctx context.Context, path string) (*Result, error) {
	runID := uuid.NewString()
	rc := model.NewRunContext(runID)

	r.emit(rc, StateStart, fmt.Sprintf("claim source %s", path))

	// 1. Load and validate the claim
	claim, err := r.loader.Load(path)
	if err != nil {
		return nil, r.fail(rc, err)
	}
	if err := rc.Set(model.KeyClaimInfo, *claim); err != nil {
		return nil, r.fail(rc, errs.Wrap(err, errs.KindInternal, claims.StepLoadClaim))
	}
	r.emit(rc, StateClaimLoaded, fmt.Sprintf("claim %s against policy %s", claim.ClaimID, claim.PolicyID))

	// 2. Generate policy queries
	queries, err := r.queries.Generate(ctx, *claim)
	if err != nil {
		return nil, r.fail(rc, err)
	}
	if err := rc.Set(model.KeyQueries, queries); err != nil {
		return nil, r.fail(rc, errs.Wrap(err, errs.KindInternal, StepGenerateQueries))
	}
	r.emit(rc, StateQueriesGenerated, fmt.Sprintf("%d policy queries", len(queries.Queries)))

	// 3. Retrieve policy text concurrently
	policyText, err := r.fetcher.Fetch(ctx, queries.Queries, claim.PolicyID)
	if err != nil {
		return nil, r.fail(rc, err)
	}
	if err := rc.Set(model.KeyPolicyText, policyText); err != nil {
		return nil, r.fail(rc, errs.Wrap(err, errs.KindInternal, retrieval.StepRetrievePolicy))
	}
	r.emit(rc, StatePolicyRetrieved, fmt.Sprintf("%d characters of policy text", len(policyText)))

	// 4. Synthesize the recommendation
	synthesis, err := r.synth.Synthesize(ctx, *claim, policyText)
	if err != nil {
		return nil, r.fail(rc, err)
	}
	if err := rc.Set(model.KeyRecommendation, synthesis.Recommendation); err != nil {
		return nil, r.fail(rc, errs.Wrap(err, errs.KindInternal, StepSynthesize))
	}
	r.emit(rc, StateRecommendationReady, fmt.Sprintf("cites %s", synthesis.Recommendation.PolicySection))

	// 5. Finalize the decision
	decision := Finalize(claim.ClaimID, synthesis.Recommendation)
	r.emit(rc, StateDecisionFinal, fmt.Sprintf("covered=%t payout=%.2f", decision.Covered, decision.RecommendedPayout))

	result := &Result{
		RunID:    runID,
		Claim:    *claim,
		Queries:  queries,
		Decision: decision,
		Model:    synthesis.Model,
		Context:  rc,
		Elapsed:  time.Since(rc.StartedAt),
	}

	// 6. Record the run, best-effort
	if r.recorder != nil {
		if err := r.recorder.Record(ctx, result); err != nil {
			r.emit(rc, StateDecisionFinal, fmt.Sprintf("warning: history write failed: %v", err))
		}
	}

	r.emit(rc, StateDone, fmt.Sprintf("decision ready for claim %s", claim.ClaimID))

	return result, nil
}

// emit publishes one state transition.
func (r *Runner) emit(rc *model.RunContext, state State, message string) {
	r.sink.Emit(Event{
		RunID:   rc.RunID,
		State:   state,
		Message: message,
		Elapsed: time.Since(rc.StartedAt),
		At:      time.Now(),
	})
}

// fail publishes the Failed state and returns the error unchanged.
func (r *Runner) fail(rc *model.RunContext, err error) error {
	r.emit(rc, StateFailed, err.Error())
	return err
}
