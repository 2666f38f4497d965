package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonschema"

	"github.com/claimsight/claimsight/internal/errs"
	"github.com/claimsight/claimsight/internal/llm"
	"github.com/claimsight/claimsight/internal/model"
)

// StepSynthesize names the pipeline step for error attribution.
const StepSynthesize = "synthesize"

const synthesisSystemPrompt = `You are an auto insurance claims adjuster. You read policy text and produce a coverage recommendation for a claim. Cite the policy section you relied on. Respond with JSON only.`

// recommendationSchema is the contract a reasoner response must satisfy
// before it becomes a Recommendation.
const recommendationSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "Recommendation",
  "type": "object",
  "required": ["policy_section", "recommendation_summary"],
  "properties": {
    "policy_section": {"type": "string", "minLength": 1},
    "recommendation_summary": {"type": "string", "minLength": 1},
    "deductible": {"type": ["number", "null"], "minimum": 0},
    "settlement_amount": {"type": ["number", "null"], "minimum": 0}
  }
}`

// Synthesis carries the parsed recommendation and generation metadata.
type Synthesis struct {
	Recommendation model.Recommendation
	Model          string
	TokensUsed     int
}

// Synthesizer produces a coverage recommendation from claim and policy text.
type Synthesizer struct {
	reasoner llm.Reasoner
	schema   *jsonschema.Schema
}

// NewSynthesizer creates a synthesizer with the recommendation contract compiled
func NewSynthesizer(reasoner llm.Reasoner) (*Synthesizer, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	schema, err := compiler.Compile([]byte(recommendationSchema))
	if err != nil {
		return nil, fmt.Errorf("compile recommendation schema: %w", err)
	}
	return &Synthesizer{reasoner: reasoner, schema: schema}, nil
}

// BuildSynthesisPrompt renders the recommendation prompt from the claim and
// the retrieved policy text.
func BuildSynthesisPrompt(claim model.ClaimRecord, policyText string) string {
	var b strings.Builder

	b.WriteString("Evaluate this auto claim against the policy text below.\n\n")
	b.WriteString("CLAIM:\n")
	fmt.Fprintf(&b, "- Claim ID: %s\n", claim.ClaimID)
	fmt.Fprintf(&b, "- Policy ID: %s\n", claim.PolicyID)
	fmt.Fprintf(&b, "- Claimant: %s\n", claim.ClaimantName)
	fmt.Fprintf(&b, "- Date of loss: %s\n", claim.DateOfLoss)
	fmt.Fprintf(&b, "- Loss description: %s\n", claim.LossDescription)
	fmt.Fprintf(&b, "- Estimated repair cost: %.2f\n", claim.EstimatedRepairCost)
	if claim.VehicleDescription != "" {
		fmt.Fprintf(&b, "- Vehicle: %s\n", claim.VehicleDescription)
	}

	b.WriteString("\nPOLICY TEXT:\n")
	b.WriteString(policyText)

	b.WriteString("\n\nRULES:\n")
	b.WriteString("- Base the recommendation only on the policy text above\n")
	b.WriteString("- Name the policy section the recommendation relies on\n")
	b.WriteString("- State whether the loss is covered and why\n")
	b.WriteString("- Use null for deductible or settlement_amount when the policy text does not support a figure\n")

	b.WriteString("\nRespond with a JSON object:\n")
	b.WriteString(`{"policy_section": "...", "recommendation_summary": "...", "deductible": 500, "settlement_amount": 1000}`)
	b.WriteString("\n")

	return b.String()
}

// Synthesize asks the reasoner for a recommendation and validates the
// response against the recommendation contract.
func (s *Synthesizer) Synthesize(ctx context.Context, claim model.ClaimRecord, policyText string) (*Synthesis, error) {
	resp, err := s.reasoner.Infer(ctx, llm.InferRequest{
		System:    synthesisSystemPrompt,
		Prompt:    BuildSynthesisPrompt(claim, policyText),
		ForceJSON: true,
	})
	if err != nil {
		return nil, errs.Classify(err, errs.KindSynthesisFailed, StepSynthesize)
	}

	raw := []byte(extractJSON(resp.Text))
	if !json.Valid(raw) {
		return nil, errs.Wrap(fmt.Errorf("response is not valid JSON: %.120s", resp.Text),
			errs.KindSynthesisFailed, StepSynthesize)
	}

	result := s.schema.ValidateJSON(raw)
	if !result.IsValid() {
		return nil, errs.Wrap(fmt.Errorf("recommendation contract violation: %v", result.Errors),
			errs.KindSynthesisFailed, StepSynthesize)
	}

	var rec model.Recommendation
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, errs.Wrap(fmt.Errorf("decode recommendation: %w", err),
			errs.KindSynthesisFailed, StepSynthesize)
	}

	return &Synthesis{
		Recommendation: rec,
		Model:          resp.Model,
		TokensUsed:     resp.TokensUsed,
	}, nil
}
