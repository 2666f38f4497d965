package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/claimsight/claimsight/internal/errs"
	"github.com/claimsight/claimsight/internal/llm"
	"github.com/claimsight/claimsight/internal/model"
)

// StepGenerateQueries names the pipeline step for error attribution.
const StepGenerateQueries = "generate_queries"

const querySystemPrompt = `You are an insurance policy analyst. You turn auto claims into precise search queries against policy documents. Respond with JSON only.`

// QueryGenerator turns a claim into policy search queries.
type QueryGenerator struct {
	reasoner llm.Reasoner
}

// NewQueryGenerator creates a new query generator
func NewQueryGenerator(reasoner llm.Reasoner) *QueryGenerator {
	return &QueryGenerator{reasoner: reasoner}
}

// BuildQueryPrompt renders the query generation prompt for a claim.
func BuildQueryPrompt(claim model.ClaimRecord) string {
	var b strings.Builder

	b.WriteString("Generate 3 to 5 search queries for the policy that covers this auto claim.\n\n")
	b.WriteString("CLAIM:\n")
	fmt.Fprintf(&b, "- Claim ID: %s\n", claim.ClaimID)
	fmt.Fprintf(&b, "- Policy ID: %s\n", claim.PolicyID)
	fmt.Fprintf(&b, "- Date of loss: %s\n", claim.DateOfLoss)
	fmt.Fprintf(&b, "- Loss description: %s\n", claim.LossDescription)
	fmt.Fprintf(&b, "- Estimated repair cost: %.2f\n", claim.EstimatedRepairCost)
	if claim.VehicleDescription != "" {
		fmt.Fprintf(&b, "- Vehicle: %s\n", claim.VehicleDescription)
	}

	b.WriteString("\nThe queries must cover:\n")
	b.WriteString("1. Coverage conditions for this type of loss\n")
	b.WriteString("2. How the deductible applies\n")
	b.WriteString("3. Endorsements or exclusions that could affect the claim\n")
	b.WriteString("\nRespond with a JSON object: {\"queries\": [\"...\"]}\n")

	return b.String()
}

// Generate asks the reasoner for policy search queries. An empty result is
// an error: the workflow cannot retrieve policy text without queries.
func (g *QueryGenerator) Generate(ctx context.Context, claim model.ClaimRecord) (model.QuerySet, error) {
	resp, err := g.reasoner.Infer(ctx, llm.InferRequest{
		System:    querySystemPrompt,
		Prompt:    BuildQueryPrompt(claim),
		ForceJSON: true,
	})
	if err != nil {
		return model.QuerySet{}, errs.Classify(err, errs.KindGenerationFailed, StepGenerateQueries)
	}

	queries, err := parseQueries(resp.Text)
	if err != nil {
		return model.QuerySet{}, errs.Wrap(err, errs.KindGenerationFailed, StepGenerateQueries)
	}
	if len(queries) == 0 {
		return model.QuerySet{}, errs.Wrap(fmt.Errorf("reasoner returned no usable queries"),
			errs.KindGenerationFailed, StepGenerateQueries)
	}

	return model.QuerySet{Queries: queries}, nil
}

// parseQueries accepts either {"queries": [...]} or a bare JSON array.
func parseQueries(text string) ([]string, error) {
	raw := extractJSON(text)

	var wrapped struct {
		Queries []string `json:"queries"`
	}
	if err := json.Unmarshal([]byte(raw), &wrapped); err == nil && wrapped.Queries != nil {
		return cleanQueries(wrapped.Queries), nil
	}

	var bare []string
	if err := json.Unmarshal([]byte(raw), &bare); err == nil {
		return cleanQueries(bare), nil
	}

	return nil, fmt.Errorf("response is not a query list: %.120s", text)
}

// cleanQueries trims whitespace and drops empty entries.
func cleanQueries(in []string) []string {
	out := make([]string, 0, len(in))
	for _, q := range in {
		q = strings.TrimSpace(q)
		if q != "" {
			out = append(out, q)
		}
	}
	return out
}

// extractJSON strips the markdown code fences some models wrap around JSON.
func extractJSON(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	return s
}
