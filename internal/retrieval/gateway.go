package retrieval

import "context"

// StepRetrievePolicy names the pipeline step for error attribution.
const StepRetrievePolicy = "retrieve_policy"

// Passage is one retrieved policy or declaration fragment.
type Passage struct {
	DocumentID string  `json:"document_id"`
	Text       string  `json:"text"`
	Score      float64 `json:"score,omitempty"`
}

// Gateway is the interface to the external policy retrieval collaborator.
// Implementations must be safe for concurrent use from multiple runs.
type Gateway interface {
	// SemanticSearch returns passages relevant to a natural-language query
	SemanticSearch(ctx context.Context, query string) ([]Passage, error)

	// LookupMetadata returns passages whose metadata key matches value
	// exactly; used to fetch the declarations page by policy number.
	LookupMetadata(ctx context.Context, key, value string) ([]Passage, error)
}
