package workflow

// State identifies a stage in the claim decision workflow. A run moves
// through the states in order and ends in Done, or jumps to Failed on the
// first error.
type State string

const (
	StateStart               State = "start"
	StateClaimLoaded         State = "claim_loaded"
	StateQueriesGenerated    State = "queries_generated"
	StatePolicyRetrieved     State = "policy_retrieved"
	StateRecommendationReady State = "recommendation_ready"
	StateDecisionFinal       State = "decision_final"
	StateDone                State = "done"
	StateFailed              State = "failed"
)
