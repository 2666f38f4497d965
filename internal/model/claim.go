package model

// ClaimRecord represents one filed auto-insurance claim.
// Records are immutable after loading; each workflow run owns exactly one.
type ClaimRecord struct {
	ClaimID             string  `json:"claim_id"`
	PolicyID            string  `json:"policy_id"`
	ClaimantName        string  `json:"claimant_name"`
	DateOfLoss          string  `json:"date_of_loss"` // YYYY-MM-DD
	LossDescription     string  `json:"loss_description"`
	EstimatedRepairCost float64 `json:"estimated_repair_cost"`
	VehicleDescription  string  `json:"vehicle_description,omitempty"`
}

// QuerySet holds the ordered retrieval queries generated for one claim.
// Three to five queries are expected but the count is not enforced here.
type QuerySet struct {
	Queries []string `json:"queries"`
}

// Recommendation is the coverage judgment produced by the synthesizer.
// A nil Deductible or SettlementAmount signals "undetermined".
type Recommendation struct {
	PolicySection    string   `json:"policy_section"`
	Summary          string   `json:"recommendation_summary"`
	Deductible       *float64 `json:"deductible"`
	SettlementAmount *float64 `json:"settlement_amount"`
}

// Decision is the terminal artifact of a run.
type Decision struct {
	ClaimID           string  `json:"claim_id"`
	Covered           bool    `json:"covered"`
	Deductible        float64 `json:"deductible"`
	RecommendedPayout float64 `json:"recommended_payout"`
	Notes             string  `json:"notes"`
}
