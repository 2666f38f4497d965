package claims

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kaptinlin/jsonschema"

	"github.com/claimsight/claimsight/internal/errs"
	"github.com/claimsight/claimsight/internal/model"
)

// StepLoadClaim names the pipeline step for error attribution.
const StepLoadClaim = "load_claim"

// recordSchema is the data contract every claim record must satisfy
// before it enters a workflow run.
const recordSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "ClaimRecord",
  "type": "object",
  "required": [
    "claim_id",
    "policy_id",
    "claimant_name",
    "date_of_loss",
    "loss_description",
    "estimated_repair_cost"
  ],
  "properties": {
    "claim_id": {"type": "string", "minLength": 1},
    "policy_id": {"type": "string", "minLength": 1},
    "claimant_name": {"type": "string", "minLength": 1},
    "date_of_loss": {"type": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2}$"},
    "loss_description": {"type": "string", "minLength": 1},
    "estimated_repair_cost": {"type": "number", "minimum": 0},
    "vehicle_description": {"type": "string"}
  }
}`

// Loader reads and validates claim records from JSON sources
type Loader struct {
	schema *jsonschema.Schema
}

// NewLoader creates a loader with the claim record contract compiled
func NewLoader() (*Loader, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	schema, err := compiler.Compile([]byte(recordSchema))
	if err != nil {
		return nil, fmt.Errorf("compile claim schema: %w", err)
	}
	return &Loader{schema: schema}, nil
}

// Load reads a claim record from path and validates it against the
// record contract. The read has no side effects.
func (l *Loader) Load(path string) (*model.ClaimRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(fmt.Errorf("read claim source %s: %w", path, err), errs.KindSourceUnavailable, StepLoadClaim)
	}
	return l.Parse(data)
}

// Parse validates raw claim bytes and decodes them into a ClaimRecord.
func (l *Loader) Parse(data []byte) (*model.ClaimRecord, error) {
	if !json.Valid(data) {
		return nil, errs.Wrap(fmt.Errorf("claim source is not valid JSON"), errs.KindMalformedClaim, StepLoadClaim)
	}

	result := l.schema.ValidateJSON(data)
	if !result.IsValid() {
		return nil, errs.Wrap(fmt.Errorf("claim contract violation: %v", result.Errors), errs.KindMalformedClaim, StepLoadClaim)
	}

	var record model.ClaimRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, errs.Wrap(fmt.Errorf("decode claim record: %w", err), errs.KindMalformedClaim, StepLoadClaim)
	}

	return &record, nil
}
