package claims

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/claimsight/claimsight/internal/errs"
)

const validClaim = `{
  "claim_id": "CLAIM-0001",
  "policy_id": "POLICY-ABC123",
  "claimant_name": "Jordan Avery",
  "date_of_loss": "2025-11-02",
  "loss_description": "Rear-ended at a stoplight, bumper and trunk damage",
  "estimated_repair_cost": 1500,
  "vehicle_description": "2021 Honda Accord"
}`

func TestLoader_Parse_Valid(t *testing.T) {
	loader, err := NewLoader()
	if err != nil {
		t.Fatalf("Failed to create loader: %v", err)
	}

	record, err := loader.Parse([]byte(validClaim))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if record.ClaimID != "CLAIM-0001" {
		t.Errorf("Expected claim ID CLAIM-0001, got %s", record.ClaimID)
	}
	if record.PolicyID != "POLICY-ABC123" {
		t.Errorf("Expected policy ID POLICY-ABC123, got %s", record.PolicyID)
	}
	if record.EstimatedRepairCost != 1500 {
		t.Errorf("Expected repair cost 1500, got %v", record.EstimatedRepairCost)
	}
	if record.VehicleDescription != "2021 Honda Accord" {
		t.Errorf("Unexpected vehicle description: %s", record.VehicleDescription)
	}
}

func TestLoader_Parse_InvalidJSON(t *testing.T) {
	loader, err := NewLoader()
	if err != nil {
		t.Fatalf("Failed to create loader: %v", err)
	}

	_, err = loader.Parse([]byte(`{not json`))
	if err == nil {
		t.Fatal("Expected error for invalid JSON, got nil")
	}
	if !errs.IsKind(err, errs.KindMalformedClaim) {
		t.Errorf("Expected kind %s, got %s", errs.KindMalformedClaim, errs.KindOf(err))
	}
	if errs.StepOf(err) != StepLoadClaim {
		t.Errorf("Expected step %s, got %s", StepLoadClaim, errs.StepOf(err))
	}
}

func TestLoader_Parse_ContractViolations(t *testing.T) {
	loader, err := NewLoader()
	if err != nil {
		t.Fatalf("Failed to create loader: %v", err)
	}

	tests := []struct {
		name string
		body string
	}{
		{"missing claim_id", `{
			"policy_id": "POLICY-ABC123",
			"claimant_name": "Jordan Avery",
			"date_of_loss": "2025-11-02",
			"loss_description": "Rear-ended",
			"estimated_repair_cost": 1500
		}`},
		{"empty policy_id", `{
			"claim_id": "CLAIM-0001",
			"policy_id": "",
			"claimant_name": "Jordan Avery",
			"date_of_loss": "2025-11-02",
			"loss_description": "Rear-ended",
			"estimated_repair_cost": 1500
		}`},
		{"bad date format", `{
			"claim_id": "CLAIM-0001",
			"policy_id": "POLICY-ABC123",
			"claimant_name": "Jordan Avery",
			"date_of_loss": "11/02/2025",
			"loss_description": "Rear-ended",
			"estimated_repair_cost": 1500
		}`},
		{"negative repair cost", `{
			"claim_id": "CLAIM-0001",
			"policy_id": "POLICY-ABC123",
			"claimant_name": "Jordan Avery",
			"date_of_loss": "2025-11-02",
			"loss_description": "Rear-ended",
			"estimated_repair_cost": -1
		}`},
		{"repair cost as string", `{
			"claim_id": "CLAIM-0001",
			"policy_id": "POLICY-ABC123",
			"claimant_name": "Jordan Avery",
			"date_of_loss": "2025-11-02",
			"loss_description": "Rear-ended",
			"estimated_repair_cost": "1500"
		}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loader.Parse([]byte(tt.body))
			if err == nil {
				t.Fatal("Expected contract violation, got nil")
			}
			if !errs.IsKind(err, errs.KindMalformedClaim) {
				t.Errorf("Expected kind %s, got %s", errs.KindMalformedClaim, errs.KindOf(err))
			}
		})
	}
}

func TestLoader_Load_FromFile(t *testing.T) {
	loader, err := NewLoader()
	if err != nil {
		t.Fatalf("Failed to create loader: %v", err)
	}

	path := filepath.Join(t.TempDir(), "claim.json")
	if err := os.WriteFile(path, []byte(validClaim), 0644); err != nil {
		t.Fatalf("Failed to write claim file: %v", err)
	}

	record, err := loader.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if record.ClaimID != "CLAIM-0001" {
		t.Errorf("Expected claim ID CLAIM-0001, got %s", record.ClaimID)
	}
}

func TestLoader_Load_ExampleClaims(t *testing.T) {
	loader, err := NewLoader()
	if err != nil {
		t.Fatalf("Failed to create loader: %v", err)
	}

	paths, err := filepath.Glob(filepath.Join("testdata", "*.json"))
	if err != nil {
		t.Fatalf("Failed to list fixtures: %v", err)
	}
	if len(paths) == 0 {
		t.Fatal("Expected example claims in testdata")
	}

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			if _, err := loader.Load(path); err != nil {
				t.Errorf("Load failed: %v", err)
			}
		})
	}
}

func TestLoader_RoundTrip(t *testing.T) {
	loader, err := NewLoader()
	if err != nil {
		t.Fatalf("Failed to create loader: %v", err)
	}

	record, err := loader.Parse([]byte(validClaim))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	data, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	reloaded, err := loader.Parse(data)
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if *reloaded != *record {
		t.Errorf("Expected field-for-field equality, got %+v vs %+v", reloaded, record)
	}
}

func TestLoader_Load_MissingFile(t *testing.T) {
	loader, err := NewLoader()
	if err != nil {
		t.Fatalf("Failed to create loader: %v", err)
	}

	_, err = loader.Load(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("Expected error for missing file, got nil")
	}
	if !errs.IsKind(err, errs.KindSourceUnavailable) {
		t.Errorf("Expected kind %s, got %s", errs.KindSourceUnavailable, errs.KindOf(err))
	}
	if !strings.Contains(err.Error(), "nope.json") {
		t.Errorf("Expected path in error, got: %v", err)
	}
}
