package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/claimsight/claimsight/internal/model"
	"github.com/claimsight/claimsight/internal/workflow"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	led, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Failed to open ledger: %v", err)
	}
	t.Cleanup(func() { _ = led.Close() })
	return led
}

func makeResult(runID, claimID string, covered bool, payout float64) *workflow.Result {
	return &workflow.Result{
		RunID: runID,
		Claim: model.ClaimRecord{
			ClaimID:             claimID,
			PolicyID:            "POLICY-ABC123",
			ClaimantName:        "Jordan Avery",
			DateOfLoss:          "2025-11-02",
			LossDescription:     "Rear-ended at a stoplight",
			EstimatedRepairCost: 1500,
		},
		Decision: model.Decision{
			ClaimID:           claimID,
			Covered:           covered,
			Deductible:        500,
			RecommendedPayout: payout,
			Notes:             "The loss is covered.",
		},
		Model: "gpt-4o-mini",
	}
}

func TestLedger_RecordAndRecent(t *testing.T) {
	led := openTestLedger(t)
	ctx := context.Background()

	if err := led.Record(ctx, makeResult("run-1", "CLAIM-0001", true, 1000)); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	entries, err := led.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}

	e := entries[0]
	if e.RunID != "run-1" {
		t.Errorf("Expected run ID run-1, got %s", e.RunID)
	}
	if e.ClaimID != "CLAIM-0001" {
		t.Errorf("Expected claim ID CLAIM-0001, got %s", e.ClaimID)
	}
	if !e.Covered {
		t.Error("Expected covered to be true")
	}
	if e.Deductible != 500 {
		t.Errorf("Expected deductible 500, got %v", e.Deductible)
	}
	if e.Payout != 1000 {
		t.Errorf("Expected payout 1000, got %v", e.Payout)
	}
	if e.Notes != "The loss is covered." {
		t.Errorf("Unexpected notes: %s", e.Notes)
	}
	if e.Model != "gpt-4o-mini" {
		t.Errorf("Expected model gpt-4o-mini, got %s", e.Model)
	}
	if len(e.Fingerprint) != 64 {
		t.Errorf("Expected 64-char fingerprint, got %d chars", len(e.Fingerprint))
	}
	if e.CreatedAt.IsZero() {
		t.Error("Expected a created timestamp")
	}
}

func TestLedger_Recent_NewestFirst(t *testing.T) {
	led := openTestLedger(t)
	ctx := context.Background()

	for i, runID := range []string{"run-1", "run-2", "run-3"} {
		if err := led.Record(ctx, makeResult(runID, "CLAIM-0001", true, float64(1000+i))); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
		time.Sleep(5 * time.Millisecond) // distinct created_at ordering
	}

	entries, err := led.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected limit of 2 entries, got %d", len(entries))
	}
	if entries[0].RunID != "run-3" {
		t.Errorf("Expected newest entry first, got %s", entries[0].RunID)
	}
	if entries[1].RunID != "run-2" {
		t.Errorf("Expected run-2 second, got %s", entries[1].RunID)
	}
}

func TestLedger_ByClaim(t *testing.T) {
	led := openTestLedger(t)
	ctx := context.Background()

	if err := led.Record(ctx, makeResult("run-1", "CLAIM-0001", true, 1000)); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := led.Record(ctx, makeResult("run-2", "CLAIM-0002", false, 0)); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	entries, err := led.ByClaim(ctx, "CLAIM-0002", 10)
	if err != nil {
		t.Fatalf("ByClaim failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	if entries[0].ClaimID != "CLAIM-0002" {
		t.Errorf("Expected CLAIM-0002, got %s", entries[0].ClaimID)
	}
	if entries[0].Covered {
		t.Error("Expected covered to be false")
	}
}

func TestLedger_Record_EmptyModel(t *testing.T) {
	led := openTestLedger(t)
	ctx := context.Background()

	result := makeResult("run-1", "CLAIM-0001", true, 1000)
	result.Model = ""
	if err := led.Record(ctx, result); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	entries, err := led.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if entries[0].Model != "" {
		t.Errorf("Expected empty model, got %q", entries[0].Model)
	}
}

func TestLedger_Record_DuplicateRunID(t *testing.T) {
	led := openTestLedger(t)
	ctx := context.Background()

	if err := led.Record(ctx, makeResult("run-1", "CLAIM-0001", true, 1000)); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := led.Record(ctx, makeResult("run-1", "CLAIM-0001", true, 1000)); err == nil {
		t.Fatal("Expected error for duplicate run ID, got nil")
	}
}

func TestLedger_Recent_Empty(t *testing.T) {
	led := openTestLedger(t)

	entries, err := led.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no entries, got %d", len(entries))
	}
}

func TestFingerprint_Stable(t *testing.T) {
	claim := model.ClaimRecord{
		ClaimID:             "CLAIM-0001",
		PolicyID:            "POLICY-ABC123",
		ClaimantName:        "Jordan Avery",
		DateOfLoss:          "2025-11-02",
		LossDescription:     "Rear-ended at a stoplight",
		EstimatedRepairCost: 1500,
	}

	first, err := Fingerprint(claim)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	second, err := Fingerprint(claim)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}

	if first != second {
		t.Error("Expected identical claims to share a fingerprint")
	}
	if len(first) != 64 {
		t.Errorf("Expected 64-char hex digest, got %d chars", len(first))
	}

	claim.EstimatedRepairCost = 2200
	changed, err := Fingerprint(claim)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	if changed == first {
		t.Error("Expected a changed claim to change the fingerprint")
	}
}
