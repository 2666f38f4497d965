package ledger

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gowebpki/jcs"
	_ "modernc.org/sqlite"

	"github.com/claimsight/claimsight/internal/model"
	"github.com/claimsight/claimsight/internal/workflow"
)

const schema = `
CREATE TABLE IF NOT EXISTS decisions (
	run_id       TEXT PRIMARY KEY,
	claim_id     TEXT NOT NULL,
	fingerprint  TEXT NOT NULL,
	covered      INTEGER NOT NULL,
	deductible   REAL NOT NULL,
	payout       REAL NOT NULL,
	notes        TEXT NOT NULL,
	model        TEXT,
	created_at   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_decisions_claim ON decisions(claim_id);
`

// Ledger keeps one row per finished run in SQLite, so past decisions can be
// audited and replayed runs compared against earlier ones.
type Ledger struct {
	db *sql.DB
}

// Entry is one recorded decision.
type Entry struct {
	RunID       string
	ClaimID     string
	Fingerprint string
	Covered     bool
	Deductible  float64
	Payout      float64
	Notes       string
	Model       string
	CreatedAt   time.Time
}

// Open opens the ledger database and runs migrations.
func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate ledger: %w", err)
	}
	return &Ledger{db: db}, nil
}

// Close closes the underlying database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Fingerprint returns the sha256 digest of the claim's canonical JSON form
// (RFC 8785), so the same claim yields the same fingerprint regardless of
// field order in the source file.
func Fingerprint(claim model.ClaimRecord) (string, error) {
	raw, err := json.Marshal(claim)
	if err != nil {
		return "", fmt.Errorf("marshal claim: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("canonicalize claim: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// Record stores the decision for one finished run.
func (l *Ledger) Record(ctx context.Context, result *workflow.Result) error {
	fingerprint, err := Fingerprint(result.Claim)
	if err != nil {
		return err
	}

	_, err = l.db.ExecContext(ctx,
		`INSERT INTO decisions (run_id, claim_id, fingerprint, covered, deductible, payout, notes, model, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.RunID,
		result.Decision.ClaimID,
		fingerprint,
		boolToInt(result.Decision.Covered),
		result.Decision.Deductible,
		result.Decision.RecommendedPayout,
		result.Decision.Notes,
		nullIfEmpty(result.Model),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record decision: %w", err)
	}
	return nil
}

// Recent returns the most recently recorded decisions, newest first.
func (l *Ledger) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := l.db.QueryContext(ctx,
		`SELECT run_id, claim_id, fingerprint, covered, deductible, payout, notes, model, created_at
		 FROM decisions ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ByClaim returns recorded decisions for one claim, newest first.
func (l *Ledger) ByClaim(ctx context.Context, claimID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := l.db.QueryContext(ctx,
		`SELECT run_id, claim_id, fingerprint, covered, deductible, payout, notes, model, created_at
		 FROM decisions WHERE claim_id = ? ORDER BY created_at DESC LIMIT ?`, claimID, limit)
	if err != nil {
		return nil, fmt.Errorf("list decisions for %s: %w", claimID, err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// scanEntries reads all rows into entries.
func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		var covered int
		var modelName sql.NullString
		var createdStr string

		if err := rows.Scan(&e.RunID, &e.ClaimID, &e.Fingerprint, &covered,
			&e.Deductible, &e.Payout, &e.Notes, &modelName, &createdStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		e.Covered = covered != 0
		if modelName.Valid {
			e.Model = modelName.String
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
