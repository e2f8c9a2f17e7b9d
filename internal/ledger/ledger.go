// Package ledger records the outcome of every entry attempt. The ledger is
// append-only: successes are never updated or deleted, and a success for a
// (table, record, target) triple permanently excludes that record from
// future runs. Failures accumulate so a record may be retried.
package ledger

import (
	"context"
	"time"
)

// Target identifies the downstream system entries are synced into. One
// process serves one target; the value partitions the dedup key so the same
// record can be entered into two different systems.
const DefaultTarget = "legacy_erp"

// Status values for ledger entries.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Entry is one attempt outcome.
type Entry struct {
	Table    string    `json:"table_name"`
	RecordID string    `json:"record_id"`
	Target   string    `json:"target_system"`
	Status   string    `json:"status"`
	Error    string    `json:"error_message,omitempty"`
	RunToken string    `json:"run_token,omitempty"`
	SyncedAt time.Time `json:"synced_at,omitzero"`
}

// Ledger is the dedup and audit store consulted before a run and appended
// to after each record.
type Ledger interface {
	// SuccessfulIDs returns the set of record IDs for the table that have
	// at least one success entry for the target.
	SuccessfulIDs(ctx context.Context, table, target string) (map[string]struct{}, error)

	// Append records one attempt outcome. Appending a success for a
	// triple that already has one is a silent no-op.
	Append(ctx context.Context, e Entry) error

	Close() error
}
