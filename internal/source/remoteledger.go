package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/yhlin/autotyper/internal/ledger"
)

// RemoteLedger keeps the sync ledger in the same PostgREST store the
// records come from, in a sync_log table mirroring the local schema. It
// lets several operator machines share one dedup set.
type RemoteLedger struct {
	client *Client
}

// NewRemoteLedger wraps a client as a Ledger over its sync_log table.
func NewRemoteLedger(client *Client) *RemoteLedger {
	return &RemoteLedger{client: client}
}

func (r *RemoteLedger) SuccessfulIDs(ctx context.Context, table, target string) (map[string]struct{}, error) {
	v := url.Values{}
	v.Set("select", "record_id")
	v.Set("table_name", "eq."+table)
	v.Set("target_system", "eq."+target)
	v.Set("status", "eq."+ledger.StatusSuccess)

	u := fmt.Sprintf("%s/rest/v1/sync_log?%s", r.client.baseURL, v.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build ledger request: %w", err)
	}
	r.client.setHeaders(req)

	resp, err := r.client.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query remote ledger: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("query remote ledger: %s: %s", resp.Status, bytes.TrimSpace(body))
	}

	var rows []struct {
		RecordID string `json:"record_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode remote ledger: %w", err)
	}

	ids := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		ids[row.RecordID] = struct{}{}
	}
	return ids, nil
}

func (r *RemoteLedger) Append(ctx context.Context, e ledger.Entry) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode ledger entry: %w", err)
	}

	u := fmt.Sprintf("%s/rest/v1/sync_log", r.client.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build ledger request: %w", err)
	}
	r.client.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	// Duplicate successes hit the table's partial unique index; asking the
	// server to ignore them keeps Append idempotent.
	req.Header.Set("Prefer", "return=minimal,resolution=ignore-duplicates")

	resp, err := r.client.http.Do(req)
	if err != nil {
		return fmt.Errorf("append remote ledger: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK &&
		resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusConflict {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("append remote ledger: %s: %s", resp.Status, bytes.TrimSpace(body))
	}
	return nil
}

func (r *RemoteLedger) Close() error { return nil }
