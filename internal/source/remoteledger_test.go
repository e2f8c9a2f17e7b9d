package source

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yhlin/autotyper/internal/ledger"
)

func TestRemoteLedger_SuccessfulIDs(t *testing.T) {
	var gotQuery map[string][]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/v1/sync_log", r.URL.Path)
		gotQuery = r.URL.Query()
		json.NewEncoder(w).Encode([]map[string]any{
			{"record_id": "rec-1"},
			{"record_id": "rec-3"},
		})
	}))
	defer server.Close()

	led := NewRemoteLedger(NewClient(server.URL, "k"))
	ids, err := led.SuccessfulIDs(context.Background(), "assembly_orders", "legacy_erp")
	require.NoError(t, err)

	assert.Equal(t, map[string]struct{}{"rec-1": {}, "rec-3": {}}, ids)
	assert.Equal(t, []string{"eq.assembly_orders"}, gotQuery["table_name"])
	assert.Equal(t, []string{"eq.legacy_erp"}, gotQuery["target_system"])
	assert.Equal(t, []string{"eq.success"}, gotQuery["status"])
}

func TestRemoteLedger_Append(t *testing.T) {
	var gotBody ledger.Entry
	var gotPrefer string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		gotPrefer = r.Header.Get("Prefer")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	led := NewRemoteLedger(NewClient(server.URL, "k"))
	err := led.Append(context.Background(), ledger.Entry{
		Table:    "assembly_orders",
		RecordID: "rec-1",
		Target:   "legacy_erp",
		Status:   ledger.StatusSuccess,
		RunToken: "run-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "rec-1", gotBody.RecordID)
	assert.Equal(t, ledger.StatusSuccess, gotBody.Status)
	assert.Contains(t, gotPrefer, "ignore-duplicates")
}

func TestRemoteLedger_AppendConflictIsNoop(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"duplicate key"}`, http.StatusConflict)
	}))
	defer server.Close()

	led := NewRemoteLedger(NewClient(server.URL, "k"))
	err := led.Append(context.Background(), ledger.Entry{
		Table: "assembly_orders", RecordID: "rec-1", Target: "legacy_erp",
		Status: ledger.StatusSuccess,
	})
	assert.NoError(t, err)
}

func TestRemoteLedger_AppendServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	led := NewRemoteLedger(NewClient(server.URL, "k"))
	err := led.Append(context.Background(), ledger.Entry{
		Table: "assembly_orders", RecordID: "rec-1", Target: "legacy_erp",
		Status: ledger.StatusFailed,
	})
	assert.Error(t, err)
}
