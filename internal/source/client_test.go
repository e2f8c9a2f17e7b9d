package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_FetchRecords(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	var gotAPIKey, gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		gotAPIKey = r.Header.Get("apikey")
		gotAuth = r.Header.Get("Authorization")

		rows := []map[string]any{
			{"id": "rec-1", "order_no": "ORD-001", "assembly_items": []any{
				map[string]any{"quantity": 3},
			}},
			{"id": "rec-2", "order_no": "ORD-002"},
		}
		json.NewEncoder(w).Encode(rows)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	records, err := client.FetchRecords(context.Background(), Query{
		Table:        "assembly_orders",
		Select:       "*,assembly_items(*)",
		DateFrom:     "2026-08-01",
		DateTo:       "2026-08-31",
		ApprovedOnly: true,
	}, "assembly_items")
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "rec-1", records[0].ID)
	assert.Len(t, records[0].Items, 1)
	assert.Equal(t, "rec-2", records[1].ID)

	assert.Equal(t, "/rest/v1/assembly_orders", gotPath)
	assert.Equal(t, []string{"*,assembly_items(*)"}, gotQuery["select"])
	assert.Equal(t, []string{"order_date.desc"}, gotQuery["order"])
	// Both window bounds ride the same parameter.
	assert.Equal(t, []string{"gte.2026-08-01", "lte.2026-08-31"}, gotQuery["order_date"])
	assert.Equal(t, []string{"eq.approved"}, gotQuery["status"])
	assert.Equal(t, "test-key", gotAPIKey)
	assert.Equal(t, "Bearer test-key", gotAuth)
}

func TestClient_FetchRecordsPagination(t *testing.T) {
	var offsets []int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		offsets = append(offsets, offset)

		var rows []map[string]any
		if offset == 0 {
			for i := 0; i < pageSize; i++ {
				rows = append(rows, map[string]any{"id": fmt.Sprintf("rec-%04d", i)})
			}
		} else {
			rows = append(rows, map[string]any{"id": "rec-last"})
		}
		json.NewEncoder(w).Encode(rows)
	}))
	defer server.Close()

	client := NewClient(server.URL, "k")
	records, err := client.FetchRecords(context.Background(), Query{Table: "assembly_orders"}, "")
	require.NoError(t, err)

	assert.Len(t, records, pageSize+1)
	assert.Equal(t, []int{0, pageSize}, offsets)
	assert.Equal(t, "rec-last", records[pageSize].ID)
}

func TestClient_FetchRecordsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"permission denied"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, "bad-key")
	_, err := client.FetchRecords(context.Background(), Query{Table: "assembly_orders"}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
}

func TestClient_FetchRecordsRowWithoutID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{{"order_no": "ORD-001"}})
	}))
	defer server.Close()

	client := NewClient(server.URL, "k")
	_, err := client.FetchRecords(context.Background(), Query{Table: "assembly_orders"}, "")
	assert.Error(t, err)
}

func TestClient_FetchEmptyWindow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{})
	}))
	defer server.Close()

	client := NewClient(server.URL, "k")
	records, err := client.FetchRecords(context.Background(), Query{Table: "assembly_orders"}, "")
	require.NoError(t, err)
	assert.Empty(t, records)
}
