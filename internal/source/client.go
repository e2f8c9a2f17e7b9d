// Package source fetches order records from the remote PostgREST data
// store and exposes the hosted copy of the sync ledger.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/yhlin/autotyper/internal/record"
)

// pageSize is the fetch window. The remote caps responses at 1000 rows, so
// anything larger would silently truncate.
const pageSize = 1000

// Client talks to one PostgREST endpoint with a fixed API key.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient returns a client for the endpoint. baseURL is the project root
// (the "/rest/v1" prefix is appended per request).
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Query names one record fetch: the table, its embedded select clause, an
// inclusive date window applied to order_date, and the approved filter.
type Query struct {
	Table        string
	Select       string
	DateFrom     string
	DateTo       string
	ApprovedOnly bool
	OrderBy      string
}

func (q Query) values(limit, offset int) url.Values {
	v := url.Values{}
	if q.Select != "" {
		v.Set("select", q.Select)
	}
	orderBy := q.OrderBy
	if orderBy == "" {
		orderBy = "order_date.desc"
	}
	v.Set("order", orderBy)
	// Both bounds target the same key, so Add, not Set.
	if q.DateFrom != "" {
		v.Add("order_date", "gte."+q.DateFrom)
	}
	if q.DateTo != "" {
		v.Add("order_date", "lte."+q.DateTo)
	}
	if q.ApprovedOnly {
		v.Set("status", "eq.approved")
	}
	v.Set("limit", strconv.Itoa(limit))
	v.Set("offset", strconv.Itoa(offset))
	return v
}

// FetchRecords retrieves every row matching the query, paging through the
// result set, and decodes each into a Record. Rows come back in the
// server's order (order_date descending by default) and that order is
// preserved.
func (c *Client) FetchRecords(ctx context.Context, q Query, itemsKey string) ([]record.Record, error) {
	var out []record.Record
	for offset := 0; ; offset += pageSize {
		rows, err := c.fetchPage(ctx, q, offset)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			rec, err := record.FromRow(row, itemsKey)
			if err != nil {
				return nil, fmt.Errorf("decode %s row: %w", q.Table, err)
			}
			out = append(out, rec)
		}
		if len(rows) < pageSize {
			return out, nil
		}
	}
}

func (c *Client) fetchPage(ctx context.Context, q Query, offset int) ([]map[string]any, error) {
	u := fmt.Sprintf("%s/rest/v1/%s?%s", c.baseURL, url.PathEscape(q.Table), q.values(pageSize, offset).Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", q.Table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("fetch %s: %s: %s", q.Table, resp.Status, bytes.TrimSpace(body))
	}

	var rows []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", q.Table, err)
	}
	return rows, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
}
