package record

import (
	"fmt"
)

// Fields is one level of a fetched row: scalar header values plus nested
// related entities (maps) and embedded line-item lists, exactly as the
// remote store returns them.
type Fields map[string]any

// Record is one order fetched from the remote store.
//
// Records are immutable once fetched. The engine only reads field values
// out of them and writes ledger entries keyed by ID; the remote
// representation is never mutated.
type Record struct {
	// ID is the unique record identifier used for ledger dedup.
	ID string

	// Fields holds the header values, including nested related entities
	// (e.g. "customers" resolving to a map with "customer_code").
	Fields Fields

	// Items holds the line items in store order. Each item is its own
	// field context for item-step execution.
	Items []Fields
}

// FromRow builds a Record from a decoded store row. itemsKey names the
// embedded line-item list ("assembly_items", "packaging_items"); a missing
// or empty list yields a record with no items, which is valid.
//
// A row without a string "id" is rejected: without an id the record cannot
// be deduplicated and must never be attempted.
func FromRow(row map[string]any, itemsKey string) (Record, error) {
	id, _ := row["id"].(string)
	if id == "" {
		return Record{}, fmt.Errorf("row has no id field")
	}

	rec := Record{ID: id, Fields: Fields(row)}

	if itemsKey != "" {
		if raw, ok := row[itemsKey].([]any); ok {
			rec.Items = make([]Fields, 0, len(raw))
			for _, it := range raw {
				if m, ok := it.(map[string]any); ok {
					rec.Items = append(rec.Items, Fields(m))
				}
			}
		}
	}

	return rec, nil
}

// Label returns the identifier shown in progress messages: the order
// number when present, otherwise a truncated record id.
func (r Record) Label() string {
	if no := Resolve(r.Fields, "order_no"); no != "" {
		return no
	}
	if len(r.ID) > 12 {
		return r.ID[:12]
	}
	return r.ID
}

// WithAliases returns a copy of the header fields with each alias resolved
// from its source path and added as a top-level key. Used to flatten nested
// entity fields (e.g. "customers.customer_code" -> "customer_code") so flow
// definitions can reference them with a flat name.
func (r Record) WithAliases(aliases map[string]string) Fields {
	if len(aliases) == 0 {
		return r.Fields
	}
	flat := make(Fields, len(r.Fields)+len(aliases))
	for k, v := range r.Fields {
		flat[k] = v
	}
	for alias, path := range aliases {
		flat[alias] = Resolve(r.Fields, path)
	}
	return flat
}
