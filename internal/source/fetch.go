package source

import (
	"context"

	"github.com/yhlin/autotyper/internal/flowdef"
	"github.com/yhlin/autotyper/internal/record"
)

// Fetch retrieves the records a flow definition names, bounded by an
// inclusive order_date window. Empty bounds leave that side open.
func (c *Client) Fetch(ctx context.Context, def flowdef.FlowDefinition, dateFrom, dateTo string) ([]record.Record, error) {
	q := Query{
		Table:        def.Table,
		Select:       def.Select,
		DateFrom:     dateFrom,
		DateTo:       dateTo,
		ApprovedOnly: def.Approved(),
	}
	return c.FetchRecords(ctx, q, def.ItemsField)
}
