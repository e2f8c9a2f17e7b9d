package testutil

import (
	"context"

	"github.com/yhlin/autotyper/internal/flowdef"
	"github.com/yhlin/autotyper/internal/record"
)

// StaticSource is an engine.RecordSource returning fixed records.
type StaticSource struct {
	Records []record.Record
	Err     error
}

func (s *StaticSource) Fetch(ctx context.Context, def flowdef.FlowDefinition, dateFrom, dateTo string) ([]record.Record, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Records, nil
}
