package graph

import (
	"context"

	"github.com/relmap/relmap/servicenow"
)

// Source is the record-query capability the walker consumes. It is the only
// external collaborator: one filtered read per name lookup, class lookup,
// or per-node edge fetch. *servicenow.TableService satisfies it.
type Source interface {
	Query(ctx context.Context, table string, opts servicenow.QueryOptions) ([]servicenow.Record, error)
}
