package graph

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/relmap/relmap/servicenow"
)

// relFields are the columns fetched per relationship record. Display values
// carry the endpoint names and the human-readable relationship label.
var relFields = []string{fieldSysID, fieldParent, fieldChild, fieldType}

// fetchEdges returns the relationship records touching id in either role,
// via a single OR-filtered query capped at edgePageSize.
//
// Fetch failure is degraded, not fatal: the node is treated as having no
// edges and the walk continues with other branches. A full page is logged
// as possible truncation.
func (w *Walker) fetchEdges(ctx context.Context, id string) []Edge {
	recs, err := w.src.Query(ctx, tableRel, servicenow.QueryOptions{
		Query:   fieldParent + "=" + id + "^OR" + fieldChild + "=" + id,
		Fields:  relFields,
		Display: servicenow.DisplayAll,
		Limit:   edgePageSize,
	})
	if err != nil {
		w.log.WithError(err).WithField("sys_id", id).Warn("edge fetch failed, treating node as leaf")
		return nil
	}
	if len(recs) == edgePageSize {
		w.log.WithFields(logrus.Fields{
			"sys_id": id,
			"cap":    edgePageSize,
		}).Warn("edge page cap reached, relationships may be truncated")
	}

	edges := make([]Edge, 0, len(recs))
	for _, r := range recs {
		e := Edge{
			SourceID:   r.Value(fieldParent),
			SourceName: r.Display(fieldParent),
			TargetID:   r.Value(fieldChild),
			TargetName: r.Display(fieldChild),
			Type:       r.Display(fieldType),
		}
		// Dangling references happen when one endpoint was deleted.
		if e.SourceID == "" || e.TargetID == "" {
			continue
		}
		edges = append(edges, e)
	}
	return edges
}
