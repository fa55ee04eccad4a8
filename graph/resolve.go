package graph

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/relmap/relmap/servicenow"
)

// ciFields are the columns fetched when resolving a CI.
var ciFields = []string{fieldSysID, fieldName, fieldClass}

// Resolve turns a CI name or sys_id into the root node of a walk.
//
// A 32-character hex reference is treated as a sys_id and looked up
// directly. Anything else is matched against CI names (exact,
// case-sensitive); when several CIs share the name, candidates are ordered
// by sys_id and the first is taken, with the rest logged at warning level.
func (w *Walker) Resolve(ctx context.Context, ref string) (Node, error) {
	if looksLikeSysID(ref) {
		return w.resolveByID(ctx, ref)
	}
	return w.resolveByName(ctx, ref)
}

func (w *Walker) resolveByID(ctx context.Context, sysID string) (Node, error) {
	recs, err := w.src.Query(ctx, tableCI, servicenow.QueryOptions{
		Query:  fieldSysID + "=" + sysID,
		Fields: ciFields,
		Limit:  1,
	})
	if err != nil {
		return Node{}, fmt.Errorf("looking up CI %s: %w", sysID, err)
	}
	if len(recs) == 0 {
		return Node{}, fmt.Errorf("%w: sys_id %s", ErrCINotFound, sysID)
	}
	return nodeFromRecord(recs[0]), nil
}

func (w *Walker) resolveByName(ctx context.Context, name string) (Node, error) {
	recs, err := w.src.Query(ctx, tableCI, servicenow.QueryOptions{
		Query:  fieldName + "=" + name,
		Fields: ciFields,
		Limit:  nameCandidateLimit,
	})
	if err != nil {
		return Node{}, fmt.Errorf("looking up CI %q: %w", name, err)
	}
	if len(recs) == 0 {
		return Node{}, fmt.Errorf("%w: name %q", ErrCINotFound, name)
	}
	if len(recs) > 1 {
		// The API's result order is not guaranteed stable, so break the
		// tie deterministically on sys_id.
		sort.Slice(recs, func(i, j int) bool {
			return recs[i].Value(fieldSysID) < recs[j].Value(fieldSysID)
		})
		others := make([]string, 0, len(recs)-1)
		for _, r := range recs[1:] {
			others = append(others, r.Value(fieldSysID))
		}
		w.log.WithFields(logrus.Fields{
			"name":    name,
			"chosen":  recs[0].Value(fieldSysID),
			"ignored": others,
		}).Warn("multiple CIs match name, using lowest sys_id")
	}
	return nodeFromRecord(recs[0]), nil
}

func nodeFromRecord(r servicenow.Record) Node {
	return Node{
		ID:    r.Value(fieldSysID),
		Name:  r.Value(fieldName),
		Class: r.Value(fieldClass),
	}
}

// looksLikeSysID reports whether ref has the shape of a sys_id
// (32 lowercase hex characters).
func looksLikeSysID(ref string) bool {
	if len(ref) != 32 {
		return false
	}
	for _, c := range ref {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
