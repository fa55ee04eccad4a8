package graph

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/relmap/relmap/servicenow"
)

// fakeSource is an in-memory Source understanding the three query shapes
// the walker issues: name lookup, class lookup by sys_id, and the OR-style
// edge query.
type fakeSource struct {
	mu      sync.Mutex
	ciOrder []string
	cis     map[string]fakeCI
	rels    []fakeRel

	failEdges map[string]bool
	failClass map[string]bool

	edgeQueries  []string
	classQueries []string
}

type fakeCI struct {
	name  string
	class string
}

type fakeRel struct {
	parent string
	child  string
	typ    string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		cis:       make(map[string]fakeCI),
		failEdges: make(map[string]bool),
		failClass: make(map[string]bool),
	}
}

func (f *fakeSource) addCI(id, name, class string) {
	f.ciOrder = append(f.ciOrder, id)
	f.cis[id] = fakeCI{name: name, class: class}
}

func (f *fakeSource) addRel(parent, child, typ string) {
	f.rels = append(f.rels, fakeRel{parent: parent, child: child, typ: typ})
}

func (f *fakeSource) Query(_ context.Context, table string, opts servicenow.QueryOptions) ([]servicenow.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch table {
	case tableRel:
		return f.queryRels(opts)
	case tableCI:
		return f.queryCIs(opts)
	default:
		return nil, fmt.Errorf("unknown table %q", table)
	}
}

func (f *fakeSource) queryRels(opts servicenow.QueryOptions) ([]servicenow.Record, error) {
	// Only the walker's edge query shape is supported.
	rest, ok := strings.CutPrefix(opts.Query, "parent=")
	if !ok {
		return nil, fmt.Errorf("unexpected rel query %q", opts.Query)
	}
	id, _, ok := strings.Cut(rest, "^ORchild=")
	if !ok {
		return nil, fmt.Errorf("unexpected rel query %q", opts.Query)
	}

	if f.failEdges[id] {
		return nil, fmt.Errorf("edge query for %s failed", id)
	}
	f.edgeQueries = append(f.edgeQueries, id)

	var recs []servicenow.Record
	for _, r := range f.rels {
		if r.parent != id && r.child != id {
			continue
		}
		recs = append(recs, servicenow.Record{
			fieldParent: {Value: r.parent, DisplayValue: f.cis[r.parent].name},
			fieldChild:  {Value: r.child, DisplayValue: f.cis[r.child].name},
			fieldType:   {Value: "type-" + r.typ, DisplayValue: r.typ},
		})
		if opts.Limit > 0 && len(recs) == opts.Limit {
			break
		}
	}
	return recs, nil
}

func (f *fakeSource) queryCIs(opts servicenow.QueryOptions) ([]servicenow.Record, error) {
	if id, ok := strings.CutPrefix(opts.Query, "sys_id="); ok {
		if f.failClass[id] {
			return nil, fmt.Errorf("ci query for %s failed", id)
		}
		f.classQueries = append(f.classQueries, id)
		ci, found := f.cis[id]
		if !found {
			return nil, nil
		}
		return []servicenow.Record{{
			fieldSysID: {Value: id},
			fieldName:  {Value: ci.name},
			fieldClass: {Value: ci.class},
		}}, nil
	}

	if name, ok := strings.CutPrefix(opts.Query, "name="); ok {
		var recs []servicenow.Record
		for _, id := range f.ciOrder {
			if f.cis[id].name != name {
				continue
			}
			recs = append(recs, servicenow.Record{
				fieldSysID: {Value: id},
				fieldName:  {Value: name},
				fieldClass: {Value: f.cis[id].class},
			})
			if opts.Limit > 0 && len(recs) == opts.Limit {
				break
			}
		}
		return recs, nil
	}

	return nil, fmt.Errorf("unexpected ci query %q", opts.Query)
}

// expandedIDs returns the ids whose edges were fetched, in order.
func (f *fakeSource) expandedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.edgeQueries...)
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// walk runs a full walk against src into a RecordSink.
func walk(t *testing.T, src Source, ref string, opts Options) (*Result, error) {
	t.Helper()
	sink := &RecordSink{}
	err := NewWalker(src, testLogger()).Walk(context.Background(), ref, opts, sink)
	return sink.Result(), err
}
