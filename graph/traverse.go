package graph

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Walker performs depth-bounded, cycle-safe walks of the CI relationship
// graph. A Walker holds no per-walk state and may be reused.
type Walker struct {
	src Source
	log *logrus.Logger
}

// NewWalker creates a Walker over the given record source.
func NewWalker(src Source, log *logrus.Logger) *Walker {
	return &Walker{src: src, log: log}
}

// run carries the state of one walk: the visited set gating expansion, the
// displayed set gating emission, the class memo, and the output sink.
type run struct {
	w         *Walker
	opts      Options
	dir       Direction
	visited   map[string]struct{}
	displayed map[string]struct{}
	classes   *classCache
	sink      Sink
}

// candidate is one surviving neighbor of an expansion, pre class resolution.
type candidate struct {
	node Node
	typ  string
	dir  Direction
}

// Walk resolves ref to a root CI and walks its relationships, emitting the
// root and every visible discovered node to sink in discovery order.
//
// Resolution failure and invalid options are fatal. Per-node fetch failures
// degrade to "no edges" / class "unknown" and the walk continues, so a
// partially inaccessible graph still yields a useful tree.
func (w *Walker) Walk(ctx context.Context, ref string, opts Options, sink Sink) error {
	if err := opts.validate(); err != nil {
		return err
	}

	root, err := w.Resolve(ctx, ref)
	if err != nil {
		return err
	}

	r := &run{
		w:         w,
		opts:      opts,
		dir:       opts.direction(),
		visited:   map[string]struct{}{root.ID: {}},
		displayed: map[string]struct{}{root.ID: {}},
		classes:   newClassCache(w.src, w.log),
		sink:      sink,
	}
	r.classes.seed(root.ID, root.Class)

	w.log.WithFields(logrus.Fields{
		"root":      root.ID,
		"depth":     opts.Depth,
		"direction": r.dir,
	}).Debug("starting walk")

	sink.Root(root)
	r.expand(ctx, root.ID, 1, "")
	return nil
}

// expand discovers the neighbors of currentID and emits them at depth,
// recursing into each unvisited neighbor. Nodes hidden by the class filter
// are still walked; only emission is suppressed.
func (r *run) expand(ctx context.Context, currentID string, depth int, prefix string) {
	if depth > r.opts.Depth || ctx.Err() != nil {
		return
	}

	edges := r.w.fetchEdges(ctx, currentID)
	cands := r.candidates(currentID, edges)
	r.resolveClasses(ctx, cands)

	for i, cand := range cands {
		last := i == len(cands)-1
		if r.visible(cand.node) {
			r.sink.Entry(Entry{
				Node:      cand.node,
				Type:      cand.typ,
				Direction: cand.dir,
				Depth:     depth,
				Prefix:    prefix,
				Last:      last,
			})
		}
		if depth < r.opts.Depth {
			if _, seen := r.visited[cand.node.ID]; !seen {
				r.visited[cand.node.ID] = struct{}{}
				r.expand(ctx, cand.node.ID, depth+1, childPrefix(prefix, last))
			}
		}
	}
}

// candidates interprets edges relative to currentID, applies the direction
// and type filters, drops self-loops, and collapses duplicate
// (neighbor, direction) pairs, keeping fetch order.
func (r *run) candidates(currentID string, edges []Edge) []candidate {
	seen := make(map[string]struct{}, len(edges))
	cands := make([]candidate, 0, len(edges))

	for _, e := range edges {
		var other Node
		var dir Direction
		switch currentID {
		case e.SourceID:
			other = Node{ID: e.TargetID, Name: e.TargetName}
			dir = DirectionDownstream
		case e.TargetID:
			other = Node{ID: e.SourceID, Name: e.SourceName}
			dir = DirectionUpstream
		default:
			// Record touches neither endpoint; stale filter result.
			continue
		}
		if other.ID == currentID {
			continue
		}
		if r.dir != DirectionBoth && dir != r.dir {
			continue
		}
		if r.opts.TypeFilter != "" && !containsFold(e.Type, r.opts.TypeFilter) {
			continue
		}
		key := other.ID + "\x00" + string(dir)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		cands = append(cands, candidate{node: other, typ: e.Type, dir: dir})
	}
	return cands
}

// resolveClasses fills in the class of every candidate before emission, so
// sibling ordering stays stable. Cache misses are fetched with bounded
// concurrency; lookup failures degrade to "unknown" inside the cache.
func (r *run) resolveClasses(ctx context.Context, cands []candidate) {
	var g errgroup.Group
	g.SetLimit(classLookupWorkers)
	for _, cand := range cands {
		cand := cand
		g.Go(func() error {
			r.classes.resolve(ctx, cand.node.ID)
			return nil
		})
	}
	g.Wait() //nolint:errcheck // workers never return errors.

	for i := range cands {
		cands[i].node.Class = r.classes.resolve(ctx, cands[i].node.ID)
	}
}

// visible decides whether n is emitted, and records it as displayed if so.
// A node is hidden when the class filter rejects it or when it was already
// displayed via another path.
func (r *run) visible(n Node) bool {
	if r.opts.ClassFilter != "" && !containsFold(n.Class, r.opts.ClassFilter) {
		return false
	}
	if _, dup := r.displayed[n.ID]; dup {
		return false
	}
	r.displayed[n.ID] = struct{}{}
	return true
}
