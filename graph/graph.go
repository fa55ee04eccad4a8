// Package graph walks the CI relationship graph of a CMDB reachable over
// the Table API and renders the result as an impact/dependency tree.
//
// The remote store only answers "edges touching node X" point queries, so
// the walk is a depth-bounded depth-first traversal with an explicit
// visited set for cycle safety. Class filtering affects only what is
// emitted, never what is walked.
package graph

import (
	"errors"
	"fmt"
	"strings"
)

// Direction of an edge relative to the node currently being expanded.
type Direction string

// Traversal directions.
const (
	// DirectionDownstream follows edges where the current node is the parent.
	DirectionDownstream Direction = "downstream"
	// DirectionUpstream follows edges where the current node is the child.
	DirectionUpstream Direction = "upstream"
	// DirectionBoth follows edges in either role.
	DirectionBoth Direction = "both"
)

// Depth bounds for a walk.
const (
	MinDepth     = 1
	MaxDepth     = 5
	DefaultDepth = 3
)

// Walk limits.
const (
	// edgePageSize caps the edges fetched per node. Nodes with more edges
	// are truncated; the fetcher logs a warning when the cap is hit.
	edgePageSize = 100
	// nameCandidateLimit caps candidates fetched when resolving a CI by name.
	nameCandidateLimit = 5
	// classCacheSize bounds the per-walk class memo.
	classCacheSize = 4096
	// classLookupWorkers bounds concurrent class lookups per expansion.
	classLookupWorkers = 4
)

// CMDB tables and columns.
const (
	tableCI  = "cmdb_ci"
	tableRel = "cmdb_rel_ci"

	fieldSysID  = "sys_id"
	fieldName   = "name"
	fieldClass  = "sys_class_name"
	fieldParent = "parent"
	fieldChild  = "child"
	fieldType   = "type"

	// classUnknown is recorded when a class lookup fails, so the failure
	// is not retried within the walk.
	classUnknown = "unknown"
)

// Sentinel errors.
var (
	ErrCINotFound       = errors.New("configuration item not found")
	ErrInvalidDepth     = errors.New("depth must be between 1 and 5")
	ErrInvalidDirection = errors.New("direction must be upstream, downstream, or both")
)

// Node is one CI in the relationship graph.
type Node struct {
	ID    string
	Name  string
	Class string
}

// Edge is one directed relationship record between two CIs.
type Edge struct {
	SourceID   string
	SourceName string
	TargetID   string
	TargetName string
	Type       string
}

// Options controls a walk.
type Options struct {
	// Depth is the maximum traversal depth, 1 to 5 inclusive.
	Depth int
	// Direction restricts which edge roles are followed. Empty means both.
	Direction Direction
	// TypeFilter drops edges whose relationship label does not contain
	// this substring (case-insensitive). Empty means no filtering.
	TypeFilter string
	// ClassFilter hides emitted nodes whose class does not contain this
	// substring (case-insensitive). Filtered nodes are still walked.
	ClassFilter string
	// Impact forces the walk upstream, answering "what depends on this CI"
	// regardless of Direction.
	Impact bool
}

// validate rejects out-of-range options before any network activity.
func (o Options) validate() error {
	if o.Depth < MinDepth || o.Depth > MaxDepth {
		return fmt.Errorf("%w: got %d", ErrInvalidDepth, o.Depth)
	}
	switch o.Direction {
	case "", DirectionUpstream, DirectionDownstream, DirectionBoth:
		return nil
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidDirection, o.Direction)
	}
}

// direction returns the effective traversal direction. Relationships point
// from dependent (parent) to dependency (child), so impact analysis walks
// upstream toward the CIs that depend on the root.
func (o Options) direction() Direction {
	if o.Impact {
		return DirectionUpstream
	}
	if o.Direction == "" {
		return DirectionBoth
	}
	return o.Direction
}

// containsFold reports whether s contains substr, case-insensitively.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
