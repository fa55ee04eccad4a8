package graph

import (
	"fmt"
	"io"
)

// Entry is one discovered relationship emitted during a walk.
type Entry struct {
	Node      Node
	Type      string
	Direction Direction
	// Depth is the level at which the node was discovered; the root is 0.
	Depth int
	// Prefix is the accumulated indent for tree rendering.
	Prefix string
	// Last marks the final candidate of its expansion.
	Last bool
}

// Sink consumes the emission stream of one walk. Tree text and structured
// output are two implementations over the same stream.
type Sink interface {
	Root(n Node)
	Entry(e Entry)
}

// Direction glyphs and branch connectors for tree output.
const (
	glyphDownstream = "↓"
	glyphUpstream   = "↑"
	branchMid       = "├── "
	branchLast      = "└── "
	indentMid       = "│   "
	indentLast      = "    "
)

// childPrefix extends prefix for the children of an entry.
func childPrefix(prefix string, last bool) string {
	if last {
		return prefix + indentLast
	}
	return prefix + indentMid
}

// TreeSink renders the walk as indented tree text.
//
// Connectors follow candidate order at each level, counting hidden siblings.
// Entries stream out in discovery order, before later siblings are known to
// be hidden, so when the trailing candidates of a level are suppressed the
// last printed sibling keeps its mid connector and the children of a hidden
// node stay indented under the unprinted line.
type TreeSink struct {
	W io.Writer
}

// Root prints the root line.
func (s *TreeSink) Root(n Node) {
	fmt.Fprintf(s.W, "%s [%s]\n", n.Name, n.Class)
}

// Entry prints one discovered node with its branch connector, direction
// glyph, class, and relationship label.
func (s *TreeSink) Entry(e Entry) {
	connector := branchMid
	if e.Last {
		connector = branchLast
	}
	glyph := glyphDownstream
	if e.Direction == DirectionUpstream {
		glyph = glyphUpstream
	}
	fmt.Fprintf(s.W, "%s%s%s %s [%s] (%s)\n", e.Prefix, connector, glyph, e.Node.Name, e.Node.Class, e.Type)
}

// Result is the structured form of a walk.
type Result struct {
	Root          RootRecord     `json:"root"`
	Relationships []Relationship `json:"relationships"`
}

// RootRecord describes the resolved root CI.
type RootRecord struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Class string `json:"class"`
}

// Relationship is one annotated entry in discovery order.
type Relationship struct {
	Name      string    `json:"name"`
	Class     string    `json:"class"`
	Type      string    `json:"type"`
	Direction Direction `json:"direction"`
	ID        string    `json:"id"`
	Depth     int       `json:"depth"`
}

// RecordSink accumulates the walk into a Result.
type RecordSink struct {
	result Result
}

// Root records the resolved root.
func (s *RecordSink) Root(n Node) {
	s.result.Root = RootRecord{ID: n.ID, Name: n.Name, Class: n.Class}
	s.result.Relationships = []Relationship{}
}

// Entry appends one discovered node.
func (s *RecordSink) Entry(e Entry) {
	s.result.Relationships = append(s.result.Relationships, Relationship{
		Name:      e.Node.Name,
		Class:     e.Node.Class,
		Type:      e.Type,
		Direction: e.Direction,
		ID:        e.Node.ID,
		Depth:     e.Depth,
	})
}

// Result returns the accumulated walk.
func (s *RecordSink) Result() *Result {
	return &s.result
}
