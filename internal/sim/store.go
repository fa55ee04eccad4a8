package sim

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Store is the in-memory table set backing the simulator. It holds the two
// CMDB tables relmap reads: CIs and the relationships between them.
type Store struct {
	mu      sync.RWMutex
	cis     map[string]CI
	ciOrder []string
	rels    []Rel
	typeIDs map[string]string
}

// CI is one configuration item row.
type CI struct {
	SysID string
	Name  string
	Class string
}

// Rel is one relationship row. TypeID is the raw reference value backing
// the human-readable TypeLabel.
type Rel struct {
	SysID     string
	ParentID  string
	ChildID   string
	TypeID    string
	TypeLabel string
}

// Store errors.
var (
	ErrUnknownTable = errors.New("unknown table")
	ErrMissingField = errors.New("missing required field")
	ErrNoSuchCI     = errors.New("referenced CI does not exist")
)

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		cis:     make(map[string]CI),
		typeIDs: make(map[string]string),
	}
}

// newSysID generates a 32-character hex identifier.
func newSysID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// AddCI inserts a CI and returns the stored row.
func (s *Store) AddCI(name, class string) (CI, error) {
	if name == "" {
		return CI{}, fmt.Errorf("%w: name", ErrMissingField)
	}
	if class == "" {
		class = "cmdb_ci"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ci := CI{SysID: newSysID(), Name: name, Class: class}
	s.cis[ci.SysID] = ci
	s.ciOrder = append(s.ciOrder, ci.SysID)
	ciCount.Set(float64(len(s.cis)))
	return ci, nil
}

// AddRel inserts a relationship between two existing CIs.
func (s *Store) AddRel(parentID, childID, typeLabel string) (Rel, error) {
	if parentID == "" {
		return Rel{}, fmt.Errorf("%w: parent", ErrMissingField)
	}
	if childID == "" {
		return Rel{}, fmt.Errorf("%w: child", ErrMissingField)
	}
	if typeLabel == "" {
		return Rel{}, fmt.Errorf("%w: type", ErrMissingField)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cis[parentID]; !ok {
		return Rel{}, fmt.Errorf("%w: parent %s", ErrNoSuchCI, parentID)
	}
	if _, ok := s.cis[childID]; !ok {
		return Rel{}, fmt.Errorf("%w: child %s", ErrNoSuchCI, childID)
	}

	typeID, ok := s.typeIDs[typeLabel]
	if !ok {
		typeID = newSysID()
		s.typeIDs[typeLabel] = typeID
	}

	rel := Rel{
		SysID:     newSysID(),
		ParentID:  parentID,
		ChildID:   childID,
		TypeID:    typeID,
		TypeLabel: typeLabel,
	}
	s.rels = append(s.rels, rel)
	relCount.Set(float64(len(s.rels)))
	return rel, nil
}

// row is one materialized table row: raw values plus display values.
type row struct {
	raw     map[string]string
	display map[string]string
}

// Rows materializes a table into query-ready rows in insertion order.
func (s *Store) Rows(table string) ([]row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch table {
	case "cmdb_ci":
		rows := make([]row, 0, len(s.ciOrder))
		for _, id := range s.ciOrder {
			ci := s.cis[id]
			raw := map[string]string{
				"sys_id":         ci.SysID,
				"name":           ci.Name,
				"sys_class_name": ci.Class,
			}
			rows = append(rows, row{raw: raw, display: raw})
		}
		return rows, nil
	case "cmdb_rel_ci":
		rows := make([]row, 0, len(s.rels))
		for _, r := range s.rels {
			rows = append(rows, row{
				raw: map[string]string{
					"sys_id": r.SysID,
					"parent": r.ParentID,
					"child":  r.ChildID,
					"type":   r.TypeID,
				},
				display: map[string]string{
					"sys_id": r.SysID,
					"parent": s.cis[r.ParentID].Name,
					"child":  s.cis[r.ChildID].Name,
					"type":   r.TypeLabel,
				},
			})
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
}
