package sim

import (
	"fmt"
	"strings"
)

// Condition is one comparison in an encoded query.
type Condition struct {
	Field string
	Op    string // "=" or "LIKE"
	Value string
	Or    bool // joined to the previous condition with OR instead of AND
}

// Query is a parsed encoded query, evaluated left to right.
type Query []Condition

// ParseQuery parses the encoded-query subset the simulator supports:
// conditions joined by ^ (AND) and ^OR, with = and LIKE operators.
func ParseQuery(encoded string) (Query, error) {
	if encoded == "" {
		return nil, nil
	}

	var q Query
	for i, tok := range strings.Split(encoded, "^") {
		or := false
		if rest, ok := strings.CutPrefix(tok, "OR"); ok && i > 0 {
			or = true
			tok = rest
		}

		cond, err := parseCondition(tok)
		if err != nil {
			return nil, err
		}
		cond.Or = or
		q = append(q, cond)
	}
	return q, nil
}

func parseCondition(tok string) (Condition, error) {
	if field, value, ok := strings.Cut(tok, "="); ok {
		if field == "" {
			return Condition{}, fmt.Errorf("condition %q has no field", tok)
		}
		return Condition{Field: field, Op: "=", Value: value}, nil
	}
	if field, value, ok := strings.Cut(tok, "LIKE"); ok && field != "" {
		return Condition{Field: field, Op: "LIKE", Value: value}, nil
	}
	return Condition{}, fmt.Errorf("cannot parse condition %q", tok)
}

// Match evaluates the query against a row's raw values, folding left to
// right: AND binds the running result, OR extends it.
func (q Query) Match(raw map[string]string) bool {
	if len(q) == 0 {
		return true
	}

	result := q[0].match(raw)
	for _, cond := range q[1:] {
		if cond.Or {
			result = result || cond.match(raw)
		} else {
			result = result && cond.match(raw)
		}
	}
	return result
}

func (c Condition) match(raw map[string]string) bool {
	v, ok := raw[c.Field]
	if !ok {
		return false
	}
	switch c.Op {
	case "=":
		return v == c.Value
	case "LIKE":
		return strings.Contains(strings.ToLower(v), strings.ToLower(c.Value))
	default:
		return false
	}
}
