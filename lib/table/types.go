// Package table implements the in-memory data pipeline behind a grid:
// filter, then sort, then paginate, plus the small state transitions a
// table UI needs (sort cycling, selection toggling, page clamping).
//
// Every function in this package is pure. Inputs are passed by value and
// new state is returned; nothing here holds locks or performs I/O.
package table

import (
	"fmt"
	"strings"
)

// DefaultPageSize is used when a pagination state carries a non-positive
// page size.
const DefaultPageSize = 10

// Operator is a filter comparison.
type Operator int

const (
	Contains Operator = iota
	Equals
	StartsWith
	EndsWith
	GreaterThan
	LessThan
)

var operatorNames = [...]string{
	Contains:    "contains",
	Equals:      "equals",
	StartsWith:  "starts_with",
	EndsWith:    "ends_with",
	GreaterThan: "gt",
	LessThan:    "lt",
}

func (op Operator) String() string {
	if op.Valid() {
		return operatorNames[op]
	}
	return fmt.Sprintf("unknown(%d)", int(op))
}

// Valid reports whether op is one of the defined operators.
func (op Operator) Valid() bool {
	return op >= 0 && int(op) < len(operatorNames)
}

// ParseOperator accepts the names produced by Operator.String as well as
// the symbolic forms "=", ">" and "<".
func ParseOperator(s string) (Operator, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "contains":
		return Contains, true
	case "equals", "eq", "=":
		return Equals, true
	case "starts_with", "startswith", "prefix":
		return StartsWith, true
	case "ends_with", "endswith", "suffix":
		return EndsWith, true
	case "gt", "greater_than", ">":
		return GreaterThan, true
	case "lt", "less_than", "<":
		return LessThan, true
	}
	return 0, false
}

// Direction is the sort direction of a column.
type Direction int

const (
	None Direction = iota
	Ascending
	Descending
)

func (d Direction) String() string {
	switch d {
	case None:
		return "none"
	case Ascending:
		return "asc"
	case Descending:
		return "desc"
	default:
		return fmt.Sprintf("unknown(%d)", int(d))
	}
}

// Valid reports whether d is None, Ascending or Descending.
func (d Direction) Valid() bool {
	return d >= None && d <= Descending
}

// ParseDirection parses "asc", "desc" or "none". Anything else is None.
func ParseDirection(s string) Direction {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending":
		return Ascending
	case "desc", "descending":
		return Descending
	default:
		return None
	}
}

// Column describes one displayable field.
type Column struct {
	Key      string
	Title    string
	Sortable bool
}

// FilterConfig is a predicate over one column. Inactive filters are ignored.
type FilterConfig struct {
	ColumnKey string
	Operator  Operator
	Value     string
	Active    bool
}

// Filter returns an active filter.
func Filter(key string, op Operator, value string) FilterConfig {
	return FilterConfig{ColumnKey: key, Operator: op, Value: value, Active: true}
}

// SortConfig is the single active sort key. Active mirrors
// Direction != None; use SortBy or Normalize to keep them in step.
type SortConfig struct {
	ColumnKey string
	Direction Direction
	Active    bool
}

// SortBy returns a sort config with Active derived from dir.
func SortBy(key string, dir Direction) SortConfig {
	return SortConfig{ColumnKey: key, Direction: dir, Active: dir != None}
}

// Normalize recomputes Active from Direction.
func (s SortConfig) Normalize() SortConfig {
	s.Active = s.Direction != None
	return s
}

// PaginationState holds the requested page. TotalPages is derived and is
// filled in by Compute and SetPage.
type PaginationState struct {
	CurrentPage int
	PageSize    int
	TotalPages  int
}

// Page returns a pagination state for the given page and size.
func Page(current, size int) PaginationState {
	return PaginationState{CurrentPage: current, PageSize: size, TotalPages: 1}
}

// Query bundles the three pipeline configs.
type Query struct {
	Filters []FilterConfig
	Sort    SortConfig
	Page    PaginationState
}
