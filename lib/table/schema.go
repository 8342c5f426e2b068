package table

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// Kind is the value kind of a field and decides how filters and sorting
// compare it.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// ParseKind maps "string", "int" and "float" (and a few aliases) to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "string", "text", "":
		return KindString, true
	case "int", "integer", "int64":
		return KindInt, true
	case "float", "number", "float64", "decimal":
		return KindFloat, true
	}
	return 0, false
}

// IsNumeric reports whether values of this kind compare numerically.
func (k Kind) IsNumeric() bool {
	return k == KindInt || k == KindFloat
}

// Field is a typed accessor for one column of row type R.
type Field[R any] struct {
	Key  string
	Kind Kind

	str func(R) string
	i64 func(R) int64
	f64 func(R) float64
}

// String declares a string field.
func String[R any](key string, get func(R) string) Field[R] {
	return Field[R]{Key: key, Kind: KindString, str: get}
}

// Int declares an integer field.
func Int[R any](key string, get func(R) int64) Field[R] {
	return Field[R]{Key: key, Kind: KindInt, i64: get}
}

// Float declares a floating point field.
func Float[R any](key string, get func(R) float64) Field[R] {
	return Field[R]{Key: key, Kind: KindFloat, f64: get}
}

// Text returns the display form of the field for row r.
func (f Field[R]) Text(r R) string {
	switch f.Kind {
	case KindInt:
		return strconv.FormatInt(f.i64(r), 10)
	case KindFloat:
		return strconv.FormatFloat(f.f64(r), 'f', -1, 64)
	default:
		return f.str(r)
	}
}

// Number returns the numeric value of the field. ok is false for string
// fields.
func (f Field[R]) Number(r R) (float64, bool) {
	switch f.Kind {
	case KindInt:
		return float64(f.i64(r)), true
	case KindFloat:
		return f.f64(r), true
	default:
		return 0, false
	}
}

// Value returns the typed value of the field: string, int64 or float64
// according to Kind.
func (f Field[R]) Value(r R) any {
	switch f.Kind {
	case KindInt:
		return f.i64(r)
	case KindFloat:
		return f.f64(r)
	default:
		return f.str(r)
	}
}

// Compare orders a and b by the field's natural order: lexicographic for
// strings, numeric otherwise.
func (f Field[R]) Compare(a, b R) int {
	switch f.Kind {
	case KindInt:
		return cmp.Compare(f.i64(a), f.i64(b))
	case KindFloat:
		return cmp.Compare(f.f64(a), f.f64(b))
	default:
		return strings.Compare(f.str(a), f.str(b))
	}
}

// Schema is the registry of field accessors for a row type, resolved once
// and shared by every computation.
type Schema[R any] struct {
	id     func(R) int64
	fields map[string]Field[R]
	order  []string
}

// NewSchema builds a schema. id extracts the stable row identifier.
// Panics on a duplicate field key or a nil id accessor; both are
// programmer errors caught at startup.
func NewSchema[R any](id func(R) int64, fields ...Field[R]) *Schema[R] {
	if id == nil {
		panic("table: schema requires an id accessor")
	}
	s := &Schema[R]{
		id:     id,
		fields: make(map[string]Field[R], len(fields)),
	}
	for _, f := range fields {
		if _, exists := s.fields[f.Key]; exists {
			panic(fmt.Sprintf("table: duplicate field key %q", f.Key))
		}
		s.fields[f.Key] = f
		s.order = append(s.order, f.Key)
	}
	return s
}

// ID returns the identifier of r.
func (s *Schema[R]) ID(r R) int64 {
	return s.id(r)
}

// Lookup returns the field registered under key.
func (s *Schema[R]) Lookup(key string) (Field[R], bool) {
	f, ok := s.fields[key]
	return f, ok
}

// Keys returns the field keys in declaration order.
func (s *Schema[R]) Keys() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Columns derives a column per field, titled by key and sortable.
func (s *Schema[R]) Columns() []Column {
	cols := make([]Column, 0, len(s.order))
	for _, k := range s.order {
		cols = append(cols, Column{Key: k, Title: k, Sortable: true})
	}
	return cols
}
