package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// predicate reports whether a row passes one compiled filter.
type predicate[R any] func(R) bool

// compileFilters resolves the active filters against the schema. Filters
// that cannot apply (unknown key, non-numeric value on a numeric field)
// compile to nothing, which lets every row through.
func compileFilters[R any](s *Schema[R], filters []FilterConfig) ([]predicate[R], []Diagnostic) {
	var (
		preds []predicate[R]
		diags []Diagnostic
	)
	for _, fc := range filters {
		if !fc.Active {
			continue
		}
		field, ok := s.Lookup(fc.ColumnKey)
		if !ok {
			diags = append(diags, Diagnostic{
				Code:      UnknownColumn,
				ColumnKey: fc.ColumnKey,
				Message:   "filter ignored",
			})
			continue
		}
		p, diag := compileFilter(field, fc)
		if diag != nil {
			diags = append(diags, *diag)
		}
		if p != nil {
			preds = append(preds, p)
		}
	}
	return preds, diags
}

func compileFilter[R any](f Field[R], fc FilterConfig) (predicate[R], *Diagnostic) {
	value := fc.Value

	switch fc.Operator {
	case Contains:
		return func(r R) bool { return strings.Contains(f.Text(r), value) }, nil
	case StartsWith:
		return func(r R) bool { return strings.HasPrefix(f.Text(r), value) }, nil
	case EndsWith:
		return func(r R) bool { return strings.HasSuffix(f.Text(r), value) }, nil
	}

	if !f.Kind.IsNumeric() {
		switch fc.Operator {
		case Equals:
			return func(r R) bool { return f.Text(r) == value }, nil
		case GreaterThan:
			return func(r R) bool { return f.Text(r) > value }, nil
		case LessThan:
			return func(r R) bool { return f.Text(r) < value }, nil
		}
		return nil, unknownOperator(fc)
	}

	n, ok := ParseNumber(value)
	if !ok {
		return nil, &Diagnostic{
			Code:      NonNumericValue,
			ColumnKey: fc.ColumnKey,
			Message:   fmt.Sprintf("%s %q is not a number, filter ignored", fc.Operator, value),
		}
	}
	if f.Kind == KindInt {
		if pred, ok := intPredicate(f, fc.Operator, strings.TrimSpace(value), n); ok {
			return pred, nil
		}
	}
	switch fc.Operator {
	case Equals:
		return func(r R) bool { v, _ := f.Number(r); return v == n }, nil
	case GreaterThan:
		return func(r R) bool { v, _ := f.Number(r); return v > n }, nil
	case LessThan:
		return func(r R) bool { v, _ := f.Number(r); return v < n }, nil
	}
	return nil, unknownOperator(fc)
}

// ParseNumber parses a decimal filter value. NaN, infinities and hex
// floats are not numbers here.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if strings.ContainsAny(s, "xX") {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// intPredicate compares an integer field without going through float64,
// so values above 2^53 stay exact. ok is false when n lies outside the
// int64 range and the float comparison is already exact.
func intPredicate[R any](f Field[R], op Operator, value string, n float64) (predicate[R], bool) {
	if i, err := strconv.ParseInt(value, 10, 64); err == nil {
		switch op {
		case Equals:
			return func(r R) bool { return f.i64(r) == i }, true
		case GreaterThan:
			return func(r R) bool { return f.i64(r) > i }, true
		case LessThan:
			return func(r R) bool { return f.i64(r) < i }, true
		}
		return nil, false
	}
	if n < math.MinInt64 || n >= math.MaxInt64 {
		return nil, false
	}
	switch op {
	case Equals:
		if n != math.Trunc(n) {
			return func(R) bool { return false }, true
		}
		i := int64(n)
		return func(r R) bool { return f.i64(r) == i }, true
	case GreaterThan:
		i := int64(math.Floor(n))
		return func(r R) bool { return f.i64(r) > i }, true
	case LessThan:
		i := int64(math.Ceil(n))
		return func(r R) bool { return f.i64(r) < i }, true
	}
	return nil, false
}

func unknownOperator(fc FilterConfig) *Diagnostic {
	return &Diagnostic{
		Code:      UnknownOperator,
		ColumnKey: fc.ColumnKey,
		Message:   fmt.Sprintf("operator %s not supported, filter ignored", fc.Operator),
	}
}

func applyFilters[R any](rows []R, preds []predicate[R]) []R {
	out := make([]R, 0, len(rows))
next:
	for _, r := range rows {
		for _, p := range preds {
			if !p(r) {
				continue next
			}
		}
		out = append(out, r)
	}
	return out
}
