// Package sqlsource serves dataset records from a SQL table.
//
// Source.Rows loads the whole table and leaves filtering to the engine.
// Source.Page pushes filters, sort and pagination down into SQL built with
// squirrel, following the same fail-soft rules as the engine: unusable
// filters and sorts are skipped and reported as diagnostics.
package sqlsource

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/pthm/hxgrid/lib/dataset"
	"github.com/pthm/hxgrid/lib/table"
)

var (
	ErrNoIDColumn    = errors.New("sqlsource: an id column is required")
	ErrInvalidName   = errors.New("sqlsource: invalid identifier")
	ErrUnknownDriver = errors.New("sqlsource: unknown driver")
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// likeEscape is the LIKE escape character. It is not a backslash so the
// same clause works in every dialect.
const likeEscape = "!"

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// Dialect selects placeholder style and casts.
type Dialect string

const (
	Postgres Dialect = "postgres"
	MySQL    Dialect = "mysql"
	SQLite   Dialect = "sqlite"
)

// DialectFor maps a database/sql driver name to its dialect.
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	case "mysql":
		return MySQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
}

func (d Dialect) placeholder() squirrel.PlaceholderFormat {
	if d == Postgres {
		return squirrel.Dollar
	}
	return squirrel.Question
}

// text casts a column to a string type for LIKE matching.
func (d Dialect) text(col string) string {
	if d == MySQL {
		return "CAST(" + col + " AS CHAR)"
	}
	return "CAST(" + col + " AS TEXT)"
}

// Builder turns table queries into SQL for one table.
type Builder struct {
	table   string
	id      string
	specs   []dataset.ColumnSpec
	kinds   map[string]table.Kind
	sorting map[string]bool
	dialect Dialect
	qb      squirrel.StatementBuilderType
}

// NewBuilder validates the table and column names. Column keys are used as
// SQL column names; exactly one spec must be marked ID.
func NewBuilder(tableName string, specs []dataset.ColumnSpec, d Dialect) (*Builder, error) {
	if !identRe.MatchString(tableName) {
		return nil, fmt.Errorf("%w: table %q", ErrInvalidName, tableName)
	}
	schema, cols, err := dataset.SchemaFor(specs)
	if err != nil {
		return nil, err
	}

	b := &Builder{
		table:   tableName,
		specs:   specs,
		kinds:   make(map[string]table.Kind, len(specs)),
		sorting: make(map[string]bool, len(specs)),
		dialect: d,
		qb:      squirrel.StatementBuilder.PlaceholderFormat(d.placeholder()),
	}
	for _, c := range cols {
		if !identRe.MatchString(c.Key) {
			return nil, fmt.Errorf("%w: column %q", ErrInvalidName, c.Key)
		}
		f, _ := schema.Lookup(c.Key)
		b.kinds[c.Key] = f.Kind
		b.sorting[c.Key] = c.Sortable
	}
	for _, s := range specs {
		if s.ID {
			b.id = s.Key
		}
	}
	if b.id == "" {
		return nil, ErrNoIDColumn
	}
	return b, nil
}

func (b *Builder) columnNames() []string {
	names := make([]string, len(b.specs))
	for i, s := range b.specs {
		names[i] = s.Key
	}
	return names
}

// All selects every row ordered by id.
func (b *Builder) All() squirrel.SelectBuilder {
	return b.qb.Select(b.columnNames()...).From(b.table).OrderBy(b.id)
}

// Count selects the number of rows matching q's filters.
func (b *Builder) Count(q table.Query) (squirrel.SelectBuilder, []table.Diagnostic) {
	where, diags := b.where(q.Filters)
	return filtered(b.qb.Select("COUNT(*)").From(b.table), where), diags
}

// Select builds the page query for q. A page size <= 0 counts as
// table.DefaultPageSize and pages below 1 as the first page.
func (b *Builder) Select(q table.Query) (squirrel.SelectBuilder, []table.Diagnostic) {
	where, diags := b.where(q.Filters)
	sel := filtered(b.qb.Select(b.columnNames()...).From(b.table), where)

	order, sortDiags := b.orderBy(q.Sort)
	diags = append(diags, sortDiags...)
	sel = sel.OrderBy(order...)

	size := q.Page.PageSize
	if size <= 0 {
		size = table.DefaultPageSize
	}
	// Clamp so the offset stays within int; any such page is past the end.
	page := min(max(q.Page.CurrentPage, 1), math.MaxInt/size+1)
	sel = sel.Limit(uint64(size)).Offset(uint64((page - 1) * size))
	return sel, diags
}

func filtered(sel squirrel.SelectBuilder, where squirrel.And) squirrel.SelectBuilder {
	if len(where) == 0 {
		return sel
	}
	return sel.Where(where)
}

func (b *Builder) orderBy(sc table.SortConfig) ([]string, []table.Diagnostic) {
	sc = sc.Normalize()
	if !sc.Active {
		return []string{b.id}, nil
	}
	sortable, known := b.sorting[sc.ColumnKey]
	switch {
	case !known:
		return []string{b.id}, []table.Diagnostic{{Code: table.UnknownColumn, ColumnKey: sc.ColumnKey, Message: "sort ignored"}}
	case !sortable:
		return []string{b.id}, []table.Diagnostic{{Code: table.NotSortable, ColumnKey: sc.ColumnKey, Message: "sort ignored"}}
	}

	dir := "ASC"
	if sc.Direction == table.Descending {
		dir = "DESC"
	}
	if sc.ColumnKey == b.id {
		return []string{b.id + " " + dir}, nil
	}
	return []string{sc.ColumnKey + " " + dir, b.id}, nil
}

// where compiles active filters into a conjunction. Filters that cannot be
// applied are skipped with a diagnostic.
func (b *Builder) where(filters []table.FilterConfig) (squirrel.And, []table.Diagnostic) {
	and := squirrel.And{}
	var diags []table.Diagnostic
	for _, f := range filters {
		if !f.Active {
			continue
		}
		kind, ok := b.kinds[f.ColumnKey]
		if !ok {
			diags = append(diags, table.Diagnostic{Code: table.UnknownColumn, ColumnKey: f.ColumnKey, Message: "filter ignored"})
			continue
		}
		cond, diag := b.condition(f, kind)
		if diag != nil {
			diags = append(diags, *diag)
			continue
		}
		and = append(and, cond)
	}
	return and, diags
}

func (b *Builder) condition(f table.FilterConfig, kind table.Kind) (squirrel.Sqlizer, *table.Diagnostic) {
	col := f.ColumnKey
	like := func(pattern string) squirrel.Sqlizer {
		target := col
		if kind.IsNumeric() {
			target = b.dialect.text(col)
		}
		return squirrel.Expr(target+" LIKE ? ESCAPE '"+likeEscape+"'", pattern)
	}

	switch f.Operator {
	case table.Contains:
		return like("%" + likeEscaper.Replace(f.Value) + "%"), nil
	case table.StartsWith:
		return like(likeEscaper.Replace(f.Value) + "%"), nil
	case table.EndsWith:
		return like("%" + likeEscaper.Replace(f.Value)), nil
	case table.Equals, table.GreaterThan, table.LessThan:
	default:
		return nil, &table.Diagnostic{
			Code:      table.UnknownOperator,
			ColumnKey: col,
			Message:   fmt.Sprintf("operator %s not supported, filter ignored", f.Operator),
		}
	}

	var value any = f.Value
	if kind.IsNumeric() {
		n, ok := table.ParseNumber(f.Value)
		if !ok {
			return nil, &table.Diagnostic{
				Code:      table.NonNumericValue,
				ColumnKey: col,
				Message:   fmt.Sprintf("%s %q is not a number, filter ignored", f.Operator, f.Value),
			}
		}
		value = n
		// Integer columns bind int64 so large ids compare exactly.
		if kind == table.KindInt {
			if i, err := strconv.ParseInt(strings.TrimSpace(f.Value), 10, 64); err == nil {
				value = i
			}
		}
	}

	switch f.Operator {
	case table.GreaterThan:
		return squirrel.Gt{col: value}, nil
	case table.LessThan:
		return squirrel.Lt{col: value}, nil
	default:
		return squirrel.Eq{col: value}, nil
	}
}
