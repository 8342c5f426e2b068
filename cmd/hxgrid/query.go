package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	log "github.com/bdlm/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pthm/hxgrid/lib/dataset"
	"github.com/pthm/hxgrid/lib/table"
)

// queryFlags are shared by query and export.
type queryFlags struct {
	filters []string
	sort    string
	page    int
	size    int
}

func (f *queryFlags) register(cmd *cobra.Command, paged bool) {
	cmd.Flags().StringArrayVarP(&f.filters, "filter", "f", nil, `filter as column:operator:value, e.g. "age:gt:30" (repeatable)`)
	cmd.Flags().StringVarP(&f.sort, "sort", "s", "", `sort as column[:asc|desc], e.g. "name:desc"`)
	if paged {
		cmd.Flags().IntVarP(&f.page, "page", "p", 1, "page number, starting at 1")
		cmd.Flags().IntVar(&f.size, "size", 0, "page size (default is page_size from config)")
	}
}

// query builds the table query described by the flags.
func (f *queryFlags) query(defaultSize int) (table.Query, error) {
	var q table.Query
	for _, raw := range f.filters {
		fc, err := parseFilter(raw)
		if err != nil {
			return q, err
		}
		q.Filters = append(q.Filters, fc)
	}
	sc, err := parseSort(f.sort)
	if err != nil {
		return q, err
	}
	q.Sort = sc

	size := f.size
	if size <= 0 {
		size = defaultSize
	}
	q.Page = table.Page(f.page, size)
	return q, nil
}

// parseFilter parses column:operator:value. The value may contain colons.
func parseFilter(s string) (table.FilterConfig, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 || parts[0] == "" {
		return table.FilterConfig{}, fmt.Errorf("invalid filter %q: want column:operator:value", s)
	}
	op, ok := table.ParseOperator(parts[1])
	if !ok {
		return table.FilterConfig{}, fmt.Errorf("invalid filter %q: unknown operator %q", s, parts[1])
	}
	return table.Filter(parts[0], op, parts[2]), nil
}

// parseSort parses column[:direction]. An empty string means no sort.
func parseSort(s string) (table.SortConfig, error) {
	if s == "" {
		return table.SortConfig{}, nil
	}
	key, dir, found := strings.Cut(s, ":")
	if key == "" {
		return table.SortConfig{}, fmt.Errorf("invalid sort %q", s)
	}
	if !found {
		return table.SortBy(key, table.Ascending), nil
	}
	d := table.ParseDirection(dir)
	if d == table.None && dir != "none" {
		return table.SortConfig{}, fmt.Errorf("invalid sort %q: direction must be asc or desc", s)
	}
	return table.SortBy(key, d), nil
}

// queryPage is the result of running a query against the configured source.
type queryPage struct {
	rows        []dataset.Record
	total       int
	state       table.PaginationState
	diagnostics []table.Diagnostic
}

// runQuery computes q against the configured source. SQL sources run the
// query in the database unless all is set, in which case every filtered
// row is returned.
func runQuery(ctx context.Context, cfg Config, engine *table.Engine[dataset.Record], q table.Query, all bool) (queryPage, error) {
	src, db, closeFn, err := openSource(ctx, cfg)
	if err != nil {
		return queryPage{}, err
	}
	defer closeFn()

	if db != nil && !all {
		res, err := db.Page(ctx, q)
		if err != nil {
			return queryPage{}, err
		}
		return queryPage{rows: res.Rows, total: res.Total, state: res.Page, diagnostics: res.Diagnostics}, nil
	}

	rows, err := src.Rows(ctx)
	if err != nil {
		return queryPage{}, err
	}
	view := engine.Compute(rows, q)
	out := queryPage{rows: view.Rows, total: view.FilteredCount(), state: view.Page, diagnostics: view.Diagnostics}
	if all {
		out.rows = view.Filtered
	}
	return out, nil
}

func printDiagnostics(diags []table.Diagnostic) {
	for _, d := range diags {
		log.WithField("code", d.Code.String()).Debug(d.Message)
		color.Yellow("! %s", d)
	}
}

// printTable writes rows as aligned text columns.
func printTable(w io.Writer, columns []table.Column, rows []dataset.Record) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	bold := color.New(color.Bold)

	titles := make([]string, len(columns))
	for i, c := range columns {
		titles[i] = bold.Sprint(c.Title)
	}
	fmt.Fprintln(tw, strings.Join(titles, "\t"))

	for _, r := range rows {
		cells := make([]string, len(columns))
		for i, c := range columns {
			cells[i] = fmt.Sprint(r.Values[c.Key])
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

var queryOpts queryFlags

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Print one page of the configured dataset",
	Long: `Query filters, sorts and pages the configured dataset and prints the
visible page. Problems with the query (unknown columns, non-numeric values,
out of range pages) are reported as warnings and the rest of the query still
runs.

Example:
  hxgrid query -f age:gt:30 -f name:contains:a -s name:desc -p 2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		engine, err := newEngine(cfg)
		if err != nil {
			return err
		}
		q, err := queryOpts.query(cfg.PageSize)
		if err != nil {
			return err
		}

		res, err := runQuery(cmd.Context(), cfg, engine, q, false)
		if err != nil {
			return err
		}

		printDiagnostics(res.diagnostics)
		if err := printTable(os.Stdout, engine.Columns(), res.rows); err != nil {
			return err
		}
		color.Cyan("page %d of %d (%d matching rows)", res.state.CurrentPage, res.state.TotalPages, res.total)
		return nil
	},
}

func init() {
	queryOpts.register(queryCmd, true)
	rootCmd.AddCommand(queryCmd)
}
