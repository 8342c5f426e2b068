package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pthm/hxgrid/lib/export"
)

var (
	exportOpts   queryFlags
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the filtered and sorted dataset",
	Long: `Export writes every row that passes the filters, in sort order, as CSV,
JSON or Parquet. Pagination does not apply.

Examples:
  hxgrid export -f age:gt:30 -s age:desc > older.csv
  hxgrid export --format parquet -o people.parquet`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := export.ParseFormat(exportFormat)
		if err != nil {
			return err
		}
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		engine, err := newEngine(cfg)
		if err != nil {
			return err
		}
		q, err := exportOpts.query(cfg.PageSize)
		if err != nil {
			return err
		}

		res, err := runQuery(cmd.Context(), cfg, engine, q, true)
		if err != nil {
			return err
		}
		printDiagnostics(res.diagnostics)

		var w io.Writer = os.Stdout
		if exportOut != "" {
			f, err := os.Create(exportOut)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		} else if format == export.FormatParquet {
			return fmt.Errorf("parquet output needs --out")
		}

		if err := export.Write(w, format, engine.Schema(), engine.Columns(), res.rows); err != nil {
			return err
		}
		if exportOut != "" {
			color.Green("✓ wrote %d rows to %s", len(res.rows), exportOut)
		}
		return nil
	},
}

func init() {
	exportOpts.register(exportCmd, false)
	exportOpts.page = 1
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "output format (csv, json, parquet)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default is stdout)")
	rootCmd.AddCommand(exportCmd)
}
