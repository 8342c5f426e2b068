package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/bdlm/log"
	"github.com/spf13/viper"

	"github.com/pthm/hxgrid"
	"github.com/pthm/hxgrid/lib/dataset"
	"github.com/pthm/hxgrid/lib/sqlsource"
	"github.com/pthm/hxgrid/lib/table"

	// SQL drivers selectable with sql.driver.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Config is the resolved hxgrid.yaml, overlaid with HXGRID_* environment
// variables and flags.
type Config struct {
	LogLevel string        `mapstructure:"log_level"`
	Key      string        `mapstructure:"key"`
	Addr     string        `mapstructure:"addr"`
	PageSize int           `mapstructure:"page_size"`
	Dataset  DatasetConfig `mapstructure:"dataset"`
	SQL      SQLConfig     `mapstructure:"sql"`
}

// DatasetConfig points at a data file.
type DatasetConfig struct {
	Path    string               `mapstructure:"path"`
	Columns []dataset.ColumnSpec `mapstructure:"columns"`
}

// SQLConfig points at a database table.
type SQLConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	Table  string `mapstructure:"table"`
}

func configure(v *viper.Viper, file string) error {
	v.SetDefault("log_level", "info")
	v.SetDefault("key", "")
	v.SetDefault("addr", ":8080")
	v.SetDefault("page_size", table.DefaultPageSize)
	v.SetDefault("dataset.path", "")
	v.SetDefault("sql.driver", "")
	v.SetDefault("sql.dsn", "")
	v.SetDefault("sql.table", "")

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("hxgrid")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("HXGRID")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	log.Debugf("using config file %s", v.ConfigFileUsed())
	return nil
}

func loadConfig(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = table.DefaultPageSize
	}
	return cfg, nil
}

// usesSQL reports whether the config selects a database table.
func (c Config) usesSQL() bool {
	return c.SQL.Driver != "" || c.SQL.DSN != "" || c.SQL.Table != ""
}

// Validate checks that exactly one data source is configured.
func (c Config) Validate() error {
	if len(c.Dataset.Columns) == 0 {
		return dataset.ErrNoColumns
	}
	switch {
	case c.usesSQL() && c.Dataset.Path != "":
		return errors.New("configure either dataset.path or sql, not both")
	case c.usesSQL():
		if c.SQL.Driver == "" || c.SQL.DSN == "" || c.SQL.Table == "" {
			return errors.New("sql.driver, sql.dsn and sql.table are all required")
		}
	case c.Dataset.Path == "":
		return errors.New("no data source: set dataset.path or sql.*")
	}
	return nil
}

// openSource returns the configured row source. For SQL sources the
// concrete *sqlsource.Source is returned too so callers can push queries
// down; it is nil for files.
func openSource(ctx context.Context, cfg Config) (hxgrid.RowSource[dataset.Record], *sqlsource.Source, func() error, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}
	if !cfg.usesSQL() {
		src := dataset.FileSource{Path: cfg.Dataset.Path, Columns: cfg.Dataset.Columns}
		return src, nil, func() error { return nil }, nil
	}

	src, err := sqlsource.Open(ctx, cfg.SQL.Driver, cfg.SQL.DSN, cfg.SQL.Table, cfg.Dataset.Columns)
	if err != nil {
		return nil, nil, nil, err
	}
	log.WithField("driver", cfg.SQL.Driver).Debugf("connected to table %s", cfg.SQL.Table)
	return src, src, src.Close, nil
}

func newEngine(cfg Config) (*table.Engine[dataset.Record], error) {
	schema, columns, err := dataset.SchemaFor(cfg.Dataset.Columns)
	if err != nil {
		return nil, err
	}
	return table.New(schema, columns...), nil
}
