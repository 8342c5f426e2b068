package main

import (
	"os"

	log "github.com/bdlm/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is set at build time.
var Version = "0.1.0"

var (
	cfgFile   string
	configErr error
)

var rootCmd = &cobra.Command{
	Use:   "hxgrid",
	Short: "Filter, sort and page tabular data",
	Long: `hxgrid works with tabular data held in files (CSV, JSON, YAML, Parquet)
or SQL tables.

It can generate grid schemas for tagged Go structs, print or export a
filtered and sorted view of a dataset, and serve a dataset as an htmx grid.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configErr != nil {
			return configErr
		}
		return setupLogging(viper.GetString("log_level"))
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./hxgrid.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warnf("loading .env: %v", err)
	}
	configErr = configure(viper.GetViper(), cfgFile)
}

func setupLogging(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetFormatter(&log.TextFormatter{ForceTTY: true})
	log.SetLevel(lvl)
	return nil
}
