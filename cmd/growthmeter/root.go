package main

import (
	"fmt"
	"os"

	"github.com/agencyos/growthmeter/adapters/sqlite"
	"github.com/agencyos/growthmeter/config"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "growthmeter",
	Short: "Usage metering ledger and budget allocation engine",
	Long: `Growthmeter meters free-tier usage across growth tools and answers
quota admission queries against monthly ceilings. It also recommends
marketing budget splits across channels.

Quick start:
  growthmeter serve     # Start the HTTP API server

Management:
  growthmeter usage     # Inspect recorded usage
  growthmeter quota     # Check quota headroom for a user
  growthmeter allocate  # Compute a budget allocation
  growthmeter validate  # Validate configuration`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	defaultConfig := "growthmeter.yaml"
	if v := os.Getenv("GROWTHMETER_CONFIG"); v != "" {
		defaultConfig = v
	}
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", defaultConfig, "config file path")
}

func loadConfig() (*config.Config, error) {
	return config.LoadWithFallback(cfgFile)
}

func openDatabase(cfg *config.Config) (*sqlite.DB, error) {
	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}
