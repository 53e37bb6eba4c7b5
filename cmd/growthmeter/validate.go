package main

import (
	"fmt"
	"os"

	"github.com/agencyos/growthmeter/adapters/sqlite"
	"github.com/agencyos/growthmeter/config"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration before deployment",
	Long: `Validate the growthmeter configuration file.

Checks:
  - YAML syntax is valid
  - Quota overrides name known tools and metrics
  - Database is writable (optional)

Examples:
  growthmeter validate
  growthmeter validate --config /etc/growthmeter/config.yaml`,
	RunE: runValidate,
}

var validateCheckDatabase bool

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateCheckDatabase, "check-database", false, "check if database is writable")
}

func runValidate(cmd *cobra.Command, args []string) error {
	fmt.Printf("Validating %s...\n\n", cfgFile)

	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		fmt.Printf("  %s Config file exists\n", crossMark)
		return fmt.Errorf("config file not found: %s", cfgFile)
	}
	fmt.Printf("  %s Config file exists\n", checkMark)

	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Printf("  %s Config syntax valid\n", crossMark)
		return fmt.Errorf("config error: %w", err)
	}
	fmt.Printf("  %s Config syntax valid\n", checkMark)

	fmt.Printf("  %s Server: %s:%d\n", checkMark, cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("  %s Database: %s\n", checkMark, cfg.Database.Path)
	fmt.Printf("  %s Retention: %d days\n", checkMark, cfg.Retention.Days)
	fmt.Printf("  %s Quota overrides: %d\n", checkMark, len(cfg.Quota.Overrides))

	if validateCheckDatabase {
		if err := checkDatabaseWritable(cfg.Database.Path); err != nil {
			fmt.Printf("  %s Database writable\n", crossMark)
			fmt.Printf("      Error: %v\n", err)
		} else {
			fmt.Printf("  %s Database writable\n", checkMark)
		}
	}

	fmt.Println()
	fmt.Println("Configuration is valid.")
	return nil
}

func checkDatabaseWritable(path string) error {
	db, err := sqlite.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()
	return nil
}

const (
	checkMark = "\033[32m✓\033[0m"
	crossMark = "\033[31m✗\033[0m"
)
