package main

import (
	"fmt"
	"os"

	"github.com/agencyos/growthmeter/bootstrap"
	"github.com/spf13/cobra"
)

var hotReload bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the metering API server",
	Long: `Start the growthmeter HTTP server.

The server will:
  - Load configuration from growthmeter.yaml (or --config)
  - Apply GROWTHMETER_* environment variable overrides
  - Open the SQLite event store and run migrations
  - Serve the usage, quota and budget endpoints
  - Purge usage events past the retention window on a schedule

Environment variables (for Docker deployments):
  GROWTHMETER_SERVER_HOST      - Bind host (default: 0.0.0.0)
  GROWTHMETER_SERVER_PORT      - Server port (default: 8080)
  GROWTHMETER_DATABASE_PATH    - Database path (default: growthmeter.db)
  GROWTHMETER_RETENTION_DAYS   - Event retention in days (default: 90)
  GROWTHMETER_LOG_LEVEL        - Log level: debug, info, warn, error
  GROWTHMETER_LOG_FORMAT       - Log format: json or text
  GROWTHMETER_METRICS_ENABLED  - Expose /metrics (default: true)

Examples:
  growthmeter serve
  growthmeter serve --config /etc/growthmeter/config.yaml
  growthmeter serve --hot-reload=false`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&hotReload, "hot-reload", true, "enable hot reload of configuration")
}

func runServe(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if _, err := os.Stat(path); err != nil {
		fmt.Println("Running with defaults and environment variables (no config file)")
		path = ""
	}

	app, err := bootstrap.New(bootstrap.Options{
		ConfigPath:  path,
		WatchConfig: hotReload,
	})
	if err != nil {
		return fmt.Errorf("error initializing: %w", err)
	}

	return app.Run()
}
