package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/agencyos/growthmeter/adapters/clock"
	"github.com/agencyos/growthmeter/adapters/idgen"
	"github.com/agencyos/growthmeter/adapters/sqlite"
	"github.com/agencyos/growthmeter/app"
	"github.com/agencyos/growthmeter/config"
	"github.com/agencyos/growthmeter/domain/usage"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Inspect recorded usage",
	Long: `Inspect usage recorded in the metering ledger.

Examples:
  growthmeter usage summary --user=user_123
  growthmeter usage global
  growthmeter usage global --start=2026-08-01 --end=2026-09-01
  growthmeter usage cleanup`,
}

var usageSummaryCmd = &cobra.Command{
	Use:     "summary",
	Aliases: []string{"stats"},
	Short:   "Show month-to-date usage against each tool's primary ceiling",
	RunE:    runUsageSummary,
}

var usageGlobalCmd = &cobra.Command{
	Use:   "global",
	Short: "Show per-tool usage across all users",
	RunE:  runUsageGlobal,
}

var usageCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete usage events past the retention window",
	RunE:  runUsageCleanup,
}

var (
	usageUserID string
	usageStart  string
	usageEnd    string
)

func init() {
	rootCmd.AddCommand(usageCmd)

	usageCmd.AddCommand(usageSummaryCmd)
	usageCmd.AddCommand(usageGlobalCmd)
	usageCmd.AddCommand(usageCleanupCmd)

	usageSummaryCmd.Flags().StringVar(&usageUserID, "user", "", "user ID (required)")

	usageGlobalCmd.Flags().StringVar(&usageStart, "start", "", "window start (YYYY-MM-DD, inclusive)")
	usageGlobalCmd.Flags().StringVar(&usageEnd, "end", "", "window end (YYYY-MM-DD, exclusive)")
}

func newLedger(cfg *config.Config, db *sqlite.DB) (*app.LedgerService, error) {
	limits, err := cfg.Limits()
	if err != nil {
		return nil, err
	}
	return app.NewLedgerService(app.LedgerConfig{
		Store:     sqlite.NewUsageStore(db),
		Limits:    limits,
		Clock:     clock.Real{},
		IDs:       idgen.UUID{},
		Logger:    zerolog.Nop(),
		Retention: cfg.RetentionWindow(),
	}), nil
}

func runUsageSummary(cmd *cobra.Command, args []string) error {
	if usageUserID == "" {
		return fmt.Errorf("--user is required")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ledger, err := newLedger(cfg, db)
	if err != nil {
		return err
	}

	stats, err := ledger.UserUsageStats(context.Background(), usageUserID)
	if err != nil {
		return fmt.Errorf("failed to get usage stats: %w", err)
	}

	now := time.Now().UTC()
	start := usage.MonthStart(now)
	fmt.Printf("Usage for %s\n", usageUserID)
	fmt.Printf("Period: %s to %s\n\n", start.Format("2006-01-02"), now.Format("2006-01-02"))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TOOL\tUSAGE\tLIMIT\tPERCENT")
	fmt.Fprintln(w, "----\t-----\t-----\t-------")
	for _, tool := range usage.Tools() {
		s := stats[tool]
		fmt.Fprintf(w, "%s\t%d\t%d\t%.1f%%\n", tool, s.Usage, s.Limit, s.Percentage)
	}
	w.Flush()
	return nil
}

func runUsageGlobal(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ledger, err := newLedger(cfg, db)
	if err != nil {
		return err
	}

	var start, end *time.Time
	if usageStart != "" {
		t, err := time.Parse("2006-01-02", usageStart)
		if err != nil {
			return fmt.Errorf("invalid --start: %w", err)
		}
		start = &t
	}
	if usageEnd != "" {
		t, err := time.Parse("2006-01-02", usageEnd)
		if err != nil {
			return fmt.Errorf("invalid --end: %w", err)
		}
		end = &t
	}

	stats, err := ledger.GlobalUsageStats(context.Background(), start, end)
	if err != nil {
		return fmt.Errorf("failed to get global stats: %w", err)
	}

	if len(stats) == 0 {
		fmt.Println("No usage recorded.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TOOL\tTOTAL QUOTA\tEVENTS")
	fmt.Fprintln(w, "----\t-----------\t------")
	for _, s := range stats {
		fmt.Fprintf(w, "%s\t%d\t%d\n", s.Tool, s.TotalQuota, s.EventCount)
	}
	w.Flush()
	return nil
}

func runUsageCleanup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ledger, err := newLedger(cfg, db)
	if err != nil {
		return err
	}

	deleted, err := ledger.CleanupOldUsage(context.Background())
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}

	fmt.Printf("Deleted %d usage events older than %d days.\n", deleted, cfg.Retention.Days)
	return nil
}
