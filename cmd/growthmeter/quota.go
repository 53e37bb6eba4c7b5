package main

import (
	"context"
	"fmt"

	"github.com/agencyos/growthmeter/domain/usage"
	"github.com/spf13/cobra"
)

var quotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Check quota headroom for a user",
	Long: `Check whether a user has quota headroom for a metered action.

Examples:
  growthmeter quota check --user=user_123 --tool=experiments --action=create
  growthmeter quota check --user=user_123 --tool=seo --action=generate_brief --requested=3`,
}

var quotaCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Answer an admission query against the monthly ceiling",
	RunE:  runQuotaCheck,
}

var (
	quotaUserID    string
	quotaTool      string
	quotaAction    string
	quotaRequested int64
)

func init() {
	rootCmd.AddCommand(quotaCmd)
	quotaCmd.AddCommand(quotaCheckCmd)

	quotaCheckCmd.Flags().StringVar(&quotaUserID, "user", "", "user ID (required)")
	quotaCheckCmd.Flags().StringVar(&quotaTool, "tool", "", "tool name (required)")
	quotaCheckCmd.Flags().StringVar(&quotaAction, "action", "", "action name (required)")
	quotaCheckCmd.Flags().Int64Var(&quotaRequested, "requested", 1, "units requested")
}

func runQuotaCheck(cmd *cobra.Command, args []string) error {
	if quotaUserID == "" || quotaTool == "" || quotaAction == "" {
		return fmt.Errorf("--user, --tool and --action are required")
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

	result, err := ledger.CheckQuota(context.Background(), quotaUserID, usage.Tool(quotaTool), quotaAction, quotaRequested)
	if err != nil {
		return fmt.Errorf("quota check failed: %w", err)
	}

	verdict := "DENIED"
	if result.Allowed {
		verdict = "ALLOWED"
	}
	fmt.Printf("%s\n", verdict)
	fmt.Printf("  current:   %d\n", result.Current)
	fmt.Printf("  requested: %d\n", quotaRequested)
	fmt.Printf("  limit:     %d\n", result.Limit)
	fmt.Printf("  remaining: %d\n", result.Remaining)
	return nil
}
