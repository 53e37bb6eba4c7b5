package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/agencyos/growthmeter/app"
	"github.com/agencyos/growthmeter/domain/budget"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var allocateCmd = &cobra.Command{
	Use:   "allocate",
	Short: "Compute a budget allocation across channels",
	Long: `Distribute a marketing budget across channels using one of the
allocation strategies: equal, weighted, performance, roi-optimized, growth.

Channels are read from a YAML file:

  channels:
    - name: google-ads
      weight: 3
      performance: 8.2
      roi: 160
    - name: newsletter
      weight: 1
      roi: 40

Examples:
  growthmeter allocate --budget=1000 --channels=channels.yaml
  growthmeter allocate --budget=5000 --channels=channels.yaml --mode=roi-optimized`,
	RunE: runAllocate,
}

var (
	allocateBudget   float64
	allocateMode     string
	allocateChannels string
)

func init() {
	rootCmd.AddCommand(allocateCmd)

	allocateCmd.Flags().Float64Var(&allocateBudget, "budget", 0, "total budget to distribute (required)")
	allocateCmd.Flags().StringVar(&allocateMode, "mode", string(budget.ModeEqual), "allocation mode")
	allocateCmd.Flags().StringVar(&allocateChannels, "channels", "", "YAML file with channel definitions (required)")
}

type channelFile struct {
	Channels []channelEntry `yaml:"channels"`
}

type channelEntry struct {
	Name         string  `yaml:"name"`
	Weight       float64 `yaml:"weight"`
	Performance  float64 `yaml:"performance"`
	ROI          float64 `yaml:"roi"`
	CurrentSpend float64 `yaml:"current_spend"`
	Conversions  float64 `yaml:"conversions"`
	CPA          float64 `yaml:"cpa"`
}

func runAllocate(cmd *cobra.Command, args []string) error {
	if allocateChannels == "" {
		return fmt.Errorf("--channels is required")
	}

	data, err := os.ReadFile(allocateChannels)
	if err != nil {
		return fmt.Errorf("read channels file: %w", err)
	}

	var file channelFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse channels file: %w", err)
	}

	channels := make([]budget.Channel, 0, len(file.Channels))
	for _, c := range file.Channels {
		channels = append(channels, budget.Channel{
			Name:         c.Name,
			Weight:       c.Weight,
			Performance:  c.Performance,
			ROI:          c.ROI,
			CurrentSpend: c.CurrentSpend,
			Conversions:  c.Conversions,
			CPA:          c.CPA,
		})
	}

	allocator := app.NewAllocatorService(zerolog.Nop(), nil)
	summary, err := allocator.Allocate(allocateBudget, channels, budget.Mode(allocateMode))
	if err != nil {
		return fmt.Errorf("allocation failed: %w", err)
	}

	fmt.Printf("Budget: $%.2f  Mode: %s\n\n", summary.TotalBudget, allocateMode)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CHANNEL\tAMOUNT\tPERCENT\tPRIORITY\tEXPECTED ROI")
	fmt.Fprintln(w, "-------\t------\t-------\t--------\t------------")
	for _, a := range summary.Allocations {
		fmt.Fprintf(w, "%s\t$%.2f\t%.2f%%\t%s\t%s\n",
			a.Channel, a.Amount, a.Percentage, a.Priority, a.ExpectedROI)
	}
	w.Flush()

	if len(summary.Insights) > 0 {
		fmt.Println("\nInsights:")
		for _, ins := range summary.Insights {
			fmt.Printf("  - %s\n", ins)
		}
	}
	if len(summary.RecommendedRebalancing) > 0 {
		fmt.Println("\nRebalancing:")
		for _, r := range summary.RecommendedRebalancing {
			fmt.Printf("  - %s\n", r)
		}
	}
	return nil
}
