package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/config"
)

var (
	cfg     *config.Config
	skipAsk bool
)

var rootCmd = &cobra.Command{
	Use:   "prospect-cli",
	Short: "Outbound prospecting workflow over the operator workbook",
	Long: "Pulls marked companies from HubSpot, finds contacts via Apollo, enriches both " +
		"with warehouse-derived stories, generates email sequences with Claude, and pushes " +
		"the results into the Apollo sequencer. Every step is an idempotent batch over the workbook.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&skipAsk, "yes", "y", false, "skip confirmation prompts")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
