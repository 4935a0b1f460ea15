package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/prospect-cli/internal/pipeline"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate email sequences for selected contacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirm("Generate a three-email sequence for every selected contact? This spends model tokens.") {
			return nil
		}

		env, err := initEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		ai, err := env.Anthropic()
		if err != nil {
			return err
		}

		p := pipeline.New(cfg, env.store, env.resolver, nil, nil, nil, ai)
		sum, err := p.GenerateMessages(cmd.Context())
		if err != nil {
			return err
		}
		if err := env.store.Flush(); err != nil {
			return err
		}

		printSummary("generate", sum)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
}
