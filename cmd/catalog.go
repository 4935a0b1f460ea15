package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/prospect-cli/internal/pipeline"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Rebuild the Content Library from the blog",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirm("Clear the Content Library and rebuild it from scratch? This takes a while.") {
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
		sum, err := p.RebuildCatalog(cmd.Context())
		if err != nil {
			return err
		}
		if err := env.store.Flush(); err != nil {
			return err
		}

		printSummary("catalog", sum)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}
