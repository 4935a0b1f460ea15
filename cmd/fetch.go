package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/prospect-cli/internal/pipeline"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch marked HubSpot companies into the Accounts sheet",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirm("Fetch marked companies from HubSpot and upsert the Accounts sheet?") {
			return nil
		}

		env, err := initEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		hs, err := env.HubSpot()
		if err != nil {
			return err
		}

		p := pipeline.New(cfg, env.store, env.resolver, hs, nil, nil, nil)
		sum, err := p.FetchAccounts(cmd.Context())
		if err != nil {
			return err
		}
		if err := env.store.Flush(); err != nil {
			return err
		}

		printSummary("fetch", sum)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}
