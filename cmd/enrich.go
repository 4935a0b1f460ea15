package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/sells-group/prospect-cli/internal/pipeline"
	"github.com/sells-group/prospect-cli/internal/step"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Enrich accounts or contacts with warehouse stories",
}

var enrichAccountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Fill account stories from BigQuery",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEnrich(cmd, "enrich accounts",
			"Run a BigQuery story query for each selected account? This incurs query costs.",
			(*pipeline.Pipeline).EnrichAccounts)
	},
}

var enrichContactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Fill contact journeys from BigQuery",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEnrich(cmd, "enrich contacts",
			"Run a BigQuery journey query for each selected contact? This incurs query costs.",
			(*pipeline.Pipeline).EnrichContacts)
	},
}

func runEnrich(cmd *cobra.Command, name, question string, fn func(*pipeline.Pipeline, context.Context) (step.Summary, error)) error {
	if !confirm(question) {
		return nil
	}

	env, err := initEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	bq, err := env.BigQuery(cmd.Context())
	if err != nil {
		return err
	}

	p := pipeline.New(cfg, env.store, env.resolver, nil, nil, bq, nil)
	sum, err := fn(p, cmd.Context())
	if err != nil {
		return err
	}
	if err := env.store.Flush(); err != nil {
		return err
	}

	printSummary(name, sum)
	return nil
}

func init() {
	enrichCmd.AddCommand(enrichAccountsCmd, enrichContactsCmd)
	rootCmd.AddCommand(enrichCmd)
}
