package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/prospect-cli/internal/pipeline"
)

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Find Apollo contacts for selected accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirm("Search Apollo for contacts at every selected account? This may spend email-reveal credits.") {
			return nil
		}

		env, err := initEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		ap, err := env.Apollo()
		if err != nil {
			return err
		}

		p := pipeline.New(cfg, env.store, env.resolver, nil, ap, nil, nil)
		sum, err := p.DiscoverContacts(cmd.Context())
		if err != nil {
			return err
		}
		if err := env.store.Flush(); err != nil {
			return err
		}

		printSummary("contacts", sum)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(contactsCmd)
}
