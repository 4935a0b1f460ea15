package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/prospect-cli/internal/pipeline"
)

var sequenceCmd = &cobra.Command{
	Use:   "sequence",
	Short: "Add pushed contacts to the Apollo sequence",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirm("Add every pushed contact to the outreach sequence? Emails may start sending.") {
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
		sum, err := p.SequenceContacts(cmd.Context())
		if err != nil {
			return err
		}
		if err := env.store.Flush(); err != nil {
			return err
		}

		printSummary("sequence", sum)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sequenceCmd)
}
