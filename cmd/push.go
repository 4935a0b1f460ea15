package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/prospect-cli/internal/pipeline"
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Push generated messages into Apollo contact fields",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirm("Write generated subjects and bodies to Apollo custom fields?") {
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
		sum, err := p.PushMessages(cmd.Context())
		if err != nil {
			return err
		}
		if err := env.store.Flush(); err != nil {
			return err
		}

		printSummary("push", sum)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pushCmd)
}
