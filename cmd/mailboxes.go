package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sells-group/prospect-cli/pkg/apollo"
)

var mailboxesCmd = &cobra.Command{
	Use:   "mailboxes",
	Short: "List Apollo sending mailboxes",
	Long: "Lists the email-sending mailboxes on the Apollo account, one id and " +
		"address per line, for filling in the Mailbox Mapping sheet.",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		ap, err := env.Apollo()
		if err != nil {
			return err
		}

		boxes, err := ap.ListMailboxes(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Print(formatMailboxes(boxes))
		return nil
	},
}

func formatMailboxes(boxes []apollo.Mailbox) string {
	if len(boxes) == 0 {
		return "No mailboxes configured in Apollo.\n"
	}
	var b strings.Builder
	for _, mb := range boxes {
		fmt.Fprintf(&b, "%s\t%s\n", mb.ID, mb.Email)
	}
	return b.String()
}

func init() {
	rootCmd.AddCommand(mailboxesCmd)
}
