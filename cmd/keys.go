package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sells-group/prospect-cli/internal/settings"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage the per-operator credentials file",
}

var keysSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store API credentials in the per-operator secrets file",
	Long: "Prompts for each API key and writes it to the credentials file. " +
		"Press enter without typing to keep the current value.",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.Workbook.SecretsPath
		if path == "" {
			var err error
			path, err = settings.DefaultSecretsPath()
			if err != nil {
				return err
			}
		}
		secrets, err := settings.LoadSecrets(path)
		if err != nil {
			return err
		}

		reader := bufio.NewReader(os.Stdin)
		for _, key := range settings.SecretKeys {
			current := "unset"
			if _, ok, _ := secrets.Lookup(key); ok {
				current = "set"
			}
			fmt.Printf("%s (%s): ", key, current)
			line, err := reader.ReadString('\n')
			if err != nil {
				return err
			}
			if line = strings.TrimSpace(line); line != "" {
				secrets.Set(key, line)
			}
		}

		if err := secrets.Save(); err != nil {
			return err
		}
		fmt.Printf("credentials written to %s\n", path)
		return nil
	},
}

func init() {
	keysCmd.AddCommand(keysSetCmd)
	rootCmd.AddCommand(keysCmd)
}
