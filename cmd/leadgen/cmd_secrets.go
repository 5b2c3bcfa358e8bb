package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"leadgen-engine/internal/secrets"
)

var secretsCmd = &cobra.Command{
	Use:   "secrets",
	Short: "Manage API keys in the OS keychain",
}

var secretsSetCmd = &cobra.Command{
	Use:   "set <search|llm>",
	Short: "Store an API key (read from stdin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		account := secretAccount(args[0])

		fmt.Fprintf(cmd.ErrOrStderr(), "%s key: ", account)
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && strings.TrimSpace(line) == "" {
			return fmt.Errorf("read key: %w", err)
		}
		if err := secrets.Set(account, line); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "stored %s key in keychain service %q\n", account, secrets.KeyringService)
		return nil
	},
}

var secretsDeleteCmd = &cobra.Command{
	Use:   "delete <search|llm>",
	Short: "Remove an API key from the keychain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return secrets.Delete(secretAccount(args[0]))
	},
}

// secretAccount accepts provider names as aliases for the account.
func secretAccount(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "serper", "duckduckgo", secrets.AccountSearch:
		return secrets.AccountSearch
	case "groq", "openai", "openrouter", secrets.AccountLLM:
		return secrets.AccountLLM
	}
	return name
}

func init() {
	secretsCmd.AddCommand(secretsSetCmd)
	secretsCmd.AddCommand(secretsDeleteCmd)
}
