package commands

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(loginCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Logs into atcoder.jp and saves the session cookies.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		client, closeSession := newClient(cfg)
		defer closeSession()

		if err := client.Login(cmd.Context()); err != nil {
			fatal("login failed", err)
		}
	},
}
