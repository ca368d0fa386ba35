package commands

import (
	"contest-assist/lib/scrapers/atcoder"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(participateCmd)
}

var participateCmd = &cobra.Command{
	Use:   "participate <contest>",
	Short: "Registers for a contest, begun or not.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		client, closeSession := newClient(cfg)
		defer closeSession()

		contest := atcoder.ParseContest(args[0])
		if err := client.Participate(cmd.Context(), contest); err != nil {
			fatal("participation failed", err)
		}
	},
}
