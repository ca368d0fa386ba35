package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(languagesCmd)
}

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "Lists the languages the contest's submit form accepts.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		contest := configuredContest(cfg)
		client, closeSession := newClient(cfg)
		defer closeSession()

		languages, err := client.Languages(cmd.Context(), contest)
		if err != nil {
			fatal("listing languages failed", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"ID", "Name"})
		for _, lang := range languages {
			t.AppendRow(table.Row{lang.ID, lang.Name})
		}
		t.Render()
	},
}
