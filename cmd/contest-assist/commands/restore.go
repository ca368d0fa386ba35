package commands

import (
	"os"
	"path/filepath"
	"strings"

	"contest-assist/lib/scrapers/atcoder"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var restoreProblems *[]string

func init() {
	restoreProblems = restoreCmd.Flags().StringSliceP(
		"problem", "p", nil, "Problems to restore; defaults to every task.")
	rootCmd.AddCommand(restoreCmd)
}

// configSourceSink resolves destinations through the "languages" table
// of the config; languages without an entry are skipped by Restore.
type configSourceSink struct {
	languages map[string]LanguageConfig
}

func (s configSourceSink) PathFor(languageID, taskName string) (string, bool) {
	for _, lang := range s.languages {
		if lang.ID == languageID && lang.Src != "" {
			return strings.ReplaceAll(lang.Src, "{}", strings.ToLower(taskName)), true
		}
	}
	return "", false
}

func (s configSourceSink) WriteSource(path string, code []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, code, 0644)
}

var restoreCmd = &cobra.Command{
	Use:   "restore [-p <problem>]...",
	Short: "Restores the most recently submitted source of each task.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		contest := configuredContest(cfg)
		client, closeSession := newClient(cfg)
		defer closeSession()

		result, err := client.Restore(cmd.Context(), atcoder.RestoreOptions{
			Contest:  contest,
			Problems: upperNames(*restoreProblems),
			Sink:     configSourceSink{languages: cfg.Languages},
		})
		if err != nil {
			fatal("restore failed", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"Task", "Language", "Path"})
		for _, entry := range result.Saved {
			t.AppendRow(table.Row{entry.TaskName, entry.Language, entry.Path})
		}
		t.Render()
	},
}
