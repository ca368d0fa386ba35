package commands

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"contest-assist/internal/suitedb"
	"contest-assist/lib/scrapers/atcoder"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	downloadProblems *[]string
	downloadOpen     *bool
	downloadDb       *string
)

func init() {
	downloadProblems = downloadCmd.Flags().StringSliceP(
		"problem", "p", nil, "Problems to download; defaults to every task.")
	downloadOpen = downloadCmd.Flags().Bool(
		"open", false, "Open the task pages in the browser afterwards.")
	downloadDb = downloadCmd.Flags().String(
		"db", "", "Also archive the suites into this sqlite database.")
	rootCmd.AddCommand(downloadCmd)
}

// fileSuiteSink writes one JSON suite file per task under a directory.
type fileSuiteSink struct {
	dir string
}

func (s fileSuiteSink) SaveSuite(_ context.Context, _ atcoder.Contest, task atcoder.Task, suite atcoder.TestSuite) error {
	encoded, err := json.MarshalIndent(suite, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return err
	}
	name := strings.ToLower(task.Name) + ".json"
	return os.WriteFile(filepath.Join(s.dir, name), encoded, 0644)
}

type multiSuiteSink []atcoder.SuiteSink

func (m multiSuiteSink) SaveSuite(ctx context.Context, contest atcoder.Contest, task atcoder.Task, suite atcoder.TestSuite) error {
	for _, sink := range m {
		if err := sink.SaveSuite(ctx, contest, task, suite); err != nil {
			return err
		}
	}
	return nil
}

var downloadCmd = &cobra.Command{
	Use:   "download [-p <problem>]... [--open] [--db <path>]",
	Short: "Downloads the sample test suites of the configured contest.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		contest := configuredContest(cfg)
		client, closeSession := newClient(cfg)
		defer closeSession()

		sink := multiSuiteSink{fileSuiteSink{dir: cfg.SuiteDir}}
		if *downloadDb != "" {
			archive, err := suitedb.Open(*downloadDb)
			if err != nil {
				fatal("failed to open suite archive", err)
			}
			defer archive.Close()
			sink = append(sink, archive)
		}

		result, err := client.Download(cmd.Context(), atcoder.DownloadOptions{
			Contest:     contest,
			Problems:    upperNames(*downloadProblems),
			Sink:        sink,
			OpenBrowser: *downloadOpen,
		})
		if err != nil {
			fatal("download failed", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"Task", "Type", "Timelimit", "Samples"})
		for _, entry := range result.Suites {
			t.AppendRow(table.Row{
				entry.Task.Name,
				string(entry.Suite.Type),
				entry.Suite.Timelimit,
				len(entry.Suite.Samples),
			})
		}
		t.Render()
	},
}
