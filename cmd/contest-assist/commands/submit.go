package commands

import (
	"errors"
	"fmt"
	"strings"

	"contest-assist/lib/scrapers/atcoder"

	"github.com/spf13/cobra"
)

var (
	submitLanguage   *string
	submitSrc        *string
	submitSkipChecks *bool
	submitOpen       *bool
)

func init() {
	submitLanguage = submitCmd.Flags().StringP(
		"language", "l", "", "Language name from the config; defaults to the configured one.")
	submitSrc = submitCmd.Flags().String(
		"src", "", "Source file; defaults to the language's src template.")
	submitSkipChecks = submitCmd.Flags().Bool(
		"skip-checks", false, "Skip the contest-phase and already-accepted guards.")
	submitOpen = submitCmd.Flags().Bool(
		"open", false, "Open your submissions page afterwards.")
	rootCmd.AddCommand(submitCmd)
}

var submitCmd = &cobra.Command{
	Use:   "submit <problem>",
	Short: "Submits a solution to the configured contest.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		contest := configuredContest(cfg)
		problem := strings.ToUpper(args[0])

		name := *submitLanguage
		if name == "" {
			name = cfg.Language
		}
		if name == "" {
			fatal("no language selected", errors.New(
				`set "language" in contest-assist.json5 or pass --language`))
		}
		lang, ok := cfg.Languages[name]
		if !ok {
			fatal("unknown language", fmt.Errorf(
				"%q has no entry under \"languages\"", name))
		}

		source := *submitSrc
		if source == "" && lang.Src != "" {
			source = strings.ReplaceAll(lang.Src, "{}", strings.ToLower(problem))
		}
		if source == "" {
			fatal("no source file", fmt.Errorf(
				"language %q has no src template and --src was not given", name))
		}

		client, closeSession := newClient(cfg)
		defer closeSession()

		err := client.Submit(cmd.Context(), atcoder.SubmitOptions{
			Contest:     contest,
			Problem:     problem,
			LanguageID:  lang.ID,
			SourcePath:  source,
			SkipChecks:  *submitSkipChecks,
			OpenBrowser: *submitOpen,
		})
		if err != nil {
			fatal("submit failed", err)
		}
	},
}
