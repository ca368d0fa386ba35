package commands

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"contest-assist/lib/configutil"
	"contest-assist/lib/scrapers/atcoder"
)

// LanguageConfig binds a language name from the config to the site's
// language id and a source path template in which "{}" stands for the
// lowercased task name.
type LanguageConfig struct {
	ID  string `json:"id"`
	Src string `json:"src"`
}

type Config struct {
	Contest        string                    `json:"contest"`
	CookieFile     string                    `json:"cookie_file"`
	UserAgent      string                    `json:"user_agent"`
	TimeoutSeconds int                       `json:"timeout_seconds"`
	SuiteDir       string                    `json:"suite_dir"`
	Language       string                    `json:"language"`
	Languages      map[string]LanguageConfig `json:"languages"`
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// loadConfig reads contest-assist.json5 from the working directory or
// the nearest ancestor holding one. A missing file is fine, the
// defaults cover everything but the contest.
func loadConfig() Config {
	cfg, err := configutil.ReadRecursively[Config]("contest-assist.json5")
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		fatal("failed to read config", err)
	}
	if cfg.CookieFile == "" {
		cfg.CookieFile = "~/.local/share/contest-assist/cookies.json"
	}
	if cfg.SuiteDir == "" {
		cfg.SuiteDir = "tests"
	}
	if cfg.TimeoutSeconds == 0 {
		cfg.TimeoutSeconds = 30
	}
	return cfg
}

func configuredContest(cfg Config) atcoder.Contest {
	if cfg.Contest == "" {
		fatal("no contest configured", errors.New(`set "contest" in contest-assist.json5`))
	}
	return atcoder.ParseContest(cfg.Contest)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
