package configutil

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// localPath derives the override path for a config file, e.g.
// "contest-assist.json5" becomes "contest-assist.local.json5".
func localPath(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + ".local" + ext
}

func readInto[T any](path string, out *T) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	return true, json5.Unmarshal(data, out)
}

// reads a configuration file, `name` should come with a file extension.
// two files are consulted, where the second overrides the first:
// 1. <name>.<ext>
// 2. <name>.local.<ext>
func ReadConfig[T any](name string) (T, error) {
	var out T

	found, err := readInto(name, &out)
	if err != nil {
		return out, err
	}

	override := localPath(name)
	var local T
	foundLocal, err := readInto(override, &local)
	if err != nil {
		return out, err
	}
	if foundLocal {
		err = mergo.Merge(&out, local, mergo.WithOverride)
		if err != nil {
			return out, err
		}
		slog.Info("merging config with local overrides", "local", override)
	}

	if !found && !foundLocal {
		return out, fs.ErrNotExist
	}
	return out, nil
}

// ReadConfig but it walks up the filesystem from the working directory
// until a configuration file matching the name is found.
func ReadRecursively[T any](name string) (T, error) {
	var zero T

	current, err := os.Getwd()
	if err != nil {
		return zero, err
	}

	for {
		config, err := ReadConfig[T](filepath.Join(current, name))
		if err == nil {
			return config, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return zero, err
		}

		parent := filepath.Dir(current)
		if parent == current {
			return zero, fs.ErrNotExist
		}
		current = parent
	}
}
