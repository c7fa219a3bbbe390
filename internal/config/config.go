// Package config loads the optional aspid.toml / ~/.config/aspid/config.toml
// controlling REPL presentation and the random built-in's PRNG seed.
// Absence of a config file is not an error — Load returns defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// FileName is the project-local config file name, checked before the
// per-user config.
const FileName = "aspid.toml"

// Config controls the REPL's presentation and the random built-in's
// seed. Zero-value fields are never used directly — Default fills
// them in, and Load always starts from Default before unmarshaling so
// a config file that sets only one field leaves the rest at their
// defaults.
type Config struct {
	Prompt         string `toml:"prompt"`
	ContinuePrompt string `toml:"continue_prompt"`
	Color          bool   `toml:"color"`
	RandomSeed     int64  `toml:"random_seed"`
}

// Default returns the configuration used when no file is found.
func Default() Config {
	return Config{
		Prompt:         ">>> ",
		ContinuePrompt: "... ",
		Color:          true,
		RandomSeed:     0,
	}
}

// Load reads aspid.toml from dir (typically the working directory),
// falling back to ~/.config/aspid/config.toml, and falling back again
// to Default() if neither exists. An empty dir skips only the aspid.toml
// lookup. A malformed file
// that does exist is still an error — silence is reserved for
// "nothing found", not "found something broken".
func Load(dir string) (Config, error) {
	cfg := Default()

	path := findConfigFile(dir)
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

func findConfigFile(dir string) string {
	if dir != "" {
		local := filepath.Join(dir, FileName)
		if fileExists(local) {
			return local
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		perUser := filepath.Join(home, ".config", "aspid", "config.toml")
		if fileExists(perUser) {
			return perUser
		}
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
