package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
)

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.config/kanban/kanban.toml or OS-specific dir)
// 3. Project config file (kanban.toml or .kanban.toml in current directory)
// 4. Environment variables (KANBAN_*)
//
// CLI flags are bound on top by the cmd package after Load returns.
func Load() (*Config, error) {
	cfg := &Config{}

	// 1. Set defaults
	setDefaults(cfg)

	// 2. Try to load from user config file
	if userFile := findUserConfigFile(); userFile != "" {
		if err := loadConfigFile(cfg, userFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", userFile, err)
		}
	}

	// 3. Try to load from project config file (overrides user config)
	if projFile := findProjectConfigFile(); projFile != "" {
		if err := loadConfigFile(cfg, projFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", projFile, err)
		}
	}

	// 4. Override from environment
	loadFromEnv(cfg)

	// 5. Compute derived values
	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}

	return cfg, nil
}

// loadConfigFile loads TOML config from the given file.
func loadConfigFile(cfg *Config, path string) error {
	_, err := toml.DecodeFile(path, cfg)
	return err
}

// loadFromEnv overrides config from environment variables.
func loadFromEnv(cfg *Config) {
	if v := os.Getenv("KANBAN_VAULT"); v != "" {
		cfg.VaultDir = v
	}
	if v := os.Getenv("KANBAN_MARKER_KEY"); v != "" {
		cfg.MarkerKey = v
	}
	if v := os.Getenv("KANBAN_DONE_MARKER"); v != "" {
		cfg.DoneMarker = v
	}
	if v := os.Getenv("KANBAN_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("KANBAN_SCAN_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ScanConcurrency = n
		}
	}
}

// finalizeConfig computes derived values and validates paths.
func finalizeConfig(cfg *Config) error {
	cfg.VaultDir = expandPath(cfg.VaultDir)

	if !filepath.IsAbs(cfg.VaultDir) {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		cfg.VaultDir = filepath.Join(wd, cfg.VaultDir)
	}

	if cfg.ScanConcurrency <= 0 {
		cfg.ScanConcurrency = DefaultScanConcurrency
	}
	if utf8.RuneCountInString(cfg.DoneMarker) != 1 {
		return fmt.Errorf("done_marker must be a single character, got %q", cfg.DoneMarker)
	}

	return nil
}

// findUserConfigFile looks for the user-level config file.
func findUserConfigFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(dir, "kanban", "kanban.toml")
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

// findProjectConfigFile looks for a config file in the current
// directory.
func findProjectConfigFile() string {
	for _, name := range []string{"kanban.toml", ".kanban.toml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}
