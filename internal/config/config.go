// Package config handles configuration loading and defaults.
package config

import (
	"github.com/erduoya77/obsidian-kanban/internal/settings"
)

// Default values.
const (
	DefaultVaultDir        = "."
	DefaultMarkerKey       = "kanban-plugin"
	DefaultDateTrigger     = "@"
	DefaultTimeTrigger     = "@@"
	DefaultDateFormat      = "2006-01-02"
	DefaultTimeFormat      = "15:04"
	DefaultDoneMarker      = "x"
	DefaultScanConcurrency = 4
	DefaultLogLevel        = "info"
)

// Config holds the full configuration for the kanban tool.
type Config struct {
	// VaultDir is the aggregation root scanned for board documents.
	VaultDir string `toml:"vault_dir"`
	// MarkerKey is the frontmatter key marking aggregation roots.
	MarkerKey string `toml:"marker_key"`

	// Board option defaults; a document's settings footer overrides
	// them per document.
	DateTrigger       string `toml:"date_trigger"`
	TimeTrigger       string `toml:"time_trigger"`
	DateFormat        string `toml:"date_format"`
	TimeFormat        string `toml:"time_format"`
	MoveTags          bool   `toml:"move_tags"`
	MoveDates         bool   `toml:"move_dates"`
	MoveInlineFields  bool   `toml:"move_inline_fields"`
	DoneMarker        string `toml:"done_marker"`
	ArchiveWithDate   bool   `toml:"archive_with_date"`
	ArchiveDateFormat string `toml:"archive_date_format"`
	MaxArchiveSize    int    `toml:"max_archive_size"`

	// Scan settings
	ScanConcurrency int `toml:"scan_concurrency"`

	// Logging
	LogLevel string `toml:"log_level"`
}

// setDefaults fills a config with default values.
func setDefaults(cfg *Config) {
	cfg.VaultDir = DefaultVaultDir
	cfg.MarkerKey = DefaultMarkerKey
	cfg.DateTrigger = DefaultDateTrigger
	cfg.TimeTrigger = DefaultTimeTrigger
	cfg.DateFormat = DefaultDateFormat
	cfg.TimeFormat = DefaultTimeFormat
	cfg.DoneMarker = DefaultDoneMarker
	cfg.ArchiveDateFormat = DefaultDateFormat
	cfg.ScanConcurrency = DefaultScanConcurrency
	cfg.LogLevel = DefaultLogLevel
}

// BoardDefaults maps the config onto the settings resolver's default
// layer.
func (c *Config) BoardDefaults() map[string]any {
	return map[string]any{
		settings.KeyBoardMarker:       c.MarkerKey,
		settings.KeyDateTrigger:       c.DateTrigger,
		settings.KeyTimeTrigger:       c.TimeTrigger,
		settings.KeyDateFormat:        c.DateFormat,
		settings.KeyTimeFormat:        c.TimeFormat,
		settings.KeyMoveTags:          c.MoveTags,
		settings.KeyMoveDates:         c.MoveDates,
		settings.KeyMoveInlineFields:  c.MoveInlineFields,
		settings.KeyDoneMarker:        c.DoneMarker,
		settings.KeyArchiveWithDate:   c.ArchiveWithDate,
		settings.KeyArchiveDateFormat: c.ArchiveDateFormat,
		settings.KeyMaxArchiveSize:    c.MaxArchiveSize,
	}
}
