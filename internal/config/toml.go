// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/ghostkeys/internal/model"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Typing  TypingSection  `toml:"typing"`
	Analyze AnalyzeSection `toml:"analyze"`
	Log     LogSection     `toml:"log"`
}

// TypingSection maps playback settings. Durations are in seconds.
type TypingSection struct {
	WPM          *float64 `toml:"wpm"`
	ErrorRate    *float64 `toml:"error-rate"`
	BurstMin     *int     `toml:"burst-min"`
	BurstMax     *int     `toml:"burst-max"`
	ThinkMin     *float64 `toml:"think-min"`
	ThinkMax     *float64 `toml:"think-max"`
	MicroMin     *float64 `toml:"micro-min"`
	MicroMax     *float64 `toml:"micro-max"`
	Jitter       *float64 `toml:"jitter"`
	Countdown    *int     `toml:"countdown"`
	Seed         *int64   `toml:"seed"`
	DigraphsFile *string  `toml:"digraphs-file"`
}

// AnalyzeSection maps settings of the generated analysis text.
type AnalyzeSection struct {
	WordsFile *string `toml:"words-file"`
	Lang      *string `toml:"lang"`
	Sentences *int    `toml:"sentences"`
}

// LogSection maps logging settings.
type LogSection struct {
	Level      *string `toml:"level"`
	File       *string `toml:"file"`
	Format     *string `toml:"format"`
	Console    *bool   `toml:"console"`
	MaxSizeMB  *int    `toml:"max-size"`
	MaxBackups *int    `toml:"max-backups"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// ApplyLog overlays the file's log settings on cfg.
func (f FileConfig) ApplyLog(cfg model.LogConfig) model.LogConfig {
	l := f.Log
	if l.Level != nil {
		cfg.Level = *l.Level
	}
	if l.File != nil {
		cfg.File = *l.File
	}
	if l.Format != nil {
		cfg.Format = *l.Format
	}
	if l.Console != nil {
		cfg.Console = *l.Console
	}
	if l.MaxSizeMB != nil {
		cfg.MaxSizeMB = *l.MaxSizeMB
	}
	if l.MaxBackups != nil {
		cfg.MaxBackups = *l.MaxBackups
	}
	return cfg
}

// Template returns a commented configuration file listing every key with
// its default value.
func Template(typing model.TypingConfig, logCfg model.LogConfig) string {
	return fmt.Sprintf(`# ghostkeys configuration
# Uncomment a value to enable it. CLI flags override config values.

[typing]
# wpm = %.0f                # Target words per minute (%d-%d)
# error-rate = %.2f         # Probability of a mistyped letter (0-%.1f)
# burst-min = %d             # Fewest sentences between think pauses
# burst-max = %d             # Most sentences between think pauses
# think-min = %.1f           # Shortest think pause in seconds
# think-max = %.1f           # Longest think pause in seconds
# micro-min = %.2f          # Shortest micro pause in seconds
# micro-max = %.2f          # Longest micro pause in seconds
# jitter = %.2f             # Relative standard deviation of keystroke delays
# countdown = %d             # Seconds before typing starts
# seed = 0                  # Fixed random seed; 0 picks a new one per session
# digraphs-file = ""        # One fast two-letter pair per line

[analyze]
# words-file = ""           # Word list for generated text; built-in when empty
# lang = "en"               # Word filter for words-file
# sentences = 40            # Sentences in generated text

[log]
# level = %q            # debug, info, warn or error
# file = %q
# format = "json"           # json or console
# console = false           # Also log to stderr
# max-size = 5              # Megabytes before rotation
# max-backups = 3           # Rotated files to keep
`,
		typing.WPM, int(model.MinWPM), int(model.MaxWPM),
		typing.ErrorRate, model.MaxErrorRate,
		typing.BurstMin,
		typing.BurstMax,
		typing.ThinkPauseMin,
		typing.ThinkPauseMax,
		typing.MicroPauseMin,
		typing.MicroPauseMax,
		typing.JitterStdDev,
		typing.Countdown,
		logCfg.Level,
		logCfg.File,
	)
}
