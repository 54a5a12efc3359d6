// Package main provides the CLI entrypoint for ghostkeys.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/verte-zerg/ghostkeys/internal/config"
	"github.com/verte-zerg/ghostkeys/internal/logging"
	"github.com/verte-zerg/ghostkeys/internal/model"
	"github.com/verte-zerg/ghostkeys/internal/playback"
	"github.com/verte-zerg/ghostkeys/internal/store"
	"github.com/verte-zerg/ghostkeys/internal/timing"
	"github.com/verte-zerg/ghostkeys/internal/wordlist"
)

const (
	defaultLogLevel  = "info"
	defaultLogFormat = "json"
)

// typingFlags holds the typing settings shared by the commands that play or
// simulate a document.
type typingFlags struct {
	wpm          float64
	errorRate    float64
	burstMin     int
	burstMax     int
	thinkMin     float64
	thinkMax     float64
	microMin     float64
	microMax     float64
	jitter       float64
	countdown    int
	seed         int64
	digraphsFile string
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := newTypeCmd()

	rootCmd.AddCommand(newEstimateCmd())
	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func addTypingFlags(cmd *cobra.Command, f *typingFlags) {
	d := model.DefaultTypingConfig()
	flags := cmd.Flags()
	flags.Float64Var(&f.wpm, "wpm", d.WPM, fmt.Sprintf("target words per minute (%d-%d)", model.MinWPM, model.MaxWPM))
	flags.Float64Var(&f.errorRate, "error-rate", d.ErrorRate, "probability of a mistyped letter (0-0.1)")
	flags.IntVar(&f.burstMin, "burst-min", d.BurstMin, "fewest sentences between think pauses")
	flags.IntVar(&f.burstMax, "burst-max", d.BurstMax, "most sentences between think pauses")
	flags.Float64Var(&f.thinkMin, "think-min", d.ThinkPauseMin, "shortest think pause in seconds")
	flags.Float64Var(&f.thinkMax, "think-max", d.ThinkPauseMax, "longest think pause in seconds")
	flags.Float64Var(&f.microMin, "micro-min", d.MicroPauseMin, "shortest micro pause in seconds")
	flags.Float64Var(&f.microMax, "micro-max", d.MicroPauseMax, "longest micro pause in seconds")
	flags.Float64Var(&f.jitter, "jitter", d.JitterStdDev, "relative standard deviation of keystroke delays")
	flags.IntVar(&f.countdown, "countdown", d.Countdown, "seconds to wait before typing starts")
	flags.Int64Var(&f.seed, "seed", 0, "random seed; 0 picks a new one per session")
	flags.StringVar(&f.digraphsFile, "digraphs-file", "", "file with one fast two-letter pair per line")
}

// resolve merges config file values under explicitly set flags and
// validates the result.
func (f *typingFlags) resolve(cmd *cobra.Command, file config.TypingSection) (model.TypingConfig, error) {
	applyFloatConfig(cmd, "wpm", &f.wpm, file.WPM)
	applyFloatConfig(cmd, "error-rate", &f.errorRate, file.ErrorRate)
	applyIntConfig(cmd, "burst-min", &f.burstMin, file.BurstMin)
	applyIntConfig(cmd, "burst-max", &f.burstMax, file.BurstMax)
	applyFloatConfig(cmd, "think-min", &f.thinkMin, file.ThinkMin)
	applyFloatConfig(cmd, "think-max", &f.thinkMax, file.ThinkMax)
	applyFloatConfig(cmd, "micro-min", &f.microMin, file.MicroMin)
	applyFloatConfig(cmd, "micro-max", &f.microMax, file.MicroMax)
	applyFloatConfig(cmd, "jitter", &f.jitter, file.Jitter)
	applyIntConfig(cmd, "countdown", &f.countdown, file.Countdown)
	applyInt64Config(cmd, "seed", &f.seed, file.Seed)
	applyStringConfig(cmd, "digraphs-file", &f.digraphsFile, file.DigraphsFile)

	cfg := model.TypingConfig{
		WPM:           f.wpm,
		ErrorRate:     f.errorRate,
		BurstMin:      f.burstMin,
		BurstMax:      f.burstMax,
		ThinkPauseMin: f.thinkMin,
		ThinkPauseMax: f.thinkMax,
		MicroPauseMin: f.microMin,
		MicroPauseMax: f.microMax,
		JitterStdDev:  f.jitter,
		Countdown:     f.countdown,
		Seed:          f.seed,
	}
	if f.digraphsFile != "" {
		pairs, err := wordlist.LoadDigraphs(f.digraphsFile)
		if err != nil {
			return model.TypingConfig{}, fmt.Errorf("failed to load digraphs: %w", err)
		}
		cfg.Digraphs = pairs
	}
	if err := cfg.Validate(); err != nil {
		return model.TypingConfig{}, fmt.Errorf("invalid typing settings: %w", err)
	}
	return cfg, nil
}

func loadFileConfig() (config.FileConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	return fileCfg, nil
}

// newLogger builds the file logger described by the config. The returned
// function flushes it.
func newLogger(fileCfg config.FileConfig) (*zap.Logger, func(), error) {
	logCfg := fileCfg.ApplyLog(model.LogConfig{
		Level:  defaultLogLevel,
		File:   config.DefaultLogPath(),
		Format: defaultLogFormat,
	})
	logger, closeLog, err := logging.New(logCfg, os.Stderr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	return logger, func() {
		if cerr := closeLog(); cerr != nil {
			// Best-effort log flush on exit.
			_ = cerr
		}
	}, nil
}

// readSource returns the document to type and a label for it. Without a
// path, or with "-", the document is read from piped stdin.
func readSource(args []string) (string, string, error) {
	if len(args) == 0 || args[0] == "-" {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return "", "", fmt.Errorf("no input: pass a file or pipe text on stdin")
		}
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), "stdin", nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	return string(data), args[0], nil
}

func classOrder() []string {
	classes := timing.Classes()
	names := make([]string, len(classes))
	for i, c := range classes {
		names[i] = c.String()
	}
	return names
}

func sessionRecord(res playback.Result, cfg model.TypingConfig, source, target string) model.SessionRecord {
	outcome := model.OutcomeCompleted
	if res.State == playback.Cancelled {
		outcome = model.OutcomeCancelled
	}
	return model.SessionRecord{
		StartedAt:   res.StartedAt,
		EndedAt:     res.EndedAt,
		Outcome:     outcome,
		Source:      source,
		Target:      target,
		WPM:         cfg.WPM,
		ErrorRate:   cfg.ErrorRate,
		TotalChars:  res.TotalChars,
		TypedChars:  res.TypedChars,
		Mistakes:    res.Mistakes,
		ThinkPauses: res.ThinkPauses,
		DurationMs:  res.Elapsed().Milliseconds(),
	}
}

// saveSession stores a finished session. Failures are reported but never
// fail the command.
func saveSession(ctx context.Context, logger *zap.Logger, rec model.SessionRecord, classes []model.ClassAggregate) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		logErrf("failed to open db: %v\n", err)
		return
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	id, err := st.InsertSession(ctx, rec, classes)
	if err != nil {
		logErrf("failed to save session: %v\n", err)
		return
	}
	logger.Info("session saved", zap.String("id", id), zap.String("outcome", rec.Outcome))
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
