package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/ghostkeys/internal/generator"
	"github.com/verte-zerg/ghostkeys/internal/keyboard"
	"github.com/verte-zerg/ghostkeys/internal/markup"
	"github.com/verte-zerg/ghostkeys/internal/playback"
	"github.com/verte-zerg/ghostkeys/internal/stats"
	"github.com/verte-zerg/ghostkeys/internal/wordlist"
)

const (
	defaultAnalyzeLang      = "en"
	defaultAnalyzeSentences = 40
)

var (
	analyzeFlags     typingFlags
	analyzeWordsFile string
	analyzeLang      string
	analyzeSentences int
	analyzeRecord    bool

	estimateFlags typingFlags
)

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Simulate a session without waiting and report its timing",
		Long: `Simulate typing a document on a virtual clock and report the
resulting speed, keystroke delay statistics and per-class delays.
Without a file a document is generated from a word list.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAnalyzeCmd,
	}
	addTypingFlags(cmd, &analyzeFlags)
	cmd.Flags().StringVar(&analyzeWordsFile, "words-file", "", "word list for generated text (default built-in)")
	cmd.Flags().StringVar(&analyzeLang, "lang", defaultAnalyzeLang, "word filter applied to --words-file")
	cmd.Flags().IntVar(&analyzeSentences, "sentences", defaultAnalyzeSentences, "sentences in generated text")
	cmd.Flags().BoolVar(&analyzeRecord, "record", false, "save the simulated session to history")
	return cmd
}

func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	cfg, err := analyzeFlags.resolve(cmd, fileCfg.Typing)
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "words-file", &analyzeWordsFile, fileCfg.Analyze.WordsFile)
	applyStringConfig(cmd, "lang", &analyzeLang, fileCfg.Analyze.Lang)
	applyIntConfig(cmd, "sentences", &analyzeSentences, fileCfg.Analyze.Sentences)
	if analyzeSentences <= 0 {
		return fmt.Errorf("--sentences must be > 0")
	}

	var text, source string
	if len(args) > 0 {
		if text, source, err = readSource(args); err != nil {
			return err
		}
	} else {
		if text, err = generateText(cfg.Seed); err != nil {
			return err
		}
		source = "generated"
	}

	logger, closeLog, err := newLogger(fileCfg)
	if err != nil {
		return err
	}
	defer closeLog()

	clock := &playback.VirtualClock{}
	collector := stats.NewCollector()
	ctrl := playback.New(playback.Options{
		Emitter: keyboard.Nop{},
		Logger:  logger,
		Sleeper: clock,
		OnKeystroke: func(ks playback.Keystroke) {
			collector.Observe(ks.Class.String(), ks.Delay)
		},
	})
	if err := ctrl.Start(text, cfg); err != nil {
		return fmt.Errorf("failed to start simulation: %w", err)
	}
	res := ctrl.Wait()

	analysis := stats.Analysis{
		Chars:       res.TypedChars,
		Elapsed:     clock.Elapsed(),
		Estimate:    playback.Estimate(text, cfg),
		Mistakes:    res.Mistakes,
		ThinkPauses: res.ThinkPauses,
		Delays:      collector.Delays(),
		Classes:     collector.Classes(classOrder()),
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Source:       %s\nTarget:       %.0f wpm\n", source, cfg.WPM); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderAnalysis(cmd.OutOrStdout(), analysis, stats.TerminalWidth(), stats.UseColor(os.Stdout)); err != nil {
		return fmt.Errorf("failed to write analysis: %w", err)
	}

	if analyzeRecord {
		// Simulated time replaces wall time so history reflects the model.
		res.EndedAt = res.StartedAt.Add(analysis.Elapsed)
		saveSession(context.Background(), logger, sessionRecord(res, cfg, source, "analyze"), analysis.Classes)
	}
	return nil
}

func generateText(seed int64) (string, error) {
	words := generator.DefaultWords()
	if analyzeWordsFile != "" {
		loaded, err := wordlist.LoadWords(analyzeWordsFile, wordlist.FilterForLang(analyzeLang))
		if err != nil {
			return "", fmt.Errorf("failed to load word list: %w", err)
		}
		words = loaded
	}
	var rnd *rand.Rand
	if seed != 0 {
		rnd = rand.New(rand.NewSource(seed))
	}
	opts := generator.DefaultOptions()
	opts.Sentences = analyzeSentences
	return generator.New(rnd).Document(words, opts), nil
}

func newEstimateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "estimate [file]",
		Short: "Estimate how long typing a document takes",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEstimateCmd,
	}
	addTypingFlags(cmd, &estimateFlags)
	return cmd
}

func runEstimateCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	cfg, err := estimateFlags.resolve(cmd, fileCfg.Typing)
	if err != nil {
		return err
	}
	text, _, err := readSource(args)
	if err != nil {
		return err
	}
	chars := markup.PlainTextLength(text)
	estimate := playback.Estimate(text, cfg)
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Characters: %d\nEstimated:  %s\n", chars, formatEstimate(estimate)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func formatEstimate(d time.Duration) string {
	if d < time.Minute {
		return d.Round(100 * time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse [file]",
		Short: "Print the instruction stream of a markup document",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runParseCmd,
	}
}

func runParseCmd(cmd *cobra.Command, args []string) error {
	text, _, err := readSource(args)
	if err != nil {
		return err
	}
	instructions := markup.Parse(text)
	out := cmd.OutOrStdout()
	for _, in := range instructions {
		if _, err := fmt.Fprintln(out, in.String()); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if _, err := fmt.Fprintf(out, "characters: %d\n", markup.Length(instructions)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
