package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/verte-zerg/ghostkeys/internal/keyboard"
	"github.com/verte-zerg/ghostkeys/internal/model"
	"github.com/verte-zerg/ghostkeys/internal/playback"
	"github.com/verte-zerg/ghostkeys/internal/stats"
	"github.com/verte-zerg/ghostkeys/internal/tui"
)

const (
	targetPreview = "preview"
	targetStdout  = "stdout"
	targetExec    = "exec"

	headingsSize  = "size"
	headingsPlain = "plain"

	trendWidth = 40
)

// Control bytes read from the raw terminal during exec playback.
const (
	ctrlC = 0x03
	ctrlP = 0x10
)

var (
	typeFlags    typingFlags
	typeTarget   string
	typeCommand  string
	typeNoRecord bool
	typeExit     bool
	typeHeadings string
)

func newTypeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ghostkeys [file]",
		Short: "Type a markup document with human-like timing",
		Long: `Type a markup document keystroke by keystroke with human-like timing.

Targets:
  preview  live preview in the terminal (p pause/resume, c cancel, q quit)
  stdout   plain text written to standard output (Ctrl+C cancels)
  exec     keystrokes sent to a command in a pseudo-terminal
           (Ctrl+P pause/resume, Ctrl+C cancel)`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTypeCmd,
	}
	addTypingFlags(cmd, &typeFlags)
	cmd.Flags().StringVar(&typeTarget, "target", targetPreview, "where keystrokes go: preview, stdout or exec")
	cmd.Flags().StringVar(&typeCommand, "command", "", "command for the exec target (default $SHELL)")
	cmd.Flags().BoolVar(&typeNoRecord, "no-record", false, "do not save the session to history")
	cmd.Flags().BoolVar(&typeExit, "exit", false, "close the preview when typing ends")
	cmd.Flags().StringVar(&typeHeadings, "headings", headingsSize, "heading style: size (font size shortcuts) or plain")
	return cmd
}

func runTypeCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	cfg, err := typeFlags.resolve(cmd, fileCfg.Typing)
	if err != nil {
		return err
	}
	switch typeTarget {
	case targetPreview, targetStdout, targetExec:
	default:
		return fmt.Errorf("--target must be one of %s, %s or %s", targetPreview, targetStdout, targetExec)
	}
	heading, err := headingStrategy(typeHeadings)
	if err != nil {
		return err
	}

	text, source, err := readSource(args)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(fileCfg)
	if err != nil {
		return err
	}
	defer closeLog()

	collector := stats.NewCollector()
	opts := playback.Options{
		Logger:  logger,
		Heading: heading,
		OnKeystroke: func(ks playback.Keystroke) {
			collector.Observe(ks.Class.String(), ks.Delay)
		},
	}

	var res playback.Result
	switch typeTarget {
	case targetPreview:
		res, err = runPreview(opts, text, cfg, source == "stdin")
	case targetStdout:
		res, err = runStdout(opts, text, cfg)
	case targetExec:
		res, err = runExec(opts, text, cfg, logger)
	}
	if err != nil {
		return err
	}
	if res.State == playback.Idle {
		logErrln("Typing did not start.")
		return nil
	}

	logErrf("%s: typed %d/%d chars in %s (%.1f wpm, %d mistakes, %d think pauses)\n",
		res.State, res.TypedChars, res.TotalChars, res.Elapsed().Round(time.Second),
		stats.EffectiveWPM(res.TypedChars, res.Elapsed()), res.Mistakes, res.ThinkPauses)
	if trend := stats.Trend(collector.Delays(), trendWidth); trend != "" {
		logErrf("delay trend [%s]\n", trend)
	}
	if !typeNoRecord {
		rec := sessionRecord(res, cfg, source, typeTarget)
		saveSession(context.Background(), logger, rec, collector.Classes(classOrder()))
	}
	return nil
}

func headingStrategy(name string) (playback.HeadingStrategy, error) {
	switch name {
	case headingsSize:
		return playback.DefaultHeadingStrategy(), nil
	case headingsPlain:
		return playback.PlainHeadings{}, nil
	}
	return nil, fmt.Errorf("--headings must be %s or %s", headingsSize, headingsPlain)
}

func runPreview(opts playback.Options, text string, cfg model.TypingConfig, stdinConsumed bool) (playback.Result, error) {
	bridge := tui.NewBridge()
	ctrl := playback.New(bridge.Hook(opts))
	m := tui.NewModel(ctrl, text, cfg, tui.Options{
		Countdown:    cfg.Countdown,
		Estimate:     playback.Estimate(text, cfg),
		ExitOnFinish: typeExit,
	})

	programOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if stdinConsumed {
		programOpts = append(programOpts, tea.WithInputTTY())
	}
	program := tea.NewProgram(m, programOpts...)
	bridge.Attach(program)
	_, runErr := program.Run()

	ctrl.Cancel()
	res := ctrl.Wait()
	if runErr != nil {
		return res, fmt.Errorf("failed to run preview: %w", runErr)
	}
	if err := m.Err(); err != nil {
		return res, err
	}
	return res, nil
}

func runStdout(opts playback.Options, text string, cfg model.TypingConfig) (playback.Result, error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := countdown(ctx, cfg.Countdown); err != nil {
		return playback.Result{}, nil
	}
	opts.Emitter = keyboard.NewWriterEmitter(os.Stdout)
	ctrl := playback.New(opts)
	if err := ctrl.Start(text, cfg); err != nil {
		return playback.Result{}, fmt.Errorf("failed to start playback: %w", err)
	}
	go func() {
		<-ctx.Done()
		ctrl.Cancel()
	}()
	res := ctrl.Wait()
	logErrln()
	return res, nil
}

func runExec(opts playback.Options, text string, cfg model.TypingConfig, logger *zap.Logger) (playback.Result, error) {
	command := typeCommand
	if command == "" {
		command = os.Getenv("SHELL")
	}
	if command == "" {
		command = "sh"
	}
	parts := strings.Fields(command)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := countdown(ctx, cfg.Countdown); err != nil {
		return playback.Result{}, nil
	}

	emitter, err := keyboard.StartPTY(parts[0], parts[1:]...)
	if err != nil {
		return playback.Result{}, err
	}
	defer func() {
		if cerr := emitter.Close(); cerr != nil {
			// Best-effort pty close.
			_ = cerr
		}
	}()

	stdinFd := int(os.Stdin.Fd())
	interactive := term.IsTerminal(stdinFd)
	if interactive {
		if err := emitter.InheritSize(os.Stdin); err != nil {
			logger.Debug("failed to copy terminal size", zap.Error(err))
		}
		oldState, err := term.MakeRaw(stdinFd)
		if err != nil {
			return playback.Result{}, fmt.Errorf("failed to enter raw mode: %w", err)
		}
		defer func() {
			if rerr := term.Restore(stdinFd, oldState); rerr != nil {
				// Best-effort terminal restore.
				_ = rerr
			}
		}()
	}

	opts.Emitter = emitter
	ctrl := playback.New(opts)
	if err := ctrl.Start(text, cfg); err != nil {
		return playback.Result{}, fmt.Errorf("failed to start playback: %w", err)
	}
	if interactive {
		// Never joined: the read blocks until the process exits.
		go forwardInput(os.Stdin, emitter, ctrl)
	}

	var res playback.Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := io.Copy(os.Stdout, emitter.Output())
		if err != nil && !errors.Is(err, syscall.EIO) && !errors.Is(err, os.ErrClosed) {
			return fmt.Errorf("failed to mirror command output: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		res = ctrl.Wait()
		return nil
	})
	g.Go(func() error {
		select {
		case <-emitter.Done():
		case <-gctx.Done():
			if cerr := emitter.Close(); cerr != nil {
				// Best-effort pty close on interrupt.
				_ = cerr
			}
		}
		ctrl.Cancel()
		return nil
	})
	err = g.Wait()
	if werr := emitter.Wait(); werr != nil {
		logger.Debug("command exited", zap.Error(werr))
	}
	return res, err
}

// forwardInput reads the user's raw keystrokes. While playback is active
// Ctrl+C cancels it, Ctrl+P toggles pause and other keys are dropped. Once
// playback is over every key goes to the command.
func forwardInput(r io.Reader, w io.Writer, ctrl *playback.Controller) {
	buf := make([]byte, 256)
	for {
		n, err := r.Read(buf)
		if err != nil {
			return
		}
		for _, b := range buf[:n] {
			if ctrl.State().Active() {
				switch b {
				case ctrlC:
					ctrl.Cancel()
				case ctrlP:
					if !ctrl.Pause() {
						ctrl.Resume()
					}
				}
				continue
			}
			if _, err := w.Write([]byte{b}); err != nil {
				return
			}
		}
	}
}

// countdown prints a countdown to stderr. It returns ctx.Err() when
// interrupted.
func countdown(ctx context.Context, seconds int) error {
	for i := seconds; i > 0; i-- {
		logErrf("\rTyping starts in %d… ", i)
		select {
		case <-ctx.Done():
			logErrln()
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
	if seconds > 0 {
		logErrf("\r%s\r", strings.Repeat(" ", 24))
	}
	return nil
}
