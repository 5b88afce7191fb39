package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	tea "charm.land/bubbletea/v2"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/andyrewlee/tprompt/internal/app"
	"github.com/andyrewlee/tprompt/internal/config"
	"github.com/andyrewlee/tprompt/internal/logging"
	"github.com/andyrewlee/tprompt/internal/prompter"
)

const keepLogFiles = 7

var errNotTerminal = errors.New("tprompt needs an interactive terminal")

type playFlags struct {
	clipboard bool
	speed     string
	id        string
	start     bool
}

func (f *playFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.clipboard, "clipboard", false, "Read the script from the clipboard")
	cmd.Flags().StringVar(&f.speed, "speed", "", "Reading speed for this run (slow, medium, fast)")
	cmd.Flags().StringVar(&f.id, "id", "", "Play a saved script by id or id prefix")
	cmd.Flags().BoolVar(&f.start, "start", false, "Start the countdown immediately")
}

func newPlayCommand(ctx *commandContext) *cobra.Command {
	var flags playFlags
	cmd := &cobra.Command{
		Use:   "play [file]",
		Short: "Open the teleprompter",
		Long: "Open the teleprompter with a markdown file, the clipboard, or a saved script.\n" +
			"A file given on the command line is reloaded whenever it is saved.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, ctx, flags, args)
		},
	}
	flags.register(cmd)
	return cmd
}

func runPlay(cmd *cobra.Command, ctx *commandContext, flags playFlags, args []string) error {
	if !shouldLaunchTUI(term.IsTerminal(os.Stdin.Fd()), term.IsTerminal(os.Stdout.Fd())) {
		return errNotTerminal
	}
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	opts, err := resolveSource(ctx, flags, args, clipboard.ReadAll)
	if err != nil {
		return err
	}

	initLogging(cfg)
	defer logging.Close()
	logging.Info("Starting tprompt %s", version)

	a, err := app.New(cfg, opts)
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	throttle := newMouseThrottle()
	if err := a.Run(runCtx, tea.WithFilter(throttle.filter)); err != nil {
		logging.Error("tprompt exited with error: %v", err)
		return err
	}
	logging.Info("tprompt shutdown complete")
	return nil
}

func shouldLaunchTUI(stdinIsTTY, stdoutIsTTY bool) bool {
	return stdinIsTTY && stdoutIsTTY
}

func initLogging(cfg *config.Config) {
	dir := cfg.Paths.LogsRoot
	if err := logging.Initialize(dir, logging.ParseLevel(cfg.LogLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not initialize logging: %v\n", err)
		return
	}
	if removed, err := logging.Prune(dir, keepLogFiles); err != nil {
		logging.Warn("prune logs: %v", err)
	} else if removed > 0 {
		logging.Debug("pruned %d old log files", removed)
	}
}

// resolveSource turns the play arguments into overlay options. At most one
// of a file, --clipboard and --id may be given; none opens an empty overlay.
func resolveSource(ctx *commandContext, flags playFlags, args []string, readClipboard func() (string, error)) (app.Options, error) {
	opts := app.Options{AutoStart: flags.start}

	if flags.speed != "" {
		preset, err := prompter.ParseSpeedPreset(flags.speed)
		if err != nil {
			return opts, err
		}
		opts.Speed = preset.String()
	}

	sources := 0
	if len(args) > 0 {
		sources++
	}
	if flags.clipboard {
		sources++
	}
	if flags.id != "" {
		sources++
	}
	if sources > 1 {
		return opts, errors.New("choose one of [file], --clipboard or --id")
	}

	switch {
	case len(args) > 0:
		path, err := filepath.Abs(args[0])
		if err != nil {
			return opts, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return opts, fmt.Errorf("read script: %w", err)
		}
		opts.Content = string(data)
		opts.SourcePath = path
	case flags.clipboard:
		content, err := readClipboard()
		if err != nil {
			return opts, fmt.Errorf("read clipboard: %w", err)
		}
		if strings.TrimSpace(content) == "" {
			return opts, errors.New("clipboard is empty")
		}
		opts.Content = content
	case flags.id != "":
		lib, err := ctx.library()
		if err != nil {
			return opts, err
		}
		entry, content, err := lib.Load(flags.id)
		if err != nil {
			return opts, err
		}
		opts.Content = content
		opts.ScriptID = entry.ID
		opts.SourcePath = lib.Path(entry.ID)
	}
	return opts, nil
}
