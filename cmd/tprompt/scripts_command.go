package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/andyrewlee/tprompt/internal/script"
)

const shortIDLen = 8

func newScriptsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scripts",
		Short: "Manage saved scripts",
	}
	cmd.AddCommand(newScriptsListCommand(ctx))
	cmd.AddCommand(newScriptsAddCommand(ctx, clipboard.ReadAll))
	cmd.AddCommand(newScriptsShowCommand(ctx))
	cmd.AddCommand(newScriptsRemoveCommand(ctx))
	return cmd
}

func newScriptsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved scripts, most recently updated first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := ctx.library()
			if err != nil {
				return err
			}
			entries, err := lib.List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No saved scripts")
				return nil
			}
			fmt.Fprintln(out, renderScriptTable(entries))
			return nil
		},
	}
}

func renderScriptTable(entries []script.Entry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			shortID(e.ID),
			script.Truncate(e.Title, 40),
			script.Truncate(e.Preview, 48),
			humanize.Time(e.UpdatedAt),
		})
	}
	return renderTable(
		[]string{"ID", "Title", "Preview", "Updated"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
	)
}

func newScriptsAddCommand(ctx *commandContext, readClipboard func() (string, error)) *cobra.Command {
	var fromClipboard bool
	cmd := &cobra.Command{
		Use:   "add [file]",
		Short: "Save a script from a file, stdin (-) or the clipboard",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var content string
			switch {
			case fromClipboard && len(args) > 0:
				return errors.New("choose either a file or --clipboard")
			case fromClipboard:
				text, err := readClipboard()
				if err != nil {
					return fmt.Errorf("read clipboard: %w", err)
				}
				content = text
			case len(args) == 0:
				return errors.New("a file, - or --clipboard is required")
			case args[0] == "-":
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				content = string(data)
			default:
				data, err := os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("read script: %w", err)
				}
				content = string(data)
			}
			if strings.TrimSpace(content) == "" {
				return errors.New("script is empty")
			}

			lib, err := ctx.library()
			if err != nil {
				return err
			}
			entry, err := lib.Add(content)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %q as %s\n", entry.Title, shortID(entry.ID))
			return nil
		},
	}
	cmd.Flags().BoolVar(&fromClipboard, "clipboard", false, "Read the script from the clipboard")
	return cmd
}

func newScriptsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a saved script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := ctx.library()
			if err != nil {
				return err
			}
			_, content, err := lib.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), content)
			if !strings.HasSuffix(content, "\n") {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}
}

func newScriptsRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Delete a saved script",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := ctx.library()
			if err != nil {
				return err
			}
			entry, err := lib.Remove(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %q (%s)\n", entry.Title, shortID(entry.ID))
			return nil
		},
	}
}

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}
