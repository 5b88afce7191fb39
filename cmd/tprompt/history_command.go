package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/andyrewlee/tprompt/internal/history"
	"github.com/andyrewlee/tprompt/internal/script"
)

const defaultHistoryLimit = 20

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent reading sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.history()
			if err != nil {
				return err
			}
			defer store.Close()

			sessions, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(sessions) == 0 {
				fmt.Fprintln(out, "No reading sessions yet")
				return nil
			}
			fmt.Fprintln(out, renderHistoryTable(sessions))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", defaultHistoryLimit, "Number of sessions to show (0 for all)")
	return cmd
}

func renderHistoryTable(sessions []history.Session) string {
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		done := ""
		if s.Completed {
			done = "✓"
		}
		rows = append(rows, []string{
			script.Truncate(s.Title, 40),
			s.Speed,
			humanize.Time(s.StartedAt),
			formatDuration(s.Duration()),
			fmt.Sprintf("%.0f%%", s.MaxProgress*100),
			done,
		})
	}
	return renderTable(
		[]string{"Title", "Speed", "Started", "Duration", "Reached", "Done"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
	)
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
}
