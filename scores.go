package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"termtris/leaderboard"
)

func newScoresCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scores",
		Short: "Show the leaderboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), cmd.Flags())
			if err != nil {
				return err
			}
			defer a.Close()
			if a.boardErr != nil {
				return a.boardErr
			}

			entries, err := a.board.Top(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintf(w, "No scores yet in %s\n", emph(a.board.ProviderName()))
				return nil
			}
			fmt.Fprintf(w, "Leaderboard from %s\n\n", emph(a.board.ProviderName()))
			printTable(w, []string{"#", "name", "score", "level", "lines", "time", "played"}, scoreRows(entries, time.Now()))
			return nil
		},
	}
}

func scoreRows(entries []leaderboard.Entry, now time.Time) [][]string {
	rows := make([][]string, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, []string{
			humanize.Ordinal(i + 1),
			e.Nickname,
			humanize.Comma(int64(e.Score)), //nolint:gosec
			strconv.FormatUint(uint64(e.Level), 10),
			strconv.FormatUint(uint64(e.Lines), 10),
			e.Duration.Round(time.Second).String(),
			humanize.RelTime(e.Timestamp, now, "ago", "from now"),
		})
	}
	return rows
}

func printTable(w io.Writer, header []string, data [][]string) {
	table := tablewriter.NewWriter(w)

	table.SetHeader(header)
	table.SetHeaderLine(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(true)

	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetColumnSeparator("  ")
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("     ")

	table.AppendBulk(data)

	table.Render()
}
