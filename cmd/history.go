package cmd

import (
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/llehouerou/deck/internal/state"
)

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of entries to show")
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently played items",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := state.Open()
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.Recent(cmd.Context(), lo.Must(cmd.Flags().GetInt("limit")))
		if err != nil {
			return err
		}
		printHistory(cmd.OutOrStdout(), entries, time.Now())
		return nil
	},
}

func printHistory(w io.Writer, entries []state.HistoryEntry, now time.Time) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Title", "Artist", "Kind", "Plays", "Position", "Played"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Title", WidthMax: 48},
		{Name: "Plays", Align: text.AlignRight},
		{Name: "Position", Align: text.AlignRight},
	})

	for _, e := range entries {
		position := formatClock(e.LastPosition)
		if d := e.Item.Duration; d > 0 && e.LastPosition > 0 {
			position += " / " + formatClock(d)
		}
		t.AppendRow(table.Row{
			e.Item.DisplayTitle(),
			e.Item.Artist,
			e.Item.Kind,
			e.PlayCount,
			position,
			humanize.RelTime(e.LastPlayedAt, now, "ago", "from now"),
		})
	}
	if len(entries) == 0 {
		t.AppendRow(table.Row{"no plays recorded yet", "", "", "", "", ""})
	}
	t.Render()
}
