package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/llehouerou/deck/internal/catalog"
	"github.com/llehouerou/deck/internal/logger"
	"github.com/llehouerou/deck/internal/media"
	"github.com/llehouerou/deck/internal/player"
	"github.com/llehouerou/deck/internal/tracks"
)

const probeLoadTimeout = 10 * time.Second

func init() {
	probeCmd.Flags().Bool("mpv", false, "Load the file in mpv to list embedded tracks")
}

var probeCmd = &cobra.Command{
	Use:   "probe <file>",
	Short: "Show the tracks and chapters deck resolves for a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger.Init(effectiveLogLevel(cfg), true, cmd.ErrOrStderr())

		item, err := catalog.New().Item(args[0])
		if err != nil {
			return err
		}

		var src tracks.Source = noTracks{}
		if lo.Must(cmd.Flags().GetBool("mpv")) {
			mpv := player.NewMPV(player.MPVOptions{Binary: cfg.Renderer.MPVPath})
			defer mpv.Close()
			d, err := loadForProbe(cmd.Context(), mpv, item.URI)
			if err != nil {
				return err
			}
			item.Duration = d
			src = mpv
		}

		opts := []tracks.Option{tracks.WithSubtitleExtensions(cfg.SubtitleExtensions())}
		if cfg.UseFFprobe() {
			opts = append(opts, tracks.WithProber(tracks.FFprobe{Path: cfg.Chapters.FFprobePath}))
		}
		r := tracks.NewResolver(opts...)

		t := r.ResolveTracks(src, item)
		chapters := r.ResolveChapters(cmd.Context(), src, item, item.Duration)
		printProbe(cmd.OutOrStdout(), item, t, chapters)
		return nil
	},
}

// loadForProbe loads source paused and waits for its duration.
func loadForProbe(ctx context.Context, r player.Renderer, source string) (time.Duration, error) {
	if err := r.Load(source); err != nil {
		return 0, err
	}
	_ = r.Pause()

	ctx, cancel := context.WithTimeout(ctx, probeLoadTimeout)
	defer cancel()
	for {
		select {
		case u := <-r.Updates():
			if u.Err != nil {
				return 0, u.Err
			}
			if u.Duration > 0 {
				return u.Duration, nil
			}
		case <-ctx.Done():
			return 0, fmt.Errorf("load %s: %w", source, ctx.Err())
		}
	}
}

// noTracks is the track source used without a renderer: only sidecar
// subtitles and probed chapters are found.
type noTracks struct{}

func (noTracks) Tracks() ([]media.Track, error) { return nil, nil }

func (noTracks) Chapters() ([]media.Chapter, error) { return nil, nil }

func (noTracks) SelectTrack(media.TrackType, *media.Track) error { return player.ErrUnsupported }

func printProbe(w io.Writer, item media.Item, t tracks.Tracks, chapters []media.Chapter) {
	info := table.NewWriter()
	info.SetOutputMirror(w)
	info.SetStyle(table.StyleLight)
	info.AppendRows([]table.Row{
		{"Title", item.DisplayTitle()},
		{"Artist", item.Artist},
		{"Album", item.Album},
		{"Kind", item.Kind},
		{"Duration", formatClock(item.Duration)},
		{"Path", item.URI},
	})
	info.Render()

	list := table.NewWriter()
	list.SetOutputMirror(w)
	list.SetStyle(table.StyleLight)
	list.SetTitle("Tracks")
	list.AppendHeader(table.Row{"", "Type", "ID", "Title", "Language", "Codec", "Source"})
	for _, typ := range []media.TrackType{media.TrackVideo, media.TrackAudio, media.TrackSubtitle} {
		for _, tr := range t.List(typ) {
			source := "embedded"
			if tr.External {
				source = tr.Path
			}
			list.AppendRow(table.Row{lo.Ternary(tr.Selected, "*", ""), typ, tr.ID, tr.Title, tr.Language, tr.Codec, source})
		}
	}
	if list.Length() == 0 {
		list.AppendRow(table.Row{"", "-", "none found", "", "", "", ""})
	}
	list.Render()

	ch := table.NewWriter()
	ch.SetOutputMirror(w)
	ch.SetStyle(table.StyleLight)
	ch.SetTitle("Chapters")
	ch.AppendHeader(table.Row{"#", "Title", "Start", "End"})
	for i, c := range chapters {
		ch.AppendRow(table.Row{i + 1, c.Title, formatClock(c.Start), formatClock(c.End)})
	}
	if len(chapters) == 0 {
		ch.AppendRow(table.Row{"-", "none found", "", ""})
	}
	ch.Render()
}

// formatClock renders d as h:mm:ss or m:ss; zero renders as "-".
func formatClock(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	d = d.Round(time.Second)
	h, m, s := int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

var _ tracks.Source = noTracks{}
