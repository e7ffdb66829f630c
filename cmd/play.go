package cmd

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/llehouerou/deck/internal/logger"
	"github.com/llehouerou/deck/internal/stderr"
	"github.com/llehouerou/deck/internal/ui/playerview"
)

func init() {
	addPlayFlags(rootCmd)
	addPlayFlags(playCmd)
}

func addPlayFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("resume", "r", false, "Resume the saved queue when no paths are given")
	cmd.Flags().BoolP("shuffle", "s", false, "Shuffle the queue")
	cmd.Flags().String("repeat", "", "Repeat mode: off, all or one")
	cmd.Flags().Int("start", 0, "Queue index to start from")
	cmd.Flags().String("backend", "", "Renderer backend: auto, beep or mpv")
	cmd.Flags().Bool("no-history", false, "Do not record plays or save the session")
	cmd.Flags().Bool("notify", false, "Show desktop notifications for new items and failures")
	lo.Must0(cmd.RegisterFlagCompletionFunc("repeat", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"off", "all", "one"}, cobra.ShellCompDirectiveNoFileComp
	}))
	lo.Must0(cmd.RegisterFlagCompletionFunc("backend", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "beep", "mpv"}, cobra.ShellCompDirectiveNoFileComp
	}))
}

func playFlagsFrom(cmd *cobra.Command) sessionOptions {
	return sessionOptions{
		Backend: lo.Must(cmd.Flags().GetString("backend")),
		Resume:  lo.Must(cmd.Flags().GetBool("resume")),
		Start:   lo.Must(cmd.Flags().GetInt("start")),
		Shuffle: lo.Must(cmd.Flags().GetBool("shuffle")),
		Repeat:  lo.Must(cmd.Flags().GetString("repeat")),
		History: !lo.Must(cmd.Flags().GetBool("no-history")),
		Notify:  lo.Must(cmd.Flags().GetBool("notify")),
	}
}

var playCmd = &cobra.Command{
	Use:   "play [paths...]",
	Short: "Play files, directories or stream URLs in the terminal player",
	Example: "  deck play ~/Music/album\n" +
		"  deck play --shuffle --repeat all ~/Music\n" +
		"  deck play --resume",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd, args, playFlagsFrom(cmd))
	},
}

func runPlay(_ *cobra.Command, args []string, opts sessionOptions) error {
	if len(args) == 0 && !opts.Resume {
		return errors.New("nothing to play: pass files, directories or URLs, or --resume")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	// The terminal belongs to the UI: log to a file.
	logFile, err := logger.InitFile(effectiveLogLevel(cfg), cfg.Log.File)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	var lines <-chan string
	capture, err := stderr.Start()
	if err != nil {
		logger.Log.Warn().Err(err).Msg("stderr capture unavailable")
	} else {
		defer capture.Close()
		lines = capture.Lines()
	}

	s, err := openSession(cfg, args, opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			logger.Log.Warn().Err(err).Msg("session close")
		}
	}()
	if _, ok := s.engine.CurrentItem(); !ok {
		return errors.New("nothing to resume")
	}

	surf := s.Surface()
	defer surf.Close()

	model := playerview.New(surf, playerview.Options{Stderr: lines})
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("terminal UI: %w", err)
	}
	return nil
}
