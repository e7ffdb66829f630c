// Package cmd implements the deck command-line interface.
package cmd

import (
	"fmt"
	"os"
	"strings"

	cc "github.com/ivanpirog/coloredcobra"
	"github.com/spf13/cobra"

	"github.com/llehouerou/deck/internal/config"
	"github.com/llehouerou/deck/internal/logger"
)

var (
	configPaths []string
	logLevel    string
)

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&configPaths, "config", nil, "Read configuration from these TOML files instead of the defaults")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level (debug, info, warn, error)")

	rootCmd.AddCommand(playCmd, serveCmd, probeCmd, historyCmd)
}

var rootCmd = &cobra.Command{
	Use:   "deck [paths...]",
	Short: "A terminal media player with a queue, A-B loops and remote control",
	Long: "deck plays audio and video files, directories and streams.\n" +
		"Without a subcommand it behaves like `deck play`.",
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd, args, playFlagsFrom(cmd))
	},
}

// Execute runs the CLI and exits non-zero on error.
func Execute() {
	cc.Init(&cc.Config{
		RootCmd:       rootCmd,
		Headings:      cc.HiCyan + cc.Bold + cc.Underline,
		Commands:      cc.HiYellow + cc.Bold,
		Example:       cc.Italic,
		ExecName:      cc.Bold,
		Flags:         cc.Bold,
		FlagsDataType: cc.Italic + cc.HiBlue,
	})

	if err := rootCmd.Execute(); err != nil {
		logger.Log.Error().Err(err).Msg("command failed")
		_, _ = fmt.Fprintf(os.Stderr, "deck: %s\n", strings.TrimSpace(err.Error()))
		os.Exit(1)
	}
}

// loadConfig reads the configuration selected by --config.
func loadConfig() (*config.Config, error) {
	if len(configPaths) > 0 {
		return config.LoadFrom(configPaths...)
	}
	return config.Load()
}

func effectiveLogLevel(cfg *config.Config) string {
	if logLevel != "" {
		return logLevel
	}
	return cfg.LogLevel()
}
