package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string

	// logger is shared by all subcommands; configured before any RunE.
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "wikigen",
	Short: "Wikigen: a wikitext to static documentation site generator",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = newLogger(logLevel, os.Stderr)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "site.hcl", "Path to the site configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")
}

func newLogger(levelStr string, outW io.Writer) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(outW, &slog.HandlerOptions{Level: level}))
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
