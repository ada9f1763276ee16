package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	envFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive command-line chat with feedback capture",
	Long: `chat runs a single interactive conversation against an OpenRouter model.
Ratings given during the conversation ("I'd rate this 4/5") are captured
as feedback, and saying goodbye starts a short review before the session ends.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runChat,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to the env file with OPENROUTER_API_KEY")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log at debug level to stderr and show raw errors")

	rootCmd.AddCommand(newCheckEnvCommand())

	if err := rootCmd.Execute(); err != nil {
		if debug {
			fmt.Fprintf(os.Stderr, "error: %+v\n", err)
		}
		os.Exit(1)
	}
}

// setupLogging keeps the console for the conversation: logs go to logFile
// as JSON, or to stderr as text with --debug.
func setupLogging(logFile string, debug bool) (io.Closer, error) {
	if debug {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
		return io.NopCloser(nil), nil
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))
	return f, nil
}
