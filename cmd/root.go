package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	configFile string
	verbose    bool

	rootCmd = &cobra.Command{
		Use:   "readloom",
		Short: "readloom - hybrid search over your reading history",
		Long: `readloom syncs your reading history from Readwise Reader, builds hybrid
(dense + sparse) vector representations per document, and answers queries
with a two-stage header/chunk retrieval over a Pinecone index.`,
	}
)

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: first of ./config.yaml, ./.readloom.yaml, $HOME/.config/readloom/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// newLogger builds the CLI logger.
func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}
