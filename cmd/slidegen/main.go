package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cpunion/slidegen/pkg/config"
	"github.com/cpunion/slidegen/pkg/logging"
)

var rootCmd = &cobra.Command{
	Use:   "slidegen",
	Short: "Generate slide decks from a topic with a generative model",
	Long: `slidegen researches a topic, plans an outline, writes every slide,
picks a theme and layouts, attaches visual assets and renders a standalone
HTML deck.`,
	SilenceUsage: true,
}

func main() {
	// Load .env if present (ignore error if not found)
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the environment and builds the command logger.
func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logging.New(cfg.Logging()), nil
}
