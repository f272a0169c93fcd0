package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sosacrazy126/gptme/pkg/log"
)

var (
	debug bool
)

var rootCmd = &cobra.Command{
	Use:   "gptme",
	Short: "gptme — a memory-augmented LLM chat assistant",
	Long: `gptme talks to OpenAI and Anthropic models from the terminal,
augmenting every prompt with relevant context recalled from past
conversations.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Local .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
}

func setupLogger(ctx context.Context) (context.Context, func()) {
	return log.NewContextWithLogger(ctx, debug)
}
