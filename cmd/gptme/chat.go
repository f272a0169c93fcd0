package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/sosacrazy126/gptme/internal/config"
	"github.com/sosacrazy126/gptme/internal/core"
	"github.com/sosacrazy126/gptme/internal/providers/embedding"
	"github.com/sosacrazy126/gptme/internal/service/chat"
	"github.com/sosacrazy126/gptme/pkg/log"
)

var (
	chatModel  string
	chatStream bool
	noMemory   bool
)

var chatCmd = &cobra.Command{
	Use:   "chat [prompt]",
	Short: "Chat with the configured model",
	Long: `Starts an interactive chat session, or answers a single prompt when one
is given as arguments. Past conversations are recalled from memory and
prepended to each prompt unless --no-memory is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		opts := []config.Option{}
		if chatModel != "" {
			opts = append(opts, config.WithModel(chatModel))
		}
		if noMemory {
			opts = append(opts, config.WithMemoryEnabled(false))
		}
		cfg := config.Load(ctx, opts...)

		svc, err := chat.New(ctx, cfg, embedding.NewOpenAI(cfg.OpenAIAPIKey))
		if err != nil {
			return err
		}
		defer svc.Close()

		if len(args) > 0 {
			return oneShot(ctx, svc, strings.Join(args, " "))
		}
		return interactive(ctx, svc, cfg)
	},
}

func init() {
	chatCmd.Flags().StringVarP(&chatModel, "model", "m", "", "model to use (overrides config)")
	chatCmd.Flags().BoolVar(&chatStream, "stream", false, "stream the response as it is generated")
	chatCmd.Flags().BoolVar(&noMemory, "no-memory", false, "disable conversational memory")

	rootCmd.AddCommand(chatCmd)
}

func oneShot(ctx context.Context, svc *chat.Service, prompt string) error {
	msg := core.NewMessage(core.RoleUser, prompt)

	if chatStream {
		return printStreamed(ctx, svc, msg, os.Stdout)
	}

	res := svc.Respond(ctx, msg)
	if res.Failed {
		fmt.Println(res.ErrText)
		return nil
	}
	fmt.Println(res.Text)
	return nil
}

func interactive(ctx context.Context, svc *chat.Service, cfg *config.Config) error {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     filepath.Join(cfg.DataDir, "input_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	logger := log.FromCtx(ctx)
	logger.Info().Str("model", cfg.Model).Msg("chat session started, type 'exit' to quit")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if len(line) == 0 {
					return nil
				}
				continue
			} else if err == io.EOF {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "exit" {
			return nil
		}
		if line == "" {
			continue
		}
		if line == "/clear" {
			if err := svc.ClearMemory(ctx); err != nil {
				fmt.Fprintf(rl.Stdout(), "Error: %v\n", err)
				continue
			}
			fmt.Fprintln(rl.Stdout(), "Memory cleared.")
			continue
		}

		msg := core.NewMessage(core.RoleUser, line)

		if chatStream {
			if err := printStreamed(ctx, svc, msg, rl.Stdout()); err != nil {
				fmt.Fprintf(rl.Stdout(), "Error: %v\n", err)
			}
			continue
		}

		res := svc.Respond(ctx, msg)
		if res.Failed {
			fmt.Fprintln(rl.Stdout(), res.ErrText)
			continue
		}
		fmt.Fprintln(rl.Stdout(), res.Text)
	}
}

// printStreamed renders response fragments as they arrive. The exchange is
// recorded into memory only when the stream completes cleanly.
func printStreamed(ctx context.Context, svc *chat.Service, msg core.Message, out io.Writer) error {
	stream, err := svc.RespondStream(ctx, msg)
	if err != nil {
		return err
	}
	defer stream.Close()

	for stream.Next() {
		fmt.Fprint(out, stream.Current())
	}
	fmt.Fprintln(out)
	return stream.Err()
}
