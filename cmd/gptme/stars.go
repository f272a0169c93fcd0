package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sosacrazy126/gptme/internal/stars"
	"github.com/sosacrazy126/gptme/pkg/log"
)

const defaultStarPages = 10

var (
	starsUser string
	starsAll  bool
	starsOut  string
)

var starsCmd = &cobra.Command{
	Use:   "stars",
	Short: "Export a user's starred GitHub repositories",
	Long: `Fetches the starred repositories of a GitHub user and writes their URLs,
one per line, to a text file. By default only recent pages are fetched;
--all walks the entire star history and sorts the unique URLs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		fetcher := stars.NewFetcher(os.Getenv("GITHUB_TOKEN"))

		var (
			urls []string
			err  error
		)
		if starsAll {
			urls, err = fetcher.AllStarred(ctx, starsUser)
		} else {
			urls, err = fetcher.Starred(ctx, starsUser, defaultStarPages)
		}
		if err != nil {
			return err
		}

		if err := stars.WriteURLs(starsOut, urls); err != nil {
			return err
		}

		log.FromCtx(ctx).Info().Str("file", starsOut).Msg("wrote starred repositories")
		fmt.Printf("Found %d starred repositories. Saved to %s\n", len(urls), starsOut)
		return nil
	},
}

func init() {
	starsCmd.Flags().StringVarP(&starsUser, "user", "u", "", "GitHub username (required)")
	starsCmd.Flags().BoolVar(&starsAll, "all", false, "walk the entire star history")
	starsCmd.Flags().StringVarP(&starsOut, "out", "o", "starred_repos.txt", "output file")
	_ = starsCmd.MarkFlagRequired("user")

	rootCmd.AddCommand(starsCmd)
}
