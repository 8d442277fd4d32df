package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sandevgo/gemibot/internal/config"
	"github.com/sandevgo/gemibot/pkg/log"
)

var feedMode bool

var fetchCmd = &cobra.Command{
	Use:          "fetch <url>",
	Short:        "Fetch one article or feed through the proxy cascade and print it",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLoggerTo(cmd.Context(), os.Stderr)
		defer flushLog()

		config.LoadEnvFile(ctx)
		fetcher := newFetcher(ctx)
		out := cmd.OutOrStdout()
		url := args[0]

		if feedMode {
			feed, ok := fetcher.FetchFeed(ctx, url)
			if !ok {
				return fmt.Errorf("feed %s is unavailable", url)
			}
			fmt.Fprintln(out, feed.Title)
			for _, item := range feed.Items {
				fmt.Fprintf(out, "- %s\n  %s\n", item.Title, item.Link)
			}
			return nil
		}

		text, ok := fetcher.FetchArticle(ctx, url)
		if !ok {
			return fmt.Errorf("article %s is unavailable", url)
		}
		log.FromCtx(ctx).Debug().Int("chars", len(text)).Msg("article fetched")
		fmt.Fprintln(out, text)
		return nil
	},
}

func init() {
	fetchCmd.Flags().BoolVar(&feedMode, "feed", false, "treat the URL as an RSS or Atom feed")
	rootCmd.AddCommand(fetchCmd)
}
