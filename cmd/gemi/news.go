package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandevgo/gemibot/internal/config"
	"github.com/sandevgo/gemibot/internal/storage/sqlite"
)

var newsCmd = &cobra.Command{
	Use:          "news",
	Short:        "Show the last digest entry recorded in the news ledger",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		config.LoadEnvFile(ctx)
		db, err := sqlite.NewDB(ctx, config.GetDatabasePath())
		if err != nil {
			return err
		}
		defer db.Close()

		last, ok, err := sqlite.NewNews(db).LastPosted(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if !ok {
			fmt.Fprintln(out, "No news has been posted yet.")
			return nil
		}
		fmt.Fprintf(out, "%s\n  %s\n  thread: %s\n  posted: %s\n",
			last.Title, last.Link, last.ThreadURL, last.PostedAt.Local().Format(time.DateTime))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(newsCmd)
}
