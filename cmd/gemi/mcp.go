package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sandevgo/gemibot/internal/config"
	"github.com/sandevgo/gemibot/internal/transport/mcp"
)

var mcpCmd = &cobra.Command{
	Use:          "mcp",
	Short:        "Serve the article and feed fetchers as MCP tools over stdio",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// stdout carries the protocol
		var flushLog func()
		ctx, flushLog = setupLoggerTo(ctx, os.Stderr)
		defer flushLog()

		config.LoadEnvFile(ctx)
		return mcp.NewServer(newFetcher(ctx)).Serve(ctx, os.Stdin, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
