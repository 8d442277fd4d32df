package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sandevgo/gemibot/internal/service/setup"
	"github.com/sandevgo/gemibot/pkg/log"
)

var force bool

var setupCmd = &cobra.Command{
	Use:          "setup",
	Short:        "Configure gemibot interactively",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Debug().Bool("force", force).Msg("starting setup wizard")

		state, err := setup.RunWizard(force)
		if err != nil {
			return err
		}

		logger.Info().Str("path", state.Path).Msg("configuration saved")
		fmt.Fprintln(cmd.OutOrStdout(), "Setup complete! You can now run 'gemi start'.")
		return nil
	},
}

func init() {
	setupCmd.Flags().BoolVarP(&force, "force", "f", false, "replace an existing .env file")
	rootCmd.AddCommand(setupCmd)
}
