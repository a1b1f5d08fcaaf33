package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kjans/mboxkit/config"
	"github.com/kjans/mboxkit/progress"
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse an mbox container and report what it holds",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(cmd)
		if err != nil {
			return err
		}

		logger, cleanup, err := setupLogger(cfg)
		if err != nil {
			return err
		}
		defer func() {
			_ = cleanup()
		}()
		slog.SetDefault(logger)

		f, err := newFilter(cfg)
		if err != nil {
			return err
		}

		res, summary, err := runParse(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}

		selected := f.Select(res.Messages)
		logger.Info("parsed mbox container",
			"mbox", cfg.MboxPath,
			"messages", res.Stats.TotalEmails,
			"selected", len(selected),
			"errors", len(res.Errors))

		progress.PrintSummary(res.Stats, summary)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
}
