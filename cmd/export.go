package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kjans/mboxkit/config"
	"github.com/kjans/mboxkit/mbox"
	"github.com/kjans/mboxkit/model"
	"github.com/kjans/mboxkit/overlay"
)

var (
	exportOutput  string
	exportOverlay string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Re-export a (filtered, optionally edited) selection as a new mbox file",
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

		res, _, err := runParse(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}

		edits := model.EditOverlay{}
		if exportOverlay != "" {
			edits, err = overlay.Load(exportOverlay)
			if err != nil {
				return err
			}
		}

		selected := f.Select(res.Messages)
		out, exportErrs := mbox.Export(selected, edits)
		for _, exportErr := range exportErrs {
			logger.Warn("export entry skipped", "messageID", exportErr.MessageID, "cause", exportErr.Cause)
		}

		if err := os.WriteFile(exportOutput, out, 0o644); err != nil {
			return fmt.Errorf("write export: %w", err)
		}

		logger.Info("exported mbox container",
			"output", exportOutput,
			"messages", len(selected),
			"bytes", len(out),
			"exportErrors", len(exportErrs))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Path of the mbox file to write")
	exportCmd.Flags().StringVar(&exportOverlay, "overlay", "", "JSONL overlay file with header edits to apply")
	_ = exportCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(exportCmd)
}
