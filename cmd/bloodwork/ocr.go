package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/bloodwork/constants"
	"github.com/joseph-ayodele/bloodwork/internal/common"
	"github.com/joseph-ayodele/bloodwork/internal/fields"
	"github.com/joseph-ayodele/bloodwork/internal/ocr"
	"github.com/joseph-ayodele/bloodwork/internal/pipeline"
)

// ocrCmd runs only the loader and normalizer, which helps when tuning aliases
// against real scans.
func ocrCmd(configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ocr <file>",
		Short: "Print the normalized OCR text of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(*configFile)
			if err != nil {
				return err
			}
			loader, err := pipeline.NewTextExtractor(cfg, logger)
			if err != nil {
				return err
			}

			ctx := common.WithRunID(context.Background(), "")
			res, err := loader.Extract(ctx, args[0])
			if err != nil {
				return reportFailure(cmd.OutOrStdout(), err)
			}
			text := ocr.NormalizeUnits(res.Text)

			showFields, _ := cmd.Flags().GetBool("fields")
			if !showFields {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), text)
				return err
			}

			ext, err := fields.NewExtractor(fields.DefaultAliases(), logger)
			if err != nil {
				return err
			}
			found := map[string]*float64{}
			for _, v := range ext.Extract(ctx, text, constants.DefaultFeatures()) {
				found[string(v.Feature)] = v.Value
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"source_type": res.SourceType,
				"pages":       res.Pages,
				"fields":      found,
			})
		},
	}
	cmd.Flags().Bool("fields", false, "print the extracted field values as JSON instead of the text")
	return cmd
}
