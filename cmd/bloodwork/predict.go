package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/bloodwork/internal/common"
	"github.com/joseph-ayodele/bloodwork/internal/pipeline"
)

func predictCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "predict <file>",
		Short: "Process one document and print the prediction as JSON",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 || args[0] == "" {
				return reportFailure(out, common.NewAppError(common.KindInputNotFound, "File path not provided.", nil))
			}
			path := args[0]

			cfg, logger, err := setup(*configFile)
			if err != nil {
				return reportFailure(out, err)
			}

			if st, err := os.Stat(path); err != nil || st.IsDir() {
				return reportFailure(out, common.NewAppError(common.KindInputNotFound, "File not found.", err))
			}

			assets, err := pipeline.LoadAssets(cfg, logger)
			if err != nil {
				return reportFailure(out, err)
			}
			defer func() {
				if err := assets.Close(); err != nil {
					logger.Warn("failed to release model", "error", err)
				}
			}()

			loader, err := pipeline.NewTextExtractor(cfg, logger)
			if err != nil {
				return reportFailure(out, err)
			}

			ctx := common.WithRunID(context.Background(), "")
			res, err := pipeline.NewProcessor(logger, loader, assets).Process(ctx, path)
			if err != nil {
				return reportFailure(out, err)
			}
			return writeJSON(out, res)
		},
	}
}
