package main

import (
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/bloodwork/constants"
	"github.com/joseph-ayodele/bloodwork/internal/impute"
	"github.com/joseph-ayodele/bloodwork/internal/pipeline"
)

func mediansCmd(configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "medians",
		Short: "Print the imputation medians computed from the reference dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(*configFile)
			if err != nil {
				return err
			}
			path, _ := cmd.Flags().GetString("dataset")
			if path == "" {
				path = cfg.Dataset.Path
			}

			features := constants.DefaultFeatures()
			table := impute.ComputeMedians(path, features, logger)

			out := make(pipeline.ExtractedData, 0, len(table))
			for _, f := range features {
				if m, ok := table.Lookup(f); ok {
					out = append(out, pipeline.FeatureValue{Feature: f, Value: m})
				}
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().String("dataset", "", "reference dataset (CSV or XLSX); defaults to DATASET_PATH")
	return cmd
}
