package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/bloodwork/internal/common"
)

// errReported means the failure record has already been written.
var errReported = errors.New("failure reported")

func main() {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "bloodwork",
		Short:         "Predict health severity from a scanned blood-count report",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "optional config file (yaml, json or toml)")

	rootCmd.AddCommand(predictCmd(&configFile))
	rootCmd.AddCommand(serveCmd(&configFile))
	rootCmd.AddCommand(mediansCmd(&configFile))
	rootCmd.AddCommand(ocrCmd(&configFile))

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

// setup loads and validates configuration and installs the process logger.
func setup(configFile string) (*common.Config, *slog.Logger, error) {
	cfg, err := common.LoadConfig(configFile)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	logger := common.NewLogger(cfg.Log, os.Stderr)
	slog.SetDefault(logger)
	return cfg, logger, nil
}
