package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/saqibullah/diabetes-prediction-form/config"
	"github.com/saqibullah/diabetes-prediction-form/logger"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:          "dpf",
	Short:        "Diabetes prediction form",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
	rootCmd.AddCommand(serveCmd, mockCmd)
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// setup loads the configuration and applies logging settings. The returned
// context is cancelled on SIGINT or SIGTERM.
func setup() (context.Context, context.CancelFunc, *config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger.Setup(cfg.Logging)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return ctx, stop, cfg, nil
}
