package cmd

import (
	"github.com/spf13/cobra"

	"github.com/saqibullah/diabetes-prediction-form/logger"
	"github.com/saqibullah/diabetes-prediction-form/predictor"
)

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Run a local stand-in for the prediction endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop, cfg, err := setup()
		if err != nil {
			return err
		}
		defer stop()
		m, err := predictor.NewMockServer(cfg.Mock, logger.New("mock-predictor"))
		if err != nil {
			return err
		}
		return m.Start(ctx)
	},
}
