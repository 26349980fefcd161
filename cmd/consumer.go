package cmd

import (
	"github.com/spf13/cobra"

	"github.com/v2xlab/obu/app"
	"github.com/v2xlab/obu/infra/logger"
)

var consumerCmd = &cobra.Command{
	Use:   "consumer",
	Short: "Apply bus telemetry to a local vehicle model",
	RunE:  runConsumer,
}

func init() {
	rootCmd.AddCommand(consumerCmd)
}

func runConsumer(_ *cobra.Command, _ []string) error {
	ctx, stop := signalContext()
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	c, err := app.NewConsumer(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			logger.New("main").Errorf("consumer close: %v", err)
		}
	}()
	if err := c.Run(ctx); err != nil {
		return err
	}
	logger.New("main").Infof("final vehicle state %+v", c.Vehicle().Snapshot())
	return nil
}
