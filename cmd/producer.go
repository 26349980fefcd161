package cmd

import (
	"github.com/spf13/cobra"

	"github.com/v2xlab/obu/app"
	"github.com/v2xlab/obu/infra/logger"
)

var (
	producerRoute  string
	producerActive bool
)

var producerCmd = &cobra.Command{
	Use:   "producer",
	Short: "Publish speed, heartbeat and route telemetry",
	Long: `Publish vehicle telemetry on <prefix>/speed, <prefix>/heartbeat and <prefix>/route.

Commands are read from stdin, one JSON object per line:
  {"type":"speed","value":50}
  {"type":"heartbeat","value":"ACTIVE"}
  {"type":"route","value":"chula"}`,
	RunE: runProducer,
}

func init() {
	producerCmd.Flags().StringVar(&producerRoute, "route", "", "route to replay after connecting")
	producerCmd.Flags().BoolVar(&producerActive, "active", false, "start with the heartbeat active")
	rootCmd.AddCommand(producerCmd)
}

func runProducer(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext()
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	p, err := app.NewProducer(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := p.Close(); err != nil {
			logger.New("main").Errorf("producer close: %v", err)
		}
	}()
	return p.Run(ctx, app.ProducerOptions{
		Route:   producerRoute,
		Active:  producerActive,
		Control: cmd.InOrStdin(),
	})
}
