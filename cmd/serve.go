package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/gridpilot/app"
	"github.com/kilianp07/gridpilot/internal/fixture"
)

var serveOpts struct {
	fixture  string
	interval time.Duration
	topic    string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run telemetry ingestion, metrics and periodic evaluations",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveOpts.fixture, "fixture", "", "grid snapshot re-evaluated every interval")
	serveCmd.Flags().DurationVar(&serveOpts.interval, "interval", time.Minute, "evaluation interval")
	serveCmd.Flags().StringVar(&serveOpts.topic, "decision-topic", "gridpilot/decisions", "MQTT topic receiving decisions")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := newService()
	if err != nil {
		return err
	}
	defer closeService(svc)

	ro := app.RunOptions{Interval: serveOpts.interval, DecisionTopic: serveOpts.topic}
	if serveOpts.fixture != "" {
		fx, err := fixture.Load(serveOpts.fixture)
		if err != nil {
			return err
		}
		req, err := fx.Request()
		if err != nil {
			return fmt.Errorf("fixture %s: %w", serveOpts.fixture, err)
		}
		ro.Request = &req
	}
	return svc.Run(ctx, ro)
}
