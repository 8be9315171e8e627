package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type ScheduleCmd struct {
	interval int
	load     Loader
	signals  func() <-chan os.Signal
}

func NewScheduleCmd(load Loader) *cobra.Command {
	sc := &ScheduleCmd{load: load, signals: notifyShutdown}
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Poll every report on a fixed interval until interrupted",
		RunE:  sc.run,
	}

	cmd.Flags().IntVar(&sc.interval, "interval", 0, "Polling interval in minutes (5, 15, 30 or 60); defaults to the configured interval")

	return cmd
}

func (sc *ScheduleCmd) run(cmd *cobra.Command, _ []string) error {
	ctx, app, err := sc.load(cmd)
	if err != nil {
		return err
	}
	defer app.Close(ctx)

	interval := sc.interval
	if interval == 0 {
		interval = app.Settings.Schedule.IntervalMinutes
	}

	if err := app.Controller.Start(ctx, interval); err != nil {
		return fmt.Errorf("failed to start schedule: %w", err)
	}

	logger := zerolog.Ctx(ctx)
	logger.Info().Int("interval_minutes", interval).Msg("schedule started, press Ctrl+C to stop")

	<-sc.signals()
	logger.Info().Msg("stopping schedule, waiting for the current cycle to finish")

	return app.Controller.Stop(context.WithoutCancel(ctx))
}

func notifyShutdown() <-chan os.Signal {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	return ch
}
