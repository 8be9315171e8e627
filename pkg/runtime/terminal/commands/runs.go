package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/de-tools/ledger-sync/pkg/runtime/terminal/export"
)

type RunsCmd struct {
	report   string
	limit    int
	load     Loader
	reporter *export.Reporter
}

func NewRunsCmd(load Loader, reporter *export.Reporter) *cobra.Command {
	rc := &RunsCmd{load: load, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent pipeline runs",
		Args:  cobra.NoArgs,
		RunE:  rc.run,
	}

	cmd.Flags().StringVar(&rc.report, "report", "", "Only show runs of this report")
	cmd.Flags().IntVar(&rc.limit, "limit", 20, "Maximum number of runs to show")

	return cmd
}

func (rc *RunsCmd) run(cmd *cobra.Command, _ []string) error {
	ctx, app, err := rc.load(cmd)
	if err != nil {
		return err
	}
	defer app.Close(ctx)

	runs, err := app.Runs.List(ctx, rc.report, rc.limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	return rc.reporter.HandleRuns(runs)
}
