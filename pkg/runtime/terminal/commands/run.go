package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/ledger-sync/pkg/models/domain"
	"github.com/de-tools/ledger-sync/pkg/runtime/terminal/export"
	"github.com/de-tools/ledger-sync/pkg/services/catalog"
)

// FailureHandler renders failed results after the summary table.
type FailureHandler interface {
	Handle(results []domain.PipelineResult) error
}

type RunCmd struct {
	from     string
	to       string
	load     Loader
	reporter *export.Reporter
	failures FailureHandler
}

func NewRunCmd(load Loader, reporter *export.Reporter, failures FailureHandler) *cobra.Command {
	rc := &RunCmd{load: load, reporter: reporter, failures: failures}
	cmd := &cobra.Command{
		Use:   "run [report|all]",
		Short: "Extract one report, or every report, once",
		Args:  cobra.MaximumNArgs(1),
		RunE:  rc.run,
	}

	cmd.Flags().StringVar(&rc.from, "from", "", "Start date (YYYY-MM-DD), defaults to the first day of the current month")
	cmd.Flags().StringVar(&rc.to, "to", "", "End date (YYYY-MM-DD), defaults to the last day of the current month")

	return cmd
}

func (rc *RunCmd) run(cmd *cobra.Command, args []string) error {
	key := catalog.AllReports
	if len(args) == 1 {
		key = args[0]
	}

	ctx, app, err := rc.load(cmd)
	if err != nil {
		return err
	}
	defer app.Close(ctx)

	rng := rc.dateRange(ctx, time.Now())

	results, err := app.Controller.RunOnce(ctx, key, &rng)
	if err != nil {
		return fmt.Errorf("failed to run %s: %w", key, err)
	}

	if err := rc.reporter.HandleResults(results); err != nil {
		return err
	}
	if err := rc.failures.Handle(results); err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.Failed() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d reports failed", failed, len(results))
	}
	return nil
}

// dateRange falls back to the month containing now when the flags are
// missing, unparsable or inverted.
func (rc *RunCmd) dateRange(ctx context.Context, now time.Time) domain.DateRange {
	def := domain.CurrentMonth(now)
	rng := domain.ParseDateRange(rc.from, rc.to, def)
	if (rc.from != "" || rc.to != "") &&
		(rng.From.Format(domain.DateLayout) != rc.from || rng.To.Format(domain.DateLayout) != rc.to) {
		zerolog.Ctx(ctx).Warn().
			Str("from", rc.from).
			Str("to", rc.to).
			Str("range", rng.String()).
			Msg("ignoring invalid date range, using current month")
	}
	return rng
}
