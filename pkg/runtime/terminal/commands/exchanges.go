package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/de-tools/ledger-sync/pkg/runtime/terminal/export"
)

type ExchangesCmd struct {
	limit    int
	load     Loader
	reporter *export.Reporter
}

func NewExchangesCmd(load Loader, reporter *export.Reporter) *cobra.Command {
	ec := &ExchangesCmd{load: load, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "exchanges <report>",
		Short: "Show the latest requests sent to the accounting host for a report",
		Args:  cobra.ExactArgs(1),
		RunE:  ec.run,
	}

	cmd.Flags().IntVar(&ec.limit, "limit", 10, "Maximum number of exchanges to show")

	return cmd
}

func (ec *ExchangesCmd) run(cmd *cobra.Command, args []string) error {
	ctx, app, err := ec.load(cmd)
	if err != nil {
		return err
	}
	defer app.Close(ctx)

	if _, err := app.Catalog.Get(args[0]); err != nil {
		return err
	}

	exchanges, err := app.Exchanges.ListExchanges(ctx, args[0], ec.limit)
	if err != nil {
		return fmt.Errorf("failed to list exchanges: %w", err)
	}
	return ec.reporter.HandleExchanges(exchanges)
}
