package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/de-tools/ledger-sync/pkg/runtime/terminal/export"
)

func NewBaselinesCmd(load Loader, reporter *export.Reporter) *cobra.Command {
	return &cobra.Command{
		Use:   "baselines",
		Short: "Show the stored content hash of every report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, app, err := load(cmd)
			if err != nil {
				return err
			}
			defer app.Close(ctx)

			baselines, err := app.Baselines.ListBaselines(ctx)
			if err != nil {
				return fmt.Errorf("failed to list baselines: %w", err)
			}
			return reporter.HandleBaselines(baselines)
		},
	}
}
