package commands

import (
	"github.com/spf13/cobra"

	"github.com/de-tools/ledger-sync/pkg/runtime/terminal/export"
	"github.com/de-tools/ledger-sync/pkg/services/catalog"
)

func NewReportsCmd(c *catalog.Catalog, reporter *export.Reporter) *cobra.Command {
	return &cobra.Command{
		Use:   "reports",
		Short: "List the supported reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return reporter.HandleCatalog(c.List())
		},
	}
}
