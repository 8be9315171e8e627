package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/de-tools/ledger-sync/pkg/runtime/bootstrap"
)

// Loader builds the wired application for a command invocation. Callers
// must Close the returned App.
type Loader func(cmd *cobra.Command) (context.Context, *bootstrap.App, error)
