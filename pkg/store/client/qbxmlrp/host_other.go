//go:build !windows

package qbxmlrp

import (
	"context"
	"runtime"

	"github.com/cockroachdb/errors"

	"github.com/de-tools/ledger-sync/pkg/services/hosterr"
	"github.com/de-tools/ledger-sync/pkg/services/session"
)

func Connect(_ context.Context) (session.Host, error) {
	err := errors.Newf("the request processor is only available on Windows (running on %s)", runtime.GOOS)
	return nil, hosterr.Mark(
		errors.WithHint(err, "Run ledger-sync on the Windows machine where the accounting application is installed."),
		hosterr.ErrSdkNotInstalled,
	)
}
