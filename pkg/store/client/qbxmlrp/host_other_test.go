//go:build !windows

package qbxmlrp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/ledger-sync/pkg/models/domain"
	"github.com/de-tools/ledger-sync/pkg/services/hosterr"
)

func TestConnect_UnsupportedPlatform(t *testing.T) {
	h, err := Connect(context.Background())
	require.Error(t, err)
	assert.Nil(t, h)

	c := hosterr.Classify(err)
	assert.Equal(t, domain.ErrorKindSdkNotInstalled, c.Kind)
	assert.Equal(t, "Run ledger-sync on the Windows machine where the accounting application is installed.", c.Remedies[0])
}
