package rpio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCloseUnopened(t *testing.T) {
	b := New(true)
	require.True(t, b.ActiveLow)
	require.NoError(t, b.Close())
}
