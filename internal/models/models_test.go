package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSize(t *testing.T) {
	for _, s := range []string{"SMALL", "MEDIUM", "LARGE", "EXTRA_LARGE"} {
		parsed, err := ParseSize(s)
		require.NoError(t, err)
		require.Equal(t, Size(s), parsed)
	}

	_, err := ParseSize("GIGANTIC")
	require.Error(t, err)
	_, err = ParseSize("large")
	require.Error(t, err)
	_, err = ParseSize("")
	require.Error(t, err)
}

func TestParseOrderStatus(t *testing.T) {
	for _, s := range []string{"PENDING", "IN_TRANSIT", "DELIVERED"} {
		parsed, err := ParseOrderStatus(s)
		require.NoError(t, err)
		require.Equal(t, OrderStatus(s), parsed)
	}

	_, err := ParseOrderStatus("BURNT")
	require.Error(t, err)
	_, err = ParseOrderStatus("pending")
	require.Error(t, err)
}
