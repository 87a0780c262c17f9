package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsValidStatus(t *testing.T) {
	for _, s := range []string{StatusPending, StatusInProgress, StatusCompleted, StatusVerified} {
		require.True(t, IsValidStatus(s), s)
	}
	require.False(t, IsValidStatus("abandoned"))
	require.False(t, IsValidStatus(""))
	require.False(t, IsValidStatus("Pending"))
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{StatusPending, StatusInProgress, true},
		{StatusInProgress, StatusCompleted, true},
		{StatusCompleted, StatusVerified, true},
		{StatusInProgress, StatusPending, false},
		{StatusVerified, StatusCompleted, false},
		{StatusPending, StatusCompleted, false},
		{StatusPending, StatusVerified, false},
		{StatusPending, StatusPending, false},
		{StatusVerified, StatusVerified, false},
		{"unknown", StatusInProgress, false},
		{StatusPending, "unknown", false},
	}
	for _, c := range cases {
		require.Equal(t, c.want, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}
