package common

import (
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"

	"github.com/CrestNiraj12/terminalchat/domain"
)

func TestDayLabel(t *testing.T) {
	now := time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC) // Friday
	tests := []struct {
		date time.Time
		want string
	}{
		{now, "Today"},
		{time.Date(2024, 5, 9, 23, 59, 0, 0, time.UTC), "Yesterday"},
		{time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC), "Monday"},
		{time.Date(2024, 4, 2, 8, 0, 0, 0, time.UTC), "Tue, Apr 2"},
		{time.Date(2023, 12, 31, 8, 0, 0, 0, time.UTC), "Sun, Dec 31 2023"},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, DayLabel(tc.date, now), tc.date.String())
	}
}

func TestTimestamp(t *testing.T) {
	now := time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)
	require.Equal(t, "now", Timestamp(now.Add(-10*time.Second), now))
	require.Equal(t, "5 minutes ago", Timestamp(now.Add(-5*time.Minute), now))
	require.Equal(t, "13:30", Timestamp(now.Add(-90*time.Minute), now))
}

func TestStatusMarkAndDuration(t *testing.T) {
	require.Equal(t, "◷", StatusMark(domain.StatusSending))
	require.Equal(t, "✓✓ read", StatusMark(domain.StatusRead))
	require.Empty(t, StatusMark(domain.StatusNone))
	require.Equal(t, "1:05", Duration(65*time.Second+300*time.Millisecond))
}

func TestOneLine(t *testing.T) {
	got := OneLine("hello\n  wide   world", 8)
	require.Equal(t, "hello w…", got)
	require.LessOrEqual(t, ansi.StringWidth(got), 8)
	require.Empty(t, OneLine("anything", 0))
}

func TestUnreadLabel(t *testing.T) {
	require.Empty(t, UnreadLabel(0))
	require.Equal(t, "1,204 unread", UnreadLabel(1204))
}
