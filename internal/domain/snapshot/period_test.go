package snapshot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bratislava(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Bratislava")
	require.NoError(t, err)
	return loc
}

func TestDailyKeyUsesReportingZone(t *testing.T) {
	loc := bratislava(t)

	// 23:30 UTC on Mar 14 is already Mar 15 00:30 in Bratislava (CET+1).
	at := time.Date(2024, 3, 14, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-15", DailyKey(at, loc))
	assert.Equal(t, "2024-03", MonthlyKey(at, loc))
}

func TestPreviousMonthKey(t *testing.T) {
	loc := bratislava(t)

	cases := []struct {
		at   time.Time
		want string
	}{
		{time.Date(2024, 3, 31, 10, 0, 0, 0, loc), "2024-02"},
		{time.Date(2024, 1, 1, 8, 0, 0, 0, loc), "2023-12"},
		{time.Date(2024, 7, 15, 12, 0, 0, 0, loc), "2024-06"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, PreviousMonthKey(tc.at, loc), "at %s", tc.at)
	}
}

func TestDeadlinePassedBoundary(t *testing.T) {
	loc := bratislava(t)

	before := time.Date(2024, 3, 15, 7, 59, 59, 0, loc)
	atDeadline := time.Date(2024, 3, 15, 8, 0, 0, 0, loc)

	assert.False(t, DeadlinePassed(before, loc))
	assert.True(t, DeadlinePassed(atDeadline, loc))
}

func TestDeadlinePassedIndependentOfProcessZone(t *testing.T) {
	loc := bratislava(t)

	// 07:30 UTC on a summer day is 09:30 in Bratislava (CEST, UTC+2).
	at := time.Date(2024, 6, 15, 7, 30, 0, 0, time.UTC)
	assert.True(t, DeadlinePassed(at, loc))

	// 05:30 UTC is 07:30 local, still before the deadline.
	at = time.Date(2024, 6, 15, 5, 30, 0, 0, time.UTC)
	assert.False(t, DeadlinePassed(at, loc))
}

func TestDeadlineOnDSTTransitionDay(t *testing.T) {
	loc := bratislava(t)

	// 2024-03-31: clocks jump 02:00 -> 03:00 CET->CEST. The 08:00
	// boundary is wall-clock local time, so 06:00 UTC is already 08:00
	// local that day, while the day before it would be 07:00 local.
	transition := time.Date(2024, 3, 31, 6, 0, 0, 0, time.UTC)
	assert.True(t, DeadlinePassed(transition, loc))

	dayBefore := time.Date(2024, 3, 30, 6, 0, 0, 0, time.UTC)
	assert.False(t, DeadlinePassed(dayBefore, loc))
}

func TestFirstOfMonth(t *testing.T) {
	loc := bratislava(t)

	// 23:30 UTC on Jun 30 is already Jul 1 in Bratislava.
	assert.True(t, FirstOfMonth(time.Date(2024, 6, 30, 23, 30, 0, 0, time.UTC), loc))
	assert.False(t, FirstOfMonth(time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC), loc))
}
