// internal/domain/snapshot/period.go
package snapshot

import "time"

// Period key layouts. Keys are always formatted in the reporting time
// zone so that "today" means the airport's today, not the server's.
const (
	DailyLayout   = "2006-01-02"
	MonthlyLayout = "2006-01"
)

// DeadlineHour is the local wall-clock hour after which a missing report
// becomes a notifiable condition.
const DeadlineHour = 8

// DailyKey returns the calendar-date period key for the given instant.
func DailyKey(at time.Time, loc *time.Location) string {
	return at.In(loc).Format(DailyLayout)
}

// MonthlyKey returns the year-month period key for the given instant.
func MonthlyKey(at time.Time, loc *time.Location) string {
	return at.In(loc).Format(MonthlyLayout)
}

// PreviousMonthKey returns the year-month key for the month before the
// instant's local month. Computed from the first of the month to avoid
// the AddDate day-overflow pitfall (e.g. Mar 31 - 1 month).
func PreviousMonthKey(at time.Time, loc *time.Location) string {
	local := at.In(loc)
	firstOfMonth := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	return firstOfMonth.AddDate(0, 0, -1).Format(MonthlyLayout)
}

// DeadlinePassed reports whether the instant is at or past the reporting
// deadline in local wall-clock time. The boundary is computed from the
// local time at evaluation, never from a cached offset, so DST switches
// are handled by the zone database.
func DeadlinePassed(at time.Time, loc *time.Location) bool {
	return at.In(loc).Hour() >= DeadlineHour
}

// FirstOfMonth reports whether the instant falls on the first calendar
// day of the month in the given zone.
func FirstOfMonth(at time.Time, loc *time.Location) bool {
	return at.In(loc).Day() == 1
}
