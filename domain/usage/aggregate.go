package usage

import "time"

// SumQuota totals QuotaUsed across events.
// This is a PURE function.
func SumQuota(events []Event) int64 {
	var total int64
	for _, e := range events {
		total += e.QuotaUsed
	}
	return total
}

// MonthStart returns the first instant of t's calendar month.
// This is a PURE function.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// PeriodBounds returns the start and end of the calendar month containing t.
// This is a PURE function.
func PeriodBounds(t time.Time) (start, end time.Time) {
	start = MonthStart(t)
	end = start.AddDate(0, 1, 0)
	return
}

// InWindow reports whether the event's timestamp falls in [start, end).
// This is a PURE function.
func InWindow(e Event, start, end time.Time) bool {
	return !e.Timestamp.Before(start) && e.Timestamp.Before(end)
}

// Matches reports whether the event belongs to the given user/tool/action
// selection. An empty action matches all actions for the tool.
// This is a PURE function.
func Matches(e Event, userID string, tool Tool, action string) bool {
	if e.UserID != userID || e.Tool != tool {
		return false
	}
	return action == "" || e.Action == action
}
