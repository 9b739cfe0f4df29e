package reports

import (
	"time"

	"github.com/sharath018/temple-waste-backend/internal/apperr"
	"github.com/sharath018/temple-waste-backend/internal/dailylog"
)

// DayRange resolves a preset or custom range to inclusive first and last
// days in UTC. An empty preset means unbounded and returns nil days.
func DayRange(now time.Time, dateRange, startStr, endStr string) (*time.Time, *time.Time, error) {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	span := func(from, to time.Time) (*time.Time, *time.Time, error) { return &from, &to, nil }

	switch dateRange {
	case "":
		return nil, nil, nil
	case DateRangeDaily:
		return span(today, today)
	case DateRangeWeekly:
		return span(today.AddDate(0, 0, -6), today)
	case DateRangeMonthly:
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		return span(first, first.AddDate(0, 1, -1))
	case DateRangeYearly:
		return span(time.Date(today.Year(), 1, 1, 0, 0, 0, 0, time.UTC), time.Date(today.Year(), 12, 31, 0, 0, 0, 0, time.UTC))
	case DateRangeCustom:
		if startStr == "" || endStr == "" {
			return nil, nil, apperr.Validation("start_date and end_date required for custom range")
		}
		start, err := dailylog.ParseDay(startStr)
		if err != nil {
			return nil, nil, err
		}
		end, err := dailylog.ParseDay(endStr)
		if err != nil {
			return nil, nil, err
		}
		if start.After(end) {
			return nil, nil, apperr.Validation("start_date must not be after end_date")
		}
		return span(start, end)
	default:
		return nil, nil, apperr.Validation("unknown date_range %q", dateRange)
	}
}
