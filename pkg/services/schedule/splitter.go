package schedule

import (
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/geraldoaax/extract-fato-easymine/pkg/models/domain"
)

// ErrInvalidRange is returned when a range's start is after its end.
var ErrInvalidRange = errors.New("date range start is after end")

// Split partitions an inclusive date range into calendar-month periods.
// The sequence is lazy and restartable; the first period starts at
// r.Start, the last ends at r.End, and consecutive periods are contiguous
// at one-second granularity (a month ends at 23:59:59, the next starts at
// 00:00:00 of the following day).
func Split(r domain.DateRange) (iter.Seq[domain.MonthlyPeriod], error) {
	if r.Start.After(r.End) {
		return nil, ErrInvalidRange
	}

	return func(yield func(domain.MonthlyPeriod) bool) {
		cur := time.Date(r.Start.Year(), r.Start.Month(), 1, 0, 0, 0, 0, r.Start.Location())
		for !cur.After(r.End) {
			next := cur.AddDate(0, 1, 0)
			monthEnd := next.Add(-time.Second)

			start := cur
			if r.Start.After(start) {
				start = r.Start
			}
			end := monthEnd
			if r.End.Before(end) {
				end = r.End
			}

			if !yield(domain.MonthlyPeriod{Start: start, End: end}) {
				return
			}
			cur = next
		}
	}, nil
}

// ParseDate parses a compact YYYYMMDD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("20060102", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYYMMDD: %w", s, err)
	}
	return t, nil
}

// EndOfDay shifts a calendar date to its last second, so a user-supplied
// end date is treated as inclusive.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}
