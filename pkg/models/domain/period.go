package domain

import (
	"fmt"
	"time"
)

// DateRange is an inclusive datetime range with Start <= End.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (r DateRange) String() string {
	return fmt.Sprintf("%s..%s", r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
}

// MonthlyPeriod is a DateRange clamped to a single calendar month. Splitting
// a DateRange yields contiguous, non-overlapping periods that jointly cover
// the original range.
type MonthlyPeriod struct {
	Start time.Time
	End   time.Time
}

// Suffix returns the YYYYMM stamp used to name the period's artifact.
func (p MonthlyPeriod) Suffix() string {
	return p.Start.Format("200601")
}

func (p MonthlyPeriod) String() string {
	return fmt.Sprintf("%s..%s", p.Start.Format("2006-01-02"), p.End.Format("2006-01-02"))
}
