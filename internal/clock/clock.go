package clock

import (
	"context"
	"fmt"
	"time"
)

// CalendarLookup resolves explicit school-calendar exceptions for a date.
// found == false means the date has no override and the weekday rule applies.
type CalendarLookup interface {
	OverrideFor(ctx context.Context, date time.Time) (isSchoolDay bool, found bool, err error)
}

// SchoolClock is the single source of "today" and "now" for the whole system.
// Every value it produces is anchored to the school's fixed timezone, so a
// scan at 00:30 local time lands on the new calendar day no matter where the
// server runs.
type SchoolClock struct {
	loc      *time.Location
	calendar CalendarLookup
	now      func() time.Time
}

// NewSchoolClock loads the configured timezone and wires the calendar lookup.
func NewSchoolClock(timezone string, calendar CalendarLookup) (*SchoolClock, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load school timezone %q: %w", timezone, err)
	}

	return &SchoolClock{loc: loc, calendar: calendar, now: time.Now}, nil
}

// WithNow replaces the time source. Test hook.
func (c *SchoolClock) WithNow(now func() time.Time) *SchoolClock {
	clone := *c
	clone.now = now
	return &clone
}

// Now returns the current instant in the school timezone.
func (c *SchoolClock) Now() time.Time {
	return c.now().In(c.loc)
}

// BusinessDate returns today's date, midnight-truncated in the school zone.
func (c *SchoolClock) BusinessDate() time.Time {
	now := c.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, c.loc)
}

// BusinessTime returns the current wall-clock time of day in the school zone.
func (c *SchoolClock) BusinessTime() TimeOfDay {
	return TimeOfDayFrom(c.Now())
}

// IsSchoolDay answers whether classes run on the given date. An explicit
// calendar override wins; without one, Monday through Friday are school days.
func (c *SchoolClock) IsSchoolDay(ctx context.Context, date time.Time) (bool, error) {
	date = date.In(c.loc)

	if c.calendar != nil {
		isSchoolDay, found, err := c.calendar.OverrideFor(ctx, date)
		if err != nil {
			return false, fmt.Errorf("calendar lookup: %w", err)
		}
		if found {
			return isSchoolDay, nil
		}
	}

	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return false, nil
	default:
		return true, nil
	}
}

// PreviousSchoolDays walks backwards from (and excluding) the given date and
// returns the most recent n school days, newest first.
func (c *SchoolClock) PreviousSchoolDays(ctx context.Context, from time.Time, n int) ([]time.Time, error) {
	days := make([]time.Time, 0, n)
	cursor := from.In(c.loc)

	// Bounded walk so a degenerate calendar cannot spin forever.
	for i := 0; i < 14*n && len(days) < n; i++ {
		cursor = cursor.AddDate(0, 0, -1)
		ok, err := c.IsSchoolDay(ctx, cursor)
		if err != nil {
			return nil, err
		}
		if ok {
			days = append(days, cursor)
		}
	}

	return days, nil
}
