package clock

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock time with no date component, stored as a SQL TIME
// column. All lateness math compares TimeOfDay values directly; no elapsed
// duration across dates is ever involved.
type TimeOfDay struct {
	time.Time
}

// TimeOfDayFrom extracts the wall-clock portion of t, discarding date and zone.
func TimeOfDayFrom(t time.Time) TimeOfDay {
	return TimeOfDay{Time: time.Date(0, 1, 1, t.Hour(), t.Minute(), t.Second(), 0, time.UTC)}
}

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var tod TimeOfDay
	return tod, tod.parse(s)
}

func (t *TimeOfDay) parse(s string) error {
	s = strings.TrimSpace(s)
	if len(s) == 5 {
		s += ":00"
	}
	parsed, err := time.Parse("15:04:05", s)
	if err != nil {
		return fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	t.Time = time.Date(0, 1, 1, parsed.Hour(), parsed.Minute(), parsed.Second(), 0, time.UTC)
	return nil
}

// Seconds returns the offset from midnight in whole seconds.
func (t TimeOfDay) Seconds() int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}

// After reports whether t is later in the day than other.
func (t TimeOfDay) After(other TimeOfDay) bool {
	return t.Seconds() > other.Seconds()
}

// Add returns the time of day shifted by d, clamped within the same day.
func (t TimeOfDay) Add(d time.Duration) TimeOfDay {
	return TimeOfDay{Time: t.Time.Add(d)}
}

// String renders the canonical "HH:MM:SS" form.
func (t TimeOfDay) String() string {
	return t.Format("15:04:05")
}

// Scan implements sql.Scanner for TIME columns.
func (t *TimeOfDay) Scan(v any) error {
	switch x := v.(type) {
	case time.Time:
		*t = TimeOfDayFrom(x)
		return nil
	case []byte:
		return t.parse(string(x))
	case string:
		return t.parse(x)
	case nil:
		t.Time = time.Time{}
		return nil
	default:
		return fmt.Errorf("timeofday: unsupported Scan type %T", v)
	}
}

// Value implements driver.Valuer, emitting "HH:MM:SS" so TIME columns accept it.
func (t TimeOfDay) Value() (driver.Value, error) {
	return t.String(), nil
}

// MarshalJSON renders the canonical string form.
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts "HH:MM" or "HH:MM:SS".
func (t *TimeOfDay) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	return t.parse(s)
}
