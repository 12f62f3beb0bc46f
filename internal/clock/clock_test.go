package clock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeCalendar struct {
	overrides map[string]bool
}

func (f fakeCalendar) OverrideFor(_ context.Context, date time.Time) (bool, bool, error) {
	isSchoolDay, found := f.overrides[date.Format("2006-01-02")]
	return isSchoolDay, found, nil
}

func manilaClock(t *testing.T, calendar CalendarLookup, at time.Time) *SchoolClock {
	t.Helper()
	c, err := NewSchoolClock("Asia/Manila", calendar)
	require.NoError(t, err)
	return c.WithNow(func() time.Time { return at })
}

func TestBusinessDateUsesSchoolTimezone(t *testing.T) {
	// 16:30 UTC on Jan 5 is 00:30 on Jan 6 in Manila: the scan belongs to
	// the new local day, not the UTC one.
	at := time.Date(2025, 1, 5, 16, 30, 0, 0, time.UTC)
	c := manilaClock(t, nil, at)

	require.Equal(t, "2025-01-06", c.BusinessDate().Format("2006-01-02"))
	require.Equal(t, "00:30:00", c.BusinessTime().String())
}

func TestIsSchoolDayWeekdayDefault(t *testing.T) {
	c := manilaClock(t, fakeCalendar{}, time.Now())

	monday := time.Date(2025, 1, 6, 12, 0, 0, 0, time.UTC)
	saturday := time.Date(2025, 1, 4, 12, 0, 0, 0, time.UTC)
	sunday := time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC)

	ok, err := c.IsSchoolDay(context.Background(), monday)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = c.IsSchoolDay(context.Background(), saturday)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = c.IsSchoolDay(context.Background(), sunday)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestIsSchoolDayHonorsOverrides(t *testing.T) {
	calendar := fakeCalendar{overrides: map[string]bool{
		"2025-01-07": false, // Tuesday holiday
		"2025-01-11": true,  // special working Saturday
	}}
	c := manilaClock(t, calendar, time.Now())

	tuesday := time.Date(2025, 1, 7, 6, 0, 0, 0, time.FixedZone("PHT", 8*3600))
	saturday := time.Date(2025, 1, 11, 6, 0, 0, 0, time.FixedZone("PHT", 8*3600))

	ok, err := c.IsSchoolDay(context.Background(), tuesday)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = c.IsSchoolDay(context.Background(), saturday)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestPreviousSchoolDaysSkipsWeekendsAndHolidays(t *testing.T) {
	calendar := fakeCalendar{overrides: map[string]bool{
		"2025-01-07": false, // Tuesday holiday
	}}
	// Friday Jan 10, Manila.
	at := time.Date(2025, 1, 10, 9, 0, 0, 0, time.FixedZone("PHT", 8*3600))
	c := manilaClock(t, calendar, at)

	days, err := c.PreviousSchoolDays(context.Background(), c.BusinessDate(), 3)
	require.NoError(t, err)
	require.Len(t, days, 3)

	// Thu 9, Wed 8, then Mon 6 because Tue 7 is a holiday.
	require.Equal(t, "2025-01-09", days[0].Format("2006-01-02"))
	require.Equal(t, "2025-01-08", days[1].Format("2006-01-02"))
	require.Equal(t, "2025-01-06", days[2].Format("2006-01-02"))
}

func TestTimeOfDayComparisons(t *testing.T) {
	start, err := ParseTimeOfDay("07:30:00")
	require.NoError(t, err)

	grace := start.Add(60 * time.Second)
	require.Equal(t, "07:31:00", grace.String())

	onTime, _ := ParseTimeOfDay("07:31:00")
	late, _ := ParseTimeOfDay("07:31:01")

	require.False(t, onTime.After(grace))
	require.True(t, late.After(grace))
}
