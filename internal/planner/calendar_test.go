package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestKeyOf(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want DateKey
	}{
		{name: "zero padded", in: day(2024, time.June, 1), want: "2024-06-01"},
		{name: "end of year", in: day(2024, time.December, 31), want: "2024-12-31"},
		{name: "late evening keeps day", in: time.Date(2024, 3, 9, 23, 59, 0, 0, time.Local), want: "2024-03-09"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KeyOf(tt.in))
		})
	}
}

func TestKeyOfInjectiveOverYear(t *testing.T) {
	seen := make(map[DateKey]bool)
	for d := day(2024, time.January, 1); d.Year() == 2024; d = AddDays(d, 1) {
		k := KeyOf(d)
		require.False(t, seen[k], "duplicate key %s", k)
		seen[k] = true
		assert.Equal(t, k, KeyOf(d), "stable")
	}
	assert.Len(t, seen, 366)
}

func TestParseDateKey(t *testing.T) {
	k, err := ParseDateKey("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, DateKey("2024-02-29"), k)

	for _, bad := range []string{"", "2024-2-1", "2023-02-29", "24-01-01", "2024/01/01"} {
		_, err := ParseDateKey(bad)
		assert.ErrorIs(t, err, ErrValidation, bad)
	}
}

func TestDateKeyBetweenAndAddDays(t *testing.T) {
	k := DateKey("2024-06-03")
	assert.True(t, k.Between("2024-06-03", "2024-06-09"))
	assert.True(t, DateKey("2024-06-09").Between("2024-06-03", "2024-06-09"))
	assert.False(t, DateKey("2024-06-10").Between("2024-06-03", "2024-06-09"))
	assert.Equal(t, DateKey("2024-07-01"), DateKey("2024-06-30").AddDays(1))
	assert.Equal(t, DateKey("2023-12-31"), DateKey("2024-01-01").AddDays(-1))
}

func TestAddDaysDoesNotMutate(t *testing.T) {
	in := day(2024, time.March, 1)
	out := AddDays(in, -1)
	assert.Equal(t, day(2024, time.March, 1), in)
	assert.Equal(t, day(2024, time.February, 29), out)
}

func TestStartOfWeekIsMonday(t *testing.T) {
	for d := day(2024, time.January, 1); d.Year() == 2024; d = AddDays(d, 1) {
		noon := d.Add(12 * time.Hour)
		start := StartOfWeek(noon)
		require.Equal(t, time.Monday, start.Weekday(), KeyOf(d))
		diff := int(noon.Sub(start).Hours() / 24)
		require.GreaterOrEqual(t, diff, 0)
		require.LessOrEqual(t, diff, 6)
		assert.Zero(t, start.Hour())
	}
}

func TestWeekAndMonthBounds(t *testing.T) {
	sunday := day(2024, time.June, 9)
	assert.Equal(t, day(2024, time.June, 3), StartOfWeek(sunday))
	assert.Equal(t, day(2024, time.June, 9), EndOfWeek(sunday))
	assert.Equal(t, day(2024, time.February, 1), StartOfMonth(day(2024, time.February, 17)))
	assert.Equal(t, day(2024, time.February, 29), EndOfMonth(day(2024, time.February, 17)))
	assert.Equal(t, day(2023, time.February, 28), EndOfMonth(day(2023, time.February, 1)))
}

func TestAddMonthsKeepDay(t *testing.T) {
	tests := []struct {
		name  string
		in    time.Time
		delta int
		want  time.Time
	}{
		{name: "jan 31 leap", in: day(2024, time.January, 31), delta: 1, want: day(2024, time.February, 29)},
		{name: "jan 31 common", in: day(2023, time.January, 31), delta: 1, want: day(2023, time.February, 28)},
		{name: "back across year", in: day(2024, time.March, 31), delta: -4, want: day(2023, time.November, 30)},
		{name: "no clamp", in: day(2024, time.May, 15), delta: 2, want: day(2024, time.July, 15)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddMonthsKeepDay(tt.in, tt.delta))
		})
	}

	jan31 := day(2024, time.January, 31)
	for n := -24; n <= 24; n++ {
		got := AddMonthsKeepDay(jan31, n)
		want := time.Month((int(time.January)-1+n%12+12)%12 + 1)
		assert.Equal(t, want, got.Month(), "n=%d", n)
	}
}

func TestMonthGrid(t *testing.T) {
	grid := MonthGrid(day(2024, time.June, 15))
	assert.Equal(t, day(2024, time.May, 27), grid[0])
	assert.Equal(t, time.Monday, grid[0].Weekday())
	assert.Equal(t, AddDays(grid[0], 41), grid[41])

	starts := MonthWeekStarts(day(2024, time.June, 15))
	assert.Len(t, starts, 5)
	assert.Equal(t, day(2024, time.June, 24), starts[len(starts)-1])
}
