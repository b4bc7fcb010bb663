package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileDaily(t *testing.T) {
	// Daily rules ignore the anchor date entirely
	rule, err := Compile(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), 9, 30, FrequencyDaily)
	require.NoError(t, err)
	assert.Equal(t, "30 9 * * *", rule)

	other, err := Compile(time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), 9, 30, FrequencyDaily)
	require.NoError(t, err)
	assert.Equal(t, rule, other)
}

func TestCompileWeekly(t *testing.T) {
	// 2026-03-15 is a Sunday (weekday 0)
	rule, err := Compile(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), 14, 0, FrequencyWeekly)
	require.NoError(t, err)
	assert.Equal(t, "0 14 * * 0", rule)

	// 2026-03-18 is a Wednesday (weekday 3)
	rule, err = Compile(time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC), 14, 0, FrequencyWeekly)
	require.NoError(t, err)
	assert.Equal(t, "0 14 * * 3", rule)
}

func TestCompileWeeklyUsesUTCWeekday(t *testing.T) {
	// 2026-03-15 23:00 in UTC-5 is already 2026-03-16 04:00 UTC, a Monday
	loc := time.FixedZone("UTC-5", -5*60*60)
	rule, err := Compile(time.Date(2026, 3, 15, 23, 0, 0, 0, loc), 8, 0, FrequencyWeekly)
	require.NoError(t, err)
	assert.Equal(t, "0 8 * * 1", rule)
}

func TestCompileMonthly(t *testing.T) {
	rule, err := Compile(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), 0, 5, FrequencyMonthly)
	require.NoError(t, err)
	assert.Equal(t, "5 0 15 * *", rule)
}

func TestCompileMonthlyLateDays(t *testing.T) {
	// Days 29-31 pass through unchanged; skipping short months is the
	// documented behavior, not a compile error.
	for _, day := range []int{29, 30, 31} {
		rule, err := Compile(time.Date(2026, 1, day, 0, 0, 0, 0, time.UTC), 12, 0, FrequencyMonthly)
		require.NoError(t, err)
		sel, err := Decompile(rule)
		require.NoError(t, err)
		require.NotNil(t, sel.DayOfMonth)
		assert.Equal(t, day, *sel.DayOfMonth)
	}
}

func TestCompileRejectsOutOfRange(t *testing.T) {
	date := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	_, err := Compile(date, 24, 0, FrequencyDaily)
	assert.Error(t, err)

	_, err = Compile(date, -1, 0, FrequencyDaily)
	assert.Error(t, err)

	_, err = Compile(date, 0, 60, FrequencyDaily)
	assert.Error(t, err)

	_, err = Compile(date, 0, 0, Frequency("yearly"))
	assert.Error(t, err)
}

func TestDecompileRoundTrip(t *testing.T) {
	dates := []time.Time{
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	freqs := []Frequency{FrequencyDaily, FrequencyWeekly, FrequencyMonthly}

	for _, date := range dates {
		for _, freq := range freqs {
			for _, hm := range [][2]int{{0, 0}, {23, 59}, {9, 30}} {
				rule, err := Compile(date, hm[0], hm[1], freq)
				require.NoError(t, err)

				sel, err := Decompile(rule)
				require.NoError(t, err, "rule %q", rule)
				assert.Equal(t, hm[0], sel.Hour)
				assert.Equal(t, hm[1], sel.Minute)
				assert.Equal(t, freq, sel.Frequency)

				switch freq {
				case FrequencyDaily:
					assert.Nil(t, sel.DayOfWeek)
					assert.Nil(t, sel.DayOfMonth)
				case FrequencyWeekly:
					require.NotNil(t, sel.DayOfWeek)
					assert.Equal(t, int(date.Weekday()), *sel.DayOfWeek)
					assert.Nil(t, sel.DayOfMonth)
				case FrequencyMonthly:
					require.NotNil(t, sel.DayOfMonth)
					assert.Equal(t, date.Day(), *sel.DayOfMonth)
					assert.Nil(t, sel.DayOfWeek)
				}
			}
		}
	}
}

func TestDecompileAmbiguousRule(t *testing.T) {
	_, err := Decompile("0 12 15 * 3")
	assert.ErrorIs(t, err, ErrAmbiguousRule)
}

func TestDecompileMalformedRules(t *testing.T) {
	cases := []string{
		"",
		"0 12 * *",       // four fields
		"0 12 * * * *",   // six fields
		"60 12 * * *",    // minute out of range
		"0 24 * * *",     // hour out of range
		"0 12 32 * *",    // day-of-month out of range
		"0 12 * * 7",     // day-of-week out of range
		"0 12 * 6 *",     // concrete month
		"x 12 * * *",     // non-numeric minute
		"*/5 12 * * *",   // step expressions unsupported
		"0 12 1-5 * *",   // ranges unsupported
	}
	for _, rule := range cases {
		_, err := Decompile(rule)
		assert.Error(t, err, "rule %q", rule)
	}
}

func TestValidateOneShot(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	assert.NoError(t, ValidateOneShot(now.Add(time.Minute), now))
	assert.ErrorIs(t, ValidateOneShot(now, now), ErrNotInFuture)
	assert.ErrorIs(t, ValidateOneShot(now.Add(-time.Minute), now), ErrNotInFuture)
}
