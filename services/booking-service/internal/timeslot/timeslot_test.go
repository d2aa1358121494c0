package timeslot

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMinutesBounds(t *testing.T) {
	m, err := ToMinutes("00:00")
	require.NoError(t, err)
	assert.Equal(t, 0, m)

	m, err = ToMinutes("23:59")
	require.NoError(t, err)
	assert.Equal(t, 1439, m)
}

func TestToMinutesStrictlyIncreasing(t *testing.T) {
	prev := -1
	for m := 0; m < 24*60; m++ {
		got, err := ToMinutes(FormatMinutes(m))
		require.NoError(t, err)
		require.Greater(t, got, prev)
		prev = got
	}
}

func TestToMinutesRejectsMalformed(t *testing.T) {
	for _, s := range []string{"", "9:00", "24:00", "12:60", "12-30", "ab:cd", "12:3", "12:30:00", " 9:00"} {
		_, err := ToMinutes(s)
		assert.ErrorIs(t, err, ErrFormat, s)
	}
}

func TestWeekdayNameIsUTC(t *testing.T) {
	day, err := WeekdayName("2026-01-05")
	require.NoError(t, err)
	assert.Equal(t, "Monday", day)

	day, err = WeekdayName("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, "Thursday", day)

	_, err = WeekdayName("05/01/2026")
	assert.ErrorIs(t, err, ErrDateFormat)
}

func TestIsPast(t *testing.T) {
	// 23:30 in UTC-5 is already the next day in UTC.
	now := time.Date(2026, 3, 9, 23, 30, 0, 0, time.FixedZone("EST", -5*3600))
	assert.True(t, IsPast("2026-03-09", now))
	assert.False(t, IsPast("2026-03-10", now))
	assert.False(t, IsPast("2026-12-01", now))
}

func TestParseRange(t *testing.T) {
	r, err := ParseRange("09:00", "10:30")
	require.NoError(t, err)
	assert.Equal(t, Range{From: 540, To: 630}, r)
	assert.Equal(t, "09:00 - 10:30", r.String())

	_, err = ParseRange("10:00", "10:00")
	assert.Error(t, err)
	_, err = ParseRange("11:00", "10:00")
	assert.Error(t, err)
}

func TestWithinIncludesEdges(t *testing.T) {
	window := Range{From: 540, To: 720}
	assert.True(t, Range{From: 540, To: 720}.Within(window))
	assert.True(t, Range{From: 600, To: 660}.Within(window))
	assert.False(t, Range{From: 530, To: 600}.Within(window))
	assert.False(t, Range{From: 700, To: 721}.Within(window))
}

func TestOverlapsMatchesSeparation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 5000; i++ {
		a := randomRange(rng)
		b := randomRange(rng)
		separated := a.To <= b.From || b.To <= a.From
		assert.Equal(t, !separated, a.Overlaps(b), "%v vs %v", a, b)
		assert.Equal(t, a.Overlaps(b), b.Overlaps(a))
	}
}

func TestBackToBackDoesNotOverlap(t *testing.T) {
	assert.False(t, Range{From: 540, To: 600}.Overlaps(Range{From: 600, To: 660}))
	assert.True(t, Range{From: 540, To: 600}.Overlaps(Range{From: 570, To: 630}))
}

func randomRange(rng *rand.Rand) Range {
	from := rng.Intn(24*60 - 1)
	to := from + 1 + rng.Intn(24*60-from)
	return Range{From: from, To: to}
}
