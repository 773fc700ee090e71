package model

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewDateRange(t *testing.T) {
	r, err := NewDateRange(day(2026, 7, 1), day(2026, 7, 4))
	require.NoError(t, err)
	assert.Equal(t, 3, r.Nights())
	assert.Equal(t, "2026-07-01", r.StartString())
	assert.Equal(t, "2026-07-04", r.EndString())
}

func TestNewDateRangeTruncatesToMidnight(t *testing.T) {
	// times of day must not influence the range
	late := time.Date(2026, 7, 1, 23, 59, 0, 0, time.UTC)
	early := time.Date(2026, 7, 4, 0, 1, 0, 0, time.UTC)
	r, err := NewDateRange(late, early)
	require.NoError(t, err)
	assert.Equal(t, 3, r.Nights())
}

func TestNewDateRangeRejectsEmptyAndReversed(t *testing.T) {
	_, err := NewDateRange(day(2026, 7, 1), day(2026, 7, 1))
	assert.ErrorIs(t, err, ErrEmptyRange)

	_, err = NewDateRange(day(2026, 7, 4), day(2026, 7, 1))
	assert.ErrorIs(t, err, ErrReversedRange)

	_, err = NewDateRange(time.Time{}, day(2026, 7, 1))
	assert.ErrorIs(t, err, ErrEmptyRange)
}

func TestParseDateRange(t *testing.T) {
	r, err := ParseDateRange("2026-07-01", "2026-07-04")
	require.NoError(t, err)
	assert.Equal(t, 3, r.Nights())

	_, err = ParseDateRange("", "2026-07-04")
	assert.ErrorIs(t, err, ErrEmptyRange)

	_, err = ParseDateRange("01.07.2026", "2026-07-04")
	assert.ErrorIs(t, err, ErrBadDate)

	_, err = ParseDateRange("2026-07-04", "2026-07-01")
	assert.ErrorIs(t, err, ErrReversedRange)
}

func TestOverlapsHalfOpen(t *testing.T) {
	mk := func(s, e string) DateRange {
		r, err := ParseDateRange(s, e)
		require.NoError(t, err)
		return r
	}

	a := mk("2026-07-01", "2026-07-04")

	// back to back in either direction never overlaps
	assert.False(t, a.Overlaps(mk("2026-07-04", "2026-07-07")))
	assert.False(t, mk("2026-06-28", "2026-07-01").Overlaps(a))

	// one shared night overlaps, symmetrically
	b := mk("2026-07-03", "2026-07-05")
	assert.True(t, a.Overlaps(b))
	assert.True(t, b.Overlaps(a))

	// containment overlaps
	assert.True(t, a.Overlaps(mk("2026-07-02", "2026-07-03")))
	assert.True(t, mk("2026-06-01", "2026-08-01").Overlaps(a))

	// disjoint does not
	assert.False(t, a.Overlaps(mk("2026-07-10", "2026-07-12")))
}

func TestOverlapsRandomRangesShareANight(t *testing.T) {
	// independent oracle: two stays overlap iff some calendar night
	// belongs to both
	sharesNight := func(a, b DateRange) bool {
		for d := a.Start; d.Before(a.End); d = d.AddDate(0, 0, 1) {
			if !d.Before(b.Start) && d.Before(b.End) {
				return true
			}
		}
		return false
	}

	rnd := rand.New(rand.NewSource(3)) // fixed seed keeps failures reproducible
	base := day(2026, time.July, 1)
	mk := func() DateRange {
		start := base.AddDate(0, 0, rnd.Intn(30))
		r, err := NewDateRange(start, start.AddDate(0, 0, 1+rnd.Intn(7)))
		require.NoError(t, err)
		return r
	}

	for i := 0; i < 500; i++ {
		a, b := mk(), mk()
		want := sharesNight(a, b)
		assert.Equal(t, want, a.Overlaps(b),
			"%s..%s vs %s..%s", a.StartString(), a.EndString(), b.StartString(), b.EndString())
		assert.Equal(t, want, b.Overlaps(a),
			"%s..%s vs %s..%s", b.StartString(), b.EndString(), a.StartString(), a.EndString())
	}
}

func TestResolvePolicy(t *testing.T) {
	assert.Equal(t, PolicySingle, ResolvePolicy(CategoryResort))
	assert.Equal(t, PolicyMulti, ResolvePolicy(CategoryOrdinary))
	assert.Equal(t, PolicyMulti, ResolvePolicy("glamping"), "unknown categories default to multi")
}
