package ics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) Date {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2025, Month: time.March, Day: 10}, d)
	assert.Equal(t, "2025-03-10", d.String())

	_, err = ParseDate("03/10/2025")
	assert.Error(t, err)
}

func TestDateCompare(t *testing.T) {
	a := Date{2025, time.March, 10}
	assert.Equal(t, 0, a.Compare(Date{2025, time.March, 10}))
	assert.Equal(t, -1, a.Compare(Date{2025, time.March, 11}))
	assert.Equal(t, 1, a.Compare(Date{2025, time.February, 28}))
	assert.Equal(t, -1, a.Compare(Date{2026, time.January, 1}))
}

func TestExpandDay_NonRecurring(t *testing.T) {
	loc := time.FixedZone("CST", -6*3600)
	ev := ParsedEvent{
		UID:     "single-1",
		Summary: "Lunch",
		Start:   time.Date(2025, 3, 10, 12, 0, 0, 0, loc),
		End:     time.Date(2025, 3, 10, 13, 0, 0, 0, loc),
	}

	t.Run("on target day appears exactly once", func(t *testing.T) {
		occs := ExpandDay(ev, mustDate(t, "2025-03-10"))
		require.Len(t, occs, 1)
		assert.Equal(t, ev.Start, occs[0].Start)
		assert.Equal(t, ev.End, occs[0].End)
		assert.Empty(t, occs[0].Key)
	})

	t.Run("off target day yields nothing", func(t *testing.T) {
		assert.Empty(t, ExpandDay(ev, mustDate(t, "2025-03-11")))
		assert.Empty(t, ExpandDay(ev, mustDate(t, "2025-03-09")))
	})
}

func TestExpandDay_NonRecurring_MissingEnd(t *testing.T) {
	ev := ParsedEvent{
		UID:   "single-2",
		Start: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	occs := ExpandDay(ev, mustDate(t, "2025-03-10"))
	require.Len(t, occs, 1)
	assert.Equal(t, occs[0].Start, occs[0].End)
}

func TestExpandDay_AllDay(t *testing.T) {
	ev := ParsedEvent{
		UID:    "dentist-1",
		AllDay: true,
		Start:  time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local),
		End:    time.Date(2025, 3, 11, 0, 0, 0, 0, time.Local),
	}
	occs := ExpandDay(ev, mustDate(t, "2025-03-10"))
	require.Len(t, occs, 1)
	assert.Equal(t, 24*time.Hour, occs[0].End.Sub(occs[0].Start))
}

func TestExpandDay_WeeklyRecurring(t *testing.T) {
	// Standup every Monday 09:00, 30 minutes, starting 2025-03-03.
	ev := ParsedEvent{
		UID:      "standup-1",
		Summary:  "Standup",
		Start:    time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC),
		End:      time.Date(2025, 3, 3, 9, 30, 0, 0, time.UTC),
		RawRRule: "FREQ=WEEKLY;BYDAY=MO",
	}

	t.Run("occurrence on a later Monday", func(t *testing.T) {
		occs := ExpandDay(ev, mustDate(t, "2025-03-10"))
		require.Len(t, occs, 1)
		assert.Equal(t, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), occs[0].Start)
		assert.Equal(t, time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC), occs[0].End)
		assert.Equal(t, "20250310T090000", occs[0].Key)
	})

	t.Run("no occurrence on a Tuesday", func(t *testing.T) {
		assert.Empty(t, ExpandDay(ev, mustDate(t, "2025-03-11")))
	})

	t.Run("no occurrence before the series start", func(t *testing.T) {
		assert.Empty(t, ExpandDay(ev, mustDate(t, "2025-02-24")))
	})
}

func TestExpandDay_RecurringSeriesEndsBeforeTarget(t *testing.T) {
	// Five daily occurrences in early 2025; target well past the series end.
	// The iterator is exhausted long before the iteration ceiling.
	ev := ParsedEvent{
		UID:      "short-series",
		Start:    time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC),
		End:      time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
		RawRRule: "FREQ=DAILY;COUNT=5",
	}
	assert.Empty(t, ExpandDay(ev, mustDate(t, "2025-06-01")))
}

func TestExpandDay_UnboundedRuleFarFutureTarget(t *testing.T) {
	// A daily rule with no end and a target years away: the hard ceiling
	// stops the scan well before the target date is reached.
	ev := ParsedEvent{
		UID:      "unbounded",
		Start:    time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC),
		End:      time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
		RawRRule: "FREQ=DAILY",
	}
	done := make(chan []Occurrence, 1)
	go func() { done <- ExpandDay(ev, mustDate(t, "2030-01-01")) }()

	select {
	case occs := <-done:
		assert.Empty(t, occs)
	case <-time.After(5 * time.Second):
		t.Fatal("expansion did not terminate within the iteration ceiling")
	}
}

func TestExpandDay_ShortCircuitPastTarget(t *testing.T) {
	// Daily rule spanning the target: only the target day's occurrence is
	// returned even though the rule continues indefinitely.
	ev := ParsedEvent{
		UID:      "daily",
		Start:    time.Date(2025, 3, 1, 7, 0, 0, 0, time.UTC),
		End:      time.Date(2025, 3, 1, 7, 15, 0, 0, time.UTC),
		RawRRule: "FREQ=DAILY",
	}
	occs := ExpandDay(ev, mustDate(t, "2025-03-05"))
	require.Len(t, occs, 1)
	assert.Equal(t, time.Date(2025, 3, 5, 7, 0, 0, 0, time.UTC), occs[0].Start)
}

func TestExpandDay_ExDateRemovesOccurrence(t *testing.T) {
	ev := ParsedEvent{
		UID:      "with-exdate",
		Start:    time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC),
		End:      time.Date(2025, 3, 3, 9, 30, 0, 0, time.UTC),
		RawRRule: "FREQ=WEEKLY;BYDAY=MO",
		ExDates:  []time.Time{time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)},
	}
	assert.Empty(t, ExpandDay(ev, mustDate(t, "2025-03-10")))

	occs := ExpandDay(ev, mustDate(t, "2025-03-17"))
	require.Len(t, occs, 1)
}

func TestExpandDay_MalformedRule(t *testing.T) {
	ev := ParsedEvent{
		UID:      "broken",
		Start:    time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		RawRRule: "FREQ=NONSENSE",
	}
	assert.Empty(t, ExpandDay(ev, mustDate(t, "2025-03-10")))
}
