package ics

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// maxRecurrenceIterations is a hard ceiling on recurrence candidates examined
// per event and per request. The chronological short-circuit below is the
// normal termination path; the ceiling guarantees termination for rules that
// never reach (or never pass) the target date.
const maxRecurrenceIterations = 1000

// Date is a local calendar date triple, deliberately free of any timezone so
// that "the event's local start date" and "the requested day" compare without
// a UTC round trip.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf extracts the local date of t in its own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return DateOf(t), nil
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Compare returns -1, 0 or +1 as d sorts before, equal to or after other.
func (d Date) Compare(other Date) int {
	if d.Year != other.Year {
		return sign(d.Year - other.Year)
	}
	if d.Month != other.Month {
		return sign(int(d.Month) - int(other.Month))
	}
	return sign(d.Day - other.Day)
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

// Occurrence is one concrete (start, end) instance of an event on the target
// day. Key is empty for non-recurring events and carries the occurrence start
// stamp for recurring instances, so composite IDs stay unique per instance.
type Occurrence struct {
	Start time.Time
	End   time.Time
	Key   string
}

// ExpandDay produces the occurrences of ev whose local start date equals
// target.
//
// Non-recurring events compare their local start date directly. Recurring
// events iterate the rule chronologically from the series start: candidates
// before the target day are skipped, the first candidate past it stops the
// iteration (occurrences are monotonically increasing), and matching
// candidates get end = start + the event's duration. Iteration additionally
// stops at maxRecurrenceIterations regardless of the date comparison.
func ExpandDay(ev ParsedEvent, target Date) []Occurrence {
	if ev.RawRRule == "" {
		return expandSingle(ev, target)
	}
	return expandRecurring(ev, target)
}

func expandSingle(ev ParsedEvent, target Date) []Occurrence {
	if DateOf(ev.Start).Compare(target) != 0 {
		return nil
	}
	return []Occurrence{{Start: ev.Start, End: eventEnd(ev, ev.Start)}}
}

func expandRecurring(ev ParsedEvent, target Date) []Occurrence {
	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		// Unparseable rule: degrade to no occurrences for this event.
		return nil
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	dur := eventDuration(ev)

	var out []Occurrence
	next := set.Iterator()
	for i := 0; i < maxRecurrenceIterations; i++ {
		start, ok := next()
		if !ok {
			break
		}

		switch DateOf(start).Compare(target) {
		case 1:
			// Candidates only move forward; nothing after this can match.
			return out
		case 0:
			out = append(out, Occurrence{
				Start: start,
				End:   start.Add(dur),
				Key:   start.Format("20060102T150405"),
			})
		}
	}
	return out
}

// eventEnd resolves the end of a single occurrence starting at start. Events
// without a usable DTEND fall back to the start instant; all-day events cover
// the full day.
func eventEnd(ev ParsedEvent, start time.Time) time.Time {
	if ev.AllDay {
		day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
		return day.Add(24 * time.Hour)
	}
	if ev.End.IsZero() || ev.End.Before(ev.Start) {
		return start
	}
	return start.Add(ev.End.Sub(ev.Start))
}

func eventDuration(ev ParsedEvent) time.Duration {
	if ev.AllDay {
		return 24 * time.Hour
	}
	if ev.End.IsZero() || ev.End.Before(ev.Start) {
		return 0
	}
	return ev.End.Sub(ev.Start)
}
