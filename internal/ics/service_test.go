package ics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jazzy/internal/model"
)

// icsDoc joins lines with CRLF as the wire format requires.
func icsDoc(lines ...string) string {
	return strings.Join(lines, "\r\n") + "\r\n"
}

func serveFeed(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestService(t *testing.T, feed string) *Service {
	t.Helper()
	srv := serveFeed(t, feed)
	return NewService(time.UTC, []Source{{Name: "work", URL: srv.URL}}, ServiceOptions{
		CacheOptions: FeedCacheOptions{Client: srv.Client()},
	})
}

func TestServiceDay_AllDayAndRecurring(t *testing.T) {
	feed := icsDoc(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Jazzy//Test//EN",
		"X-WR-CALNAME:Work Calendar",
		"BEGIN:VEVENT",
		"UID:dentist-1",
		"DTSTART;VALUE=DATE:20250310",
		"DTEND;VALUE=DATE:20250311",
		"SUMMARY:Dentist",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:standup-1",
		"DTSTART:20250303T090000Z",
		"DTEND:20250303T093000Z",
		"RRULE:FREQ=WEEKLY;BYDAY=MO",
		"SUMMARY:Standup",
		"END:VEVENT",
		"END:VCALENDAR",
	)
	svc := newTestService(t, feed)

	target := mustDate(t, "2025-03-10")
	events, err := svc.Day(context.Background(), "work", &target)
	require.NoError(t, err)
	require.Len(t, events, 2)

	byTitle := make(map[string]model.CalendarEvent, len(events))
	for _, ev := range events {
		byTitle[ev.Title] = ev
	}

	dentist, ok := byTitle["Dentist"]
	require.True(t, ok)
	assert.True(t, dentist.AllDay)
	assert.Equal(t, "dentist-1", dentist.ID)

	standup, ok := byTitle["Standup"]
	require.True(t, ok)
	assert.False(t, standup.AllDay)
	assert.Equal(t, "standup-1_20250310T090000", standup.ID)
	assert.Equal(t, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), standup.Start.UTC())
	assert.Equal(t, 30*time.Minute, standup.End.Sub(standup.Start))
}

func TestServiceDay_SortedByStart(t *testing.T) {
	feed := icsDoc(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Jazzy//Test//EN",
		"BEGIN:VEVENT",
		"UID:late-1",
		"DTSTART:20250310T160000Z",
		"DTEND:20250310T170000Z",
		"SUMMARY:Late",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:early-1",
		"DTSTART:20250310T080000Z",
		"DTEND:20250310T090000Z",
		"SUMMARY:Early",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:mid-1",
		"DTSTART:20250310T120000Z",
		"DTEND:20250310T130000Z",
		"SUMMARY:Mid",
		"END:VEVENT",
		"END:VCALENDAR",
	)
	svc := newTestService(t, feed)

	target := mustDate(t, "2025-03-10")
	events, err := svc.Day(context.Background(), "work", &target)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "Early", events[0].Title)
	assert.Equal(t, "Mid", events[1].Title)
	assert.Equal(t, "Late", events[2].Title)
}

func TestServiceDay_AllDayFirstAtEqualStart(t *testing.T) {
	// A timed event at floating midnight and an all-day event share the same
	// start instant; the all-day event must sort first.
	feed := icsDoc(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Jazzy//Test//EN",
		"BEGIN:VEVENT",
		"UID:midnight-run",
		"DTSTART:20250310T000000",
		"DTEND:20250310T010000",
		"SUMMARY:Midnight Run",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:dentist-1",
		"DTSTART;VALUE=DATE:20250310",
		"DTEND;VALUE=DATE:20250311",
		"SUMMARY:Dentist",
		"END:VEVENT",
		"END:VCALENDAR",
	)
	svc := newTestService(t, feed)

	target := mustDate(t, "2025-03-10")
	events, err := svc.Day(context.Background(), "work", &target)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.True(t, events[0].Start.Equal(events[1].Start))
	assert.Equal(t, "Dentist", events[0].Title)
	assert.Equal(t, "Midnight Run", events[1].Title)
}

func TestServiceDay_StableOrderAtEqualStart(t *testing.T) {
	// Two timed events at the same instant keep their feed encounter order.
	feed := icsDoc(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Jazzy//Test//EN",
		"BEGIN:VEVENT",
		"UID:first-1",
		"DTSTART:20250310T100000Z",
		"DTEND:20250310T110000Z",
		"SUMMARY:First In Feed",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:second-1",
		"DTSTART:20250310T100000Z",
		"DTEND:20250310T103000Z",
		"SUMMARY:Second In Feed",
		"END:VEVENT",
		"END:VCALENDAR",
	)
	svc := newTestService(t, feed)

	target := mustDate(t, "2025-03-10")
	events, err := svc.Day(context.Background(), "work", &target)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "First In Feed", events[0].Title)
	assert.Equal(t, "Second In Feed", events[1].Title)
}

func TestServiceDay_EmptyDay(t *testing.T) {
	feed := icsDoc(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Jazzy//Test//EN",
		"BEGIN:VEVENT",
		"UID:one-off",
		"DTSTART:20250301T100000Z",
		"DTEND:20250301T110000Z",
		"SUMMARY:One Off",
		"END:VEVENT",
		"END:VCALENDAR",
	)
	svc := newTestService(t, feed)

	target := mustDate(t, "2025-03-10")
	events, err := svc.Day(context.Background(), "work", &target)
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestServiceDay_UnknownSource(t *testing.T) {
	svc := NewService(time.UTC, nil, ServiceOptions{})
	_, err := svc.Day(context.Background(), "nope", nil)
	require.ErrorIs(t, err, ErrUnknownSource)
}

func TestServiceDay_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	svc := NewService(time.UTC, []Source{{Name: "work", URL: srv.URL}}, ServiceOptions{
		CacheOptions: FeedCacheOptions{Client: srv.Client()},
	})
	target := mustDate(t, "2025-03-10")
	_, err := svc.Day(context.Background(), "work", &target)
	require.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestServiceDay_UnparseableFeed(t *testing.T) {
	svc := newTestService(t, "this is not a calendar")

	target := mustDate(t, "2025-03-10")
	events, err := svc.Day(context.Background(), "work", &target)
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestServiceDay_Classification(t *testing.T) {
	feed := icsDoc(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Jazzy//Test//EN",
		"BEGIN:VEVENT",
		"UID:meeting-1",
		"DTSTART:20250310T100000Z",
		"DTEND:20250310T110000Z",
		"SUMMARY:Planning",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:ABC-DEF@icloud.com",
		"DTSTART:20250310T170000Z",
		"DTEND:20250310T180000Z",
		"SUMMARY:Soccer Practice",
		"END:VEVENT",
		"END:VCALENDAR",
	)
	svc := newTestService(t, feed)

	target := mustDate(t, "2025-03-10")
	events, err := svc.Day(context.Background(), "work", &target)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, model.CalendarWork, events[0].Calendar)
	assert.Equal(t, model.CalendarFamily, events[1].Calendar)
}

func TestServiceDay_FixedTagOverridesRules(t *testing.T) {
	feed := icsDoc(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Jazzy//Test//EN",
		"BEGIN:VEVENT",
		"UID:meeting-1",
		"DTSTART:20250310T100000Z",
		"DTEND:20250310T110000Z",
		"SUMMARY:Planning",
		"END:VEVENT",
		"END:VCALENDAR",
	)
	srv := serveFeed(t, feed)
	svc := NewService(time.UTC, []Source{{Name: "family", URL: srv.URL, Tag: model.CalendarFamily}}, ServiceOptions{
		CacheOptions: FeedCacheOptions{Client: srv.Client()},
	})

	target := mustDate(t, "2025-03-10")
	events, err := svc.Day(context.Background(), "family", &target)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.CalendarFamily, events[0].Calendar)
}

func TestServiceDay_MissingSummary(t *testing.T) {
	feed := icsDoc(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Jazzy//Test//EN",
		"BEGIN:VEVENT",
		"UID:untitled-1",
		"DTSTART:20250310T100000Z",
		"DTEND:20250310T110000Z",
		"END:VEVENT",
		"END:VCALENDAR",
	)
	svc := newTestService(t, feed)

	target := mustDate(t, "2025-03-10")
	events, err := svc.Day(context.Background(), "work", &target)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "No Title", events[0].Title)
}

func TestServiceDay_DefaultsToToday(t *testing.T) {
	feed := icsDoc(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Jazzy//Test//EN",
		"BEGIN:VEVENT",
		"UID:today-1",
		"DTSTART:20250310T100000Z",
		"DTEND:20250310T110000Z",
		"SUMMARY:Today Only",
		"END:VEVENT",
		"END:VCALENDAR",
	)
	srv := serveFeed(t, feed)
	svc := NewService(time.UTC, []Source{{Name: "work", URL: srv.URL}}, ServiceOptions{
		CacheOptions: FeedCacheOptions{Client: srv.Client()},
		Now:          func() time.Time { return time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC) },
	})

	events, err := svc.Day(context.Background(), "work", nil)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Today Only", events[0].Title)
}

func TestServiceSources(t *testing.T) {
	svc := NewService(time.UTC, []Source{
		{Name: "work", URL: "http://example.com/a"},
		{Name: "family", URL: "http://example.com/b"},
		{Name: "", URL: "http://example.com/c"},
		{Name: "broken", URL: ""},
	}, ServiceOptions{})
	assert.Equal(t, []string{"work", "family"}, svc.Sources())
}
