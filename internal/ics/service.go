package ics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"jazzy/internal/logger"
	"jazzy/internal/model"
	"jazzy/internal/telemetry"
)

// ErrUnknownSource is returned for a source name the service was not
// configured with.
var ErrUnknownSource = errors.New("unknown calendar source")

// Source configures one logical calendar feed served by the Service.
type Source struct {
	// Name is the route-facing identifier (e.g. "work", "family").
	Name string
	// URL is the feed endpoint.
	URL string
	// Tag, when non-empty, pins every event from this feed to one calendar.
	// Empty means classify per event via the rule list.
	Tag model.CalendarTag
}

type sourceState struct {
	cfg   Source
	cache *FeedCache
}

// ServiceOptions tunes a Service. CacheOptions is applied to every feed
// cache, which is how tests inject a fake clock and upstream.
type ServiceOptions struct {
	Rules        []Rule
	CacheOptions FeedCacheOptions
	Now          func() time.Time
}

// Service is the one parameterized day-agenda engine shared by all feed
// sources: fetch (cached) → parse → expand onto the target day → classify →
// sort. It holds no per-request state beyond the feed caches.
type Service struct {
	loc     *time.Location
	sources map[string]*sourceState
	order   []string
	rules   []Rule
	now     func() time.Time
}

// NewService builds a Service over the given sources. loc is the reference
// timezone used to resolve "today" when a request omits the date.
func NewService(loc *time.Location, sources []Source, opt ServiceOptions) *Service {
	if loc == nil {
		loc = time.Local
	}
	s := &Service{
		loc:     loc,
		sources: make(map[string]*sourceState, len(sources)),
		rules:   opt.Rules,
		now:     opt.Now,
	}
	if s.rules == nil {
		s.rules = DefaultRules()
	}
	if s.now == nil {
		s.now = time.Now
	}
	for _, src := range sources {
		if src.Name == "" || src.URL == "" {
			continue
		}
		s.sources[src.Name] = &sourceState{
			cfg:   src,
			cache: NewFeedCache(src.URL, opt.CacheOptions),
		}
		s.order = append(s.order, src.Name)
	}
	return s
}

// Sources lists the configured source names in configuration order.
func (s *Service) Sources() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Day returns the agenda for the named source on the target date, sorted
// ascending by start instant. A nil target means today in the reference
// timezone.
//
// Failure taxonomy: an unreachable upstream surfaces as ErrUpstreamUnavailable
// (the caller maps it to a server error); an unparseable feed degrades to an
// empty agenda, since no events shown beats a hard error for a display widget.
func (s *Service) Day(ctx context.Context, source string, target *Date) ([]model.CalendarEvent, error) {
	st, ok := s.sources[source]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}

	day := s.resolveTarget(target)

	body, fromCache, err := st.cache.Get(ctx)
	if err != nil {
		telemetry.RecordFeedFetch(source, false, true)
		return nil, err
	}
	telemetry.RecordFeedFetch(source, fromCache, false)

	parsed, err := ParseFeed(body)
	if err != nil {
		logger.C(ctx).Warn().Err(err).Str("source", source).Msg("feed parse failed; returning empty agenda")
		return []model.CalendarEvent{}, nil
	}

	events := make([]model.CalendarEvent, 0)
	for _, ev := range parsed {
		occs := ExpandDay(ev, day)
		if len(occs) == 0 {
			continue
		}

		tag := st.cfg.Tag
		if tag == "" {
			tag = Classify(ev, s.rules)
		}

		for _, occ := range occs {
			id := ev.UID
			if occ.Key != "" {
				id = ev.UID + "_" + occ.Key
			}
			events = append(events, model.CalendarEvent{
				ID:          id,
				Title:       titleOf(ev),
				Start:       occ.Start,
				End:         occ.End,
				Location:    ev.Location,
				Description: ev.Description,
				AllDay:      ev.AllDay,
				Calendar:    tag,
			})
		}
	}

	// Ascending by start; at equal starts all-day events sort first, then
	// encounter order (stable).
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Start.Equal(events[j].Start) {
			return events[i].AllDay && !events[j].AllDay
		}
		return events[i].Start.Before(events[j].Start)
	})

	return events, nil
}

// Refresh pre-warms every feed cache. Used by the cron schedule; individual
// failures are logged and skipped so one bad feed does not starve the rest.
func (s *Service) Refresh(ctx context.Context) {
	for _, name := range s.order {
		st := s.sources[name]
		if _, _, err := st.cache.Get(ctx); err != nil {
			logger.C(ctx).Warn().Err(err).Str("source", name).Msg("feed refresh failed")
		}
	}
}

func (s *Service) resolveTarget(target *Date) Date {
	if target != nil {
		return *target
	}
	return DateOf(s.now().In(s.loc))
}

func titleOf(ev ParsedEvent) string {
	if ev.Summary == "" {
		return "No Title"
	}
	return ev.Summary
}
