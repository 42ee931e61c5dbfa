package ics

import (
	"strings"

	"jazzy/internal/model"
)

// Rule is one predicate→tag entry in the classification policy. Rules are
// evaluated in order; the first match wins.
type Rule struct {
	Name  string
	Match func(ParsedEvent) bool
	Tag   model.CalendarTag
}

// familyProviderToken appears in organizer fields and UIDs of events that the
// family calendar provider publishes into the merged feed.
const familyProviderToken = "icloud"

// DefaultRules is the documented best-effort policy for tagging events from a
// merged feed. There is no authoritative calendar-source metadata, so this is
// string matching on what the feed happens to carry; renamed calendars or
// stripped organizers will misclassify, which is a known limitation.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name: "calendar name contains family",
			Match: func(ev ParsedEvent) bool {
				return strings.Contains(strings.ToLower(ev.CalendarName), "family")
			},
			Tag: model.CalendarFamily,
		},
		{
			Name: "organizer from family provider",
			Match: func(ev ParsedEvent) bool {
				return strings.Contains(strings.ToLower(ev.Organizer), familyProviderToken)
			},
			Tag: model.CalendarFamily,
		},
		{
			Name: "uid from family provider",
			Match: func(ev ParsedEvent) bool {
				return strings.Contains(strings.ToLower(ev.UID), familyProviderToken)
			},
			Tag: model.CalendarFamily,
		},
	}
}

// Classify applies rules in order and returns the first matching tag,
// defaulting to the work calendar.
func Classify(ev ParsedEvent, rules []Rule) model.CalendarTag {
	for _, r := range rules {
		if r.Match(ev) {
			return r.Tag
		}
	}
	return model.CalendarWork
}
