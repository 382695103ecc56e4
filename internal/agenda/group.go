package agenda

import (
	"sort"
	"time"
)

// DayKey is a calendar-day grouping key. The zero DayKey is the
// distinguished "no date" bucket for events whose start is absent.
type DayKey struct {
	Year  int
	Month time.Month
	Day   int
}

// Undated reports whether this is the "no date" bucket key.
func (k DayKey) Undated() bool {
	return k == DayKey{}
}

// Before orders keys ascending by date, with the undated key sorting
// after every dated key.
func (k DayKey) Before(o DayKey) bool {
	if k.Undated() {
		return false
	}
	if o.Undated() {
		return true
	}
	if k.Year != o.Year {
		return k.Year < o.Year
	}
	if k.Month != o.Month {
		return k.Month < o.Month
	}
	return k.Day < o.Day
}

// Label renders the French day heading ("Jeudi 5 juin 2024"), or
// "Sans date" for the undated bucket.
func (k DayKey) Label() string {
	if k.Undated() {
		return "Sans date"
	}
	t := time.Date(k.Year, k.Month, k.Day, 0, 0, 0, 0, time.UTC)
	return capitalize(formatFrenchDay(t))
}

// DayKeyOf derives the grouping key from an event start, ignoring
// time-of-day. A zero start maps to the undated key.
func DayKeyOf(start time.Time) DayKey {
	if start.IsZero() {
		return DayKey{}
	}
	return DayKey{Year: start.Year(), Month: start.Month(), Day: start.Day()}
}

// Group is one display bucket: a day key and its ordered events.
type Group struct {
	Key    DayKey
	Events []Event
}

// GroupByDay buckets events by the calendar day of their start and orders
// everything for display:
//
//   - groups ascend by date, the undated bucket always last;
//   - within a group, events ascend by CreatedAt, an absent CreatedAt
//     counting as the zero time (so it sorts first);
//   - ties keep the input order (stable), so re-renders of the same sheet
//     are deterministic.
//
// Grouping is idempotent: regrouping the flattened output yields the same
// groups in the same order.
func GroupByDay(events []Event) []Group {
	buckets := make(map[DayKey][]Event)
	var keys []DayKey

	for _, ev := range events {
		key := DayKeyOf(ev.Start)
		if _, seen := buckets[key]; !seen {
			keys = append(keys, key)
		}
		buckets[key] = append(buckets[key], ev)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	groups := make([]Group, 0, len(keys))
	for _, key := range keys {
		evs := buckets[key]
		sort.SliceStable(evs, func(i, j int) bool {
			return evs[i].CreatedAt.Before(evs[j].CreatedAt)
		})
		groups = append(groups, Group{Key: key, Events: evs})
	}
	return groups
}

// Filter keeps only events whose start falls in the cursor's month.
// Undated events never match a month view.
func Filter(events []Event, c Cursor) []Event {
	out := make([]Event, 0, len(events))
	for _, ev := range events {
		if c.Contains(ev.Start) {
			out = append(out, ev)
		}
	}
	return out
}
