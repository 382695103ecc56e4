package export

import (
	"fmt"
	"hash/fnv"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/DancinTarnSBKR/Evenements-SBKR/internal/agenda"
)

const (
	productID    = "-//SBKR//Evenements//FR"
	calendarName = "Évènements SBKR"
	uidDomain    = "evenements-sbkr"
)

// ICSOptions controls calendar generation.
type ICSOptions struct {
	// Subscription marks the output as a live feed: METHOD:PUBLISH plus a
	// suggested refresh interval, instead of a one-shot download.
	Subscription bool

	// Timezone is the display timezone name advertised in the calendar.
	Timezone string
}

// BuildCalendar converts normalized events into a VCALENDAR. Events
// without a start date have no place on a calendar and are skipped;
// everything else carries the same fields the agenda page shows.
func BuildCalendar(events []agenda.Event, opts ICSOptions) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetProductId(productID)
	cal.SetXWRCalName(calendarName)
	cal.SetCalscale("GREGORIAN")
	if opts.Timezone != "" {
		cal.SetXWRTimezone(opts.Timezone)
	}
	if opts.Subscription {
		cal.SetMethod(ics.MethodPublish)
		cal.SetXPublishedTTL("PT1H")
	}

	now := time.Now().UTC()
	seen := make(map[string]int)

	for _, ev := range events {
		if ev.Start.IsZero() {
			continue
		}

		// Duplicate title+start rows are legal in the sheet; give repeats
		// an ordinal so every VEVENT still carries a distinct UID.
		stem := eventUID(ev)
		n := seen[stem]
		seen[stem]++
		uid := stem + "@" + uidDomain
		if n > 0 {
			uid = fmt.Sprintf("%s-%d@%s", stem, n, uidDomain)
		}

		ve := cal.AddEvent(uid)
		ve.SetDtStampTime(now)
		ve.SetSummary(ev.Title)

		allDay := ev.Start.Hour() == 0 && ev.Start.Minute() == 0 && ev.Start.Second() == 0 && ev.End.IsZero()
		switch {
		case allDay:
			ve.SetAllDayStartAt(ev.Start)
			ve.SetAllDayEndAt(ev.Start.AddDate(0, 0, 1))
		case !ev.End.IsZero() && ev.End.After(ev.Start):
			ve.SetStartAt(ev.Start)
			ve.SetEndAt(ev.End)
		default:
			// Timed event with no usable end; give it a nominal hour.
			ve.SetStartAt(ev.Start)
			ve.SetEndAt(ev.Start.Add(time.Hour))
		}

		if loc := eventPlace(ev); loc != "" {
			ve.SetLocation(loc)
		}
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
		if !ev.CreatedAt.IsZero() {
			ve.SetCreatedTime(ev.CreatedAt)
		}
	}

	return cal
}

// eventUID derives a stable UID stem from start and title so subscribed
// calendar apps can match events across refreshes.
func eventUID(ev agenda.Event) string {
	h := fnv.New64a()
	h.Write([]byte(ev.Title))
	return fmt.Sprintf("%s-%x", ev.Start.Format("20060102T150405"), h.Sum64())
}

// eventPlace picks the ICS LOCATION text: the venue when present, the
// city otherwise, nothing when the city is only the placeholder.
func eventPlace(ev agenda.Event) string {
	if ev.Location != "" {
		return ev.Location
	}
	if ev.City != agenda.PlaceholderNone {
		return ev.City
	}
	return ""
}
