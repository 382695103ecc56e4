package agenda

import (
	"net/url"
	"strings"
	"time"

	"github.com/DancinTarnSBKR/Evenements-SBKR/internal/sheet"
)

// Sheet column labels. Column presence is never guaranteed; absent
// columns read as empty cells.
const (
	ColTitre       = "Titre"
	ColDebut       = "Début"
	ColFin         = "Fin"
	ColVille       = "VILLE"
	ColLieu        = "Lieu"
	ColDescription = "Description"
	ColCreation    = "Date de création"
	ColDesignation = "Désignation"

	// Creator column aliases used by some revisions of the sheet.
	ColCreateur = "Créateur"
	ColEmails   = "Emails"
)

// Placeholder texts substituted once, at normalization. Views render
// events as-is and never re-check for blank fields.
const (
	PlaceholderTitle = "Événement sans titre"
	PlaceholderNone  = "Non spécifié"
)

const mapsSearchURL = "https://www.google.com/maps/search/?api=1&query="

// Event is the canonical, immutable view of one sheet row. A zero
// time.Time means the corresponding date cell was blank or unparseable.
type Event struct {
	Title       string
	Highlighted bool

	Start time.Time
	End   time.Time

	City        string
	Location    string
	Description string

	CreatedAt time.Time
	CreatedBy string

	// MapURL is a Google Maps search link derived from the location
	// (preferred) or the city. Empty when both are blank.
	MapURL string
}

// Normalizer turns raw sheet rows into Events.
type Normalizer struct {
	// Location is the timezone in which sheet dates are interpreted.
	// Nil means time.Local.
	Location *time.Location

	// Markers lists title substrings that flag an event as highlighted
	// (case-sensitive, exact substring).
	Markers []string

	// Names is the optional lowercased-email → display-name table from
	// the lookup sheet. Nil or empty disables name resolution.
	Names map[string]string
}

// Normalize maps one raw row into an Event. Every row yields exactly one
// Event, whatever its cells contain; per-field parse failures only leave
// the corresponding instant absent.
func (n *Normalizer) Normalize(row sheet.Row) Event {
	title := strings.TrimSpace(row.Get(ColTitre))

	ev := Event{
		Title:       title,
		Highlighted: n.highlighted(title),
		City:        strings.TrimSpace(row.Get(ColVille)),
		Location:    strings.TrimSpace(row.Get(ColLieu)),
		Description: strings.TrimSpace(row.Get(ColDescription)),
	}

	if ev.Title == "" {
		ev.Title = PlaceholderTitle
	}
	if ev.City == "" {
		ev.City = PlaceholderNone
	}

	ev.Start, _ = ParseFrenchDate(strings.TrimSpace(row.Get(ColDebut)), n.Location)
	ev.End, _ = ParseFrenchDate(strings.TrimSpace(row.Get(ColFin)), n.Location)
	ev.CreatedAt, _ = ParseFrenchDate(strings.TrimSpace(row.Get(ColCreation)), n.Location)

	ev.CreatedBy = n.resolveCreator(row)
	ev.MapURL = mapLink(strings.TrimSpace(row.Get(ColLieu)), strings.TrimSpace(row.Get(ColVille)))

	return ev
}

// NormalizeAll maps a full row sequence, preserving input order. The
// grouping engine relies on that order for its stability tie-break.
func (n *Normalizer) NormalizeAll(rows []sheet.Row) []Event {
	events := make([]Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, n.Normalize(row))
	}
	return events
}

func (n *Normalizer) highlighted(title string) bool {
	for _, marker := range n.Markers {
		if marker != "" && strings.Contains(title, marker) {
			return true
		}
	}
	return false
}

// resolveCreator resolves the creator field: lookup hit → display name,
// lookup miss → raw value, blank field → placeholder.
func (n *Normalizer) resolveCreator(row sheet.Row) string {
	raw := strings.TrimSpace(row.Get(ColDesignation))
	if raw == "" {
		raw = strings.TrimSpace(row.Get(ColCreateur))
	}
	if raw == "" {
		raw = strings.TrimSpace(row.Get(ColEmails))
	}
	if raw == "" {
		return PlaceholderNone
	}
	if name, ok := n.Names[strings.ToLower(raw)]; ok {
		return name
	}
	return raw
}

// mapLink builds the maps search URL from the location, falling back to
// the city. Both blank → no link.
func mapLink(location, city string) string {
	query := location
	if query == "" {
		query = city
	}
	if query == "" {
		return ""
	}
	return mapsSearchURL + url.QueryEscape(query)
}
