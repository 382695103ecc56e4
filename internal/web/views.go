package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/DancinTarnSBKR/Evenements-SBKR/internal/agenda"
	appLog "github.com/DancinTarnSBKR/Evenements-SBKR/internal/log"
	"github.com/DancinTarnSBKR/Evenements-SBKR/internal/store"
)

// eventView is the template-facing shape of one event card. All texts are
// pre-formatted; templates only place them.
type eventView struct {
	Title       string
	Highlighted bool
	StartText   string
	EndText     string
	City        string
	Location    string
	Description string
	CreatedText string
	CreatedBy   string
	MapURL      string
}

// groupView is one day heading plus its ordered event cards.
type groupView struct {
	Label  string
	Events []eventView
}

// pageView feeds both HTML templates.
type pageView struct {
	Groups    []groupView
	LoadedAt  string
	FromCache bool
	LoadError string

	// Month view only.
	MonthLabel string
	PrevURL    string
	NextURL    string
}

// errorView feeds the error page shown when no snapshot exists yet.
type errorView struct {
	Detail string
}

func (s *Server) agendaView(snap *store.Snapshot, loadErr error) pageView {
	v := pageView{
		LoadedAt:  snap.LoadedAt.Format("02/01/2006 15:04"),
		FromCache: snap.FromCache,
	}
	if loadErr != nil {
		v.LoadError = loadErr.Error()
	}
	return v
}

func groupViews(groups []agenda.Group) []groupView {
	out := make([]groupView, 0, len(groups))
	for _, g := range groups {
		gv := groupView{Label: g.Key.Label()}
		for _, ev := range g.Events {
			gv.Events = append(gv.Events, eventView{
				Title:       ev.Title,
				Highlighted: ev.Highlighted,
				StartText:   agenda.FormatDateTime(ev.Start),
				EndText:     agenda.FormatDateTime(ev.End),
				City:        ev.City,
				Location:    ev.Location,
				Description: ev.Description,
				CreatedText: agenda.FormatDateTime(ev.CreatedAt),
				CreatedBy:   ev.CreatedBy,
				MapURL:      ev.MapURL,
			})
		}
		out = append(out, gv)
	}
	return out
}

func (s *Server) render(w http.ResponseWriter, name string, view any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, view); err != nil {
		appLog.Error("template render failed", err, "template", name)
	}
}

// renderError shows the full-page error state used before the first
// successful load, with the manual retry button.
func (s *Server) renderError(w http.ResponseWriter, loadErr error) {
	detail := ""
	if loadErr != nil {
		detail = loadErr.Error()
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusServiceUnavailable)
	if err := s.tmpl.ExecuteTemplate(w, "erreur.html", errorView{Detail: detail}); err != nil {
		appLog.Error("template render failed", err, "template", "erreur.html")
	}
}

// --- JSON API ---

// eventDTO is the JSON shape of one event. Absent instants are null.
type eventDTO struct {
	Title       string     `json:"title"`
	Highlighted bool       `json:"highlighted"`
	Start       *time.Time `json:"start"`
	End         *time.Time `json:"end"`
	City        string     `json:"city"`
	Location    string     `json:"location"`
	Description string     `json:"description"`
	CreatedAt   *time.Time `json:"created_at"`
	CreatedBy   string     `json:"created_by"`
	MapURL      string     `json:"map_url,omitempty"`
}

type groupDTO struct {
	Date   string     `json:"date,omitempty"` // "2024-06-05"; empty for the undated bucket
	Label  string     `json:"label"`
	Events []eventDTO `json:"events"`
}

type eventsResponse struct {
	Groups          []groupDTO `json:"groups"`
	LoadedAt        time.Time  `json:"loaded_at"`
	FromCache       bool       `json:"from_cache"`
	DisplayTimeZone string     `json:"display_timezone"`
	Month           string     `json:"month,omitempty"`
	LoadError       string     `json:"load_error,omitempty"`
}

// handleEvents returns the grouped events as JSON.
//
// GET /api/events        — every day-group of the snapshot
// GET /api/events?y=&m=  — day-groups of one month (month-view data)
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	snap, loadErr := s.store.Snapshot()
	if snap == nil {
		msg := "no data loaded yet"
		if loadErr != nil {
			msg = loadErr.Error()
		}
		writeError(w, http.StatusServiceUnavailable, msg)
		return
	}

	events := snap.Events
	month := ""
	if r.URL.Query().Get("y") != "" || r.URL.Query().Get("m") != "" {
		cursor := s.cursorFromQuery(r)
		events = agenda.Filter(events, cursor)
		month = fmt.Sprintf("%04d-%02d", cursor.Year, int(cursor.Month))
	}

	groups := agenda.GroupByDay(events)
	dtos := make([]groupDTO, 0, len(groups))
	for _, g := range groups {
		dto := groupDTO{Label: g.Key.Label()}
		if !g.Key.Undated() {
			dto.Date = fmt.Sprintf("%04d-%02d-%02d", g.Key.Year, int(g.Key.Month), g.Key.Day)
		}
		for _, ev := range g.Events {
			dto.Events = append(dto.Events, eventDTO{
				Title:       ev.Title,
				Highlighted: ev.Highlighted,
				Start:       timePtr(ev.Start),
				End:         timePtr(ev.End),
				City:        ev.City,
				Location:    ev.Location,
				Description: ev.Description,
				CreatedAt:   timePtr(ev.CreatedAt),
				CreatedBy:   ev.CreatedBy,
				MapURL:      ev.MapURL,
			})
		}
		dtos = append(dtos, dto)
	}

	resp := eventsResponse{
		Groups:          dtos,
		LoadedAt:        snap.LoadedAt,
		FromCache:       snap.FromCache,
		DisplayTimeZone: s.store.Location().String(),
		Month:           month,
	}
	if loadErr != nil {
		resp.LoadError = loadErr.Error()
	}

	writeJSON(w, http.StatusOK, resp)
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
