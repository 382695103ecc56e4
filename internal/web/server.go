package web

import (
	"context"
	"crypto/subtle"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/DancinTarnSBKR/Evenements-SBKR/internal/agenda"
	"github.com/DancinTarnSBKR/Evenements-SBKR/internal/config"
	"github.com/DancinTarnSBKR/Evenements-SBKR/internal/export"
	appLog "github.com/DancinTarnSBKR/Evenements-SBKR/internal/log"
	"github.com/DancinTarnSBKR/Evenements-SBKR/internal/store"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

// Server serves the agenda views, the JSON API and the export feeds, all
// reading from the snapshot store.
type Server struct {
	cfg   *config.Config
	store *store.Store
	mux   *http.ServeMux
	tmpl  *template.Template
}

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, st *store.Store) *Server {
	s := &Server{
		cfg:   cfg,
		store: st,
		mux:   http.NewServeMux(),
		tmpl:  template.Must(template.ParseFS(embeddedTemplates, "templates/*.html")),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler, wrapped with basic auth
// when credentials are configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// ListenAndServe starts the HTTP server bound to cfg.Listen and shuts it
// down when ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Listen,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	appLog.Info("HTTP server started", "listen", "http://"+s.cfg.Listen)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty username or password counts as disabled.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="Evenements SBKR", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/", s.handleAgenda)
	s.mux.HandleFunc("/mois", s.handleMonth)
	s.mux.HandleFunc("/api/events", s.handleEvents)
	s.mux.HandleFunc("/api/refresh", s.handleRefresh)
	s.mux.HandleFunc("/export.ics", s.handleExportICS)
	s.mux.HandleFunc("/export.csv", s.handleExportCSV)
	s.mux.HandleFunc("/subscribe.ics", s.handleSubscribeICS)
	s.mux.HandleFunc("/preview.png", s.handlePreview)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleAgenda renders the flat view: every day-group of the snapshot in
// order, the undated bucket last.
func (s *Server) handleAgenda(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	snap, loadErr := s.store.Snapshot()
	if snap == nil {
		s.renderError(w, loadErr)
		return
	}

	view := s.agendaView(snap, loadErr)
	view.Groups = groupViews(agenda.GroupByDay(snap.Events))
	s.render(w, "agenda.html", view)
}

// handleMonth renders the month view for the cursor in the query
// (?y=YYYY&m=MM), defaulting to the current month. Prev/next links carry
// the transitioned cursor; navigation re-groups already-loaded data and
// never re-fetches.
func (s *Server) handleMonth(w http.ResponseWriter, r *http.Request) {
	snap, loadErr := s.store.Snapshot()
	if snap == nil {
		s.renderError(w, loadErr)
		return
	}

	cursor := s.cursorFromQuery(r)

	view := s.agendaView(snap, loadErr)
	view.Groups = groupViews(agenda.GroupByDay(agenda.Filter(snap.Events, cursor)))
	view.MonthLabel = cursor.Label()
	view.PrevURL = monthURL(cursor.Prev())
	view.NextURL = monthURL(cursor.Next())
	s.render(w, "mois.html", view)
}

// handleRefresh triggers a full reload of the sheet. This is the manual
// retry affordance behind the error page's button.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := s.store.Refresh(r.Context()); err != nil {
		appLog.Error("manual refresh failed", err)
		if r.FormValue("redirect") != "" {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	if r.FormValue("redirect") != "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleExportICS(w http.ResponseWriter, r *http.Request) {
	snap := s.requireSnapshot(w)
	if snap == nil {
		return
	}

	cal := export.BuildCalendar(snap.Events, export.ICSOptions{Timezone: s.cfg.Timezone})
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename=evenements-sbkr.ics`)
	_, _ = fmt.Fprint(w, cal.Serialize())
}

// handleSubscribeICS serves the live subscription feed: inline content
// (no attachment disposition) so calendar apps can subscribe to the URL.
func (s *Server) handleSubscribeICS(w http.ResponseWriter, r *http.Request) {
	snap := s.requireSnapshot(w)
	if snap == nil {
		return
	}

	cal := export.BuildCalendar(snap.Events, export.ICSOptions{
		Subscription: true,
		Timezone:     s.cfg.Timezone,
	})
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	_, _ = fmt.Fprint(w, cal.Serialize())
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	snap := s.requireSnapshot(w)
	if snap == nil {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename=evenements-sbkr.csv`)
	if err := export.WriteCSV(w, snap.Events); err != nil {
		appLog.Error("csv export failed", err)
	}
}

// handlePreview serves the last captured agenda poster from disk.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	if s.cfg.PreviewPath == "" {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, s.cfg.PreviewPath)
}

// requireSnapshot returns the current snapshot, writing a 503 when no
// load has succeeded yet.
func (s *Server) requireSnapshot(w http.ResponseWriter) *store.Snapshot {
	snap, loadErr := s.store.Snapshot()
	if snap == nil {
		msg := "no data loaded yet"
		if loadErr != nil {
			msg = loadErr.Error()
		}
		writeError(w, http.StatusServiceUnavailable, msg)
		return nil
	}
	return snap
}

// cursorFromQuery reads the month cursor from ?y=&m=, falling back to the
// current month for missing or out-of-range values.
func (s *Server) cursorFromQuery(r *http.Request) agenda.Cursor {
	now := agenda.CursorFor(time.Now().In(s.store.Location()))

	q := r.URL.Query()
	year, errY := strconv.Atoi(q.Get("y"))
	month, errM := strconv.Atoi(q.Get("m"))
	if errY != nil || errM != nil || month < 1 || month > 12 {
		return now
	}
	return agenda.Cursor{Year: year, Month: time.Month(month)}
}

func monthURL(c agenda.Cursor) string {
	return fmt.Sprintf("/mois?y=%d&m=%d", c.Year, int(c.Month))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
