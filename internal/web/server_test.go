package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DancinTarnSBKR/Evenements-SBKR/internal/config"
	"github.com/DancinTarnSBKR/Evenements-SBKR/internal/store"
)

const testSheet = "Titre,Début,Fin,VILLE,Lieu,Description,Date de création,Désignation\n" +
	"Concert,05/06/2024 10:00,05/06/2024 12:00,Albi,Salle des fetes,Ouvert a tous,01/06/2024 09:00,marie@example.org\n" +
	"Anniversaire Marie,,,,,,,\n"

// newTestServer loads one snapshot from a fake published sheet and
// returns a ready Server.
func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(testSheet))
	}))
	t.Cleanup(backend.Close)

	cfg := config.DefaultConfig()
	cfg.SheetURL = backend.URL
	cfg.CacheDir = t.TempDir()
	cfg.Timezone = "UTC"
	if mutate != nil {
		mutate(cfg)
	}

	st := store.New(cfg)
	if err := st.Refresh(context.Background()); err != nil {
		t.Fatalf("initial load: %v", err)
	}

	return NewServer(cfg, st)
}

func do(t *testing.T, s *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestAgendaPage(t *testing.T) {
	s := newTestServer(t, nil)
	w := do(t, s, http.MethodGet, "/")

	if w.Code != http.StatusOK {
		t.Fatalf("GET / = %d, want 200", w.Code)
	}
	body := w.Body.String()

	for _, want := range []string{
		"Concert",
		"Mercredi 5 juin 2024", // day heading
		"Sans date",            // undated bucket, rendered last
		`class="red"`,          // birthday highlight
		"Anniversaire Marie",
		"google.com/maps/search",
		"marie@example.org", // no lookup sheet: raw email shown
	} {
		if !strings.Contains(body, want) {
			t.Errorf("agenda page missing %q", want)
		}
	}

	if strings.Index(body, "Mercredi 5 juin 2024") > strings.Index(body, "Sans date") {
		t.Error("undated bucket should render after dated groups")
	}
}

func TestMonthPage(t *testing.T) {
	s := newTestServer(t, nil)

	w := do(t, s, http.MethodGet, "/mois?y=2024&m=6")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /mois = %d, want 200", w.Code)
	}
	body := w.Body.String()

	if !strings.Contains(body, "Juin 2024") {
		t.Error("month heading missing")
	}
	if !strings.Contains(body, "/mois?y=2024&amp;m=5") {
		t.Error("previous-month link missing or wrong")
	}
	if !strings.Contains(body, "/mois?y=2024&amp;m=7") {
		t.Error("next-month link missing or wrong")
	}
	if !strings.Contains(body, "Concert") {
		t.Error("event in the cursor month should render")
	}
	if strings.Contains(body, "Anniversaire Marie") {
		t.Error("undated events must not appear in a month view")
	}
}

func TestMonthPage_EmptyMonth(t *testing.T) {
	s := newTestServer(t, nil)
	body := do(t, s, http.MethodGet, "/mois?y=2024&m=7").Body.String()

	if !strings.Contains(body, "Aucun événement ce mois-ci.") {
		t.Error("empty month should show the no-events message")
	}
}

func TestMonthPage_DecemberWraparound(t *testing.T) {
	s := newTestServer(t, nil)
	body := do(t, s, http.MethodGet, "/mois?y=2024&m=12").Body.String()

	if !strings.Contains(body, "/mois?y=2025&amp;m=1") {
		t.Error("next link from December should wrap into January of the next year")
	}
	if !strings.Contains(body, "/mois?y=2024&amp;m=11") {
		t.Error("previous link from December should be November")
	}
}

func TestAPIEvents(t *testing.T) {
	s := newTestServer(t, nil)
	w := do(t, s, http.MethodGet, "/api/events")

	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/events = %d, want 200", w.Code)
	}

	var resp eventsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(resp.Groups) != 2 {
		t.Fatalf("got %d groups, want 2 (one day + undated)", len(resp.Groups))
	}
	if resp.Groups[0].Date != "2024-06-05" {
		t.Errorf("first group date = %q, want 2024-06-05", resp.Groups[0].Date)
	}
	last := resp.Groups[len(resp.Groups)-1]
	if last.Date != "" || last.Label != "Sans date" {
		t.Errorf("last group = %+v, want the undated bucket", last)
	}
	if last.Events[0].Start != nil {
		t.Error("undated event should serialize start as null")
	}
	if !last.Events[0].Highlighted {
		t.Error("birthday event should be highlighted")
	}
}

func TestAPIEvents_MonthFilter(t *testing.T) {
	s := newTestServer(t, nil)
	w := do(t, s, http.MethodGet, "/api/events?y=2024&m=7")

	var resp eventsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Month != "2024-07" {
		t.Errorf("month = %q, want 2024-07", resp.Month)
	}
	if len(resp.Groups) != 0 {
		t.Errorf("july has no events, got %d groups", len(resp.Groups))
	}
}

func TestRefreshEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	if w := do(t, s, http.MethodGet, "/api/refresh"); w.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /api/refresh = %d, want 405", w.Code)
	}
	if w := do(t, s, http.MethodPost, "/api/refresh"); w.Code != http.StatusOK {
		t.Errorf("POST /api/refresh = %d, want 200", w.Code)
	}
}

func TestExportCSV(t *testing.T) {
	s := newTestServer(t, nil)
	w := do(t, s, http.MethodGet, "/export.csv")

	if w.Code != http.StatusOK {
		t.Fatalf("GET /export.csv = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/csv") {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("Content-Disposition = %q, want attachment", cd)
	}
	if !strings.Contains(w.Body.String(), "Concert") {
		t.Error("CSV export missing event data")
	}
}

func TestSubscribeICS(t *testing.T) {
	s := newTestServer(t, nil)
	w := do(t, s, http.MethodGet, "/subscribe.ics")

	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/calendar") {
		t.Errorf("Content-Type = %q, want text/calendar", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd != "" {
		t.Errorf("subscription feed must not set Content-Disposition, got %q", cd)
	}
	body := w.Body.String()
	if !strings.Contains(body, "METHOD:PUBLISH") {
		t.Error("subscription feed missing METHOD:PUBLISH")
	}
	if !strings.Contains(body, "SUMMARY:Concert") {
		t.Error("subscription feed missing event")
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	if w := do(t, s, http.MethodGet, "/health"); w.Code != http.StatusOK {
		t.Errorf("GET /health = %d, want 200", w.Code)
	}
}

func TestBasicAuth(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) {
		cfg.BasicAuth = &config.BasicAuthConfig{Username: "sbkr", Password: "secret"}
	})

	if w := do(t, s, http.MethodGet, "/"); w.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated GET / = %d, want 401", w.Code)
	}

	// /health stays open for liveness probes.
	if w := do(t, s, http.MethodGet, "/health"); w.Code != http.StatusOK {
		t.Errorf("unauthenticated GET /health = %d, want 200", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetBasicAuth("sbkr", "secret")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("authenticated GET / = %d, want 200", w.Code)
	}
}

// Before any successful load there is nothing to show: full error page
// with the retry affordance.
func TestErrorPageBeforeFirstLoad(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.SheetURL = "http://127.0.0.1:0/unreachable"
	cfg.CacheDir = t.TempDir()

	st := store.New(cfg)
	_ = st.Refresh(context.Background()) // expected to fail

	s := NewServer(cfg, st)
	w := do(t, s, http.MethodGet, "/")

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("GET / without data = %d, want 503", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Erreur de chargement des données.") {
		t.Error("error page missing the error message")
	}
	if !strings.Contains(body, "/api/refresh") {
		t.Error("error page missing the retry form")
	}
}
