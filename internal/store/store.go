package store

import (
	"context"
	"sync"
	"time"

	"github.com/DancinTarnSBKR/Evenements-SBKR/internal/agenda"
	"github.com/DancinTarnSBKR/Evenements-SBKR/internal/config"
	appLog "github.com/DancinTarnSBKR/Evenements-SBKR/internal/log"
	"github.com/DancinTarnSBKR/Evenements-SBKR/internal/sheet"
)

// Snapshot is one fully loaded, immutable view of the sheet. Views only
// ever read a snapshot; a refresh builds a new one and swaps it in.
type Snapshot struct {
	Events    []agenda.Event
	Names     map[string]string
	LoadedAt  time.Time
	FromCache bool
}

// Store runs the load pipeline (fetch → parse → normalize) and holds the
// latest snapshot. Refreshes may overlap (cron tick racing a manual
// refresh); each refresh takes a generation number when it starts and its
// result is dropped if a newer refresh started in the meantime, so a slow
// old load can never overwrite a newer one.
type Store struct {
	cfg      *config.Config
	fetcher  *sheet.Fetcher
	location *time.Location

	mu      sync.Mutex
	started uint64
	snap    *Snapshot
	lastErr error
}

// New creates a Store for the given configuration. An unknown timezone
// falls back to time.Local.
func New(cfg *config.Config) *Store {
	return &Store{
		cfg:      cfg,
		fetcher:  sheet.NewFetcher(cfg.CacheDir),
		location: resolveLocation(cfg.Timezone),
	}
}

// Location returns the display timezone.
func (s *Store) Location() *time.Location {
	return s.location
}

// Snapshot returns the latest published snapshot (nil before the first
// successful load) and the error of the most recent refresh attempt.
func (s *Store) Snapshot() (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap, s.lastErr
}

// Refresh runs one full load: the events sheet and the optional lookup
// sheet are fetched concurrently, parsed, normalized and published as a
// new snapshot.
//
// Failure semantics follow the feeds' importance: any failure on the
// events sheet aborts the load and is surfaced (the previous snapshot
// stays in place); lookup failures degrade to an empty name table and are
// only logged.
func (s *Store) Refresh(ctx context.Context) error {
	gen := s.begin()

	// Lookup sheet in parallel with the main fetch; both awaited below.
	namesCh := make(chan map[string]string, 1)
	go func() {
		namesCh <- s.fetchNames(ctx)
	}()

	res, err := s.fetcher.Fetch(ctx, sheet.Source{ID: "events", URL: s.cfg.SheetURL})
	if err != nil {
		<-namesCh
		s.fail(gen, err)
		return err
	}

	rows, err := sheet.ParseRows(res.Body)
	if err != nil {
		<-namesCh
		s.fail(gen, err)
		return err
	}

	names := <-namesCh

	normalizer := &agenda.Normalizer{
		Location: s.location,
		Markers:  s.cfg.HighlightMarkers,
		Names:    names,
	}

	snap := &Snapshot{
		Events:    normalizer.NormalizeAll(rows),
		Names:     names,
		LoadedAt:  time.Now().In(s.location),
		FromCache: res.FromCache,
	}

	if s.publish(gen, snap) {
		appLog.Info("snapshot published",
			"event_count", len(snap.Events),
			"name_count", len(names),
			"from_cache", snap.FromCache,
		)
	}
	return nil
}

// fetchNames loads the lookup sheet. Every failure path returns an empty
// map; the lookup feed must never block the main load.
func (s *Store) fetchNames(ctx context.Context) map[string]string {
	if s.cfg.LookupURL == "" {
		return map[string]string{}
	}

	res, err := s.fetcher.Fetch(ctx, sheet.Source{ID: "lookup", URL: s.cfg.LookupURL})
	if err != nil {
		appLog.Error("lookup sheet fetch failed; continuing without name lookup", err)
		return map[string]string{}
	}
	return sheet.ParseLookup(res.Body)
}

// begin registers a new refresh and returns its generation.
func (s *Store) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started++
	return s.started
}

// publish installs the snapshot unless a newer refresh has started since
// gen was taken. Returns whether the snapshot was installed.
func (s *Store) publish(gen uint64, snap *Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.started {
		appLog.Info("discarding stale refresh result", "generation", gen, "latest", s.started)
		return false
	}
	s.snap = snap
	s.lastErr = nil
	return true
}

// fail records a refresh error, unless a newer refresh has started.
func (s *Store) fail(gen uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.started {
		return
	}
	s.lastErr = err
}

func resolveLocation(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "name", name)
		return time.Local
	}
	return loc
}
