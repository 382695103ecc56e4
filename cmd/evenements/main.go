package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/DancinTarnSBKR/Evenements-SBKR/internal/capture"
	"github.com/DancinTarnSBKR/Evenements-SBKR/internal/config"
	"github.com/DancinTarnSBKR/Evenements-SBKR/internal/export"
	appLog "github.com/DancinTarnSBKR/Evenements-SBKR/internal/log"
	"github.com/DancinTarnSBKR/Evenements-SBKR/internal/store"
	"github.com/DancinTarnSBKR/Evenements-SBKR/internal/web"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	listen     string
	once       bool
	dump       bool
}

func main() {
	appLog.Info("evenements starting", "version", "1.0.0")

	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))

	if conf.SheetURL == "" {
		appLog.Error("no sheet configured", nil, "config_path", flags.configPath, "hint", "set sheet_url to the published CSV endpoint")
		os.Exit(1)
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"refresh", conf.RefreshCron,
		"lookup", conf.LookupURL != "",
		"preview", conf.PreviewPath != "",
		"once", flags.once,
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	st := store.New(conf)

	if flags.once {
		os.Exit(runOnce(ctx, st, flags.dump))
	}

	// Initial load; a failure here is not fatal, the web UI shows the
	// error state with a retry button and cron keeps trying.
	if err := st.Refresh(ctx); err != nil {
		appLog.Error("initial load failed", err)
	}

	// Periodic refresh plus, when configured, a poster capture of the
	// freshly rendered agenda.
	sched := cron.New()
	_, err = sched.AddFunc(conf.RefreshCron, func() {
		if err := st.Refresh(ctx); err != nil {
			appLog.Error("scheduled refresh failed", err)
			return
		}
		capturePreview(ctx, conf)
	})
	if err != nil {
		appLog.Error("invalid refresh schedule", err, "refresh", conf.RefreshCron)
		os.Exit(1)
	}
	sched.Start()
	defer sched.Stop()

	server := web.NewServer(conf, st)
	if err := server.ListenAndServe(ctx); err != nil {
		appLog.Error("HTTP server stopped", err)
		os.Exit(1)
	}

	appLog.Info("evenements exiting")
}

// runOnce performs a single load and exits: a cheap way to validate the
// config and the feed from the command line. With -dump the normalized
// events are written to stdout as CSV.
func runOnce(ctx context.Context, st *store.Store, dump bool) int {
	if err := st.Refresh(ctx); err != nil {
		appLog.Error("load failed", err)
		return 1
	}

	snap, _ := st.Snapshot()
	appLog.Info("load completed", "event_count", len(snap.Events), "name_count", len(snap.Names))

	if dump {
		if err := export.WriteCSV(os.Stdout, snap.Events); err != nil {
			appLog.Error("dump failed", err)
			return 1
		}
	}
	return 0
}

// capturePreview refreshes the poster PNG from the live agenda page.
func capturePreview(ctx context.Context, conf *config.Config) {
	if conf.PreviewPath == "" {
		return
	}
	// Basic auth would block the headless browser; skip capture then.
	if conf.BasicAuth != nil && conf.BasicAuth.Username != "" {
		appLog.Debug("preview capture skipped: basic auth enabled")
		return
	}

	opts := capture.Options{
		URL:        "http://" + conf.Listen + "/",
		OutputPath: conf.PreviewPath,
		Timeout:    30 * time.Second,
	}
	if err := capture.AgendaPNG(ctx, opts); err != nil {
		appLog.Error("preview capture failed", err)
		return
	}
	appLog.Info("preview captured", "path", conf.PreviewPath)
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "./config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Run one fetch+normalize cycle and exit")
	flag.BoolVar(&cfg.dump, "dump", false, "With -once: write normalized events to stdout as CSV")

	flag.Parse()

	return cfg
}
