package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"livesched-engine/internal/config"
	"livesched-engine/internal/events"
	"livesched-engine/internal/feed"
	"livesched-engine/internal/httpapi"
	"livesched-engine/internal/logging"
	"livesched-engine/internal/scheduler"
	"livesched-engine/internal/secrets"
	"livesched-engine/internal/store"
)

const keepRefreshRecords = 500

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "engine:", err)
		os.Exit(1)
	}
}

func run() error {
	// The desktop shell passes a per-user data dir; fall back to the working dir.
	dataDir := os.Getenv("LIVESCHED_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	lock := flock.New(filepath.Join(dataDir, "engine.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock data dir: %w", err)
	}
	if !locked {
		return fmt.Errorf("another engine is already running on %s", dataDir)
	}
	defer func() { _ = lock.Unlock() }()

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		return fmt.Errorf("config bootstrap failed: %w", err)
	}

	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		return config.Load(userCfgPath)
	}
	cfg, err := loadCfg()
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", userCfgPath, err)
	}
	cfgVal.Store(cfg)

	log := logging.New(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()

	if _, vr := config.NormalizeAndValidate(cfg); !vr.OK() || len(vr.Warnings) > 0 {
		log.Warn("config check", zap.Strings("errors", vr.Errors), zap.Strings("warnings", vr.Warnings))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbDir := storeDir(dataDir, cfg.App.DataDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return err
	}
	dbPath := filepath.Join(dbDir, "livesched.db")
	db, err := store.Open(ctx, dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	hub := events.NewHub()

	client := feed.NewClient(feed.ClientOptions{
		Timeout:           cfg.FetchTimeout(),
		RequestsPerSecond: cfg.Feeds.RequestsPerSecond,
		Burst:             cfg.Feeds.Burst,
		// Read per request so a token saved through the API applies at once.
		Token: func() (string, error) {
			return secrets.GetFeedToken(cfgVal.Load().(config.Config).Feeds.TokenAccount)
		},
	})

	poller := feed.NewPoller(feedOptions(cfg), feed.PollerDeps{
		Client: client,
		Cache:  db,
		Hub:    hub,
		Log:    log,
		Build:  snapshotBuilder(cfg),
	})
	if err := poller.WarmStart(ctx); err != nil {
		log.Warn("warm start", zap.Error(err))
	}

	shutdownToken := os.Getenv("LIVESCHED_SHUTDOWN_TOKEN")
	if shutdownToken == "" {
		if shutdownToken, err = randomToken(16); err != nil {
			return err
		}
	}
	tokenPath := filepath.Join(dataDir, "engine.token")
	if err := os.WriteFile(tokenPath, []byte(shutdownToken), 0o600); err != nil {
		return fmt.Errorf("write shutdown token: %w", err)
	}
	defer os.Remove(tokenPath)

	handler := httpapi.NewRouter(httpapi.Deps{
		Feed:        poller,
		History:     db,
		Hub:         hub,
		Log:         log,
		CfgVal:      &cfgVal,
		UserCfgPath: userCfgPath,
		LoadCfg:     loadCfg,
		OnConfigSaved: func(c config.Config) {
			poller.Reconfigure(feedOptions(c), snapshotBuilder(c))
			log.Info("config applied", zap.String("path", userCfgPath))
		},
		ShutdownToken: shutdownToken,
		Shutdown:      stop,
	})

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.App.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go poller.Run(ctx)
	go scheduler.Every(ctx, clockwork.NewRealClock(), time.Hour, log, "prune refresh log", func(ctx context.Context) error {
		_, err := db.PruneRefreshes(ctx, keepRefreshRecords)
		return err
	})

	serveErr := make(chan error, 1)
	go func() {
		log.Info("engine listening", zap.String("addr", "http://"+addr), zap.String("db", dbPath))
		serveErr <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
