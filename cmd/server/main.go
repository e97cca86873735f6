package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"golang.org/x/sync/errgroup"

	"meeshy/internal/platform/config"
	"meeshy/internal/platform/httpserver"
	"meeshy/internal/platform/logger"
	"meeshy/internal/platform/postgres"
	redisplatform "meeshy/internal/platform/redis"
	"meeshy/internal/presence/attachments"
	"meeshy/internal/presence/broadcast"
	"meeshy/internal/presence/handler"
	"meeshy/internal/presence/metrics"
	"meeshy/internal/presence/ports"
	"meeshy/internal/presence/reconciler"
	"meeshy/internal/presence/registry"
	sharelinkstore "meeshy/internal/presence/store/sharelink"
	subjectstore "meeshy/internal/presence/store/subject"
	throttlestore "meeshy/internal/presence/store/throttle"
	"meeshy/internal/presence/throttle"
	httptransport "meeshy/internal/transport/http"
)

// main wires configuration, storage, and the presence services, then runs the
// HTTP server until a shutdown signal. Presence rules live in
// internal/presence; main only composes.
func main() {
	log := logger.New()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage: Postgres and Redis when configured, in-process otherwise.
	var (
		subjects   ports.SubjectStore
		shareLinks ports.ShareLinkStore
		cache      ports.ThrottleStore
	)

	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
		subjects = subjectstore.NewPostgres(db)
		shareLinks = sharelinkstore.NewPostgres(db)
		log.Info("using postgres subject store")
	} else {
		subjects = subjectstore.NewInMemory()
		shareLinks = sharelinkstore.NewInMemory()
		log.Warn("no DATABASE_URL configured, presence state is in-process only")
	}

	redisClient, err := redisplatform.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		cache = throttlestore.NewRedis(redisClient.Client, cfg.Presence.ThrottleInterval)
		log.Info("using redis throttle store, window holds across replicas")
	} else {
		cache = throttlestore.NewInMemory()
		log.Info("using in-process throttle store")
	}

	m := metrics.New()

	// Status flips fan out over NATS when configured; without it presence is
	// persisted but not delivered live.
	hub := broadcast.New(broadcast.WithLogger(log), broadcast.WithMetrics(m))
	if cfg.NATSURL != "" {
		nc, err := nats.Connect(cfg.NATSURL,
			nats.MaxReconnects(-1),
			nats.ReconnectWait(2*time.Second),
		)
		if err != nil {
			log.Error("nats connection failed", "error", err)
			os.Exit(1)
		}
		defer nc.Drain()
		hub.SetCallback(broadcast.NewNATSPublisher(nc, log).Callback())
		log.Info("broadcasting status events over nats", "url", cfg.NATSURL)
	}

	throttleSvc, err := throttle.New(cache, subjects,
		cfg.Presence.ThrottleInterval,
		cfg.Presence.CacheCleanupInterval,
		cfg.Presence.CacheMaxAge,
		throttle.WithLogger(log),
		throttle.WithMetrics(m),
	)
	if err != nil {
		log.Error("throttle setup failed", "error", err)
		os.Exit(1)
	}

	reg, err := registry.New(throttleSvc, hub,
		registry.WithLogger(log),
		registry.WithMetrics(m),
	)
	if err != nil {
		log.Error("registry setup failed", "error", err)
		os.Exit(1)
	}

	var attachmentSvc ports.AttachmentService
	if cfg.AttachmentServiceURL != "" {
		attachmentSvc = attachments.New(cfg.AttachmentServiceURL, attachments.WithLogger(log))
	}

	rec, err := reconciler.New(subjects, shareLinks, attachmentSvc, hub, reconciler.Config{
		OfflineThreshold:            cfg.Presence.OfflineThreshold,
		MaintenanceInterval:         cfg.Presence.MaintenanceInterval,
		CleanupCheckInterval:        time.Hour,
		AnonymousSessionTTL:         cfg.Presence.AnonymousSessionTTL,
		OrphanedAttachmentThreshold: cfg.Presence.OrphanedAttachmentThreshold,
		CleanupWindowStartHour:      cfg.Presence.CleanupWindowStartHour,
		CleanupWindowEndHour:        cfg.Presence.CleanupWindowEndHour,
	}, reconciler.WithLogger(log), reconciler.WithMetrics(m))
	if err != nil {
		log.Error("reconciler setup failed", "error", err)
		os.Exit(1)
	}

	throttleSvc.Start()
	defer throttleSvc.Stop()
	rec.Start()
	defer rec.Stop()

	var pinger httptransport.Pinger
	if db != nil {
		pinger = db
	}
	router := httptransport.NewRouter(handler.New(rec, throttleSvc, reg, log), pinger, log)
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("presence gateway listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
