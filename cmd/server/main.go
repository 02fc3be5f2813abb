// Command server runs the reporting core: the public submission and tracking
// endpoints plus the staff case API, backed by Postgres or in-memory stores.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	accesshandler "signalbox/internal/access/handler"
	accessservice "signalbox/internal/access/service"
	httpapi "signalbox/internal/http"
	"signalbox/internal/intake"
	msgservice "signalbox/internal/messaging/service"
	msgstore "signalbox/internal/messaging/store/messages"
	"signalbox/internal/platform/config"
	"signalbox/internal/platform/httpserver"
	"signalbox/internal/platform/logger"
	"signalbox/internal/platform/metrics"
	"signalbox/internal/platform/middleware"
	"signalbox/internal/platform/postgres"
	platformredis "signalbox/internal/platform/redis"
	"signalbox/internal/platform/telemetry"
	"signalbox/internal/ratelimit"
	"signalbox/internal/reportcase/credential"
	casehandler "signalbox/internal/reportcase/handler"
	caseservice "signalbox/internal/reportcase/service"
	"signalbox/internal/reportcase/store/cases"
	tenantservice "signalbox/internal/tenant/service"
	"signalbox/internal/tenant/store/tenants"
	"signalbox/pkg/events"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	shutdownTracing, err := telemetry.Init(ctx, "signalbox", cfg.OTLPEndpoint)
	if err != nil {
		log.Error("failed to init tracing", "error", err)
		os.Exit(1)
	}

	hasher, err := credential.NewHasher(cfg.CredentialKey)
	if err != nil {
		log.Error("invalid credential key", "error", err)
		os.Exit(1)
	}

	// Stores: Postgres when configured, in-memory otherwise.
	var (
		caseStore   caseservice.CaseStore
		caseLookup  accessservice.CaseLookup
		msgStore    msgservice.MessageStore
		tenantStore tenantservice.TenantStore
		caseOpts    []caseservice.Option
	)
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			log.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			log.Error("failed to migrate schema", "error", err)
			os.Exit(1)
		}
		pgCases := cases.NewPostgres(db)
		caseStore, caseLookup = pgCases, pgCases
		msgStore = msgstore.NewPostgres(db)
		tenantStore = tenants.NewPostgres(db)
		caseOpts = append(caseOpts, caseservice.WithTxRunner(postgres.NewTxRunner(db)))
		log.Info("using postgres stores")
	} else {
		memCases := cases.NewInMemory()
		caseStore, caseLookup = memCases, memCases
		msgStore = msgstore.NewInMemory()
		tenantStore = tenants.NewInMemory()
		log.Warn("no database configured, using in-memory stores")
	}

	// Rate limiting: shared counters via Redis when configured.
	var limiter ratelimit.Limiter = ratelimit.NewInMemory(cfg.PublicRateWindow)
	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		limiter = ratelimit.NewRedis(redisClient.Client, cfg.PublicRateWindow)
		log.Info("using redis rate limiting")
	}

	// Notifications: Kafka when brokers are configured, in-memory otherwise.
	var sink events.Sink
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err := events.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Error("failed to connect to kafka", "error", err)
			os.Exit(1)
		}
		defer kafkaSink.Close()
		sink = kafkaSink
		log.Info("publishing events to kafka", "topic", cfg.KafkaTopic)
	} else {
		sink = events.NewMemorySink()
		log.Warn("no kafka brokers configured, events stay in memory")
	}
	publisher := events.NewPublisher(sink, events.WithLogger(log), events.WithAsyncBuffer(256))
	defer publisher.Close()

	m := metrics.New()
	msgs := msgservice.New(msgStore, log)
	tenantSvc := tenantservice.New(tenantStore, log)
	gate := intake.NewGate(intake.WithMinElapsed(cfg.IntakeMinElapsed))
	caseSvc := caseservice.New(caseStore, msgs, gate, hasher, publisher, m, log, caseOpts...)
	accessSvc := accessservice.New(caseLookup, msgs, hasher, publisher, m, log)

	if cfg.DatabaseURL == "" {
		// In-memory mode is for development; give it a channel to hit.
		if _, err := tenantSvc.EnsureSeed(ctx, "default", "Default Organization"); err != nil {
			log.Error("failed to seed tenant", "error", err)
			os.Exit(1)
		}
	}

	router := httpapi.New(httpapi.Deps{
		Public:    accesshandler.New(tenantSvc, caseSvc, accessSvc, log),
		Staff:     casehandler.New(caseSvc, log),
		StaffAuth: middleware.NewStaffAuth(cfg.StaffJWTKey, log),
		Metrics:   m,
		Limiter:   limiter,
		RateLimit: cfg.PublicRateLimit,
		Logger:    log,
	})
	srv := httpserver.New(cfg.Addr, router)

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return shutdownTracing(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
