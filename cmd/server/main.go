package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sisvita/internal/authn"
	authnhandler "sisvita/internal/authn/handler"
	"sisvita/internal/catalog"
	catalogcache "sisvita/internal/catalog/cache"
	catalogmemory "sisvita/internal/catalog/store/memory"
	catalogpostgres "sisvita/internal/catalog/store/postgres"
	"sisvita/internal/identity"
	identitymemory "sisvita/internal/identity/store/memory"
	identitypostgres "sisvita/internal/identity/store/postgres"
	jwttoken "sisvita/internal/jwt_token"
	"sisvita/internal/platform/config"
	"sisvita/internal/platform/httpserver"
	"sisvita/internal/platform/metrics"
	"sisvita/internal/platform/postgres"
	redisplatform "sisvita/internal/platform/redis"
	registrationhandler "sisvita/internal/registration/handler"
	registrationservice "sisvita/internal/registration/service"
	profilememory "sisvita/internal/registration/store/memory"
	profilepostgres "sisvita/internal/registration/store/postgres"
	"sisvita/internal/verification"
	verificationhandler "sisvita/internal/verification/handler"
	"sisvita/pkg/platform/audit"
	"sisvita/pkg/platform/audit/publisher"
	auditkafka "sisvita/pkg/platform/audit/publishers/kafka"
	auditmemory "sisvita/pkg/platform/audit/store/memory"
	auditpostgres "sisvita/pkg/platform/audit/store/postgres"
	auditworker "sisvita/pkg/platform/audit/worker"
	"sisvita/pkg/platform/middleware/device"
	"sisvita/pkg/platform/middleware/metadata"
	"sisvita/pkg/platform/middleware/requesttime"
)

// main wires high-level dependencies, exposes the HTTP router, and
// keeps the server lifecycle small. Business logic lives in internal
// services packages.
func main() {
	cfg := config.FromEnv()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx := context.Background()

	db, err := postgres.Open(ctx, cfg.PostgresURL)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	redisClient, err := redisplatform.New(cfg.Redis)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Store selection: Postgres when configured, in-memory otherwise.
	var (
		identityStore identity.Store
		catalogStore  catalog.Store
		profileStore  interface {
			registrationservice.ProfileStore
			authn.AccountFinder
			verification.AccountMarker
		}
		auditStore audit.Store
	)
	if db != nil {
		identityStore = identitypostgres.New(db)
		catalogStore = catalogpostgres.New(db)
		profileStore = profilepostgres.New(db)
		auditStore = auditpostgres.New(db)
	} else {
		logger.Info("no postgres URL configured, using in-memory stores")
		identityStore = identitymemory.New()
		catalogStore = catalogmemory.NewSeeded(catalog.SeedEntries())
		profileStore = profilememory.New()
		auditStore = auditmemory.NewInMemoryStore()
	}

	if len(cfg.Kafka.Brokers) > 0 {
		sink, err := auditkafka.NewSink(ctx, cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			logger.Error("failed to connect to kafka", "error", err)
			os.Exit(1)
		}
		defer sink.Close()
		auditStore = sink

		// With a database present, consume the topic back into the
		// audit_events table so events stay queryable.
		if db != nil {
			materializer, err := auditworker.NewMaterializer(
				cfg.Kafka.Brokers, cfg.Kafka.AuditTopic, "sisvita-audit-materializer",
				auditpostgres.New(db), logger)
			if err != nil {
				logger.Error("failed to start audit materializer", "error", err)
				os.Exit(1)
			}
			defer materializer.Close()
			workerCtx, stopWorker := context.WithCancel(ctx)
			defer stopWorker()
			go func() {
				if err := materializer.Run(workerCtx); err != nil && workerCtx.Err() == nil {
					logger.Error("audit materializer stopped", "error", err)
				}
			}()
		}
	}

	if redisClient != nil {
		catalogStore = catalogcache.New(catalogStore, redisClient.Client,
			catalogcache.WithTTL(cfg.Redis.CatalogTTL),
			catalogcache.WithLogger(logger))
	}

	auditPublisher := publisher.NewPublisher(auditStore,
		publisher.WithAsyncBuffer(256),
		publisher.WithLogger(logger))
	defer auditPublisher.Close()

	m := metrics.New()
	tokens := jwttoken.NewJWTService(cfg.JWTSigningKey, "sisvita")
	identities := identity.NewProvider(identityStore)

	verificationSender := verification.NewSender(tokens, cfg.VerificationBaseURL, cfg.VerificationTTL,
		verification.WithSenderLogger(logger),
		verification.WithSenderAuditPublisher(auditPublisher))
	verificationService := verification.New(tokens, identities, profileStore,
		verification.WithLogger(logger),
		verification.WithAuditPublisher(auditPublisher),
		verification.WithMetrics(m))

	registrationService := registrationservice.New(identities, catalogStore, profileStore, verificationSender,
		registrationservice.WithLogger(logger),
		registrationservice.WithAuditPublisher(auditPublisher),
		registrationservice.WithMetrics(m))

	authnService := authn.New(identities, profileStore, tokens, cfg.AccessTokenTTL,
		authn.WithLogger(logger),
		authn.WithAuditPublisher(auditPublisher),
		authn.WithMetrics(m),
		authn.WithRequireVerified(cfg.RequireVerifiedLogin))

	router := chi.NewRouter()
	router.Use(requesttime.Middleware)
	router.Use(metadata.ClientMetadata)
	router.Use(device.Middleware)

	registrationhandler.New(registrationService, logger).Register(router)
	verificationhandler.New(verificationService, logger).Register(router)
	authnhandler.New(authnService, logger).Register(router)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())

	srv := httpserver.New(cfg.Addr, router)

	logger.Info("starting sisvita registration service", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
