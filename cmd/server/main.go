// main wires the allocation engine: ledger storage, registry adapter, audit
// sink and the caller-facing HTTP surface. Business logic lives in the
// internal packages.
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

	"registrar/internal/audit"
	"registrar/internal/identity/ledger"
	identitymetrics "registrar/internal/identity/metrics"
	"registrar/internal/identity/service"
	"registrar/internal/platform/config"
	"registrar/internal/platform/httpserver"
	"registrar/internal/platform/logger"
	"registrar/internal/platform/middleware"
	"registrar/internal/platform/postgres"
	platformredis "registrar/internal/platform/redis"
	"registrar/internal/platform/token"
	"registrar/internal/registry"
	"registrar/internal/registry/cache"
	httptransport "registrar/internal/transport/http"
	"registrar/pkg/domain"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Ledger store: Postgres when configured, in-memory otherwise.
	var store ledger.Store = ledger.NewMemory()
	var health httptransport.HealthChecker
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			log.Error("postgres connect failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := postgres.Migrate(db); err != nil {
			log.Error("postgres migrate failed", "error", err)
			os.Exit(1)
		}
		store = ledger.NewPostgres(db)
		health = func(r *http.Request) error { return db.PingContext(r.Context()) }
	} else {
		log.Warn("DATABASE_URL not set, using in-memory ledger store")
	}

	// Candidate cache: Redis when configured, in-process otherwise.
	var candidateCache cache.Cache = cache.NewMemory(cfg.CandidateTTL)
	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis connect failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		candidateCache = cache.NewRedis(redisClient.Client, cfg.CandidateTTL)
	}

	if cfg.RegistryBaseURL == "" {
		log.Error("REGISTRY_BASE_URL is required")
		os.Exit(1)
	}
	registryClient := registry.NewCached(
		registry.New(cfg.RegistryBaseURL, cfg.RegistryAPIKey, registry.WithLogger(log)),
		candidateCache, log)

	// Audit sink: Kafka when brokers are configured, in-memory otherwise.
	var publisher audit.Publisher = audit.NewMemory()
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := audit.NewKafka(ctx, cfg.KafkaBrokers, cfg.KafkaAuditTopic)
		if err != nil {
			log.Error("kafka connect failed", "error", err)
			os.Exit(1)
		}
		publisher = kafka
	}
	defer publisher.Close()

	coordinator := service.New(registryClient, store,
		service.WithLogger(log),
		service.WithAuditPublisher(publisher),
		service.WithMetrics(identitymetrics.New()),
	)

	tokens := token.NewService(cfg.JWTSigningKey, "registrar", "callers")
	apiKeys := make(middleware.APIKeys, len(cfg.CallerAPIKeys))
	for caller, hash := range cfg.CallerAPIKeys {
		apiKeys[domain.CallerID(caller)] = hash
	}
	handler := httptransport.New(coordinator, log, tokens, apiKeys)
	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(handler, health))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting registrar", "addr", cfg.Addr)
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
	log.Info("registrar stopped")
}
