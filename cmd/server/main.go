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

	"gympass/internal/audit"
	credmetrics "gympass/internal/credential/metrics"
	credsvc "gympass/internal/credential/service"
	credstore "gympass/internal/credential/store"
	"gympass/internal/directory"
	"gympass/internal/issuer"
	"gympass/internal/platform/config"
	"gympass/internal/platform/database"
	"gympass/internal/platform/health"
	"gympass/internal/platform/kafka/producer"
	"gympass/internal/platform/logger"
	"gympass/internal/platform/metrics"
	platformredis "gympass/internal/platform/redis"
	"gympass/internal/qrtoken"
	"gympass/internal/share"
	httptransport "gympass/internal/transport/http"
	"gympass/migrations"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	identity, err := issuer.NewEnvProvider(cfg.IssuerSeed).Identity()
	if err != nil {
		log.Error("issuer identity bootstrap failed", "error", err)
		os.Exit(1)
	}
	log.Info("issuer identity ready", "did", identity.DID())

	// Storage: PostgreSQL when configured, in-memory otherwise.
	var credentialStore credstore.Store = credstore.NewMemoryStore()
	var shareStore share.Store = share.NewMemoryStore()

	pool, err := func() (*database.Pool, error) {
		dbCfg := database.DefaultConfig()
		dbCfg.URL = cfg.DatabaseURL
		return database.New(dbCfg)
	}()
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if pool != nil {
		defer pool.Close()
		if err := migrations.Apply(ctx, pool.DB()); err != nil {
			log.Error("migrations failed", "error", err)
			os.Exit(1)
		}
		credentialStore = credstore.NewPostgres(pool.DB())
		shareStore = share.NewPostgres(pool.DB())
		log.Info("using postgres storage")
	} else {
		log.Warn("no database configured, credentials are not durable")
	}

	var tokenStore qrtoken.Store = qrtoken.NewMemoryStore()
	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		tokenStore = qrtoken.NewRedisStore(redisClient.Client)
		log.Info("using redis token storage")
	}

	var auditor audit.Publisher
	if cfg.KafkaBrokers == "" {
		storePublisher := audit.NewStorePublisher(audit.NewInMemoryStore(),
			audit.WithAsyncBuffer(256),
			audit.WithPublisherLogger(log),
		)
		defer storePublisher.Close()
		auditor = storePublisher
	} else {
		kafkaProducer, err := producer.New(producer.Config{
			Brokers:         cfg.KafkaBrokers,
			Retries:         3,
			DeliveryTimeout: 10 * time.Second,
		}, log)
		if err != nil {
			log.Error("kafka producer init failed", "error", err)
			os.Exit(1)
		}
		defer kafkaProducer.Close()
		auditor = audit.NewKafkaPublisher(kafkaProducer, audit.DefaultTopic)
		log.Info("audit events published to kafka", "topic", audit.DefaultTopic)
	}

	// Directories are in-memory until the membership backend integration
	// lands; issuance requests then carry explicit holder DIDs.
	benefits := directory.NewMemoryBenefits()
	users := directory.NewMemoryUsers()

	credentials := credsvc.New(identity, credentialStore, benefits, users,
		credsvc.WithLogger(log),
		credsvc.WithAuditor(auditor),
		credsvc.WithMetrics(credmetrics.New()),
	)
	tokens := qrtoken.New(tokenStore, credentialStore,
		qrtoken.WithClientTTL(cfg.ClientTokenTTL),
		qrtoken.WithLogger(log),
		qrtoken.WithAuditor(auditor),
		qrtoken.WithMetrics(qrtoken.NewMetrics()),
	)
	shares := share.New(shareStore, credentials, cfg.ShareBaseURL,
		share.WithTTLBounds(cfg.ShareTTL, cfg.ShareMaxTTL),
		share.WithLogger(log),
		share.WithAuditor(auditor),
	)

	if cfg.AdminAPIKeyHash == "" {
		log.Warn("no admin API key hash configured, admin endpoints are disabled")
	}

	probes := health.New(identity.DID())
	if pool != nil {
		probes.RegisterCheck("postgres", pool.Health)
	}
	if redisClient != nil {
		probes.RegisterCheck("redis", redisClient.Health)
	}

	handler := httptransport.NewHandler(credentials, tokens, shares, cfg.AdminAPIKeyHash, log)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httptransport.NewRouter(handler, probes, metrics.New(), log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.CleanupEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if _, err := tokens.Cleanup(ctx); err != nil {
					log.Warn("token cleanup failed", "error", err)
				}
				if _, err := shares.CleanupExpired(ctx); err != nil {
					log.Warn("share cleanup failed", "error", err)
				}
			}
		}
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
