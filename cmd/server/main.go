package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"rtidesk/internal/audit"
	"rtidesk/internal/drafting"
	"rtidesk/internal/drafting/gemini"
	draftinghandler "rtidesk/internal/drafting/handler"
	jwttoken "rtidesk/internal/jwt_token"
	"rtidesk/internal/platform/config"
	"rtidesk/internal/platform/httpserver"
	"rtidesk/internal/platform/logger"
	"rtidesk/internal/platform/metrics"
	redisclient "rtidesk/internal/platform/redis"
	ratelimitmetrics "rtidesk/internal/ratelimit/metrics"
	ratelimit "rtidesk/internal/ratelimit/middleware"
	ratelimitmodels "rtidesk/internal/ratelimit/models"
	ratelimitstore "rtidesk/internal/ratelimit/store"
	rtihandler "rtidesk/internal/rti/handler"
	rtimetrics "rtidesk/internal/rti/metrics"
	rtiservice "rtidesk/internal/rti/service"
	rtistore "rtidesk/internal/rti/store"
	httptransport "rtidesk/internal/transport/http"
)

const shutdownTimeout = 15 * time.Second

// infra holds the external connections main owns and must close.
type infra struct {
	db       *sql.DB
	redis    *redisclient.Client
	sink     *audit.KafkaSink
	registry *prometheus.Registry
}

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	in, err := buildInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer in.close(log)

	auditOpts := []audit.Option{audit.WithAsyncBuffer(1024), audit.WithLogger(log)}
	if in.sink != nil {
		auditOpts = append(auditOpts, audit.WithSink(in.sink))
	}
	var auditStore audit.Store = audit.NewInMemoryStore()
	if in.db != nil {
		auditStore = audit.NewPostgresStore(in.db)
	}
	publisher := audit.NewPublisher(auditStore, auditOpts...)
	defer publisher.Close()

	var store rtiservice.Store = rtistore.NewInMemoryStore()
	if in.db != nil {
		store = rtistore.NewPostgres(in.db)
	}
	rtiSvc := rtiservice.New(store,
		rtiservice.WithLogger(log),
		rtiservice.WithAuditPublisher(publisher),
		rtiservice.WithMetrics(rtimetrics.New(in.registry)),
	)

	draftingSvc, err := buildDrafting(ctx, cfg, log, in.registry)
	if err != nil {
		return err
	}

	jwtValidator := jwttoken.NewJWTServiceAdapter(
		jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience),
	)
	detailed := !cfg.IsProduction()

	router := httptransport.NewRouter(httptransport.Config{
		Logger:         log,
		Metrics:        metrics.New(in.registry),
		Gatherer:       in.registry,
		RequestTimeout: cfg.AI.Timeout + 10*time.Second,
		HealthChecks:   in.healthChecks(),
		Modules: []httptransport.Registrar{
			rtihandler.New(rtiSvc, log, jwtValidator,
				rtihandler.WithDetailedErrors(detailed),
				rtihandler.WithAdminToken(cfg.AdminAPIToken),
			),
			draftinghandler.New(draftingSvc, log,
				draftinghandler.WithRateLimit(buildRateLimit(cfg, log, in).RateLimit("ai")),
				draftinghandler.WithDetailedErrors(detailed),
			),
		},
	})

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting rtidesk",
			"addr", cfg.Addr,
			"environment", cfg.Environment,
			"store", storeName(in.db),
			"drafting_enabled", cfg.AI.APIKey != "",
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func buildInfra(ctx context.Context, cfg config.Server, log *slog.Logger) (*infra, error) {
	in := &infra{registry: prometheus.NewRegistry()}
	in.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if cfg.Database.URL != "" {
		db, err := sql.Open("postgres", cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		}
		if err := rtistore.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		if err := audit.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		in.db = db
	}

	rc, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		// The in-memory limiter covers a single replica; keep serving.
		log.Warn("redis unavailable, rate limiting is process-local", "error", err)
	}
	in.redis = rc

	if len(cfg.Kafka.Brokers) > 0 {
		sink, err := audit.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			in.close(log)
			return nil, err
		}
		in.sink = sink
	}
	return in, nil
}

func (in *infra) healthChecks() []httptransport.HealthCheck {
	var checks []httptransport.HealthCheck
	if in.db != nil {
		checks = append(checks, httptransport.HealthCheck{Name: "postgres", Check: in.db.PingContext})
	}
	if in.redis != nil {
		checks = append(checks, httptransport.HealthCheck{Name: "redis", Check: in.redis.Health})
	}
	return checks
}

func (in *infra) close(log *slog.Logger) {
	if in.sink != nil {
		in.sink.Close()
	}
	if in.redis != nil {
		if err := in.redis.Close(); err != nil {
			log.Warn("closing redis", "error", err)
		}
	}
	if in.db != nil {
		if err := in.db.Close(); err != nil {
			log.Warn("closing database", "error", err)
		}
	}
}

func buildDrafting(ctx context.Context, cfg config.Server, log *slog.Logger, reg prometheus.Registerer) (*drafting.Service, error) {
	var generator drafting.Generator
	if cfg.AI.APIKey != "" {
		g, err := gemini.New(ctx, gemini.Config{
			APIKey:     cfg.AI.APIKey,
			Model:      cfg.AI.Model,
			APIVersion: cfg.AI.APIVersion,
		})
		if err != nil {
			return nil, fmt.Errorf("configure gemini: %w", err)
		}
		generator = g
		log.Info("gemini generator configured", "model", g.Model())
	} else {
		log.Warn("GEMINI_API_KEY is not set, drafting endpoints will return configuration errors")
	}
	return drafting.New(generator,
		drafting.WithLogger(log),
		drafting.WithMetrics(drafting.NewMetrics(reg)),
		drafting.WithTimeout(cfg.AI.Timeout),
	), nil
}

func buildRateLimit(cfg config.Server, log *slog.Logger, in *infra) *ratelimit.Middleware {
	policy := ratelimitmodels.PerMinute(cfg.RateLimit.AIRequestsPerMinute)
	m := ratelimitmetrics.New(in.registry)

	var limiter ratelimit.Limiter = ratelimitstore.NewMemory(policy)
	if in.redis != nil {
		limiter = ratelimit.NewFallbackLimiter(
			ratelimitstore.NewRedis(in.redis.Client, policy),
			ratelimitstore.NewMemory(policy),
			log, m,
		)
	}
	return ratelimit.New(limiter, log,
		ratelimit.WithMetrics(m),
		ratelimit.WithDisabled(cfg.RateLimit.Disabled),
	)
}

func storeName(db *sql.DB) string {
	if db != nil {
		return "postgres"
	}
	return "memory"
}
