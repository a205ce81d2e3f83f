// Package main is the entry point of the wellness hub API server.
//
// The server exposes the student dashboard, mood check-ins and the
// appointment list as a JSON API. Mood history lives in a key-value
// backend; appointments and assessments come from the care service.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/campuscare/wellness-hub/config"
	"github.com/campuscare/wellness-hub/internal/application/command"
	"github.com/campuscare/wellness-hub/internal/application/dashboard"
	"github.com/campuscare/wellness-hub/internal/application/query"
	"github.com/campuscare/wellness-hub/internal/domain/mood"
	"github.com/campuscare/wellness-hub/internal/domain/shared"
	"github.com/campuscare/wellness-hub/internal/infrastructure/external/care"
	"github.com/campuscare/wellness-hub/internal/infrastructure/i18n"
	"github.com/campuscare/wellness-hub/internal/infrastructure/messaging"
	"github.com/campuscare/wellness-hub/internal/infrastructure/persistence/memory"
	"github.com/campuscare/wellness-hub/internal/infrastructure/persistence/postgres"
	redisstore "github.com/campuscare/wellness-hub/internal/infrastructure/persistence/redis"
	httpserver "github.com/campuscare/wellness-hub/internal/interface/http"
	"github.com/campuscare/wellness-hub/internal/interface/http/handlers"
	"github.com/campuscare/wellness-hub/pkg/circuitbreaker"
	"github.com/campuscare/wellness-hub/pkg/logger"
	"github.com/campuscare/wellness-hub/pkg/retry"
	"github.com/campuscare/wellness-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. Configuration and logging
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := setupLogger(cfg)
	timeutil.SetLocation(cfg.App.Location)

	log.Info("starting wellness hub",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
		logger.String("storage", string(cfg.Storage.Driver)),
		logger.String("timezone", cfg.App.Timezone),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 2. Storage
	// ─────────────────────────────────────────────────────────────────────────
	backend, redisCache, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("closing storage")
		_ = backend.Close()
	}()

	store := mood.NewStore(backend, mood.StoreOptions{
		OnParseError: func(studentID string, err error) {
			log.Warn("stored history is not parseable, treating as empty",
				logger.StudentID(studentID),
				logger.Err(err),
			)
		},
	})

	// ─────────────────────────────────────────────────────────────────────────
	// 3. Event bus
	// ─────────────────────────────────────────────────────────────────────────
	bus := messaging.NewInMemoryEventBus(messaging.DefaultInMemoryEventBusConfig())
	defer bus.Close()

	if redisCache != nil {
		bridge, err := messaging.NewRedisBridge(messaging.RedisBridgeConfig{
			Client:  messaging.NewRedisClient(redisCache),
			Local:   bus,
			Forward: []shared.EventType{shared.EventCheckinRecorded},
			Logger:  log,
		})
		if err != nil {
			return fmt.Errorf("failed to start redis bridge: %w", err)
		}
		defer bridge.Close()
		log.Info("relaying check-in events through redis", logger.String("instance_id", bridge.InstanceID()))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. Care service and dashboard sessions
	// ─────────────────────────────────────────────────────────────────────────
	careCfg := care.DefaultClientConfig(cfg.CareAPI.BaseURL)
	careCfg.Token = cfg.CareAPI.Token
	careCfg.Timeout = cfg.CareAPI.RequestTimeout
	careCfg.MaxAttempts = cfg.CareAPI.MaxAttempts
	careCfg.BreakerThreshold = cfg.CareAPI.BreakerThreshold
	careCfg.BreakerCooldown = cfg.CareAPI.BreakerCooldown
	careClient := care.NewClient(careCfg, log)

	resolver := i18n.English()

	sessionCfg := dashboard.DefaultSessionConfig()
	sessionCfg.UpcomingLimit = cfg.Dashboard.UpcomingLimit

	registry := dashboard.NewRegistry(dashboard.Deps{
		History:      store,
		Appointments: careClient,
		Assessments:  dashboard.NewAssessmentFetcher(careClient, cfg.Dashboard.AssessmentLimit, log),
		Bus:          bus,
		Resolver:     resolver,
		Logger:       log,
	}, dashboard.RegistryConfig{
		IdleTTL:       cfg.Dashboard.SessionIdleTTL,
		SweepInterval: cfg.Dashboard.SweepInterval,
		Session:       sessionCfg,
	})
	defer registry.Close()
	registry.Start(ctx)

	// ─────────────────────────────────────────────────────────────────────────
	// 5. HTTP
	// ─────────────────────────────────────────────────────────────────────────
	health := handlers.NewCompositeHealthChecker(cfg.App.Version)
	health.AddCheck("storage", handlers.NewPingCheck(backend))
	health.AddReadinessCheck("care_api", func(context.Context) error {
		if careClient.BreakerState() == circuitbreaker.StateOpen {
			return errors.New("circuit open")
		}
		return nil
	})

	serverCfg := httpserver.DefaultConfig()
	serverCfg.Host = cfg.HTTP.Host
	serverCfg.Port = cfg.HTTP.Port
	serverCfg.ReadTimeout = cfg.HTTP.ReadTimeout
	serverCfg.WriteTimeout = cfg.HTTP.WriteTimeout
	serverCfg.IdleTimeout = cfg.HTTP.IdleTimeout
	serverCfg.RequestTimeout = cfg.HTTP.RequestTimeout
	serverCfg.MaxBodyBytes = cfg.HTTP.MaxBodyBytes
	serverCfg.AllowedOrigins = cfg.HTTP.AllowedOrigins

	checkinCfg := command.DefaultRecordCheckinHandlerConfig()
	checkinCfg.StrictAnchors = cfg.Dashboard.StrictAnchors

	server := httpserver.NewServer(serverCfg, httpserver.Dependencies{
		Dashboard:     query.NewGetDashboardHandler(registry),
		History:       query.NewGetHistoryHandler(store, resolver),
		MoodOptions:   query.NewGetMoodOptionsHandler(resolver),
		RecordCheckin: command.NewRecordCheckinHandler(store, bus, resolver, checkinCfg, log),
		HealthChecker: health,
		Logger:        log,
	})

	errCh := server.StartAsync()

	// ─────────────────────────────────────────────────────────────────────────
	// 6. Graceful shutdown
	// ─────────────────────────────────────────────────────────────────────────
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err, ok := <-errCh:
		if ok && err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", logger.Err(err))
	}
	log.Info("wellness hub stopped")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// historyBackend is a key-value store that can be health-checked and closed.
type historyBackend interface {
	mood.KeyValueStore
	Ping(ctx context.Context) error
	Close() error
}

// openStorage connects the configured backend. The Redis cache is returned
// as well so the event bridge can share its connection.
func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (historyBackend, *redisstore.Cache, error) {
	retrier := retry.StorageRetrier(cfg.Storage.ConnectAttempts, func(attempt int, err error, delay time.Duration) {
		log.Warn("storage connection failed, retrying",
			logger.Int("attempt", attempt),
			logger.Duration("delay", delay),
			logger.Err(err),
		)
	})

	switch cfg.Storage.Driver {
	case config.StorageRedis:
		redisCfg := redisstore.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout
		redisCfg.KeyNamespace = cfg.Redis.Namespace

		var cache *redisstore.Cache
		err := retrier.Do(ctx, func(context.Context) error {
			c, err := redisstore.NewCache(redisCfg)
			if err != nil {
				return err
			}
			cache = c
			return nil
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		log.Info("redis connection established", logger.String("addr", redisCfg.Addr()))
		return redisstore.NewKVStore(cache), cache, nil

	case config.StoragePostgres:
		pgCfg := postgres.DefaultConfig()
		pgCfg.URL = cfg.Database.URL
		pgCfg.MaxConns = int32(cfg.Database.MaxConns)
		pgCfg.MinConns = int32(cfg.Database.MinConns)
		pgCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime
		pgCfg.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime
		pgCfg.ConnectTimeout = cfg.Database.ConnectTimeout

		var conn *postgres.Connection
		err := retrier.Do(ctx, func(ctx context.Context) error {
			c, err := postgres.NewConnection(ctx, pgCfg)
			if err != nil {
				return err
			}
			conn = c
			return nil
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		if err := postgres.NewMigrator(conn).Migrate(ctx); err != nil {
			conn.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("database schema is up to date")
		return postgres.NewKVStore(conn), nil, nil

	default:
		log.Warn("using in-memory storage, history is lost on restart")
		return memory.NewKVStore(), nil, nil
	}
}

func setupLogger(cfg *config.Config) *logger.Logger {
	opts := logger.DefaultOptions()
	opts.Level = logger.ParseLevel(cfg.Observability.LogLevel)
	if cfg.App.Debug {
		opts.Level = logger.LevelDebug
	}
	switch strings.ToLower(cfg.Observability.LogFormat) {
	case "text", "console":
		opts.Format = logger.FormatText
	}
	return logger.New(opts).With(logger.String("service", cfg.App.Name))
}
