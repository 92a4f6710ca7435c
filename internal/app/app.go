package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/tix-inventory/internal/clock"
	"github.com/kirinyoku/tix-inventory/internal/config"
	kafkax "github.com/kirinyoku/tix-inventory/internal/kafka"
	"github.com/kirinyoku/tix-inventory/internal/postgres"
	"github.com/kirinyoku/tix-inventory/internal/redis"
	postgresrepo "github.com/kirinyoku/tix-inventory/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/tix-inventory/internal/repository/redis"
	"github.com/kirinyoku/tix-inventory/internal/service"
	"github.com/kirinyoku/tix-inventory/internal/service/alerts"
	"github.com/kirinyoku/tix-inventory/internal/service/changes"
	"github.com/kirinyoku/tix-inventory/internal/service/query"
	"github.com/kirinyoku/tix-inventory/internal/tracing"
	"github.com/kirinyoku/tix-inventory/internal/transport/command"
	httpgin "github.com/kirinyoku/tix-inventory/internal/transport/http/gin"
	kafkatransport "github.com/kirinyoku/tix-inventory/internal/transport/kafka"
	"github.com/kirinyoku/tix-inventory/internal/uow"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	pool       *pgxpool.Pool
	rdb        *goredis.Client
	httpServer *http.Server

	shutdownTracing func(context.Context) error

	// set only when Kafka is configured
	kafkaServer *kafkatransport.Server
	producer    kafkax.Producer
	watcher     *alerts.Watcher
}

// Migrate applies the embedded schema migrations and returns.
func Migrate(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	pool, err := openPostgres(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("failed to migrate postgres: %w", err)
	}

	logger.Info("migrations applied")

	return nil
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		ServiceName: cfg.Tracing.ServiceName,
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	// Initialize dependencies
	pgxPool, err := openPostgres(ctx, cfg)
	if err != nil {
		_ = shutdownTracing(ctx)
		return nil, err
	}

	if err := postgres.Migrate(ctx, pgxPool); err != nil {
		pgxPool.Close()
		_ = shutdownTracing(ctx)
		return nil, fmt.Errorf("failed to migrate postgres: %w", err)
	}

	rdb, err := redis.New(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		pgxPool.Close()
		_ = shutdownTracing(ctx)
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	a := &App{
		cfg:             cfg,
		logger:          logger,
		pool:            pgxPool,
		rdb:             rdb,
		shutdownTracing: shutdownTracing,
	}
	clk := clock.NewSystem()

	// Initialize repositories
	store := postgresrepo.NewStore(pgxPool)
	cache := redisrepo.NewCache(rdb, cfg.Ledger.StatsTTL)
	pubsub := redisrepo.NewStockPubSub(rdb, logger)
	limiter := redisrepo.NewSlidingWindowLimiter(rdb, "transitions", cfg.Ledger.RateLimit, cfg.Ledger.RateWindow)
	idempotencyStore := redisrepo.NewIdempotencyStore(rdb, cfg.Ledger.IdempotencyTTL)

	// Initialize services
	services := service.NewServices(service.Deps{
		UoW:    uow.NewUoW(store),
		Reader: store.Query(),
		Cache:  cache,
		Notify: changes.NewNotifier(cache, pubsub, clk, logger),
		Clock:  clk,
	}, service.Config{
		Query: query.Config{LowStockThreshold: cfg.Ledger.LowStockThreshold},
	})

	dispatcher := command.NewDispatcher(command.Deps{
		Reservation: services.Reservation,
		Query:       services.Query,
		Admin:       services.Admin,
		Idempotency: idempotencyStore,
		Log:         logger,
	}, command.Config{LockTTL: cfg.Ledger.OperationLockTTL})

	// Initialize Gin router
	router := httpgin.NewRouter(dispatcher, limiter, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	if kcfg := kafkaConfig(cfg.Kafka); kcfg.Enabled() {
		if err := kafkax.Ping(ctx, kcfg); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to reach kafka: %w", err)
		}

		consumers := make([]kafkax.Consumer, 0, kcfg.Consumers)
		for range kcfg.Consumers {
			consumers = append(consumers, kafkax.NewConsumer(kcfg))
		}

		a.producer = kafkax.NewProducer(kcfg)
		a.kafkaServer = kafkatransport.NewServer(consumers, a.producer, dispatcher, kcfg.ReplyTopic, logger)
		a.watcher = alerts.NewWatcher(
			pubsub,
			kafkatransport.NewAlertProducer(a.producer, kcfg.AlertTopic),
			redisrepo.NewAlertLevels(rdb, cfg.Ledger.AlertLevelTTL),
			cfg.Ledger.LowStockThreshold,
			logger,
		)
	} else {
		logger.Info("kafka disabled, serving HTTP only")
	}

	return a, nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server
	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	if a.kafkaServer != nil {
		g.Go(func() error {
			a.logger.Info("kafka command server started",
				"topic", a.cfg.Kafka.CommandTopic,
				"consumers", a.cfg.Kafka.Consumers,
			)
			return a.kafkaServer.Run(gCtx)
		})

		g.Go(func() error {
			return a.watcher.Run(gCtx)
		})
	}

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	err := g.Wait()
	a.Close()

	return err
}

// Close releases every connection the app holds. It is safe to call twice.
func (a *App) Close() {
	if a.kafkaServer != nil {
		if err := a.kafkaServer.Close(); err != nil {
			a.logger.Warn("close kafka consumers", slog.Any("error", err))
		}
		a.kafkaServer = nil
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Warn("close kafka producer", slog.Any("error", err))
		}
		a.producer = nil
	}

	if a.rdb != nil {
		_ = a.rdb.Close()
		a.rdb = nil
	}

	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}

	if a.shutdownTracing != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := a.shutdownTracing(ctx); err != nil {
			a.logger.Warn("flush traces", slog.Any("error", err))
		}
		a.shutdownTracing = nil
	}
}

func openPostgres(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pool, err := postgres.New(ctx, postgres.Config{
		DSN:      cfg.Postgres.DSN(),
		MaxConns: cfg.Postgres.MaxConns,
		MinConns: cfg.Postgres.MinConns,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	return pool, nil
}

func kafkaConfig(c config.KafkaConfig) kafkax.Config {
	return kafkax.Config{
		Brokers:      c.Brokers,
		GroupID:      c.GroupID,
		CommandTopic: c.CommandTopic,
		ReplyTopic:   c.ReplyTopic,
		AlertTopic:   c.AlertTopic,
		Consumers:    c.Consumers,
	}
}
