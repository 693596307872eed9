package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/rl1809/clock-shop/internal/adapter/handler"
	"github.com/rl1809/clock-shop/internal/adapter/storage"
	"github.com/rl1809/clock-shop/internal/config"
	"github.com/rl1809/clock-shop/internal/core/domain"
	"github.com/rl1809/clock-shop/internal/core/service"
	"github.com/rl1809/clock-shop/internal/logging"
	"github.com/rl1809/clock-shop/internal/port"
)

func main() {
	envErr := config.LoadEnv()

	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer logger.Sync()

	if envErr != nil {
		logger.Warn(".env file not found, using system environment variables")
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize MySQL
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		return fmt.Errorf("open mysql: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping mysql: %w", err)
	}
	logger.Info("connected to mysql")

	// Initialize Redis
	rdb, err := newRedisClient(cfg)
	if err != nil {
		return err
	}
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	logger.Info("connected to redis")

	// Initialize adapters
	redisAdapter := storage.NewRedisAdapter(rdb)
	mysqlAdapter := storage.NewMySQLAdapter(db)
	if err := mysqlAdapter.Migrate(ctx); err != nil {
		return err
	}

	// Initialize services
	catalogService := service.NewCatalogService(mysqlAdapter, logger)
	if err := catalogService.Seed(ctx, service.SeedCatalog(), cfg.Currency, cfg.StrictPrices()); err != nil {
		return err
	}

	cartService := service.NewCartService(redisAdapter, mysqlAdapter, logger, service.CartServiceConfig{
		Currency:   cfg.Currency,
		SessionTTL: cfg.SessionTTL,
		QueueSize:  cfg.QueueSize,
	})
	appointmentService := service.NewAppointmentService(mysqlAdapter, logger)
	showroomService := service.NewShowroomService(catalogService)

	// Start worker pool
	var wg sync.WaitGroup
	for i := 0; i < cfg.WorkerCount; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			workerLoop(id, cartService.GetEventQueue(), mysqlAdapter, logger)
		}(i)
	}
	logger.Info("started event workers", zap.Int("count", cfg.WorkerCount))

	// Initialize gRPC server
	grpcServer := grpc.NewServer()
	handler.RegisterCartServiceServer(grpcServer, handler.NewGRPCHandler(cartService, logger))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}

	// Initialize HTTP server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	handler.NewHTTPHandler(cartService, catalogService, appointmentService, showroomService, logger).RegisterRoutes(e)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: e,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("gRPC server listening", zap.String("addr", cfg.GRPCAddr))
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")
		healthServer.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("HTTP shutdown", zap.Error(err))
		}
		logger.Info("HTTP server stopped")

		grpcServer.GracefulStop()
		logger.Info("gRPC server stopped")
		return nil
	})

	err = g.Wait()

	// Close event queue and wait for workers
	cartService.Close()
	wg.Wait()
	logger.Info("workers stopped")

	return err
}

func newRedisClient(cfg config.Config) (*redis.Client, error) {
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opt.PoolSize = 100
		return redis.NewClient(opt), nil
	}

	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		PoolSize: 100,
	}), nil
}

func workerLoop(id int, queue <-chan domain.CartEvent, events port.EventRepository, logger *zap.Logger) {
	for event := range queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)

		if err := events.AppendCartEvent(ctx, event); err != nil {
			logger.Error("failed to journal cart event",
				zap.Int("worker", id),
				zap.String("event_id", event.ID),
				zap.String("session_id", event.SessionID),
				zap.Error(err),
			)
		} else {
			logger.Debug("journaled cart event",
				zap.Int("worker", id),
				zap.String("event_id", event.ID),
				zap.String("kind", string(event.Kind)),
			)
		}

		cancel()
	}
}
