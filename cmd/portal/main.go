package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"job-portal/internal/config"
	"job-portal/internal/gateway"
	portalhttp "job-portal/internal/http"
	"job-portal/internal/metrics"
	"job-portal/internal/session"
	"job-portal/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadPortalConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	credStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("open credential store", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	gw := gateway.NewHTTPGateway(cfg.APIBaseURL, cfg.APITimeout, logger)
	mgr := session.NewManager(logger, gw, credStore, nil, collector)
	defer mgr.Dispose()

	// La revalidacion corre en segundo plano; mientras tanto las vistas responden loading.
	go mgr.Initialize(ctx)

	sessionHandler := portalhttp.NewSessionHandler(logger, mgr)
	router := portalhttp.NewRouter(logger, mgr, sessionHandler, portalhttp.RouterOptions{
		AllowedOrigins:    cfg.CORSAllowedOrigins,
		AuthRatePerMinute: cfg.AuthRatePerMinute,
		Metrics:           metrics.Handler(reg),
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting portal",
		zap.String("port", cfg.HTTPPort),
		zap.String("api", cfg.APIBaseURL),
		zap.String("store", cfg.SessionStore),
	)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg *config.PortalConfig, logger *zap.Logger) (store.CredentialStore, error) {
	switch cfg.SessionStore {
	case "memory":
		return store.NewMemoryStore(), nil
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, errors.New("SESSION_STORE=redis requires REDIS_ADDR")
		}
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := client.Ping(ctxPing).Err(); err != nil {
			return nil, err
		}
		return store.NewRedisStore(client, cfg.SessionNamespace), nil
	default:
		path := cfg.SessionFile
		if path == "" {
			path = store.DefaultSessionFile()
		}
		logger.Info("using file credential store", zap.String("path", path))
		return store.NewFileStore(path)
	}
}
