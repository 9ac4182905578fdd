package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"job-portal/internal/config"
	"job-portal/internal/db"
	"job-portal/internal/devapi"
	"job-portal/internal/email"
	"job-portal/internal/repository"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadDevAPIConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	var accounts repository.AccountRepository = repository.NewMemoryAccountRepository()
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		defer pool.Close()
		if err := db.Migrate(ctx, pool); err != nil {
			logger.Fatal("db migrate", zap.Error(err))
		}
		accounts = repository.NewPgAccountRepository(pool)
	} else {
		logger.Warn("DATABASE_URL not set, accounts are kept in memory")
	}

	var sender email.Sender = email.NewLogSender(logger)
	if cfg.SMTPHost != "" {
		smtpSender, err := email.NewSMTPSender(email.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.SMTPFrom,
			FromName: cfg.SMTPFromName,
			UseTLS:   cfg.SMTPUseTLS,
		})
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			sender = smtpSender
		}
	}

	var (
		otpLimiter devapi.OTPRateLimiter
		tokenStore devapi.TokenStore
	)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			otpLimiter = devapi.NewRedisOTPRateLimiter(redisClient, 10*time.Minute, cfg.OTPRequestsPerWindow)
			tokenStore = devapi.NewRedisTokenStore(redisClient)
		}
		cancel()
	}
	if otpLimiter == nil {
		otpLimiter = devapi.NewOTPRateLimiter(10*time.Minute, cfg.OTPRequestsPerWindow)
	}

	tokens := devapi.NewTokenIssuer(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRememberTTLHours)*time.Hour,
		tokenStore,
	)
	accountSvc := devapi.NewAccountService(logger, accounts, sender, otpLimiter)
	router := devapi.NewRouter(logger, devapi.NewHandler(logger, accountSvc, tokens), tokens)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting dev api", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
