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
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bd-chat/chatserver/internal/config"
	"github.com/bd-chat/chatserver/internal/db"
	apihttp "github.com/bd-chat/chatserver/internal/http"
	"github.com/bd-chat/chatserver/internal/repository"
	"github.com/bd-chat/chatserver/internal/service"
	"github.com/bd-chat/chatserver/internal/ws"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal("db schema", zap.Error(err))
	}

	userRepo := repository.NewPgUserRepository(pool)
	messageRepo := repository.NewPgMessageRepository(pool)

	sessionTTL := time.Duration(cfg.SessionTTLMinutes) * time.Minute
	var sessions service.SessionStore
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
			sessions = service.NewRedisSessionStore(redisClient, sessionTTL)
		}
		cancel()
	}
	if sessions == nil {
		sessions = service.NewMemorySessionStore(sessionTTL)
	}

	userSvc := service.NewUserService(logger, userRepo)
	messageSvc := service.NewMessageService(messageRepo)

	hub := ws.NewHub(logger)
	go hub.Run(ctx)

	userHandler := apihttp.NewUserHandler(logger, userSvc, sessions, sessionTTL)
	messageHandler := apihttp.NewMessageHandler(logger, messageSvc)
	wsHandler := ws.Handler(logger, hub, messageSvc, cfg.WSSendBuffer)
	router := apihttp.NewRouter(logger, userHandler, messageHandler, wsHandler, cfg.StaticDir)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}
