package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ConstantineIIII/WhatsappClone/internal/app"
	"github.com/ConstantineIIII/WhatsappClone/internal/config"
	"github.com/ConstantineIIII/WhatsappClone/internal/ratelimit"
	"github.com/ConstantineIIII/WhatsappClone/internal/server"
	"github.com/ConstantineIIII/WhatsappClone/internal/util"
	"github.com/ConstantineIIII/WhatsappClone/pkg/cache"
	"github.com/ConstantineIIII/WhatsappClone/pkg/storage"
	"github.com/ConstantineIIII/WhatsappClone/pkg/store"
	"github.com/ConstantineIIII/WhatsappClone/pkg/token"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}
	log := util.InitLogger(cfg.Server.LogLevel)

	st, err := store.NewGormStore(cfg.Database.DSN)
	if err != nil {
		log.Error("database init failed", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	var (
		revoker  token.Revoker = token.NewMemoryRevoker()
		msgCache cache.MessageCache
		limiter  *ratelimit.FixedWindowLimiter
	)
	if cfg.Redis.Addr != "" {
		revoker = token.NewRedisRevoker(cfg.Redis.Addr, cfg.Redis.Password)
		msgCache = cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, 0)
		limiter, err = ratelimit.NewRedisFixedWindowLimiter(
			cfg.Redis.Addr, cfg.Redis.Password, "", cfg.RateLimit.Limit, cfg.RateLimit.Window)
		if err != nil {
			log.Error("rate limiter init failed", "error", err)
			os.Exit(1)
		}
	} else {
		log.Warn("redis not configured; cache, revocation, and rate limiting are degraded")
	}

	tokens, err := token.NewIssuer(cfg.JWT.Secret, revoker, token.Options{TTL: cfg.JWT.TokenTTL})
	if err != nil {
		log.Error("token issuer init failed", "error", err)
		os.Exit(1)
	}

	var objects storage.ObjectStore
	if cfg.Storage.Endpoint != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		minioStore, err := storage.NewMinioStore(ctx,
			cfg.Storage.Endpoint, cfg.Storage.AccessKey, cfg.Storage.SecretKey,
			cfg.Storage.Bucket, cfg.Storage.UseSSL)
		cancel()
		if err != nil {
			log.Error("object store init failed", "error", err)
			os.Exit(1)
		}
		objects = minioStore
	}

	application := app.New(st, tokens, msgCache, objects, log)
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      server.New(application, limiter, log).Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
}
