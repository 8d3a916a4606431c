package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"aulepi/internal/cache"
	"aulepi/internal/cineca"
	"aulepi/internal/config"
	"aulepi/internal/model"
	"aulepi/internal/registry"
	"aulepi/internal/server"
)

func main() {
	cfg, err := config.NewServerConfig()
	if err != nil {
		log.Fatalf("checkout configuration: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatalf("unknown timezone %v: %v", cfg.Timezone, err)
	}

	rules := model.DefaultRules
	if cfg.RulesPath != "" {
		if rules, err = model.RulesFromJson(cfg.RulesPath); err != nil {
			log.Fatalf("cannot load opening-hours rules: %v", err)
		}
	}

	roomRegistry, err := registry.NewRegistry(cfg.RegistryPath)
	if err != nil {
		log.Fatalf("cannot load room registry: %v", err)
	}

	calendarCache := cache.NewMemory()
	if cfg.RedisAddr != "" {
		calendarCache = cache.NewRedis(redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}))
		logger.Info("using redis calendar cache", "addr", cfg.RedisAddr)
	}

	client := cineca.NewClient(
		&http.Client{Timeout: time.Duration(cfg.UpstreamTimeoutSeconds) * time.Second},
		logger,
	)
	assembler := model.NewAssembler(
		model.NewCalendar(rules),
		time.Duration(cfg.SoonWindowMinutes)*time.Minute,
	)

	s := server.New(cfg, logger, loc, client, calendarCache, roomRegistry, assembler)

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: s.Router(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("listening", "addr", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
