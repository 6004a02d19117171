// server is the Clyra insights service binary: it exposes the performance
// analysis API over HTTP and optionally runs the meeting-reminder poller.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/redis/go-redis/v9"

	"github.com/juanmagp80/Clyra-sub003/internal/ai"
	"github.com/juanmagp80/Clyra-sub003/internal/api"
	"github.com/juanmagp80/Clyra-sub003/internal/api/middleware"
	"github.com/juanmagp80/Clyra-sub003/internal/auth"
	"github.com/juanmagp80/Clyra-sub003/internal/collector"
	"github.com/juanmagp80/Clyra-sub003/internal/config"
	"github.com/juanmagp80/Clyra-sub003/internal/insights"
	"github.com/juanmagp80/Clyra-sub003/internal/logging"
	"github.com/juanmagp80/Clyra-sub003/internal/notify"
	"github.com/juanmagp80/Clyra-sub003/internal/reminders"
	"github.com/juanmagp80/Clyra-sub003/internal/storage"
)

func main() {
	var addr = flag.String("addr", "", "Listen address (overrides configuration)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format).WithComponent("server")

	store, err := storage.New(cfg.Database)
	if err != nil {
		logger.Error("Failed to open storage", "error", err.Error())
		os.Exit(1)
	}
	defer func() {
		_ = store.Close()
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := store.Ping(ctx); err != nil {
		logger.Error("Database unreachable", "error", err.Error())
		os.Exit(1)
	}

	var cache *redis.Client
	if cfg.Redis.Enabled {
		cache = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := cache.Ping(ctx).Err(); err != nil {
			logger.Error("Redis unreachable", "addr", cfg.Redis.Addr, "error", err.Error())
			os.Exit(1)
		}
		defer func() {
			_ = cache.Close()
		}()
	}

	// Without an API key every analysis takes the deterministic path.
	var client ai.Client
	if cfg.OpenAI.APIKey != "" {
		openaiClient, err := ai.NewOpenAIClient(cfg.OpenAI)
		if err != nil {
			logger.Error("Failed to create completion client", "error", err.Error())
			os.Exit(1)
		}
		client = openaiClient
	} else {
		logger.Warn("No completion API key configured, analyses will use the metrics fallback")
	}

	generator, err := ai.NewGenerator(client, logger)
	if err != nil {
		logger.Error("Failed to create insight generator", "error", err.Error())
		os.Exit(1)
	}

	service := insights.NewService(collector.New(store, logger), generator, store, cache, logger)

	var resolver middleware.SessionResolver
	if cfg.Auth.Enabled {
		httpResolver, err := auth.NewHTTPResolver(cfg.Auth)
		if err != nil {
			logger.Error("Failed to create session resolver", "error", err.Error())
			os.Exit(1)
		}
		resolver = httpResolver
	} else {
		logger.Warn("Session verification disabled, request user IDs are trusted as-is")
	}

	var sender notify.EmailSender
	var reporter *notify.Reporter
	if cfg.Email.Enabled {
		resend, err := notify.NewResendClient(cfg.Email)
		if err != nil {
			logger.Error("Failed to create email client", "error", err.Error())
			os.Exit(1)
		}
		sender = resend
		reporter = notify.NewReporter(resend)
	}

	if cfg.Reminders.Enabled {
		startReminders(ctx, cfg, store, cache, sender, logger)
	}

	router := api.NewRouter(api.RouterOptions{
		Service:  service,
		Store:    store,
		Resolver: resolver,
		Reporter: reporter,
		Logger:   logger,
		Config:   cfg,
	})

	listenAddr := *addr
	if listenAddr == "" {
		listenAddr = fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	}

	server := &http.Server{
		Addr:         listenAddr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	printBanner(listenAddr, cfg)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err.Error())
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown failed", "error", err.Error())
		}
	}

	logger.Info("Server stopped")
}

// startReminders launches the meeting-reminder poller in the background.
// Configuration validation already guaranteed Redis is available.
func startReminders(ctx context.Context, cfg *config.Config, store storage.Store, cache *redis.Client, sender notify.EmailSender, logger logging.Logger) {
	if sender == nil {
		logger.Warn("Email delivery disabled, reminders will be claimed but not sent")
		sender = notify.NoopSender{}
	}

	poller := reminders.NewPoller(store, sender, reminders.NewRedisDeduper(cache),
		logger.WithComponent("reminders"), reminders.Options{
			Interval: time.Duration(cfg.Reminders.IntervalSeconds) * time.Second,
			Window:   time.Duration(cfg.Reminders.LookaheadMinutes) * time.Minute,
		})
	go poller.Run(ctx)
}

func printBanner(addr string, cfg *config.Config) {
	color.Cyan("Clyra insights service %s", api.Version)
	color.White("  listening on http://%s", addr)
	color.White("  database: %s", cfg.Database.Provider)
	if cfg.Redis.Enabled {
		color.White("  redis: %s", cfg.Redis.Addr)
	}
	if cfg.OpenAI.APIKey != "" {
		color.White("  model: %s", cfg.OpenAI.Model)
	} else {
		color.Yellow("  model: disabled (fallback only)")
	}
}
