package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"loan-overpay/internal/api"
	"loan-overpay/internal/cache"
	"loan-overpay/internal/config"
	"loan-overpay/internal/logging"
	"loan-overpay/internal/notify"
	"loan-overpay/internal/sheets"
	"loan-overpay/internal/store"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

func main() {
	settings, err := config.LoadSettings()
	if err != nil {
		log.Fatal("failed to load settings", "err", err)
	}
	logger := logging.New("loan-api", settings.LogLevel)
	if err := settings.Validate(); err != nil {
		logger.Fatal(err.Error())
	}

	if err := os.MkdirAll(filepath.Dir(settings.StorePath), 0o755); err != nil {
		logger.Fatal("failed to create store directory", "path", settings.StorePath, "err", err)
	}
	st, err := store.Open(settings.StoreBackend, settings.StorePath, logger.WithPrefix("store"))
	if err != nil {
		logger.Fatal("failed to open store", "backend", settings.StoreBackend, "err", err)
	}
	defer st.Close()
	logger.Info("store ready", "backend", settings.StoreBackend, "path", settings.StorePath)

	c := openCache(settings, logger)
	if closer, ok := c.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	push, pushEnabled, closeSink := openPush(settings, st, logger)
	defer closeSink()
	defer push.Close()

	if settings.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	staticDir := os.Getenv("STATIC_DIR")
	if staticDir == "" {
		staticDir = "./web/dist"
	}
	router := api.NewRouter(api.Deps{
		Store:       st,
		Memo:        cache.NewMemo(c, logger.WithPrefix("cache")),
		Push:        push,
		PushEnabled: pushEnabled,
		Now:         time.Now,
		Logger:      logger,
		CORSOrigins: settings.CORSOrigins,
		StaticDir:   staticDir,
	})

	srv := &http.Server{
		Addr:              ":" + settings.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "err", err)
		}
	}()

	logger.Info("starting API server", "addr", srv.Addr, "env", settings.Env)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", "err", err)
	}
	logger.Info("server stopped gracefully")
}

// openCache picks the simulation cache. A Redis that does not answer falls
// back to the in-process cache.
func openCache(s *config.Settings, logger *log.Logger) cache.Cache {
	switch s.CacheBackend {
	case "none":
		return nil
	case "redis":
		r := cache.NewRedis(s.RedisAddr, s.CacheTTL)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := r.Ping(ctx); err != nil {
			logger.Warn("redis unavailable, using memory cache", "addr", s.RedisAddr, "err", err)
			_ = r.Close()
			return cache.NewMemory(s.CacheTTL)
		}
		logger.Info("cache ready", "backend", "redis", "addr", s.RedisAddr)
		return r
	default:
		logger.Info("cache ready", "backend", "memory", "ttl", s.CacheTTL)
		return cache.NewMemory(s.CacheTTL)
	}
}

// openPush builds the dispatcher for new overpayments. The sheet webhook
// reads its URL from the saved state on every push, falling back to
// SHEET_URL, so pushes start as soon as a URL is saved.
func openPush(s *config.Settings, st store.Store, logger *log.Logger) (*notify.Dispatcher, func(context.Context) bool, func()) {
	pushLogger := logger.WithPrefix("push")

	if s.NotifyBackend == "amqp" {
		sink, err := notify.NewAMQPSink(s.AMQPURL, s.AMQPExchange, s.AMQPQueue)
		if err != nil {
			logger.Error("amqp unavailable, overpayments will not be pushed", "err", err)
			return nil, nil, func() {}
		}
		logger.Info("push ready", "backend", "amqp", "exchange", s.AMQPExchange, "queue", s.AMQPQueue)
		return notify.NewDispatcher(sink, pushLogger), nil, func() { _ = sink.Close() }
	}

	client := sheets.NewResolvingClient(func(ctx context.Context) (string, error) {
		state, err := st.Load(ctx)
		if err != nil {
			return "", err
		}
		if state.SheetURL != "" {
			return state.SheetURL, nil
		}
		return s.SheetURL, nil
	}, pushLogger)
	logger.Info("push ready", "backend", "webhook")
	return notify.NewDispatcher(client, pushLogger), client.Configured, func() {}
}
