package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	ratelimit "golang.org/x/time/rate"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/config"
	httptransport "github.com/example/room-booking/internal/http"
	"github.com/example/room-booking/internal/logging"
	"github.com/example/room-booking/internal/notify"
	"github.com/example/room-booking/internal/notify/redisaudit"
	"github.com/example/room-booking/internal/persistence/factory"
)

func main() {
	logger := logging.New(os.Stdout, slog.LevelInfo)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	storage, err := factory.Open(cfg.StorageBackend, cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err, "backend", cfg.StorageBackend)
		os.Exit(1)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	dispatcher := notify.NewDispatcher(cfg.NotifyWorkers, cfg.NotifyQueueSize, logger)
	dispatcher.Register(notify.NewAuditLogger(logger))

	if cfg.Redis.Addr != "" {
		trail, err := redisaudit.New(redisaudit.Config{
			Addr:       cfg.Redis.Addr,
			Username:   cfg.Redis.Username,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			KeyPrefix:  cfg.Redis.KeyPrefix,
			MaxEntries: cfg.Redis.MaxEntries,
		})
		if err != nil {
			logger.Error("failed to connect to redis audit trail", "error", err, "addr", cfg.Redis.Addr)
			os.Exit(1)
		}
		defer func() {
			if cerr := trail.Close(); cerr != nil {
				logger.Error("failed to close redis audit trail", "error", cerr)
			}
		}()
		dispatcher.Register(trail)
	}

	events := httptransport.NewEventStream(logger)
	defer events.Close()
	dispatcher.Register(events)
	dispatcher.Start(ctx)

	idGenerator := uuid.NewString
	tokenGenerator := func() string { return randomHex(32) }
	now := time.Now

	bookingService := application.NewBookingServiceWithLogger(storage, dispatcher, idGenerator, now, cfg.SaturationCeiling, logger)
	roomService := application.NewRoomServiceWithLogger(storage, bookingService.EvictRoom, idGenerator, now, logger)
	authService := application.NewAuthServiceWithLogger(storage, storage, idGenerator, tokenGenerator, now, cfg.SessionTTL, logger)

	responseCache := gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:         httptransport.NewAuthHandler(authService, logger),
		Rooms:        httptransport.NewRoomHandler(roomService, logger),
		Reservations: httptransport.NewReservationHandler(bookingService, logger),
		Events:       events.Handler(),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.RateLimit(ratelimit.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst, logger),
			httptransport.RequireSession(authService, logger),
			httptransport.CacheGET(responseCache, cfg.CacheTTL),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// No write timeout: the event stream holds its connection open.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("booking API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}

	dispatcher.Wait()
}

func randomHex(bytes int) string {
	if bytes <= 0 {
		bytes = 16
	}
	buf := make([]byte, bytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		// An empty token makes the auth service refuse the login rather
		// than issue a predictable session.
		return ""
	}
	return hex.EncodeToString(buf)
}
