package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/cineroom/server/internal/controller"
	"github.com/cineroom/server/internal/repository/connection/inmemory"
	roomredis "github.com/cineroom/server/internal/repository/room/redis"
	sessionredis "github.com/cineroom/server/internal/repository/session/redis"
	"github.com/cineroom/server/internal/service/auth"
	"github.com/cineroom/server/internal/service/room"
	"github.com/cineroom/server/internal/service/sync"
	"github.com/cineroom/server/pkg/ctxlogger"
	"github.com/cineroom/server/pkg/redisclient"
)

type AppConfig struct {
	Host          string `json:"host"`
	Port          int    `json:"port"`
	LogLevel      string `json:"log_level"`
	SessionTTLH   int    `json:"session_ttl_h"`
	RoomTTLH      int    `json:"room_ttl_h"`
	RedisPort     int    `json:"redis_port"`
	RedisHost     string `json:"redis_host"`
	RedisPassword string `json:"-"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	if cfg.SessionTTLH < 1 {
		return fmt.Errorf("session ttl must be greater than 0")
	}
	if cfg.RoomTTLH < 1 {
		return fmt.Errorf("room ttl must be greater than 0")
	}
	return nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		log.Fatal(err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	logger := slog.New(&h)
	slog.SetDefault(logger)

	rc, err := redisclient.NewRedisClient(&redisclient.Config{
		Port:     cfg.RedisPort,
		Host:     cfg.RedisHost,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer rc.Close()

	clock := clockwork.NewRealClock()

	roomRepo := roomredis.NewRepo(rc, time.Duration(cfg.RoomTTLH)*time.Hour)
	sessionRepo := sessionredis.NewRepo(rc)
	connRepo := inmemory.NewRepo()

	authService := auth.NewService(sessionRepo, clock, &auth.Config{
		SessionTTL: time.Duration(cfg.SessionTTLH) * time.Hour,
	})
	roomService := room.NewService(roomRepo, connRepo, authService, clock)
	syncService := sync.NewService(roomRepo, connRepo, authService, clock)

	ctrl := controller.NewController(authService, roomService, syncService, connRepo, clock, logger)
	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: ctrl.GetMux()}

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		err := server.Shutdown(shutdownCtx)
		if err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}
