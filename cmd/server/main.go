package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/ferminhg/poker-planning/config"
	"github.com/ferminhg/poker-planning/db"
	"github.com/ferminhg/poker-planning/handlers"
	"github.com/ferminhg/poker-planning/models"
)

func main() {
	cfg := config.Load()
	cfg.SetupLogging()

	clock := clockwork.NewRealClock()
	store := newStore(cfg, clock)

	if cfg.Environment != config.EnvDevelopment {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(handlers.RequestLogger())

	roomHandler := handlers.NewRoomHandler(store, clock)
	roomHandler.Register(router)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: cors.AllowAll().Handler(router),
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server is up")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-done

	log.Info().Msg("server is shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}

// newStore picks the Redis primary when configured and always keeps the
// in-process store behind it, so backend trouble degrades instead of
// failing requests.
func newStore(cfg config.Config, clock clockwork.Clock) db.Store {
	memory := db.NewMemoryStore(clock, models.RoomTTL)

	if cfg.RedisURL == "" {
		log.Warn().Msg("REDIS_URL not set, rooms are process-local only")
		return db.NewFallbackStore(nil, memory)
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Error().Err(err).Msg("invalid REDIS_URL, rooms are process-local only")
		return db.NewFallbackStore(nil, memory)
	}

	primary := db.NewRedisStore(redis.NewClient(opts), models.RoomTTL)
	return db.NewFallbackStore(primary, memory)
}
