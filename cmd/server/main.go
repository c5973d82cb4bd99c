package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"predictbattle/internal/cache"
	"predictbattle/internal/config"
	"predictbattle/internal/repository"
	"predictbattle/internal/service"
	"predictbattle/internal/transport/rest"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// @title PredictBattle API
// @version 1.0
// @description Group prediction sessions: join by code, predict once, reveal when everyone has.
// @host localhost:8080
// @BasePath /api
func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx := context.Background()

	// Session and user stores: Mongo when configured, in-memory otherwise.
	var (
		sessionRepo repository.SessionRepo
		userRepo    repository.UserRepo
	)
	if cfg.MongoURI != "" {
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to MongoDB")
		}
		defer mongoClient.Disconnect(ctx)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := mongoClient.Ping(pingCtx, nil); err != nil {
			log.Fatal().Err(err).Msg("failed to ping MongoDB")
		}

		db := mongoClient.Database(cfg.MongoDatabase)
		if err := repository.EnsureSessionIndexes(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("failed to ensure session indexes")
		}
		if err := repository.EnsureUserIndexes(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("failed to ensure user indexes")
		}

		sessionRepo = repository.NewSessionRepo(db)
		userRepo = repository.NewUserRepo(db)
		log.Info().Str("db", cfg.MongoDatabase).Msg("connected to MongoDB")
	} else {
		sessionRepo = repository.NewMemorySessionRepo()
		userRepo = repository.NewMemoryUserRepo()
		log.Warn().Msg("MONGODB_URI not set, using in-memory store (state is lost on restart)")
	}

	// Redis code index is an optional fast path.
	var codeIndex cache.CodeIndex
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()

		if _, err := rdb.Ping(ctx).Result(); err != nil {
			log.Fatal().Err(err).Msg("failed to ping Redis")
		}
		codeIndex = cache.NewCodeIndex(rdb)
		log.Info().Str("addr", cfg.RedisAddr).Msg("connected to Redis")
	} else {
		log.Warn().Msg("REDIS_ADDR not set, code index cache disabled")
	}

	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL, cfg.NameBlocklist)
	sessionSvc := service.NewSessionService(sessionRepo, codeIndex, log.Logger)

	router := rest.NewRouter(&rest.Container{
		AuthService:    authSvc,
		SessionService: sessionSvc,
		CreateSecret:   cfg.CreateSecret,
		CORSOrigins:    cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen and serve")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}
