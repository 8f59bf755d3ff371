package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/kevinaaaquil/digitallibrary/catalog"
	"github.com/kevinaaaquil/digitallibrary/config"
	"github.com/kevinaaaquil/digitallibrary/handlers"
	"github.com/kevinaaaquil/digitallibrary/logging"
	"github.com/kevinaaaquil/digitallibrary/metrics"
	"github.com/kevinaaaquil/digitallibrary/middleware"
	"github.com/kevinaaaquil/digitallibrary/service"
	"github.com/kevinaaaquil/digitallibrary/store"
	"github.com/kevinaaaquil/digitallibrary/store/memstore"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("config")
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	ctx := context.Background()
	var st catalog.Store
	switch cfg.Store.Backend {
	case config.BackendMemory:
		logging.Warn().Msg("using the in-memory store; data is lost on restart")
		st = memstore.New()
	default:
		db, err := store.NewMongoDB(ctx, cfg.Store.MongoURI, cfg.Store.DBName)
		if err != nil {
			logging.Fatal().Err(err).Msg("mongodb")
		}
		defer func() {
			if err := db.Disconnect(context.Background()); err != nil {
				logging.Error().Err(err).Msg("mongodb disconnect")
			}
		}()
		if err := db.EnsureIndexes(ctx); err != nil {
			logging.Fatal().Err(err).Msg("mongodb indexes")
		}
		st = db
	}

	var gen catalog.Generator = service.DisabledGenerator{}
	if cfg.OpenAI.APIKey != "" {
		gen = service.NewOpenAIGenerator(service.OpenAIConfig{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.Model,
			Timeout: cfg.OpenAI.Timeout,
		})
	} else {
		logging.Warn().Msg("OPENAI_API_KEY not set; AI features will fail")
	}

	svc := catalog.New(st, gen)
	svc.Covers = service.NewCoverLookup()

	if _, err := svc.EnsureMoods(ctx); err != nil {
		logging.Fatal().Err(err).Msg("seed moods")
	}
	if _, err := svc.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		logging.Fatal().Err(err).Msg("seed admin")
	}

	var covers handlers.CoverStorage
	if cfg.S3.Bucket != "" {
		s3Service, err := service.NewS3Service(ctx, cfg.S3.Bucket, cfg.S3.Region, cfg.S3.AccessKeyID, cfg.S3.SecretKey)
		if err != nil {
			logging.Fatal().Err(err).Msg("s3")
		}
		covers = s3Service
	} else {
		logging.Warn().Msg("AWS_S3_BUCKET not set; cover uploads will fail")
	}

	sessions := &middleware.Sessions{Secret: cfg.Auth.JWTSecret, TTL: cfg.Auth.TokenTTL, Users: st}
	api := handlers.NewAPI(svc, sessions, covers, cfg.MaxUploadBytes())
	api.Limit = middleware.RateLimit(cfg.Server.RateLimitRequests, cfg.Server.RateLimitWindow)

	r := chi.NewRouter()
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(logging.RequestLogger())
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"welcome to the digital library."}`))
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", metrics.Handler())
	api.Mount(r)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logging.Info().Str("port", cfg.Server.Port).Str("store", cfg.Store.Backend).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("shutdown")
	}
}
