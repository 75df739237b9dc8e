package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/soniva/backend/internal/aireport"
	"github.com/soniva/backend/internal/api/handlers"
	"github.com/soniva/backend/internal/api/middleware"
	"github.com/soniva/backend/internal/auth"
	"github.com/soniva/backend/internal/cache"
	"github.com/soniva/backend/internal/config"
	"github.com/soniva/backend/internal/queue"
	"github.com/soniva/backend/internal/storage"
	"github.com/soniva/backend/internal/voice"
	"github.com/soniva/backend/internal/voiceprint"
)

type Router struct {
	mux   *chi.Mux
	db    *pgxpool.Pool
	redis *redis.Client
	cfg   *config.Config
	jwt   *auth.JWTMiddleware
}

func NewRouter(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config) *Router {
	return &Router{
		mux:   chi.NewRouter(),
		db:    db,
		redis: rdb,
		cfg:   cfg,
		jwt:   auth.NewJWTMiddleware(cfg.Auth.JWTSecret),
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	rl := middleware.NewRateLimiter(100, 200)
	r.Use(rl.Limit)

	// Health endpoints (no auth)
	health := handlers.NewHealthHandler(rt.db, rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	// Initialize services
	store := rt.buildStorage()
	queueClient := queue.NewClient(rt.cfg.Redis)
	reports := aireport.NewGateway(rt.cfg.Report)
	prints := voiceprint.NewPgVectorStore(rt.db)
	voiceSvc := voice.NewService(rt.db, store, rt.cfg.Storage.Bucket, rt.cfg.Analysis,
		reports, prints, cache.NewCache(rt.redis), queueClient)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.jwt.Authenticate)

		voiceH := handlers.NewVoiceHandler(voiceSvc, rt.cfg.Analysis.MaxUploadBytes)
		r.Route("/voice", func(r chi.Router) {
			r.Post("/analyze", voiceH.Analyze)
			r.Post("/upload", voiceH.Upload)
		})

		resultsH := handlers.NewResultsHandler(voiceSvc)
		r.Route("/results", func(r chi.Router) {
			r.Get("/", resultsH.List)
			r.Get("/{id}", resultsH.Get)
			r.Get("/{id}/status", resultsH.Status)
			r.Get("/{id}/similar", resultsH.Similar)
			r.Delete("/{id}", resultsH.Delete)
		})
	})

	return r
}

func (rt *Router) buildStorage() storage.Storage {
	if rt.cfg.Storage.Backend == "s3" {
		return storage.NewS3Storage(storage.NewS3ClientFromConfig(rt.cfg.Storage))
	}
	store, err := storage.NewLocalStorage(rt.cfg.Storage.LocalDir)
	if err != nil {
		slog.Error("local storage unavailable", "dir", rt.cfg.Storage.LocalDir, "error", err)
		panic(err)
	}
	return store
}
