package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/bonssss/chat-app/internal/api/middleware"
	"github.com/bonssss/chat-app/internal/handlers"
	"github.com/bonssss/chat-app/internal/storage"
	"github.com/bonssss/chat-app/internal/store"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(logger zerolog.Logger, db store.DataStore, redisStore *store.RedisStore, objects *storage.DiskStore, jwtSecret []byte) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	// Security middleware (order matters!)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodySize(16 * 1024)) // 16KB max JSON body
	r.Use(middleware.ValidateRequest)

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// Rate limiting (requires Redis; dev runs may go without)
	if redisStore != nil {
		limiter := middleware.NewRateLimiter(redisStore.Client(), logger)
		r.Use(limiter.Middleware)
	}

	// CORS - the mobile client calls from anywhere
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Create handler and auth middleware
	h := handlers.NewHandler(db, redisStore, objects, jwtSecret, logger)
	auth := middleware.NewAuthMiddleware(db, jwtSecret)

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// Public routes (no auth required)
	r.Get("/", h.Root)
	r.Get("/health", h.Health)
	r.Post("/auth/signup", h.SignUp)
	r.Post("/auth/signin", h.SignIn)
	r.Get("/storage/{bucket}/{name}", h.GetObject) // Public object reads

	// Authenticated routes (require bearer token)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)

		r.Post("/auth/signout", h.SignOut)
		r.Get("/auth/user", h.CurrentUser)

		r.Get("/messages", h.GetMessages)
		r.Post("/messages", h.SendMessage)
		r.Get("/conversations", h.GetConversationFeed)
		r.Get("/realtime/messages", h.StreamMessages)

		r.Get("/profiles/{id}", h.GetProfile)
		r.Post("/profiles", h.UpsertProfile)

		r.Post("/storage/{bucket}/{name}", h.UploadObject)
	})

	return r
}
