package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	api "github.com/prono-coach/pronocoach-learn/internal/api/http"
	auth "github.com/prono-coach/pronocoach-learn/internal/auth/middleware"
	"github.com/prono-coach/pronocoach-learn/internal/config"
	"github.com/prono-coach/pronocoach-learn/internal/db"
	"github.com/prono-coach/pronocoach-learn/internal/platform"
	"github.com/prono-coach/pronocoach-learn/internal/storage"
)

func main() {
	_ = godotenv.Load()
	cfg := config.ServerFromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	store := platform.NewSQLStore(dbh, cfg.DBDriver)
	if cfg.SeedDemo {
		if err := store.Seed(ctx); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	}

	authSvc := auth.NewAuthService(cfg.AuthSecret)

	books, err := storage.NewHandoutStore(cfg.BookBasePath)
	if err != nil {
		log.Fatalf("handout store: %v", err)
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/api/login", api.LoginHandler(store, authSvc))

	// Learner API (JWT via bearer or session cookie)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		pr.Get("/api/course_modules", api.CourseModulesHandler(store))
		pr.Get("/api/module_courses/{courseID}/quiz", api.CourseQuizHandler(store))
		pr.Post("/api/module_courses/{courseID}/quiz/attempts", api.SubmitQuizAttemptHandler(store))
		pr.Post("/api/module_courses/{courseID}/quiz/reset", api.ResetQuizHandler(store))
		pr.Post("/api/save_progress", api.SaveProgressHandler(store))

		pr.Route("/assets", func(ar chi.Router) {
			api.MountAssets(ar, books)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
