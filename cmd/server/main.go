package main

import (
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/moevm/nosql1h25-cleanday/internal/auth"
	"github.com/moevm/nosql1h25-cleanday/internal/db"
	"github.com/moevm/nosql1h25-cleanday/internal/handlers"
	"github.com/moevm/nosql1h25-cleanday/internal/middleware"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	database, err := db.New()
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "default-secret-key-change-in-production"
	}
	authService := auth.NewService(jwtSecret)

	h := handlers.New(database, authService, logger)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)

		r.Get("/users/", h.GetUsers)
		r.Get("/users/{id}", h.GetUser)
		r.Get("/users/{id}/avatar", h.GetUserAvatar)
		r.Get("/users/{id}/cleandays", h.GetUserCleandays)
		r.Get("/users/{id}/organized", h.GetUserOrganized)

		r.Get("/cleandays/", h.GetCleandays)
		r.Get("/cleandays/{id}", h.GetCleanday)
		r.Get("/cleandays/{id}/members", h.GetCleandayMembers)
		r.Get("/cleandays/{id}/comments", h.GetCleandayComments)
		r.Get("/cleandays/{id}/logs", h.GetCleandayLogs)
		r.Get("/cleandays/{id}/requirements", h.GetCleandayRequirements)
		r.Get("/cleandays/{id}/images", h.GetCleandayImages)

		r.Get("/locations/", h.GetLocations)
		r.Get("/locations/{id}", h.GetLocation)
		r.Get("/locations/{id}/images", h.GetLocationImages)

		r.Get("/cities/", h.GetCities)

		r.Get("/stats/", h.GetStats)
		r.Get("/stats/user-heatmap", h.GetUserHeatmap)
		r.Get("/stats/cleanday-heatmap", h.GetCleandayHeatmap)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(authService))

			r.Get("/auth/me", h.Me)

			r.Patch("/users/{id}", h.UpdateUser)
			r.Put("/users/{id}/avatar", h.UpdateUserAvatar)
			r.Put("/users/{id}/password", h.CheckUserPassword)

			r.Post("/cleandays/", h.CreateCleanday)
			r.Patch("/cleandays/{id}", h.UpdateCleanday)
			r.Post("/cleandays/{id}/members", h.JoinCleanday)
			r.Get("/cleandays/{id}/members/me", h.GetMyParticipation)
			r.Patch("/cleandays/{id}/members/me", h.UpdateMyParticipation)
			r.Post("/cleandays/{id}/comments", h.CreateComment)
			r.Delete("/cleandays/{id}/requirements/{req_id}", h.DeleteRequirement)
			r.Post("/cleandays/{id}/images", h.AddCleandayImages)
			r.Post("/cleandays/{id}/end", h.EndCleanday)

			r.Post("/locations/", h.CreateLocation)
			r.Post("/locations/{id}/images", h.AddLocationImages)

			r.Post("/cities/", h.CreateCity)

			r.Get("/stats/export", h.ExportData)
			r.Post("/stats/import", h.ImportData)
		})
	})

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = "0.0.0.0:8000"
	}

	logger.Info("Server starting", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
