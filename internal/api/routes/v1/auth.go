package v1

import (
	"epitrello-backend/internal/handlers"
	"epitrello-backend/internal/repo"

	"github.com/gofiber/fiber/v2"
)

func registerAuth(r fiber.Router, d Deps) {
	authHandler := handlers.NewAuthHandler(repo.NewUserRepository(d.DB), d.Tokens)

	r.Post("/auth/register", authHandler.Register)
	r.Post("/auth/login", authHandler.Login)
}

func registerProfile(r fiber.Router, d Deps) {
	authHandler := handlers.NewAuthHandler(repo.NewUserRepository(d.DB), d.Tokens)

	r.Get("/auth/me", authHandler.Me)
	r.Put("/auth/profile", authHandler.UpdateProfile)
	r.Put("/auth/password", authHandler.UpdatePassword)
	r.Get("/users/:userId", authHandler.GetProfile)
}
