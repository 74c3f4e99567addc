package v1

import (
	"epitrello-backend/internal/handlers"

	"github.com/gofiber/fiber/v2"
)

func registerHealth(r fiber.Router, d Deps) {
	healthHandler := handlers.NewHealthHandler(d.DB)

	r.Get("/health", healthHandler.Check)
}
