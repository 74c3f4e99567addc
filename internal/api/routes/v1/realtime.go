package v1

import (
	"epitrello-backend/internal/handlers"
	"epitrello-backend/internal/libraries"

	"github.com/gofiber/fiber/v2"
)

// registerRealtime mounts the board event stream. The upgrade guard does its own token
// check since browsers pass the token in the query string.
func registerRealtime(r fiber.Router, d Deps) {
	realtimeHandler := handlers.NewRealtimeHandler(d.Tokens, d.resolver())

	r.Get("/ws", realtimeHandler.Upgrade, libraries.WebSocketHandler(d.Hub))
}
