package handlers

import (
	"strings"

	"epitrello-backend/internal/access"
	"epitrello-backend/internal/auth"
	"epitrello-backend/internal/libraries"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RealtimeHandler authorizes websocket upgrades for a board's event stream.
type RealtimeHandler struct {
	tokens   *auth.Tokens
	resolver *access.Resolver
}

func NewRealtimeHandler(tokens *auth.Tokens, resolver *access.Resolver) *RealtimeHandler {
	return &RealtimeHandler{tokens: tokens, resolver: resolver}
}

// Upgrade runs before libraries.WebSocketHandler. Browsers cannot set headers on a
// websocket handshake, so the token may also come from the query string.
func (h *RealtimeHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	token := c.Query("token")
	if token == "" {
		token, _ = strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
	}
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Access token required"})
	}
	userID, err := h.tokens.Verify(token)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
	}

	boardID, err := uuid.Parse(c.Query("boardId"))
	if err != nil {
		return badRequest(c, "boardId is required")
	}
	ok, err := h.resolver.CanRead(c.UserContext(), boardID, userID)
	if err != nil {
		return respondError(c, err, "Failed to authorize connection")
	}
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "No access to this board"})
	}

	auth.SetUserID(c, userID)
	c.Locals(libraries.LocalBoardID, boardID)
	c.Locals(libraries.LocalUserID, userID)
	return c.Next()
}
