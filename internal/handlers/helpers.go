package handlers

import (
	"errors"
	"fmt"
	"log"

	"epitrello-backend/internal/audit"
	"epitrello-backend/internal/auth"
	"epitrello-backend/internal/libraries"
	"epitrello-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// EventPublisher pushes board change events to websocket subscribers.
type EventPublisher interface {
	Publish(boardID uuid.UUID, eventType libraries.WebSocketMessageType, data interface{})
}

// Auditor records organization audit entries.
type Auditor interface {
	Record(e audit.Entry)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidInput), errors.Is(err, models.ErrInvalidPosition):
		return fiber.StatusBadRequest
	case errors.Is(err, models.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, models.ErrConflict), errors.Is(err, models.ErrStalePosition):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

// respondError writes err as a JSON error. Unclassified errors are logged and hidden
// behind fallback.
func respondError(c *fiber.Ctx, err error, fallback string) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		log.Println(err, fallback)
		return c.Status(status).JSON(fiber.Map{"error": fallback})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func uuidParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s is not a valid id", models.ErrInvalidInput, name)
	}
	return id, nil
}

// parseUUID parses an optional id from a request body; empty means absent.
func parseUUID(raw, field string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a valid id", models.ErrInvalidInput, field)
	}
	return &id, nil
}

func callerID(c *fiber.Ctx) uuid.UUID {
	return auth.UserID(c)
}
