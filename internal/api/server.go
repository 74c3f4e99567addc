package api

import (
	"errors"
	"log"

	"epitrello-backend/internal/config"
	"epitrello-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// attachments are buffered in memory by fasthttp before the handler sees them
const bodyLimit = 25 * 1024 * 1024

func NewServer(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		AppName:      "EpiTrello Backend",
		BodyLimit:    bodyLimit,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	return app
}

func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
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

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := statusFor(err)

	log.Printf("Error: %v", err)

	message := err.Error()
	if code == fiber.StatusInternalServerError {
		message = "Internal server error"
	}
	return c.Status(code).JSON(fiber.Map{
		"error": message,
	})
}

func StartServer(app *fiber.App, port string) error {
	log.Printf("Server starting on port %s\n", port)
	return app.Listen(":" + port)
}
