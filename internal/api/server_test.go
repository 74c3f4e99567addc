package api

import (
	"fmt"
	"net/http/httptest"
	"testing"

	"epitrello-backend/internal/config"
	"epitrello-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomErrorHandler(t *testing.T) {
	app := NewServer(&config.Config{CORSOrigins: "*"})
	app.Get("/forbidden", func(c *fiber.Ctx) error {
		return fmt.Errorf("%w: board", models.ErrForbidden)
	})
	app.Get("/upgrade", func(c *fiber.Ctx) error {
		return fiber.ErrUpgradeRequired
	})
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("boom")
	})

	cases := map[string]int{
		"/forbidden": fiber.StatusForbidden,
		"/upgrade":   fiber.StatusUpgradeRequired,
		"/panic":     fiber.StatusInternalServerError,
		"/missing":   fiber.StatusNotFound,
	}
	for path, want := range cases {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, path)
	}
}
