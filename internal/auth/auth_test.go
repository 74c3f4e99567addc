package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"epitrello-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)
	assert.True(t, CheckPassword(hash, "hunter22"))
	assert.False(t, CheckPassword(hash, "hunter23"))
}

func TestTokens_RoundTrip(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	id := uuid.New()

	token, expiresAt, err := tokens.Issue(id)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	got, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestTokens_Rejects(t *testing.T) {
	id := uuid.New()

	expired, _, err := NewTokens("secret", -time.Minute).Issue(id)
	require.NoError(t, err)
	_, err = NewTokens("secret", time.Hour).Verify(expired)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	other, _, err := NewTokens("other", time.Hour).Issue(id)
	require.NoError(t, err)
	_, err = NewTokens("secret", time.Hour).Verify(other)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: id.String()}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = NewTokens("secret", time.Hour).Verify(noExpiry)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = NewTokens("secret", time.Hour).Verify("garbage")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestMiddleware(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	id := uuid.New()
	token, _, err := tokens.Issue(id)
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/me", Middleware(tokens), func(c *fiber.Ctx) error {
		return c.SendString(UserID(c).String())
	})

	req := httptest.NewRequest("GET", "/me", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer nope")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
