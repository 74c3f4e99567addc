package handlers

import (
	"errors"
	"strings"

	"epitrello-backend/internal/auth"
	"epitrello-backend/internal/models"
	"epitrello-backend/internal/repo"

	"github.com/gofiber/fiber/v2"
)

const minPasswordLength = 6

type AuthHandler struct {
	users  repo.UserRepoInterface
	tokens *auth.Tokens
}

func NewAuthHandler(users repo.UserRepoInterface, tokens *auth.Tokens) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

func (h *AuthHandler) issue(c *fiber.Ctx, status int, user *models.User) error {
	token, expiresAt, err := h.tokens.Issue(user.ID)
	if err != nil {
		return respondError(c, err, "Failed to issue token")
	}
	return c.Status(status).JSON(fiber.Map{
		"token":      token,
		"expires_at": expiresAt,
		"user":       user,
	})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var dto struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := c.BodyParser(&dto); err != nil {
		return badRequest(c, "Invalid request body")
	}
	dto.Username = strings.TrimSpace(dto.Username)
	if dto.Username == "" || strings.TrimSpace(dto.Email) == "" || dto.Password == "" {
		return badRequest(c, "Username, email and password are required")
	}
	if len(dto.Password) < minPasswordLength {
		return badRequest(c, "Password must be at least 6 characters")
	}

	hash, err := auth.HashPassword(dto.Password)
	if err != nil {
		return respondError(c, err, "Failed to register user")
	}
	user := &models.User{
		Username:     dto.Username,
		Email:        dto.Email,
		Name:         dto.Name,
		PasswordHash: hash,
	}
	if err := h.users.CreateUser(c.UserContext(), user); err != nil {
		return respondError(c, err, "Failed to register user")
	}
	return h.issue(c, fiber.StatusCreated, user)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var dto struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&dto); err != nil {
		return badRequest(c, "Invalid request body")
	}
	login := dto.Email
	if login == "" {
		login = dto.Username
	}
	if login == "" || dto.Password == "" {
		return badRequest(c, "Email and password are required")
	}

	user, err := h.users.GetUserByLogin(c.UserContext(), login)
	if errors.Is(err, models.ErrNotFound) || (err == nil && !auth.CheckPassword(user.PasswordHash, dto.Password)) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
	}
	if err != nil {
		return respondError(c, err, "Failed to login")
	}
	return h.issue(c, fiber.StatusOK, user)
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := h.users.GetUserByID(c.UserContext(), auth.UserID(c))
	if err != nil {
		return respondError(c, err, "Failed to fetch profile")
	}
	return c.JSON(fiber.Map{"user": user})
}

// GetProfile returns the public profile of any user.
func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	userID, err := uuidParam(c, "userId")
	if err != nil {
		return respondError(c, err, "Failed to fetch profile")
	}
	ctx := c.UserContext()
	user, err := h.users.GetUserByID(ctx, userID)
	if err != nil {
		return respondError(c, err, "Failed to fetch profile")
	}
	boards, err := h.users.CountBoards(ctx, userID)
	if err != nil {
		return respondError(c, err, "Failed to fetch profile")
	}
	return c.JSON(fiber.Map{"user": fiber.Map{
		"id":           user.ID,
		"username":     user.Username,
		"name":         user.Name,
		"bio":          user.Bio,
		"created_at":   user.CreatedAt,
		"boards_count": boards,
	}})
}

func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	var dto struct {
		Name     *string `json:"name"`
		Username *string `json:"username"`
		Email    *string `json:"email"`
		Bio      *string `json:"bio"`
	}
	if err := c.BodyParser(&dto); err != nil {
		return badRequest(c, "Invalid request body")
	}

	updates := map[string]interface{}{}
	if dto.Name != nil {
		updates["name"] = *dto.Name
	}
	if dto.Bio != nil {
		updates["bio"] = *dto.Bio
	}
	if dto.Username != nil {
		if strings.TrimSpace(*dto.Username) == "" {
			return badRequest(c, "Username cannot be empty")
		}
		updates["username"] = strings.TrimSpace(*dto.Username)
	}
	if dto.Email != nil {
		if strings.TrimSpace(*dto.Email) == "" {
			return badRequest(c, "Email cannot be empty")
		}
		updates["email"] = *dto.Email
	}

	user, err := h.users.UpdateProfile(c.UserContext(), auth.UserID(c), updates)
	if err != nil {
		return respondError(c, err, "Failed to update profile")
	}
	return c.JSON(fiber.Map{"message": "Profile updated successfully", "user": user})
}

func (h *AuthHandler) UpdatePassword(c *fiber.Ctx) error {
	var dto struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := c.BodyParser(&dto); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if dto.CurrentPassword == "" || dto.NewPassword == "" {
		return badRequest(c, "Please provide current and new password")
	}
	if len(dto.NewPassword) < minPasswordLength {
		return badRequest(c, "New password must be at least 6 characters")
	}

	ctx := c.UserContext()
	user, err := h.users.GetUserByID(ctx, auth.UserID(c))
	if err != nil {
		return respondError(c, err, "Failed to update password")
	}
	if !auth.CheckPassword(user.PasswordHash, dto.CurrentPassword) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Current password is incorrect"})
	}
	hash, err := auth.HashPassword(dto.NewPassword)
	if err != nil {
		return respondError(c, err, "Failed to update password")
	}
	if err := h.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return respondError(c, err, "Failed to update password")
	}
	return c.JSON(fiber.Map{"message": "Password updated successfully"})
}
