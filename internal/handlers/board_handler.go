package handlers

import (
	"strings"

	"epitrello-backend/internal/access"
	"epitrello-backend/internal/audit"
	"epitrello-backend/internal/libraries"
	"epitrello-backend/internal/models"
	"epitrello-backend/internal/repo"

	"github.com/gofiber/fiber/v2"
)

// for simple crud operations service layer is not required
type BoardHandler struct {
	repo     repo.BoardRepoInterface
	orgs     repo.OrganizationRepoInterface
	resolver *access.Resolver
	blobs    libraries.ObjectStore
	effects  boardEffects
}

func NewBoardHandler(
	repo repo.BoardRepoInterface,
	orgs repo.OrganizationRepoInterface,
	resolver *access.Resolver,
	blobs libraries.ObjectStore,
	events EventPublisher,
	auditor Auditor,
) *BoardHandler {
	return &BoardHandler{
		repo:     repo,
		orgs:     orgs,
		resolver: resolver,
		blobs:    blobs,
		effects:  boardEffects{boards: repo, events: events, auditor: auditor},
	}
}

// function to create a board
func (h *BoardHandler) CreateBoard(c *fiber.Ctx) error {
	var dto struct {
		Title          string `json:"title"`
		OrganizationID string `json:"organizationId"`
	}
	if err := c.BodyParser(&dto); err != nil {
		return badRequest(c, "Invalid request body")
	}
	title := strings.TrimSpace(dto.Title)
	if title == "" {
		return badRequest(c, "Board title is required")
	}
	orgID, err := parseUUID(dto.OrganizationID, "organizationId")
	if err != nil {
		return respondError(c, err, "Failed to create board")
	}

	ctx := c.UserContext()
	userID := callerID(c)
	if orgID != nil {
		role, err := h.orgs.MemberRole(ctx, *orgID, userID)
		if err != nil {
			return respondError(c, err, "Failed to create board")
		}
		if role == nil {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "You must be a member of the organization",
			})
		}
	}

	board := &models.Board{Title: title, UserID: userID, OrganizationID: orgID}
	id, err := h.repo.CreateBoard(ctx, board)
	if err != nil {
		return respondError(c, err, "Failed to create board")
	}
	if orgID != nil {
		h.effects.auditor.Record(audit.Entry{
			OrganizationID: *orgID,
			UserID:         userID,
			Action:         "board_created",
			EntityType:     "board",
			EntityID:       &id,
			Details:        map[string]interface{}{"board_title": title},
			IPAddress:      c.IP(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"board":   board,
		"message": "Board created successfully",
	})
}

// function to get all boards visible to the caller
func (h *BoardHandler) GetAllBoards(c *fiber.Ctx) error {
	boards, err := h.repo.GetBoardsForUser(c.UserContext(), callerID(c))
	if err != nil {
		return respondError(c, err, "Failed to get boards")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"boards": boards,
	})
}

// function to get a board with its columns and cards
func (h *BoardHandler) GetBoardByID(c *fiber.Ctx) error {
	boardID, err := uuidParam(c, "boardId")
	if err != nil {
		return respondError(c, err, "Failed to get board")
	}
	ctx := c.UserContext()
	role, err := h.resolver.Require(ctx, boardID, callerID(c), access.Read)
	if err != nil {
		return respondError(c, err, "Failed to get board")
	}

	board, err := h.repo.GetBoardDetails(ctx, boardID)
	if err != nil {
		return respondError(c, err, "Failed to get board")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"board": board,
		"role":  role,
	})
}

func (h *BoardHandler) RenameBoard(c *fiber.Ctx) error {
	boardID, err := uuidParam(c, "boardId")
	if err != nil {
		return respondError(c, err, "Failed to update board")
	}
	var dto struct {
		Title string `json:"title"`
	}
	if err := c.BodyParser(&dto); err != nil {
		return badRequest(c, "Invalid request body")
	}
	title := strings.TrimSpace(dto.Title)
	if title == "" {
		return badRequest(c, "Board title is required")
	}

	ctx := c.UserContext()
	if _, err := h.resolver.Require(ctx, boardID, callerID(c), access.Write); err != nil {
		return respondError(c, err, "Failed to update board")
	}
	board, err := h.repo.RenameBoard(ctx, boardID, title)
	if err != nil {
		return respondError(c, err, "Failed to update board")
	}
	h.effects.events.Publish(boardID, libraries.EventBoardUpdated, board)
	return c.JSON(fiber.Map{"board": board})
}

// DeleteBoard removes the board with everything on it. Owner only.
func (h *BoardHandler) DeleteBoard(c *fiber.Ctx) error {
	boardID, err := uuidParam(c, "boardId")
	if err != nil {
		return respondError(c, err, "Failed to delete board")
	}
	ctx := c.UserContext()
	if _, err := h.resolver.Require(ctx, boardID, callerID(c), access.Owner); err != nil {
		return respondError(c, err, "Failed to delete board")
	}

	board, err := h.repo.GetBoard(ctx, boardID)
	if err != nil {
		return respondError(c, err, "Failed to delete board")
	}
	keys, err := h.repo.DeleteBoard(ctx, boardID)
	if err != nil {
		return respondError(c, err, "Failed to delete board")
	}
	dropBlobs(ctx, h.blobs, keys)
	h.effects.events.Publish(boardID, libraries.EventBoardDeleted, fiber.Map{"board_id": boardID})
	if board.OrganizationID != nil {
		h.effects.auditor.Record(audit.Entry{
			OrganizationID: *board.OrganizationID,
			UserID:         callerID(c),
			Action:         "board_deleted",
			EntityType:     "board",
			EntityID:       &boardID,
			Details:        map[string]interface{}{"board_title": board.Title},
			IPAddress:      c.IP(),
		})
	}
	return c.JSON(fiber.Map{"message": "Board deleted successfully"})
}
