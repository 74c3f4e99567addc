package handlers

import (
	"strings"

	"epitrello-backend/internal/access"
	"epitrello-backend/internal/libraries"
	"epitrello-backend/internal/repo"

	"github.com/gofiber/fiber/v2"
)

type ColumnHandler struct {
	repo     repo.ColumnRepoInterface
	resolver *access.Resolver
	blobs    libraries.ObjectStore
	effects  boardEffects
}

func NewColumnHandler(
	repo repo.ColumnRepoInterface,
	boards repo.BoardRepoInterface,
	resolver *access.Resolver,
	blobs libraries.ObjectStore,
	events EventPublisher,
	auditor Auditor,
) *ColumnHandler {
	return &ColumnHandler{
		repo:     repo,
		resolver: resolver,
		blobs:    blobs,
		effects:  boardEffects{boards: boards, events: events, auditor: auditor},
	}
}

func (h *ColumnHandler) CreateColumn(c *fiber.Ctx) error {
	boardID, err := uuidParam(c, "boardId")
	if err != nil {
		return respondError(c, err, "Failed to create column")
	}
	var dto struct {
		Title string `json:"title"`
	}
	if err := c.BodyParser(&dto); err != nil {
		return badRequest(c, "Invalid request body")
	}
	title := strings.TrimSpace(dto.Title)
	if title == "" {
		return badRequest(c, "Column title is required")
	}

	ctx := c.UserContext()
	if _, err := h.resolver.Require(ctx, boardID, callerID(c), access.Write); err != nil {
		return respondError(c, err, "Failed to create column")
	}
	column, err := h.repo.CreateColumn(ctx, boardID, title)
	if err != nil {
		return respondError(c, err, "Failed to create column")
	}

	h.effects.apply(c, boardID, change{
		event:      libraries.EventColumnCreated,
		data:       column,
		action:     "column_created",
		entityType: "column",
		entityID:   &column.ID,
		details:    map[string]interface{}{"column_title": column.Title},
	})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"column":  column,
		"message": "Column created successfully",
	})
}

func (h *ColumnHandler) RenameColumn(c *fiber.Ctx) error {
	columnID, err := uuidParam(c, "columnId")
	if err != nil {
		return respondError(c, err, "Failed to update column")
	}
	var dto struct {
		Title string `json:"title"`
	}
	if err := c.BodyParser(&dto); err != nil {
		return badRequest(c, "Invalid request body")
	}
	title := strings.TrimSpace(dto.Title)
	if title == "" {
		return badRequest(c, "Column title is required")
	}

	ctx := c.UserContext()
	column, err := h.repo.GetColumn(ctx, columnID)
	if err != nil {
		return respondError(c, err, "Failed to update column")
	}
	if _, err := h.resolver.Require(ctx, column.BoardID, callerID(c), access.Write); err != nil {
		return respondError(c, err, "Failed to update column")
	}
	column, err = h.repo.RenameColumn(ctx, columnID, title)
	if err != nil {
		return respondError(c, err, "Failed to update column")
	}

	h.effects.apply(c, column.BoardID, change{event: libraries.EventColumnUpdated, data: column})
	return c.JSON(fiber.Map{"column": column})
}

// DeleteColumn removes the column with its cards and closes the gap it leaves
func (h *ColumnHandler) DeleteColumn(c *fiber.Ctx) error {
	columnID, err := uuidParam(c, "columnId")
	if err != nil {
		return respondError(c, err, "Failed to delete column")
	}
	ctx := c.UserContext()
	column, err := h.repo.GetColumn(ctx, columnID)
	if err != nil {
		return respondError(c, err, "Failed to delete column")
	}
	if _, err := h.resolver.Require(ctx, column.BoardID, callerID(c), access.Write); err != nil {
		return respondError(c, err, "Failed to delete column")
	}

	keys, err := h.repo.DeleteColumn(ctx, columnID)
	if err != nil {
		return respondError(c, err, "Failed to delete column")
	}
	dropBlobs(ctx, h.blobs, keys)

	h.effects.apply(c, column.BoardID, change{
		event:      libraries.EventColumnDeleted,
		data:       fiber.Map{"column_id": columnID},
		action:     "column_deleted",
		entityType: "column",
		entityID:   &columnID,
		details:    map[string]interface{}{"column_title": column.Title},
	})
	return c.JSON(fiber.Map{"message": "Column deleted successfully"})
}

func (h *ColumnHandler) ReorderColumns(c *fiber.Ctx) error {
	boardID, err := uuidParam(c, "boardId")
	if err != nil {
		return respondError(c, err, "Failed to reorder columns")
	}
	var dto struct {
		ColumnID    string `json:"columnId"`
		SourceIndex *int   `json:"sourceIndex"`
		DestIndex   *int   `json:"destIndex"`
	}
	if err := c.BodyParser(&dto); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if dto.ColumnID == "" || dto.SourceIndex == nil || dto.DestIndex == nil {
		return badRequest(c, "Missing required parameters")
	}
	columnID, err := parseUUID(dto.ColumnID, "columnId")
	if err != nil {
		return respondError(c, err, "Failed to reorder columns")
	}

	ctx := c.UserContext()
	if _, err := h.resolver.Require(ctx, boardID, callerID(c), access.Write); err != nil {
		return respondError(c, err, "Failed to reorder columns")
	}
	column, err := h.repo.GetColumn(ctx, *columnID)
	if err != nil {
		return respondError(c, err, "Failed to reorder columns")
	}
	if column.BoardID != boardID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Column not found on this board"})
	}

	if err := h.repo.MoveColumn(ctx, boardID, *columnID, *dto.SourceIndex, *dto.DestIndex); err != nil {
		return respondError(c, err, "Failed to reorder columns")
	}
	if *dto.SourceIndex != *dto.DestIndex {
		h.effects.apply(c, boardID, change{
			event: libraries.EventColumnMoved,
			data: fiber.Map{
				"column_id":    columnID,
				"source_index": *dto.SourceIndex,
				"dest_index":   *dto.DestIndex,
			},
		})
	}
	return c.JSON(fiber.Map{"message": "Columns reordered successfully"})
}
