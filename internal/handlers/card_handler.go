package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"epitrello-backend/internal/access"
	"epitrello-backend/internal/libraries"
	"epitrello-backend/internal/models"
	"epitrello-backend/internal/position"
	"epitrello-backend/internal/repo"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CardHandler struct {
	repo     repo.CardRepoInterface
	columns  repo.ColumnRepoInterface
	comments repo.CommentRepoInterface
	resolver *access.Resolver
	blobs    libraries.ObjectStore
	effects  boardEffects
}

func NewCardHandler(
	repo repo.CardRepoInterface,
	columns repo.ColumnRepoInterface,
	comments repo.CommentRepoInterface,
	boards repo.BoardRepoInterface,
	resolver *access.Resolver,
	blobs libraries.ObjectStore,
	events EventPublisher,
	auditor Auditor,
) *CardHandler {
	return &CardHandler{
		repo:     repo,
		columns:  columns,
		comments: comments,
		resolver: resolver,
		blobs:    blobs,
		effects:  boardEffects{boards: boards, events: events, auditor: auditor},
	}
}

// authorizeCard resolves the card's board and checks the caller's capability on it.
func (h *CardHandler) authorizeCard(c *fiber.Ctx, capability access.Capability) (cardID, boardID uuid.UUID, err error) {
	cardID, err = uuidParam(c, "cardId")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	ctx := c.UserContext()
	boardID, err = h.repo.BoardIDForCard(ctx, cardID)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	if _, err := h.resolver.Require(ctx, boardID, callerID(c), capability); err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return cardID, boardID, nil
}

func (h *CardHandler) logActivity(c *fiber.Ctx, cardID uuid.UUID, action string, details map[string]interface{}) {
	if err := h.comments.LogActivity(c.UserContext(), cardID, callerID(c), action, details); err != nil {
		log.Println(err, "Error logging card activity")
	}
}

func (h *CardHandler) CreateCard(c *fiber.Ctx) error {
	columnID, err := uuidParam(c, "columnId")
	if err != nil {
		return respondError(c, err, "Failed to create card")
	}
	var dto struct {
		Title        string     `json:"title"`
		Description  string     `json:"description"`
		DueDate      *time.Time `json:"due_date"`
		StartDate    *time.Time `json:"start_date"`
		TimeEstimate *int       `json:"time_estimate"`
		Priority     string     `json:"priority"`
		CoverColor   *string    `json:"cover_color"`
	}
	if err := c.BodyParser(&dto); err != nil {
		return badRequest(c, "Invalid request body")
	}
	title := strings.TrimSpace(dto.Title)
	if title == "" {
		return badRequest(c, "Card title is required")
	}
	priority := models.PriorityMedium
	if dto.Priority != "" {
		priority = models.Priority(dto.Priority)
		if !priority.Valid() {
			return badRequest(c, "Invalid priority")
		}
	}

	ctx := c.UserContext()
	column, err := h.columns.GetColumn(ctx, columnID)
	if err != nil {
		return respondError(c, err, "Failed to create card")
	}
	userID := callerID(c)
	if _, err := h.resolver.Require(ctx, column.BoardID, userID, access.Write); err != nil {
		return respondError(c, err, "Failed to create card")
	}

	card := &models.Card{
		Title:        title,
		Description:  dto.Description,
		ColumnID:     columnID,
		DueDate:      dto.DueDate,
		StartDate:    dto.StartDate,
		TimeEstimate: dto.TimeEstimate,
		Priority:     priority,
		CoverColor:   dto.CoverColor,
		CreatedBy:    &userID,
	}
	if err := h.repo.CreateCard(ctx, card); err != nil {
		return respondError(c, err, "Failed to create card")
	}

	h.logActivity(c, card.ID, "created", map[string]interface{}{"title": title})
	h.effects.apply(c, column.BoardID, change{
		event:      libraries.EventCardCreated,
		data:       card,
		action:     "card_created",
		entityType: "card",
		entityID:   &card.ID,
		details:    map[string]interface{}{"card_title": title},
	})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"card":    card,
		"message": "Card created successfully",
	})
}

func (h *CardHandler) GetCard(c *fiber.Ctx) error {
	cardID, _, err := h.authorizeCard(c, access.Read)
	if err != nil {
		return respondError(c, err, "Failed to fetch card")
	}
	card, err := h.repo.GetCardDetails(c.UserContext(), cardID)
	if err != nil {
		return respondError(c, err, "Failed to fetch card")
	}
	return c.JSON(fiber.Map{"card": card})
}

// cardUpdates turns a partial JSON body into column updates. Only keys present in the
// body are touched; null clears the nullable fields.
func cardUpdates(body []byte) (map[string]interface{}, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: invalid request body", models.ErrInvalidInput)
	}

	updates := map[string]interface{}{}
	decode := func(key string, dst interface{}) error {
		if err := json.Unmarshal(raw[key], dst); err != nil {
			return fmt.Errorf("%w: invalid %s", models.ErrInvalidInput, key)
		}
		return nil
	}

	for key := range raw {
		switch key {
		case "title":
			var title string
			if err := decode(key, &title); err != nil {
				return nil, err
			}
			if strings.TrimSpace(title) == "" {
				return nil, fmt.Errorf("%w: card title is required", models.ErrInvalidInput)
			}
			updates[key] = strings.TrimSpace(title)
		case "description":
			var description string
			if err := decode(key, &description); err != nil {
				return nil, err
			}
			updates[key] = description
		case "due_date", "start_date":
			var t *time.Time
			if err := decode(key, &t); err != nil {
				return nil, err
			}
			updates[key] = t
		case "time_estimate":
			var n *int
			if err := decode(key, &n); err != nil {
				return nil, err
			}
			updates[key] = n
		case "time_spent":
			var n int
			if err := decode(key, &n); err != nil {
				return nil, err
			}
			if n < 0 {
				return nil, fmt.Errorf("%w: time_spent cannot be negative", models.ErrInvalidInput)
			}
			updates[key] = n
		case "priority":
			var p models.Priority
			if err := decode(key, &p); err != nil {
				return nil, err
			}
			if !p.Valid() {
				return nil, fmt.Errorf("%w: invalid priority", models.ErrInvalidInput)
			}
			updates[key] = p
		case "cover_color":
			var color *string
			if err := decode(key, &color); err != nil {
				return nil, err
			}
			updates[key] = color
		case "completed":
			var done bool
			if err := decode(key, &done); err != nil {
				return nil, err
			}
			updates[key] = done
		}
	}
	return updates, nil
}

func (h *CardHandler) UpdateCard(c *fiber.Ctx) error {
	updates, err := cardUpdates(c.Body())
	if err != nil {
		return respondError(c, err, "Failed to update card")
	}
	cardID, boardID, err := h.authorizeCard(c, access.Write)
	if err != nil {
		return respondError(c, err, "Failed to update card")
	}

	card, err := h.repo.UpdateCard(c.UserContext(), cardID, updates)
	if err != nil {
		return respondError(c, err, "Failed to update card")
	}

	changes := make([]string, 0, len(updates))
	for key := range updates {
		changes = append(changes, key)
	}
	h.effects.apply(c, boardID, change{
		event:      libraries.EventCardUpdated,
		data:       card,
		action:     "card_updated",
		entityType: "card",
		entityID:   &cardID,
		details:    map[string]interface{}{"card_title": card.Title, "changes": changes},
	})
	return c.JSON(fiber.Map{
		"card":    card,
		"message": "Card updated successfully",
	})
}

func (h *CardHandler) DeleteCard(c *fiber.Ctx) error {
	cardID, boardID, err := h.authorizeCard(c, access.Write)
	if err != nil {
		return respondError(c, err, "Failed to delete card")
	}
	ctx := c.UserContext()
	card, err := h.repo.GetCard(ctx, cardID)
	if err != nil {
		return respondError(c, err, "Failed to delete card")
	}
	keys, err := h.repo.DeleteCard(ctx, cardID)
	if err != nil {
		return respondError(c, err, "Failed to delete card")
	}
	dropBlobs(ctx, h.blobs, keys)

	h.effects.apply(c, boardID, change{
		event:      libraries.EventCardDeleted,
		data:       fiber.Map{"card_id": cardID, "column_id": card.ColumnID},
		action:     "card_deleted",
		entityType: "card",
		entityID:   &cardID,
		details:    map[string]interface{}{"card_title": card.Title},
	})
	return c.JSON(fiber.Map{"message": "Card deleted successfully"})
}

// ReorderCard moves a card within its column or to another column of the same board
func (h *CardHandler) ReorderCard(c *fiber.Ctx) error {
	var dto struct {
		CardID         string `json:"cardId"`
		SourceColumnID string `json:"sourceColumnId"`
		DestColumnID   string `json:"destColumnId"`
		SourceIndex    *int   `json:"sourceIndex"`
		DestIndex      *int   `json:"destIndex"`
	}
	if err := c.BodyParser(&dto); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if dto.CardID == "" || dto.SourceColumnID == "" || dto.DestColumnID == "" || dto.SourceIndex == nil || dto.DestIndex == nil {
		return badRequest(c, "Missing required parameters")
	}
	var ids [3]uuid.UUID
	for i, raw := range []string{dto.CardID, dto.SourceColumnID, dto.DestColumnID} {
		id, err := uuid.Parse(raw)
		if err != nil {
			return badRequest(c, "Invalid id")
		}
		ids[i] = id
	}
	cardID, sourceColumnID, destColumnID := ids[0], ids[1], ids[2]

	ctx := c.UserContext()
	source, err := h.columns.GetColumn(ctx, sourceColumnID)
	if err != nil {
		return respondError(c, err, "Failed to reorder card")
	}
	dest := source
	if destColumnID != sourceColumnID {
		if dest, err = h.columns.GetColumn(ctx, destColumnID); err != nil {
			return respondError(c, err, "Failed to reorder card")
		}
		if dest.BoardID != source.BoardID {
			return badRequest(c, "Columns belong to different boards")
		}
	}
	if _, err := h.resolver.Require(ctx, source.BoardID, callerID(c), access.Write); err != nil {
		return respondError(c, err, "Failed to reorder card")
	}

	move := position.Move{
		ItemID:         cardID,
		SourceParentID: sourceColumnID,
		DestParentID:   destColumnID,
		SourcePos:      *dto.SourceIndex,
		DestPos:        *dto.DestIndex,
	}
	if err := h.repo.MoveCard(ctx, move); err != nil {
		return respondError(c, err, "Failed to reorder card")
	}

	if !move.IsNoop() {
		if sourceColumnID != destColumnID {
			h.logActivity(c, cardID, "moved", map[string]interface{}{
				"from_column": source.Title,
				"to_column":   dest.Title,
			})
		}
		h.effects.apply(c, source.BoardID, change{
			event: libraries.EventCardMoved,
			data: fiber.Map{
				"card_id":          cardID,
				"source_column_id": sourceColumnID,
				"dest_column_id":   destColumnID,
				"source_index":     move.SourcePos,
				"dest_index":       move.DestPos,
			},
		})
	}
	return c.JSON(fiber.Map{"message": "Card reordered successfully"})
}
