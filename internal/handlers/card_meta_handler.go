package handlers

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"epitrello-backend/internal/access"
	"epitrello-backend/internal/libraries"
	"epitrello-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// touched publishes a card_updated event for a change to one of the card's collections.
func (h *CardHandler) touched(c *fiber.Ctx, cardID, boardID uuid.UUID, what string) {
	h.effects.apply(c, boardID, change{
		event: libraries.EventCardUpdated,
		data:  fiber.Map{"card_id": cardID, "changed": what},
	})
}

func (h *CardHandler) AddLabel(c *fiber.Ctx) error {
	var dto struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}
	if err := c.BodyParser(&dto); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if strings.TrimSpace(dto.Color) == "" {
		return badRequest(c, "Label color is required")
	}
	cardID, boardID, err := h.authorizeCard(c, access.Write)
	if err != nil {
		return respondError(c, err, "Failed to add label")
	}

	label := &models.Label{CardID: cardID, Name: strings.TrimSpace(dto.Name), Color: dto.Color}
	if err := h.repo.AddLabel(c.UserContext(), label); err != nil {
		return respondError(c, err, "Failed to add label")
	}
	h.touched(c, cardID, boardID, "labels")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"label": label})
}

func (h *CardHandler) RemoveLabel(c *fiber.Ctx) error {
	labelID, err := uuidParam(c, "labelId")
	if err != nil {
		return respondError(c, err, "Failed to remove label")
	}
	cardID, boardID, err := h.authorizeCard(c, access.Write)
	if err != nil {
		return respondError(c, err, "Failed to remove label")
	}
	if err := h.repo.RemoveLabel(c.UserContext(), cardID, labelID); err != nil {
		return respondError(c, err, "Failed to remove label")
	}
	h.touched(c, cardID, boardID, "labels")
	return c.JSON(fiber.Map{"message": "Label removed successfully"})
}

func (h *CardHandler) AddMember(c *fiber.Ctx) error {
	var dto struct {
		UserID string `json:"userId"`
	}
	if err := c.BodyParser(&dto); err != nil {
		return badRequest(c, "Invalid request body")
	}
	userID, err := uuid.Parse(dto.UserID)
	if err != nil {
		return badRequest(c, "User ID is required")
	}
	cardID, boardID, err := h.authorizeCard(c, access.Write)
	if err != nil {
		return respondError(c, err, "Failed to add card member")
	}

	ctx := c.UserContext()
	ok, err := h.resolver.CanRead(ctx, boardID, userID)
	if err != nil {
		return respondError(c, err, "Failed to add card member")
	}
	if !ok {
		return badRequest(c, "User does not have access to this board")
	}
	if err := h.repo.AddMember(ctx, cardID, userID); err != nil {
		return respondError(c, err, "Failed to add card member")
	}
	h.touched(c, cardID, boardID, "members")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Member added to card"})
}

func (h *CardHandler) RemoveMember(c *fiber.Ctx) error {
	userID, err := uuidParam(c, "userId")
	if err != nil {
		return respondError(c, err, "Failed to remove card member")
	}
	cardID, boardID, err := h.authorizeCard(c, access.Write)
	if err != nil {
		return respondError(c, err, "Failed to remove card member")
	}
	if err := h.repo.RemoveMember(c.UserContext(), cardID, userID); err != nil {
		return respondError(c, err, "Failed to remove card member")
	}
	h.touched(c, cardID, boardID, "members")
	return c.JSON(fiber.Map{"message": "Member removed from card"})
}

func (h *CardHandler) AddChecklist(c *fiber.Ctx) error {
	var dto struct {
		Title string `json:"title"`
	}
	if err := c.BodyParser(&dto); err != nil {
		return badRequest(c, "Invalid request body")
	}
	title := strings.TrimSpace(dto.Title)
	if title == "" {
		return badRequest(c, "Checklist title is required")
	}
	cardID, boardID, err := h.authorizeCard(c, access.Write)
	if err != nil {
		return respondError(c, err, "Failed to create checklist")
	}

	checklist, err := h.repo.AddChecklist(c.UserContext(), cardID, title)
	if err != nil {
		return respondError(c, err, "Failed to create checklist")
	}
	h.logActivity(c, cardID, "checklist_added", map[string]interface{}{"title": title})
	h.touched(c, cardID, boardID, "checklists")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"checklist": checklist})
}

func (h *CardHandler) DeleteChecklist(c *fiber.Ctx) error {
	checklistID, err := uuidParam(c, "checklistId")
	if err != nil {
		return respondError(c, err, "Failed to delete checklist")
	}
	cardID, boardID, err := h.authorizeCard(c, access.Write)
	if err != nil {
		return respondError(c, err, "Failed to delete checklist")
	}
	if err := h.repo.DeleteChecklist(c.UserContext(), cardID, checklistID); err != nil {
		return respondError(c, err, "Failed to delete checklist")
	}
	h.touched(c, cardID, boardID, "checklists")
	return c.JSON(fiber.Map{"message": "Checklist deleted successfully"})
}

func (h *CardHandler) AddChecklistItem(c *fiber.Ctx) error {
	checklistID, err := uuidParam(c, "checklistId")
	if err != nil {
		return respondError(c, err, "Failed to add checklist item")
	}
	var dto struct {
		Text       string     `json:"text"`
		AssignedTo string     `json:"assigned_to"`
		DueDate    *time.Time `json:"due_date"`
	}
	if err := c.BodyParser(&dto); err != nil {
		return badRequest(c, "Invalid request body")
	}
	text := strings.TrimSpace(dto.Text)
	if text == "" {
		return badRequest(c, "Item text is required")
	}
	assignee, err := parseUUID(dto.AssignedTo, "assigned_to")
	if err != nil {
		return respondError(c, err, "Failed to add checklist item")
	}
	cardID, boardID, err := h.authorizeCard(c, access.Write)
	if err != nil {
		return respondError(c, err, "Failed to add checklist item")
	}

	item := &models.ChecklistItem{
		ChecklistID: checklistID,
		Text:        text,
		AssignedTo:  assignee,
		DueDate:     dto.DueDate,
	}
	if err := h.repo.AddChecklistItem(c.UserContext(), cardID, item); err != nil {
		return respondError(c, err, "Failed to add checklist item")
	}
	h.touched(c, cardID, boardID, "checklists")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"item": item})
}

func checklistItemUpdates(body []byte) (map[string]interface{}, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: invalid request body", models.ErrInvalidInput)
	}

	updates := map[string]interface{}{}
	for key, value := range raw {
		switch key {
		case "text":
			var text string
			if err := json.Unmarshal(value, &text); err != nil || strings.TrimSpace(text) == "" {
				return nil, fmt.Errorf("%w: item text is required", models.ErrInvalidInput)
			}
			updates[key] = strings.TrimSpace(text)
		case "completed":
			var done bool
			if err := json.Unmarshal(value, &done); err != nil {
				return nil, fmt.Errorf("%w: invalid completed", models.ErrInvalidInput)
			}
			updates[key] = done
		case "assigned_to":
			var id *string
			if err := json.Unmarshal(value, &id); err != nil {
				return nil, fmt.Errorf("%w: invalid assigned_to", models.ErrInvalidInput)
			}
			var assignee *uuid.UUID
			if id != nil {
				parsed, err := parseUUID(*id, key)
				if err != nil {
					return nil, err
				}
				assignee = parsed
			}
			updates[key] = assignee
		case "due_date":
			var due *time.Time
			if err := json.Unmarshal(value, &due); err != nil {
				return nil, fmt.Errorf("%w: invalid due_date", models.ErrInvalidInput)
			}
			updates[key] = due
		}
	}
	return updates, nil
}

func (h *CardHandler) UpdateChecklistItem(c *fiber.Ctx) error {
	itemID, err := uuidParam(c, "itemId")
	if err != nil {
		return respondError(c, err, "Failed to update checklist item")
	}
	updates, err := checklistItemUpdates(c.Body())
	if err != nil {
		return respondError(c, err, "Failed to update checklist item")
	}
	cardID, boardID, err := h.authorizeCard(c, access.Write)
	if err != nil {
		return respondError(c, err, "Failed to update checklist item")
	}

	item, err := h.repo.UpdateChecklistItem(c.UserContext(), cardID, itemID, updates)
	if err != nil {
		return respondError(c, err, "Failed to update checklist item")
	}
	h.touched(c, cardID, boardID, "checklists")
	return c.JSON(fiber.Map{"item": item})
}

func (h *CardHandler) DeleteChecklistItem(c *fiber.Ctx) error {
	itemID, err := uuidParam(c, "itemId")
	if err != nil {
		return respondError(c, err, "Failed to delete checklist item")
	}
	cardID, boardID, err := h.authorizeCard(c, access.Write)
	if err != nil {
		return respondError(c, err, "Failed to delete checklist item")
	}
	if err := h.repo.DeleteChecklistItem(c.UserContext(), cardID, itemID); err != nil {
		return respondError(c, err, "Failed to delete checklist item")
	}
	h.touched(c, cardID, boardID, "checklists")
	return c.JSON(fiber.Map{"message": "Checklist item deleted successfully"})
}

func (h *CardHandler) ListComments(c *fiber.Ctx) error {
	cardID, _, err := h.authorizeCard(c, access.Read)
	if err != nil {
		return respondError(c, err, "Failed to fetch comments")
	}
	comments, err := h.comments.ListComments(c.UserContext(), cardID)
	if err != nil {
		return respondError(c, err, "Failed to fetch comments")
	}
	return c.JSON(fiber.Map{"comments": comments})
}

// AddComment is open to readers as well as writers.
func (h *CardHandler) AddComment(c *fiber.Ctx) error {
	var dto struct {
		Comment string `json:"comment"`
	}
	if err := c.BodyParser(&dto); err != nil {
		return badRequest(c, "Invalid request body")
	}
	body := strings.TrimSpace(dto.Comment)
	if body == "" {
		return badRequest(c, "Comment is required")
	}
	cardID, boardID, err := h.authorizeCard(c, access.Read)
	if err != nil {
		return respondError(c, err, "Failed to add comment")
	}

	comment := &models.Comment{CardID: cardID, UserID: callerID(c), Body: body}
	if err := h.comments.AddComment(c.UserContext(), comment); err != nil {
		return respondError(c, err, "Failed to add comment")
	}
	h.logActivity(c, cardID, "commented", map[string]interface{}{"comment": body})
	h.touched(c, cardID, boardID, "comments")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"comment": comment})
}

// DeleteComment lets the author remove their own comment; anyone else needs admin access.
func (h *CardHandler) DeleteComment(c *fiber.Ctx) error {
	commentID, err := uuidParam(c, "commentId")
	if err != nil {
		return respondError(c, err, "Failed to delete comment")
	}
	cardID, boardID, err := h.authorizeCard(c, access.Read)
	if err != nil {
		return respondError(c, err, "Failed to delete comment")
	}

	ctx := c.UserContext()
	comment, err := h.comments.GetComment(ctx, commentID)
	if err != nil {
		return respondError(c, err, "Failed to delete comment")
	}
	if comment.CardID != cardID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Comment not found"})
	}
	if comment.UserID != callerID(c) {
		if _, err := h.resolver.Require(ctx, boardID, callerID(c), access.Admin); err != nil {
			return respondError(c, err, "Failed to delete comment")
		}
	}
	if err := h.comments.DeleteComment(ctx, cardID, commentID); err != nil {
		return respondError(c, err, "Failed to delete comment")
	}
	h.touched(c, cardID, boardID, "comments")
	return c.JSON(fiber.Map{"message": "Comment deleted successfully"})
}

func (h *CardHandler) ListActivity(c *fiber.Ctx) error {
	cardID, _, err := h.authorizeCard(c, access.Read)
	if err != nil {
		return respondError(c, err, "Failed to fetch activity")
	}
	activity, err := h.comments.ListActivity(c.UserContext(), cardID)
	if err != nil {
		return respondError(c, err, "Failed to fetch activity")
	}
	return c.JSON(fiber.Map{"activity": activity})
}
