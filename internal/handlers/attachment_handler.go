package handlers

import (
	"fmt"
	"log"
	"path/filepath"

	"epitrello-backend/internal/access"
	"epitrello-backend/internal/libraries"
	"epitrello-backend/internal/models"
	"epitrello-backend/internal/repo"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AttachmentHandler struct {
	repo     repo.AttachmentRepoInterface
	cards    repo.CardRepoInterface
	resolver *access.Resolver
	blobs    libraries.ObjectStore
	effects  boardEffects
}

func NewAttachmentHandler(
	repo repo.AttachmentRepoInterface,
	cards repo.CardRepoInterface,
	boards repo.BoardRepoInterface,
	resolver *access.Resolver,
	blobs libraries.ObjectStore,
	events EventPublisher,
	auditor Auditor,
) *AttachmentHandler {
	return &AttachmentHandler{
		repo:     repo,
		cards:    cards,
		resolver: resolver,
		blobs:    blobs,
		effects:  boardEffects{boards: boards, events: events, auditor: auditor},
	}
}

func (h *AttachmentHandler) authorizeCard(c *fiber.Ctx, capability access.Capability) (cardID, boardID uuid.UUID, err error) {
	cardID, err = uuidParam(c, "cardId")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	ctx := c.UserContext()
	if boardID, err = h.cards.BoardIDForCard(ctx, cardID); err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	if _, err := h.resolver.Require(ctx, boardID, callerID(c), capability); err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return cardID, boardID, nil
}

// UploadAttachment stores the multipart "file" field and records it on the card.
func (h *AttachmentHandler) UploadAttachment(c *fiber.Ctx) error {
	cardID, boardID, err := h.authorizeCard(c, access.Write)
	if err != nil {
		return respondError(c, err, "Failed to upload attachment")
	}
	header, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "File is required")
	}
	file, err := header.Open()
	if err != nil {
		return respondError(c, err, "Failed to upload attachment")
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = fiber.MIMEOctetStream
	}
	attachment := &models.Attachment{
		ID:          uuid.New(),
		CardID:      cardID,
		UploadedBy:  callerID(c),
		Filename:    filepath.Base(header.Filename),
		ContentType: contentType,
		Size:        header.Size,
	}
	attachment.ObjectKey = libraries.AttachmentKey(cardID.String(), attachment.ID.String(), attachment.Filename)

	ctx := c.UserContext()
	if err := h.blobs.Put(ctx, attachment.ObjectKey, file, contentType); err != nil {
		return respondError(c, err, "Failed to upload attachment")
	}
	if err := h.repo.CreateAttachment(ctx, attachment); err != nil {
		dropBlobs(ctx, h.blobs, []string{attachment.ObjectKey})
		return respondError(c, err, "Failed to upload attachment")
	}

	h.effects.apply(c, boardID, change{
		event: libraries.EventCardUpdated,
		data:  fiber.Map{"card_id": cardID, "changed": "attachments"},
	})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"attachment": attachment})
}

func (h *AttachmentHandler) ListAttachments(c *fiber.Ctx) error {
	cardID, _, err := h.authorizeCard(c, access.Read)
	if err != nil {
		return respondError(c, err, "Failed to fetch attachments")
	}
	attachments, err := h.repo.ListAttachments(c.UserContext(), cardID)
	if err != nil {
		return respondError(c, err, "Failed to fetch attachments")
	}
	return c.JSON(fiber.Map{"attachments": attachments})
}

func (h *AttachmentHandler) DownloadAttachment(c *fiber.Ctx) error {
	attachmentID, err := uuidParam(c, "attachmentId")
	if err != nil {
		return respondError(c, err, "Failed to download attachment")
	}
	cardID, _, err := h.authorizeCard(c, access.Read)
	if err != nil {
		return respondError(c, err, "Failed to download attachment")
	}

	ctx := c.UserContext()
	attachment, err := h.repo.GetAttachment(ctx, cardID, attachmentID)
	if err != nil {
		return respondError(c, err, "Failed to download attachment")
	}
	body, err := h.blobs.Get(ctx, attachment.ObjectKey)
	if err != nil {
		log.Println(err, "Error reading attachment object")
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Attachment file not found"})
	}

	c.Set(fiber.HeaderContentType, attachment.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", attachment.Filename))
	return c.SendStream(body, int(attachment.Size))
}

func (h *AttachmentHandler) DeleteAttachment(c *fiber.Ctx) error {
	attachmentID, err := uuidParam(c, "attachmentId")
	if err != nil {
		return respondError(c, err, "Failed to delete attachment")
	}
	cardID, boardID, err := h.authorizeCard(c, access.Write)
	if err != nil {
		return respondError(c, err, "Failed to delete attachment")
	}

	ctx := c.UserContext()
	attachment, err := h.repo.DeleteAttachment(ctx, cardID, attachmentID)
	if err != nil {
		return respondError(c, err, "Failed to delete attachment")
	}
	dropBlobs(ctx, h.blobs, []string{attachment.ObjectKey})

	h.effects.apply(c, boardID, change{
		event: libraries.EventCardUpdated,
		data:  fiber.Map{"card_id": cardID, "changed": "attachments"},
	})
	return c.JSON(fiber.Map{"message": "Attachment deleted successfully"})
}
