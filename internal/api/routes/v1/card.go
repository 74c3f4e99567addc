package v1

import (
	"epitrello-backend/internal/handlers"
	"epitrello-backend/internal/repo"

	"github.com/gofiber/fiber/v2"
)

func registerCard(r fiber.Router, d Deps) {
	cardHandler := handlers.NewCardHandler(
		repo.NewCardRepository(d.DB),
		repo.NewColumnRepository(d.DB),
		repo.NewCommentRepository(d.DB),
		repo.NewBoardRepository(d.DB),
		d.resolver(),
		d.Blobs,
		d.Hub,
		d.Auditor,
	)

	r.Post("/columns/:columnId/cards", cardHandler.CreateCard)
	// static path before /cards/:cardId
	r.Post("/cards/reorder", cardHandler.ReorderCard)
	r.Get("/cards/:cardId", cardHandler.GetCard)
	r.Put("/cards/:cardId", cardHandler.UpdateCard)
	r.Delete("/cards/:cardId", cardHandler.DeleteCard)

	r.Post("/cards/:cardId/labels", cardHandler.AddLabel)
	r.Delete("/cards/:cardId/labels/:labelId", cardHandler.RemoveLabel)
	r.Post("/cards/:cardId/members", cardHandler.AddMember)
	r.Delete("/cards/:cardId/members/:userId", cardHandler.RemoveMember)

	r.Post("/cards/:cardId/checklists", cardHandler.AddChecklist)
	r.Delete("/cards/:cardId/checklists/:checklistId", cardHandler.DeleteChecklist)
	r.Post("/cards/:cardId/checklists/:checklistId/items", cardHandler.AddChecklistItem)
	r.Put("/cards/:cardId/checklist-items/:itemId", cardHandler.UpdateChecklistItem)
	r.Delete("/cards/:cardId/checklist-items/:itemId", cardHandler.DeleteChecklistItem)

	r.Get("/cards/:cardId/comments", cardHandler.ListComments)
	r.Post("/cards/:cardId/comments", cardHandler.AddComment)
	r.Delete("/cards/:cardId/comments/:commentId", cardHandler.DeleteComment)
	r.Get("/cards/:cardId/activity", cardHandler.ListActivity)
}

func registerAttachment(r fiber.Router, d Deps) {
	attachmentHandler := handlers.NewAttachmentHandler(
		repo.NewAttachmentRepository(d.DB),
		repo.NewCardRepository(d.DB),
		repo.NewBoardRepository(d.DB),
		d.resolver(),
		d.Blobs,
		d.Hub,
		d.Auditor,
	)

	r.Post("/cards/:cardId/attachments", attachmentHandler.UploadAttachment)
	r.Get("/cards/:cardId/attachments", attachmentHandler.ListAttachments)
	r.Get("/cards/:cardId/attachments/:attachmentId", attachmentHandler.DownloadAttachment)
	r.Delete("/cards/:cardId/attachments/:attachmentId", attachmentHandler.DeleteAttachment)
}
