package v1

import (
	"epitrello-backend/internal/handlers"
	"epitrello-backend/internal/repo"

	"github.com/gofiber/fiber/v2"
)

func registerColumn(r fiber.Router, d Deps) {
	columnRepo := repo.NewColumnRepository(d.DB)
	boardRepo := repo.NewBoardRepository(d.DB)
	columnHandler := handlers.NewColumnHandler(columnRepo, boardRepo, d.resolver(), d.Blobs, d.Hub, d.Auditor)

	r.Post("/boards/:boardId/columns", columnHandler.CreateColumn)
	r.Post("/boards/:boardId/columns/reorder", columnHandler.ReorderColumns)
	r.Put("/columns/:columnId", columnHandler.RenameColumn)
	r.Delete("/columns/:columnId", columnHandler.DeleteColumn)
}
