package v1

import (
	"epitrello-backend/internal/handlers"
	"epitrello-backend/internal/repo"

	"github.com/gofiber/fiber/v2"
)

func registerBoard(r fiber.Router, d Deps) {
	// Initialize handler
	boardRepo := repo.NewBoardRepository(d.DB)
	orgRepo := repo.NewOrganizationRepository(d.DB)
	boardHandler := handlers.NewBoardHandler(boardRepo, orgRepo, d.resolver(), d.Blobs, d.Hub, d.Auditor)

	// Register routes
	r.Get("/boards", boardHandler.GetAllBoards)
	r.Post("/boards", boardHandler.CreateBoard)
	r.Get("/boards/:boardId", boardHandler.GetBoardByID)
	r.Put("/boards/:boardId", boardHandler.RenameBoard)
	r.Delete("/boards/:boardId", boardHandler.DeleteBoard)
}
