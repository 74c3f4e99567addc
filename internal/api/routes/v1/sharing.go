package v1

import (
	"epitrello-backend/internal/handlers"
	"epitrello-backend/internal/repo"

	"github.com/gofiber/fiber/v2"
)

func registerSharing(r fiber.Router, d Deps) {
	sharingHandler := handlers.NewSharingHandler(
		repo.NewMemberRepository(d.DB),
		repo.NewInvitationRepository(d.DB),
		repo.NewUserRepository(d.DB),
		repo.NewBoardRepository(d.DB),
		d.resolver(),
		d.Hub,
		d.Auditor,
	)

	r.Get("/boards/:boardId/members", sharingHandler.ListMembers)
	r.Get("/boards/:boardId/role", sharingHandler.GetRole)
	r.Post("/boards/:boardId/invite", sharingHandler.Invite)
	r.Put("/boards/:boardId/members/:userId", sharingHandler.UpdateMemberRole)
	r.Delete("/boards/:boardId/members/:userId", sharingHandler.RemoveMember)

	r.Get("/invitations", sharingHandler.ListInvitations)
	r.Post("/invitations/:token/accept", sharingHandler.AcceptInvitation)
	r.Post("/invitations/:token/decline", sharingHandler.DeclineInvitation)
}
