package v1

import (
	"epitrello-backend/internal/handlers"
	"epitrello-backend/internal/repo"

	"github.com/gofiber/fiber/v2"
)

func registerOrganization(r fiber.Router, d Deps) {
	orgHandler := handlers.NewOrganizationHandler(
		repo.NewOrganizationRepository(d.DB),
		repo.NewInvitationRepository(d.DB),
		repo.NewUserRepository(d.DB),
		repo.NewAuditLogRepository(d.DB),
		d.Auditor,
	)

	r.Post("/organizations", orgHandler.CreateOrganization)
	r.Get("/organizations", orgHandler.ListOrganizations)
	r.Post("/organizations/invitations/:token/accept", orgHandler.AcceptInvitation)
	r.Get("/organizations/:orgId", orgHandler.GetOrganization)
	r.Put("/organizations/:orgId", orgHandler.UpdateOrganization)
	r.Delete("/organizations/:orgId", orgHandler.DeleteOrganization)

	r.Get("/organizations/:orgId/members", orgHandler.ListMembers)
	r.Post("/organizations/:orgId/members", orgHandler.AddMember)
	r.Put("/organizations/:orgId/members/:userId", orgHandler.UpdateMemberRole)
	r.Delete("/organizations/:orgId/members/:userId", orgHandler.RemoveMember)

	r.Post("/organizations/:orgId/invite", orgHandler.Invite)
	r.Get("/organizations/:orgId/invitations", orgHandler.ListInvitations)
	r.Get("/organizations/:orgId/boards", orgHandler.ListBoards)
	r.Get("/organizations/:orgId/audit-logs", orgHandler.ListAuditLogs)
}
