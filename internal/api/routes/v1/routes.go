package v1

import (
	"epitrello-backend/internal/access"
	"epitrello-backend/internal/audit"
	"epitrello-backend/internal/auth"
	"epitrello-backend/internal/libraries"
	"epitrello-backend/internal/repo"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Deps are the long-lived services the route handlers share.
type Deps struct {
	DB      *gorm.DB
	Tokens  *auth.Tokens
	Hub     *libraries.Hub
	Blobs   libraries.ObjectStore
	Auditor *audit.Recorder
}

func (d Deps) resolver() *access.Resolver {
	return access.NewResolver(repo.NewAccessRepository(d.DB))
}

func RegisterRoutes(r fiber.Router, d Deps) {
	// public
	registerHealth(r, d)
	registerAuth(r, d)
	registerRealtime(r, d)

	protected := r.Group("", auth.Middleware(d.Tokens))
	registerProfile(protected, d)
	registerBoard(protected, d)
	registerColumn(protected, d)
	registerCard(protected, d)
	registerAttachment(protected, d)
	registerSharing(protected, d)
	registerOrganization(protected, d)
}
