package handlers

import (
	"errors"
	"fmt"
	"strings"

	"epitrello-backend/internal/audit"
	"epitrello-backend/internal/models"
	"epitrello-backend/internal/repo"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

type OrganizationHandler struct {
	repo        repo.OrganizationRepoInterface
	invitations repo.InvitationRepoInterface
	users       repo.UserRepoInterface
	auditLogs   repo.AuditLogRepoInterface
	auditor     Auditor
}

func NewOrganizationHandler(
	repo repo.OrganizationRepoInterface,
	invitations repo.InvitationRepoInterface,
	users repo.UserRepoInterface,
	auditLogs repo.AuditLogRepoInterface,
	auditor Auditor,
) *OrganizationHandler {
	return &OrganizationHandler{
		repo:        repo,
		invitations: invitations,
		users:       users,
		auditLogs:   auditLogs,
		auditor:     auditor,
	}
}

// slugify lowercases name and turns every run of characters outside [a-z0-9] into one dash.
func slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func (h *OrganizationHandler) record(c *fiber.Ctx, orgID uuid.UUID, action, entityType string, entityID *uuid.UUID, details map[string]interface{}) {
	h.auditor.Record(audit.Entry{
		OrganizationID: orgID,
		UserID:         callerID(c),
		Action:         action,
		EntityType:     entityType,
		EntityID:       entityID,
		Details:        details,
		IPAddress:      c.IP(),
	})
}

// requireRole loads the caller's role in the organization and checks it against allowed.
func (h *OrganizationHandler) requireRole(c *fiber.Ctx, allowed func(models.OrgRole) bool) (uuid.UUID, models.OrgRole, error) {
	orgID, err := uuidParam(c, "orgId")
	if err != nil {
		return uuid.Nil, "", err
	}
	role, err := h.repo.MemberRole(c.UserContext(), orgID, callerID(c))
	if err != nil {
		return uuid.Nil, "", err
	}
	if role == nil {
		return uuid.Nil, "", fmt.Errorf("%w: not a member of this organization", models.ErrForbidden)
	}
	if !allowed(*role) {
		return uuid.Nil, "", fmt.Errorf("%w: insufficient organization role", models.ErrForbidden)
	}
	return orgID, *role, nil
}

func (h *OrganizationHandler) CreateOrganization(c *fiber.Ctx) error {
	var dto struct {
		Name        string `json:"name"`
		DisplayName string `json:"displayName"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&dto); err != nil {
		return badRequest(c, "Invalid request body")
	}
	name := slugify(dto.Name)
	displayName := strings.TrimSpace(dto.DisplayName)
	if name == "" || displayName == "" {
		return badRequest(c, "Name and display name are required")
	}

	org := &models.Organization{
		Name:        name,
		DisplayName: displayName,
		Description: strings.TrimSpace(dto.Description),
		CreatedBy:   callerID(c),
	}
	if err := h.repo.CreateOrganization(c.UserContext(), org); err != nil {
		return respondError(c, err, "Failed to create organization")
	}
	h.record(c, org.ID, "organization_created", "organization", &org.ID, map[string]interface{}{
		"name":         org.Name,
		"display_name": org.DisplayName,
	})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"organization": org,
		"message":      "Organization created successfully",
	})
}

func (h *OrganizationHandler) ListOrganizations(c *fiber.Ctx) error {
	orgs, err := h.repo.ListOrganizationsForUser(c.UserContext(), callerID(c))
	if err != nil {
		return respondError(c, err, "Failed to fetch organizations")
	}
	return c.JSON(fiber.Map{"organizations": orgs})
}

func (h *OrganizationHandler) GetOrganization(c *fiber.Ctx) error {
	orgID, role, err := h.requireRole(c, models.OrgRole.IsMember)
	if err != nil {
		return respondError(c, err, "Failed to fetch organization")
	}
	org, err := h.repo.GetOrganization(c.UserContext(), orgID)
	if err != nil {
		return respondError(c, err, "Failed to fetch organization")
	}
	org.Role = role
	return c.JSON(fiber.Map{"organization": org})
}

func (h *OrganizationHandler) UpdateOrganization(c *fiber.Ctx) error {
	var dto struct {
		DisplayName string `json:"displayName"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&dto); err != nil {
		return badRequest(c, "Invalid request body")
	}
	displayName := strings.TrimSpace(dto.DisplayName)
	if displayName == "" {
		return badRequest(c, "Display name is required")
	}
	orgID, _, err := h.requireRole(c, models.OrgRole.IsAdmin)
	if err != nil {
		return respondError(c, err, "Failed to update organization")
	}

	org, err := h.repo.UpdateOrganization(c.UserContext(), orgID, displayName, strings.TrimSpace(dto.Description))
	if err != nil {
		return respondError(c, err, "Failed to update organization")
	}
	h.record(c, orgID, "organization_updated", "organization", &orgID, map[string]interface{}{
		"display_name": org.DisplayName,
	})
	return c.JSON(fiber.Map{"organization": org})
}

func (h *OrganizationHandler) DeleteOrganization(c *fiber.Ctx) error {
	orgID, _, err := h.requireRole(c, models.OrgRole.IsOwner)
	if err != nil {
		return respondError(c, err, "Failed to delete organization")
	}
	if err := h.repo.DeleteOrganization(c.UserContext(), orgID); err != nil {
		return respondError(c, err, "Failed to delete organization")
	}
	return c.JSON(fiber.Map{"message": "Organization deleted successfully"})
}

func (h *OrganizationHandler) ListMembers(c *fiber.Ctx) error {
	orgID, _, err := h.requireRole(c, models.OrgRole.IsMember)
	if err != nil {
		return respondError(c, err, "Failed to fetch members")
	}
	members, err := h.repo.ListMembers(c.UserContext(), orgID)
	if err != nil {
		return respondError(c, err, "Failed to fetch members")
	}
	return c.JSON(fiber.Map{"members": members})
}

// grantable checks a role an admin wants to hand out. Only owners may create admins and
// ownership is never granted.
func grantable(raw string, caller models.OrgRole) (models.OrgRole, error) {
	role := models.OrgRole(raw)
	if raw == "" {
		role = models.OrgRoleMember
	}
	if role != models.OrgRoleAdmin && role != models.OrgRoleMember {
		return "", fmt.Errorf("%w: role must be admin or member", models.ErrInvalidInput)
	}
	if role == models.OrgRoleAdmin && !caller.IsOwner() {
		return "", fmt.Errorf("%w: only the owner can grant admin", models.ErrForbidden)
	}
	return role, nil
}

// AddMember adds a registered user by email without an invitation.
func (h *OrganizationHandler) AddMember(c *fiber.Ctx) error {
	var dto struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := c.BodyParser(&dto); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if strings.TrimSpace(dto.Email) == "" {
		return badRequest(c, "Email is required")
	}
	orgID, callerRole, err := h.requireRole(c, models.OrgRole.IsAdmin)
	if err != nil {
		return respondError(c, err, "Failed to add member")
	}
	role, err := grantable(dto.Role, callerRole)
	if err != nil {
		return respondError(c, err, "Failed to add member")
	}

	ctx := c.UserContext()
	user, err := h.users.GetUserByEmail(ctx, dto.Email)
	if errors.Is(err, models.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	if err != nil {
		return respondError(c, err, "Failed to add member")
	}
	if err := h.repo.AddMember(ctx, orgID, user.ID, role); err != nil {
		return respondError(c, err, "Failed to add member")
	}

	h.record(c, orgID, "member_added", "user", &user.ID, map[string]interface{}{
		"email": user.Email,
		"role":  role,
	})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Member added successfully"})
}

func (h *OrganizationHandler) UpdateMemberRole(c *fiber.Ctx) error {
	userID, err := uuidParam(c, "userId")
	if err != nil {
		return respondError(c, err, "Failed to update member role")
	}
	var dto struct {
		Role string `json:"role"`
	}
	if err := c.BodyParser(&dto); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if dto.Role == "" {
		return badRequest(c, "Role is required")
	}
	orgID, callerRole, err := h.requireRole(c, models.OrgRole.IsAdmin)
	if err != nil {
		return respondError(c, err, "Failed to update member role")
	}
	role, err := grantable(dto.Role, callerRole)
	if err != nil {
		return respondError(c, err, "Failed to update member role")
	}

	previous, err := h.repo.UpdateMemberRole(c.UserContext(), orgID, userID, role)
	if err != nil {
		return respondError(c, err, "Failed to update member role")
	}
	h.record(c, orgID, "member_role_updated", "user", &userID, map[string]interface{}{
		"old_role": previous,
		"new_role": role,
	})
	return c.JSON(fiber.Map{"message": "Member role updated successfully"})
}

// RemoveMember lets admins remove others and any member leave. The owner stays.
func (h *OrganizationHandler) RemoveMember(c *fiber.Ctx) error {
	userID, err := uuidParam(c, "userId")
	if err != nil {
		return respondError(c, err, "Failed to remove member")
	}
	self := userID == callerID(c)
	orgID, _, err := h.requireRole(c, func(role models.OrgRole) bool {
		return self || role.IsAdmin()
	})
	if err != nil {
		return respondError(c, err, "Failed to remove member")
	}

	ctx := c.UserContext()
	target, err := h.repo.MemberRole(ctx, orgID, userID)
	if err != nil {
		return respondError(c, err, "Failed to remove member")
	}
	if target == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Member not found"})
	}
	if target.IsOwner() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Cannot remove the organization owner"})
	}
	if err := h.repo.RemoveMember(ctx, orgID, userID); err != nil {
		return respondError(c, err, "Failed to remove member")
	}

	h.record(c, orgID, "member_removed", "user", &userID, map[string]interface{}{"self": self})
	return c.JSON(fiber.Map{"message": "Member removed successfully"})
}

func (h *OrganizationHandler) Invite(c *fiber.Ctx) error {
	var dto struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := c.BodyParser(&dto); err != nil {
		return badRequest(c, "Invalid request body")
	}
	email := strings.TrimSpace(dto.Email)
	if email == "" {
		return badRequest(c, "Email is required")
	}
	orgID, callerRole, err := h.requireRole(c, models.OrgRole.IsAdmin)
	if err != nil {
		return respondError(c, err, "Failed to create invitation")
	}
	role, err := grantable(dto.Role, callerRole)
	if err != nil {
		return respondError(c, err, "Failed to create invitation")
	}

	ctx := c.UserContext()
	user, err := h.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		existing, err := h.repo.MemberRole(ctx, orgID, user.ID)
		if err != nil {
			return respondError(c, err, "Failed to create invitation")
		}
		if existing != nil {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "User is already a member"})
		}
	case !errors.Is(err, models.ErrNotFound):
		return respondError(c, err, "Failed to create invitation")
	}

	inv, err := h.invitations.CreateOrganizationInvitation(ctx, orgID, callerID(c), email, role)
	if err != nil {
		return respondError(c, err, "Failed to create invitation")
	}
	h.record(c, orgID, "member_invited", "invitation", &inv.ID, map[string]interface{}{
		"email": inv.InviteeEmail,
		"role":  role,
	})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":          "Invitation created",
		"invitation_token": inv.Token,
		"invitation":       inv,
	})
}

func (h *OrganizationHandler) ListInvitations(c *fiber.Ctx) error {
	orgID, _, err := h.requireRole(c, models.OrgRole.IsAdmin)
	if err != nil {
		return respondError(c, err, "Failed to fetch invitations")
	}
	invitations, err := h.invitations.PendingOrganizationInvitations(c.UserContext(), orgID)
	if err != nil {
		return respondError(c, err, "Failed to fetch invitations")
	}
	return c.JSON(fiber.Map{"invitations": invitations})
}

func (h *OrganizationHandler) AcceptInvitation(c *fiber.Ctx) error {
	ctx := c.UserContext()
	user, err := h.users.GetUserByID(ctx, callerID(c))
	if err != nil {
		return respondError(c, err, "Failed to accept invitation")
	}
	inv, err := h.invitations.AcceptOrganizationInvitation(ctx, c.Params("token"), user)
	if err != nil {
		return respondError(c, err, "Failed to accept invitation")
	}
	h.record(c, inv.OrganizationID, "member_added", "user", &user.ID, map[string]interface{}{
		"email": user.Email,
		"role":  inv.Role,
		"via":   "invitation",
	})
	return c.JSON(fiber.Map{
		"message":         "Invitation accepted",
		"organization_id": inv.OrganizationID,
	})
}

func (h *OrganizationHandler) ListBoards(c *fiber.Ctx) error {
	orgID, _, err := h.requireRole(c, models.OrgRole.IsMember)
	if err != nil {
		return respondError(c, err, "Failed to fetch boards")
	}
	boards, err := h.repo.ListBoards(c.UserContext(), orgID)
	if err != nil {
		return respondError(c, err, "Failed to fetch boards")
	}
	return c.JSON(fiber.Map{"boards": boards})
}

func (h *OrganizationHandler) ListAuditLogs(c *fiber.Ctx) error {
	orgID, _, err := h.requireRole(c, models.OrgRole.IsMember)
	if err != nil {
		return respondError(c, err, "Failed to fetch audit logs")
	}
	limit := c.QueryInt("limit", defaultAuditLimit)
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	if limit > maxAuditLimit {
		limit = maxAuditLimit
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	logs, total, err := h.auditLogs.ListAuditLogs(c.UserContext(), repo.AuditQuery{
		OrganizationID: orgID,
		ActionType:     c.Query("actionType"),
		Limit:          limit,
		Offset:         offset,
	})
	if err != nil {
		return respondError(c, err, "Failed to fetch audit logs")
	}
	return c.JSON(fiber.Map{
		"logs":   logs,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}
