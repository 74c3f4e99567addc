package handlers

import (
	"errors"
	"strings"

	"epitrello-backend/internal/access"
	"epitrello-backend/internal/libraries"
	"epitrello-backend/internal/models"
	"epitrello-backend/internal/repo"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// SharingHandler serves board membership and board invitations.
type SharingHandler struct {
	members     repo.MemberRepoInterface
	invitations repo.InvitationRepoInterface
	users       repo.UserRepoInterface
	resolver    *access.Resolver
	effects     boardEffects
}

func NewSharingHandler(
	members repo.MemberRepoInterface,
	invitations repo.InvitationRepoInterface,
	users repo.UserRepoInterface,
	boards repo.BoardRepoInterface,
	resolver *access.Resolver,
	events EventPublisher,
	auditor Auditor,
) *SharingHandler {
	return &SharingHandler{
		members:     members,
		invitations: invitations,
		users:       users,
		resolver:    resolver,
		effects:     boardEffects{boards: boards, events: events, auditor: auditor},
	}
}

func (h *SharingHandler) ListMembers(c *fiber.Ctx) error {
	boardID, err := uuidParam(c, "boardId")
	if err != nil {
		return respondError(c, err, "Failed to fetch board members")
	}
	ctx := c.UserContext()
	if _, err := h.resolver.Require(ctx, boardID, callerID(c), access.Read); err != nil {
		return respondError(c, err, "Failed to fetch board members")
	}
	members, err := h.resolver.Members(ctx, boardID)
	if err != nil {
		return respondError(c, err, "Failed to fetch board members")
	}
	return c.JSON(fiber.Map{"members": members})
}

// GetRole reports the caller's effective role on the board.
func (h *SharingHandler) GetRole(c *fiber.Ctx) error {
	boardID, err := uuidParam(c, "boardId")
	if err != nil {
		return respondError(c, err, "Failed to fetch role")
	}
	role, err := h.resolver.EffectiveRole(c.UserContext(), boardID, callerID(c))
	if err != nil {
		return respondError(c, err, "Failed to fetch role")
	}
	if role == nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "No access to this board"})
	}
	return c.JSON(fiber.Map{"role": *role})
}

func parseAssignableRole(raw string) (models.BoardRole, bool) {
	if raw == "" {
		return models.BoardRoleRead, true
	}
	role := models.BoardRole(raw)
	return role, role.Assignable()
}

// Invite adds a registered user to the board right away. Any other address gets a
// pending invitation whose token is returned to the caller.
func (h *SharingHandler) Invite(c *fiber.Ctx) error {
	boardID, err := uuidParam(c, "boardId")
	if err != nil {
		return respondError(c, err, "Failed to invite user")
	}
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
	role, ok := parseAssignableRole(dto.Role)
	if !ok {
		return badRequest(c, "Invalid role. Must be admin, write, or read")
	}

	ctx := c.UserContext()
	inviterID := callerID(c)
	if _, err := h.resolver.Require(ctx, boardID, inviterID, access.Admin); err != nil {
		return respondError(c, err, "Failed to invite user")
	}

	user, err := h.users.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, models.ErrNotFound):
		inv, err := h.invitations.CreateBoardInvitation(ctx, boardID, inviterID, email, role)
		if err != nil {
			return respondError(c, err, "Failed to invite user")
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":          "Invitation created",
			"invitation_token": inv.Token,
			"invitation":       inv,
		})
	case err != nil:
		return respondError(c, err, "Failed to invite user")
	}

	existing, err := h.resolver.EffectiveRole(ctx, boardID, user.ID)
	if err != nil {
		return respondError(c, err, "Failed to invite user")
	}
	if existing != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "User already has access to this board"})
	}
	if err := h.members.AddBoardMember(ctx, boardID, user.ID, role); err != nil {
		return respondError(c, err, "Failed to invite user")
	}

	h.effects.apply(c, boardID, change{
		event:      libraries.EventMemberChanged,
		data:       fiber.Map{"user_id": user.ID, "role": role},
		action:     "member_added",
		entityType: "user",
		entityID:   &user.ID,
		details:    map[string]interface{}{"email": user.Email, "role": role},
	})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":      "User added to board",
		"member_added": true,
	})
}

func (h *SharingHandler) caller(c *fiber.Ctx) (*models.User, error) {
	return h.users.GetUserByID(c.UserContext(), callerID(c))
}

// ListInvitations returns the caller's pending board invitations.
func (h *SharingHandler) ListInvitations(c *fiber.Ctx) error {
	user, err := h.caller(c)
	if err != nil {
		return respondError(c, err, "Failed to fetch invitations")
	}
	invitations, err := h.invitations.PendingBoardInvitations(c.UserContext(), user.Email)
	if err != nil {
		return respondError(c, err, "Failed to fetch invitations")
	}
	return c.JSON(fiber.Map{"invitations": invitations})
}

func (h *SharingHandler) AcceptInvitation(c *fiber.Ctx) error {
	user, err := h.caller(c)
	if err != nil {
		return respondError(c, err, "Failed to accept invitation")
	}
	inv, err := h.invitations.AcceptBoardInvitation(c.UserContext(), c.Params("token"), user)
	if err != nil {
		return respondError(c, err, "Failed to accept invitation")
	}
	h.effects.apply(c, inv.BoardID, change{
		event:      libraries.EventMemberChanged,
		data:       fiber.Map{"user_id": user.ID, "role": inv.Role},
		action:     "member_added",
		entityType: "user",
		entityID:   &user.ID,
		details:    map[string]interface{}{"email": user.Email, "role": inv.Role, "via": "invitation"},
	})
	return c.JSON(fiber.Map{
		"message":  "Invitation accepted",
		"board_id": inv.BoardID,
	})
}

func (h *SharingHandler) DeclineInvitation(c *fiber.Ctx) error {
	user, err := h.caller(c)
	if err != nil {
		return respondError(c, err, "Failed to decline invitation")
	}
	if err := h.invitations.DeclineBoardInvitation(c.UserContext(), c.Params("token"), user); err != nil {
		return respondError(c, err, "Failed to decline invitation")
	}
	return c.JSON(fiber.Map{"message": "Invitation declined"})
}

func memberParams(c *fiber.Ctx) (boardID, userID uuid.UUID, err error) {
	if boardID, err = uuidParam(c, "boardId"); err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	if userID, err = uuidParam(c, "userId"); err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return boardID, userID, nil
}

// UpdateMemberRole changes a direct member's role. Owner only.
func (h *SharingHandler) UpdateMemberRole(c *fiber.Ctx) error {
	boardID, userID, err := memberParams(c)
	if err != nil {
		return respondError(c, err, "Failed to update member role")
	}
	var dto struct {
		Role string `json:"role"`
	}
	if err := c.BodyParser(&dto); err != nil {
		return badRequest(c, "Invalid request body")
	}
	role := models.BoardRole(dto.Role)
	if !role.Assignable() {
		return badRequest(c, "Invalid role. Must be admin, write, or read")
	}

	ctx := c.UserContext()
	if _, err := h.resolver.Require(ctx, boardID, callerID(c), access.Owner); err != nil {
		return respondError(c, err, "Failed to update member role")
	}
	previous, err := h.members.UpdateBoardMemberRole(ctx, boardID, userID, role)
	if err != nil {
		return respondError(c, err, "Failed to update member role")
	}

	h.effects.apply(c, boardID, change{
		event:      libraries.EventMemberChanged,
		data:       fiber.Map{"user_id": userID, "role": role},
		action:     "member_role_updated",
		entityType: "user",
		entityID:   &userID,
		details:    map[string]interface{}{"old_role": previous, "new_role": role},
	})
	return c.JSON(fiber.Map{"message": "Member role updated successfully"})
}

func (h *SharingHandler) RemoveMember(c *fiber.Ctx) error {
	boardID, userID, err := memberParams(c)
	if err != nil {
		return respondError(c, err, "Failed to remove member")
	}
	ctx := c.UserContext()
	if _, err := h.resolver.Require(ctx, boardID, callerID(c), access.Admin); err != nil {
		return respondError(c, err, "Failed to remove member")
	}
	if err := h.members.RemoveBoardMember(ctx, boardID, userID); err != nil {
		return respondError(c, err, "Failed to remove member")
	}

	h.effects.apply(c, boardID, change{
		event:      libraries.EventMemberChanged,
		data:       fiber.Map{"user_id": userID, "removed": true},
		action:     "member_removed",
		entityType: "user",
		entityID:   &userID,
	})
	return c.JSON(fiber.Map{"message": "Member removed successfully"})
}
