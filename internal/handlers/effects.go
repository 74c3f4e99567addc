package handlers

import (
	"context"
	"log"

	"epitrello-backend/internal/audit"
	"epitrello-backend/internal/libraries"
	"epitrello-backend/internal/repo"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// boardEffects runs the follow-ups of a successful board change: bump the board in
// listings, notify websocket subscribers and, for organization boards, audit the action.
type boardEffects struct {
	boards  repo.BoardRepoInterface
	events  EventPublisher
	auditor Auditor
}

type change struct {
	event      libraries.WebSocketMessageType
	data       interface{}
	action     string
	entityType string
	entityID   *uuid.UUID
	details    map[string]interface{}
}

func (e boardEffects) apply(c *fiber.Ctx, boardID uuid.UUID, ch change) {
	ctx := c.UserContext()
	if err := e.boards.TouchBoard(ctx, boardID); err != nil {
		log.Println(err, "Error touching board")
	}
	if ch.event != "" {
		e.events.Publish(boardID, ch.event, ch.data)
	}
	if ch.action == "" {
		return
	}
	board, err := e.boards.GetBoard(ctx, boardID)
	if err != nil {
		log.Println(err, "Error loading board for audit")
		return
	}
	if board.OrganizationID == nil {
		return
	}
	e.auditor.Record(audit.Entry{
		OrganizationID: *board.OrganizationID,
		UserID:         callerID(c),
		Action:         ch.action,
		EntityType:     ch.entityType,
		EntityID:       ch.entityID,
		Details:        ch.details,
		IPAddress:      c.IP(),
	})
}

// dropBlobs removes attachment objects whose rows are already gone.
func dropBlobs(ctx context.Context, store libraries.ObjectStore, keys []string) {
	for _, key := range keys {
		if err := store.Delete(ctx, key); err != nil {
			log.Println(err, "Error deleting attachment object")
		}
	}
}
