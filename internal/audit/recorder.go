// Package audit writes organization audit entries in the background. Recording is best
// effort: a full queue or a failed insert is logged and the request carries on.
package audit

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"epitrello-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const writeTimeout = 5 * time.Second

type Store interface {
	CreateAuditLog(ctx context.Context, entry *models.AuditLog) error
}

// Entry describes one audited action.
type Entry struct {
	OrganizationID uuid.UUID
	UserID         uuid.UUID
	Action         string
	EntityType     string
	EntityID       *uuid.UUID
	Details        map[string]interface{}
	IPAddress      string
}

type Recorder struct {
	store Store
	queue chan *models.AuditLog
	done  chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewRecorder(store Store, buffer int) *Recorder {
	if buffer <= 0 {
		buffer = 1
	}
	r := &Recorder{
		store: store,
		queue: make(chan *models.AuditLog, buffer),
		done:  make(chan struct{}),
	}
	go r.run()
	return r
}

// Record enqueues e without blocking. Entries without an organization are ignored.
func (r *Recorder) Record(e Entry) {
	if e.OrganizationID == uuid.Nil {
		return
	}

	var details datatypes.JSON
	if e.Details != nil {
		raw, err := json.Marshal(e.Details)
		if err != nil {
			log.Printf("audit: dropping %s: %v", e.Action, err)
			return
		}
		details = datatypes.JSON(raw)
	}
	entry := &models.AuditLog{
		ID:             uuid.New(),
		OrganizationID: e.OrganizationID,
		UserID:         e.UserID,
		ActionType:     e.Action,
		EntityType:     e.EntityType,
		EntityID:       e.EntityID,
		Details:        details,
		IPAddress:      e.IPAddress,
		CreatedAt:      time.Now(),
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		log.Printf("audit: recorder closed, dropping %s", e.Action)
		return
	}
	select {
	case r.queue <- entry:
	default:
		log.Printf("audit: queue full, dropping %s", e.Action)
	}
}

func (r *Recorder) run() {
	defer close(r.done)
	for entry := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		if err := r.store.CreateAuditLog(ctx, entry); err != nil {
			log.Println(err, "Error writing audit log")
		}
		cancel()
	}
}

// Close stops accepting entries and waits until the queued ones are written.
func (r *Recorder) Close() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()
	<-r.done
}
