package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"epitrello-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttachmentRepo struct {
	db *gorm.DB
}

type AttachmentRepoInterface interface {
	CreateAttachment(ctx context.Context, attachment *models.Attachment) error
	ListAttachments(ctx context.Context, cardID uuid.UUID) ([]models.Attachment, error)
	GetAttachment(ctx context.Context, cardID, attachmentID uuid.UUID) (*models.Attachment, error)
	DeleteAttachment(ctx context.Context, cardID, attachmentID uuid.UUID) (*models.Attachment, error)
}

func NewAttachmentRepository(db *gorm.DB) AttachmentRepoInterface {
	return &AttachmentRepo{db: db}
}

func (r *AttachmentRepo) CreateAttachment(ctx context.Context, attachment *models.Attachment) error {
	if attachment.ID == uuid.Nil {
		attachment.ID = uuid.New()
	}
	attachment.CreatedAt = time.Now()
	return r.db.WithContext(ctx).Create(attachment).Error
}

func (r *AttachmentRepo) ListAttachments(ctx context.Context, cardID uuid.UUID) ([]models.Attachment, error) {
	attachments := []models.Attachment{}
	err := r.db.WithContext(ctx).Where("card_id = ?", cardID).Order("created_at DESC").Find(&attachments).Error
	return attachments, err
}

func (r *AttachmentRepo) GetAttachment(ctx context.Context, cardID, attachmentID uuid.UUID) (*models.Attachment, error) {
	var attachment models.Attachment
	err := r.db.WithContext(ctx).Where("id = ? AND card_id = ?", attachmentID, cardID).First(&attachment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: attachment %s", models.ErrNotFound, attachmentID)
	}
	if err != nil {
		return nil, err
	}
	return &attachment, nil
}

// DeleteAttachment removes the row and returns it so the caller can drop the blob
func (r *AttachmentRepo) DeleteAttachment(ctx context.Context, cardID, attachmentID uuid.UUID) (*models.Attachment, error) {
	attachment, err := r.GetAttachment(ctx, cardID, attachmentID)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Delete(attachment).Error; err != nil {
		return nil, err
	}
	return attachment, nil
}
