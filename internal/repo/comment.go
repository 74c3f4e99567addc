package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"epitrello-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CommentWithAuthor is a comment joined with the user who wrote it.
type CommentWithAuthor struct {
	models.Comment
	Username string `json:"username"`
	UserName string `json:"user_name"`
}

// ActivityWithUser is an activity row joined with the acting user.
type ActivityWithUser struct {
	models.CardActivity
	Username string `json:"username"`
	UserName string `json:"user_name"`
}

type CommentRepo struct {
	db *gorm.DB
}

type CommentRepoInterface interface {
	AddComment(ctx context.Context, comment *models.Comment) error
	GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	ListComments(ctx context.Context, cardID uuid.UUID) ([]CommentWithAuthor, error)
	DeleteComment(ctx context.Context, cardID, commentID uuid.UUID) error
	LogActivity(ctx context.Context, cardID, userID uuid.UUID, action string, details map[string]interface{}) error
	ListActivity(ctx context.Context, cardID uuid.UUID) ([]ActivityWithUser, error)
}

func NewCommentRepository(db *gorm.DB) CommentRepoInterface {
	return &CommentRepo{db: db}
}

func (r *CommentRepo) AddComment(ctx context.Context, comment *models.Comment) error {
	comment.ID = uuid.New()
	comment.CreatedAt = time.Now()
	comment.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *CommentRepo) GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&comment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: comment %s", models.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListComments returns the card's comments, newest first
func (r *CommentRepo) ListComments(ctx context.Context, cardID uuid.UUID) ([]CommentWithAuthor, error) {
	comments := []CommentWithAuthor{}
	err := r.db.WithContext(ctx).
		Table("comments c").
		Select("c.*, u.username AS username, u.name AS user_name").
		Joins("JOIN users u ON u.id = c.user_id").
		Where("c.card_id = ?", cardID).
		Order("c.created_at DESC").
		Scan(&comments).Error
	return comments, err
}

func (r *CommentRepo) DeleteComment(ctx context.Context, cardID, commentID uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ? AND card_id = ?", commentID, cardID).Delete(&models.Comment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: comment %s", models.ErrNotFound, commentID)
	}
	return nil
}

func (r *CommentRepo) LogActivity(ctx context.Context, cardID, userID uuid.UUID, action string, details map[string]interface{}) error {
	raw, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("encode activity details: %w", err)
	}
	return r.db.WithContext(ctx).Create(&models.CardActivity{
		ID:        uuid.New(),
		CardID:    cardID,
		UserID:    userID,
		Action:    action,
		Details:   datatypes.JSON(raw),
		CreatedAt: time.Now(),
	}).Error
}

// ListActivity returns the card's history, newest first
func (r *CommentRepo) ListActivity(ctx context.Context, cardID uuid.UUID) ([]ActivityWithUser, error) {
	activity := []ActivityWithUser{}
	err := r.db.WithContext(ctx).
		Table("card_activities a").
		Select("a.*, u.username AS username, u.name AS user_name").
		Joins("JOIN users u ON u.id = a.user_id").
		Where("a.card_id = ?", cardID).
		Order("a.created_at DESC").
		Scan(&activity).Error
	return activity, err
}
