package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"epitrello-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepo struct {
	db *gorm.DB
}

type UserRepoInterface interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUserByLogin matches either the email or the username.
	GetUserByLogin(ctx context.Context, identifier string) (*models.User, error)
	// UpdateProfile applies the given columns; a username or email held by another user
	// is reported as models.ErrConflict.
	UpdateProfile(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*models.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	// CountBoards counts the boards the user holds a direct membership on.
	CountBoards(ctx context.Context, id uuid.UUID) (int64, error)
}

func NewUserRepository(db *gorm.DB) UserRepoInterface {
	return &UserRepo{db: db}
}

// CreateUser inserts the user; a taken email or username is reported as models.ErrConflict.
func (r *UserRepo) CreateUser(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	db := r.db.WithContext(ctx)

	var taken int64
	err := db.Model(&models.User{}).
		Where("email = ? OR username = ?", user.Email, user.Username).
		Count(&taken).Error
	if err != nil {
		return err
	}
	if taken > 0 {
		return fmt.Errorf("%w: email or username already registered", models.ErrConflict)
	}

	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	return db.Create(user).Error
}

func (r *UserRepo) first(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user", models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepo) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (r *UserRepo) GetUserByLogin(ctx context.Context, identifier string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	return r.first(ctx, "email = ? OR username = ?", strings.ToLower(identifier), identifier)
}

func (r *UserRepo) UpdateProfile(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*models.User, error) {
	if email, ok := updates["email"].(string); ok {
		updates["email"] = strings.ToLower(strings.TrimSpace(email))
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, column := range []string{"username", "email"} {
			value, ok := updates[column]
			if !ok {
				continue
			}
			var taken int64
			err := tx.Model(&models.User{}).Where(column+" = ? AND id <> ?", value, id).Count(&taken).Error
			if err != nil {
				return err
			}
			if taken > 0 {
				return fmt.Errorf("%w: %s already taken", models.ErrConflict, column)
			}
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&models.User{}).Where("id = ?", id).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return r.GetUserByID(ctx, id)
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password_hash", passwordHash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: user", models.ErrNotFound)
	}
	return nil
}

func (r *UserRepo) CountBoards(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.BoardMember{}).
		Where("user_id = ?", id).
		Distinct("board_id").
		Count(&count).Error
	return count, err
}
