// Package testutil provides an in-memory store and fixtures for package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"epitrello-backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory SQLite database with every model migrated.
// A single connection keeps the memory database alive and serializes access, so code under
// test must not use the outer handle while it holds a transaction.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func User(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	u := models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        username + "@example.com",
		Name:         username,
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

// Board creates a board owned by owner, with the owner membership row.
func Board(t *testing.T, db *gorm.DB, owner uuid.UUID, orgID *uuid.UUID) models.Board {
	t.Helper()
	b := models.Board{ID: uuid.New(), Title: "board", UserID: owner, OrganizationID: orgID}
	require.NoError(t, db.Create(&b).Error)
	BoardMember(t, db, b.ID, owner, models.BoardRoleOwner)
	return b
}

func BoardMember(t *testing.T, db *gorm.DB, boardID, userID uuid.UUID, role models.BoardRole) {
	t.Helper()
	require.NoError(t, db.Create(&models.BoardMember{
		ID: uuid.New(), BoardID: boardID, UserID: userID, Role: role,
	}).Error)
}

func Organization(t *testing.T, db *gorm.DB, owner uuid.UUID) models.Organization {
	t.Helper()
	o := models.Organization{ID: uuid.New(), Name: "org-" + uuid.NewString()[:8], DisplayName: "Org", CreatedBy: owner}
	require.NoError(t, db.Create(&o).Error)
	OrgMember(t, db, o.ID, owner, models.OrgRoleOwner)
	return o
}

func OrgMember(t *testing.T, db *gorm.DB, orgID, userID uuid.UUID, role models.OrgRole) {
	t.Helper()
	require.NoError(t, db.Create(&models.OrganizationMember{
		ID: uuid.New(), OrganizationID: orgID, UserID: userID, Role: role,
	}).Error)
}

// Columns appends len(titles) columns to the board, positions 0..n-1.
func Columns(t *testing.T, db *gorm.DB, boardID uuid.UUID, titles ...string) []models.Column {
	t.Helper()
	cols := make([]models.Column, 0, len(titles))
	for i, title := range titles {
		c := models.Column{ID: uuid.New(), Title: title, BoardID: boardID, Position: i,
			CreatedAt: time.Now().Add(time.Duration(i) * time.Millisecond)}
		require.NoError(t, db.Create(&c).Error)
		cols = append(cols, c)
	}
	return cols
}

// Cards appends len(titles) cards to the column, positions 0..n-1.
func Cards(t *testing.T, db *gorm.DB, columnID uuid.UUID, titles ...string) []models.Card {
	t.Helper()
	cards := make([]models.Card, 0, len(titles))
	for i, title := range titles {
		c := models.Card{ID: uuid.New(), Title: title, ColumnID: columnID, Position: i,
			Priority: models.PriorityMedium, CreatedAt: time.Now().Add(time.Duration(i) * time.Millisecond)}
		require.NoError(t, db.Create(&c).Error)
		cards = append(cards, c)
	}
	return cards
}

// CardOrder returns the card titles of a column in position order.
func CardOrder(t *testing.T, db *gorm.DB, columnID uuid.UUID) []string {
	t.Helper()
	var titles []string
	require.NoError(t, db.Model(&models.Card{}).
		Where("column_id = ?", columnID).
		Order("position").
		Pluck("title", &titles).Error)
	return titles
}

// ColumnOrder returns the column titles of a board in position order.
func ColumnOrder(t *testing.T, db *gorm.DB, boardID uuid.UUID) []string {
	t.Helper()
	var titles []string
	require.NoError(t, db.Model(&models.Column{}).
		Where("board_id = ?", boardID).
		Order("position").
		Pluck("title", &titles).Error)
	return titles
}
