package access

import (
	"context"
	"testing"
	"time"

	"epitrello-backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	boards    map[uuid.UUID]bool
	direct    map[uuid.UUID]models.BoardRole
	org       map[uuid.UUID]models.OrgRole
	directM   []models.Member
	inherited []models.Member
	reads     int
}

func (s *fakeStore) DirectRole(_ context.Context, _, userID uuid.UUID) (*models.BoardRole, error) {
	s.reads++
	if r, ok := s.direct[userID]; ok {
		return &r, nil
	}
	return nil, nil
}

func (s *fakeStore) OrganizationRole(_ context.Context, boardID, userID uuid.UUID) (*models.OrgRole, error) {
	s.reads++
	if !s.boards[boardID] {
		return nil, models.ErrNotFound
	}
	if r, ok := s.org[userID]; ok {
		return &r, nil
	}
	return nil, nil
}

func (s *fakeStore) DirectMembers(context.Context, uuid.UUID) ([]models.Member, error) {
	return s.directM, nil
}

func (s *fakeStore) InheritedMembers(context.Context, uuid.UUID) ([]models.Member, error) {
	return s.inherited, nil
}

func TestResolver_EffectiveRole(t *testing.T) {
	board := uuid.New()
	owner, orgAdmin, orgMember, both, stranger := uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New()
	store := &fakeStore{
		boards: map[uuid.UUID]bool{board: true},
		direct: map[uuid.UUID]models.BoardRole{owner: models.BoardRoleOwner, both: models.BoardRoleRead},
		org:    map[uuid.UUID]models.OrgRole{orgAdmin: models.OrgRoleAdmin, orgMember: models.OrgRoleMember, both: models.OrgRoleOwner},
	}
	r := NewResolver(store)
	ctx := context.Background()

	tests := []struct {
		user  uuid.UUID
		want  models.BoardRole
		none  bool
		reads int
	}{
		{user: owner, want: models.BoardRoleOwner, reads: 1},
		{user: orgAdmin, want: models.BoardRoleAdmin, reads: 2},
		{user: orgMember, want: models.BoardRoleWrite, reads: 2},
		{user: both, want: models.BoardRoleRead, reads: 1},
		{user: stranger, none: true, reads: 2},
	}
	for _, tt := range tests {
		store.reads = 0
		role, err := r.EffectiveRole(ctx, board, tt.user)
		require.NoError(t, err)
		assert.LessOrEqual(t, store.reads, 2)
		assert.Equal(t, tt.reads, store.reads)
		if tt.none {
			assert.Nil(t, role)
			continue
		}
		require.NotNil(t, role)
		assert.Equal(t, tt.want, *role)
	}
}

func TestResolver_NotFound(t *testing.T) {
	store := &fakeStore{boards: map[uuid.UUID]bool{}}
	r := NewResolver(store)
	ctx := context.Background()

	_, err := r.EffectiveRole(ctx, uuid.Nil, uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Zero(t, store.reads)

	_, err = r.EffectiveRole(ctx, uuid.New(), uuid.Nil)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = r.EffectiveRole(ctx, uuid.New(), uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestResolver_NoAccessWithoutOrganization(t *testing.T) {
	board := uuid.New()
	r := NewResolver(&fakeStore{boards: map[uuid.UUID]bool{board: true}})

	role, err := r.EffectiveRole(context.Background(), board, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, role)

	ok, err := r.CanRead(context.Background(), board, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolver_Require(t *testing.T) {
	board, writer := uuid.New(), uuid.New()
	r := NewResolver(&fakeStore{
		boards: map[uuid.UUID]bool{board: true},
		direct: map[uuid.UUID]models.BoardRole{writer: models.BoardRoleWrite},
	})
	ctx := context.Background()

	role, err := r.Require(ctx, board, writer, Write)
	require.NoError(t, err)
	assert.Equal(t, models.BoardRoleWrite, role)

	_, err = r.Require(ctx, board, writer, Admin)
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = r.Require(ctx, board, uuid.New(), Read)
	assert.ErrorIs(t, err, models.ErrForbidden)

	ok, err := r.HasAdminAccess(ctx, board, writer)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = r.CanWrite(ctx, board, writer)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = r.IsOwner(ctx, board, writer)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMergeMembers(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	alice, bob, carol, dave := uuid.New(), uuid.New(), uuid.New(), uuid.New()

	direct := []models.Member{
		{UserID: bob, Role: models.BoardRoleRead, JoinedAt: base.Add(3 * time.Hour)},
		{UserID: alice, Role: models.BoardRoleOwner, JoinedAt: base},
	}
	inherited := []models.Member{
		{UserID: bob, Role: models.BoardRoleAdmin, JoinedAt: base},
		{UserID: dave, Role: models.BoardRoleWrite, JoinedAt: base.Add(2 * time.Hour)},
		{UserID: carol, Role: models.BoardRoleWrite, JoinedAt: base.Add(time.Hour)},
	}

	got := MergeMembers(direct, inherited)
	require.Len(t, got, 4)

	assert.Equal(t, alice, got[0].UserID)
	assert.Equal(t, carol, got[1].UserID)
	assert.Equal(t, dave, got[2].UserID)
	assert.Equal(t, bob, got[3].UserID)

	assert.Equal(t, models.BoardRoleRead, got[3].Role, "direct membership wins")
	assert.False(t, got[3].ViaOrganization)
	assert.True(t, got[1].ViaOrganization)
}

func TestResolver_Members(t *testing.T) {
	u := uuid.New()
	r := NewResolver(&fakeStore{
		directM:   []models.Member{{UserID: u, Role: models.BoardRoleOwner}},
		inherited: []models.Member{{UserID: u, Role: models.BoardRoleAdmin}},
	})
	members, err := r.Members(context.Background(), uuid.New())
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, models.BoardRoleOwner, members[0].Role)
}
