package repo

import (
	"context"
	"testing"

	"epitrello-backend/internal/access"
	"epitrello-backend/internal/models"
	"epitrello-backend/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolverOverStore(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	owner := testutil.User(t, db, "owner")
	orgAdmin := testutil.User(t, db, "orgadmin")
	orgMember := testutil.User(t, db, "orgmember")
	reader := testutil.User(t, db, "reader")
	stranger := testutil.User(t, db, "stranger")

	org := testutil.Organization(t, db, owner.ID)
	testutil.OrgMember(t, db, org.ID, orgAdmin.ID, models.OrgRoleAdmin)
	testutil.OrgMember(t, db, org.ID, orgMember.ID, models.OrgRoleMember)
	testutil.OrgMember(t, db, org.ID, reader.ID, models.OrgRoleAdmin)
	board := testutil.Board(t, db, owner.ID, &org.ID)
	testutil.BoardMember(t, db, board.ID, reader.ID, models.BoardRoleRead)

	resolver := access.NewResolver(NewAccessRepository(db))
	cases := []struct {
		user uuid.UUID
		want *models.BoardRole
	}{
		{owner.ID, rolePtr(models.BoardRoleOwner)},
		{orgAdmin.ID, rolePtr(models.BoardRoleAdmin)},
		{orgMember.ID, rolePtr(models.BoardRoleWrite)},
		{reader.ID, rolePtr(models.BoardRoleRead)},
		{stranger.ID, nil},
	}
	for _, tc := range cases {
		got, err := resolver.EffectiveRole(ctx, board.ID, tc.user)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}

	_, err := resolver.EffectiveRole(ctx, uuid.New(), stranger.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = resolver.Require(ctx, board.ID, orgMember.ID, access.Admin)
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestResolverMembersOverStore(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	owner := testutil.User(t, db, "owner")
	member := testutil.User(t, db, "member")
	both := testutil.User(t, db, "both")

	org := testutil.Organization(t, db, owner.ID)
	testutil.OrgMember(t, db, org.ID, member.ID, models.OrgRoleMember)
	testutil.OrgMember(t, db, org.ID, both.ID, models.OrgRoleAdmin)
	board := testutil.Board(t, db, owner.ID, &org.ID)
	testutil.BoardMember(t, db, board.ID, both.ID, models.BoardRoleRead)

	members, err := access.NewResolver(NewAccessRepository(db)).Members(ctx, board.ID)
	require.NoError(t, err)
	require.Len(t, members, 3)

	assert.Equal(t, owner.ID, members[0].UserID)
	assert.Equal(t, models.BoardRoleOwner, members[0].Role)
	assert.False(t, members[0].ViaOrganization)
	assert.Equal(t, member.ID, members[1].UserID)
	assert.Equal(t, models.BoardRoleWrite, members[1].Role)
	assert.True(t, members[1].ViaOrganization)
	assert.Equal(t, both.ID, members[2].UserID)
	assert.Equal(t, models.BoardRoleRead, members[2].Role)
	assert.False(t, members[2].ViaOrganization)
}

func rolePtr(r models.BoardRole) *models.BoardRole { return &r }
