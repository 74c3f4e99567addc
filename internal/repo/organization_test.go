package repo

import (
	"context"
	"testing"

	"epitrello-backend/internal/models"
	"epitrello-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrganization(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	alice := testutil.User(t, db, "alice")
	orgs := NewOrganizationRepository(db)

	org := &models.Organization{Name: "acme", DisplayName: "Acme", CreatedBy: alice.ID}
	require.NoError(t, orgs.CreateOrganization(ctx, org))

	role, err := orgs.MemberRole(ctx, org.ID, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, role)
	assert.Equal(t, models.OrgRoleOwner, *role)

	err = orgs.CreateOrganization(ctx, &models.Organization{Name: "acme", DisplayName: "Other", CreatedBy: alice.ID})
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestListOrganizationsForUser(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	alice := testutil.User(t, db, "alice")
	bob := testutil.User(t, db, "bob")
	org := testutil.Organization(t, db, alice.ID)
	testutil.OrgMember(t, db, org.ID, bob.ID, models.OrgRoleMember)
	testutil.Board(t, db, alice.ID, &org.ID)
	testutil.Organization(t, db, alice.ID)

	list, err := NewOrganizationRepository(db).ListOrganizationsForUser(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, org.ID, list[0].ID)
	assert.Equal(t, models.OrgRoleMember, list[0].Role)
	assert.Equal(t, int64(2), list[0].MemberCount)
	assert.Equal(t, int64(1), list[0].BoardCount)
}

func TestOrganizationMembers(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	alice := testutil.User(t, db, "alice")
	bob := testutil.User(t, db, "bob")
	carol := testutil.User(t, db, "carol")
	org := testutil.Organization(t, db, alice.ID)
	orgs := NewOrganizationRepository(db)

	require.NoError(t, orgs.AddMember(ctx, org.ID, bob.ID, models.OrgRoleMember))
	require.NoError(t, orgs.AddMember(ctx, org.ID, carol.ID, models.OrgRoleAdmin))
	assert.ErrorIs(t, orgs.AddMember(ctx, org.ID, bob.ID, models.OrgRoleMember), models.ErrConflict)

	members, err := orgs.ListMembers(ctx, org.ID)
	require.NoError(t, err)
	require.Len(t, members, 3)
	assert.Equal(t, []string{"alice", "carol", "bob"},
		[]string{members[0].Username, members[1].Username, members[2].Username})

	previous, err := orgs.UpdateMemberRole(ctx, org.ID, bob.ID, models.OrgRoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.OrgRoleMember, previous)

	_, err = orgs.UpdateMemberRole(ctx, org.ID, alice.ID, models.OrgRoleMember)
	assert.ErrorIs(t, err, models.ErrForbidden)

	require.NoError(t, orgs.RemoveMember(ctx, org.ID, bob.ID))
	assert.ErrorIs(t, orgs.RemoveMember(ctx, org.ID, bob.ID), models.ErrNotFound)
}

func TestDeleteOrganization_DetachesBoards(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	alice := testutil.User(t, db, "alice")
	org := testutil.Organization(t, db, alice.ID)
	board := testutil.Board(t, db, alice.ID, &org.ID)
	orgs := NewOrganizationRepository(db)

	boards, err := orgs.ListBoards(ctx, org.ID)
	require.NoError(t, err)
	require.Len(t, boards, 1)
	assert.Equal(t, "alice", boards[0].CreatorUsername)

	require.NoError(t, orgs.DeleteOrganization(ctx, org.ID))

	var kept models.Board
	require.NoError(t, db.First(&kept, "id = ?", board.ID).Error)
	assert.Nil(t, kept.OrganizationID)
	_, err = orgs.GetOrganization(ctx, org.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
