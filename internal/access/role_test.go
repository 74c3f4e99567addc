package access

import (
	"testing"

	"epitrello-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boardRole(r models.BoardRole) *models.BoardRole { return &r }
func orgRole(r models.OrgRole) *models.OrgRole       { return &r }

func TestEffective(t *testing.T) {
	tests := []struct {
		name   string
		direct *models.BoardRole
		org    *models.OrgRole
		want   *models.BoardRole
	}{
		{"no membership", nil, nil, nil},
		{"direct only", boardRole(models.BoardRoleRead), nil, boardRole(models.BoardRoleRead)},
		{"org owner", nil, orgRole(models.OrgRoleOwner), boardRole(models.BoardRoleAdmin)},
		{"org admin", nil, orgRole(models.OrgRoleAdmin), boardRole(models.BoardRoleAdmin)},
		{"org member", nil, orgRole(models.OrgRoleMember), boardRole(models.BoardRoleWrite)},
		{"direct read beats org admin", boardRole(models.BoardRoleRead), orgRole(models.OrgRoleAdmin), boardRole(models.BoardRoleRead)},
		{"direct owner beats org member", boardRole(models.BoardRoleOwner), orgRole(models.OrgRoleMember), boardRole(models.BoardRoleOwner)},
		{"unknown org role", nil, orgRole("guest"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Effective(tt.direct, tt.org)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestCapabilityAllows(t *testing.T) {
	roles := []models.BoardRole{models.BoardRoleOwner, models.BoardRoleAdmin, models.BoardRoleWrite, models.BoardRoleRead}
	want := map[Capability][]bool{
		Read:  {true, true, true, true},
		Write: {true, true, true, false},
		Admin: {true, true, false, false},
		Owner: {true, false, false, false},
	}
	for c, expected := range want {
		for i, r := range roles {
			assert.Equal(t, expected[i], c.Allows(boardRole(r)), "%s on %s", c, r)
		}
		assert.False(t, c.Allows(nil), "%s on no role", c)
	}
}
