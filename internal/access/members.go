package access

import (
	"sort"

	"epitrello-backend/internal/models"

	"github.com/google/uuid"
)

// MergeMembers de-duplicates direct and inherited members by user, keeping the direct row,
// and orders the result by role rank then join time.
func MergeMembers(direct, inherited []models.Member) []models.Member {
	seen := make(map[uuid.UUID]bool, len(direct))
	out := make([]models.Member, 0, len(direct)+len(inherited))
	for _, m := range direct {
		if seen[m.UserID] {
			continue
		}
		seen[m.UserID] = true
		m.ViaOrganization = false
		out = append(out, m)
	}
	for _, m := range inherited {
		if seen[m.UserID] {
			continue
		}
		seen[m.UserID] = true
		m.ViaOrganization = true
		out = append(out, m)
	}

	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].Role.Rank(), out[j].Role.Rank()
		if ri != rj {
			return ri < rj
		}
		return out[i].JoinedAt.Before(out[j].JoinedAt)
	})
	return out
}
