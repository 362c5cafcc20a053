package recipients

import (
	"testing"

	"FireGar/internal/models/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func user(email string, role domain.Role, status domain.UserStatus) domain.User {
	return domain.User{
		ID:        uuid.New(),
		Email:     email,
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
		Station:   "Station 1",
		Status:    status,
	}
}

func emails(rs []domain.Recipient) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Email
	}
	return out
}

func TestResolve_GroupExpansion(t *testing.T) {
	directory := []domain.User{
		user("ff1@fd.gov", domain.RoleFirefighter, domain.UserActive),
		user("cap@fd.gov", domain.RoleCaptain, domain.UserActive),
		user("lt@fd.gov", domain.RoleLieutenant, domain.UserActive),
		user("chief@fd.gov", domain.RoleChief, domain.UserActive),
	}

	tests := []struct {
		name  string
		group domain.GroupID
		want  []string
	}{
		{"firefighters", domain.GroupAllFirefighters, []string{"ff1@fd.gov"}},
		{"officers", domain.GroupAllOfficers, []string{"cap@fd.gov", "lt@fd.gov"}},
		{"chiefs", domain.GroupAllChiefs, []string{"chief@fd.gov"}},
		{"everyone", domain.GroupEveryone, []string{"ff1@fd.gov", "cap@fd.gov", "lt@fd.gov", "chief@fd.gov"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(domain.RecipientSelection{Groups: []domain.GroupID{tt.group}}, directory)
			assert.Equal(t, tt.want, emails(got))
		})
	}
}

func TestResolve_DedupAcrossGroupAndIndividual(t *testing.T) {
	captain := user("cap@fd.gov", domain.RoleCaptain, domain.UserActive)
	directory := []domain.User{
		user("ff1@fd.gov", domain.RoleFirefighter, domain.UserActive),
		captain,
	}

	// Captain is in all_officers and also individually selected.
	selection := domain.RecipientSelection{
		Groups: []domain.GroupID{domain.GroupAllOfficers},
		Users:  []uuid.UUID{captain.ID},
	}

	got := Resolve(selection, directory)
	assert.Equal(t, []string{"cap@fd.gov"}, emails(got), "captain must appear exactly once")
}

func TestResolve_FiltersInactiveAndPlaceholderEmails(t *testing.T) {
	inactive := user("gone@fd.gov", domain.RoleFirefighter, domain.UserInactive)
	noEmail := user("noemail@fd.gov", domain.RoleFirefighter, domain.UserActive)
	malformed := user("not-an-email", domain.RoleFirefighter, domain.UserActive)
	ok := user("ff1@fd.gov", domain.RoleFirefighter, domain.UserActive)

	directory := []domain.User{inactive, noEmail, malformed, ok}

	got := Resolve(domain.RecipientSelection{
		Groups: []domain.GroupID{domain.GroupEveryone},
		Users:  []uuid.UUID{inactive.ID},
	}, directory)

	assert.Equal(t, []string{"ff1@fd.gov"}, emails(got))
}

func TestResolve_EmptySelection(t *testing.T) {
	directory := []domain.User{
		user("ff1@fd.gov", domain.RoleFirefighter, domain.UserActive),
	}

	got := Resolve(domain.RecipientSelection{}, directory)
	assert.Empty(t, got)
}

func TestResolve_UnknownUserSilentlyExcluded(t *testing.T) {
	directory := []domain.User{
		user("ff1@fd.gov", domain.RoleFirefighter, domain.UserActive),
	}

	got := Resolve(domain.RecipientSelection{
		Users: []uuid.UUID{uuid.New()},
	}, directory)

	assert.Empty(t, got)
}

func TestResolve_StableOrder(t *testing.T) {
	ff := user("ff1@fd.gov", domain.RoleFirefighter, domain.UserActive)
	cap := user("cap@fd.gov", domain.RoleCaptain, domain.UserActive)
	chief := user("chief@fd.gov", domain.RoleChief, domain.UserActive)
	directory := []domain.User{ff, cap, chief}

	selection := domain.RecipientSelection{
		Groups: []domain.GroupID{domain.GroupAllChiefs, domain.GroupAllFirefighters},
		Users:  []uuid.UUID{cap.ID},
	}

	got := Resolve(selection, directory)
	assert.Equal(t, []string{"chief@fd.gov", "ff1@fd.gov", "cap@fd.gov"}, emails(got))
}
