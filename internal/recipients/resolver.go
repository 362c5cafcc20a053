package recipients

import (
	"regexp"
	"strings"

	"FireGar/internal/models/domain"
)

// groupRoles maps each recipient group to the roles it covers. GroupEveryone
// is handled separately since it matches any role.
var groupRoles = map[domain.GroupID][]domain.Role{
	domain.GroupAllFirefighters: {domain.RoleFirefighter},
	domain.GroupAllOfficers:     {domain.RoleCaptain, domain.RoleLieutenant},
	domain.GroupAllChiefs:       {domain.RoleChief, domain.RoleAdmin},
}

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// placeholder local parts and domains that mark a directory entry as
// non-notifiable.
var placeholderLocals = map[string]bool{
	"noemail":     true,
	"none":        true,
	"placeholder": true,
	"unknown":     true,
}

// Resolve expands a recipient selection against the live user directory
// into a deduplicated list of notifiable recipients. Group members come
// first in group order, then individually selected users; duplicates are
// dropped by email, first occurrence wins. An empty selection resolves to
// an empty list.
func Resolve(selection domain.RecipientSelection, directory []domain.User) []domain.Recipient {
	eligible := make([]domain.User, 0, len(directory))
	for _, u := range directory {
		if Notifiable(u) {
			eligible = append(eligible, u)
		}
	}

	var out []domain.Recipient
	seen := make(map[string]bool)

	add := func(u domain.User) {
		if seen[u.Email] {
			return
		}
		seen[u.Email] = true
		out = append(out, domain.Recipient{
			ID:          u.ID,
			Email:       u.Email,
			DisplayName: u.DisplayName(),
			Station:     u.Station,
			Role:        u.Role,
			TelegramID:  u.TelegramID,
		})
	}

	for _, group := range selection.Groups {
		for _, u := range eligible {
			if groupMatches(group, u.Role) {
				add(u)
			}
		}
	}

	for _, id := range selection.Users {
		for _, u := range eligible {
			if u.ID == id {
				add(u)
				break
			}
		}
	}

	return out
}

// Notifiable reports whether a directory entry can receive notifications:
// active status and a plausible, non-placeholder email.
func Notifiable(u domain.User) bool {
	return u.Status == domain.UserActive && plausibleEmail(u.Email)
}

func groupMatches(group domain.GroupID, role domain.Role) bool {
	if group == domain.GroupEveryone {
		return true
	}
	for _, r := range groupRoles[group] {
		if r == role {
			return true
		}
	}
	return false
}

func plausibleEmail(email string) bool {
	if !emailRe.MatchString(email) {
		return false
	}
	local := strings.ToLower(email[:strings.IndexByte(email, '@')])
	return !placeholderLocals[local]
}
