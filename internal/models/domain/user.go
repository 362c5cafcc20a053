package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role represents a department role.
type Role string

const (
	RoleFirefighter Role = "firefighter"
	RoleLieutenant  Role = "lieutenant"
	RoleCaptain     Role = "captain"
	RoleChief       Role = "chief"
	RoleAdmin       Role = "admin"
)

// UserStatus marks directory entries as notifiable or retired.
type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserInactive UserStatus = "inactive"
)

// User is a directory entry for a department member.
type User struct {
	ID         uuid.UUID  `db:"id"`
	Email      string     `db:"email"`
	FirstName  string     `db:"first_name"`
	LastName   string     `db:"last_name"`
	Role       Role       `db:"role"`
	Station    string     `db:"station"`
	Status     UserStatus `db:"status"`
	TelegramID int64      `db:"telegram_id"` // 0 when the member has no linked chat
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"`
}

// DisplayName returns "First Last", falling back to the email local part.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	if at := strings.IndexByte(u.Email, '@'); at > 0 {
		return u.Email[:at]
	}
	return u.Email
}

// Recipient is an expanded, deduplicated notification target. Derived from
// the directory at send time and never persisted.
type Recipient struct {
	ID          uuid.UUID
	Email       string
	DisplayName string
	Station     string
	Role        Role
	TelegramID  int64
}

// Station is a fire station an assessment can be scoped to.
type Station struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	Address   string    `db:"address"`
	CreatedAt time.Time `db:"created_at"`
}
