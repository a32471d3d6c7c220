package users

import (
	"time"

	"github.com/jrsteele09/billing-admin/internal/utils"
)

// RoleType is the account type reported by the billing API
type RoleType string

const (
	RoleAdmin RoleType = "admin" // Can manage devices, categories and other users
	RoleUser  RoleType = "user"  // Regular cashier account
)

// StatusType is the presence flag shown next to the signed in user
type StatusType string

const (
	StatusOnline  StatusType = "online"
	StatusOffline StatusType = "offline"
)

// User is the identity of whoever is signed in to the console.
type User struct {
	ID     string     `json:"id"`               // Unique identifier for the user
	Email  string     `json:"email"`            // User's email address
	Type   RoleType   `json:"type,omitempty"`   // Account type (admin, user)
	Name   string     `json:"name,omitempty"`   // Display name
	Avatar string     `json:"avatar,omitempty"` // Avatar image reference
	Status StatusType `json:"status,omitempty"` // Presence flag
}

// UserUpdate is a partial update; nil fields are left untouched by Merge.
type UserUpdate struct {
	Email  *string     `json:"email,omitempty"`
	Name   *string     `json:"name,omitempty"`
	Avatar *string     `json:"avatar,omitempty"`
	Status *StatusType `json:"status,omitempty"`
}

// IsEmpty reports whether the update carries no fields
func (u UserUpdate) IsEmpty() bool {
	return u.Email == nil && u.Name == nil && u.Avatar == nil && u.Status == nil
}

// Merge returns a copy of u with the non-nil fields of update applied.
func (u User) Merge(update UserUpdate) User {
	if update.Email != nil {
		u.Email = utils.Value(update.Email)
	}
	if update.Name != nil {
		u.Name = utils.Value(update.Name)
	}
	if update.Avatar != nil {
		u.Avatar = utils.Value(update.Avatar)
	}
	if update.Status != nil {
		u.Status = utils.Value(update.Status)
	}
	return u
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Type == RoleAdmin
}

// DisplayName falls back to the email address when no name is set
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// ManagedUser is a row of the user management table.
type ManagedUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Type      RoleType  `json:"type"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
