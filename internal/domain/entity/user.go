// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the core identity record of the platform. It carries the credential
// hash and the single refresh token currently valid for this account; both
// fields are persistence-only and must never be echoed to callers.
type User struct {
	ID            uuid.UUID // The unique identifier for the account.
	Username      string    // Unique handle, stored lowercased and trimmed.
	Email         string    // Unique contact email, stored lowercased and trimmed.
	FullName      string    // The user's display name.
	AvatarURL     string    // Durable URL of the uploaded avatar image. Always set.
	CoverImageURL string    // Durable URL of the uploaded cover image. May be empty.
	PasswordHash  string    // bcrypt hash of the password. Never the plaintext.
	RefreshToken  string    // The single refresh token currently valid for this account. Empty when logged out.
	CreatedAt     time.Time // Timestamp of when this account was created.
	UpdatedAt     time.Time // Timestamp of the last modification to this account.
}

// Sanitized returns a copy of the user safe to hand to callers: the password
// hash and the stored refresh token are stripped.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}

	clone := *u
	clone.PasswordHash = ""
	clone.RefreshToken = ""

	return &clone
}
