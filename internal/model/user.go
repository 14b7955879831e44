// Package model defines the data structures used throughout the application.
package model

import (
	"strings"
	"time"
)

// User is the identity the auth backend resolves from a session.
//
// Only the fields the site reads are modelled here. Credentials and linked
// identities stay inside the backend.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	ConfirmedAt  *time.Time `json:"confirmed_at"`
	CreatedAt    time.Time  `json:"created_at"`
	LastSignInAt *time.Time `json:"last_sign_in_at"`
}

// AnonymousName is shown for authors without a usable email.
const AnonymousName = "익명"

// DisplayName is the name shown next to content the user writes: the part of
// the email before "@", or AnonymousName when that is empty.
func (u *User) DisplayName() string {
	local, _, _ := strings.Cut(u.Email, "@")
	if local == "" {
		return AnonymousName
	}
	return local
}
