// Package identity resolves who is using the client.
//
// Chat history is scoped per identity: the session store key is derived
// from Identity.UserID. The shipped provider reads the user from config;
// a hosted identity service can be plugged in behind the Provider interface.
//
// Example usage:
//
//	p := identity.NewConfigProvider(cfg.User.Email, cfg.User.Name)
//	id, err := p.CurrentUser(ctx)
//	if errors.Is(err, identity.ErrUnauthenticated) {
//	    // ask the user to configure an email
//	}
package identity

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// FallbackName is shown when a profile has no usable name.
const FallbackName = "User"

// Name constraints for profile display names.
const (
	MinNameLength = 2
	MaxNameLength = 100
)

var (
	// ErrUnauthenticated is returned when no user is signed in.
	ErrUnauthenticated = errors.New("no user configured")

	// ErrInvalidEmail is returned when the email does not match RFC 5322 format.
	ErrInvalidEmail = errors.New("email format is invalid")

	// ErrProfileNotFound is returned when a user has no profile.
	ErrProfileNotFound = errors.New("profile not found")
)

// Identity is the signed-in user.
type Identity struct {
	UserID string
	Email  string
}

// Profile holds display details for a user.
type Profile struct {
	FullName string
	Email    string
}

// Provider looks up the current user and their profile.
type Provider interface {
	CurrentUser(ctx context.Context) (Identity, error)
	Profile(ctx context.Context, userID string) (Profile, error)
}

// UserID derives a stable id from an email address, so the same user maps
// to the same history across machines and restarts.
func UserID(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+normalized)).String()
}

// ValidateEmail checks an email address.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrUnauthenticated
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

// validName reports whether name is 2-100 characters of letters, spaces,
// hyphens and apostrophes.
func validName(name string) bool {
	n := len([]rune(name))
	if n < MinNameLength || n > MaxNameLength {
		return false
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsSpace(r) && r != '-' && r != '\'' && r != '.' {
			return false
		}
	}
	return true
}

// DisplayName returns the name to show for a user. Invalid or missing names
// fall back to FallbackName.
func DisplayName(p Profile) string {
	name := strings.TrimSpace(p.FullName)
	if !validName(name) {
		return FallbackName
	}
	return name
}

// DisplayEmail returns the profile email, or the identity email when the
// profile has none.
func DisplayEmail(p Profile, id Identity) string {
	if e := strings.TrimSpace(p.Email); e != "" {
		return e
	}
	return id.Email
}
