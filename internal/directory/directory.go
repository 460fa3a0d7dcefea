// Package directory looks up and registers identities in a snapshot.
package directory

import (
	"fmt"
	"slices"

	"poll-server/internal/domain"
)

// UnknownOwner is shown in place of an owner whose identity cannot be resolved.
const UnknownOwner = "unknown"

// FindByUsername returns the user with exactly this username.
func FindByUsername(s domain.Snapshot, username string) (domain.User, bool) {
	for _, u := range s.Users {
		if u.Username == username {
			return u, true
		}
	}
	return domain.User{}, false
}

// FindByID returns the user with the given id.
func FindByID(s domain.Snapshot, id int64) (domain.User, bool) {
	for _, u := range s.Users {
		if u.ID == id {
			return u, true
		}
	}
	return domain.User{}, false
}

// OwnerName resolves a display name for id, falling back to UnknownOwner.
func OwnerName(s domain.Snapshot, id int64) string {
	if u, ok := FindByID(s, id); ok {
		return u.Username
	}
	return UnknownOwner
}

// Register appends a new user. The input snapshot is left untouched.
func Register(s domain.Snapshot, username, passwordHash string) (domain.Snapshot, domain.User, error) {
	if username == "" {
		return s, domain.User{}, fmt.Errorf("%w: username is required", domain.ErrInvalidInput)
	}
	if _, exists := FindByUsername(s, username); exists {
		return s, domain.User{}, fmt.Errorf("%w: user already exists", domain.ErrConflict)
	}

	user := domain.User{
		ID:           domain.NextID(s.Users, domain.UserID),
		Username:     username,
		PasswordHash: passwordHash,
	}
	s.Users = append(slices.Clone(s.Users), user)
	return s, user, nil
}
