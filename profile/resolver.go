// Package profile maps identity-service accounts to application profiles
// and manages the profile lifecycle: sign-up, settings and lookups by role.
package profile

import (
	"context"
	"errors"
	"fmt"
	"log"

	"campusbite/backend"
	"campusbite/models"
)

// NotFoundError means the account exists but has no profile document.
type NotFoundError struct {
	AccountID string
}

func (e *NotFoundError) Error() string {
	return "user profile not found for account " + e.AccountID
}

// Unwrap lets errors.Is(err, backend.ErrNotFound) match.
func (e *NotFoundError) Unwrap() error { return backend.ErrNotFound }

// IsNotFound reports whether err is a missing profile.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

type Resolver struct {
	users backend.Users
}

func NewResolver(users backend.Users) *Resolver {
	return &Resolver{users: users}
}

// GetProfile returns the profile of accountID. An account with several
// profiles resolves to the oldest one.
func (r *Resolver) GetProfile(ctx context.Context, accountID string) (*models.User, error) {
	if accountID == "" {
		return nil, errors.New("account id is required")
	}
	users, err := r.users.FindByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up profile for account %s: %w", accountID, err)
	}
	if len(users) == 0 {
		log.Printf("No user document found for account %s", accountID)
		return nil, &NotFoundError{AccountID: accountID}
	}
	if len(users) > 1 {
		log.Printf("WARN account %s has %d profiles, using %s", accountID, len(users), users[0].ID)
	}
	return users[0], nil
}

func (r *Resolver) GetRole(ctx context.Context, accountID string) (models.UserRole, error) {
	user, err := r.GetProfile(ctx, accountID)
	if err != nil {
		return "", err
	}
	return user.Role, nil
}
