// Package repository defines the persistence contracts of the domain.
// Implementations live under internal/infrastructure.
package repository

import (
	"context"

	"github.com/stockassist/platform/internal/domain/models"
)

// UserRepository is the user store as seen by the authentication core.
// Implementation: internal/infrastructure/persistence/postgres/user_repo_impl.go
type UserRepository interface {
	// FindWithProfileByUsername loads a user and its profile.
	// Parameters:
	//   - ctx: request context, used for cancellation and tracing
	//   - username: exact username to look up
	// Returns:
	//   - *models.User: the user with Profile populated when one exists
	//   - error: errors.ErrUnknownUser when no row matches,
	//     errors.ErrStoreUnavailable when the store cannot answer
	FindWithProfileByUsername(ctx context.Context, username string) (*models.User, error)

	// Save inserts a user and, when set, its profile.
	// Returns errors.ErrInvalidRequest when the username is taken.
	Save(ctx context.Context, user *models.User) error
}
