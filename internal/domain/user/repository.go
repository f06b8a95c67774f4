package user

import "context"

// UserRepository is the read-only directory boundary. Account CRUD lives
// outside the attendance core.
type UserRepository interface {
	// GetByID retrieves a user by primary key.
	GetByID(ctx context.Context, id string) (User, error)

	// GetByUserCode retrieves a user by their human-facing code (login).
	GetByUserCode(ctx context.Context, userCode string) (User, error)

	// ListActive retrieves all active users, optionally filtered by role.
	ListActive(ctx context.Context, roleFilter *Role) ([]User, error)
}
