package auth

import "context"

// AuthService defines authentication business logic.
type AuthService interface {
	// Login verifies user code and password and issues a token pair.
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)

	// RefreshToken exchanges a valid refresh token for a new access token.
	RefreshToken(ctx context.Context, req RefreshTokenRequest) (AccessTokenResponse, error)

	// Me returns the authenticated user's profile from context claims.
	Me(ctx context.Context) (UserResponse, error)
}
