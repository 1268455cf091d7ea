package ports

import (
	"context"

	"github.com/aerolux/concierge-admin/internal/core/domain"
)

// TokenPair is what a successful login or refresh returns.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// LoginResult bundles the issued tokens with the principal they describe.
// Exactly one of User and Vendor is set.
type LoginResult struct {
	Tokens TokenPair
	User   *domain.User
	Vendor *domain.Vendor
}

// RegisterUserInput carries the fields of a new admin-type user.
type RegisterUserInput struct {
	Email    string
	Password string
	Name     string
	Role     string
}

// UpdateUserInput carries a partial update of an admin-type user.
type UpdateUserInput struct {
	Name     *string
	Role     *string
	IsActive *bool
	Password *string
}

// AuthService covers login, token rotation and admin user management.
type AuthService interface {
	Login(ctx context.Context, email, password, userType string) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*LoginResult, error)
	Register(ctx context.Context, input RegisterUserInput) (*domain.User, error)
	Me(ctx context.Context, who *domain.Identity) (*LoginResult, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	UpdateUser(ctx context.Context, actor *domain.Identity, id string, input UpdateUserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, actor *domain.Identity, id string) error
}

// TokenIssuer signs and verifies access and refresh tokens.
type TokenIssuer interface {
	IssueAccess(who *domain.Identity) (string, error)
	IssueRefresh(who *domain.Identity) (string, error)
	// Verify returns nil for any invalid, expired or non-access token.
	Verify(token string) *domain.Identity
	// VerifyRefresh returns nil unless token is a valid refresh token.
	VerifyRefresh(token string) *domain.Identity
}
