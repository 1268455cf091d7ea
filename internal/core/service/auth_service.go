package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aerolux/concierge-admin/internal/core/domain"
	"github.com/aerolux/concierge-admin/internal/core/ports"
)

// AuthService implements login, token rotation and admin user management.
type AuthService struct {
	users   ports.UserRepository
	vendors ports.VendorRepository
	tokens  ports.TokenIssuer
	audit   ports.AuditRepository
	logger  zerolog.Logger
}

func NewAuthService(users ports.UserRepository, vendors ports.VendorRepository, tokens ports.TokenIssuer, audit ports.AuditRepository, logger zerolog.Logger) *AuthService {
	return &AuthService{users: users, vendors: vendors, tokens: tokens, audit: audit, logger: logger}
}

func (s *AuthService) Login(ctx context.Context, email, password, userType string) (*ports.LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if userType == domain.UserTypeVendor {
		return loginVendor(ctx, s.vendors, s.tokens, s.logger, email, password)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !CheckPassword(user.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, domain.ErrAccountDisabled
	}

	now := time.Now().UTC()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.ID).Msg("failed to record last login")
	} else {
		user.LastLogin = &now
	}
	user.Permissions, _ = domain.PermissionsForRole(user.Role)

	pair, err := issuePair(s.tokens, user.Identity())
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", user.ID).Str("role", user.Role).Msg("user logged in")
	return &ports.LoginResult{Tokens: pair, User: user}, nil
}

// Refresh re-reads the principal so that deleted or deactivated accounts
// cannot rotate their way back in.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*ports.LoginResult, error) {
	claims := s.tokens.VerifyRefresh(refreshToken)
	if claims == nil {
		return nil, domain.ErrUnauthenticated
	}

	if claims.UserType == domain.UserTypeVendor {
		v, err := s.vendors.FindByID(ctx, claims.ID)
		if errors.Is(err, domain.ErrVendorNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		if err != nil {
			return nil, err
		}
		if v.LoginGate() != nil {
			return nil, domain.ErrUnauthenticated
		}
		pair, err := issuePair(s.tokens, v.Identity())
		if err != nil {
			return nil, err
		}
		return &ports.LoginResult{Tokens: pair, Vendor: v}, nil
	}

	user, err := s.users.FindByID(ctx, claims.ID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrUnauthenticated
	}
	user.Permissions, _ = domain.PermissionsForRole(user.Role)
	pair, err := issuePair(s.tokens, user.Identity())
	if err != nil {
		return nil, err
	}
	return &ports.LoginResult{Tokens: pair, User: user}, nil
}

func (s *AuthService) Register(ctx context.Context, input ports.RegisterUserInput) (*domain.User, error) {
	email := normalizeEmail(input.Email)
	if !strings.Contains(email, "@") {
		return nil, domain.Invalid("email", "must be a valid email address")
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.Invalid("name", "is required")
	}
	if !domain.IsAdminRole(input.Role) {
		return nil, domain.Invalid("role", "must be one of super_admin, admin, inventory_manager, vendor_manager")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	perms, _ := domain.PermissionsForRole(input.Role)

	now := time.Now().UTC()
	user := &domain.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         input.Role,
		Permissions:  perms,
		IsActive:     true,
		UserType:     domain.UserTypeAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", created.ID).Str("role", created.Role).Msg("user registered")
	return created, nil
}

// Me resolves the current principal of a verified access token.
func (s *AuthService) Me(ctx context.Context, who *domain.Identity) (*ports.LoginResult, error) {
	if who == nil {
		return nil, domain.ErrUnauthenticated
	}
	if who.IsVendor() {
		v, err := s.vendors.FindByID(ctx, who.ID)
		if errors.Is(err, domain.ErrVendorNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		if err != nil {
			return nil, err
		}
		return &ports.LoginResult{Vendor: v}, nil
	}

	user, err := s.users.FindByID(ctx, who.ID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	user.Permissions, _ = domain.PermissionsForRole(user.Role)
	return &ports.LoginResult{User: user}, nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		u.Permissions, _ = domain.PermissionsForRole(u.Role)
	}
	return users, nil
}

func (s *AuthService) UpdateUser(ctx context.Context, actor *domain.Identity, id string, input ports.UpdateUserInput) (*domain.User, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	if actor.ID == id && input.IsActive != nil && !*input.IsActive {
		return nil, domain.ErrSelfModification
	}

	var update ports.UserUpdate
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, domain.Invalid("name", "must not be empty")
		}
		update.Name = &name
	}
	if input.Role != nil {
		if !domain.IsAdminRole(*input.Role) {
			return nil, domain.Invalid("role", "must be one of super_admin, admin, inventory_manager, vendor_manager")
		}
		update.Role = input.Role
		update.Permissions, _ = domain.PermissionsForRole(*input.Role)
	}
	if input.IsActive != nil {
		update.IsActive = input.IsActive
	}
	if input.Password != nil {
		if err := validatePassword(*input.Password); err != nil {
			return nil, err
		}
		hash, err := HashPassword(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		update.PasswordHash = &hash
	}

	user, err := s.users.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}
	user.Permissions, _ = domain.PermissionsForRole(user.Role)

	recordAudit(ctx, s.audit, s.logger, &domain.AuditEvent{
		Action:   "user.updated",
		Entity:   "user",
		EntityID: id,
		ActorID:  actor.ID,
		Details:  map[string]any{"role": user.Role, "isActive": user.IsActive},
	})
	return user, nil
}

func (s *AuthService) DeleteUser(ctx context.Context, actor *domain.Identity, id string) error {
	if actor == nil {
		return domain.ErrUnauthenticated
	}
	if actor.ID == id {
		return domain.ErrSelfModification
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	recordAudit(ctx, s.audit, s.logger, &domain.AuditEvent{
		Action:   "user.deleted",
		Entity:   "user",
		EntityID: id,
		ActorID:  actor.ID,
	})
	return nil
}

// EnsureSuperAdmin creates the bootstrap super_admin when no admin users
// exist yet. It is a no-op when email is empty.
func (s *AuthService) EnsureSuperAdmin(ctx context.Context, email, password, name string) error {
	if email == "" {
		return nil
	}
	n, err := s.users.Count(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return nil
	}
	if name == "" {
		name = "Super Admin"
	}
	_, err = s.Register(ctx, ports.RegisterUserInput{
		Email:    email,
		Password: password,
		Name:     name,
		Role:     domain.RoleSuperAdmin,
	})
	if errors.Is(err, domain.ErrUserExists) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("bootstrap super admin: %w", err)
	}
	s.logger.Info().Str("email", normalizeEmail(email)).Msg("bootstrap super admin created")
	return nil
}

func issuePair(tokens ports.TokenIssuer, who *domain.Identity) (ports.TokenPair, error) {
	access, err := tokens.IssueAccess(who)
	if err != nil {
		return ports.TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := tokens.IssueRefresh(who)
	if err != nil {
		return ports.TokenPair{}, fmt.Errorf("issue refresh token: %w", err)
	}
	return ports.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
