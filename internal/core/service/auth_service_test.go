package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/aerolux/concierge-admin/internal/core/domain"
	"github.com/aerolux/concierge-admin/internal/core/ports"
)

type authFixture struct {
	users   *stubUserRepo
	vendors *stubVendorRepo
	tokens  *TokenService
	audit   *stubAudit
	svc     *AuthService
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		users:   newStubUserRepo(),
		vendors: newStubVendorRepo(),
		tokens:  NewTokenService("secret", time.Hour, 2*time.Hour),
		audit:   &stubAudit{},
	}
	f.svc = NewAuthService(f.users, f.vendors, f.tokens, f.audit, zerolog.Nop())
	return f
}

func (f *authFixture) register(t *testing.T, email, role string) *domain.User {
	t.Helper()
	u, err := f.svc.Register(context.Background(), ports.RegisterUserInput{
		Email:    email,
		Password: "password123",
		Name:     "Test User",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	return u
}

func TestAuthService_Register_Success(t *testing.T) {
	f := newAuthFixture()

	user := f.register(t, "  Carol@Example.com ", domain.RoleInventoryManager)
	if user.Email != "carol@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if user.PasswordHash == "password123" || !CheckPassword(user.PasswordHash, "password123") {
		t.Fatalf("expected password to be hashed")
	}
	if !user.IsActive || user.UserType != domain.UserTypeAdmin {
		t.Fatalf("unexpected user state: %+v", user)
	}
	want, _ := domain.PermissionsForRole(domain.RoleInventoryManager)
	if len(user.Permissions) != len(want) {
		t.Fatalf("expected permissions %v, got %v", want, user.Permissions)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	cases := map[string]ports.RegisterUserInput{
		"bad email":    {Email: "nope", Password: "password123", Name: "A", Role: domain.RoleAdmin},
		"short pass":   {Email: "a@example.com", Password: "short", Name: "A", Role: domain.RoleAdmin},
		"missing name": {Email: "a@example.com", Password: "password123", Role: domain.RoleAdmin},
		"vendor role":  {Email: "a@example.com", Password: "password123", Name: "A", Role: domain.RoleVendor},
		"unknown role": {Email: "a@example.com", Password: "password123", Name: "A", Role: "root"},
	}
	for name, in := range cases {
		if _, err := f.svc.Register(ctx, in); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	f := newAuthFixture()
	f.register(t, "bob@example.com", domain.RoleAdmin)

	_, err := f.svc.Register(context.Background(), ports.RegisterUserInput{
		Email: "BOB@example.com", Password: "password456", Name: "Bob", Role: domain.RoleAdmin,
	})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	f := newAuthFixture()
	f.register(t, "carol@example.com", domain.RoleAdmin)

	res, err := f.svc.Login(context.Background(), "carol@example.com", "password123", "")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if res.Tokens.AccessToken == "" || res.Tokens.RefreshToken == "" {
		t.Fatalf("expected both tokens, got %+v", res.Tokens)
	}
	if res.User == nil || res.User.LastLogin == nil {
		t.Fatalf("expected user with last login, got %+v", res.User)
	}

	who := f.tokens.Verify(res.Tokens.AccessToken)
	if who == nil || who.Role != domain.RoleAdmin {
		t.Fatalf("unexpected token identity: %+v", who)
	}
	if err := who.Authorize(domain.PermVendors); err != nil {
		t.Fatalf("admin should reach vendors: %v", err)
	}
	if err := who.Authorize(domain.PermUsers); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("admin should not reach users, got %v", err)
	}
}

func TestAuthService_Login_Failures(t *testing.T) {
	f := newAuthFixture()
	u := f.register(t, "dave@example.com", domain.RoleAdmin)
	ctx := context.Background()

	if _, err := f.svc.Login(ctx, "dave@example.com", "badpass", ""); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := f.svc.Login(ctx, "ghost@example.com", "password123", ""); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}

	inactive := false
	if _, err := f.users.Update(ctx, u.ID, ports.UserUpdate{IsActive: &inactive}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := f.svc.Login(ctx, "dave@example.com", "password123", ""); !errors.Is(err, domain.ErrAccountDisabled) {
		t.Fatalf("expected ErrAccountDisabled, got %v", err)
	}
}

func TestAuthService_Login_VendorDelegation(t *testing.T) {
	f := newAuthFixture()
	hash, _ := HashPassword("vendorpass")
	v, _ := f.vendors.Create(context.Background(), &domain.Vendor{
		Email:              "fleet@example.com",
		PasswordHash:       hash,
		BusinessName:       "Blue Fleet",
		VerificationStatus: domain.VerificationVerified,
		AccountStatus:      domain.AccountActive,
		AdminPanelAccess:   true,
	})

	res, err := f.svc.Login(context.Background(), "fleet@example.com", "vendorpass", domain.UserTypeVendor)
	if err != nil {
		t.Fatalf("vendor login failed: %v", err)
	}
	if res.Vendor == nil || res.Vendor.ID != v.ID || res.User != nil {
		t.Fatalf("expected vendor result, got %+v", res)
	}
}

func TestAuthService_Refresh(t *testing.T) {
	f := newAuthFixture()
	u := f.register(t, "erin@example.com", domain.RoleVendorManager)
	ctx := context.Background()

	res, err := f.svc.Login(ctx, "erin@example.com", "password123", "")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	rotated, err := f.svc.Refresh(ctx, res.Tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if f.tokens.Verify(rotated.Tokens.AccessToken) == nil {
		t.Fatalf("rotated access token does not verify")
	}

	if _, err := f.svc.Refresh(ctx, res.Tokens.AccessToken); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("access token must not refresh, got %v", err)
	}

	inactive := false
	_, _ = f.users.Update(ctx, u.ID, ports.UserUpdate{IsActive: &inactive})
	if _, err := f.svc.Refresh(ctx, res.Tokens.RefreshToken); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("deactivated user must not refresh, got %v", err)
	}

	_ = f.users.Delete(ctx, u.ID)
	if _, err := f.svc.Refresh(ctx, res.Tokens.RefreshToken); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("deleted user must not refresh, got %v", err)
	}
}

func TestAuthService_Refresh_SuspendedVendor(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	v, _ := f.vendors.Create(ctx, &domain.Vendor{
		Email:              "fleet@example.com",
		VerificationStatus: domain.VerificationVerified,
		AccountStatus:      domain.AccountActive,
		AdminPanelAccess:   true,
	})
	refresh, _ := f.tokens.IssueRefresh(v.Identity())

	if _, err := f.svc.Refresh(ctx, refresh); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	v.AccountStatus = domain.AccountSuspended
	_ = f.vendors.Save(ctx, v)
	if _, err := f.svc.Refresh(ctx, refresh); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("suspended vendor must not refresh, got %v", err)
	}
}

func TestAuthService_UpdateUser_SelfDeactivationRejected(t *testing.T) {
	f := newAuthFixture()
	root := f.register(t, "root@example.com", domain.RoleSuperAdmin)
	actor := root.Identity()

	inactive := false
	_, err := f.svc.UpdateUser(context.Background(), actor, root.ID, ports.UpdateUserInput{IsActive: &inactive})
	if !errors.Is(err, domain.ErrSelfModification) {
		t.Fatalf("expected ErrSelfModification, got %v", err)
	}

	stored, _ := f.users.FindByID(context.Background(), root.ID)
	if !stored.IsActive {
		t.Fatalf("self-deactivation must not change state")
	}
	if len(f.audit.events) != 0 {
		t.Fatalf("rejected update must not be audited")
	}
}

func TestAuthService_UpdateUser_RoleRederivesPermissions(t *testing.T) {
	f := newAuthFixture()
	root := f.register(t, "root@example.com", domain.RoleSuperAdmin)
	target := f.register(t, "ops@example.com", domain.RoleInventoryManager)

	role := domain.RoleVendorManager
	updated, err := f.svc.UpdateUser(context.Background(), root.Identity(), target.ID, ports.UpdateUserInput{Role: &role})
	if err != nil {
		t.Fatalf("UpdateUser returned error: %v", err)
	}
	want, _ := domain.PermissionsForRole(domain.RoleVendorManager)
	if updated.Role != role || len(updated.Permissions) != len(want) || updated.Permissions[1] != domain.PermVendors {
		t.Fatalf("unexpected user after role change: %+v", updated)
	}
	if len(f.audit.events) != 1 || f.audit.events[0].Action != "user.updated" {
		t.Fatalf("expected one audit event, got %+v", f.audit.events)
	}

	bad := domain.RoleVendor
	if _, err := f.svc.UpdateUser(context.Background(), root.Identity(), target.ID, ports.UpdateUserInput{Role: &bad}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for vendor role, got %v", err)
	}
}

func TestAuthService_UpdateUser_Password(t *testing.T) {
	f := newAuthFixture()
	root := f.register(t, "root@example.com", domain.RoleSuperAdmin)
	target := f.register(t, "ops@example.com", domain.RoleAdmin)

	pw := "brand-new-pass"
	if _, err := f.svc.UpdateUser(context.Background(), root.Identity(), target.ID, ports.UpdateUserInput{Password: &pw}); err != nil {
		t.Fatalf("UpdateUser returned error: %v", err)
	}
	if _, err := f.svc.Login(context.Background(), "ops@example.com", pw, ""); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}

func TestAuthService_DeleteUser(t *testing.T) {
	f := newAuthFixture()
	root := f.register(t, "root@example.com", domain.RoleSuperAdmin)
	target := f.register(t, "ops@example.com", domain.RoleAdmin)
	ctx := context.Background()

	if err := f.svc.DeleteUser(ctx, root.Identity(), root.ID); !errors.Is(err, domain.ErrSelfModification) {
		t.Fatalf("expected ErrSelfModification, got %v", err)
	}
	if err := f.svc.DeleteUser(ctx, root.Identity(), target.ID); err != nil {
		t.Fatalf("DeleteUser returned error: %v", err)
	}
	if _, err := f.users.FindByID(ctx, target.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected user to be gone, got %v", err)
	}
	if err := f.svc.DeleteUser(ctx, root.Identity(), target.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthService_Me(t *testing.T) {
	f := newAuthFixture()
	u := f.register(t, "carol@example.com", domain.RoleAdmin)
	ctx := context.Background()

	res, err := f.svc.Me(ctx, u.Identity())
	if err != nil {
		t.Fatalf("Me returned error: %v", err)
	}
	if res.User == nil || res.User.ID != u.ID {
		t.Fatalf("unexpected result: %+v", res)
	}

	if _, err := f.svc.Me(ctx, nil); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthService_EnsureSuperAdmin(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	if err := f.svc.EnsureSuperAdmin(ctx, "root@example.com", "bootstrap-pass", ""); err != nil {
		t.Fatalf("EnsureSuperAdmin returned error: %v", err)
	}
	if err := f.svc.EnsureSuperAdmin(ctx, "other@example.com", "bootstrap-pass", ""); err != nil {
		t.Fatalf("second EnsureSuperAdmin returned error: %v", err)
	}

	users, _ := f.svc.ListUsers(ctx)
	if len(users) != 1 || users[0].Role != domain.RoleSuperAdmin || users[0].Email != "root@example.com" {
		t.Fatalf("expected a single bootstrap super admin, got %+v", users)
	}
}
