package domain

import (
	"errors"
	"testing"
)

func TestIdentity_Authorize(t *testing.T) {
	capabilities := []string{PermDashboard, PermInventory, PermVendors, PermUsers, PermAnalytics, PermSettings}

	for role := range rolePermissions {
		perms, _ := PermissionsForRole(role)
		who := &Identity{ID: "p1", Role: role, Permissions: perms}
		for _, c := range capabilities {
			err := who.Authorize(c)
			allowed := role == RoleSuperAdmin || contains(perms, c)
			if allowed && err != nil {
				t.Fatalf("%s/%s: expected allow, got %v", role, c, err)
			}
			if !allowed && !errors.Is(err, ErrForbidden) {
				t.Fatalf("%s/%s: expected ErrForbidden, got %v", role, c, err)
			}
		}
	}
}

func TestIdentity_Authorize_SuperAdminBypassesEmptyPermissions(t *testing.T) {
	who := &Identity{Role: RoleSuperAdmin}
	if err := who.Authorize(PermSettings); err != nil {
		t.Fatalf("super_admin must pass every check, got %v", err)
	}
}

func TestIdentity_Authorize_Nil(t *testing.T) {
	var who *Identity
	if err := who.Authorize(PermInventory); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestPermissionsForRole_ReturnsCopy(t *testing.T) {
	perms, ok := PermissionsForRole(RoleAdmin)
	if !ok {
		t.Fatalf("admin must be a known role")
	}
	perms[0] = "tampered"
	again, _ := PermissionsForRole(RoleAdmin)
	if again[0] == "tampered" {
		t.Fatalf("role table must not be mutable through the returned slice")
	}
	if _, ok := PermissionsForRole("root"); ok {
		t.Fatalf("unknown role must not resolve")
	}
	if IsAdminRole(RoleVendor) {
		t.Fatalf("vendor is not an admin role")
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
