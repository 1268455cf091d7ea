package domain

import (
	"slices"
	"time"
)

// User types carried in tokens.
const (
	UserTypeAdmin  = "admin"
	UserTypeVendor = "vendor"
)

// Built-in roles.
const (
	RoleSuperAdmin       = "super_admin"
	RoleAdmin            = "admin"
	RoleInventoryManager = "inventory_manager"
	RoleVendorManager    = "vendor_manager"
	RoleVendor           = "vendor"
)

// Capabilities checked by the access gate.
const (
	PermDashboard = "dashboard"
	PermInventory = "inventory"
	PermVendors   = "vendors"
	PermUsers     = "users"
	PermAnalytics = "analytics"
	PermSettings  = "settings"
)

// rolePermissions is the fixed role table. Admin-type principals never carry
// permissions that are not derived from it.
var rolePermissions = map[string][]string{
	RoleSuperAdmin:       {PermDashboard, PermInventory, PermVendors, PermUsers, PermAnalytics, PermSettings},
	RoleAdmin:            {PermDashboard, PermInventory, PermVendors, PermAnalytics},
	RoleInventoryManager: {PermDashboard, PermInventory},
	RoleVendorManager:    {PermDashboard, PermVendors},
	RoleVendor:           {PermInventory},
}

// PermissionsForRole returns a copy of the permission list for role and
// whether the role is known.
func PermissionsForRole(role string) ([]string, bool) {
	perms, ok := rolePermissions[role]
	if !ok {
		return nil, false
	}
	return slices.Clone(perms), true
}

// IsAdminRole reports whether role may be assigned to an admin-type user.
func IsAdminRole(role string) bool {
	_, ok := rolePermissions[role]
	return ok && role != RoleVendor
}

// User models an admin-type principal.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	Permissions  []string   `json:"permissions"`
	IsActive     bool       `json:"isActive"`
	UserType     string     `json:"userType"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Identity is the authenticated view of a principal, decoded from an access
// token. It is what every access decision is made against.
type Identity struct {
	ID                 string
	Email              string
	Role               string
	Permissions        []string
	UserType           string
	BusinessName       string
	VerificationStatus string
	ServiceCategories  []string
}

// IsVendor reports whether the identity belongs to a vendor principal.
func (i *Identity) IsVendor() bool {
	return i != nil && i.UserType == UserTypeVendor
}

// Authorize is the access gate: super_admin passes every check, everyone
// else needs capability in the embedded permission list.
func (i *Identity) Authorize(capability string) error {
	if i == nil {
		return ErrUnauthenticated
	}
	if i.Role == RoleSuperAdmin {
		return nil
	}
	if slices.Contains(i.Permissions, capability) {
		return nil
	}
	return ErrForbidden
}

// Identity builds the token identity for u.
func (u *User) Identity() *Identity {
	perms, _ := PermissionsForRole(u.Role)
	return &Identity{
		ID:          u.ID,
		Email:       u.Email,
		Role:        u.Role,
		Permissions: perms,
		UserType:    UserTypeAdmin,
	}
}
