package ports

import (
	"context"
	"time"

	"github.com/aerolux/concierge-admin/internal/core/domain"
)

// UserUpdate carries the mutable fields of an admin-type user. Nil fields are
// left untouched.
type UserUpdate struct {
	Name         *string
	Role         *string
	Permissions  []string
	IsActive     *bool
	PasswordHash *string
}

// UserRepository defines persistence for admin-type principals.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, id string, update UserUpdate) (*domain.User, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// VendorFilter narrows vendor listings.
type VendorFilter struct {
	VerificationStatus string // empty = any
	Search             string // partial match on business name or email
}

// VendorRepository defines persistence for vendor principals.
type VendorRepository interface {
	Create(ctx context.Context, v *domain.Vendor) (*domain.Vendor, error)
	FindByEmail(ctx context.Context, email string) (*domain.Vendor, error)
	FindByID(ctx context.Context, id string) (*domain.Vendor, error)
	List(ctx context.Context, filter VendorFilter) ([]*domain.Vendor, error)
	// Save replaces the vendor document in a single write.
	Save(ctx context.Context, v *domain.Vendor) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}
