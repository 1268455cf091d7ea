package ports

import (
	"context"
	"time"

	"github.com/aerolux/concierge-admin/internal/core/domain"
)

// Notification kinds sent to vendors.
const (
	NotifyVendorApproved = "vendor.approved"
	NotifyVendorRejected = "vendor.rejected"
)

// Notification is the DTO handed to the dispatcher. Password is only set on
// approval and is the sole channel through which the vendor learns it.
type Notification struct {
	Kind         string
	VendorID     string
	Email        string
	BusinessName string
	Password     string
	Reason       string
	CreatedAt    time.Time
}

// NotificationSender delivers a single notification to the external mailer.
type NotificationSender interface {
	Send(ctx context.Context, n Notification) error
}

// NotificationQueue accepts notifications for asynchronous delivery. Enqueue
// never blocks; it reports false when the notification was dropped.
type NotificationQueue interface {
	Enqueue(n Notification) bool
}

// RegisterVendorInput carries a vendor self-registration.
type RegisterVendorInput struct {
	Email             string
	Password          string
	BusinessName      string
	ContactName       string
	Phone             string
	Description       string
	Website           string
	ServiceCategories []string
}

// UpdateVendorInput carries a partial admin update of a vendor. A non-nil
// VerificationStatus runs the lifecycle transition.
type UpdateVendorInput struct {
	BusinessName       *string
	ContactName        *string
	Phone              *string
	Description        *string
	Website            *string
	ServiceCategories  []string
	AccountStatus      *string
	VerificationStatus *string
	Reason             string
}

// VendorService is the vendor lifecycle manager.
type VendorService interface {
	Register(ctx context.Context, input RegisterVendorInput) (*domain.Vendor, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Get(ctx context.Context, id string) (*domain.Vendor, error)
	List(ctx context.Context, filter VendorFilter) ([]*domain.Vendor, error)
	Update(ctx context.Context, actor *domain.Identity, id string, input UpdateVendorInput) (*domain.Vendor, error)
	Transition(ctx context.Context, actor *domain.Identity, id string, next domain.VerificationStatus, reason string) (*domain.Vendor, error)
	Delete(ctx context.Context, actor *domain.Identity, id string) error
}
