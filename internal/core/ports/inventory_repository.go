package ports

import (
	"context"

	"github.com/aerolux/concierge-admin/internal/core/domain"
)

// ItemQuery carries the per-collection query parameters. The service builds
// one ItemQuery per category it touches.
type ItemQuery struct {
	VendorID  string // empty = no ownership filter (admin); non-empty = vendor scope
	Available *bool  // optional: filter by availability
	Search    string // optional: case-insensitive substring over the category search fields
	Skip      int64  // ignored when Limit == 0
	Limit     int64  // 0 = unpaginated
}

// InventoryRepository is the generic per-category store. Every method is
// parameterized by the resolved category descriptor.
type InventoryRepository interface {
	Insert(ctx context.Context, cat domain.CategoryDescriptor, item *domain.Item) error
	// FindByID accepts either id format. When vendorID is non-empty the item
	// must belong to that vendor.
	FindByID(ctx context.Context, cat domain.CategoryDescriptor, id, vendorID string) (*domain.Item, error)
	// Find returns the matching items sorted newest first plus the total
	// match count.
	Find(ctx context.Context, cat domain.CategoryDescriptor, q ItemQuery) ([]*domain.Item, int64, error)
	// UpdateFields sets the given fields and updatedAt in one write.
	UpdateFields(ctx context.Context, cat domain.CategoryDescriptor, id string, fields map[string]any) (*domain.Item, error)
	AppendImage(ctx context.Context, cat domain.CategoryDescriptor, id, url string) (*domain.Item, error)
	Delete(ctx context.Context, cat domain.CategoryDescriptor, id, vendorID string) error
	// MaxSequence returns the largest <PREFIX><n> sequence in the collection.
	MaxSequence(ctx context.Context, cat domain.CategoryDescriptor) (int64, error)
}

// SequenceAllocator hands out human-readable sequence numbers atomically.
type SequenceAllocator interface {
	Next(ctx context.Context, cat domain.CategoryDescriptor) (int64, error)
}
