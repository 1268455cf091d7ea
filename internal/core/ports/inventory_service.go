package ports

import (
	"context"
	"io"

	"github.com/aerolux/concierge-admin/internal/core/domain"
)

// IDScheme selects how a new item id is produced.
type IDScheme int

const (
	// IDObjectID generates a 24-hex identifier (generic /inventory path).
	IDObjectID IDScheme = iota
	// IDSequential allocates <PREFIX><seq> (per-category path).
	IDSequential
)

// CreateItemInput carries the raw client fields for a new item.
type CreateItemInput struct {
	Category string
	Fields   map[string]any
	VendorID string // honored only for admin actors
	Scheme   IDScheme
}

// UpdateItemResult reports whether an update changed anything.
type UpdateItemResult struct {
	Item     *domain.Item
	Modified bool
}

// ListItemsInput carries all parameters for the list endpoints.
type ListItemsInput struct {
	Search   string
	Category string // empty = fan out across every category
	Status   string // "", "available" or "unavailable"
	Page     int
	Limit    int
}

// ListItemsResult is returned by List.
type ListItemsResult struct {
	Items      []*domain.Item
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// ImageUpload is a file attached to an item.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// InventoryService defines use-case operations for inventory items. The
// category argument of Get/Update/Delete may be empty when the caller does
// not know it.
type InventoryService interface {
	Create(ctx context.Context, actor *domain.Identity, input CreateItemInput) (*domain.Item, error)
	Get(ctx context.Context, actor *domain.Identity, category, id string) (*domain.Item, error)
	Update(ctx context.Context, actor *domain.Identity, category, id string, fields map[string]any) (*UpdateItemResult, error)
	Delete(ctx context.Context, actor *domain.Identity, category, id string) error
	List(ctx context.Context, actor *domain.Identity, input ListItemsInput) (*ListItemsResult, error)
	AttachImage(ctx context.Context, actor *domain.Identity, category, id string, img ImageUpload) (*domain.Item, error)
}

// EventPublisher receives inventory mutations for live subscribers.
// Publish must never block the caller.
type EventPublisher interface {
	Publish(event domain.InventoryEvent)
}

// ImageStore persists item images and returns their public URL.
type ImageStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
}
