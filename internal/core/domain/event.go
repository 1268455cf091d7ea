package domain

import "time"

// Inventory mutation kinds published on the live-update stream.
const (
	EventItemCreated = "item.created"
	EventItemUpdated = "item.updated"
	EventItemDeleted = "item.deleted"
)

// InventoryEvent is a best-effort notification of an inventory mutation.
type InventoryEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Category  Category  `json:"category"`
	ItemID    string    `json:"itemId"`
	VendorID  string    `json:"vendorId,omitempty"`
	Item      *Item     `json:"item,omitempty"`
	ActorID   string    `json:"actorId"`
	Timestamp time.Time `json:"timestamp"`
}

// AuditEvent records a state change in the audit trail.
type AuditEvent struct {
	Action     string
	Entity     string
	EntityID   string
	ActorID    string
	Details    map[string]any
	OccurredAt time.Time
}
