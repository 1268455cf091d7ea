package handler

import (
	"github.com/aerolux/concierge-admin/internal/core/domain"
	"github.com/aerolux/concierge-admin/internal/core/ports"
)

type paginationResponse struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

type listItemsResponse struct {
	Data       []*domain.Item     `json:"data"`
	Pagination paginationResponse `json:"pagination"`
}

type updateItemResponse struct {
	Item     *domain.Item `json:"item"`
	Modified bool         `json:"modified"`
}

// createItemRequest documents the create body for swagger. The body is bound
// as a free-form object because the allowed fields depend on the category.
type createItemRequest struct {
	Category    string   `json:"category" example:"yachts"`
	Name        string   `json:"name" example:"Azzurra"`
	Description string   `json:"description" example:"42m motor yacht"`
	Available   *bool    `json:"available"`
	Tags        []string `json:"tags"`
	VendorID    string   `json:"vendorId"`
}

func toListResponse(r *ports.ListItemsResult) listItemsResponse {
	return listItemsResponse{
		Data: r.Items,
		Pagination: paginationResponse{
			Total:      r.Total,
			Page:       r.Page,
			Limit:      r.Limit,
			TotalPages: r.TotalPages,
		},
	}
}

// splitCreateBody separates the routing keys from the item fields.
func splitCreateBody(body map[string]any) (category, vendorID string, fields map[string]any) {
	category, _ = body["category"].(string)
	vendorID, _ = body["vendorId"].(string)
	fields = make(map[string]any, len(body))
	for k, v := range body {
		switch k {
		case "category", "vendorId", "id", "_id", "createdAt", "updatedAt":
			continue
		}
		fields[k] = v
	}
	return category, vendorID, fields
}
