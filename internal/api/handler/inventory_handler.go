package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aerolux/concierge-admin/internal/core/domain"
	"github.com/aerolux/concierge-admin/internal/core/ports"
	"github.com/aerolux/concierge-admin/internal/pkg/metrics"
)

// categoryKey holds the category slug for routes mounted under /:category.
const categoryKey = "category"

// InventoryHandler serves both the generic /inventory routes and the
// per-category routes. Per-category routes are mounted behind ForCategory.
type InventoryHandler struct {
	service ports.InventoryService
}

func NewInventoryHandler(service ports.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: service}
}

// ForCategory pins every request of a route group to one category.
func ForCategory(slug domain.Category) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(categoryKey, string(slug))
			return next(c)
		}
	}
}

// routeCategory returns the category fixed by the route, if any.
func routeCategory(c echo.Context) string {
	slug, _ := c.Get(categoryKey).(string)
	return slug
}

// List handles GET /inventory and GET /{category}.
//
// @Summary      List inventory
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        category  query     string  false  "Category slug; omitted = all categories"
// @Param        search    query     string  false  "Case-insensitive text search"
// @Param        status    query     string  false  "available | unavailable"
// @Param        page      query     int     false  "Page (default 1)"
// @Param        limit     query     int     false  "Page size (default 20, max 100)"
// @Success      200       {object}  listItemsResponse
// @Failure      400       {object}  errorResponse
// @Failure      401       {object}  errorResponse
// @Failure      403       {object}  errorResponse
// @Router       /inventory [get]
func (h *InventoryHandler) List(c echo.Context) error {
	who, err := actor(c)
	if err != nil {
		return err
	}

	category := routeCategory(c)
	if category == "" {
		category = c.QueryParam("category")
	}

	result, err := h.service.List(c.Request().Context(), who, ports.ListItemsInput{
		Search:   c.QueryParam("search"),
		Category: category,
		Status:   c.QueryParam("status"),
		Page:     queryInt(c, "page"),
		Limit:    queryInt(c, "limit"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListResponse(result))
}

// Create handles POST /inventory and POST /{category}. The generic route
// takes the category from the body and assigns a generated id; category
// routes assign the next <PREFIX><seq> id.
//
// @Summary      Create an inventory item
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createItemRequest  true  "Item fields; extra fields depend on the category"
// @Success      201   {object}  map[string]any
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /inventory [post]
func (h *InventoryHandler) Create(c echo.Context) error {
	who, err := actor(c)
	if err != nil {
		return err
	}
	body, err := bindObject(c)
	if err != nil {
		return err
	}

	category, vendorID, fields := splitCreateBody(body)
	scheme := ports.IDObjectID
	if slug := routeCategory(c); slug != "" {
		category = slug
		scheme = ports.IDSequential
	}
	if category == "" {
		return domain.Invalid("category", "is required")
	}

	item, err := h.service.Create(c.Request().Context(), who, ports.CreateItemInput{
		Category: category,
		Fields:   fields,
		VendorID: vendorID,
		Scheme:   scheme,
	})
	if err != nil {
		return err
	}
	metrics.InventoryMutationsTotal.WithLabelValues(string(item.Category), "create").Inc()
	return c.JSON(http.StatusCreated, item)
}

// Get handles GET /inventory/:id and GET /{category}/:id.
//
// @Summary      Get an inventory item
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Item id (24-hex or prefixed, e.g. HC003)"
// @Success      200  {object}  map[string]any
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /inventory/{id} [get]
func (h *InventoryHandler) Get(c echo.Context) error {
	who, err := actor(c)
	if err != nil {
		return err
	}
	item, err := h.service.Get(c.Request().Context(), who, routeCategory(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

// Update handles PUT /inventory/:id and PUT /{category}/:id.
//
// @Summary      Update an inventory item
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Item id"
// @Param        body  body      map[string]any  true  "Fields to change"
// @Success      200   {object}  updateItemResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /inventory/{id} [put]
func (h *InventoryHandler) Update(c echo.Context) error {
	who, err := actor(c)
	if err != nil {
		return err
	}
	body, err := bindObject(c)
	if err != nil {
		return err
	}
	delete(body, "vendorId")

	result, err := h.service.Update(c.Request().Context(), who, routeCategory(c), c.Param("id"), body)
	if err != nil {
		return err
	}
	if result.Modified {
		metrics.InventoryMutationsTotal.WithLabelValues(string(result.Item.Category), "update").Inc()
	}
	return c.JSON(http.StatusOK, updateItemResponse{Item: result.Item, Modified: result.Modified})
}

// Delete handles DELETE /inventory/:id and DELETE /{category}/:id.
//
// @Summary      Delete an inventory item
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Item id"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /inventory/{id} [delete]
func (h *InventoryHandler) Delete(c echo.Context) error {
	who, err := actor(c)
	if err != nil {
		return err
	}
	category := routeCategory(c)
	if err := h.service.Delete(c.Request().Context(), who, category, c.Param("id")); err != nil {
		return err
	}
	if category == "" {
		category = "unknown"
	}
	metrics.InventoryMutationsTotal.WithLabelValues(category, "delete").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "item deleted"})
}

// AttachImage handles POST /inventory/:id/images (multipart field "image").
//
// @Summary      Upload an item image
// @Tags         inventory
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string  true  "Item id"
// @Param        image  formData  file    true  "Image file"
// @Success      200    {object}  map[string]any
// @Failure      400    {object}  errorResponse
// @Failure      404    {object}  errorResponse
// @Failure      503    {object}  errorResponse
// @Router       /inventory/{id}/images [post]
func (h *InventoryHandler) AttachImage(c echo.Context) error {
	who, err := actor(c)
	if err != nil {
		return err
	}
	fh, err := c.FormFile("image")
	if err != nil {
		return domain.Invalid("image", "file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable upload")
	}
	defer f.Close()

	item, err := h.service.AttachImage(c.Request().Context(), who, routeCategory(c), c.Param("id"), ports.ImageUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		return err
	}
	metrics.InventoryMutationsTotal.WithLabelValues(string(item.Category), "image").Inc()
	return c.JSON(http.StatusOK, item)
}

// bindObject decodes a JSON object body without mixing in path or query
// parameters.
func bindObject(c echo.Context) (map[string]any, error) {
	body := make(map[string]any)
	if err := new(echo.DefaultBinder).BindBody(c, &body); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return body, nil
}
