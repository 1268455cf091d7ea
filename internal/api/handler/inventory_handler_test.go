package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/aerolux/concierge-admin/internal/api/middleware"
	"github.com/aerolux/concierge-admin/internal/core/domain"
	"github.com/aerolux/concierge-admin/internal/core/ports"
)

func heli(id string) *domain.Item {
	return &domain.Item{ID: id, Category: domain.CategoryHelicopters, Name: "Bell 429", Available: true}
}

func TestInventoryHandler_Create_CategoryRouteUsesSequentialIDs(t *testing.T) {
	svc := &stubInventoryService{createOut: heli("HC003")}
	h := NewInventoryHandler(svc)

	c, rec := newRequest(http.MethodPost, "/api/helicopters",
		`{"name":"Bell 429","category":"yachts","id":"HC999","createdAt":"2020-01-01","seats":7}`, superAdmin)
	if err := ForCategory(domain.CategoryHelicopters)(h.Create)(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if svc.createIn.Category != string(domain.CategoryHelicopters) {
		t.Fatalf("route category must win over body, got %q", svc.createIn.Category)
	}
	if svc.createIn.Scheme != ports.IDSequential {
		t.Fatalf("expected sequential scheme")
	}
	for _, k := range []string{"id", "category", "createdAt"} {
		if _, ok := svc.createIn.Fields[k]; ok {
			t.Fatalf("field %q should have been stripped: %v", k, svc.createIn.Fields)
		}
	}
	if svc.createIn.Fields["seats"] != float64(7) {
		t.Fatalf("category field lost: %v", svc.createIn.Fields)
	}
	if !strings.Contains(rec.Body.String(), `"id":"HC003"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestInventoryHandler_Create_Generic(t *testing.T) {
	svc := &stubInventoryService{createOut: &domain.Item{ID: "65a1b2c3d4e5f60718293a4b", Category: domain.CategoryYachts}}
	h := NewInventoryHandler(svc)

	c, _ := newRequest(http.MethodPost, "/api/inventory", `{"category":"yachts","name":"Azzurra","vendorId":"v-1"}`, superAdmin)
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if svc.createIn.Scheme != ports.IDObjectID || svc.createIn.Category != "yachts" || svc.createIn.VendorID != "v-1" {
		t.Fatalf("unexpected create input: %+v", svc.createIn)
	}

	c, _ = newRequest(http.MethodPost, "/api/inventory", `{"name":"No category"}`, superAdmin)
	if err := h.Create(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for a missing category, got %v", err)
	}

	c, _ = newRequest(http.MethodPost, "/api/inventory", `["not","an","object"]`, superAdmin)
	var he *echo.HTTPError
	if err := h.Create(c); !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a non-object body, got %v", err)
	}
}

func TestInventoryHandler_List(t *testing.T) {
	svc := &stubInventoryService{listOut: &ports.ListItemsResult{
		Items: []*domain.Item{heli("HC001")}, Total: 41, Page: 3, Limit: 20, TotalPages: 3,
	}}
	h := NewInventoryHandler(svc)

	c, rec := newRequest(http.MethodGet, "/api/inventory?category=helicopters&search=bell&status=available&page=3&limit=abc", "", vendorWho)
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	want := ports.ListItemsInput{Search: "bell", Category: "helicopters", Status: "available", Page: 3, Limit: 0}
	if svc.listIn != want {
		t.Fatalf("unexpected list input: %+v", svc.listIn)
	}

	var resp struct {
		Data       []map[string]any `json:"data"`
		Pagination struct {
			Total      int `json:"total"`
			Page       int `json:"page"`
			Limit      int `json:"limit"`
			TotalPages int `json:"totalPages"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Data) != 1 || resp.Pagination.Total != 41 || resp.Pagination.TotalPages != 3 {
		t.Fatalf("unexpected response: %+v", resp)
	}

	c, _ = newRequest(http.MethodGet, "/api/yachts?category=helicopters", "", vendorWho)
	if err := ForCategory(domain.CategoryYachts)(h.List)(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if svc.listIn.Category != "yachts" {
		t.Fatalf("category route must ignore the query override, got %q", svc.listIn.Category)
	}
}

func TestInventoryHandler_Update(t *testing.T) {
	svc := &stubInventoryService{updateOut: &ports.UpdateItemResult{Item: heli("HC001"), Modified: false}}
	h := NewInventoryHandler(svc)

	c, rec := newRequest(http.MethodPut, "/api/helicopters/HC001", `{"available":true,"vendorId":"v-9"}`, vendorWho)
	c.SetParamNames("id")
	c.SetParamValues("HC001")
	if err := ForCategory(domain.CategoryHelicopters)(h.Update)(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if _, ok := svc.updateIn["vendorId"]; ok {
		t.Fatalf("ownership must not be reassignable through update")
	}
	if svc.getCat != "helicopters" || svc.getID != "HC001" {
		t.Fatalf("unexpected target: %s/%s", svc.getCat, svc.getID)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["modified"] != false {
		t.Fatalf("expected modified=false, got %v", resp)
	}
	if item, ok := resp["item"].(map[string]any); !ok || item["id"] != "HC001" {
		t.Fatalf("expected item in response, got %v", resp)
	}
}

func TestInventoryHandler_GetAndDelete(t *testing.T) {
	svc := &stubInventoryService{}
	h := NewInventoryHandler(svc)

	c, _ := newRequest(http.MethodGet, "/api/inventory/HC404", "", superAdmin)
	c.SetParamNames("id")
	c.SetParamValues("HC404")
	if err := h.Get(c); !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
	if svc.getCat != "" {
		t.Fatalf("generic route must not pin a category, got %q", svc.getCat)
	}

	svc.deleteErr = domain.ErrForbidden
	c, _ = newRequest(http.MethodDelete, "/api/inventory/HC001", "", vendorWho)
	c.SetParamNames("id")
	c.SetParamValues("HC001")
	if err := h.Delete(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	svc.deleteErr = nil
	c, rec := newRequest(http.MethodDelete, "/api/yachts/YT001", "", superAdmin)
	c.SetParamNames("id")
	c.SetParamValues("YT001")
	if err := ForCategory(domain.CategoryYachts)(h.Delete)(c); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if rec.Code != http.StatusOK || svc.getCat != "yachts" {
		t.Fatalf("unexpected delete: code=%d cat=%s", rec.Code, svc.getCat)
	}
}

func TestInventoryHandler_AttachImage(t *testing.T) {
	item := heli("HC001")
	item.Images = []string{"http://minio:9000/inventory-images/helicopters/HC001/a.jpg"}
	svc := &stubInventoryService{item: item}
	h := NewInventoryHandler(svc)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "a.jpg")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = part.Write([]byte("jpeg-bytes"))
	_ = mw.Close()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/inventory/HC001/images", &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.IdentityKey, superAdmin)
	c.SetParamNames("id")
	c.SetParamValues("HC001")

	if err := h.AttachImage(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if svc.image.Filename != "a.jpg" || svc.imageBytes != "jpeg-bytes" {
		t.Fatalf("upload not forwarded: %+v %q", svc.image, svc.imageBytes)
	}
	if !strings.Contains(rec.Body.String(), "inventory-images/helicopters/HC001/a.jpg") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	c, _ = newRequest(http.MethodPost, "/api/inventory/HC001/images", `{}`, superAdmin)
	c.SetParamNames("id")
	c.SetParamValues("HC001")
	if err := h.AttachImage(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error without a file, got %v", err)
	}
}
