package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerolux/concierge-admin/internal/core/domain"
	"github.com/aerolux/concierge-admin/internal/core/ports"
	"github.com/aerolux/concierge-admin/internal/infrastructure/broadcast"
	"github.com/aerolux/concierge-admin/internal/infrastructure/http/handlers"
	"github.com/aerolux/concierge-admin/internal/pkg/config"
)

type tokenTable map[string]*domain.Identity

func (t tokenTable) Verify(token string) *domain.Identity { return t[token] }

var routerTokens = tokenTable{
	"root":   {ID: "u-root", Role: domain.RoleSuperAdmin, UserType: domain.UserTypeAdmin},
	"vm":     {ID: "u-vm", Role: domain.RoleVendorManager, Permissions: []string{domain.PermDashboard, domain.PermVendors}, UserType: domain.UserTypeAdmin},
	"vendor": {ID: "v-1", Role: domain.RoleVendor, Permissions: []string{domain.PermInventory}, UserType: domain.UserTypeVendor},
}

// The embedded interfaces satisfy the ports; tests override only what the
// routes under test reach.
type routerAuth struct{ ports.AuthService }

func (routerAuth) Login(context.Context, string, string, string) (*ports.LoginResult, error) {
	return nil, domain.ErrInvalidCredentials
}

func (routerAuth) ListUsers(context.Context) ([]*domain.User, error) {
	return []*domain.User{}, nil
}

type routerVendors struct{ ports.VendorService }

func (routerVendors) List(context.Context, ports.VendorFilter) ([]*domain.Vendor, error) {
	return nil, nil
}

type routerInventory struct {
	ports.InventoryService
	created ports.CreateItemInput
}

func (r *routerInventory) Create(_ context.Context, _ *domain.Identity, in ports.CreateItemInput) (*domain.Item, error) {
	r.created = in
	return &domain.Item{ID: "HC001", Category: domain.Category(in.Category)}, nil
}

func newTestRouter(t *testing.T, inv *routerInventory) *echo.Echo {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewRouter(Deps{
		Config: &config.Config{
			AllowedOrigins: []string{"*"},
			RateLimit:      config.RateLimitConfig{LoginPerSecond: 0.001, LoginBurst: 1},
		},
		Tokens:     routerTokens,
		Auth:       routerAuth{},
		Vendors:    routerVendors{},
		Inventory:  inv,
		Hub:        broadcast.NewHub(4, zerolog.Nop()),
		Checks:     map[string]handlers.Check{"noop": func(context.Context) error { return nil }},
		Logger:     zerolog.Nop(),
		Registerer: reg,
		Gatherer:   reg,
	})
}

func serve(e *echo.Echo, method, target, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRouter_PublicEndpoints(t *testing.T) {
	e := newTestRouter(t, &routerInventory{})

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/health", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/health/ready", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/metrics", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/api/vendors", "", "").Code)
}

func TestRouter_AccessControl(t *testing.T) {
	e := newTestRouter(t, &routerInventory{})

	tests := []struct {
		name   string
		method string
		target string
		token  string
		want   int
	}{
		{"inventory without token", http.MethodGet, "/api/inventory", "", http.StatusUnauthorized},
		{"inventory with unknown token", http.MethodGet, "/api/inventory", "forged", http.StatusUnauthorized},
		{"vendor manager lacks inventory", http.MethodGet, "/api/helicopters", "vm", http.StatusForbidden},
		{"vendor cannot manage vendors", http.MethodDelete, "/api/vendors/v-2", "vendor", http.StatusForbidden},
		{"vendor cannot list users", http.MethodGet, "/api/auth/users", "vendor", http.StatusForbidden},
		{"vendor manager is not super admin", http.MethodGet, "/api/auth/users", "vm", http.StatusForbidden},
		{"super admin lists users", http.MethodGet, "/api/auth/users", "root", http.StatusOK},
		{"query token ignored on inventory", http.MethodGet, "/api/inventory?token=root", "", http.StatusUnauthorized},
		{"query token ignored on users", http.MethodGet, "/api/auth/users?token=root", "", http.StatusUnauthorized},
		{"event stream requires a token", http.MethodGet, "/api/inventory/events", "", http.StatusUnauthorized},
		{"event stream accepts query token", http.MethodGet, "/api/inventory/events?token=vm", "", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(e, tt.method, tt.target, tt.token, "")
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			if tt.want >= 400 {
				assert.Contains(t, rec.Body.String(), `"error"`)
			}
		})
	}
}

func TestRouter_CategoryRouteCreatesSequentialItem(t *testing.T) {
	inv := &routerInventory{}
	e := newTestRouter(t, inv)

	rec := serve(e, http.MethodPost, "/api/helicopters", "vendor", `{"name":"Bell 429","description":"twin"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, string(domain.CategoryHelicopters), inv.created.Category)
	assert.Equal(t, ports.IDSequential, inv.created.Scheme)
}

func TestRouter_LoginIsRateLimited(t *testing.T) {
	e := newTestRouter(t, &routerInventory{})
	body := `{"email":"a@example.com","password":"nope"}`

	first := serve(e, http.MethodPost, "/api/auth/login", "", body)
	assert.Equal(t, http.StatusUnauthorized, first.Code)
	assert.Contains(t, first.Body.String(), "invalid credentials")

	second := serve(e, http.MethodPost, "/api/auth/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}
