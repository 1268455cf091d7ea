package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/aerolux/concierge-admin/internal/api/middleware"
	"github.com/aerolux/concierge-admin/internal/core/domain"
	"github.com/aerolux/concierge-admin/internal/core/ports"
)

var (
	superAdmin = &domain.Identity{ID: "u-root", Email: "root@example.com", Role: domain.RoleSuperAdmin, UserType: domain.UserTypeAdmin}
	vendorMgr  = &domain.Identity{ID: "u-vm", Role: domain.RoleVendorManager, Permissions: []string{domain.PermDashboard, domain.PermVendors}, UserType: domain.UserTypeAdmin}
	vendorWho  = &domain.Identity{ID: "v-1", Role: domain.RoleVendor, Permissions: []string{domain.PermInventory}, UserType: domain.UserTypeVendor}
)

// newRequest builds an echo context with the validator installed and, when
// who is non-nil, the identity the Auth middleware would have stored.
func newRequest(method, target, body string, who *domain.Identity) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if who != nil {
		c.Set(middleware.IdentityKey, who)
	}
	return c, rec
}

type stubAuthService struct {
	loginFn    func(ctx context.Context, email, password, userType string) (*ports.LoginResult, error)
	refreshFn  func(ctx context.Context, token string) (*ports.LoginResult, error)
	registerFn func(ctx context.Context, input ports.RegisterUserInput) (*domain.User, error)
	meFn       func(ctx context.Context, who *domain.Identity) (*ports.LoginResult, error)
	listFn     func(ctx context.Context) ([]*domain.User, error)
	updateFn   func(ctx context.Context, actor *domain.Identity, id string, input ports.UpdateUserInput) (*domain.User, error)
	deleteFn   func(ctx context.Context, actor *domain.Identity, id string) error
}

func (s *stubAuthService) Login(ctx context.Context, email, password, userType string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, email, password, userType)
}

func (s *stubAuthService) Refresh(ctx context.Context, token string) (*ports.LoginResult, error) {
	return s.refreshFn(ctx, token)
}

func (s *stubAuthService) Register(ctx context.Context, input ports.RegisterUserInput) (*domain.User, error) {
	return s.registerFn(ctx, input)
}

func (s *stubAuthService) Me(ctx context.Context, who *domain.Identity) (*ports.LoginResult, error) {
	return s.meFn(ctx, who)
}

func (s *stubAuthService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.listFn(ctx)
}

func (s *stubAuthService) UpdateUser(ctx context.Context, actor *domain.Identity, id string, input ports.UpdateUserInput) (*domain.User, error) {
	return s.updateFn(ctx, actor, id, input)
}

func (s *stubAuthService) DeleteUser(ctx context.Context, actor *domain.Identity, id string) error {
	return s.deleteFn(ctx, actor, id)
}

type stubVendorService struct {
	vendors      map[string]*domain.Vendor
	lastFilter   ports.VendorFilter
	lastUpdate   ports.UpdateVendorInput
	lastNext     domain.VerificationStatus
	registerErr  error
	transitionFn func(v *domain.Vendor, next domain.VerificationStatus) error
}

func newStubVendorService(vendors ...*domain.Vendor) *stubVendorService {
	s := &stubVendorService{vendors: make(map[string]*domain.Vendor)}
	for _, v := range vendors {
		s.vendors[v.ID] = v
	}
	return s
}

func (s *stubVendorService) Register(_ context.Context, input ports.RegisterVendorInput) (*domain.Vendor, error) {
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	v := &domain.Vendor{
		ID:                 "v-new",
		Email:              input.Email,
		BusinessName:       input.BusinessName,
		ContactName:        input.ContactName,
		VerificationStatus: domain.VerificationPending,
		AccountStatus:      domain.AccountActive,
	}
	s.vendors[v.ID] = v
	return v, nil
}

func (s *stubVendorService) Login(_ context.Context, email, password string) (*ports.LoginResult, error) {
	for _, v := range s.vendors {
		if v.Email == email {
			if err := v.LoginGate(); err != nil {
				return nil, err
			}
			return &ports.LoginResult{Tokens: ports.TokenPair{AccessToken: "vendor-access", RefreshToken: "vendor-refresh"}, Vendor: v}, nil
		}
	}
	return nil, domain.ErrInvalidCredentials
}

func (s *stubVendorService) Get(_ context.Context, id string) (*domain.Vendor, error) {
	v, ok := s.vendors[id]
	if !ok {
		return nil, domain.ErrVendorNotFound
	}
	return v, nil
}

func (s *stubVendorService) List(_ context.Context, filter ports.VendorFilter) ([]*domain.Vendor, error) {
	s.lastFilter = filter
	var out []*domain.Vendor
	for _, v := range s.vendors {
		if filter.VerificationStatus != "" && string(v.VerificationStatus) != filter.VerificationStatus {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *stubVendorService) Update(_ context.Context, actor *domain.Identity, id string, input ports.UpdateVendorInput) (*domain.Vendor, error) {
	if err := actor.Authorize(domain.PermVendors); err != nil {
		return nil, err
	}
	s.lastUpdate = input
	v, ok := s.vendors[id]
	if !ok {
		return nil, domain.ErrVendorNotFound
	}
	if input.BusinessName != nil {
		v.BusinessName = *input.BusinessName
	}
	return v, nil
}

func (s *stubVendorService) Transition(_ context.Context, actor *domain.Identity, id string, next domain.VerificationStatus, _ string) (*domain.Vendor, error) {
	if err := actor.Authorize(domain.PermVendors); err != nil {
		return nil, err
	}
	s.lastNext = next
	v, ok := s.vendors[id]
	if !ok {
		return nil, domain.ErrVendorNotFound
	}
	if s.transitionFn != nil {
		if err := s.transitionFn(v, next); err != nil {
			return nil, err
		}
	}
	v.VerificationStatus = next
	return v, nil
}

func (s *stubVendorService) Delete(_ context.Context, actor *domain.Identity, id string) error {
	if err := actor.Authorize(domain.PermVendors); err != nil {
		return err
	}
	if _, ok := s.vendors[id]; !ok {
		return domain.ErrVendorNotFound
	}
	delete(s.vendors, id)
	return nil
}

type stubInventoryService struct {
	createIn   ports.CreateItemInput
	createOut  *domain.Item
	createErr  error
	getCat     string
	getID      string
	item       *domain.Item
	updateIn   map[string]any
	updateOut  *ports.UpdateItemResult
	listIn     ports.ListItemsInput
	listOut    *ports.ListItemsResult
	deleteErr  error
	image      ports.ImageUpload
	imageBytes string
	imageErr   error
}

func (s *stubInventoryService) Create(_ context.Context, actor *domain.Identity, input ports.CreateItemInput) (*domain.Item, error) {
	s.createIn = input
	if s.createErr != nil {
		return nil, s.createErr
	}
	return s.createOut, nil
}

func (s *stubInventoryService) Get(_ context.Context, _ *domain.Identity, category, id string) (*domain.Item, error) {
	s.getCat, s.getID = category, id
	if s.item == nil {
		return nil, domain.ErrItemNotFound
	}
	return s.item, nil
}

func (s *stubInventoryService) Update(_ context.Context, _ *domain.Identity, category, id string, fields map[string]any) (*ports.UpdateItemResult, error) {
	s.getCat, s.getID = category, id
	s.updateIn = fields
	return s.updateOut, nil
}

func (s *stubInventoryService) Delete(_ context.Context, _ *domain.Identity, category, id string) error {
	s.getCat, s.getID = category, id
	return s.deleteErr
}

func (s *stubInventoryService) List(_ context.Context, _ *domain.Identity, input ports.ListItemsInput) (*ports.ListItemsResult, error) {
	s.listIn = input
	return s.listOut, nil
}

func (s *stubInventoryService) AttachImage(_ context.Context, _ *domain.Identity, category, id string, img ports.ImageUpload) (*domain.Item, error) {
	s.getCat, s.getID = category, id
	s.image = img
	b, _ := io.ReadAll(img.Body)
	s.imageBytes = string(b)
	if s.imageErr != nil {
		return nil, s.imageErr
	}
	return s.item, nil
}
