package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aerolux/concierge-admin/internal/api/middleware"
	"github.com/aerolux/concierge-admin/internal/core/domain"
	"github.com/aerolux/concierge-admin/internal/core/ports"
	"github.com/aerolux/concierge-admin/internal/pkg/metrics"
)

// VendorHandler serves vendor onboarding, the public directory and the
// admin lifecycle endpoints.
type VendorHandler struct {
	service ports.VendorService
}

func NewVendorHandler(service ports.VendorService) *VendorHandler {
	return &VendorHandler{service: service}
}

// Register handles POST /vendors, the public self-registration.
//
// @Summary      Register as a vendor
// @Tags         vendors
// @Accept       json
// @Produce      json
// @Param        body  body      registerVendorRequest  true  "Vendor application"
// @Success      201   {object}  vendorResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /vendors [post]
func (h *VendorHandler) Register(c echo.Context) error {
	var req registerVendorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	v, err := h.service.Register(c.Request().Context(), ports.RegisterVendorInput{
		Email:             req.Email,
		Password:          req.Password,
		BusinessName:      req.BusinessName,
		ContactName:       req.ContactName,
		Phone:             req.Phone,
		Description:       req.Description,
		Website:           req.Website,
		ServiceCategories: req.ServiceCategories,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, vendorResponse{Vendor: v})
}

// Login handles POST /vendors/login.
//
// @Summary      Vendor login
// @Tags         vendors
// @Accept       json
// @Produce      json
// @Param        body  body      vendorLoginRequest  true  "Credentials"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /vendors/login [post]
func (h *VendorHandler) Login(c echo.Context) error {
	var req vendorLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.Login(c.Request().Context(), req.Email, req.Password)
	metrics.LoginsTotal.WithLabelValues(domain.UserTypeVendor, loginResult(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAuthResponse(result))
}

// List handles GET /vendors. Callers holding the vendors capability see every
// vendor and may filter; everyone else gets the public directory.
//
// @Summary      List vendors
// @Tags         vendors
// @Produce      json
// @Param        status  query     string  false  "Verification status filter (admin only)"
// @Param        search  query     string  false  "Business name or email contains (admin only)"
// @Success      200     {object}  vendorListResponse
// @Failure      400     {object}  errorResponse
// @Router       /vendors [get]
func (h *VendorHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	if canManageVendors(c) {
		vendors, err := h.service.List(ctx, ports.VendorFilter{
			VerificationStatus: c.QueryParam("status"),
			Search:             c.QueryParam("search"),
		})
		if err != nil {
			return err
		}
		if vendors == nil {
			vendors = []*domain.Vendor{}
		}
		return c.JSON(http.StatusOK, vendorListResponse{Data: vendors, Total: len(vendors)})
	}

	vendors, err := h.service.List(ctx, ports.VendorFilter{
		VerificationStatus: string(domain.VerificationVerified),
		Search:             c.QueryParam("search"),
	})
	if err != nil {
		return err
	}
	public := publicDirectory(vendors)
	return c.JSON(http.StatusOK, vendorListResponse{Data: public, Total: len(public)})
}

// Get handles GET /vendors/:id.
//
// @Summary      Get a vendor
// @Tags         vendors
// @Produce      json
// @Param        id   path      string  true  "Vendor id"
// @Success      200  {object}  vendorResponse
// @Failure      404  {object}  errorResponse
// @Router       /vendors/{id} [get]
func (h *VendorHandler) Get(c echo.Context) error {
	v, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	if canManageVendors(c) || isSelf(c, v.ID) {
		return c.JSON(http.StatusOK, vendorResponse{Vendor: v})
	}
	if len(publicDirectory([]*domain.Vendor{v})) == 0 {
		return domain.ErrVendorNotFound
	}
	return c.JSON(http.StatusOK, vendorResponse{Vendor: v.Public()})
}

// Update handles PUT /vendors/:id.
//
// @Summary      Update a vendor
// @Tags         vendors
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Vendor id"
// @Param        body  body      updateVendorRequest  true  "Fields to change"
// @Success      200   {object}  vendorResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /vendors/{id} [put]
func (h *VendorHandler) Update(c echo.Context) error {
	who, err := actor(c)
	if err != nil {
		return err
	}
	var req updateVendorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	v, err := h.service.Update(c.Request().Context(), who, c.Param("id"), req.toInput())
	if err != nil {
		return err
	}
	if req.VerificationStatus != nil {
		metrics.VendorTransitionsTotal.WithLabelValues(string(v.VerificationStatus)).Inc()
	}
	return c.JSON(http.StatusOK, vendorResponse{Vendor: v})
}

// Verification handles PATCH /vendors/:id/verification.
//
// @Summary      Change a vendor's verification status
// @Tags         vendors
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Vendor id"
// @Param        body  body      verificationRequest  true  "Target status"
// @Success      200   {object}  vendorResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /vendors/{id}/verification [patch]
func (h *VendorHandler) Verification(c echo.Context) error {
	who, err := actor(c)
	if err != nil {
		return err
	}
	var req verificationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	v, err := h.service.Transition(c.Request().Context(), who, c.Param("id"), domain.VerificationStatus(req.Status), req.Reason)
	if err != nil {
		return err
	}
	metrics.VendorTransitionsTotal.WithLabelValues(string(v.VerificationStatus)).Inc()
	return c.JSON(http.StatusOK, vendorResponse{Vendor: v})
}

// Delete handles DELETE /vendors/:id.
//
// @Summary      Delete a vendor
// @Tags         vendors
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Vendor id"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /vendors/{id} [delete]
func (h *VendorHandler) Delete(c echo.Context) error {
	who, err := actor(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), who, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "vendor deleted"})
}

func canManageVendors(c echo.Context) bool {
	return middleware.Identity(c).Authorize(domain.PermVendors) == nil
}

func isSelf(c echo.Context, vendorID string) bool {
	who := middleware.Identity(c)
	return who.IsVendor() && who.ID == vendorID
}
