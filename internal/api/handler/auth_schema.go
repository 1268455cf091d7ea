package handler

import (
	"github.com/aerolux/concierge-admin/internal/core/domain"
	"github.com/aerolux/concierge-admin/internal/core/ports"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
	UserType string `json:"userType" validate:"omitempty,oneof=admin vendor"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type registerRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name"     validate:"required"`
	Role     string `json:"role"     validate:"required,oneof=super_admin admin inventory_manager vendor_manager"`
}

type updateUserRequest struct {
	Name     *string `json:"name"     validate:"omitempty,min=1"`
	Role     *string `json:"role"     validate:"omitempty,oneof=super_admin admin inventory_manager vendor_manager"`
	IsActive *bool   `json:"isActive"`
	Password *string `json:"password" validate:"omitempty,min=8"`
}

// authResponse is returned by both login paths and by refresh. User holds
// either a *domain.User or a *domain.Vendor.
type authResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	User         any    `json:"user"`
}

type principalResponse struct {
	User any `json:"user"`
}

type usersResponse struct {
	Data []*domain.User `json:"data"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func toAuthResponse(r *ports.LoginResult) authResponse {
	return authResponse{
		Token:        r.Tokens.AccessToken,
		RefreshToken: r.Tokens.RefreshToken,
		User:         principalOf(r),
	}
}

func principalOf(r *ports.LoginResult) any {
	if r.Vendor != nil {
		return r.Vendor
	}
	return r.User
}
