package handler

import (
	"github.com/aerolux/concierge-admin/internal/core/domain"
	"github.com/aerolux/concierge-admin/internal/core/ports"
)

type registerVendorRequest struct {
	Email             string   `json:"email"             validate:"required,email"`
	Password          string   `json:"password"          validate:"omitempty,min=8"`
	BusinessName      string   `json:"businessName"      validate:"required,max=200"`
	ContactName       string   `json:"contactName"       validate:"required,max=200"`
	Phone             string   `json:"phone"             validate:"omitempty,max=40"`
	Description       string   `json:"description"       validate:"omitempty,max=4000"`
	Website           string   `json:"website"           validate:"omitempty,url"`
	ServiceCategories []string `json:"serviceCategories"`
}

type vendorLoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type updateVendorRequest struct {
	BusinessName       *string  `json:"businessName"       validate:"omitempty,max=200"`
	ContactName        *string  `json:"contactName"        validate:"omitempty,max=200"`
	Phone              *string  `json:"phone"              validate:"omitempty,max=40"`
	Description        *string  `json:"description"        validate:"omitempty,max=4000"`
	Website            *string  `json:"website"            validate:"omitempty,url"`
	ServiceCategories  []string `json:"serviceCategories"`
	AccountStatus      *string  `json:"accountStatus"      validate:"omitempty,oneof=active inactive suspended"`
	VerificationStatus *string  `json:"verificationStatus" validate:"omitempty,oneof=pending verified rejected suspended"`
	Reason             string   `json:"reason"             validate:"omitempty,max=2000"`
}

type verificationRequest struct {
	Status string `json:"status" validate:"required,oneof=pending verified rejected suspended"`
	Reason string `json:"reason" validate:"omitempty,max=2000"`
}

type vendorListResponse struct {
	Data  any `json:"data"`
	Total int `json:"total"`
}

type vendorResponse struct {
	Vendor any `json:"vendor"`
}

func (r updateVendorRequest) toInput() ports.UpdateVendorInput {
	return ports.UpdateVendorInput{
		BusinessName:       r.BusinessName,
		ContactName:        r.ContactName,
		Phone:              r.Phone,
		Description:        r.Description,
		Website:            r.Website,
		ServiceCategories:  r.ServiceCategories,
		AccountStatus:      r.AccountStatus,
		VerificationStatus: r.VerificationStatus,
		Reason:             r.Reason,
	}
}

// publicDirectory keeps only vendors an anonymous visitor may see.
func publicDirectory(vendors []*domain.Vendor) []domain.PublicVendor {
	out := make([]domain.PublicVendor, 0, len(vendors))
	for _, v := range vendors {
		if v.VerificationStatus != domain.VerificationVerified || v.AccountStatus != domain.AccountActive {
			continue
		}
		out = append(out, v.Public())
	}
	return out
}
