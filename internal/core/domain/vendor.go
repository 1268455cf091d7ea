package domain

import "time"

// VerificationStatus is the vendor approval state.
type VerificationStatus string

const (
	VerificationPending   VerificationStatus = "pending"
	VerificationVerified  VerificationStatus = "verified"
	VerificationRejected  VerificationStatus = "rejected"
	VerificationSuspended VerificationStatus = "suspended"
)

// AccountStatus is orthogonal to verification.
type AccountStatus string

const (
	AccountActive    AccountStatus = "active"
	AccountInactive  AccountStatus = "inactive"
	AccountSuspended AccountStatus = "suspended"
)

// DefaultRejectionReason is sent when an admin rejects without a reason.
const DefaultRejectionReason = "Your application did not meet our current verification requirements."

var verificationTransitions = map[VerificationStatus][]VerificationStatus{
	VerificationPending:   {VerificationVerified, VerificationRejected},
	VerificationVerified:  {VerificationRejected, VerificationPending, VerificationSuspended},
	VerificationRejected:  {VerificationPending, VerificationVerified},
	VerificationSuspended: {VerificationVerified, VerificationRejected, VerificationPending},
}

// Valid reports whether s is a known verification status.
func (s VerificationStatus) Valid() bool {
	_, ok := verificationTransitions[s]
	return ok
}

// CanTransitionTo reports whether a transition from s to next is allowed.
func (s VerificationStatus) CanTransitionTo(next VerificationStatus) bool {
	for _, allowed := range verificationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known account status.
func (s AccountStatus) Valid() bool {
	switch s {
	case AccountActive, AccountInactive, AccountSuspended:
		return true
	}
	return false
}

// Vendor is a marketplace supplier that may log into the admin panel once
// verified.
type Vendor struct {
	ID                 string             `json:"id"`
	Email              string             `json:"email"`
	PasswordHash       string             `json:"-"`
	BusinessName       string             `json:"businessName"`
	ContactName        string             `json:"contactName"`
	Phone              string             `json:"phone,omitempty"`
	Description        string             `json:"description,omitempty"`
	Website            string             `json:"website,omitempty"`
	ServiceCategories  []string           `json:"serviceCategories"`
	VerificationStatus VerificationStatus `json:"verificationStatus"`
	AccountStatus      AccountStatus      `json:"accountStatus"`
	AdminPanelAccess   bool               `json:"adminPanelAccess"`
	VerifiedAt         *time.Time         `json:"verifiedAt,omitempty"`
	VerifiedBy         string             `json:"verifiedBy,omitempty"`
	RejectionReason    string             `json:"rejectionReason,omitempty"`
	LastLogin          *time.Time         `json:"lastLogin,omitempty"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

// LoginGate checks the two independent login clauses. Account status is
// reported first.
func (v *Vendor) LoginGate() error {
	if v.AccountStatus != AccountActive {
		return ErrAccountInactive
	}
	if v.VerificationStatus != VerificationVerified || !v.AdminPanelAccess {
		return ErrPendingApproval
	}
	return nil
}

// Identity builds the token identity for v. Vendors are pinned to the
// inventory capability.
func (v *Vendor) Identity() *Identity {
	return &Identity{
		ID:                 v.ID,
		Email:              v.Email,
		Role:               RoleVendor,
		Permissions:        []string{PermInventory},
		UserType:           UserTypeVendor,
		BusinessName:       v.BusinessName,
		VerificationStatus: string(v.VerificationStatus),
		ServiceCategories:  append([]string(nil), v.ServiceCategories...),
	}
}

// PublicVendor is the directory view shown to anonymous callers.
type PublicVendor struct {
	ID                string   `json:"id"`
	BusinessName      string   `json:"businessName"`
	Description       string   `json:"description,omitempty"`
	Website           string   `json:"website,omitempty"`
	ServiceCategories []string `json:"serviceCategories"`
}

// Public strips contact and account details.
func (v *Vendor) Public() PublicVendor {
	return PublicVendor{
		ID:                v.ID,
		BusinessName:      v.BusinessName,
		Description:       v.Description,
		Website:           v.Website,
		ServiceCategories: v.ServiceCategories,
	}
}
