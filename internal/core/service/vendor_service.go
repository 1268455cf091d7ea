package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aerolux/concierge-admin/internal/core/domain"
	"github.com/aerolux/concierge-admin/internal/core/ports"
)

// VendorService implements the vendor lifecycle: self-registration,
// verification transitions and the vendor login gate.
type VendorService struct {
	repo     ports.VendorRepository
	tokens   ports.TokenIssuer
	notifier ports.NotificationQueue
	audit    ports.AuditRepository
	logger   zerolog.Logger

	now          func() time.Time
	makePassword func() (string, error)
}

func NewVendorService(repo ports.VendorRepository, tokens ports.TokenIssuer, notifier ports.NotificationQueue, audit ports.AuditRepository, logger zerolog.Logger) *VendorService {
	return &VendorService{
		repo:         repo,
		tokens:       tokens,
		notifier:     notifier,
		audit:        audit,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
		makePassword: GeneratePassword,
	}
}

func (s *VendorService) Register(ctx context.Context, input ports.RegisterVendorInput) (*domain.Vendor, error) {
	email := normalizeEmail(input.Email)
	if !strings.Contains(email, "@") {
		return nil, domain.Invalid("email", "must be a valid email address")
	}
	businessName := strings.TrimSpace(input.BusinessName)
	if businessName == "" {
		return nil, domain.Invalid("businessName", "is required")
	}
	contactName := strings.TrimSpace(input.ContactName)
	if contactName == "" {
		return nil, domain.Invalid("contactName", "is required")
	}
	categories, err := canonicalCategories(input.ServiceCategories)
	if err != nil {
		return nil, err
	}

	password := input.Password
	if password == "" {
		// Never disclosed; the approval flow issues the real password.
		if password, err = s.makePassword(); err != nil {
			return nil, fmt.Errorf("generate password: %w", err)
		}
	} else if err := validatePassword(password); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrVendorExists
	} else if !errors.Is(err, domain.ErrVendorNotFound) {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	v := &domain.Vendor{
		Email:              email,
		PasswordHash:       hash,
		BusinessName:       businessName,
		ContactName:        contactName,
		Phone:              strings.TrimSpace(input.Phone),
		Description:        strings.TrimSpace(input.Description),
		Website:            strings.TrimSpace(input.Website),
		ServiceCategories:  categories,
		VerificationStatus: domain.VerificationPending,
		AccountStatus:      domain.AccountActive,
		AdminPanelAccess:   false,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	created, err := s.repo.Create(ctx, v)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("vendor_id", created.ID).Str("business_name", created.BusinessName).Msg("vendor registered")
	recordAudit(ctx, s.audit, s.logger, &domain.AuditEvent{
		Action:   "vendor.registered",
		Entity:   "vendor",
		EntityID: created.ID,
		ActorID:  created.ID,
	})
	return created, nil
}

func (s *VendorService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	return loginVendor(ctx, s.repo, s.tokens, s.logger, email, password)
}

func (s *VendorService) Get(ctx context.Context, id string) (*domain.Vendor, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *VendorService) List(ctx context.Context, filter ports.VendorFilter) ([]*domain.Vendor, error) {
	if filter.VerificationStatus != "" && !domain.VerificationStatus(filter.VerificationStatus).Valid() {
		return nil, domain.Invalid("verificationStatus", "is not a known status")
	}
	return s.repo.List(ctx, filter)
}

func (s *VendorService) Update(ctx context.Context, actor *domain.Identity, id string, input ports.UpdateVendorInput) (*domain.Vendor, error) {
	if err := actor.Authorize(domain.PermVendors); err != nil {
		return nil, err
	}
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.BusinessName != nil {
		name := strings.TrimSpace(*input.BusinessName)
		if name == "" {
			return nil, domain.Invalid("businessName", "must not be empty")
		}
		v.BusinessName = name
	}
	if input.ContactName != nil {
		name := strings.TrimSpace(*input.ContactName)
		if name == "" {
			return nil, domain.Invalid("contactName", "must not be empty")
		}
		v.ContactName = name
	}
	if input.Phone != nil {
		v.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.Description != nil {
		v.Description = strings.TrimSpace(*input.Description)
	}
	if input.Website != nil {
		v.Website = strings.TrimSpace(*input.Website)
	}
	if input.ServiceCategories != nil {
		if v.ServiceCategories, err = canonicalCategories(input.ServiceCategories); err != nil {
			return nil, err
		}
	}
	if input.AccountStatus != nil {
		status := domain.AccountStatus(*input.AccountStatus)
		if !status.Valid() {
			return nil, domain.Invalid("accountStatus", "must be one of active, inactive, suspended")
		}
		v.AccountStatus = status
	}

	var note *ports.Notification
	if input.VerificationStatus != nil {
		if note, _, err = s.applyTransition(v, domain.VerificationStatus(*input.VerificationStatus), actor.ID, input.Reason); err != nil {
			return nil, err
		}
	}

	v.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, v); err != nil {
		return nil, err
	}
	s.notify(note)

	recordAudit(ctx, s.audit, s.logger, &domain.AuditEvent{
		Action:   "vendor.updated",
		Entity:   "vendor",
		EntityID: v.ID,
		ActorID:  actor.ID,
		Details: map[string]any{
			"verificationStatus": string(v.VerificationStatus),
			"accountStatus":      string(v.AccountStatus),
		},
	})
	return v, nil
}

// Transition moves a vendor to next. Requesting the current status is a
// no-op that returns the vendor unchanged.
func (s *VendorService) Transition(ctx context.Context, actor *domain.Identity, id string, next domain.VerificationStatus, reason string) (*domain.Vendor, error) {
	if err := actor.Authorize(domain.PermVendors); err != nil {
		return nil, err
	}
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	from := v.VerificationStatus

	note, changed, err := s.applyTransition(v, next, actor.ID, reason)
	if err != nil {
		return nil, err
	}
	if !changed {
		return v, nil
	}

	v.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, v); err != nil {
		return nil, err
	}
	s.notify(note)

	s.logger.Info().
		Str("vendor_id", v.ID).
		Str("from", string(from)).
		Str("to", string(next)).
		Str("actor_id", actor.ID).
		Msg("vendor verification status changed")
	recordAudit(ctx, s.audit, s.logger, &domain.AuditEvent{
		Action:   "vendor.verification",
		Entity:   "vendor",
		EntityID: v.ID,
		ActorID:  actor.ID,
		Details:  map[string]any{"from": string(from), "to": string(next), "reason": v.RejectionReason},
	})
	return v, nil
}

func (s *VendorService) Delete(ctx context.Context, actor *domain.Identity, id string) error {
	if err := actor.Authorize(domain.PermVendors); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	recordAudit(ctx, s.audit, s.logger, &domain.AuditEvent{
		Action:   "vendor.deleted",
		Entity:   "vendor",
		EntityID: id,
		ActorID:  actor.ID,
	})
	return nil
}

// applyTransition mutates v in memory and returns the notification to send
// once the change is persisted.
func (s *VendorService) applyTransition(v *domain.Vendor, next domain.VerificationStatus, actorID, reason string) (*ports.Notification, bool, error) {
	if !next.Valid() {
		return nil, false, domain.Invalid("verificationStatus", "is not a known status")
	}
	if v.VerificationStatus == next {
		return nil, false, nil
	}
	if !v.VerificationStatus.CanTransitionTo(next) {
		return nil, false, fmt.Errorf("%w: %s to %s", domain.ErrInvalidTransition, v.VerificationStatus, next)
	}

	now := s.now()
	var note *ports.Notification

	switch next {
	case domain.VerificationVerified:
		password, err := s.makePassword()
		if err != nil {
			return nil, false, fmt.Errorf("generate password: %w", err)
		}
		hash, err := HashPassword(password)
		if err != nil {
			return nil, false, fmt.Errorf("hash password: %w", err)
		}
		v.PasswordHash = hash
		v.AdminPanelAccess = true
		v.VerifiedAt = &now
		v.VerifiedBy = actorID
		v.RejectionReason = ""
		note = &ports.Notification{Kind: ports.NotifyVendorApproved, Password: password}

	case domain.VerificationRejected:
		if reason = strings.TrimSpace(reason); reason == "" {
			reason = domain.DefaultRejectionReason
		}
		v.AdminPanelAccess = false
		v.VerifiedAt = nil
		v.VerifiedBy = ""
		v.RejectionReason = reason
		note = &ports.Notification{Kind: ports.NotifyVendorRejected, Reason: reason}

	case domain.VerificationPending:
		v.AdminPanelAccess = false
		v.VerifiedAt = nil
		v.VerifiedBy = ""
		v.RejectionReason = ""

	case domain.VerificationSuspended:
		v.AdminPanelAccess = false
	}
	v.VerificationStatus = next

	if note != nil {
		note.VendorID = v.ID
		note.Email = v.Email
		note.BusinessName = v.BusinessName
		note.CreatedAt = now
	}
	return note, true, nil
}

func (s *VendorService) notify(note *ports.Notification) {
	if note == nil || s.notifier == nil {
		return
	}
	if !s.notifier.Enqueue(*note) {
		s.logger.Warn().Str("vendor_id", note.VendorID).Str("kind", note.Kind).Msg("vendor notification dropped")
	}
}

// loginVendor verifies the password first, then the two login clauses.
func loginVendor(ctx context.Context, repo ports.VendorRepository, tokens ports.TokenIssuer, logger zerolog.Logger, email, password string) (*ports.LoginResult, error) {
	v, err := repo.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrVendorNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !CheckPassword(v.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}
	if err := v.LoginGate(); err != nil {
		logger.Info().Str("vendor_id", v.ID).Err(err).Msg("vendor login refused")
		return nil, err
	}

	now := time.Now().UTC()
	if err := repo.TouchLastLogin(ctx, v.ID, now); err != nil {
		logger.Warn().Err(err).Str("vendor_id", v.ID).Msg("failed to record last login")
	} else {
		v.LastLogin = &now
	}

	pair, err := issuePair(tokens, v.Identity())
	if err != nil {
		return nil, err
	}
	logger.Info().Str("vendor_id", v.ID).Msg("vendor logged in")
	return &ports.LoginResult{Tokens: pair, Vendor: v}, nil
}

func canonicalCategories(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	for _, name := range in {
		d, err := domain.ResolveCategory(name)
		if err != nil {
			return nil, err
		}
		if slug := string(d.Category); !slices.Contains(out, slug) {
			out = append(out, slug)
		}
	}
	return out, nil
}
