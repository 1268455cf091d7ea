package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aerolux/concierge-admin/internal/core/domain"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	defaultAccessTTL  = 24 * time.Hour
	defaultRefreshTTL = 7 * 24 * time.Hour
)

// Claims is the signed payload of both token types. Refresh tokens only
// carry the subject, email and user type.
type Claims struct {
	jwt.RegisteredClaims
	Email              string   `json:"email,omitempty"`
	Role               string   `json:"role,omitempty"`
	Permissions        []string `json:"permissions,omitempty"`
	UserType           string   `json:"userType,omitempty"`
	Type               string   `json:"type"`
	BusinessName       string   `json:"businessName,omitempty"`
	VerificationStatus string   `json:"verificationStatus,omitempty"`
	ServiceCategories  []string `json:"serviceCategories,omitempty"`
}

// TokenService issues and verifies HS256 tokens. It is stateless: validity
// is purely signature plus expiry.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenService(secret string, accessTTL, refreshTTL time.Duration) *TokenService {
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = defaultRefreshTTL
	}
	return &TokenService{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

func (s *TokenService) IssueAccess(who *domain.Identity) (string, error) {
	claims := Claims{
		RegisteredClaims: s.registered(who.ID, s.accessTTL),
		Email:            who.Email,
		Role:             who.Role,
		Permissions:      who.Permissions,
		UserType:         who.UserType,
		Type:             tokenTypeAccess,
	}
	if who.UserType == domain.UserTypeVendor {
		claims.BusinessName = who.BusinessName
		claims.VerificationStatus = who.VerificationStatus
		claims.ServiceCategories = who.ServiceCategories
	}
	return s.sign(claims)
}

func (s *TokenService) IssueRefresh(who *domain.Identity) (string, error) {
	return s.sign(Claims{
		RegisteredClaims: s.registered(who.ID, s.refreshTTL),
		Email:            who.Email,
		UserType:         who.UserType,
		Type:             tokenTypeRefresh,
	})
}

func (s *TokenService) Verify(token string) *domain.Identity {
	claims := s.parse(token)
	if claims == nil || claims.Type != tokenTypeAccess {
		return nil
	}
	return &domain.Identity{
		ID:                 claims.Subject,
		Email:              claims.Email,
		Role:               claims.Role,
		Permissions:        claims.Permissions,
		UserType:           claims.UserType,
		BusinessName:       claims.BusinessName,
		VerificationStatus: claims.VerificationStatus,
		ServiceCategories:  claims.ServiceCategories,
	}
}

func (s *TokenService) VerifyRefresh(token string) *domain.Identity {
	claims := s.parse(token)
	if claims == nil || claims.Type != tokenTypeRefresh {
		return nil
	}
	return &domain.Identity{ID: claims.Subject, Email: claims.Email, UserType: claims.UserType}
}

func (s *TokenService) registered(subject string, ttl time.Duration) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (s *TokenService) sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// parse never returns an error: any failure yields nil.
func (s *TokenService) parse(token string) *Claims {
	if token == "" {
		return nil
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return nil
	}
	return claims
}
