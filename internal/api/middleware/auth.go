package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/aerolux/concierge-admin/internal/core/domain"
)

// IdentityKey is the echo.Context key holding the *domain.Identity.
const IdentityKey = "identity"

// TokenVerifier decodes an access token, returning nil when it is invalid.
type TokenVerifier interface {
	Verify(token string) *domain.Identity
}

// Auth validates the bearer token and stores the identity in the context.
func Auth(tokens TokenVerifier) echo.MiddlewareFunc {
	return authenticate(tokens, false)
}

// StreamAuth is Auth for the websocket upgrade route. Browsers cannot set
// headers on an upgrade, so a ?token= query parameter is accepted there.
func StreamAuth(tokens TokenVerifier) echo.MiddlewareFunc {
	return authenticate(tokens, true)
}

// OptionalAuth stores the identity when a valid token is present and lets
// anonymous requests through. An invalid token is still rejected.
func OptionalAuth(tokens TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get(echo.HeaderAuthorization) == "" {
				return next(c)
			}
			return Auth(tokens)(next)(c)
		}
	}
}

func authenticate(tokens TokenVerifier, allowQuery bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := bearerToken(c, allowQuery)
			if err != nil {
				return err
			}
			who := tokens.Verify(raw)
			if who == nil {
				return domain.ErrUnauthenticated
			}
			c.Set(IdentityKey, who)
			return next(c)
		}
	}
}

func bearerToken(c echo.Context, allowQuery bool) (string, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		if q := c.QueryParam("token"); allowQuery && q != "" {
			return q, nil
		}
		return "", domain.ErrUnauthenticated
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", domain.ErrUnauthenticated
	}
	return strings.TrimSpace(parts[1]), nil
}

// Identity returns the identity stored by Auth, or nil.
func Identity(c echo.Context) *domain.Identity {
	who, _ := c.Get(IdentityKey).(*domain.Identity)
	return who
}
