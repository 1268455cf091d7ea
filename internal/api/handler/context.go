package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/aerolux/concierge-admin/internal/api/middleware"
	"github.com/aerolux/concierge-admin/internal/core/domain"
)

// actor returns the identity injected by the Auth middleware. Handlers
// mounted behind Auth never see a nil identity, but a misconfigured route
// fails closed.
func actor(c echo.Context) (*domain.Identity, error) {
	who := middleware.Identity(c)
	if who == nil {
		return nil, domain.ErrUnauthenticated
	}
	return who, nil
}

// queryInt parses an optional integer query parameter. Malformed values are
// treated as absent so the service defaults apply.
func queryInt(c echo.Context, name string) int {
	n, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return 0
	}
	return n
}
