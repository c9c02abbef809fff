// Package identity carries the authenticated caller through request contexts.
package identity

import (
	"context"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"github.com/Additional-Code/orderdesk/internal/config"
	"github.com/Additional-Code/orderdesk/internal/presentation/http/response"
	"github.com/Additional-Code/orderdesk/pkg/errorbank"
)

// RoleAdmin is the role value granting administrative rights.
const RoleAdmin = "admin"

// Identity is the authenticated caller.
type Identity struct {
	UserID int64
	Admin  bool
}

// Provider resolves the caller of a request, if any.
type Provider interface {
	Current(ctx context.Context) (Identity, bool)
}

// Module provides the context-backed provider and the header middleware.
var Module = fx.Provide(
	fx.Annotate(NewContextProvider, fx.As(new(Provider))),
	NewMiddleware,
)

type ctxKey struct{}

// WithIdentity returns a context carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext extracts the identity stored by WithIdentity.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

// ContextProvider reads identities placed on the context by Middleware.
type ContextProvider struct{}

// NewContextProvider constructs a ContextProvider.
func NewContextProvider() ContextProvider {
	return ContextProvider{}
}

// Current implements Provider.
func (ContextProvider) Current(ctx context.Context) (Identity, bool) {
	return FromContext(ctx)
}

// Middleware is an echo middleware populating the request identity from headers.
type Middleware echo.MiddlewareFunc

// NewMiddleware reads the configured user and role headers. Requests without a
// user header stay anonymous.
func NewMiddleware(cfg config.Config) Middleware {
	userHeader := cfg.Auth.UserHeader
	roleHeader := cfg.Auth.RoleHeader

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := strings.TrimSpace(c.Request().Header.Get(userHeader))
			if raw == "" {
				return next(c)
			}
			userID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || userID <= 0 {
				return response.New(c).WithError(errorbank.BadRequest("invalid " + userHeader + " header")).Build()
			}
			id := Identity{UserID: userID}
			if roleHeader != "" {
				id.Admin = strings.EqualFold(strings.TrimSpace(c.Request().Header.Get(roleHeader)), RoleAdmin)
			}
			req := c.Request()
			c.SetRequest(req.WithContext(WithIdentity(req.Context(), id)))
			return next(c)
		}
	}
}
