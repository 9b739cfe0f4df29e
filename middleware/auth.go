package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/sharath018/temple-waste-backend/internal/apperr"
	"github.com/sharath018/temple-waste-backend/internal/auth"
)

const principalKey = "principal"

// Resolver is the part of the auth service the guards need.
type Resolver interface {
	Resolve(ctx context.Context, accessToken string) (*auth.Principal, error)
	Authorize(ctx context.Context, accessToken, role string) (*auth.Principal, error)
}

// Authenticate resolves the session once and makes the principal available to
// every handler below it, through both the gin context and the request
// context.
func Authenticate(authSvc Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := authSvc.Resolve(c.Request.Context(), auth.TokenFromRequest(c))
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		setPrincipal(c, p)
		c.Next()
	}
}

// RequireRole is Authenticate plus the role gate. A valid session with the
// wrong role is Forbidden.
func RequireRole(authSvc Resolver, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := authSvc.Authorize(c.Request.Context(), auth.TokenFromRequest(c), role)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		setPrincipal(c, p)
		c.Next()
	}
}

func setPrincipal(c *gin.Context, p *auth.Principal) {
	c.Set(principalKey, p)
	c.Request = c.Request.WithContext(auth.WithPrincipal(c.Request.Context(), p))
}

// CurrentPrincipal returns the principal set by Authenticate or RequireRole.
func CurrentPrincipal(c *gin.Context) (*auth.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*auth.Principal)
	return p, ok && p != nil
}
