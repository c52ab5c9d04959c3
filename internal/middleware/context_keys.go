package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
)

// principalKey is the key used to store the authenticated principal.
const principalKey = contextKey("principal")

// WithPrincipal returns a copy of ctx carrying the principal.
func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// GetPrincipalFromContext retrieves the authenticated principal from the Gin context.
// It returns the principal and a boolean indicating if it was found.
func GetPrincipalFromContext(c *gin.Context) (domain.Principal, bool) {
	if val, exists := c.Get(string(principalKey)); exists {
		p, ok := val.(domain.Principal)
		return p, ok
	}
	// check in the request context as well
	p, ok := c.Request.Context().Value(principalKey).(domain.Principal)
	return p, ok
}
