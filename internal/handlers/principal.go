package handlers

import (
	"net/http"

	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	"github.com/SscSPs/invoice_finance_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// requirePrincipal fetches the authenticated principal or answers 401.
func requirePrincipal(c *gin.Context) (domain.Principal, bool) {
	p, ok := middleware.GetPrincipalFromContext(c)
	if !ok || p.UserID == "" {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Principal not found in context")
		c.JSON(http.StatusUnauthorized, errorResponse{Error: "Unauthorized", Code: "UNAUTHORIZED"})
		return domain.Principal{}, false
	}
	return p, true
}

// requireBankOperator answers 403 unless the caller acts for the bank.
func requireBankOperator(c *gin.Context) (domain.Principal, bool) {
	p, ok := requirePrincipal(c)
	if !ok {
		return p, false
	}
	if p.Role != domain.RoleBankOperator {
		c.JSON(http.StatusForbidden, errorResponse{Error: "Only bank operators may access this resource", Code: "FORBIDDEN"})
		return p, false
	}
	return p, true
}

// canSeeOrganization reports whether p may read data belonging to orgID.
func canSeeOrganization(p domain.Principal, orgID string) bool {
	return p.Role == domain.RoleBankOperator || p.OrganizationID == orgID
}
