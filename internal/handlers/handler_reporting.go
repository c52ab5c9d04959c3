package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/invoice_finance_app/internal/apperrors"
	portssvc "github.com/SscSPs/invoice_finance_app/internal/core/ports/services"
	"github.com/SscSPs/invoice_finance_app/internal/dto"
	"github.com/SscSPs/invoice_finance_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reportingHandler handles HTTP requests related to financial reports
type reportingHandler struct {
	reportingService portssvc.ReportingService
}

// newReportingHandler creates a new reportingHandler
func newReportingHandler(rs portssvc.ReportingService) *reportingHandler {
	return &reportingHandler{
		reportingService: rs,
	}
}

// registerReportingRoutes registers routes related to financial reports
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := newReportingHandler(reportingService)

	reportingGroup := rg.Group("/reports")
	{
		reportingGroup.GET("/trial-balance", h.getTrialBalance)
		reportingGroup.GET("/statements/:orgID", h.getStatement)
	}
}

// getTrialBalance godoc
// @Summary Generate trial balance report
// @Description Generates a trial balance over posted journal entries up to the end of asOf. Bank operators only.
// @Tags reports
// @Produce json
// @Param asOf query string false "Report date (YYYY-MM-DD)" default(current date)
// @Success 200 {object} domain.TrialBalance
// @Failure 400 {object} errorResponse "Invalid input"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Forbidden"
// @Failure 500 {object} errorResponse "Failed to generate report"
// @Security BearerAuth
// @Router /reports/trial-balance [get]
func (h *reportingHandler) getTrialBalance(c *gin.Context) {
	if _, ok := requireBankOperator(c); !ok {
		return
	}
	var params dto.TrialBalanceParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}
	asOf := time.Now().UTC()
	if params.AsOf != nil {
		// the whole of the requested day counts
		asOf = params.AsOf.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.Time("as_of", asOf))
	logger.Info("Generating trial balance")

	report, err := h.reportingService.GetTrialBalance(c.Request.Context(), asOf)
	if err != nil {
		respondError(c, err, "Failed to generate report")
		return
	}
	c.JSON(http.StatusOK, report)
}

// getStatement godoc
// @Summary Generate an organization statement
// @Description Lists the organization's financing records between from and to (inclusive) with opening, running and closing balances.
// @Tags reports
// @Produce json
// @Param orgID path string true "Organization ID"
// @Param from query string true "Period start (YYYY-MM-DD)"
// @Param to query string true "Period end (YYYY-MM-DD)"
// @Success 200 {object} domain.Statement
// @Failure 400 {object} errorResponse "Invalid input"
// @Failure 403 {object} errorResponse "Forbidden"
// @Failure 404 {object} errorResponse "Organization not found"
// @Failure 500 {object} errorResponse "Failed to generate statement"
// @Security BearerAuth
// @Router /reports/statements/{orgID} [get]
func (h *reportingHandler) getStatement(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	orgID := c.Param("orgID")
	if !canSeeOrganization(p, orgID) {
		respondError(c, fmt.Errorf("%w: statement of organization %s", apperrors.ErrForbidden, orgID), "Failed to generate statement")
		return
	}
	var params dto.StatementParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	statement, err := h.reportingService.GetStatement(c.Request.Context(), orgID, params.From, params.To)
	if err != nil {
		respondError(c, err, "Failed to generate statement")
		return
	}
	c.JSON(http.StatusOK, statement)
}
