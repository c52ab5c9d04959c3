package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/SscSPs/invoice_finance_app/internal/apperrors"
	portssvc "github.com/SscSPs/invoice_finance_app/internal/core/ports/services"
	"github.com/SscSPs/invoice_finance_app/internal/dto"
	"github.com/SscSPs/invoice_finance_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// creditHandler handles HTTP requests related to credit facilities.
type creditHandler struct {
	creditService portssvc.CreditFacilitySvc
}

func newCreditHandler(cs portssvc.CreditFacilitySvc) *creditHandler {
	return &creditHandler{creditService: cs}
}

// registerCreditRoutes registers routes related to credit facilities.
func registerCreditRoutes(rg *gin.RouterGroup, creditService portssvc.CreditFacilitySvc) {
	h := newCreditHandler(creditService)

	facilities := rg.Group("/credit-facilities")
	{
		facilities.POST("", h.createFacility)
		facilities.GET("", h.listAllFacilities)
		facilities.GET("/:orgID", h.getFacility)
		facilities.GET("/:orgID/all", h.listFacilities)
	}
}

// createFacility godoc
// @Summary Grant a credit facility
// @Description Creates a facility for an organization. Bank operators only.
// @Tags credit
// @Accept json
// @Produce json
// @Param facility body dto.CreateFacilityRequest true "Facility details"
// @Success 201 {object} dto.FacilityResponse
// @Failure 400 {object} errorResponse "Invalid input"
// @Failure 403 {object} errorResponse "Forbidden"
// @Failure 404 {object} errorResponse "Organization not found"
// @Failure 409 {object} errorResponse "Facility already exists"
// @Failure 500 {object} errorResponse "Failed to create facility"
// @Security BearerAuth
// @Router /credit-facilities [post]
func (h *creditHandler) createFacility(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req dto.CreateFacilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	facility, err := h.creditService.CreateFacility(c.Request.Context(), req, p)
	if err != nil {
		respondError(c, err, "Failed to create facility")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Credit facility created",
		slog.String("facility_id", facility.FacilityID),
		slog.String("organization_id", facility.OrganizationID))
	c.JSON(http.StatusCreated, dto.ToFacilityResponse(facility))
}

// getFacility godoc
// @Summary Get an organization's invoice financing facility
// @Tags credit
// @Produce json
// @Param orgID path string true "Organization ID"
// @Success 200 {object} dto.FacilityResponse
// @Failure 403 {object} errorResponse "Forbidden"
// @Failure 404 {object} errorResponse "Facility not found"
// @Failure 500 {object} errorResponse "Failed to retrieve facility"
// @Security BearerAuth
// @Router /credit-facilities/{orgID} [get]
func (h *creditHandler) getFacility(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	orgID := c.Param("orgID")
	if !canSeeOrganization(p, orgID) {
		respondError(c, fmt.Errorf("%w: facility of organization %s", apperrors.ErrForbidden, orgID), "Failed to retrieve facility")
		return
	}

	facility, err := h.creditService.GetFacility(c.Request.Context(), orgID)
	if err != nil {
		respondError(c, err, "Failed to retrieve facility")
		return
	}
	c.JSON(http.StatusOK, dto.ToFacilityResponse(facility))
}

// listFacilities godoc
// @Summary List every facility of an organization
// @Tags credit
// @Produce json
// @Param orgID path string true "Organization ID"
// @Success 200 {array} dto.FacilityResponse
// @Failure 403 {object} errorResponse "Forbidden"
// @Failure 500 {object} errorResponse "Failed to list facilities"
// @Security BearerAuth
// @Router /credit-facilities/{orgID}/all [get]
func (h *creditHandler) listFacilities(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	orgID := c.Param("orgID")
	if !canSeeOrganization(p, orgID) {
		respondError(c, fmt.Errorf("%w: facilities of organization %s", apperrors.ErrForbidden, orgID), "Failed to list facilities")
		return
	}

	facilities, err := h.creditService.ListFacilities(c.Request.Context(), orgID)
	if err != nil {
		respondError(c, err, "Failed to list facilities")
		return
	}
	c.JSON(http.StatusOK, dto.ToFacilityResponses(facilities))
}

// listAllFacilities godoc
// @Summary List the facilities of every organization
// @Description Limit, utilized and available amounts across all organizations. Bank operators only.
// @Tags credit
// @Produce json
// @Success 200 {array} dto.FacilityResponse
// @Failure 403 {object} errorResponse "Forbidden"
// @Failure 500 {object} errorResponse "Failed to list facilities"
// @Security BearerAuth
// @Router /credit-facilities [get]
func (h *creditHandler) listAllFacilities(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	facilities, err := h.creditService.ListAllFacilities(c.Request.Context(), p)
	if err != nil {
		respondError(c, err, "Failed to list facilities")
		return
	}
	c.JSON(http.StatusOK, dto.ToFacilityResponses(facilities))
}
