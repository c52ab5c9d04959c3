package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/invoice_finance_app/internal/apperrors"
	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	portssvc "github.com/SscSPs/invoice_finance_app/internal/core/ports/services"
	"github.com/SscSPs/invoice_finance_app/internal/dto"
	"github.com/SscSPs/invoice_finance_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// invoiceHandler handles HTTP requests for the invoice lifecycle.
type invoiceHandler struct {
	invoiceService portssvc.InvoiceSvcFacade
	authorizer     portssvc.InvoiceAuthorizerSvc
	dispatcher     portssvc.EventDispatcher
}

// newInvoiceHandler creates a new invoiceHandler.
func newInvoiceHandler(is portssvc.InvoiceSvcFacade, authorizer portssvc.InvoiceAuthorizerSvc, dispatcher portssvc.EventDispatcher) *invoiceHandler {
	return &invoiceHandler{
		invoiceService: is,
		authorizer:     authorizer,
		dispatcher:     dispatcher,
	}
}

// registerInvoiceRoutes registers routes related to invoices.
func registerInvoiceRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := newInvoiceHandler(services.Invoice, services.Authorizer, services.Events)

	invoices := rg.Group("/invoices")
	{
		invoices.POST("", h.uploadInvoice)
		invoices.GET("", h.listInvoices)
		invoices.GET("/:id", h.getInvoice)
		invoices.POST("/:id/validate", h.validateInvoice)
		invoices.POST("/:id/approve", h.approveInvoice)
		invoices.POST("/:id/fund", h.fundInvoice)
		invoices.POST("/:id/payments", h.recordPayment)
		invoices.POST("/:id/reject", h.rejectInvoice)
		invoices.POST("/:id/early-payment-offer", h.offerEarlyPayment)
		invoices.POST("/:id/early-payment-offer/accept", h.acceptEarlyPayment)
		invoices.POST("/:id/early-payment-offer/reject", h.rejectEarlyPayment)
		invoices.POST("/:id/fees", h.chargeFee)
	}
}

// respondTransition hands the events to the dispatcher and writes the result.
func (h *invoiceHandler) respondTransition(c *gin.Context, status int, result *domain.TransitionResult) {
	if h.dispatcher != nil && len(result.Events) > 0 {
		h.dispatcher.Dispatch(c.Request.Context(), result.Events)
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Invoice transition applied",
		slog.String("invoice_id", result.Invoice.InvoiceID),
		slog.String("new_status", string(result.NewStatus)),
		slog.Int("events", len(result.Events)))
	c.JSON(status, dto.ToTransitionResponse(result))
}

// uploadInvoice godoc
// @Summary Upload an invoice
// @Description Registers a new invoice in UPLOADED status. Sellers and buyers may upload invoices they are a party to.
// @Tags invoices
// @Accept json
// @Produce json
// @Param invoice body dto.UploadInvoiceRequest true "Invoice details"
// @Success 201 {object} dto.TransitionResponse
// @Failure 400 {object} errorResponse "Invalid input"
// @Failure 403 {object} errorResponse "Forbidden"
// @Failure 409 {object} errorResponse "Duplicate invoice number"
// @Failure 500 {object} errorResponse "Failed to upload invoice"
// @Security BearerAuth
// @Router /invoices [post]
func (h *invoiceHandler) uploadInvoice(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req dto.UploadInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.invoiceService.UploadInvoice(c.Request.Context(), req, p)
	if err != nil {
		respondError(c, err, "Failed to upload invoice")
		return
	}
	h.respondTransition(c, http.StatusCreated, result)
}

// getInvoice godoc
// @Summary Get an invoice by ID
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 403 {object} errorResponse "Forbidden"
// @Failure 404 {object} errorResponse "Invoice not found"
// @Failure 500 {object} errorResponse "Failed to retrieve invoice"
// @Security BearerAuth
// @Router /invoices/{id} [get]
func (h *invoiceHandler) getInvoice(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	inv, err := h.invoiceService.GetInvoice(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve invoice")
		return
	}
	if h.authorizer != nil {
		if err := h.authorizer.AuthorizeInvoiceAction(ctx, p, *inv, portssvc.ActionView); err != nil {
			respondError(c, err, "Failed to retrieve invoice")
			return
		}
	}
	c.JSON(http.StatusOK, dto.ToInvoiceResponse(inv))
}

// listInvoices godoc
// @Summary List invoices
// @Description Lists invoices, newest first. Sellers and buyers only see their own organization's invoices.
// @Tags invoices
// @Produce json
// @Param organizationID query string false "Organization ID (bank operators only)"
// @Param status query string false "Invoice status"
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListInvoicesResponse
// @Failure 400 {object} errorResponse "Invalid query"
// @Failure 403 {object} errorResponse "Forbidden"
// @Failure 500 {object} errorResponse "Failed to list invoices"
// @Security BearerAuth
// @Router /invoices [get]
func (h *invoiceHandler) listInvoices(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var params dto.ListInvoicesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	if p.Role != domain.RoleBankOperator {
		if params.OrganizationID != "" && params.OrganizationID != p.OrganizationID {
			respondError(c, fmt.Errorf("%w: cannot list invoices of organization %s", apperrors.ErrForbidden, params.OrganizationID), "Failed to list invoices")
			return
		}
		params.OrganizationID = p.OrganizationID
	}

	resp, err := h.invoiceService.ListInvoices(c.Request.Context(), params)
	if err != nil {
		respondError(c, err, "Failed to list invoices")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// validateInvoice godoc
// @Summary Validate an invoice
// @Description Moves an UPLOADED invoice to VALIDATED. No money moves.
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.TransitionResponse
// @Failure 403 {object} errorResponse "Forbidden"
// @Failure 404 {object} errorResponse "Invoice not found"
// @Failure 409 {object} errorResponse "Invalid status transition"
// @Failure 500 {object} errorResponse "Failed to validate invoice"
// @Security BearerAuth
// @Router /invoices/{id}/validate [post]
func (h *invoiceHandler) validateInvoice(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	result, err := h.invoiceService.Validate(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		respondError(c, err, "Failed to validate invoice")
		return
	}
	h.respondTransition(c, http.StatusOK, result)
}

// approveInvoice godoc
// @Summary Approve an invoice for funding
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.TransitionResponse
// @Failure 403 {object} errorResponse "Forbidden"
// @Failure 404 {object} errorResponse "Invoice not found"
// @Failure 409 {object} errorResponse "Invalid status transition"
// @Failure 500 {object} errorResponse "Failed to approve invoice"
// @Security BearerAuth
// @Router /invoices/{id}/approve [post]
func (h *invoiceHandler) approveInvoice(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	result, err := h.invoiceService.ApproveForFunding(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		respondError(c, err, "Failed to approve invoice")
		return
	}
	h.respondTransition(c, http.StatusOK, result)
}

// fundInvoice godoc
// @Summary Fund an invoice
// @Description Reserves credit for both parties, posts the funding and interest entries and moves the invoice to FUNDED, all or nothing.
// @Tags invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param pricing body dto.FundInvoiceRequest true "Base rate and margin in percent"
// @Success 200 {object} dto.TransitionResponse
// @Failure 400 {object} errorResponse "Invalid input"
// @Failure 403 {object} errorResponse "Forbidden"
// @Failure 404 {object} errorResponse "Invoice not found"
// @Failure 409 {object} errorResponse "Invalid status transition"
// @Failure 422 {object} errorResponse "Credit limit exceeded"
// @Failure 500 {object} errorResponse "Failed to fund invoice"
// @Security BearerAuth
// @Router /invoices/{id}/fund [post]
func (h *invoiceHandler) fundInvoice(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req dto.FundInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.invoiceService.Fund(c.Request.Context(), c.Param("id"), req.BaseRate, req.Margin, p)
	if err != nil {
		respondError(c, err, "Failed to fund invoice")
		return
	}
	h.respondTransition(c, http.StatusOK, result)
}

// recordPayment godoc
// @Summary Record the buyer's payment
// @Description Releases the reserved credit, posts the payment entry and moves the invoice to PAID.
// @Tags invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param payment body dto.RecordPaymentRequest true "Payment details"
// @Success 200 {object} dto.TransitionResponse
// @Failure 400 {object} errorResponse "Invalid input"
// @Failure 403 {object} errorResponse "Forbidden"
// @Failure 404 {object} errorResponse "Invoice not found"
// @Failure 409 {object} errorResponse "Invalid status transition"
// @Failure 500 {object} errorResponse "Failed to record payment"
// @Security BearerAuth
// @Router /invoices/{id}/payments [post]
func (h *invoiceHandler) recordPayment(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req dto.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	var paidOn time.Time
	if req.PaymentDate != nil {
		paidOn = *req.PaymentDate
	}

	result, err := h.invoiceService.RecordBuyerPayment(c.Request.Context(), c.Param("id"), req.Amount, paidOn, p)
	if err != nil {
		respondError(c, err, "Failed to record payment")
		return
	}
	h.respondTransition(c, http.StatusOK, result)
}

// rejectInvoice godoc
// @Summary Reject an invoice
// @Tags invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param rejection body dto.RejectInvoiceRequest true "Rejection reason"
// @Success 200 {object} dto.TransitionResponse
// @Failure 400 {object} errorResponse "Invalid input"
// @Failure 403 {object} errorResponse "Forbidden"
// @Failure 404 {object} errorResponse "Invoice not found"
// @Failure 409 {object} errorResponse "Invalid status transition"
// @Failure 500 {object} errorResponse "Failed to reject invoice"
// @Security BearerAuth
// @Router /invoices/{id}/reject [post]
func (h *invoiceHandler) rejectInvoice(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req dto.RejectInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.invoiceService.Reject(c.Request.Context(), c.Param("id"), req.Reason, p)
	if err != nil {
		respondError(c, err, "Failed to reject invoice")
		return
	}
	h.respondTransition(c, http.StatusOK, result)
}

// offerEarlyPayment godoc
// @Summary Offer early payment
// @Description The buyer offers the seller early payment at a discount on an approved, buyer-uploaded invoice.
// @Tags invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param offer body dto.EarlyPaymentOfferRequest true "Discount rate in percent"
// @Success 200 {object} dto.TransitionResponse
// @Failure 400 {object} errorResponse "Invalid input"
// @Failure 403 {object} errorResponse "Forbidden"
// @Failure 404 {object} errorResponse "Invoice not found"
// @Failure 409 {object} errorResponse "Invalid status transition"
// @Failure 500 {object} errorResponse "Failed to offer early payment"
// @Security BearerAuth
// @Router /invoices/{id}/early-payment-offer [post]
func (h *invoiceHandler) offerEarlyPayment(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req dto.EarlyPaymentOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.invoiceService.OfferEarlyPayment(c.Request.Context(), c.Param("id"), req.DiscountRate, p)
	if err != nil {
		respondError(c, err, "Failed to offer early payment")
		return
	}
	h.respondTransition(c, http.StatusOK, result)
}

// acceptEarlyPayment godoc
// @Summary Accept an early payment offer
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.TransitionResponse
// @Failure 403 {object} errorResponse "Forbidden"
// @Failure 404 {object} errorResponse "Invoice not found"
// @Failure 409 {object} errorResponse "Invalid status transition"
// @Failure 500 {object} errorResponse "Failed to accept offer"
// @Security BearerAuth
// @Router /invoices/{id}/early-payment-offer/accept [post]
func (h *invoiceHandler) acceptEarlyPayment(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	result, err := h.invoiceService.AcceptEarlyPaymentOffer(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		respondError(c, err, "Failed to accept offer")
		return
	}
	h.respondTransition(c, http.StatusOK, result)
}

// rejectEarlyPayment godoc
// @Summary Reject an early payment offer
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.TransitionResponse
// @Failure 403 {object} errorResponse "Forbidden"
// @Failure 404 {object} errorResponse "Invoice not found"
// @Failure 409 {object} errorResponse "Invalid status transition"
// @Failure 500 {object} errorResponse "Failed to reject offer"
// @Security BearerAuth
// @Router /invoices/{id}/early-payment-offer/reject [post]
func (h *invoiceHandler) rejectEarlyPayment(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	result, err := h.invoiceService.RejectEarlyPaymentOffer(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		respondError(c, err, "Failed to reject offer")
		return
	}
	h.respondTransition(c, http.StatusOK, result)
}

// chargeFee godoc
// @Summary Charge a fee against an invoice
// @Description Posts fee income against a FUNDED or PAID invoice.
// @Tags invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param fee body dto.ChargeFeeRequest true "Fee details"
// @Success 201 {object} dto.JournalEntryResponse
// @Failure 400 {object} errorResponse "Invalid input"
// @Failure 403 {object} errorResponse "Forbidden"
// @Failure 404 {object} errorResponse "Invoice not found"
// @Failure 409 {object} errorResponse "Invalid status for fees"
// @Failure 500 {object} errorResponse "Failed to charge fee"
// @Security BearerAuth
// @Router /invoices/{id}/fees [post]
func (h *invoiceHandler) chargeFee(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req dto.ChargeFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	entry, err := h.invoiceService.ChargeFee(c.Request.Context(), c.Param("id"), req.Amount, req.Description, p)
	if err != nil {
		respondError(c, err, "Failed to charge fee")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Fee charged",
		slog.String("invoice_id", c.Param("id")),
		slog.String("journal_entry_id", entry.JournalEntryID))
	c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(entry))
}
