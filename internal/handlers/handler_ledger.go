package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	portssvc "github.com/SscSPs/invoice_finance_app/internal/core/ports/services"
	"github.com/SscSPs/invoice_finance_app/internal/dto"
	"github.com/SscSPs/invoice_finance_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ledgerHandler serves read-only views of the chart of accounts and the journal.
type ledgerHandler struct {
	ledgerService  portssvc.LedgerReaderSvc
	invoiceService portssvc.InvoiceReaderSvc
	authorizer     portssvc.InvoiceAuthorizerSvc
}

// newLedgerHandler creates a new ledgerHandler.
func newLedgerHandler(ls portssvc.LedgerReaderSvc, is portssvc.InvoiceReaderSvc, authorizer portssvc.InvoiceAuthorizerSvc) *ledgerHandler {
	return &ledgerHandler{
		ledgerService:  ls,
		invoiceService: is,
		authorizer:     authorizer,
	}
}

// registerLedgerRoutes registers routes related to the ledger.
func registerLedgerRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := newLedgerHandler(services.Accounting, services.Invoice, services.Authorizer)

	ledger := rg.Group("/ledger")
	{
		ledger.GET("/accounts", h.listAccounts)
		ledger.GET("/journal-entries", h.listJournalEntries)
		ledger.GET("/journal-entries/:id", h.getJournalEntry)
	}
}

// listAccounts godoc
// @Summary List the chart of accounts
// @Description Returns every ledger account with its running balance. Bank operators only.
// @Tags ledger
// @Produce json
// @Success 200 {array} dto.AccountResponse
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Forbidden"
// @Failure 500 {object} errorResponse "Failed to list accounts"
// @Security BearerAuth
// @Router /ledger/accounts [get]
func (h *ledgerHandler) listAccounts(c *gin.Context) {
	if _, ok := requireBankOperator(c); !ok {
		return
	}
	accounts, err := h.ledgerService.ListAccounts(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list accounts")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponses(accounts))
}

// listJournalEntries godoc
// @Summary List journal entries
// @Description Lists posted journal entries newest first. With invoiceID, returns every entry of that invoice in posting order; parties to the invoice may use this form.
// @Tags ledger
// @Produce json
// @Param invoiceID query string false "Only entries of this invoice"
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListJournalEntriesResponse
// @Failure 400 {object} errorResponse "Invalid query"
// @Failure 403 {object} errorResponse "Forbidden"
// @Failure 404 {object} errorResponse "Invoice not found"
// @Failure 500 {object} errorResponse "Failed to list journal entries"
// @Security BearerAuth
// @Router /ledger/journal-entries [get]
func (h *ledgerHandler) listJournalEntries(c *gin.Context) {
	p, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var params dto.ListJournalEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}
	ctx := c.Request.Context()

	if params.InvoiceID != "" {
		inv, err := h.invoiceService.GetInvoice(ctx, params.InvoiceID)
		if err != nil {
			respondError(c, err, "Failed to list journal entries")
			return
		}
		if err := h.authorizer.AuthorizeInvoiceAction(ctx, p, *inv, portssvc.ActionView); err != nil {
			respondError(c, err, "Failed to list journal entries")
			return
		}
		entries, err := h.ledgerService.ListJournalEntriesByInvoice(ctx, params.InvoiceID)
		if err != nil {
			respondError(c, err, "Failed to list journal entries")
			return
		}
		c.JSON(http.StatusOK, dto.ListJournalEntriesResponse{JournalEntries: dto.ToJournalEntryResponses(entries)})
		return
	}

	if p.Role != domain.RoleBankOperator {
		c.JSON(http.StatusForbidden, errorResponse{Error: "Only bank operators may list the whole journal", Code: "FORBIDDEN"})
		return
	}
	entries, next, err := h.ledgerService.ListJournalEntries(ctx, params.Limit, params.NextToken)
	if err != nil {
		respondError(c, err, "Failed to list journal entries")
		return
	}
	c.JSON(http.StatusOK, dto.ListJournalEntriesResponse{
		JournalEntries: dto.ToJournalEntryResponses(entries),
		NextToken:      next,
	})
}

// getJournalEntry godoc
// @Summary Get a journal entry with its lines
// @Tags ledger
// @Produce json
// @Param id path string true "Journal entry ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 403 {object} errorResponse "Forbidden"
// @Failure 404 {object} errorResponse "Journal entry not found"
// @Failure 500 {object} errorResponse "Failed to retrieve journal entry"
// @Security BearerAuth
// @Router /ledger/journal-entries/{id} [get]
func (h *ledgerHandler) getJournalEntry(c *gin.Context) {
	if _, ok := requireBankOperator(c); !ok {
		return
	}
	entryID := c.Param("id")
	entry, err := h.ledgerService.GetJournalEntry(c.Request.Context(), entryID)
	if err != nil {
		respondError(c, err, "Failed to retrieve journal entry")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Debug("Journal entry retrieved",
		slog.String("journal_entry_id", entryID), slog.Int("lines", len(entry.Lines)))
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}
